package scanner

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Window рабочее окно сканера в локальном времени, границы включительно
type Window struct {
	start int // минуты от полуночи
	end   int
	loc   *time.Location
}

// ParseWindow разбирает границы "HH:MM" и часовой пояс IANA
func ParseWindow(start, end, timezone string) (Window, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, fmt.Errorf("неизвестный часовой пояс %q: %w", timezone, err)
	}
	startMin, err := parseClock(start)
	if err != nil {
		return Window{}, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{start: startMin, end: endMin, loc: loc}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("некорректное время %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains проверяет момент t по часам окна. Окно через полночь поддерживается.
func (w Window) Contains(t time.Time) bool {
	local := t.In(w.loc)
	m := local.Hour()*60 + local.Minute()
	if w.start <= w.end {
		return m >= w.start && m <= w.end
	}
	return m >= w.start || m <= w.end
}

// Location часовой пояс окна
func (w Window) Location() *time.Location {
	return w.loc
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d %s", w.start/60, w.start%60, w.end/60, w.end%60, w.loc)
}
