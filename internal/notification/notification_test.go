package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/multierr"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

type fakeNotifier struct {
	name    string
	enabled bool
	err     error

	mu   sync.Mutex
	sent []string
	to   []string
}

func (f *fakeNotifier) Send(_ context.Context, destination, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	f.to = append(f.to, destination)
	return f.err
}

func (f *fakeNotifier) Name() string    { return f.name }
func (f *fakeNotifier) IsEnabled() bool { return f.enabled }

func longSignal() *models.Signal {
	return &models.Signal{
		Symbol:     "BTCUSDT",
		Direction:  models.DirectionLong,
		Confidence: 72,
		Entry:      64250.5,
		SL:         63100.25,
		TP:         66550.999,
		RR:         2,
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price    float64
		expected string
	}{
		{64250.5, "64250.50"},
		{10.5, "10.50"},
		{10, "10.0000"},
		{0.123456, "0.1235"},
		{1.5, "1.5000"},
	}

	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.expected {
			t.Errorf("FormatPrice(%v) = %s, expected %s", tt.price, got, tt.expected)
		}
	}
}

func TestDisplaySymbol(t *testing.T) {
	tests := map[string]string{
		"BTCUSDT":  "BTC",
		"PEPEUSDT": "PEPE",
		"BTCBUSD":  "BTCBUSD",
	}
	for in, expected := range tests {
		if got := DisplaySymbol(in); got != expected {
			t.Errorf("DisplaySymbol(%s) = %s, expected %s", in, got, expected)
		}
	}
}

func TestFormatSignal(t *testing.T) {
	text := FormatSignal(longSignal(), "3 за день", "mtfsignal")

	for _, part := range []string{
		"[3 за день]",
		"#BTC – [LONG]",
		"🟢 Entry: 64250.50",
		"Take Profit: 66551.00",
		"Stop-Loss: 63100.25",
		"RR: 2.00 (Conf: 72%)",
		"🧠 mtfsignal",
		riskReminder,
	} {
		if !strings.Contains(text, part) {
			t.Errorf("message does not contain %q:\n%s", part, text)
		}
	}

	short := longSignal()
	short.Direction = models.DirectionShort
	if !strings.Contains(FormatSignal(short, "1", ""), "🔴 Entry") {
		t.Error("SHORT signal must use red marker")
	}
	if strings.Contains(FormatSignal(short, "1", ""), "🧠") {
		t.Error("empty signature must be omitted")
	}
}

func TestFormatManual(t *testing.T) {
	signal := longSignal()

	if text := FormatManual(signal, 60, ""); strings.Contains(text, "⚠️") {
		t.Errorf("no warning expected for confidence 72:\n%s", text)
	}

	signal.Confidence = 45
	text := FormatManual(signal, 60, "")
	if !strings.Contains(text, "[MANUAL]") || !strings.Contains(text, "<60%") {
		t.Errorf("expected MANUAL label and low confidence warning:\n%s", text)
	}
}

func TestSession(t *testing.T) {
	s := NewSession("")
	if s.Destination() != "" {
		t.Error("Expected empty destination")
	}

	s.SetDestination("42")
	if s.NextIndex() != 1 || s.NextIndex() != 2 {
		t.Error("Expected sequential indices")
	}
	if s.Count() != 2 {
		t.Errorf("Expected count 2, got %d", s.Count())
	}

	s.Reset()
	if s.Count() != 0 || s.NextIndex() != 1 {
		t.Error("Reset must restart numbering")
	}
	if s.Destination() != "42" {
		t.Error("Reset must keep destination")
	}
}

func TestManagerSendSignal(t *testing.T) {
	first := &fakeNotifier{name: "first", enabled: true}
	disabled := &fakeNotifier{name: "disabled", enabled: false}
	manager := NewManager("", first, disabled)
	session := NewSession("chat-1")

	if err := manager.SendSignal(context.Background(), session, longSignal()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := manager.SendSignal(context.Background(), session, longSignal()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.sent) != 2 || first.to[0] != "chat-1" {
		t.Fatalf("unexpected deliveries: %v to %v", len(first.sent), first.to)
	}
	if !strings.Contains(first.sent[1], "[2 за день]") {
		t.Errorf("second signal must be numbered 2:\n%s", first.sent[1])
	}
	if len(disabled.sent) != 0 {
		t.Error("disabled notifier must not be used")
	}
}

func TestManagerNoDestination(t *testing.T) {
	n := &fakeNotifier{name: "n", enabled: true}
	manager := NewManager("", n)
	session := NewSession("")

	err := manager.SendSignal(context.Background(), session, longSignal())

	if !errors.Is(err, ErrNoDestination) {
		t.Errorf("Expected ErrNoDestination, got %v", err)
	}
	if session.Count() != 0 {
		t.Error("counter must not advance without destination")
	}
	if len(n.sent) != 0 {
		t.Error("nothing must be sent without destination")
	}
}

func TestManagerCombinesErrors(t *testing.T) {
	manager := NewManager("",
		&fakeNotifier{name: "a", enabled: true, err: errors.New("down")},
		&fakeNotifier{name: "b", enabled: true},
		&fakeNotifier{name: "c", enabled: true, err: errors.New("rate limited")},
	)

	err := manager.Send(context.Background(), NewSession("1"), "hello")

	if errs := multierr.Errors(err); len(errs) != 2 {
		t.Errorf("Expected 2 combined errors, got %d: %v", len(errs), err)
	}
	if manager.Enabled() != true {
		t.Error("manager with enabled notifiers must be enabled")
	}
	if NewManager("").Enabled() {
		t.Error("empty manager must be disabled")
	}
}

func TestTelegramNotifier(t *testing.T) {
	var got map[string]interface{}
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier(config.TelegramConfig{Enabled: true, BotToken: "TOKEN"})
	notifier.baseURL = server.URL

	if err := notifier.Send(context.Background(), "12345", "привет"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/botTOKEN/sendMessage" {
		t.Errorf("unexpected path %s", path)
	}
	if got["chat_id"] != "12345" || got["text"] != "привет" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestTelegramNotifierAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier(config.TelegramConfig{Enabled: true, BotToken: "TOKEN"})
	notifier.baseURL = server.URL

	err := notifier.Send(context.Background(), "1", "text")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Expected API error, got %v", err)
	}
}

func TestTelegramNotifierDisabled(t *testing.T) {
	notifier := NewTelegramNotifier(config.TelegramConfig{Enabled: true})
	if notifier.IsEnabled() {
		t.Error("notifier without token must be disabled")
	}
	if err := notifier.Send(context.Background(), "1", "text"); err != nil {
		t.Errorf("disabled notifier must be a no-op, got %v", err)
	}
}
