package ui

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/internal/notification"
	"github.com/skalibog/mtfsignal/pkg/logger"
	"github.com/skalibog/mtfsignal/pkg/models"
)

const maxLogLines = 50

// Стили UI
var (
	primaryColor   = lipgloss.Color("#0077cc")
	secondaryColor = lipgloss.Color("#333333")
	errorColor     = lipgloss.Color("#cc3300")
	successColor   = lipgloss.Color("#33cc33")
	warningColor   = lipgloss.Color("#cccc00")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(primaryColor).
			Padding(0, 1).
			Align(lipgloss.Center)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(secondaryColor).
			Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999")).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#222222"))
)

// ansiRegex удаляет ANSI-цвета из уровня логирования
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// TermUI терминальная доска последних сигналов и хвоста лога
type TermUI struct {
	logFile     string
	refreshRate time.Duration

	mu            sync.RWMutex
	signals       []*models.Signal
	scannedAt     time.Time
	logs          []string
	selectedIndex int
	width         int
	height        int

	program *tea.Program
}

// Сообщения для обновления UI
type refreshMsg struct{}
type tickMsg time.Time

// bubbleModel - модель для bubbletea
type bubbleModel struct {
	ui *TermUI
}

// NewTermUI создает терминальный интерфейс. logFile - JSON-лог приложения.
func NewTermUI(cfg config.UIConfig, logFile string) *TermUI {
	refresh := time.Duration(cfg.RefreshRate) * time.Millisecond
	if refresh <= 0 {
		refresh = time.Second
	}
	return &TermUI{
		logFile:     logFile,
		refreshRate: refresh,
		logs:        []string{"mtfsignal запущен. Ожидание сканирования..."},
		width:       120,
		height:      40,
	}
}

// Run показывает интерфейс до выхода пользователя или отмены контекста
func (ui *TermUI) Run(ctx context.Context) error {
	ui.reloadLogs()

	program := tea.NewProgram(bubbleModel{ui: ui}, tea.WithAltScreen(), tea.WithContext(ctx))
	ui.mu.Lock()
	ui.program = program
	ui.mu.Unlock()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("ошибка UI: %w", err)
	}
	return nil
}

// Publish принимает результаты сканирования (scanner.Sink)
func (ui *TermUI) Publish(signals []*models.Signal) {
	ui.mu.Lock()
	ui.signals = signals
	ui.scannedAt = time.Now()
	if ui.selectedIndex >= len(signals) {
		ui.selectedIndex = max(0, len(signals)-1)
	}
	program := ui.program
	ui.mu.Unlock()

	if program != nil {
		program.Send(refreshMsg{})
	}
}

func (ui *TermUI) reloadLogs() {
	if ui.logFile == "" {
		return
	}
	file, err := os.Open(ui.logFile)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("UI: Ошибка открытия лога", zap.Error(err))
		}
		return
	}
	defer file.Close()

	logs, err := tailLogs(file, maxLogLines)
	if err != nil {
		logger.Warn("UI: Ошибка чтения лога", zap.Error(err))
		return
	}
	if len(logs) == 0 {
		return
	}

	ui.mu.Lock()
	ui.logs = logs
	ui.mu.Unlock()
}

// tailLogs читает последние limit строк JSON-лога в читаемом виде
func tailLogs(r io.Reader, limit int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var logs []string
	for scanner.Scan() {
		logs = append(logs, formatLogLine(scanner.Text()))
		if len(logs) > limit {
			logs = logs[1:]
		}
	}
	return logs, scanner.Err()
}

// formatLogLine: JSON-запись zap -> "[15:04:05] [INFO] сообщение (поле: значение)"
func formatLogLine(line string) string {
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return line
	}

	level, _ := entry["level"].(string)
	ts, _ := entry["ts"].(string)
	msg, _ := entry["msg"].(string)
	level = ansiRegex.ReplaceAllString(level, "")

	timestamp := ""
	if t, err := time.Parse("02.01.2006 - 15:04:05.999999999Z07:00", ts); err == nil {
		timestamp = t.Format("15:04:05")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", timestamp, level, msg)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "level", "ts", "msg", "caller", "stack":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " (%s: %v)", k, entry[k])
	}
	return b.String()
}

// formatSignalLine строка доски для одного сигнала
func formatSignalLine(signal *models.Signal) string {
	return fmt.Sprintf("%-8s %-7s conf %3d%%  bias %+.2f  entry %s  sl %s  tp %s  rr %.2f",
		notification.DisplaySymbol(signal.Symbol),
		signal.Direction,
		signal.Confidence,
		signal.Bias,
		notification.FormatPrice(signal.Entry),
		notification.FormatPrice(signal.SL),
		notification.FormatPrice(signal.TP),
		signal.RR)
}

// formatTimeframes подробности по таймфреймам выбранного сигнала
func formatTimeframes(signal *models.Signal) string {
	parts := make([]string, 0, len(signal.Timeframes))
	for _, tf := range signal.Timeframes {
		marker := ""
		if tf.Label == signal.ReferenceTimeframe {
			marker = "*"
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s score %.0f atr %.4g vol %.2f",
			tf.Label, marker, tf.Trend, tf.Score, tf.ATR, tf.VolumeDelta))
	}
	return strings.Join(parts, " | ")
}

func directionStyle(direction models.Direction) lipgloss.Style {
	switch direction {
	case models.DirectionLong:
		return lipgloss.NewStyle().Foreground(successColor).Bold(true)
	case models.DirectionShort:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(warningColor)
	}
}

func renderSignalsSection(signals []*models.Signal, selectedIndex int, scannedAt time.Time) string {
	title := "СИГНАЛЫ"
	if !scannedAt.IsZero() {
		title += " · " + scannedAt.Format("15:04:05")
	}
	header := headerStyle.Render(title)
	content := strings.Builder{}

	if len(signals) == 0 {
		content.WriteString("  Ожидание данных...\n")
	}
	for i, signal := range signals {
		line := "  " + directionStyle(signal.Direction).Render(formatSignalLine(signal))
		if i == selectedIndex {
			line = selectedStyle.Render("> " + formatSignalLine(signal))
		}
		content.WriteString(line + "\n")
	}

	if selectedIndex >= 0 && selectedIndex < len(signals) {
		content.WriteString("\n  " + formatTimeframes(signals[selectedIndex]) + "\n")
	}

	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content.String()))
}

func renderLogsSection(logs []string, maxLines int) string {
	header := headerStyle.Render("ЛОГИ")
	content := strings.Builder{}

	start := 0
	if len(logs) > maxLines {
		start = len(logs) - maxLines
	}

	for _, log := range logs[start:] {
		switch {
		case strings.Contains(log, "[ERROR]"):
			log = lipgloss.NewStyle().Foreground(errorColor).Render(log)
		case strings.Contains(log, "[WARN]"):
			log = lipgloss.NewStyle().Foreground(warningColor).Render(log)
		case strings.Contains(log, "[INFO]"):
			log = lipgloss.NewStyle().Foreground(successColor).Render(log)
		case strings.Contains(log, "[DEBUG]"):
			log = lipgloss.NewStyle().Foreground(lipgloss.Color("#9999ff")).Render(log)
		}
		content.WriteString("  " + log + "\n")
	}

	return sectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content.String()))
}

func (ui *TermUI) tick() tea.Cmd {
	return tea.Tick(ui.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Методы для bubbletea
func (m bubbleModel) Init() tea.Cmd {
	return m.ui.tick()
}

func (m bubbleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.ui.mu.Lock()
		defer m.ui.mu.Unlock()
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up":
			m.ui.selectedIndex = max(0, m.ui.selectedIndex-1)
		case "down":
			m.ui.selectedIndex = max(0, min(len(m.ui.signals)-1, m.ui.selectedIndex+1))
		}

	case tea.WindowSizeMsg:
		m.ui.mu.Lock()
		m.ui.width = msg.Width
		m.ui.height = msg.Height
		m.ui.mu.Unlock()

	case tickMsg:
		m.ui.reloadLogs()
		return m, m.ui.tick()

	case refreshMsg:
	}

	return m, nil
}

func (m bubbleModel) View() string {
	m.ui.mu.RLock()
	defer m.ui.mu.RUnlock()

	// Под логи остается место после сигналов, заголовка и рамок
	logLines := max(5, m.ui.height-len(m.ui.signals)-16)

	title := titleStyle.Render("mtfsignal - мультитаймфреймовые сигналы структуры рынка")
	signals := renderSignalsSection(m.ui.signals, m.ui.selectedIndex, m.ui.scannedAt)
	logs := renderLogsSection(m.ui.logs, logLines)
	footer := footerStyle.Render("Клавиши: ↑/↓ - навигация, Q - выход")

	return appStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			signals,
			"\n",
			logs,
			"\n",
			footer,
		),
	)
}
