package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/skalibog/mtfsignal/pkg/logger"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// ErrNoDestination получатель уведомлений не задан
var ErrNoDestination = errors.New("получатель уведомлений не задан")

// Notifier провайдер доставки сообщений
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
	Name() string
	IsEnabled() bool
}

// Manager рассылает сообщения через все включенные провайдеры
type Manager struct {
	notifiers []Notifier
	signature string
}

// NewManager создает менеджер уведомлений
func NewManager(signature string, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		signature: signature,
	}
}

// AddNotifier добавляет провайдер
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Enabled сообщает, есть ли хотя бы один включенный провайдер
func (m *Manager) Enabled() bool {
	for _, n := range m.notifiers {
		if n.IsEnabled() {
			return true
		}
	}
	return false
}

// Send отправляет текст получателю сессии. Ошибки провайдеров объединяются.
func (m *Manager) Send(ctx context.Context, session *Session, text string) error {
	destination := session.Destination()
	if destination == "" {
		return ErrNoDestination
	}

	var err error
	for _, n := range m.notifiers {
		if !n.IsEnabled() {
			continue
		}
		if sendErr := n.Send(ctx, destination, text); sendErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", n.Name(), sendErr))
		}
	}
	return err
}

// SendSignal отправляет автоматический сигнал с номером за день
func (m *Manager) SendSignal(ctx context.Context, session *Session, signal *models.Signal) error {
	if session.Destination() == "" {
		return ErrNoDestination
	}

	index := session.NextIndex()
	text := FormatSignal(signal, fmt.Sprintf("%d за день", index), m.signature)

	if err := m.Send(ctx, session, text); err != nil {
		return fmt.Errorf("ошибка отправки сигнала %s: %w", signal.Symbol, err)
	}

	logger.Info("NOTIFY: Сигнал отправлен",
		zap.String("symbol", signal.Symbol),
		zap.String("direction", string(signal.Direction)),
		zap.Int("confidence", signal.Confidence),
		zap.Int("index", index))
	return nil
}

// SendManual отправляет результат ручного анализа независимо от уверенности
func (m *Manager) SendManual(ctx context.Context, session *Session, signal *models.Signal, minConfidence int) error {
	return m.Send(ctx, session, FormatManual(signal, minConfidence, m.signature))
}
