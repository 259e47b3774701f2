package notification

import (
	"sync"
)

// Session получатель автоматических сигналов и счетчик сигналов за день
type Session struct {
	mu          sync.Mutex
	destination string
	count       int
}

// NewSession создает сессию с начальным получателем (может быть пустым)
func NewSession(destination string) *Session {
	return &Session{destination: destination}
}

// SetDestination меняет получателя
func (s *Session) SetDestination(destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destination = destination
}

// Destination текущий получатель
func (s *Session) Destination() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destination
}

// NextIndex увеличивает счетчик и возвращает номер сигнала за день
func (s *Session) NextIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return s.count
}

// Count число сигналов за день
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Reset обнуляет дневной счетчик
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = 0
}
