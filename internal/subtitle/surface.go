package subtitle

import (
	"fmt"
	"sync"
)

// Surface принимает текст субтитров и стиль. Вызовы fire-and-forget:
// если поверхность сейчас недоступна, вызов ничего не делает.
type Surface interface {
	UpdateSubtitle(text string)
	UpdateSubtitleStyle(style Style)
}

// Nop - поверхность, которая всё игнорирует.
type Nop struct{}

func (Nop) UpdateSubtitle(string) {}
func (Nop) UpdateSubtitleStyle(Style) {}

// Multi рассылает обновления нескольким поверхностям.
type Multi struct {
	mu       sync.RWMutex
	surfaces []Surface
}

// NewMulti создаёт рассылку по переданным поверхностям.
func NewMulti(surfaces ...Surface) *Multi {
	m := &Multi{}
	for _, s := range surfaces {
		m.Add(s)
	}
	return m
}

// Add добавляет поверхность. nil игнорируется.
func (m *Multi) Add(s Surface) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surfaces = append(m.surfaces, s)
}

func (m *Multi) UpdateSubtitle(text string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.surfaces {
		s.UpdateSubtitle(text)
	}
}

func (m *Multi) UpdateSubtitleStyle(style Style) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.surfaces {
		s.UpdateSubtitleStyle(style)
	}
}

// ErrorText форматирует ошибку для показа вместо субтитра.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("[Error: %s]", err.Error())
}
