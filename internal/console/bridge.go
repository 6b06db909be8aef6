package console

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"livesub/internal/capture"
	"livesub/internal/subtitle"
)

// Bridge передаёт события приложения в запущенную программу bubbletea.
// До Attach и после Detach события отбрасываются.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

var _ subtitle.Surface = (*Bridge)(nil)

// NewBridge создаёт пустой мост.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach подключает функцию доставки сообщений (обычно Program.Send).
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

// Detach отключает доставку.
func (b *Bridge) Detach() {
	b.Attach(nil)
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) UpdateSubtitle(text string) {
	b.post(SubtitleMsg{Text: text})
}

func (b *Bridge) UpdateSubtitleStyle(style subtitle.Style) {
	b.post(StyleMsg{Style: style})
}

// Status сообщает новое состояние контроллера.
func (b *Bridge) Status(s capture.Snapshot) {
	b.post(StatusMsg{Snapshot: s})
}

// HistoryChanged просит консоль перечитать историю.
func (b *Bridge) HistoryChanged() {
	b.post(HistoryChangedMsg{})
}

// Settings сообщает изменённые переключатели (например из трея).
func (b *Bridge) Settings(useMicrophone, debugMode bool) {
	b.post(SettingsMsg{UseMicrophone: useMicrophone, DebugMode: debugMode})
}

// Run запускает консоль и блокируется до выхода пользователя.
func Run(b Backend, opts Options, bridge *Bridge) error {
	p := tea.NewProgram(New(b, opts), tea.WithAltScreen())
	if bridge != nil {
		bridge.Attach(p.Send)
		defer bridge.Detach()
	}
	_, err := p.Run()
	return err
}
