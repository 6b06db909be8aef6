// Package notify предоставляет системные уведомления.
package notify

import (
	"sync"

	"github.com/gen2brain/beeep"

	"livesub/internal/i18n"
)

const appName = "LiveSub"

// maxMessage - длина текста уведомления до обрезки.
const maxMessage = 100

// Notifier отправляет системные уведомления.
type Notifier struct {
	mu      sync.RWMutex
	enabled bool
	send    func(title, message, icon string) error
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		send: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Ready сообщает о запуске приложения.
func (n *Notifier) Ready() {
	n.notify("", i18n.T("notify_ready"))
}

// Started сообщает о запуске перевода.
func (n *Notifier) Started(mode string) {
	n.notify(i18n.T("notify_started"), mode)
}

// Stopped сообщает об остановке перевода.
func (n *Notifier) Stopped() {
	n.notify("", i18n.T("notify_stopped"))
}

// Exported сообщает о сохранении истории.
func (n *Notifier) Exported(path string) {
	n.notify(i18n.T("notify_exported"), path)
}

// Copied сообщает о копировании текста.
func (n *Notifier) Copied(text string) {
	n.notify(i18n.T("notify_copied"), text)
}

// Cleared сообщает об очистке истории.
func (n *Notifier) Cleared() {
	n.notify("", i18n.T("notify_cleared"))
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), msg)
}

func (n *Notifier) notify(title, message string) {
	n.mu.RLock()
	enabled := n.enabled
	n.mu.RUnlock()
	if !enabled {
		return
	}

	if r := []rune(message); len(r) > maxMessage {
		message = string(r[:maxMessage]) + "..."
	}

	// Игнорируем ошибки уведомлений - они не критичны
	if title != "" {
		_ = n.send(appName+": "+title, message, "")
	} else {
		_ = n.send(appName, message, "")
	}
}
