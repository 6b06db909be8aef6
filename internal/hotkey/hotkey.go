// Package hotkey предоставляет глобальные горячие клавиши.
package hotkey

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"livesub/internal/config"
)

// debounceInterval - защита от key repeat.
const debounceInterval = 300 * time.Millisecond

// binding - одна зарегистрированная клавиша.
type binding struct {
	hk     *hotkey.Hotkey
	cfg    config.HotkeyConfig
	stopCh chan struct{}
}

// Manager держит горячие клавиши всех действий.
type Manager struct {
	mu       sync.Mutex
	handlers map[config.Action]func()
	bindings map[config.Action]*binding
}

// New создаёт менеджер. handlers вызываются при нажатии.
func New(handlers map[config.Action]func()) *Manager {
	return &Manager{
		handlers: handlers,
		bindings: make(map[config.Action]*binding),
	}
}

// RegisterAll регистрирует все привязки. Ошибки отдельных клавиш
// собираются, остальные клавиши продолжают работать.
func (m *Manager) RegisterAll(hks config.Hotkeys) error {
	var errs []error
	for _, action := range config.Actions() {
		if _, ok := m.handlers[action]; !ok {
			continue
		}
		if err := m.Register(action, hks.Get(action)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", action, err))
		}
	}
	return errors.Join(errs...)
}

// Register регистрирует клавишу действия, заменяя предыдущую.
func (m *Manager) Register(action config.Action, cfg config.HotkeyConfig) error {
	log.Printf("Регистрация горячей клавиши %s: %s", action, cfg.String())

	m.unregister(action)

	key, ok := keyMap[cfg.Key]
	if !ok {
		return fmt.Errorf("неизвестная клавиша %q", cfg.Key)
	}

	mods := make([]hotkey.Modifier, 0, len(cfg.Modifiers))
	for _, mod := range cfg.Modifiers {
		if hm, ok := modifierMap[mod]; ok {
			mods = append(mods, hm)
		}
	}

	b := &binding{
		hk:     hotkey.New(mods, key),
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
	if err := b.hk.Register(); err != nil {
		log.Printf("Ошибка регистрации: %v", err)
		return err
	}

	m.mu.Lock()
	m.bindings[action] = b
	handler := m.handlers[action]
	m.mu.Unlock()

	go listen(b, handler)
	return nil
}

// unregister снимает клавишу действия. Снятие может зависнуть на
// некоторых X11 серверах, поэтому ждём не дольше 500ms.
func (m *Manager) unregister(action config.Action) {
	m.mu.Lock()
	b := m.bindings[action]
	delete(m.bindings, action)
	m.mu.Unlock()

	if b == nil {
		return
	}
	close(b.stopCh)

	done := make(chan struct{})
	go func() {
		b.hk.Unregister()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		log.Printf("Hotkey unregister timeout: %s", action)
	}
}

// UnregisterAll снимает все клавиши.
func (m *Manager) UnregisterAll() {
	for _, action := range config.Actions() {
		m.unregister(action)
	}
}

// Current возвращает зарегистрированную клавишу действия.
func (m *Manager) Current(action config.Action) (config.HotkeyConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[action]
	if !ok {
		return config.HotkeyConfig{}, false
	}
	return b.cfg, true
}

func listen(b *binding, handler func()) {
	var lastKeydown time.Time
	for {
		select {
		case <-b.stopCh:
			return
		case _, ok := <-b.hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if now.Sub(lastKeydown) < debounceInterval {
				continue
			}
			lastKeydown = now
			if handler != nil {
				handler()
			}
		}
	}
}

// RunOnMainThread запускает функцию в главном потоке (требование для macOS).
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

// modifierMap определён в platform-specific файлах:
// - modifiers_linux.go
// - modifiers_darwin.go
// - modifiers_windows.go

// keyMap маппинг config.Key -> hotkey.Key
var keyMap = map[config.Key]hotkey.Key{
	"space": hotkey.KeySpace, "return": hotkey.KeyReturn, "tab": hotkey.KeyTab,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}
