package config

import (
	"strconv"
	"strings"
)

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу: "a".."z", "f1".."f12", "space", "return", "tab".
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyE      Key = "e"
	KeyH      Key = "h"
	KeyO      Key = "o"
	KeyT      Key = "t"
)

// HotkeyConfig хранит настройки горячей клавиши.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers"`
	Key       Key        `json:"key"`
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, string(h.Key))
	return strings.Join(parts, "+")
}

// Display возвращает клавишу в виде "Ctrl+Shift+T".
func (h HotkeyConfig) Display() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, title(string(m)))
	}
	key := string(h.Key)
	if len(key) == 1 || strings.HasPrefix(key, "f") {
		key = strings.ToUpper(key)
	} else {
		key = title(key)
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Action - действие, привязанное к горячей клавише.
type Action string

const (
	ActionToggleTranslation Action = "toggle_translation"
	ActionToggleOverlay     Action = "toggle_overlay"
	ActionExportHistory     Action = "export_history"
	ActionShowShortcuts     Action = "show_shortcuts"
)

// Actions возвращает все действия в порядке показа.
func Actions() []Action {
	return []Action{
		ActionToggleTranslation,
		ActionToggleOverlay,
		ActionExportHistory,
		ActionShowShortcuts,
	}
}

// Hotkeys - привязки всех действий.
type Hotkeys struct {
	ToggleTranslation HotkeyConfig `json:"toggle_translation"`
	ToggleOverlay     HotkeyConfig `json:"toggle_overlay"`
	ExportHistory     HotkeyConfig `json:"export_history"`
	ShowShortcuts     HotkeyConfig `json:"show_shortcuts"`
}

func ctrlShift(k Key) HotkeyConfig {
	return HotkeyConfig{Modifiers: []Modifier{ModCtrl, ModShift}, Key: k}
}

// DefaultHotkeys возвращает Ctrl+Shift+T/O/E/H.
func DefaultHotkeys() Hotkeys {
	return Hotkeys{
		ToggleTranslation: ctrlShift(KeyT),
		ToggleOverlay:     ctrlShift(KeyO),
		ExportHistory:     ctrlShift(KeyE),
		ShowShortcuts:     ctrlShift(KeyH),
	}
}

// Get возвращает привязку действия.
func (h Hotkeys) Get(action Action) HotkeyConfig {
	switch action {
	case ActionToggleTranslation:
		return h.ToggleTranslation
	case ActionToggleOverlay:
		return h.ToggleOverlay
	case ActionExportHistory:
		return h.ExportHistory
	case ActionShowShortcuts:
		return h.ShowShortcuts
	}
	return HotkeyConfig{}
}

// With возвращает копию с новой привязкой действия.
func (h Hotkeys) With(action Action, hk HotkeyConfig) Hotkeys {
	switch action {
	case ActionToggleTranslation:
		h.ToggleTranslation = hk
	case ActionToggleOverlay:
		h.ToggleOverlay = hk
	case ActionExportHistory:
		h.ExportHistory = hk
	case ActionShowShortcuts:
		h.ShowShortcuts = hk
	}
	return h
}

// withDefaults заполняет пустые привязки значениями по умолчанию.
func (h Hotkeys) withDefaults() Hotkeys {
	def := DefaultHotkeys()
	for _, a := range Actions() {
		if h.Get(a).Key == "" {
			h = h.With(a, def.Get(a))
		}
	}
	return h
}

// AvailableModifiers возвращает список доступных модификаторов.
func AvailableModifiers() []Modifier {
	return []Modifier{ModCtrl, ModShift, ModAlt, ModSuper}
}

// AvailableKeys возвращает список доступных клавиш.
func AvailableKeys() []Key {
	keys := []Key{KeySpace, KeyReturn, KeyTab}
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, Key(string(c)))
	}
	for i := 1; i <= 12; i++ {
		keys = append(keys, Key("f"+strconv.Itoa(i)))
	}
	return keys
}
