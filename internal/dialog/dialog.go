// Package dialog предоставляет GUI диалоги: выбор источника звука,
// сохранение экспорта, горячие клавиши, сообщения.
package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"

	"livesub/internal/audio"
	"livesub/internal/config"
	"livesub/internal/i18n"
)

// ErrCanceled - пользователь закрыл диалог.
var ErrCanceled = zenity.ErrCanceled

// ErrNoSources - нет устройств для выбора.
var ErrNoSources = errors.New("нет доступных устройств захвата")

// SelectSource предлагает выбрать устройство захвата.
func SelectSource(sources []audio.Source, current *audio.Source) (*audio.Source, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	items := sourceItems(sources)
	opts := []zenity.Option{zenity.Title(i18n.T("dialog_select_source_title"))}
	if current != nil {
		for i, s := range sources {
			if s.ID == current.ID {
				opts = append(opts, zenity.DefaultItems(items[i]))
				break
			}
		}
	}

	selected, err := zenity.List(i18n.T("dialog_select_source"), items, opts...)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		if item == selected {
			src := sources[i]
			return &src, nil
		}
	}
	return nil, ErrCanceled
}

// sourceItems строит подписи устройств для списка.
func sourceItems(sources []audio.Source) []string {
	items := make([]string, len(sources))
	for i, s := range sources {
		items[i] = fmt.Sprintf("%s [%s]", s.Name, s.Kind)
	}
	return items
}

// SaveExport спрашивает путь для файла экспорта.
func SaveExport(defaultName string) (string, error) {
	return zenity.SelectFileSave(
		zenity.Title(i18n.T("dialog_export_title")),
		zenity.Filename(defaultName),
		zenity.ConfirmOverwrite(),
		zenity.FileFilter{Name: "Text", Patterns: []string{"*.txt"}},
	)
}

// ShowShortcuts показывает список горячих клавиш.
func ShowShortcuts(hks config.Hotkeys) {
	zenity.Info(ShortcutsText(hks), zenity.Title(i18n.T("dialog_shortcuts_title")))
}

// ShortcutsText форматирует горячие клавиши, по одной на строку.
func ShortcutsText(hks config.Hotkeys) string {
	lines := make([]string, 0, len(config.Actions()))
	for _, a := range config.Actions() {
		lines = append(lines, fmt.Sprintf("%s - %s", hks.Get(a).Display(), i18n.T("shortcut_"+string(a))))
	}
	return strings.Join(lines, "\n")
}

// SelectHotkey открывает диалог выбора горячей клавиши для действия.
// Возвращает выбранную конфигурацию или ошибку если пользователь отменил.
func SelectHotkey(action config.Action, current config.HotkeyConfig) (config.HotkeyConfig, error) {
	title := i18n.T("shortcut_" + string(action))

	// Шаг 1: Выбор модификаторов
	mods := config.AvailableModifiers()
	modOptions := make([]string, len(mods))
	for i, m := range mods {
		modOptions[i] = config.HotkeyConfig{Key: config.Key(m)}.Display()
	}

	currentMods := make([]string, 0, len(current.Modifiers))
	for _, m := range current.Modifiers {
		currentMods = append(currentMods, config.HotkeyConfig{Key: config.Key(m)}.Display())
	}

	selectedMods, err := zenity.ListMultiple(
		"Выберите модификаторы:",
		modOptions,
		zenity.Title(title),
		zenity.DefaultItems(currentMods...),
	)
	if err != nil {
		return current, err // Пользователь отменил
	}
	if len(selectedMods) == 0 {
		return current, fmt.Errorf("необходимо выбрать хотя бы один модификатор")
	}

	newMods := make([]config.Modifier, 0, len(selectedMods))
	for _, s := range selectedMods {
		for i, opt := range modOptions {
			if s == opt {
				newMods = append(newMods, mods[i])
				break
			}
		}
	}

	// Шаг 2: Выбор клавиши
	keys := config.AvailableKeys()
	keyOptions := make([]string, len(keys))
	for i, k := range keys {
		keyOptions[i] = config.HotkeyConfig{Key: k}.Display()
	}

	selectedKey, err := zenity.List(
		"Выберите клавишу:",
		keyOptions,
		zenity.Title(title),
		zenity.DefaultItems(config.HotkeyConfig{Key: current.Key}.Display()),
	)
	if err != nil {
		return current, err // Пользователь отменил
	}

	for i, opt := range keyOptions {
		if selectedKey == opt {
			return config.HotkeyConfig{Modifiers: newMods, Key: keys[i]}, nil
		}
	}
	return current, ErrCanceled
}

// ShowInfo показывает информационное сообщение.
func ShowInfo(title, message string) {
	zenity.Info(message, zenity.Title(title))
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	zenity.Error(message, zenity.Title(title))
}
