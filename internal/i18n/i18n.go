// Package i18n provides internationalization support.
package i18n

import (
	"fmt"
	"sync"
)

// Language represents a UI language.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = RU // Default language
)

// Translations for all supported languages.
var translations = map[Language]map[string]string{
	RU: {
		// App
		"app_name":    "LiveSub",
		"app_tooltip": "LiveSub - субтитры в реальном времени",

		// Tray menu
		"tray_idle":               "Готов к работе",
		"tray_starting":           "Запуск...",
		"tray_translating":        "Перевод...",
		"tray_error":              "Ошибка",
		"tray_chunks":             "Обработано фрагментов: %d",
		"tray_start":              "Начать перевод",
		"tray_start_hint":         "Захват звука и отправка на сервер Whisper",
		"tray_stop":               "Остановить перевод",
		"tray_stop_hint":          "Остановить захват звука",
		"tray_microphone":         "Микрофон",
		"tray_microphone_hint":    "Захватывать микрофон вместо звука системы",
		"tray_source":             "Источник звука...",
		"tray_source_hint":        "Выбрать устройство для захвата звука системы",
		"tray_debug":              "Отладочный режим",
		"tray_debug_hint":         "Заготовленные фразы без устройства и сервера",
		"tray_overlay":            "Окно субтитров",
		"tray_overlay_hint":       "Показать/скрыть окно субтитров",
		"tray_font_size":          "Размер шрифта",
		"tray_opacity":            "Прозрачность фона",
		"tray_model":              "Модель Whisper",
		"tray_history":            "История",
		"tray_export":             "Экспорт...",
		"tray_export_hint":        "Сохранить историю в текстовый файл",
		"tray_copy":               "Копировать последний перевод",
		"tray_clear":              "Очистить историю",
		"tray_shortcuts":          "Горячие клавиши",
		"tray_hotkeys":            "Назначить клавиши",
		"tray_language":           "Язык интерфейса",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать уведомления",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",

		// Notifications
		"notify_ready":    "LiveSub готов к работе",
		"notify_started":  "Перевод запущен",
		"notify_stopped":  "Перевод остановлен",
		"notify_error":    "Ошибка",
		"notify_exported": "История сохранена",
		"notify_copied":   "Скопировано в буфер обмена",
		"notify_cleared":  "История очищена",

		// Dialogs
		"dialog_select_source":        "Выберите источник звука:",
		"dialog_select_source_title":  "Источник звука",
		"dialog_no_sources":           "Устройства захвата не найдены",
		"dialog_export_title":         "Экспорт истории",
		"dialog_shortcuts_title":      "Горячие клавиши",
		"shortcut_toggle_translation": "Начать/остановить перевод",
		"shortcut_toggle_overlay":     "Показать/скрыть субтитры",
		"shortcut_export_history":     "Экспорт истории",
		"shortcut_show_shortcuts":     "Список горячих клавиш",

		// Console
		"console_status":     "Состояние",
		"console_chunks":     "Фрагменты",
		"console_mode":       "Режим",
		"console_model":      "Модель",
		"console_subtitle":   "Субтитр",
		"console_waiting":    "Ожидание перевода...",
		"console_search":     "Поиск: ",
		"console_history":    "История",
		"console_no_history": "История пуста",
		"console_help":       "пробел старт/стоп • m микрофон • d отладка • / поиск • e экспорт • y копировать • c очистить • q выход",

		// Errors
		"error_no_source":       "Выберите источник звука или включите микрофон",
		"error_permission":      "Нет доступа к микрофону. Разрешите доступ и попробуйте снова.",
		"error_device":          "Ошибка аудиоустройства",
		"error_export":          "Ошибка экспорта истории",
		"error_clipboard":       "Ошибка копирования в буфер обмена",
		"error_hotkey_register": "Не удалось зарегистрировать горячую клавишу",
		"error_history":         "Не удалось открыть архив истории",
	},

	EN: {
		// App
		"app_name":    "LiveSub",
		"app_tooltip": "LiveSub - live subtitles",

		// Tray menu
		"tray_idle":               "Ready",
		"tray_starting":           "Starting...",
		"tray_translating":        "Translating...",
		"tray_error":              "Error",
		"tray_chunks":             "Chunks processed: %d",
		"tray_start":              "Start translation",
		"tray_start_hint":         "Capture audio and send it to the Whisper server",
		"tray_stop":               "Stop translation",
		"tray_stop_hint":          "Stop audio capture",
		"tray_microphone":         "Microphone",
		"tray_microphone_hint":    "Capture the microphone instead of system audio",
		"tray_source":             "Audio source...",
		"tray_source_hint":        "Pick a device for system audio capture",
		"tray_debug":              "Debug mode",
		"tray_debug_hint":         "Canned phrases without device or server",
		"tray_overlay":            "Subtitle window",
		"tray_overlay_hint":       "Show/hide the subtitle window",
		"tray_font_size":          "Font size",
		"tray_opacity":            "Background opacity",
		"tray_model":              "Whisper model",
		"tray_history":            "History",
		"tray_export":             "Export...",
		"tray_export_hint":        "Save history to a text file",
		"tray_copy":               "Copy latest translation",
		"tray_clear":              "Clear history",
		"tray_shortcuts":          "Keyboard shortcuts",
		"tray_hotkeys":            "Change shortcuts",
		"tray_language":           "Language",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show notifications",
		"tray_quit":               "Quit",
		"tray_quit_hint":          "Close application",

		// Notifications
		"notify_ready":    "LiveSub is ready",
		"notify_started":  "Translation started",
		"notify_stopped":  "Translation stopped",
		"notify_error":    "Error",
		"notify_exported": "History saved",
		"notify_copied":   "Copied to clipboard",
		"notify_cleared":  "History cleared",

		// Dialogs
		"dialog_select_source":        "Select an audio source:",
		"dialog_select_source_title":  "Audio source",
		"dialog_no_sources":           "No capture devices found",
		"dialog_export_title":         "Export history",
		"dialog_shortcuts_title":      "Keyboard shortcuts",
		"shortcut_toggle_translation": "Start/Stop translation",
		"shortcut_toggle_overlay":     "Toggle overlay",
		"shortcut_export_history":     "Export history",
		"shortcut_show_shortcuts":     "Show shortcuts",

		// Console
		"console_status":     "Status",
		"console_chunks":     "Chunks",
		"console_mode":       "Mode",
		"console_model":      "Model",
		"console_subtitle":   "Subtitle",
		"console_waiting":    "Waiting for translation...",
		"console_search":     "Search: ",
		"console_history":    "History",
		"console_no_history": "No translations yet",
		"console_help":       "space start/stop • m microphone • d debug • / search • e export • y copy • c clear • q quit",

		// Errors
		"error_no_source":       "Please select an audio source or enable the microphone",
		"error_permission":      "Microphone permission denied. Please allow microphone access and try again.",
		"error_device":          "Audio device error",
		"error_export":          "History export error",
		"error_clipboard":       "Clipboard copy error",
		"error_hotkey_register": "Could not register hotkey",
		"error_history":         "Could not open the history archive",
	},
}

// T returns the translation for the given key.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()

	if strings, ok := translations[current]; ok {
		if s, ok := strings[key]; ok {
			return s
		}
	}
	// Fallback to key itself
	return key
}

// Tf форматирует перевод с аргументами.
func Tf(key string, args ...any) string {
	return fmt.Sprintf(T(key), args...)
}

// SetLanguage sets the current UI language.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	current = lang
}

// GetLanguage returns the current UI language.
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// AvailableLanguages returns list of supported languages.
func AvailableLanguages() []Language {
	return []Language{RU, EN}
}

// LanguageName returns display name for a language.
func LanguageName(lang Language) string {
	switch lang {
	case RU:
		return "Русский"
	case EN:
		return "English"
	default:
		return string(lang)
	}
}
