// Package tray предоставляет системный трей с меню управления переводом.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"livesub/embedded"
	"livesub/internal/config"
	"livesub/internal/i18n"
)

// State представляет состояние перевода для отображения в трее.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateTranslating
	StateError
)

// FontSizes и Opacities - пресеты стиля субтитров.
var (
	FontSizes = []int{18, 24, 32, 40, 48}
	Opacities = []float64{0.4, 0.6, 0.8, 1.0}
)

// Options - начальные значения переключателей меню.
type Options struct {
	UseMicrophone  bool
	DebugMode      bool
	OverlayVisible bool
	Notifications  bool
	FontSize       int
	Opacity        float64
	ModelID        string
	Models         []Choice
	Hotkeys        config.Hotkeys
	Language       i18n.Language
}

// Choice - пункт подменю выбора.
type Choice struct {
	ID   string
	Name string
}

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnToggleTranslation   func()
	OnMicrophoneToggle    func() bool
	OnSelectSource        func()
	OnDebugToggle         func() bool
	OnOverlayToggle       func() bool
	OnFontSize            func(size int)
	OnOpacity             func(opacity float64)
	OnModel               func(id string)
	OnExport              func()
	OnCopyLatest          func()
	OnClearHistory        func()
	OnShowShortcuts       func()
	OnChangeHotkey        func(action config.Action)
	OnLanguage            func(lang i18n.Language)
	OnNotificationsToggle func() bool
	OnQuit                func()
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks Callbacks
	opts      Options

	mu         sync.Mutex
	status     *systray.MenuItem
	chunks     *systray.MenuItem
	toggleBtn  *systray.MenuItem
	micOn      *systray.MenuItem
	sourceBtn  *systray.MenuItem
	debugOn    *systray.MenuItem
	overlayOn  *systray.MenuItem
	fontMenu   *systray.MenuItem
	fontItems  []*systray.MenuItem
	opacMenu   *systray.MenuItem
	opacItems  []*systray.MenuItem
	modelMenu  *systray.MenuItem
	modelItems []*systray.MenuItem
	history    *systray.MenuItem
	exportBtn  *systray.MenuItem
	copyBtn    *systray.MenuItem
	clearBtn   *systray.MenuItem
	shortcuts  *systray.MenuItem
	hkMenu     *systray.MenuItem
	hkItems    map[config.Action]*systray.MenuItem
	langMenu   *systray.MenuItem
	langItems  []*systray.MenuItem
	notifyOn   *systray.MenuItem
	quitBtn    *systray.MenuItem
	state      State
	detail     string
	processed  int
}

// New создаёт новый Tray.
func New(opts Options, callbacks Callbacks) *Tray {
	return &Tray{
		callbacks: callbacks,
		opts:      opts,
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(embedded.IconIdle)
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.mu.Lock()
	defer t.mu.Unlock()

	// Статус
	t.status = systray.AddMenuItem(i18n.T("tray_idle"), "")
	t.status.Disable()
	t.chunks = systray.AddMenuItem(i18n.Tf("tray_chunks", 0), "")
	t.chunks.Disable()

	systray.AddSeparator()

	// Управление захватом
	t.toggleBtn = systray.AddMenuItem(i18n.T("tray_start"), i18n.T("tray_start_hint"))
	t.micOn = systray.AddMenuItemCheckbox(i18n.T("tray_microphone"), i18n.T("tray_microphone_hint"), t.opts.UseMicrophone)
	t.sourceBtn = systray.AddMenuItem(i18n.T("tray_source"), i18n.T("tray_source_hint"))
	t.debugOn = systray.AddMenuItemCheckbox(i18n.T("tray_debug"), i18n.T("tray_debug_hint"), t.opts.DebugMode)

	systray.AddSeparator()

	// Субтитры
	t.overlayOn = systray.AddMenuItemCheckbox(i18n.T("tray_overlay"), i18n.T("tray_overlay_hint"), t.opts.OverlayVisible)

	t.fontMenu = systray.AddMenuItem(i18n.T("tray_font_size"), "")
	for _, size := range FontSizes {
		item := t.fontMenu.AddSubMenuItemCheckbox(fmt.Sprintf("%d px", size), "", size == t.opts.FontSize)
		t.fontItems = append(t.fontItems, item)
	}

	t.opacMenu = systray.AddMenuItem(i18n.T("tray_opacity"), "")
	for _, o := range Opacities {
		item := t.opacMenu.AddSubMenuItemCheckbox(fmt.Sprintf("%.0f%%", o*100), "", o == t.opts.Opacity)
		t.opacItems = append(t.opacItems, item)
	}

	t.modelMenu = systray.AddMenuItem(i18n.T("tray_model"), "")
	for _, m := range t.opts.Models {
		item := t.modelMenu.AddSubMenuItemCheckbox(m.Name, m.ID, m.ID == t.opts.ModelID)
		t.modelItems = append(t.modelItems, item)
	}

	systray.AddSeparator()

	// История
	t.history = systray.AddMenuItem(i18n.T("tray_history"), "")
	t.exportBtn = t.history.AddSubMenuItem(i18n.T("tray_export"), i18n.T("tray_export_hint"))
	t.copyBtn = t.history.AddSubMenuItem(i18n.T("tray_copy"), "")
	t.clearBtn = t.history.AddSubMenuItem(i18n.T("tray_clear"), "")

	t.shortcuts = systray.AddMenuItem(i18n.T("tray_shortcuts"), "")
	t.hkMenu = systray.AddMenuItem(i18n.T("tray_hotkeys"), "")
	t.hkItems = make(map[config.Action]*systray.MenuItem)
	for _, action := range config.Actions() {
		item := t.hkMenu.AddSubMenuItem(shortcutTitle(action, t.opts.Hotkeys), "")
		t.hkItems[action] = item
		go t.watchHotkey(action, item)
	}

	t.langMenu = systray.AddMenuItem(i18n.T("tray_language"), "")
	for _, lang := range i18n.AvailableLanguages() {
		item := t.langMenu.AddSubMenuItemCheckbox(i18n.LanguageName(lang), "", lang == t.opts.Language)
		t.langItems = append(t.langItems, item)
	}

	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.opts.Notifications)

	systray.AddSeparator()

	// Выход
	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	// Обработка событий меню
	go t.handleMenuEvents()
	t.watchChoices(t.fontItems, func(i int) {
		if t.callbacks.OnFontSize != nil {
			t.callbacks.OnFontSize(FontSizes[i])
		}
	})
	t.watchChoices(t.opacItems, func(i int) {
		if t.callbacks.OnOpacity != nil {
			t.callbacks.OnOpacity(Opacities[i])
		}
	})
	t.watchChoices(t.modelItems, func(i int) {
		if t.callbacks.OnModel != nil {
			t.callbacks.OnModel(t.opts.Models[i].ID)
		}
	})
	t.watchChoices(t.langItems, func(i int) {
		if t.callbacks.OnLanguage != nil {
			t.callbacks.OnLanguage(i18n.AvailableLanguages()[i])
		}
	})
}

// shortcutTitle - "Описание (Ctrl+Shift+T)".
func shortcutTitle(action config.Action, hks config.Hotkeys) string {
	return i18n.T("shortcut_"+string(action)) + " (" + hks.Get(action).Display() + ")"
}

func (t *Tray) watchHotkey(action config.Action, item *systray.MenuItem) {
	for range item.ClickedCh {
		if t.callbacks.OnChangeHotkey != nil {
			t.callbacks.OnChangeHotkey(action)
		}
	}
}

// SetHotkeys обновляет подписи пунктов горячих клавиш.
func (t *Tray) SetHotkeys(hks config.Hotkeys) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts.Hotkeys = hks
	for action, item := range t.hkItems {
		item.SetTitle(shortcutTitle(action, hks))
	}
}

// watchChoices делает группу пунктов радиокнопками.
func (t *Tray) watchChoices(items []*systray.MenuItem, onPick func(i int)) {
	for i, item := range items {
		go func(i int, item *systray.MenuItem) {
			for range item.ClickedCh {
				for j, other := range items {
					if j == i {
						other.Check()
					} else {
						other.Uncheck()
					}
				}
				onPick(i)
			}
		}(i, item)
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func (t *Tray) handleMenuEvents() {
	cb := t.callbacks
	for {
		select {
		case <-t.toggleBtn.ClickedCh:
			if cb.OnToggleTranslation != nil {
				cb.OnToggleTranslation()
			}

		case <-t.micOn.ClickedCh:
			if cb.OnMicrophoneToggle != nil {
				setChecked(t.micOn, cb.OnMicrophoneToggle())
			}

		case <-t.sourceBtn.ClickedCh:
			if cb.OnSelectSource != nil {
				cb.OnSelectSource()
			}

		case <-t.debugOn.ClickedCh:
			if cb.OnDebugToggle != nil {
				setChecked(t.debugOn, cb.OnDebugToggle())
			}

		case <-t.overlayOn.ClickedCh:
			if cb.OnOverlayToggle != nil {
				setChecked(t.overlayOn, cb.OnOverlayToggle())
			}

		case <-t.exportBtn.ClickedCh:
			if cb.OnExport != nil {
				cb.OnExport()
			}

		case <-t.copyBtn.ClickedCh:
			if cb.OnCopyLatest != nil {
				cb.OnCopyLatest()
			}

		case <-t.clearBtn.ClickedCh:
			if cb.OnClearHistory != nil {
				cb.OnClearHistory()
			}

		case <-t.shortcuts.ClickedCh:
			if cb.OnShowShortcuts != nil {
				cb.OnShowShortcuts()
			}

		case <-t.notifyOn.ClickedCh:
			if cb.OnNotificationsToggle != nil {
				setChecked(t.notifyOn, cb.OnNotificationsToggle())
			}

		// Выход
		case <-t.quitBtn.ClickedCh:
			if cb.OnQuit != nil {
				cb.OnQuit()
			}
			systray.Quit()
			return
		}
	}
}

// SetState устанавливает состояние перевода и обновляет иконку.
func (t *Tray) SetState(state State, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.detail = detail
	t.applyState()
}

// applyState обновляет иконку и подписи состояния. Вызывается под t.mu.
func (t *Tray) applyState() {
	state, detail := t.state, t.detail

	var icon []byte
	var title string
	switch state {
	case StateStarting:
		icon, title = embedded.IconStarting, i18n.T("tray_starting")
	case StateTranslating:
		icon, title = embedded.IconTranslating, i18n.T("tray_translating")
	case StateError:
		icon, title = embedded.IconError, i18n.T("tray_error")
	default:
		icon, title = embedded.IconIdle, i18n.T("tray_idle")
	}
	if detail != "" {
		title += ": " + detail
	}

	systray.SetIcon(icon)
	systray.SetTooltip(i18n.T("app_name") + " - " + title)
	if t.status != nil {
		t.status.SetTitle(title)
	}
	if t.toggleBtn != nil {
		if state == StateStarting || state == StateTranslating {
			t.toggleBtn.SetTitle(i18n.T("tray_stop"))
			t.toggleBtn.SetTooltip(i18n.T("tray_stop_hint"))
		} else {
			t.toggleBtn.SetTitle(i18n.T("tray_start"))
			t.toggleBtn.SetTooltip(i18n.T("tray_start_hint"))
		}
	}
}

// SetChunks обновляет счётчик обработанных фрагментов.
func (t *Tray) SetChunks(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed = n
	if t.chunks != nil {
		t.chunks.SetTitle(i18n.Tf("tray_chunks", n))
	}
}

// SetOverlayChecked синхронизирует флажок окна субтитров (горячая клавиша).
func (t *Tray) SetOverlayChecked(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.overlayOn != nil {
		setChecked(t.overlayOn, visible)
	}
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	t.mu.Lock()
	defer t.mu.Unlock()

	systray.SetTitle(i18n.T("app_name"))
	t.applyState()

	if t.chunks != nil {
		t.chunks.SetTitle(i18n.Tf("tray_chunks", t.processed))
	}
	retitle := func(item *systray.MenuItem, title, hint string) {
		if item == nil {
			return
		}
		item.SetTitle(i18n.T(title))
		if hint != "" {
			item.SetTooltip(i18n.T(hint))
		}
	}
	retitle(t.micOn, "tray_microphone", "tray_microphone_hint")
	retitle(t.sourceBtn, "tray_source", "tray_source_hint")
	retitle(t.debugOn, "tray_debug", "tray_debug_hint")
	retitle(t.overlayOn, "tray_overlay", "tray_overlay_hint")
	retitle(t.fontMenu, "tray_font_size", "")
	retitle(t.opacMenu, "tray_opacity", "")
	retitle(t.modelMenu, "tray_model", "")
	retitle(t.history, "tray_history", "")
	retitle(t.exportBtn, "tray_export", "tray_export_hint")
	retitle(t.copyBtn, "tray_copy", "")
	retitle(t.clearBtn, "tray_clear", "")
	retitle(t.shortcuts, "tray_shortcuts", "")
	retitle(t.hkMenu, "tray_hotkeys", "")
	retitle(t.langMenu, "tray_language", "")
	retitle(t.notifyOn, "tray_notifications", "tray_notifications_hint")
	retitle(t.quitBtn, "tray_quit", "tray_quit_hint")

	for action, item := range t.hkItems {
		item.SetTitle(shortcutTitle(action, t.opts.Hotkeys))
	}
}

func (t *Tray) onExit() {
	// Cleanup при выходе
}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}
