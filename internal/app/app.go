// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"livesub/internal/audio"
	"livesub/internal/capture"
	"livesub/internal/config"
	"livesub/internal/console"
	"livesub/internal/device"
	"livesub/internal/dialog"
	"livesub/internal/history"
	"livesub/internal/hotkey"
	"livesub/internal/i18n"
	"livesub/internal/notify"
	"livesub/internal/overlay"
	"livesub/internal/subtitle"
	"livesub/internal/tray"
	"livesub/internal/whisper"
)

// ErrNothingToCopy - история пуста, копировать нечего.
var ErrNothingToCopy = errors.New("история пуста")

// Options - параметры запуска из командной строки.
type Options struct {
	ConfigPath string
	Console    bool
	Debug      bool
	ServerURL  string
}

// App представляет главное приложение.
type App struct {
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	opts       Options
	config     *config.Config
	ledger     *history.Ledger
	store      *history.Store
	client     *whisper.Client
	controller *capture.Controller
	surfaces   *subtitle.Multi
	overlay    *overlay.Window
	bridge     *console.Bridge
	notifier   *notify.Notifier
	tray       *tray.Tray
	hotkeys    *hotkey.Manager
	audioReady bool
	lastStatus capture.Status
	exportDir  string
	copyText   func(string) error
	closeOnce  sync.Once
}

// New создаёт новое приложение.
func New(opts Options) (*App, error) {
	var cfg *config.Config
	if opts.ConfigPath != "" {
		cfg = config.NewAt(opts.ConfigPath)
	} else {
		cfg = config.New()
	}

	// Инициализируем язык интерфейса из конфига
	if uiLang := cfg.UILanguage(); uiLang != "" {
		i18n.SetLanguage(i18n.Language(uiLang))
	}
	if opts.Debug {
		cfg.SetDebugMode(true)
	}
	if opts.ServerURL != "" {
		cfg.SetServerURL(opts.ServerURL)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:        ctx,
		cancel:     cancel,
		opts:       opts,
		config:     cfg,
		ledger:     history.NewLedger(),
		notifier:   notify.New(cfg.NotificationsEnabled()),
		lastStatus: capture.StatusIdle,
		exportDir:  ".",
		copyText:   clipboard.WriteAll,
	}

	if err := device.Init(); err != nil {
		// Отладочный режим работает и без аудиосистемы
		log.Printf("Аудиосистема недоступна: %v", err)
	} else {
		app.audioReady = true
	}

	app.openHistory()

	app.client = whisper.New(whisper.Config{
		URL:   cfg.ServerURL(),
		Model: cfg.ModelID(),
	})

	pos, size := cfg.OverlayBounds()
	app.overlay = overlay.New(overlay.Bounds{
		X:      pos.X,
		Y:      pos.Y,
		Width:  size.Width,
		Height: size.Height,
	}, cfg.SubtitleStyle())
	app.overlay.OnResize(func(b overlay.Bounds) {
		app.config.SetOverlayBounds(config.Point{X: b.X, Y: b.Y}, config.Size{Width: b.Width, Height: b.Height})
	})
	app.overlay.OnClose(func() {
		app.config.SetOverlayVisible(false)
		if app.tray != nil {
			app.tray.SetOverlayChecked(false)
		}
	})

	app.surfaces = subtitle.NewMulti(app.overlay)
	if opts.Console {
		app.bridge = console.NewBridge()
		app.surfaces.Add(app.bridge)
		app.ledger.OnAppend(func(history.Record) {
			app.bridge.HistoryChanged()
		})
	}

	app.controller = capture.New(capture.Config{
		Open:       app.openStream,
		Translator: app.client,
		Surface:    app.surfaces,
		History:    app.ledger,
	})
	app.controller.OnChange(app.onStatusChange)

	cfg.OnStyleChange(func(style subtitle.Style) {
		app.surfaces.UpdateSubtitleStyle(style)
	})

	app.hotkeys = hotkey.New(map[config.Action]func(){
		config.ActionToggleTranslation: app.toggleFromUI,
		config.ActionToggleOverlay:     func() { app.ToggleOverlay() },
		config.ActionExportHistory:     app.exportWithDialog,
		config.ActionShowShortcuts:     app.showShortcuts,
	})
	cfg.OnHotkeysChange(func(hks config.Hotkeys) {
		if err := app.hotkeys.RegisterAll(hks); err != nil {
			log.Printf("Ошибка регистрации горячих клавиш: %v", err)
			app.notifier.Error(i18n.T("error_hotkey_register"))
		}
		if app.tray != nil {
			app.tray.SetHotkeys(hks)
		}
	})

	if !opts.Console {
		app.tray = tray.New(app.trayOptions(), app.trayCallbacks())
	}

	return app, nil
}

// openHistory открывает архив истории и восстанавливает из него ленту.
func (a *App) openHistory() {
	store, err := history.OpenStore(a.config.HistoryDB())
	if err != nil {
		log.Printf("Ошибка открытия архива истории: %v", err)
		a.notifier.Error(i18n.T("error_history"))
		return
	}

	records, err := store.Load(history.Capacity)
	if err != nil {
		log.Printf("Ошибка чтения архива истории: %v", err)
	} else {
		a.ledger.Restore(records)
		log.Printf("История восстановлена: %d записей", len(records))
	}
	a.store = store
	a.ledger.SetPersister(store)
}

// openStream открывает устройство захвата. Интерфейс не должен получать
// типизированный nil при ошибке.
func (a *App) openStream(src *audio.Source) (capture.Stream, error) {
	if !a.audioReady {
		return nil, fmt.Errorf("%w: аудиосистема не инициализирована", audio.ErrDeviceUnavailable)
	}
	stream, err := device.Open(src)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func (a *App) trayOptions() tray.Options {
	style := a.config.SubtitleStyle()
	models := make([]tray.Choice, 0, len(whisper.Models))
	for _, m := range whisper.Models {
		models = append(models, tray.Choice{ID: m.ID, Name: m.Name})
	}
	return tray.Options{
		UseMicrophone:  a.config.UseMicrophone(),
		DebugMode:      a.config.DebugMode(),
		OverlayVisible: a.config.OverlayVisible(),
		Notifications:  a.config.NotificationsEnabled(),
		FontSize:       style.FontSize,
		Opacity:        style.Opacity,
		ModelID:        a.config.ModelID(),
		Models:         models,
		Hotkeys:        a.config.Hotkeys(),
		Language:       i18n.GetLanguage(),
	}
}

func (a *App) trayCallbacks() tray.Callbacks {
	return tray.Callbacks{
		OnToggleTranslation: a.toggleFromUI,
		OnMicrophoneToggle:  a.ToggleMicrophone,
		OnSelectSource:      a.selectSource,
		OnDebugToggle:       a.ToggleDebug,
		OnOverlayToggle:     a.ToggleOverlay,
		OnFontSize: func(size int) {
			style := a.config.SubtitleStyle()
			style.FontSize = size
			a.config.SetSubtitleStyle(style)
		},
		OnOpacity: func(opacity float64) {
			style := a.config.SubtitleStyle()
			style.Opacity = opacity
			a.config.SetSubtitleStyle(style)
		},
		OnModel:         a.SetModel,
		OnExport:        a.exportWithDialog,
		OnCopyLatest:    a.copyFromUI,
		OnClearHistory:  a.clearFromUI,
		OnShowShortcuts: a.showShortcuts,
		OnChangeHotkey:  a.changeHotkey,
		OnLanguage:      a.setLanguage,
		OnNotificationsToggle: func() bool {
			enabled := a.config.ToggleNotifications()
			a.notifier.SetEnabled(enabled)
			return enabled
		},
		OnQuit: func() {
			a.Close()
		},
	}
}

// Run запускает приложение. Блокирует до выхода.
func (a *App) Run() error {
	if a.opts.Console {
		defer a.Close()
		a.showOverlayIfEnabled()
		return console.Run(a, console.Options{
			UseMicrophone: a.config.UseMicrophone(),
			DebugMode:     a.config.DebugMode(),
		}, a.bridge)
	}

	a.tray.Run(func() {
		// Регистрируем горячие клавиши после инициализации трея
		if err := a.hotkeys.RegisterAll(a.config.Hotkeys()); err != nil {
			log.Printf("Ошибка регистрации горячих клавиш: %v", err)
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}
		a.showOverlayIfEnabled()
		a.notifier.Ready()
	})
	return nil
}

func (a *App) showOverlayIfEnabled() {
	a.surfaces.UpdateSubtitleStyle(a.config.SubtitleStyle())
	if a.config.OverlayVisible() {
		a.overlay.Show()
	}
}

// onStatusChange вызывается контроллером при смене состояния и счётчика.
func (a *App) onStatusChange(status capture.Status, err error) {
	snap := a.controller.Snapshot()

	a.mu.Lock()
	prev := a.lastStatus
	a.lastStatus = status
	a.mu.Unlock()

	if a.tray != nil {
		a.tray.SetState(trayState(status), string(snap.Mode))
		a.tray.SetChunks(snap.Processed)
	}
	if a.bridge != nil {
		a.bridge.Status(snap)
	}

	if status == prev {
		return
	}
	switch status {
	case capture.StatusTranslating:
		// Стиль отправляется окну при каждом старте
		a.surfaces.UpdateSubtitleStyle(a.config.SubtitleStyle())
		a.notifier.Started(snap.Label)
		log.Printf("Перевод запущен: %s (%s)", snap.Mode, snap.Label)
	case capture.StatusIdle:
		if prev == capture.StatusTranslating {
			a.notifier.Stopped()
			log.Printf("Перевод остановлен")
		}
	case capture.StatusError:
		a.notifier.Error(errorMessage(err))
		log.Printf("Ошибка перевода: %v", err)
	}
}

func trayState(status capture.Status) tray.State {
	switch status {
	case capture.StatusStarting:
		return tray.StateStarting
	case capture.StatusTranslating:
		return tray.StateTranslating
	case capture.StatusError:
		return tray.StateError
	default:
		return tray.StateIdle
	}
}

// errorMessage возвращает текст ошибки для пользователя.
func errorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, capture.ErrNoSourceSelected):
		return i18n.T("error_no_source")
	case errors.Is(err, audio.ErrPermissionDenied):
		return i18n.T("error_permission")
	case errors.Is(err, audio.ErrDeviceUnavailable):
		return i18n.T("error_device") + ": " + err.Error()
	default:
		return err.Error()
	}
}

// ToggleTranslation запускает или останавливает перевод.
func (a *App) ToggleTranslation() error {
	if a.controller.Active() {
		a.controller.Stop()
		return nil
	}
	a.controller.Acknowledge()
	return a.controller.Start(a.ctx, a.config.Source(), a.config.UseMicrophone(), a.config.DebugMode())
}

// toggleFromUI - вариант для трея и горячих клавиш: ошибки показываются
// уведомлением. Ошибки устройства уже показаны наблюдателем состояния.
func (a *App) toggleFromUI() {
	err := a.ToggleTranslation()
	if err == nil || a.controller.Status() == capture.StatusError {
		return
	}
	log.Printf("Перевод не запущен: %v", err)
	if errors.Is(err, capture.ErrNoSourceSelected) && a.tray != nil {
		dialog.ShowError(i18n.T("notify_error"), errorMessage(err))
		return
	}
	a.notifier.Error(errorMessage(err))
}

// ToggleMicrophone переключает захват микрофона.
func (a *App) ToggleMicrophone() bool {
	enabled := !a.config.UseMicrophone()
	a.config.SetUseMicrophone(enabled)
	a.settingsChanged()
	return enabled
}

// ToggleDebug переключает отладочный режим.
func (a *App) ToggleDebug() bool {
	enabled := !a.config.DebugMode()
	a.config.SetDebugMode(enabled)
	a.settingsChanged()
	return enabled
}

func (a *App) settingsChanged() {
	if a.bridge != nil {
		a.bridge.Settings(a.config.UseMicrophone(), a.config.DebugMode())
	}
}

// ToggleOverlay показывает или скрывает окно субтитров.
func (a *App) ToggleOverlay() bool {
	visible := a.config.ToggleOverlay()
	a.overlay.SetVisible(visible)
	if a.tray != nil {
		a.tray.SetOverlayChecked(visible)
	}
	return visible
}

// SetModel выбирает модель Whisper для следующих сегментов.
func (a *App) SetModel(id string) {
	a.config.SetModelID(id)
	a.client.SetModel(a.config.ModelID())
	log.Printf("Модель Whisper: %s", a.client.Model())
}

// ModelID возвращает текущую модель Whisper.
func (a *App) ModelID() string {
	return a.client.Model()
}

// Snapshot возвращает состояние контроллера.
func (a *App) Snapshot() capture.Snapshot {
	return a.controller.Snapshot()
}

// Search ищет по истории.
func (a *App) Search(term string) []history.Record {
	return a.ledger.Search(term)
}

func (a *App) selectSource() {
	sources, err := device.Sources()
	if err != nil {
		log.Printf("Ошибка получения списка устройств: %v", err)
		a.notifier.Error(errorMessage(device.Classify(err)))
		return
	}
	src, err := dialog.SelectSource(sources, a.config.Source())
	switch {
	case errors.Is(err, dialog.ErrNoSources):
		dialog.ShowInfo(i18n.T("app_name"), i18n.T("dialog_no_sources"))
		return
	case errors.Is(err, dialog.ErrCanceled):
		return
	case err != nil:
		log.Printf("Ошибка выбора источника: %v", err)
		return
	}
	a.config.SetSource(src)
	log.Printf("Источник звука: %s", src.Label())
}

// ExportHistory сохраняет историю в рабочий каталог и возвращает путь.
func (a *App) ExportHistory() (string, error) {
	path := filepath.Join(a.exportDir, history.ExportFileName(time.Now()))
	if err := history.WriteExport(a.ledger, path); err != nil {
		return "", err
	}
	log.Printf("История экспортирована: %s", path)
	return path, nil
}

func (a *App) exportWithDialog() {
	path, err := dialog.SaveExport(history.ExportFileName(time.Now()))
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			log.Printf("Ошибка диалога экспорта: %v", err)
		}
		return
	}
	if err := history.WriteExport(a.ledger, path); err != nil {
		log.Printf("Ошибка экспорта истории: %v", err)
		a.notifier.Error(i18n.T("error_export") + ": " + err.Error())
		return
	}
	log.Printf("История экспортирована: %s", path)
	a.notifier.Exported(path)
}

// CopyLatest копирует последний перевод в буфер обмена.
func (a *App) CopyLatest() (string, error) {
	rec, ok := a.ledger.Latest()
	if !ok {
		return "", ErrNothingToCopy
	}
	if err := a.copyText(rec.Translated); err != nil {
		return "", err
	}
	return rec.Translated, nil
}

func (a *App) copyFromUI() {
	text, err := a.CopyLatest()
	if err != nil {
		log.Printf("Ошибка копирования в буфер: %v", err)
		a.notifier.Error(i18n.T("error_clipboard"))
		return
	}
	a.notifier.Copied(text)
}

// ClearHistory очищает историю и архив.
func (a *App) ClearHistory() {
	a.ledger.Clear()
	log.Printf("История очищена")
}

func (a *App) clearFromUI() {
	a.ClearHistory()
	a.notifier.Cleared()
}

func (a *App) showShortcuts() {
	dialog.ShowShortcuts(a.config.Hotkeys())
}

func (a *App) changeHotkey(action config.Action) {
	hk, err := dialog.SelectHotkey(action, a.config.Hotkeys().Get(action))
	if err != nil {
		if !errors.Is(err, dialog.ErrCanceled) {
			log.Printf("Ошибка выбора горячей клавиши: %v", err)
		}
		return
	}
	if cur, ok := a.hotkeys.Current(action); ok && cur.String() == hk.String() {
		return
	}
	// Callback конфига перерегистрирует клавиши и обновит трей
	a.config.SetHotkey(action, hk)
	log.Printf("Горячая клавиша %s: %s", action, hk.Display())
}

func (a *App) setLanguage(lang i18n.Language) {
	a.config.SetUILanguage(string(lang))
	i18n.SetLanguage(lang)
	if a.tray != nil {
		a.tray.RefreshUI()
	}
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.closeOnce.Do(a.close)
}

func (a *App) close() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.controller != nil {
		a.controller.Stop()
	}

	if a.hotkeys != nil {
		a.hotkeys.UnregisterAll()
	}

	if a.overlay != nil {
		a.overlay.Hide()
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("Ошибка закрытия архива истории: %v", err)
		}
	}

	if a.audioReady {
		device.Terminate()
	}
}

// ConfigPath возвращает путь к файлу настроек.
func (a *App) ConfigPath() string {
	return filepath.Clean(a.config.Path())
}
