// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"livesub/internal/audio"
	"livesub/internal/subtitle"
	"livesub/internal/whisper"
)

// Point - позиция окна субтитров.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size - размер окна субтитров.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Настройки по умолчанию.
var (
	DefaultPosition = Point{X: 100, Y: 50}
	DefaultSize     = Size{Width: 800, Height: 120}
)

// configData структура для сериализации.
type configData struct {
	ModelID         string          `json:"model_id,omitempty"`
	ServerURL       string          `json:"server_url,omitempty"`
	OverlayVisible  *bool           `json:"overlay_visible,omitempty"`
	OverlayPosition *Point          `json:"overlay_position,omitempty"`
	OverlaySize     *Size           `json:"overlay_size,omitempty"`
	SubtitleStyle   *subtitle.Style `json:"subtitle_style,omitempty"`
	UseMicrophone   *bool           `json:"use_microphone,omitempty"`
	Source          *audio.Source   `json:"source,omitempty"`
	DebugMode       bool            `json:"debug_mode"`
	Notifications   *bool           `json:"notifications,omitempty"`
	UILanguage      string          `json:"ui_language,omitempty"`
	Hotkeys         *Hotkeys        `json:"hotkeys,omitempty"`
	HistoryDB       string          `json:"history_db,omitempty"`
}

// Config хранит настройки приложения.
type Config struct {
	mu              sync.RWMutex
	modelID         string
	serverURL       string
	overlayVisible  bool
	overlayPosition Point
	overlaySize     Size
	style           subtitle.Style
	useMicrophone   bool
	source          *audio.Source
	debugMode       bool
	notifications   bool
	uiLanguage      string
	hotkeys         Hotkeys
	historyDB       string
	configPath      string

	onStyleChange   func(subtitle.Style)
	onHotkeysChange func(Hotkeys)
}

func defaults() *Config {
	return &Config{
		modelID:         whisper.DefaultModel,
		serverURL:       whisper.DefaultURL,
		overlayVisible:  true,
		overlayPosition: DefaultPosition,
		overlaySize:     DefaultSize,
		style:           subtitle.DefaultStyle(),
		useMicrophone:   true,
		notifications:   true,
		uiLanguage:      "ru", // По умолчанию русский интерфейс
		hotkeys:         DefaultHotkeys(),
	}
}

// New создаёт конфигурацию из config.json рядом с бинарником.
func New() *Config {
	c := defaults()

	// Определяем путь к файлу конфигурации рядом с бинарником
	execPath, err := os.Executable()
	if err == nil {
		// Резолвим симлинки
		execPath, err = filepath.EvalSymlinks(execPath)
		if err == nil {
			c.configPath = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}

	c.load()
	return c
}

// NewAt создаёт конфигурацию из указанного файла.
func NewAt(path string) *Config {
	c := defaults()
	c.configPath = path
	c.load()
	return c
}

// Path возвращает путь к файлу конфигурации.
func (c *Config) Path() string {
	return c.configPath
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	var cfg configData
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Printf("Повреждённый config.json, используем настройки по умолчанию: %v", err)
		return
	}

	if _, ok := whisper.GetModel(cfg.ModelID); ok {
		c.modelID = cfg.ModelID
	}
	if cfg.ServerURL != "" {
		c.serverURL = cfg.ServerURL
	}
	if cfg.OverlayVisible != nil {
		c.overlayVisible = *cfg.OverlayVisible
	}
	if cfg.OverlayPosition != nil {
		c.overlayPosition = *cfg.OverlayPosition
	}
	if cfg.OverlaySize != nil && cfg.OverlaySize.Width > 0 && cfg.OverlaySize.Height > 0 {
		c.overlaySize = *cfg.OverlaySize
	}
	if cfg.SubtitleStyle != nil {
		c.style = cfg.SubtitleStyle.Normalize()
	}
	if cfg.UseMicrophone != nil {
		c.useMicrophone = *cfg.UseMicrophone
	}
	c.source = cfg.Source
	c.debugMode = cfg.DebugMode
	if cfg.Notifications != nil {
		c.notifications = *cfg.Notifications
	}
	if cfg.UILanguage != "" {
		c.uiLanguage = cfg.UILanguage
	}
	if cfg.Hotkeys != nil {
		c.hotkeys = cfg.Hotkeys.withDefaults()
	}
	c.historyDB = cfg.HistoryDB
}

// save сохраняет конфигурацию в файл. Вызывается под блокировкой.
func (c *Config) save() {
	if c.configPath == "" {
		return
	}

	style := c.style
	hotkeys := c.hotkeys
	pos := c.overlayPosition
	size := c.overlaySize
	cfg := configData{
		ModelID:         c.modelID,
		ServerURL:       c.serverURL,
		OverlayVisible:  &c.overlayVisible,
		OverlayPosition: &pos,
		OverlaySize:     &size,
		SubtitleStyle:   &style,
		UseMicrophone:   &c.useMicrophone,
		Source:          c.source,
		DebugMode:       c.debugMode,
		Notifications:   &c.notifications,
		UILanguage:      c.uiLanguage,
		Hotkeys:         &hotkeys,
		HistoryDB:       c.historyDB,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Printf("Ошибка сериализации настроек: %v", err)
		return
	}

	if err := os.WriteFile(c.configPath, data, 0644); err != nil {
		log.Printf("Ошибка сохранения настроек: %v", err)
	}
}

// ModelID возвращает модель Whisper.
func (c *Config) ModelID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modelID
}

// SetModelID устанавливает модель Whisper. Неизвестные модели игнорируются.
func (c *Config) SetModelID(id string) {
	if _, ok := whisper.GetModel(id); !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modelID = id
	c.save()
}

// ServerURL возвращает адрес сервера распознавания.
func (c *Config) ServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverURL
}

// SetServerURL устанавливает адрес сервера распознавания.
func (c *Config) SetServerURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if url == "" {
		url = whisper.DefaultURL
	}
	c.serverURL = url
	c.save()
}

// OverlayVisible возвращает true если окно субтитров показано.
func (c *Config) OverlayVisible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlayVisible
}

// SetOverlayVisible показывает/скрывает окно субтитров.
func (c *Config) SetOverlayVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlayVisible = visible
	c.save()
}

// ToggleOverlay переключает видимость окна субтитров.
func (c *Config) ToggleOverlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlayVisible = !c.overlayVisible
	c.save()
	return c.overlayVisible
}

// OverlayBounds возвращает позицию и размер окна субтитров.
func (c *Config) OverlayBounds() (Point, Size) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlayPosition, c.overlaySize
}

// SetOverlayBounds сохраняет позицию и размер окна субтитров.
func (c *Config) SetOverlayBounds(pos Point, size Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlayPosition = pos
	if size.Width > 0 && size.Height > 0 {
		c.overlaySize = size
	}
	c.save()
}

// SubtitleStyle возвращает стиль субтитров.
func (c *Config) SubtitleStyle() subtitle.Style {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.style
}

// SetSubtitleStyle заменяет стиль целиком и уведомляет подписчика.
func (c *Config) SetSubtitleStyle(style subtitle.Style) {
	style = style.Normalize()

	c.mu.Lock()
	c.style = style
	callback := c.onStyleChange
	c.save()
	c.mu.Unlock()

	if callback != nil {
		callback(style)
	}
}

// OnStyleChange устанавливает callback для изменения стиля.
func (c *Config) OnStyleChange(fn func(subtitle.Style)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStyleChange = fn
}

// UseMicrophone возвращает true если захват идёт с микрофона.
func (c *Config) UseMicrophone() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.useMicrophone
}

// SetUseMicrophone выбирает микрофон или выбранный источник.
func (c *Config) SetUseMicrophone(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useMicrophone = enabled
	c.save()
}

// Source возвращает выбранный источник или nil.
func (c *Config) Source() *audio.Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.source == nil {
		return nil
	}
	src := *c.source
	return &src
}

// SetSource запоминает выбранный источник. nil сбрасывает выбор.
func (c *Config) SetSource(src *audio.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if src == nil {
		c.source = nil
	} else {
		copied := *src
		c.source = &copied
	}
	c.save()
}

// DebugMode возвращает true если включён отладочный режим.
func (c *Config) DebugMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.debugMode
}

// SetDebugMode включает/выключает отладочный режим.
func (c *Config) SetDebugMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debugMode = enabled
	c.save()
}

// SetNotifications включает/выключает уведомления.
func (c *Config) SetNotifications(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = enabled
	c.save()
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = !c.notifications
	c.save()
	return c.notifications
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uiLanguage
}

// SetUILanguage устанавливает язык интерфейса.
func (c *Config) SetUILanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uiLanguage = lang
	c.save()
}

// Hotkeys возвращает горячие клавиши.
func (c *Config) Hotkeys() Hotkeys {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hotkeys
}

// SetHotkey меняет одну горячую клавишу.
func (c *Config) SetHotkey(action Action, hk HotkeyConfig) {
	c.mu.Lock()
	c.hotkeys = c.hotkeys.With(action, hk)
	hotkeys := c.hotkeys
	callback := c.onHotkeysChange
	c.save()
	c.mu.Unlock()

	if callback != nil {
		callback(hotkeys)
	}
}

// OnHotkeysChange устанавливает callback для изменения горячих клавиш.
func (c *Config) OnHotkeysChange(fn func(Hotkeys)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHotkeysChange = fn
}

// HistoryDB возвращает путь к архиву истории. По умолчанию рядом с
// config.json.
func (c *Config) HistoryDB() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.historyDB != "" {
		return c.historyDB
	}
	if c.configPath == "" {
		return ":memory:"
	}
	return filepath.Join(filepath.Dir(c.configPath), "history.sqlite")
}
