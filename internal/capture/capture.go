// Package capture управляет сессией перевода: открывает источник звука,
// запускает нарезку на сегменты и раздаёт результаты субтитрам и истории.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/google/uuid"

	"livesub/internal/audio"
	"livesub/internal/chunker"
	"livesub/internal/history"
	"livesub/internal/subtitle"
	"livesub/internal/whisper"
)

// DebugLabel - подпись результатов отладочного режима.
const DebugLabel = "Debug (simulated)"

var (
	// ErrNoSourceSelected - микрофон выключен, а источник не выбран.
	ErrNoSourceSelected = errors.New("не выбран источник звука")
	// ErrAlreadyActive - сессия уже запущена.
	ErrAlreadyActive = errors.New("перевод уже запущен")
)

// Status состояние контроллера.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusStarting    Status = "starting"
	StatusTranslating Status = "translating"
	StatusError       Status = "error"
)

// Mode режим захвата для отображения.
type Mode string

const (
	ModeDebug      Mode = "Debug"
	ModeMicrophone Mode = "Microphone"
	ModeDesktop    Mode = "Desktop Audio"
)

// Stream - открытый поток устройства, закрывается при завершении сессии.
type Stream interface {
	chunker.Stream
	Close() error
}

// Opener открывает поток. nil источник означает микрофон по умолчанию.
type Opener func(src *audio.Source) (Stream, error)

// Translator переводит один сегмент.
type Translator interface {
	Translate(ctx context.Context, seg audio.Segment) whisper.Result
}

// History принимает непустые результаты.
type History interface {
	Append(original, translated string) history.Record
}

// Config зависимости контроллера.
type Config struct {
	Open       Opener
	Translator Translator
	Surface    subtitle.Surface
	History    History
	Policy     chunker.Policy
}

// Snapshot - состояние контроллера в один момент времени.
type Snapshot struct {
	Status    Status
	Processed int
	Mode      Mode
	Label     string
	Err       error
}

// session - одна сессия записи. Поток принадлежит только ей.
type session struct {
	id         string
	ctx        context.Context
	mode       Mode
	label      string
	translator Translator
	producer   chunker.Producer
	stream     Stream

	once sync.Once
}

// release останавливает производителя и закрывает поток.
func (s *session) release() {
	s.once.Do(func() {
		if s.producer != nil {
			s.producer.End()
		}
		if s.stream != nil {
			if err := s.stream.Close(); err != nil {
				log.Printf("Ошибка закрытия потока: %v", err)
			}
		}
	})
}

// Controller - конечный автомат idle → starting → translating → idle/error.
type Controller struct {
	cfg Config

	// notifyMu упорядочивает уведомления наблюдателей.
	notifyMu sync.Mutex

	mu        sync.Mutex
	status    Status
	processed int
	lastErr   error
	sess      *session
	observers []func(Status, error)
}

// New создаёт контроллер в состоянии idle.
func New(cfg Config) *Controller {
	if cfg.Surface == nil {
		cfg.Surface = subtitle.Nop{}
	}
	if cfg.Policy == (chunker.Policy{}) {
		cfg.Policy = chunker.DefaultPolicy()
	}
	return &Controller{
		cfg:    cfg,
		status: StatusIdle,
	}
}

// OnChange регистрирует наблюдателя смены состояния и счётчика.
func (c *Controller) OnChange(fn func(Status, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// notify сообщает наблюдателям состояние на момент доставки. Уведомления
// идут по одному, поэтому последнее из них совпадает с текущим
// состоянием. Наблюдатели не должны вызывать Start, Stop и Acknowledge.
func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	status, err := c.status, c.lastErr
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(status, err)
	}
}

// Status возвращает текущее состояние.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Processed возвращает число сегментов текущей сессии.
func (c *Controller) Processed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processed
}

// Active возвращает true во время starting и translating.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusStarting || c.status == StatusTranslating
}

// Snapshot возвращает состояние целиком.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Status:    c.status,
		Processed: c.processed,
		Err:       c.lastErr,
	}
	if c.sess != nil {
		snap.Mode = c.sess.mode
		snap.Label = c.sess.label
	}
	return snap
}

// Start запускает сессию. Без микрофона нужен выбранный источник.
// В отладочном режиме устройство не открывается: сегменты идут по
// таймеру, а вместо сервера отвечают заготовленные фразы.
func (c *Controller) Start(ctx context.Context, src *audio.Source, useMicrophone, debug bool) error {
	c.mu.Lock()
	if c.status == StatusStarting || c.status == StatusTranslating {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	if !useMicrophone && src == nil {
		c.mu.Unlock()
		return ErrNoSourceSelected
	}

	s := &session{
		id:  uuid.NewString(),
		ctx: ctx,
	}
	switch {
	case debug:
		s.mode, s.label = ModeDebug, DebugLabel
	case useMicrophone:
		s.mode, s.label = ModeMicrophone, audio.Source{Kind: audio.KindMicrophone}.Label()
	default:
		s.mode, s.label = ModeDesktop, src.Label()
	}

	c.sess = s
	c.processed = 0
	c.lastErr = nil
	c.status = StatusStarting
	c.mu.Unlock()

	c.notify()
	log.Printf("Запуск сессии %s (%s)", s.id, s.mode)

	if debug {
		s.translator = whisper.NewCanned()
		s.producer = chunker.NewSynthetic(c.options(s))
	} else {
		var source *audio.Source
		if !useMicrophone {
			source = src
		}
		if c.cfg.Open == nil {
			return c.fail(s, fmt.Errorf("%w: нет способа открыть устройство", audio.ErrDeviceUnavailable))
		}
		stream, err := c.cfg.Open(source)
		if err != nil {
			return c.fail(s, classify(err))
		}
		s.stream = stream
		s.translator = c.cfg.Translator
		s.producer = chunker.NewRecorder(stream, c.options(s))
	}

	c.mu.Lock()
	if c.sess != s {
		// Stop пришёл, пока открывалось устройство.
		c.mu.Unlock()
		s.release()
		return nil
	}
	c.status = StatusTranslating
	c.mu.Unlock()

	if err := s.producer.Begin(); err != nil {
		return c.fail(s, classify(err))
	}

	c.notify()
	return nil
}

// Stop завершает сессию из любого состояния. Повторный вызов ничего не
// делает. Результаты запросов, ещё идущих к серверу, отбрасываются.
func (c *Controller) Stop() {
	c.mu.Lock()
	s := c.sess
	prev := c.status
	c.sess = nil
	c.processed = 0
	c.lastErr = nil
	c.status = StatusIdle
	c.mu.Unlock()

	if s != nil {
		s.release()
		log.Printf("Сессия %s остановлена", s.id)
	}
	if prev != StatusIdle {
		c.notify()
	}
}

// Acknowledge переводит error в idle.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	if c.status != StatusError {
		c.mu.Unlock()
		return
	}
	c.status = StatusIdle
	c.lastErr = nil
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) options(s *session) chunker.Options {
	return chunker.Options{
		Policy:    c.cfg.Policy,
		SessionID: s.id,
		Label:     s.label,
		Alive:     func() bool { return c.live(s) },
		OnSegment: func(seg audio.Segment) { c.handleSegment(s, seg) },
		OnHalt:    func(err error) { c.fail(s, err) },
	}
}

// live проверяет, что сессия всё ещё текущая.
func (c *Controller) live(s *session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess == s && c.status == StatusTranslating
}

// fail завершает сессию с ошибкой: ресурсы освобождаются, счётчик
// сбрасывается, состояние становится error.
func (c *Controller) fail(s *session, err error) error {
	c.mu.Lock()
	if c.sess != s {
		c.mu.Unlock()
		s.release()
		return err
	}
	c.sess = nil
	c.processed = 0
	c.lastErr = err
	c.status = StatusError
	c.mu.Unlock()

	s.release()
	log.Printf("Сессия %s завершена с ошибкой: %v", s.id, err)
	c.notify()
	return err
}

func (c *Controller) handleSegment(s *session, seg audio.Segment) {
	c.mu.Lock()
	if c.sess != s {
		c.mu.Unlock()
		return
	}
	c.processed++
	c.mu.Unlock()
	c.notify()

	res := s.translator.Translate(s.ctx, seg)

	if !c.live(s) {
		log.Printf("Сегмент #%d: сессия завершена, результат отброшен", seg.Seq)
		return
	}

	switch res.Outcome {
	case whisper.OutcomeText:
		c.cfg.Surface.UpdateSubtitle(res.Text)
		if c.cfg.History != nil {
			c.cfg.History.Append(res.Label, res.Text)
		}
	case whisper.OutcomeEmpty:
		log.Printf("Сегмент #%d: речь не обнаружена", seg.Seq)
	default:
		log.Printf("Сегмент #%d: ошибка перевода: %v", seg.Seq, res.Err)
		c.cfg.Surface.UpdateSubtitle(subtitle.ErrorText(res.Err))
	}
}

// classify приводит ошибку открытия устройства к таксономии.
func classify(err error) error {
	if errors.Is(err, audio.ErrPermissionDenied) || errors.Is(err, audio.ErrDeviceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
}
