package chunker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"livesub/internal/audio"
)

// Stream - живой аудиопоток, которым владеет сессия записи.
type Stream interface {
	// Active сообщает, что поток открыт и отдаёт данные.
	Active() bool
	// Capture блокируется на время окна и возвращает записанные сэмплы.
	Capture(ctx context.Context, window time.Duration) ([]float32, error)
}

// Recorder - цикл записи окон из живого потока.
type Recorder struct {
	stream Stream
	opts   Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	seq     int
}

// NewRecorder создаёт Recorder поверх потока.
func NewRecorder(stream Stream, opts Options) *Recorder {
	if opts.Policy == (Policy{}) {
		opts.Policy = DefaultPolicy()
	}
	return &Recorder{
		stream: stream,
		opts:   opts,
	}
}

// Begin запускает цикл записи. Повторный вызов при работающем цикле
// ничего не делает.
func (r *Recorder) Begin() error {
	if r.stream == nil || !r.stream.Active() {
		return ErrNoActiveStream
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.recordLoop(ctx, r.done)

	return nil
}

// End останавливает цикл и ждёт его завершения. Безопасен при
// повторном вызове и без активной записи.
func (r *Recorder) End() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(endTimeout):
		log.Printf("Запись: цикл не завершился за %v", endTimeout)
	}
}

// IsRecording возвращает true пока цикл работает.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Recorder) recordLoop(ctx context.Context, done chan struct{}) {
	var haltErr error
	defer func() {
		close(done)
		if haltErr != nil {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			log.Printf("Запись остановлена: %v", haltErr)
			if r.opts.OnHalt != nil {
				r.opts.OnHalt(haltErr)
			}
		}
	}()

	p := r.opts.Policy
	for {
		if ctx.Err() != nil || !r.opts.alive() {
			return
		}
		if !r.stream.Active() {
			haltErr = ErrNoActiveStream
			return
		}

		samples, err := r.stream.Capture(ctx, p.Window)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			haltErr = fmt.Errorf("capture window: %w", err)
			return
		}

		payload, err := audio.EncodeWAV(samples)
		if err != nil {
			haltErr = fmt.Errorf("encode segment: %w", err)
			return
		}

		if len(payload) < p.MinBytes {
			log.Printf("Запись: сегмент %d байт отброшен", len(payload))
			if !sleep(ctx, p.RetryDelay) {
				return
			}
			continue
		}

		if !r.opts.alive() {
			return
		}

		r.seq++
		seg := audio.Segment{
			Seq:       r.seq,
			SessionID: r.opts.SessionID,
			Payload:   payload,
			MimeType:  audio.MimeWAV,
			Duration:  time.Duration(len(samples)) * time.Second / audio.SampleRate,
			Label:     r.opts.Label,
		}
		if r.opts.OnSegment != nil {
			go r.opts.OnSegment(seg)
		}

		if !sleep(ctx, p.Gap) {
			return
		}
	}
}

// sleep ждёт d или отмены контекста. Возвращает false при отмене.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
