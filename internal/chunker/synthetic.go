package chunker

import (
	"context"
	"sync"
	"time"

	"livesub/internal/audio"
)

// MimeSynthetic - метка сегментов без звука.
const MimeSynthetic = "application/x-synthetic"

// Synthetic - производитель без устройства: один сегмент сразу и далее
// по одному на каждое окно. Используется в отладочном режиме.
type Synthetic struct {
	opts Options

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	seq     int
}

// NewSynthetic создаёт синтетический производитель.
func NewSynthetic(opts Options) *Synthetic {
	if opts.Policy == (Policy{}) {
		opts.Policy = DefaultPolicy()
	}
	return &Synthetic{opts: opts}
}

// Begin запускает таймер.
func (s *Synthetic) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.tickLoop(ctx, s.done)

	return nil
}

// End останавливает таймер. Повторный вызов ничего не делает.
func (s *Synthetic) End() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-time.After(endTimeout):
	}
}

func (s *Synthetic) tickLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.emit()

	ticker := time.NewTicker(s.opts.Policy.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil || !s.opts.alive() {
				return
			}
			s.emit()
		}
	}
}

func (s *Synthetic) emit() {
	if !s.opts.alive() {
		return
	}
	s.seq++
	seg := syntheticSegment(s.seq, s.opts)
	if s.opts.OnSegment != nil {
		go s.opts.OnSegment(seg)
	}
}

func syntheticSegment(seq int, opts Options) audio.Segment {
	return audio.Segment{
		Seq:       seq,
		SessionID: opts.SessionID,
		MimeType:  MimeSynthetic,
		Duration:  opts.Policy.Window,
		Label:     opts.Label,
	}
}
