package whisper

import (
	"context"
	"sync"

	"livesub/internal/audio"
)

// Phrases - фразы отладочного режима.
var Phrases = []string{
	"Hello, welcome to the stream!",
	"Today we're going to play some games",
	"Thank you for watching!",
	"Please like and subscribe",
	"Let's get started!",
}

// Canned подменяет сервер в отладочном режиме: на каждый сегмент
// отдаёт следующую фразу по кругу.
type Canned struct {
	mu   sync.Mutex
	next int
}

// NewCanned создаёт отладочный переводчик.
func NewCanned() *Canned {
	return &Canned{}
}

// Translate возвращает очередную фразу, содержимое сегмента не читается.
func (c *Canned) Translate(_ context.Context, seg audio.Segment) Result {
	c.mu.Lock()
	phrase := Phrases[c.next%len(Phrases)]
	c.next++
	c.mu.Unlock()
	return Succeeded(seg.Label, phrase)
}
