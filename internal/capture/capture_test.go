package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"livesub/internal/audio"
	"livesub/internal/chunker"
	"livesub/internal/history"
	"livesub/internal/subtitle"
	"livesub/internal/whisper"
)

// fakeStream отдаёт тон каждое окно.
type fakeStream struct {
	mu      sync.Mutex
	active  bool
	closed  int
	samples int
}

func newFakeStream() *fakeStream {
	return &fakeStream{active: true, samples: 400}
}

func (f *fakeStream) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeStream) Capture(ctx context.Context, window time.Duration) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(window):
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := make([]float32, f.samples)
	for i := range s {
		s[i] = 0.1
	}
	return s, nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.closed++
	return nil
}

func (f *fakeStream) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// fakeTranslator возвращает заданный результат и считает вызовы.
type fakeTranslator struct {
	mu     sync.Mutex
	calls  int
	result func(seg audio.Segment) whisper.Result
	block  chan struct{}
}

func (f *fakeTranslator) Translate(_ context.Context, seg audio.Segment) whisper.Result {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.result(seg)
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingSurface собирает субтитры.
type recordingSurface struct {
	texts chan string
}

func newSurface() *recordingSurface {
	return &recordingSurface{texts: make(chan string, 64)}
}

func (r *recordingSurface) UpdateSubtitle(text string) { r.texts <- text }
func (r *recordingSurface) UpdateSubtitleStyle(_ subtitle.Style) {}

func (r *recordingSurface) next(t *testing.T, timeout time.Duration) string {
	t.Helper()
	select {
	case text := <-r.texts:
		return text
	case <-time.After(timeout):
		t.Fatal("timed out waiting for subtitle")
		return ""
	}
}

func (r *recordingSurface) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case text := <-r.texts:
		t.Errorf("unexpected subtitle %q", text)
	case <-time.After(wait):
	}
}

func testPolicy() chunker.Policy {
	return chunker.Policy{
		Window:     10 * time.Millisecond,
		RetryDelay: 20 * time.Millisecond,
		Gap:        5 * time.Millisecond,
		MinBytes:   100,
	}
}

type fixture struct {
	ctrl       *Controller
	stream     *fakeStream
	translator *fakeTranslator
	surface    *recordingSurface
	ledger     *history.Ledger
	opened     []*audio.Source
	openErr    error
}

func newFixture(t *testing.T, result func(audio.Segment) whisper.Result) *fixture {
	t.Helper()
	f := &fixture{
		stream:     newFakeStream(),
		translator: &fakeTranslator{result: result},
		surface:    newSurface(),
		ledger:     history.NewLedger(),
	}
	f.ctrl = New(Config{
		Open: func(src *audio.Source) (Stream, error) {
			f.opened = append(f.opened, src)
			if f.openErr != nil {
				return nil, f.openErr
			}
			return f.stream, nil
		},
		Translator: f.translator,
		Surface:    f.surface,
		History:    f.ledger,
		Policy:     testPolicy(),
	})
	t.Cleanup(f.ctrl.Stop)
	return f
}

func textResult(text string) func(audio.Segment) whisper.Result {
	return func(seg audio.Segment) whisper.Result {
		return whisper.Succeeded(seg.Label, text)
	}
}

func TestStartWithoutSource(t *testing.T) {
	f := newFixture(t, textResult("hi"))

	err := f.ctrl.Start(context.Background(), nil, false, false)
	if !errors.Is(err, ErrNoSourceSelected) {
		t.Fatalf("err = %v, want ErrNoSourceSelected", err)
	}
	if got := f.ctrl.Status(); got != StatusIdle {
		t.Errorf("status = %q, want %q", got, StatusIdle)
	}
	if len(f.opened) != 0 {
		t.Error("device must not be opened")
	}
}

func TestStartMicrophoneTranslates(t *testing.T) {
	f := newFixture(t, textResult("Good evening"))

	var mu sync.Mutex
	var seen []Status
	f.ctrl.OnChange(func(s Status, _ error) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := f.ctrl.Status(); got != StatusTranslating {
		t.Fatalf("status = %q, want %q", got, StatusTranslating)
	}
	if len(f.opened) != 1 || f.opened[0] != nil {
		t.Errorf("opened = %v, want default microphone", f.opened)
	}

	if got := f.surface.next(t, time.Second); got != "Good evening" {
		t.Errorf("subtitle = %q, want %q", got, "Good evening")
	}

	latest, ok := f.ledger.Latest()
	if !ok {
		t.Fatal("history is empty")
	}
	if latest.Original != "Microphone audio" || latest.Translated != "Good evening" {
		t.Errorf("record = %+v", latest)
	}
	if f.ctrl.Processed() < 1 {
		t.Errorf("processed = %d", f.ctrl.Processed())
	}

	snap := f.ctrl.Snapshot()
	if snap.Mode != ModeMicrophone || snap.Label != "Microphone audio" {
		t.Errorf("snapshot = %+v", snap)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) < 2 || seen[0] != StatusStarting || seen[1] != StatusTranslating {
		t.Errorf("observed = %v", seen)
	}
}

func TestStartDesktopSourceUsesLabel(t *testing.T) {
	f := newFixture(t, textResult("hello"))
	src := &audio.Source{ID: "alsa/monitor", Name: "Monitor", Kind: audio.KindDesktop}

	if err := f.ctrl.Start(context.Background(), src, false, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(f.opened) != 1 || f.opened[0] != src {
		t.Fatalf("opened = %v", f.opened)
	}
	f.surface.next(t, time.Second)

	latest, _ := f.ledger.Latest()
	if latest.Original != "Desktop audio (Monitor)" {
		t.Errorf("original = %q", latest.Original)
	}
	if f.ctrl.Snapshot().Mode != ModeDesktop {
		t.Errorf("mode = %q", f.ctrl.Snapshot().Mode)
	}
}

func TestStartTwiceIsRejected(t *testing.T) {
	f := newFixture(t, textResult("x"))

	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.ctrl.Start(context.Background(), nil, true, false); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("err = %v, want ErrAlreadyActive", err)
	}
	if len(f.opened) != 1 {
		t.Errorf("opened %d times, want 1", len(f.opened))
	}
}

func TestStartDeviceErrors(t *testing.T) {
	tests := []struct {
		name    string
		openErr error
		want    error
	}{
		{"permission", audio.ErrPermissionDenied, audio.ErrPermissionDenied},
		{"other", errors.New("no such device"), audio.ErrDeviceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, textResult("x"))
			f.openErr = tt.openErr

			var observed error
			f.ctrl.OnChange(func(s Status, err error) {
				if s == StatusError {
					observed = err
				}
			})

			err := f.ctrl.Start(context.Background(), nil, true, false)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := f.ctrl.Status(); got != StatusError {
				t.Errorf("status = %q, want %q", got, StatusError)
			}
			if !errors.Is(observed, tt.want) {
				t.Errorf("observer err = %v", observed)
			}

			f.ctrl.Acknowledge()
			if got := f.ctrl.Status(); got != StatusIdle {
				t.Errorf("status after acknowledge = %q", got)
			}
		})
	}
}

func TestServiceErrorKeepsSession(t *testing.T) {
	f := newFixture(t, func(seg audio.Segment) whisper.Result {
		return whisper.Failed(seg.Label, &whisper.ServiceError{Status: 500, Body: "boom"})
	})

	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := f.surface.next(t, time.Second)
	if first != "[Error: Server error: 500 - boom]" {
		t.Errorf("subtitle = %q", first)
	}
	// Следующее окно продолжает работу.
	f.surface.next(t, time.Second)

	if got := f.ctrl.Status(); got != StatusTranslating {
		t.Errorf("status = %q, want %q", got, StatusTranslating)
	}
	if f.ledger.Len() != 0 {
		t.Errorf("history len = %d, want 0", f.ledger.Len())
	}
	if f.translator.callCount() < 2 {
		t.Errorf("translator calls = %d", f.translator.callCount())
	}
}

func TestEmptyTextIsSkipped(t *testing.T) {
	f := newFixture(t, textResult("   "))

	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for f.translator.callCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	f.surface.expectNone(t, 20*time.Millisecond)
	if f.ledger.Len() != 0 {
		t.Errorf("history len = %d, want 0", f.ledger.Len())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(t, textResult("x"))

	f.ctrl.Stop()
	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.surface.next(t, time.Second)

	f.ctrl.Stop()
	f.ctrl.Stop()

	if got := f.ctrl.Status(); got != StatusIdle {
		t.Errorf("status = %q", got)
	}
	if got := f.ctrl.Processed(); got != 0 {
		t.Errorf("processed = %d, want 0", got)
	}
	if got := f.stream.closeCount(); got != 1 {
		t.Errorf("stream closed %d times, want 1", got)
	}
}

func TestStopDropsInFlightResult(t *testing.T) {
	f := newFixture(t, textResult("late"))
	f.translator.block = make(chan struct{})

	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for f.translator.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if f.translator.callCount() == 0 {
		t.Fatal("translator was not called")
	}

	f.ctrl.Stop()
	close(f.translator.block)

	f.surface.expectNone(t, 50*time.Millisecond)
	if f.ledger.Len() != 0 {
		t.Errorf("history len = %d, want 0", f.ledger.Len())
	}
}

func TestStopNotifiedAfterSegmentUpdate(t *testing.T) {
	f := newFixture(t, textResult("x"))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	var seen []Status
	f.ctrl.OnChange(func(s Status, _ error) {
		if s == StatusTranslating && f.ctrl.Processed() > 0 {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	if err := f.ctrl.Start(context.Background(), nil, true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("segment was not reported")
	}

	stopped := make(chan struct{})
	go func() {
		f.ctrl.Stop()
		close(stopped)
	}()
	deadline := time.Now().Add(time.Second)
	for f.ctrl.Status() != StatusIdle && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(release)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 || seen[len(seen)-1] != StatusIdle {
		t.Errorf("observed = %v, want idle last", seen)
	}
}

func TestDebugSession(t *testing.T) {
	surface := newSurface()
	ledger := history.NewLedger()
	window := 80 * time.Millisecond

	ctrl := New(Config{
		Surface: surface,
		History: ledger,
		Policy:  chunker.Policy{Window: window},
	})
	defer ctrl.Stop()

	start := time.Now()
	if err := ctrl.Start(context.Background(), nil, true, true); err != nil {
		t.Fatalf("Start: %v", err)
	}

	first := surface.next(t, 40*time.Millisecond)
	if !isCanned(first) {
		t.Errorf("first subtitle %q is not a canned phrase", first)
	}

	second := surface.next(t, time.Second)
	if time.Since(start) < window {
		t.Errorf("second subtitle after %v, want >= %v", time.Since(start), window)
	}
	if !isCanned(second) {
		t.Errorf("second subtitle %q is not a canned phrase", second)
	}

	latest, _ := ledger.Latest()
	if latest.Original != DebugLabel {
		t.Errorf("original = %q, want %q", latest.Original, DebugLabel)
	}

	ctrl.Stop()
	if got := ctrl.Status(); got != StatusIdle {
		t.Errorf("status = %q", got)
	}
	surface.expectNone(t, window+40*time.Millisecond)
}

func isCanned(text string) bool {
	for _, p := range whisper.Phrases {
		if strings.EqualFold(p, text) {
			return true
		}
	}
	return false
}
