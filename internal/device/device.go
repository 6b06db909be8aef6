// Package device открывает аудиоустройства через PortAudio: микрофон по
// умолчанию или выбранный вход (loopback, monitor, BlackHole).
package device

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"livesub/internal/audio"
)

const (
	// FramesPerBuffer - размер буфера.
	FramesPerBuffer = 1024
	// pollInterval - пауза когда данных ещё нет.
	pollInterval = 10 * time.Millisecond
)

// desktopHints - подстроки имён устройств, захватывающих вывод системы.
var desktopHints = []string{
	"monitor",
	"loopback",
	"blackhole",
	"soundflower",
	"stereo mix",
	"what u hear",
	"wave out",
}

// permissionHints - признаки отказа в доступе в тексте ошибки.
var permissionHints = []string{
	"permission",
	"denied",
	"not permitted",
	"not authorized",
	"access",
}

// Init инициализирует PortAudio. Вызывается один раз при старте.
func Init() error {
	return portaudio.Initialize()
}

// Terminate освобождает PortAudio.
func Terminate() {
	portaudio.Terminate()
}

// Sources возвращает входные устройства, пригодные для захвата.
func Sources() ([]audio.Source, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	var sources []audio.Source
	for _, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		sources = append(sources, audio.Source{
			ID:   deviceID(d),
			Name: d.Name,
			Kind: kindOf(d.Name),
		})
	}
	return sources, nil
}

func deviceID(d *portaudio.DeviceInfo) string {
	if d.HostApi == nil {
		return d.Name
	}
	return d.HostApi.Name + "/" + d.Name
}

// kindOf угадывает тип источника по имени устройства.
func kindOf(name string) audio.Kind {
	lower := strings.ToLower(name)
	for _, hint := range desktopHints {
		if strings.Contains(lower, hint) {
			return audio.KindDesktop
		}
	}
	return audio.KindMicrophone
}

// Classify приводит ошибку PortAudio к ErrPermissionDenied или
// ErrDeviceUnavailable.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, audio.ErrPermissionDenied) || errors.Is(err, audio.ErrDeviceUnavailable) {
		return err
	}
	lower := strings.ToLower(err.Error())
	for _, hint := range permissionHints {
		if strings.Contains(lower, hint) {
			return fmt.Errorf("%w: %v", audio.ErrPermissionDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", audio.ErrDeviceUnavailable, err)
}

// Stream - открытый входной поток. Принадлежит одной сессии записи.
type Stream struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	buffer []float32
	rate   float64
	active bool
}

// Open открывает источник. nil означает микрофон по умолчанию.
func Open(src *audio.Source) (*Stream, error) {
	s := &Stream{
		buffer: make([]float32, FramesPerBuffer),
		rate:   audio.SampleRate,
	}

	var (
		stream *portaudio.Stream
		err    error
	)
	if src == nil || src.ID == "" {
		stream, err = portaudio.OpenDefaultStream(
			audio.Channels,
			0,
			audio.SampleRate,
			FramesPerBuffer,
			s.buffer,
		)
	} else {
		stream, err = s.openNamed(src.ID)
	}
	if err != nil {
		return nil, Classify(err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, Classify(err)
	}

	s.stream = stream
	s.active = true
	return s, nil
}

// openNamed открывает устройство по ID. Если 16 kHz не поддерживается,
// открывает на родной частоте и пересэмплирует при чтении.
func (s *Stream) openNamed(id string) (*portaudio.Stream, error) {
	info, err := find(id)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = audio.Channels
	params.FramesPerBuffer = FramesPerBuffer
	params.SampleRate = audio.SampleRate

	stream, err := portaudio.OpenStream(params, s.buffer)
	if err == nil {
		return stream, nil
	}

	log.Printf("Устройство %s: 16 kHz недоступно (%v), используем %.0f Hz", info.Name, err, info.DefaultSampleRate)
	params.SampleRate = info.DefaultSampleRate
	stream, err = portaudio.OpenStream(params, s.buffer)
	if err != nil {
		return nil, err
	}
	s.rate = info.DefaultSampleRate
	return stream, nil
}

func find(id string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && (deviceID(d) == id || d.Name == id) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: устройство %q не найдено", audio.ErrDeviceUnavailable, id)
}

// Active возвращает true пока поток открыт.
func (s *Stream) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Capture читает одно окно звука. Прерывается отменой контекста.
func (s *Stream) Capture(ctx context.Context, window time.Duration) ([]float32, error) {
	want := int(s.rate * window.Seconds())
	samples := make([]float32, 0, want)

	for len(samples) < want {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.mu.Lock()
		if !s.active {
			s.mu.Unlock()
			return nil, errors.New("stream closed")
		}
		stream := s.stream
		s.mu.Unlock()

		available, err := stream.AvailableToRead()
		if err != nil {
			return nil, err
		}
		if available == 0 {
			time.Sleep(pollInterval)
			continue
		}

		if err := stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return nil, err
		}

		s.mu.Lock()
		samples = append(samples, s.buffer...)
		s.mu.Unlock()
	}

	return Resample(samples, s.rate, audio.SampleRate), nil
}

// Close останавливает и закрывает поток. Повторный вызов ничего не делает.
func (s *Stream) Close() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if err := stream.Stop(); err != nil {
		log.Printf("Ошибка остановки потока: %v", err)
	}
	return stream.Close()
}

// Resample линейно пересчитывает частоту дискретизации.
func Resample(samples []float32, from, to float64) []float32 {
	if from == to || len(samples) == 0 || from <= 0 || to <= 0 {
		return samples
	}

	n := int(float64(len(samples)) * to / from)
	out := make([]float32, n)
	step := from / to
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}
