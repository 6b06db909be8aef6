package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// MimeWAV - тип контейнера сегментов.
const MimeWAV = "audio/wav"

// EncodeWAV кодирует float32 сэмплы [-1, 1] в WAV (PCM16, 16kHz, mono).
// Для пустого буфера возвращает nil - такой сегмент отбрасывается.
func EncodeWAV(samples []float32) ([]byte, error) {
	if len(samples) == 0 {
		return nil, nil
	}

	// wav.Encoder требует io.WriteSeeker, поэтому пишем через временный файл
	f, err := os.CreateTemp("", "livesub-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	enc := wav.NewEncoder(f, SampleRate, BitDepth, Channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: Channels,
			SampleRate:  SampleRate,
		},
		Data:           ToPCM16(samples),
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp wav: %w", err)
	}

	return os.ReadFile(path)
}

// ToPCM16 переводит float32 [-1, 1] в значения int16, обрезая выбросы.
func ToPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int(s * 32767)
	}
	return out
}
