// Package audio содержит общие типы аудиоконвейера: источники звука,
// сегменты и кодирование PCM в WAV.
package audio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// SampleRate - частота дискретизации (требование Whisper).
	SampleRate = 16000
	// Channels - количество каналов (mono).
	Channels = 1
	// BitDepth - разрядность PCM в сегменте.
	BitDepth = 16
)

var (
	// ErrPermissionDenied - доступ к устройству запрещён системой.
	ErrPermissionDenied = errors.New("доступ к аудиоустройству запрещён")
	// ErrDeviceUnavailable - устройство не удалось открыть.
	ErrDeviceUnavailable = errors.New("аудиоустройство недоступно")
)

// Kind тип источника звука.
type Kind string

const (
	KindMicrophone Kind = "microphone"
	KindDesktop    Kind = "desktop"
)

// Source описывает выбранный пользователем источник звука.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Label возвращает подпись для истории ("Microphone audio", "Desktop audio").
func (s Source) Label() string {
	base := "Desktop audio"
	if s.Kind == KindMicrophone {
		base = "Microphone audio"
	}
	if s.Name == "" {
		return base
	}
	// Стрелка разделяет оригинал и перевод в экспорте истории.
	name := strings.ReplaceAll(s.Name, "→", "->")
	return fmt.Sprintf("%s (%s)", base, name)
}

// Segment - закодированный фрагмент аудио фиксированной длительности.
// Живёт от записи до ответа сервера распознавания.
type Segment struct {
	Seq       int
	SessionID string
	Payload   []byte
	MimeType  string
	Duration  time.Duration
	Label     string
}

// Size возвращает размер полезной нагрузки в байтах.
func (s Segment) Size() int {
	return len(s.Payload)
}
