// Package chunker нарезает живой аудиопоток на сегменты фиксированной
// длительности и передаёт их дальше по конвейеру.
package chunker

import (
	"errors"
	"time"

	"livesub/internal/audio"
)

// ErrNoActiveStream - поток отсутствует или уже закрыт.
var ErrNoActiveStream = errors.New("нет активного аудиопотока")

// endTimeout - сколько End ждёт завершения цикла записи.
const endTimeout = 2 * time.Second

// Policy - тайминги цикла записи.
type Policy struct {
	Window     time.Duration // длительность одного окна
	RetryDelay time.Duration // пауза после отброшенного сегмента
	Gap        time.Duration // пауза между отправленными сегментами
	MinBytes   int           // сегменты меньше этого размера отбрасываются
}

// DefaultPolicy возвращает стандартные тайминги: окно 5 секунд.
func DefaultPolicy() Policy {
	return Policy{
		Window:     5 * time.Second,
		RetryDelay: time.Second,
		Gap:        500 * time.Millisecond,
		MinBytes:   100,
	}
}

// Options - параметры производителя сегментов.
type Options struct {
	Policy    Policy
	SessionID string
	Label     string

	// Alive вызывается на каждой границе цикла. false останавливает
	// производителя без вызова OnHalt.
	Alive func() bool
	// OnSegment получает каждый готовый сегмент в отдельной горутине.
	OnSegment func(audio.Segment)
	// OnHalt вызывается один раз при фатальной ошибке цикла.
	OnHalt func(error)
}

func (o Options) alive() bool {
	return o.Alive == nil || o.Alive()
}

// Producer - источник сегментов: живая запись или синтетический таймер.
type Producer interface {
	Begin() error
	End()
}

var (
	_ Producer = (*Recorder)(nil)
	_ Producer = (*Synthetic)(nil)
)
