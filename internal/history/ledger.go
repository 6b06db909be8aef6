// Package history хранит последние переводы: кольцевой буфер на 100
// записей, поиск, экспорт в текст и архив в SQLite.
package history

import (
	"log"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	// Capacity - сколько записей хранит журнал.
	Capacity = 100
	// TimeLayout - формат человекочитаемого времени записи.
	TimeLayout = "15:04:05"
)

// Record - одна запись журнала. Не изменяется после создания.
type Record struct {
	ID         int64     `json:"id"`
	Time       time.Time `json:"time"`
	Timestamp  string    `json:"timestamp"`
	Original   string    `json:"original,omitempty"`
	Translated string    `json:"translated"`
}

// Persister зеркалирует журнал во внешнее хранилище.
type Persister interface {
	Save(rec Record) error
	Clear() error
}

// Ledger - журнал переводов, новые записи первыми.
type Ledger struct {
	mu      sync.RWMutex
	buf     [Capacity]Record
	start   int // индекс самой старой записи
	size    int
	lastID  int64
	now     func() time.Time
	persist Persister
	onAdd   []func(Record)
}

// NewLedger создаёт пустой журнал.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// SetPersister подключает архив. nil отключает.
func (l *Ledger) SetPersister(p Persister) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persist = p
}

// OnAppend регистрирует наблюдателя новых записей.
func (l *Ledger) OnAppend(fn func(Record)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAdd = append(l.onAdd, fn)
}

// Append добавляет запись, вытесняя самую старую сверх Capacity.
func (l *Ledger) Append(original, translated string) Record {
	l.mu.Lock()
	now := l.now()
	id := now.UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id

	rec := Record{
		ID:         id,
		Time:       now,
		Timestamp:  now.Format(TimeLayout),
		Original:   original,
		Translated: translated,
	}
	l.push(rec)

	persist := l.persist
	observers := slices.Clone(l.onAdd)
	l.mu.Unlock()

	if persist != nil {
		if err := persist.Save(rec); err != nil {
			log.Printf("История: ошибка сохранения записи: %v", err)
		}
	}
	for _, fn := range observers {
		fn(rec)
	}
	return rec
}

// push кладёт запись в буфер. Вызывается под блокировкой.
func (l *Ledger) push(rec Record) {
	if l.size < Capacity {
		l.buf[(l.start+l.size)%Capacity] = rec
		l.size++
		return
	}
	l.buf[l.start] = rec
	l.start = (l.start + 1) % Capacity
}

// Restore заменяет содержимое записями из архива (новые первыми).
// В архив ничего не пишется.
func (l *Ledger) Restore(records []Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.start, l.size = 0, 0
	if len(records) > Capacity {
		records = records[:Capacity]
	}
	for i := len(records) - 1; i >= 0; i-- {
		l.push(records[i])
		if records[i].ID > l.lastID {
			l.lastID = records[i].ID
		}
	}
}

// Records возвращает все записи, новые первыми.
func (l *Ledger) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(nil)
}

// collect обходит записи от новых к старым. Вызывается под блокировкой.
func (l *Ledger) collect(keep func(Record) bool) []Record {
	out := make([]Record, 0, l.size)
	for i := l.size - 1; i >= 0; i-- {
		rec := l.buf[(l.start+i)%Capacity]
		if keep == nil || keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Len возвращает число записей.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Latest возвращает самую новую запись.
func (l *Ledger) Latest() (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.size == 0 {
		return Record{}, false
	}
	return l.buf[(l.start+l.size-1)%Capacity], true
}

// Search ищет подстроку без учёта регистра в переводе или оригинале.
// Пустой запрос возвращает все записи.
func (l *Ledger) Search(term string) []Record {
	needle := strings.ToLower(term)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if needle == "" {
		return l.collect(nil)
	}
	return l.collect(func(r Record) bool {
		return strings.Contains(strings.ToLower(r.Translated), needle) ||
			strings.Contains(strings.ToLower(r.Original), needle)
	})
}

// Clear удаляет все записи журнала и архива.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.buf = [Capacity]Record{}
	l.start, l.size = 0, 0
	persist := l.persist
	l.mu.Unlock()

	if persist != nil {
		if err := persist.Clear(); err != nil {
			log.Printf("История: ошибка очистки архива: %v", err)
		}
	}
}
