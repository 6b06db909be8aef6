package history

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// Placeholder заменяет отсутствующий оригинал в экспорте.
	Placeholder = "N/A"
	// Arrow разделяет оригинал и перевод в строке экспорта.
	Arrow = " → "
)

// ErrBadLine - строка не в формате экспорта.
var ErrBadLine = errors.New("строка не в формате экспорта")

// ExportText сериализует журнал, новые записи первыми:
// "[timestamp] original → translated".
func (l *Ledger) ExportText() string {
	records := l.Records()
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, FormatLine(r))
	}
	return strings.Join(lines, "\n")
}

// FormatLine форматирует одну запись в одну строку. Переводы строк
// заменяются пробелами, стрелка в оригинале - на "->", чтобы ParseLine
// однозначно нашла разделитель.
func FormatLine(r Record) string {
	original := strings.ReplaceAll(flatten(r.Original), "→", "->")
	if original == "" {
		original = Placeholder
	}
	return fmt.Sprintf("[%s] %s%s%s", r.Timestamp, original, Arrow, flatten(r.Translated))
}

// ParseLine разбирает строку экспорта. Оригинал-заглушка возвращается
// пустым, поэтому оригинал "N/A" не восстанавливается. Многострочный
// текст возвращается в одну строку.
func ParseLine(line string) (Record, error) {
	if !strings.HasPrefix(line, "[") {
		return Record{}, ErrBadLine
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return Record{}, ErrBadLine
	}
	timestamp := line[1:end]
	rest := line[end+2:]

	original, translated, ok := strings.Cut(rest, Arrow)
	if !ok {
		return Record{}, ErrBadLine
	}
	if original == Placeholder {
		original = ""
	}
	return Record{
		Timestamp:  timestamp,
		Original:   original,
		Translated: translated,
	}, nil
}

// ExportFileName возвращает имя файла экспорта с меткой времени ISO 8601
// (базовый формат, без двоеточий).
func ExportFileName(t time.Time) string {
	return "translation-history-" + t.UTC().Format("20060102T150405Z") + ".txt"
}

// WriteExport записывает экспорт журнала в файл.
func WriteExport(l *Ledger, path string) error {
	if err := os.WriteFile(path, []byte(l.ExportText()), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// flatten убирает переводы строк, чтобы запись занимала одну строку.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
