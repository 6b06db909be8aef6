package whisper

import "strings"

// Outcome исход обработки сегмента.
type Outcome int

const (
	// OutcomeText - получен непустой текст.
	OutcomeText Outcome = iota
	// OutcomeEmpty - речь не обнаружена. Не ошибка.
	OutcomeEmpty
	// OutcomeFailed - сервис недоступен или вернул ошибку.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeText:
		return "text"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Result - результат перевода одного сегмента.
type Result struct {
	Label   string // описание источника ("Microphone audio")
	Text    string
	Outcome Outcome
	Err     error
}

// OK возвращает true если запрос прошёл успешно (в том числе с пустым текстом).
func (r Result) OK() bool {
	return r.Outcome != OutcomeFailed
}

// Succeeded строит успешный результат. Пустой текст или пробелы
// означают отсутствие речи.
func Succeeded(label, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Label: label, Outcome: OutcomeEmpty}
	}
	return Result{Label: label, Text: text, Outcome: OutcomeText}
}

// Failed строит результат с ошибкой.
func Failed(label string, err error) Result {
	return Result{Label: label, Outcome: OutcomeFailed, Err: err}
}
