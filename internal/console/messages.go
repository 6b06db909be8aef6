package console

import (
	"livesub/internal/capture"
	"livesub/internal/history"
	"livesub/internal/subtitle"
)

// StatusMsg несёт снимок состояния контроллера.
type StatusMsg struct {
	Snapshot capture.Snapshot
}

// SubtitleMsg - новый текст субтитра.
type SubtitleMsg struct {
	Text string
}

// StyleMsg - новый стиль субтитров.
type StyleMsg struct {
	Style subtitle.Style
}

// HistoryChangedMsg просит перечитать историю.
type HistoryChangedMsg struct{}

// RecordsMsg несёт отфильтрованные записи истории.
type RecordsMsg struct {
	Query   string
	Records []history.Record
}

// NoticeMsg - короткое сообщение в строке статуса.
type NoticeMsg struct {
	Text string
}

// ErrorMsg - ошибка действия пользователя.
type ErrorMsg struct {
	Err error
}

// SettingsMsg сообщает новые значения переключателей.
type SettingsMsg struct {
	UseMicrophone bool
	DebugMode     bool
}

type clearNoticeMsg struct{ seq int }

type microphoneMsg struct{ on bool }

type debugMsg struct{ on bool }
