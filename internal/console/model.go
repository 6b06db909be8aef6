// Package console - терминальный интерфейс: состояние перевода, текущий
// субтитр и история с поиском.
package console

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"livesub/internal/capture"
	"livesub/internal/history"
	"livesub/internal/i18n"
)

const noticeTTL = 4 * time.Second

// Backend - действия приложения, доступные из консоли. Действия вызываются
// из команд bubbletea, а не из Update, поэтому могут слать события в Bridge.
type Backend interface {
	ToggleTranslation() error
	ToggleMicrophone() bool
	ToggleDebug() bool
	Snapshot() capture.Snapshot
	ModelID() string
	Search(term string) []history.Record
	ExportHistory() (string, error)
	CopyLatest() (string, error)
	ClearHistory()
}

// Options - начальные значения переключателей.
type Options struct {
	UseMicrophone bool
	DebugMode     bool
}

// Model - корневая модель bubbletea.
type Model struct {
	backend Backend

	snapshot      capture.Snapshot
	useMicrophone bool
	debugMode     bool

	subtitle      string
	subtitleStyle lipgloss.Style

	records   []history.Record
	query     string
	searching bool

	notice    string
	noticeErr bool
	noticeSeq int

	width  int
	height int
}

// New создаёт модель консоли.
func New(b Backend, opts Options) Model {
	return Model{
		backend:       b,
		snapshot:      b.Snapshot(),
		useMicrophone: opts.UseMicrophone,
		debugMode:     opts.DebugMode,
		subtitleStyle: lipgloss.NewStyle().Bold(true),
	}
}

// Init загружает историю.
func (m Model) Init() tea.Cmd {
	return searchCmd(m.backend, m.query)
}

func searchCmd(b Backend, query string) tea.Cmd {
	return func() tea.Msg {
		return RecordsMsg{Query: query, Records: b.Search(query)}
	}
}

func toggleCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		if err := b.ToggleTranslation(); err != nil {
			return ErrorMsg{Err: err}
		}
		return StatusMsg{Snapshot: b.Snapshot()}
	}
}

func exportCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		path, err := b.ExportHistory()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("%s: %w", i18n.T("error_export"), err)}
		}
		return NoticeMsg{Text: i18n.T("notify_exported") + ": " + path}
	}
}

func copyCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		text, err := b.CopyLatest()
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("%s: %w", i18n.T("error_clipboard"), err)}
		}
		return NoticeMsg{Text: i18n.T("notify_copied") + ": " + text}
	}
}

func microphoneCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		return microphoneMsg{on: b.ToggleMicrophone()}
	}
}

func debugCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		return debugMsg{on: b.ToggleDebug()}
	}
}

func clearCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		b.ClearHistory()
		return HistoryChangedMsg{}
	}
}

func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// Update обрабатывает сообщения.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StatusMsg:
		m.snapshot = msg.Snapshot
		if msg.Snapshot.Status != capture.StatusTranslating && msg.Snapshot.Status != capture.StatusStarting {
			m.subtitle = ""
		}
		return m, nil

	case SubtitleMsg:
		m.subtitle = msg.Text
		return m, nil

	case StyleMsg:
		st := msg.Style.Normalize()
		m.subtitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(st.Color))
		return m, nil

	case SettingsMsg:
		m.useMicrophone = msg.UseMicrophone
		m.debugMode = msg.DebugMode
		return m, nil

	case microphoneMsg:
		m.useMicrophone = msg.on
		return m, nil

	case debugMsg:
		m.debugMode = msg.on
		return m, nil

	case HistoryChangedMsg:
		return m, searchCmd(m.backend, m.query)

	case RecordsMsg:
		// Ответ на устаревший запрос
		if msg.Query != m.query {
			return m, nil
		}
		m.records = msg.Records
		return m, nil

	case NoticeMsg:
		return m.setNotice(msg.Text, false)

	case ErrorMsg:
		return m.setNotice(msg.Err.Error(), true)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
			m.noticeErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m Model) setNotice(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	m.noticeErr = isErr
	return m, clearNoticeCmd(m.noticeSeq)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case " ":
		return m, toggleCmd(m.backend)

	case "m", "M":
		return m, microphoneCmd(m.backend)

	case "d", "D":
		return m, debugCmd(m.backend)

	case "/":
		m.searching = true
		return m, nil

	case "e", "E":
		return m, exportCmd(m.backend)

	case "y", "Y":
		return m, copyCmd(m.backend)

	case "c", "C":
		return m, clearCmd(m.backend)
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		m.searching = false
		return m, nil

	case tea.KeyEsc:
		m.searching = false
		m.query = ""
		return m, searchCmd(m.backend, m.query)

	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
		return m, searchCmd(m.backend, m.query)

	case tea.KeySpace:
		m.query += " "
		return m, searchCmd(m.backend, m.query)

	case tea.KeyRunes:
		m.query += string(msg.Runes)
		return m, searchCmd(m.backend, m.query)
	}
	return m, nil
}

// View отрисовывает консоль.
func (m Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatus())
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", width)))
	sections = append(sections, m.renderSubtitle())
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", width)))
	sections = append(sections, m.renderHistory(width))
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", width)))
	if m.notice != "" {
		if m.noticeErr {
			sections = append(sections, errorStyle.Render(m.notice))
		} else {
			sections = append(sections, noticeStyle.Render(m.notice))
		}
	}
	sections = append(sections, dimStyle.Render(i18n.T("console_help")))

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(strings.ToUpper(i18n.T("app_name")))
	var flags []string
	if m.useMicrophone {
		flags = append(flags, "MIC")
	}
	if m.debugMode {
		flags = append(flags, "DEBUG")
	}
	if len(flags) > 0 {
		title += dimStyle.Render(" [" + strings.Join(flags, " + ") + "]")
	}
	return title
}

func (m Model) renderStatus() string {
	var status string
	switch m.snapshot.Status {
	case capture.StatusStarting:
		status = startingStyle.Render("◐ " + i18n.T("tray_starting"))
	case capture.StatusTranslating:
		status = translatingStyle.Render("● " + i18n.T("tray_translating"))
	case capture.StatusError:
		status = errorStyle.Render("✕ " + i18n.T("tray_error"))
	default:
		status = idleStyle.Render("○ " + i18n.T("tray_idle"))
	}

	parts := []string{
		labelStyle.Render(i18n.T("console_status")+": ") + status,
		labelStyle.Render(i18n.T("console_chunks")+": ") + fmt.Sprint(m.snapshot.Processed),
	}
	if m.snapshot.Mode != "" {
		parts = append(parts, labelStyle.Render(i18n.T("console_mode")+": ")+string(m.snapshot.Mode))
	}
	parts = append(parts, labelStyle.Render(i18n.T("console_model")+": ")+m.backend.ModelID())

	line := strings.Join(parts, "  ")
	if m.snapshot.Status == capture.StatusError && m.snapshot.Err != nil {
		line += "\n" + errorStyle.Render(m.snapshot.Err.Error())
	}
	return line
}

func (m Model) renderSubtitle() string {
	header := labelStyle.Render(i18n.T("console_subtitle"))
	if m.subtitle == "" {
		return header + "\n" + dimStyle.Render("  "+i18n.T("console_waiting"))
	}
	return header + "\n  " + m.subtitleStyle.Render(m.subtitle)
}

func (m Model) historyLines() int {
	if m.height == 0 {
		return 10
	}
	// заголовок, статус, субтитр, разделители, подсказки
	return max(3, m.height-11)
}

func (m Model) renderHistory(width int) string {
	header := labelStyle.Render(fmt.Sprintf("%s (%d)", i18n.T("console_history"), len(m.records)))
	if m.searching || m.query != "" {
		cursor := ""
		if m.searching {
			cursor = "█"
		}
		header += "  " + searchStyle.Render(i18n.T("console_search")+m.query+cursor)
	}

	lines := []string{header}
	if len(m.records) == 0 {
		lines = append(lines, dimStyle.Render("  "+i18n.T("console_no_history")))
		return strings.Join(lines, "\n")
	}

	limit := m.historyLines()
	for i, r := range m.records {
		if i >= limit {
			break
		}
		line := timestampStyle.Render("["+r.Timestamp+"]") + " "
		if r.Original != "" {
			line += originalStyle.Render(r.Original) + dimStyle.Render(history.Arrow)
		}
		line += r.Translated
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
