package console

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"livesub/internal/capture"
	"livesub/internal/history"
	"livesub/internal/i18n"
)

type fakeBackend struct {
	snapshot  capture.Snapshot
	toggleErr error
	toggles   int
	mic       bool
	debug     bool
	records   []history.Record
	queries   []string
	exportErr error
	cleared   int
}

func (f *fakeBackend) ToggleTranslation() error {
	f.toggles++
	if f.toggleErr != nil {
		return f.toggleErr
	}
	f.snapshot.Status = capture.StatusTranslating
	return nil
}

func (f *fakeBackend) ToggleMicrophone() bool     { f.mic = !f.mic; return f.mic }
func (f *fakeBackend) ToggleDebug() bool          { f.debug = !f.debug; return f.debug }
func (f *fakeBackend) Snapshot() capture.Snapshot { return f.snapshot }
func (f *fakeBackend) ModelID() string            { return "base" }
func (f *fakeBackend) ClearHistory()              { f.cleared++; f.records = nil }

func (f *fakeBackend) Search(term string) []history.Record {
	f.queries = append(f.queries, term)
	var out []history.Record
	for _, r := range f.records {
		if strings.Contains(strings.ToLower(r.Translated), strings.ToLower(term)) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeBackend) ExportHistory() (string, error) {
	if f.exportErr != nil {
		return "", f.exportErr
	}
	return "/tmp/translation-history.txt", nil
}

func (f *fakeBackend) CopyLatest() (string, error) {
	return "hello", nil
}

func newTestModel(t *testing.T) (Model, *fakeBackend) {
	t.Helper()
	i18n.SetLanguage("en")
	b := &fakeBackend{
		snapshot: capture.Snapshot{Status: capture.StatusIdle},
		records: []history.Record{
			{Timestamp: "09:30:02", Original: "Microphone audio", Translated: "Good morning"},
			{Timestamp: "09:30:01", Original: "Microphone audio", Translated: "Hello world"},
		},
	}
	m := New(b, Options{UseMicrophone: true})
	m.width = 100
	m.height = 30
	return m, b
}

// run применяет сообщение и выполняет полученную команду, если она есть.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	model := updated.(Model)
	if cmd == nil {
		return model
	}
	next := cmd()
	if next == nil {
		return model
	}
	if _, ok := next.(clearNoticeMsg); ok {
		return model
	}
	updated, _ = model.Update(next)
	return updated.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoadsHistory(t *testing.T) {
	m, _ := newTestModel(t)
	msg := m.Init()()
	updated, _ := m.Update(msg)
	model := updated.(Model)
	if len(model.records) != 2 {
		t.Fatalf("records = %d, want 2", len(model.records))
	}
}

func TestSpaceTogglesTranslation(t *testing.T) {
	m, b := newTestModel(t)
	model := run(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if b.toggles != 1 {
		t.Fatalf("toggles = %d, want 1", b.toggles)
	}
	if model.snapshot.Status != capture.StatusTranslating {
		t.Errorf("status = %q, want %q", model.snapshot.Status, capture.StatusTranslating)
	}
}

func TestToggleErrorShowsNotice(t *testing.T) {
	m, b := newTestModel(t)
	b.toggleErr = capture.ErrNoSourceSelected
	model := run(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !model.noticeErr {
		t.Fatal("expected error notice")
	}
	if model.notice != capture.ErrNoSourceSelected.Error() {
		t.Errorf("notice = %q, want %q", model.notice, capture.ErrNoSourceSelected.Error())
	}
}

func TestMicrophoneAndDebugKeys(t *testing.T) {
	m, b := newTestModel(t)
	b.mic = true
	model := run(t, m, runes("m"))
	if model.useMicrophone {
		t.Error("microphone should be off after toggle")
	}
	model = run(t, model, runes("d"))
	if !model.debugMode {
		t.Error("debug should be on after toggle")
	}
}

func TestSearchFiltersHistory(t *testing.T) {
	m, _ := newTestModel(t)
	m = run(t, m, m.Init()())

	model := run(t, m, runes("/"))
	if !model.searching {
		t.Fatal("should be in search mode")
	}
	model = run(t, model, runes("hel"))
	if model.query != "hel" {
		t.Fatalf("query = %q, want %q", model.query, "hel")
	}
	if len(model.records) != 1 || model.records[0].Translated != "Hello world" {
		t.Fatalf("records = %+v, want only Hello world", model.records)
	}

	// В режиме поиска клавиши действий - это текст
	model = run(t, model, runes("q"))
	if model.query != "helq" {
		t.Errorf("query = %q, want %q", model.query, "helq")
	}
	model = run(t, model, tea.KeyMsg{Type: tea.KeyBackspace})
	if model.query != "hel" {
		t.Errorf("query = %q, want %q", model.query, "hel")
	}

	model = run(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.searching || model.query != "" {
		t.Errorf("searching = %v, query = %q after esc", model.searching, model.query)
	}
	if len(model.records) != 2 {
		t.Errorf("records = %d, want 2", len(model.records))
	}
}

func TestStaleRecordsIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m.query = "new"
	updated, _ := m.Update(RecordsMsg{Query: "old", Records: []history.Record{{Translated: "x"}}})
	if got := len(updated.(Model).records); got != 0 {
		t.Errorf("records = %d, want 0", got)
	}
}

func TestClearHistory(t *testing.T) {
	m, b := newTestModel(t)
	m = run(t, m, m.Init()())
	// c -> HistoryChangedMsg -> searchCmd
	updated, cmd := m.Update(runes("c"))
	model := run(t, updated.(Model), cmd())
	if b.cleared != 1 {
		t.Fatalf("cleared = %d, want 1", b.cleared)
	}
	if len(model.records) != 0 {
		t.Errorf("records = %d, want 0", len(model.records))
	}
	if !strings.Contains(model.View(), i18n.T("console_no_history")) {
		t.Error("view should show empty history")
	}
}

func TestExportNotice(t *testing.T) {
	m, b := newTestModel(t)
	model := run(t, m, runes("e"))
	if model.noticeErr || !strings.Contains(model.notice, "translation-history.txt") {
		t.Errorf("notice = %q", model.notice)
	}

	b.exportErr = errors.New("disk full")
	model = run(t, model, runes("e"))
	if !model.noticeErr || !strings.Contains(model.notice, "disk full") {
		t.Errorf("notice = %q, want export error", model.notice)
	}
}

func TestNoticeExpires(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(NoticeMsg{Text: "first"})
	model := updated.(Model)
	first := model.noticeSeq
	updated, _ = model.Update(NoticeMsg{Text: "second"})
	model = updated.(Model)

	updated, _ = model.Update(clearNoticeMsg{seq: first})
	model = updated.(Model)
	if model.notice != "second" {
		t.Fatalf("notice = %q, want %q", model.notice, "second")
	}
	updated, _ = model.Update(clearNoticeMsg{seq: model.noticeSeq})
	if got := updated.(Model).notice; got != "" {
		t.Errorf("notice = %q, want empty", got)
	}
}

func TestSubtitleClearedWhenStopped(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(StatusMsg{Snapshot: capture.Snapshot{Status: capture.StatusTranslating, Mode: capture.ModeMicrophone}})
	updated, _ = updated.(Model).Update(SubtitleMsg{Text: "Hola"})
	model := updated.(Model)
	view := model.View()
	if !strings.Contains(view, "Hola") || !strings.Contains(view, string(capture.ModeMicrophone)) {
		t.Fatalf("view missing subtitle or mode:\n%s", view)
	}

	updated, _ = model.Update(StatusMsg{Snapshot: capture.Snapshot{Status: capture.StatusIdle}})
	if got := updated.(Model).subtitle; got != "" {
		t.Errorf("subtitle = %q, want empty", got)
	}
}

func TestErrorStatusRendered(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(StatusMsg{Snapshot: capture.Snapshot{
		Status: capture.StatusError,
		Err:    errors.New("microphone busy"),
	}})
	if view := updated.(Model).View(); !strings.Contains(view, "microphone busy") {
		t.Errorf("view should show error:\n%s", view)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestBridgeDropsWhenDetached(t *testing.T) {
	b := NewBridge()
	b.UpdateSubtitle("lost")

	var got []tea.Msg
	b.Attach(func(msg tea.Msg) { got = append(got, msg) })
	b.UpdateSubtitle("hi")
	b.HistoryChanged()
	b.Detach()
	b.UpdateSubtitle("lost")

	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2", len(got))
	}
	if sm, ok := got[0].(SubtitleMsg); !ok || sm.Text != "hi" {
		t.Errorf("first = %#v, want SubtitleMsg{hi}", got[0])
	}
}
