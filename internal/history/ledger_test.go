package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestLedger создаёт журнал с фиксированными часами, шаг 1 секунда.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	clock := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	l.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return l
}

func TestAppendNewestFirst(t *testing.T) {
	l := newTestLedger(t)
	l.Append("Microphone audio", "first")
	l.Append("Microphone audio", "second")

	recs := l.Records()
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].Translated != "second" || recs[1].Translated != "first" {
		t.Errorf("order = %q, %q", recs[0].Translated, recs[1].Translated)
	}
	if recs[0].Timestamp != "09:30:02" {
		t.Errorf("timestamp = %q, want %q", recs[0].Timestamp, "09:30:02")
	}
	if recs[0].ID <= recs[1].ID {
		t.Errorf("ids not increasing: %d, %d", recs[1].ID, recs[0].ID)
	}
}

func TestIDsMonotonicWithSameClock(t *testing.T) {
	l := NewLedger()
	fixed := time.Now()
	l.now = func() time.Time { return fixed }

	a := l.Append("", "a")
	b := l.Append("", "b")
	if b.ID <= a.ID {
		t.Errorf("ids = %d, %d, want increasing", a.ID, b.ID)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	l := newTestLedger(t)
	for i := 0; i < Capacity+25; i++ {
		l.Append("", fmt.Sprintf("line %d", i))
		if l.Len() > Capacity {
			t.Fatalf("len = %d after %d appends", l.Len(), i+1)
		}
	}

	recs := l.Records()
	if len(recs) != Capacity {
		t.Fatalf("len = %d, want %d", len(recs), Capacity)
	}
	if got := recs[0].Translated; got != fmt.Sprintf("line %d", Capacity+24) {
		t.Errorf("newest = %q", got)
	}
	if got := recs[len(recs)-1].Translated; got != "line 25" {
		t.Errorf("oldest = %q, want %q", got, "line 25")
	}

	latest, ok := l.Latest()
	if !ok || latest.Translated != recs[0].Translated {
		t.Errorf("latest = %+v", latest)
	}
}

func TestSearch(t *testing.T) {
	l := newTestLedger(t)
	l.Append("Microphone audio", "Hello there")
	l.Append("Desktop audio", "good morning")
	l.Append("", "HELLO again")

	tests := []struct {
		term string
		want []string
	}{
		{"hello", []string{"HELLO again", "Hello there"}},
		{"DESKTOP", []string{"good morning"}},
		{"microphone", []string{"Hello there"}},
		{"absent", nil},
		{"", []string{"HELLO again", "good morning", "Hello there"}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := l.Search(tt.term)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Translated != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, r.Translated, tt.want[i])
				}
			}
		})
	}
}

func TestExportAndParse(t *testing.T) {
	l := newTestLedger(t)
	l.Append("Microphone audio", "first line")
	l.Append("", "multi\nline")
	l.Append("Desktop audio", "arrows → inside")

	text := l.ExportText()
	lines := strings.Split(text, "\n")
	recs := l.Records()
	if len(lines) != len(recs) {
		t.Fatalf("lines = %d, want %d", len(lines), len(recs))
	}

	if lines[1] != "[09:30:02] N/A → multi line" {
		t.Errorf("line = %q", lines[1])
	}

	for i, line := range lines {
		got, err := ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", line, err)
		}
		want := recs[i]
		if got.Timestamp != want.Timestamp {
			t.Errorf("timestamp = %q, want %q", got.Timestamp, want.Timestamp)
		}
		if got.Original != want.Original {
			t.Errorf("original = %q, want %q", got.Original, want.Original)
		}
		if got.Translated != flatten(want.Translated) {
			t.Errorf("translated = %q, want %q", got.Translated, flatten(want.Translated))
		}
	}
}

func TestExportLineIsUnambiguous(t *testing.T) {
	tests := []struct {
		name       string
		rec        Record
		line       string
		original   string
		translated string
	}{
		{
			name:       "arrow in original",
			rec:        Record{Timestamp: "10:00:00", Original: "Desktop audio (A → B)", Translated: "b"},
			line:       "[10:00:00] Desktop audio (A -> B) → b",
			original:   "Desktop audio (A -> B)",
			translated: "b",
		},
		{
			name:       "trailing arrow in original",
			rec:        Record{Timestamp: "10:00:01", Original: "left →", Translated: "right"},
			line:       "[10:00:01] left -> → right",
			original:   "left ->",
			translated: "right",
		},
		{
			name:       "placeholder original",
			rec:        Record{Timestamp: "10:00:02", Original: "N/A", Translated: "text"},
			line:       "[10:00:02] N/A → text",
			original:   "",
			translated: "text",
		},
		{
			name:       "multi-line text",
			rec:        Record{Timestamp: "10:00:03", Original: "Microphone audio", Translated: "one\r\ntwo\nthree"},
			line:       "[10:00:03] Microphone audio → one two three",
			original:   "Microphone audio",
			translated: "one two three",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := FormatLine(tt.rec)
			if line != tt.line {
				t.Fatalf("line = %q, want %q", line, tt.line)
			}
			got, err := ParseLine(line)
			if err != nil {
				t.Fatalf("ParseLine: %v", err)
			}
			if got.Original != tt.original {
				t.Errorf("original = %q, want %q", got.Original, tt.original)
			}
			if got.Translated != tt.translated {
				t.Errorf("translated = %q, want %q", got.Translated, tt.translated)
			}
		})
	}
}

func TestParseLineRejectsGarbage(t *testing.T) {
	for _, line := range []string{"", "no brackets", "[12:00:00] missing arrow"} {
		if _, err := ParseLine(line); err != ErrBadLine {
			t.Errorf("ParseLine(%q) err = %v, want ErrBadLine", line, err)
		}
	}
}

func TestExportFileName(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 15, 0, time.UTC)
	if got, want := ExportFileName(ts), "translation-history-20260314T093015Z.txt"; got != want {
		t.Errorf("got = %q, want %q", got, want)
	}
}

func TestWriteExport(t *testing.T) {
	l := newTestLedger(t)
	l.Append("Microphone audio", "saved")

	path := filepath.Join(t.TempDir(), ExportFileName(time.Now()))
	if err := WriteExport(l, path); err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[09:30:01] Microphone audio → saved" {
		t.Errorf("content = %q", data)
	}
}

func TestClear(t *testing.T) {
	l := newTestLedger(t)
	l.Append("", "a")
	l.Append("", "b")
	l.Clear()

	if l.Len() != 0 {
		t.Errorf("len = %d, want 0", l.Len())
	}
	if _, ok := l.Latest(); ok {
		t.Error("latest after clear")
	}
	if l.ExportText() != "" {
		t.Errorf("export = %q", l.ExportText())
	}

	l.Append("", "c")
	if recs := l.Records(); len(recs) != 1 || recs[0].Translated != "c" {
		t.Errorf("records = %+v", recs)
	}
}

func TestRestoreKeepsNewest(t *testing.T) {
	var recs []Record
	for i := Capacity + 10; i > 0; i-- {
		recs = append(recs, Record{ID: int64(i), Translated: fmt.Sprint(i)})
	}

	l := newTestLedger(t)
	l.Restore(recs)
	if l.Len() != Capacity {
		t.Fatalf("len = %d", l.Len())
	}
	got := l.Records()
	if got[0].ID != Capacity+10 || got[Capacity-1].ID != 11 {
		t.Errorf("range = %d..%d", got[0].ID, got[Capacity-1].ID)
	}

	next := l.Append("", "after restore")
	if next.ID <= Capacity+10 {
		t.Errorf("id = %d, want above restored ids", next.ID)
	}
}

func TestOnAppend(t *testing.T) {
	l := newTestLedger(t)
	var seen []string
	l.OnAppend(func(r Record) { seen = append(seen, r.Translated) })

	l.Append("", "x")
	l.Append("", "y")
	if strings.Join(seen, ",") != "x,y" {
		t.Errorf("seen = %v", seen)
	}
}
