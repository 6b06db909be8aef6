package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"livesub/internal/audio"
	"livesub/internal/capture"
	"livesub/internal/history"
	"livesub/internal/i18n"
	"livesub/internal/tray"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return &App{
		ledger:    history.NewLedger(),
		exportDir: t.TempDir(),
		copyText:  func(string) error { return nil },
	}
}

func TestErrorMessage(t *testing.T) {
	i18n.SetLanguage(i18n.EN)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"no source", capture.ErrNoSourceSelected, i18n.T("error_no_source")},
		{"permission", fmt.Errorf("open: %w", audio.ErrPermissionDenied), i18n.T("error_permission")},
		{"device", audio.ErrDeviceUnavailable, i18n.T("error_device") + ": " + audio.ErrDeviceUnavailable.Error()},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorMessage(tt.err); got != tt.want {
				t.Errorf("errorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrayState(t *testing.T) {
	tests := map[capture.Status]tray.State{
		capture.StatusIdle:        tray.StateIdle,
		capture.StatusStarting:    tray.StateStarting,
		capture.StatusTranslating: tray.StateTranslating,
		capture.StatusError:       tray.StateError,
	}
	for status, want := range tests {
		if got := trayState(status); got != want {
			t.Errorf("trayState(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestExportHistory(t *testing.T) {
	a := newTestApp(t)
	a.ledger.Append("Microphone audio", "Hello world")

	path, err := a.ExportHistory()
	if err != nil {
		t.Fatalf("ExportHistory: %v", err)
	}
	if !strings.HasPrefix(path, a.exportDir) || !strings.HasSuffix(path, ".txt") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "Microphone audio → Hello world") {
		t.Errorf("export = %q", data)
	}
}

func TestCopyLatest(t *testing.T) {
	a := newTestApp(t)
	var copied string
	a.copyText = func(s string) error {
		copied = s
		return nil
	}

	if _, err := a.CopyLatest(); !errors.Is(err, ErrNothingToCopy) {
		t.Fatalf("err = %v, want ErrNothingToCopy", err)
	}

	a.ledger.Append("Microphone audio", "first")
	a.ledger.Append("Microphone audio", "second")
	text, err := a.CopyLatest()
	if err != nil {
		t.Fatalf("CopyLatest: %v", err)
	}
	if text != "second" || copied != "second" {
		t.Errorf("text = %q, copied = %q, want %q", text, copied, "second")
	}

	a.copyText = func(string) error { return errors.New("no clipboard") }
	if _, err := a.CopyLatest(); err == nil {
		t.Error("expected clipboard error")
	}
}

func TestClearHistory(t *testing.T) {
	a := newTestApp(t)
	a.ledger.Append("", "one")
	a.ClearHistory()
	if n := len(a.Search("")); n != 0 {
		t.Errorf("records = %d, want 0", n)
	}
}
