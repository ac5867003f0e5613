package slog_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Hubmakerlabs/cyan/pkg/slog"
)

func TestLevels(t *testing.T) {
	prev := slog.GetLogLevel()
	defer slog.SetLogLevel(prev)
	buf := new(bytes.Buffer)
	log, chk := slog.New(buf)
	slog.SetLogLevel(slog.Trace)
	log.T.Ln("testing log level", slog.LevelSpecs[slog.Trace].Name)
	log.D.Ln("testing log level", slog.LevelSpecs[slog.Debug].Name)
	log.I.F("testing log level %s", slog.LevelSpecs[slog.Info].Name)
	log.I.S("`backtick wrapped string`", t.Name())
	if n := strings.Count(buf.String(), "\n"); n < 4 {
		t.Fatalf("expected at least 4 lines, got %d:\n%s", n, buf.String())
	}
	if !chk.E(errors.New("dummy error as error")) {
		t.Fatal("chk should report a non-nil error")
	}
	if chk.E(nil) {
		t.Fatal("chk should not report a nil error")
	}
	if err := log.I.Err("format string %d '%s'", 5, "testing"); err == nil ||
		err.Error() != "format string 5 'testing'" {
		t.Fatalf("unexpected error from Err: %v", err)
	}
}

func TestLevelFilter(t *testing.T) {
	prev := slog.GetLogLevel()
	defer slog.SetLogLevel(prev)
	buf := new(bytes.Buffer)
	log, chk := slog.New(buf)
	slog.SetLogLevel(slog.Warn)
	log.D.Ln("hidden")
	log.I.Ln("hidden")
	log.T.C(func() string {
		t.Fatal("closure evaluated above the log level")
		return ""
	})
	// the check still reports the error even when the line is suppressed
	if !chk.D(errors.New("hidden")) {
		t.Fatal("chk.D should return true on error")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	log.E.Ln("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestLevelFromString(t *testing.T) {
	for in, want := range map[string]int{
		"debug": slog.Debug,
		"TRACE": slog.Trace,
		"off":   slog.Off,
		"1":     slog.Debug,
		"":      slog.Info,
		"bogus": slog.Info,
	} {
		if got := slog.LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %d, want %d", in, got, want)
		}
	}
}
