package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" info ":  slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"bogus":   slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	WithComponent(base, "feed").Info("fetched")
	if !strings.Contains(buf.String(), "component=feed") {
		t.Fatalf("expected component attribute, got %q", buf.String())
	}

	if WithComponent(nil, "feed") == nil {
		t.Fatal("expected a usable logger for nil input")
	}
}
