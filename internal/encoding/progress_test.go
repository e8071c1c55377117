package encoding

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"transcode/internal/engine"
)

func progressLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestProgressLoggerSamplesTwoPasses(t *testing.T) {
	var buf bytes.Buffer
	report := progressLogger(slog.New(slog.NewJSONHandler(&buf, nil)), 100)

	for _, pass := range []string{"pass 1", "pass 2"} {
		for _, second := range []int{1, 5, 12, 13, 55, 99} {
			report(engine.Progress{Label: pass, OutTime: time.Duration(second) * time.Second, Speed: 2})
		}
		report(engine.Progress{Label: pass, OutTime: 100 * time.Second, Done: true})
	}

	lines := progressLines(t, &buf)
	want := []struct {
		pass    string
		percent float64
	}{
		{"pass 1", 1}, {"pass 1", 12}, {"pass 1", 55}, {"pass 1", 99}, {"pass 1", 100},
		{"pass 2", 1}, {"pass 2", 12}, {"pass 2", 55}, {"pass 2", 99}, {"pass 2", 100},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i, w := range want {
		if lines[i]["pass"] != w.pass || lines[i]["percent"] != w.percent {
			t.Fatalf("line %d = %v, want %s at %.0f%%", i, lines[i], w.pass, w.percent)
		}
	}
}

func TestProgressLoggerUnknownDuration(t *testing.T) {
	var buf bytes.Buffer
	report := progressLogger(slog.New(slog.NewJSONHandler(&buf, nil)), 0)
	for second := range 5 {
		report(engine.Progress{Label: "encode", OutTime: time.Duration(second) * time.Second})
	}

	lines := progressLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if _, ok := lines[0]["percent"]; ok {
		t.Fatalf("unexpected percent without a duration: %v", lines[0])
	}
}
