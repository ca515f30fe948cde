package utils

import (
	"strings"
	"testing"
)

func TestLineLogReceivesLines(t *testing.T) {
	logger := NewDiscardLogger()
	trace := NewLineLog()
	logger.AddSink(trace)

	logger.Info("Search URL: %s", "https://www.zillow.com/98101/")
	logger.Warn("Zero listings after validation/price filter")

	lines := trace.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "INFO") || !strings.HasSuffix(lines[0], "Search URL: https://www.zillow.com/98101/") {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if strings.Contains(lines[1], "\033[") {
		t.Errorf("sink lines should not carry colour codes: %q", lines[1])
	}
}

func TestLineLogLinesIsCopy(t *testing.T) {
	trace := NewLineLog()
	trace.Append("a")

	lines := trace.Lines()
	lines[0] = "mutated"

	if got := trace.Lines()[0]; got != "a" {
		t.Errorf("Lines should return a copy, got %q", got)
	}
}
