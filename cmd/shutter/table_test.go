package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"ID", "URL", "Status"},
		[][]string{{"1", "https://example.com/a", "queued"}, {"2"}},
		0,
	)
	if !strings.Contains(out, "https://example.com/a") {
		t.Fatalf("expected row content in table, got %q", out)
	}
	lines := strings.Split(out, "\n")
	width := len(lines[0])
	for _, line := range lines {
		if len(line) != width {
			t.Fatalf("short row broke table shape:\n%s", out)
		}
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRenderCountTableAlignsCounts(t *testing.T) {
	out := renderCountTable("Status", "Count", [][]string{
		{"queued", "7"},
		{"failed", "12"},
	})
	if !strings.Contains(out, "Status") || !strings.Contains(out, "12") {
		t.Fatalf("unexpected count table: %q", out)
	}
	var sevenLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "queued") {
			sevenLine = line
		}
	}
	if sevenLine == "" {
		t.Fatalf("missing queued row: %q", out)
	}
	if !strings.Contains(sevenLine, " 7 ") {
		t.Fatalf("expected right-aligned single digit count, got %q", sevenLine)
	}
}
