package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinterStats(t *testing.T) {
	tests := []struct {
		name             string
		dangling         int
		want, wantAbsent string
	}{
		{"clean graph", 0, "3 nodes · 2 edges", "dangling"},
		{"dangling edges", 1, "1 dangling", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newPrinter(&buf).stats(3, 2, tt.dangling)

			got := buf.String()
			if !strings.Contains(got, tt.want) {
				t.Errorf("stats = %q, want it to contain %q", got, tt.want)
			}
			if tt.wantAbsent != "" && strings.Contains(got, tt.wantAbsent) {
				t.Errorf("stats = %q, should not contain %q", got, tt.wantAbsent)
			}
		})
	}
}

func TestPrinterNextStep(t *testing.T) {
	var buf bytes.Buffer
	newPrinter(&buf).nextStep("Render", appName, "render", "flow.graph.json")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "" {
		t.Fatalf("nextStep output = %q, want a blank line then the hint", buf.String())
	}
	if !strings.Contains(lines[1], "flowcanvas render flow.graph.json") {
		t.Errorf("hint = %q", lines[1])
	}
}

func TestPrinterStatusGlyphs(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf)
	p.success("wrote %d files", 2)
	p.failure("render failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], statusSuccess.glyph) || !strings.HasSuffix(lines[0], " wrote 2 files") {
		t.Errorf("success line = %q", lines[0])
	}
	if !strings.Contains(lines[1], statusError.glyph) || !strings.HasSuffix(lines[1], " render failed") {
		t.Errorf("failure line = %q", lines[1])
	}
}
