package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"mediaforge/internal/deps"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "binary \"ffmpeg\" not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] binary \"ffmpeg\" not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: false, Detail: "binary \"ffmpeg\" not found"},
		{Name: "FFprobe", Available: false, Optional: true, Detail: "binary \"ffprobe\" not found"},
		{Name: "Other", Available: true, Path: "/usr/bin/other"},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR] binary \"ffmpeg\" not found") {
		t.Fatalf("expected error detail in first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN]") {
		t.Fatalf("expected optional dependency to warn, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[OK] Ready (/usr/bin/other)") {
		t.Fatalf("expected ready detail in third line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing dependencies: FFmpeg") {
		t.Fatalf("expected missing dependencies summary, got %q", lines[3])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestDisplayTitle(t *testing.T) {
	for in, want := range map[string]string{"video": "Video", "sample_rate": "Sample Rate"} {
		if got := displayTitle(in); got != want {
			t.Fatalf("displayTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSectionHeaderAndLongLabels(t *testing.T) {
	header := renderSectionHeader(" Library ", false)
	if header[0] != "== Library ==" || header[1] != strings.Repeat("-", len(header[0])) {
		t.Fatalf("header = %q", header)
	}
	long := strings.Repeat("x", statusLabelWidth+5)
	if got := renderStatusLine(long, statusWarn, "", false); got != statusIndent+long+": [WARN]" {
		t.Fatalf("long label line = %q", got)
	}
}
