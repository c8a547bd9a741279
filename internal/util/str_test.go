package util

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestChunkLinesKeepsLinesWhole(t *testing.T) {
	lines := make([]string, 100)
	for k := range lines {
		lines[k] = fmt.Sprintf("- player %03d | Lvl 26 | Due $12.00 | ❌ Not paid", k)
	}

	chunks := ChunkLines(lines, 1800)
	if len(chunks) < 2 {
		t.Fatalf("expected the output to be split, got %d chunk(s)", len(chunks))
	}

	var total int
	for _, chunk := range chunks {
		if len(chunk) > 1800 {
			t.Errorf("chunk of %d bytes is over the limit", len(chunk))
		}

		for _, line := range strings.Split(chunk, "\n") {
			if !strings.HasPrefix(line, "- player ") {
				t.Errorf("line broken across chunks: %q", line)
			}
			total++
		}
	}

	if total != len(lines) {
		t.Errorf("expected %d lines overall, got %d", len(lines), total)
	}
}

func TestChunkLinesOversizedLine(t *testing.T) {
	lines := []string{"short", strings.Repeat("x", 50), "short again"}

	chunks := ChunkLines(lines, 10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1] != lines[1] {
		t.Error("oversized line must end up alone in its own chunk")
	}
}

func TestChunkLinesEmpty(t *testing.T) {
	if chunks := ChunkLines(nil, 1800); chunks != nil {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestFormatDuration(t *testing.T) {
	// Quick sanity check, the formatting is purely cosmetic.
	expected := map[string]string{
		"1h20m0s": "1h20m",
		"2h0m0s":  "2h",
		"30s":     "30s",
	}

	for in, out := range expected {
		d, err := time.ParseDuration(in)
		if err != nil {
			t.Fatal(err)
		}

		if actual := FormatDuration(d); actual != out {
			t.Errorf("%s: expected %s got %s", in, out, actual)
		}
	}
}
