package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestProgressRedrawsOneLine(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf)

	bar(1, 4)
	out := buf.String()
	if !strings.Contains(out, "1/4") {
		t.Errorf("missing count, got %q", out)
	}
	if !strings.HasPrefix(out, "\r") {
		t.Errorf("frame does not rewind the line: %q", out)
	}
	if strings.Contains(out, "\n") {
		t.Errorf("mid-run frame ended the line: %q", out)
	}
}

func TestProgressEndsLineOnCompletion(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf)

	for i := 1; i <= 3; i++ {
		bar(i, 3)
	}
	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("final frame did not end the line: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("want exactly one newline, got %q", out)
	}
	if !strings.Contains(out, "3/3") {
		t.Errorf("missing final count: %q", out)
	}
}

func TestProgressIgnoresEmptyTotal(t *testing.T) {
	var buf bytes.Buffer
	NewProgress(&buf)(0, 0)
	if buf.Len() != 0 {
		t.Errorf("empty run drew %q", buf.String())
	}
}
