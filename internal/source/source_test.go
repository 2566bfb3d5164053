package source

import (
	"bytes"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	got := Normalize([]byte("fn main() {\r\n}\r\n"))
	want := []byte("fn main() {\n}\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalizeKeepsLoneCR(t *testing.T) {
	in := []byte("a\rb\n")
	if got := Normalize(in); !bytes.Equal(got, in) {
		t.Fatalf("lone \\r must survive: got %q", got)
	}
}

func TestNormalizeStripsBOM(t *testing.T) {
	got := Normalize([]byte{0xEF, 0xBB, 0xBF, 'u', 's', 'e'})
	if !bytes.Equal(got, []byte("use")) {
		t.Fatalf("BOM must be stripped: got %q", got)
	}
}

func TestNormalizeUntouchedContentIsShared(t *testing.T) {
	in := []byte("plain\ntext\n")
	if got := Normalize(in); &got[0] != &in[0] {
		t.Fatal("content without BOM or CRLF must not be copied")
	}
}

func TestLineStart(t *testing.T) {
	idx := NewLineIndex([]byte("one\ntwo\nthree"))

	tests := []struct {
		line int
		want uint32
	}{
		{1, 0},
		{2, 4},
		{3, 8},
		{4, 13}, // past the end: content length
		{0, 0},
	}
	for _, tc := range tests {
		if got := idx.LineStart(tc.line); got != tc.want {
			t.Errorf("LineStart(%d) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestNumLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"one", 1},
		{"one\n", 1},
		{"one\ntwo", 2},
		{"one\ntwo\n", 2},
	}
	for _, tc := range tests {
		if got := NewLineIndex([]byte(tc.content)).NumLines(); got != tc.want {
			t.Errorf("NumLines(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}
