// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textproc

import (
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapses spaces", "a    b\t\tc", "a b c"},
		{"strips unsafe characters", "résumé © draft™", "rsum  draft"},
		{"keeps punctuation", `He said: "wait, really?!" (yes) - ok;`, `He said: "wait, really?!" (yes) - ok;`},
		{"trims ends", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunkWindows(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := Chunk(text, 1000, 200)

	wantRanges := [][2]int{{0, 1000}, {800, 1800}, {1600, 2500}}
	if len(chunks) != len(wantRanges) {
		t.Fatalf("len(chunks) = %d, want %d", len(chunks), len(wantRanges))
	}
	for i, want := range wantRanges {
		if chunks[i].StartOffset != want[0] || chunks[i].EndOffset != want[1] {
			t.Errorf("chunk %d range = [%d,%d), want [%d,%d)",
				i, chunks[i].StartOffset, chunks[i].EndOffset, want[0], want[1])
		}
	}
}

func TestChunkSkipsBlankWindows(t *testing.T) {
	// A tail window that trims to nothing must not be emitted.
	text := strings.Repeat("a", 8) + strings.Repeat(" ", 8)
	chunks := Chunk(text, 10, 2)
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			t.Errorf("emitted blank chunk at [%d,%d)", c.StartOffset, c.EndOffset)
		}
	}
}

func TestChunkTerminates(t *testing.T) {
	// Inputs shorter than the overlap used to risk a stuck window; the
	// start >= len-overlap guard must end the loop on the first pass.
	for _, n := range []int{0, 1, 199, 200, 201, 999, 1000, 1001} {
		text := strings.Repeat("x", n)
		chunks := Chunk(text, 1000, 200)
		for _, c := range chunks {
			if c.Text == "" {
				t.Errorf("n=%d: empty chunk emitted", n)
			}
		}
		if n > 0 && n <= 1000 && len(chunks) != 1 {
			t.Errorf("n=%d: len(chunks) = %d, want 1", n, len(chunks))
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Deep Learning for X", "deep learning for x"},
		{"deep learning for x!!!", "deep learning for x"},
		{"  Attention   Is All: You Need? ", "attention is all you need"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "deep learning for x", "deep learning for x", 1.0},
		{"disjoint", "alpha beta", "gamma delta", 0.0},
		{"half overlap", "a b c d", "c d e f", 1.0 / 3.0},
		{"both empty", "", "", 1.0},
		{"one empty", "a", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("JaccardSimilarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one  two\nthree"); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(\"\") = %d, want 0", got)
	}
}
