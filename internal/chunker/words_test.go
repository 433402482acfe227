package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{name: "empty", text: "", max: 10, want: []string{""}},
		{name: "fits", text: "hello  world", max: 20, want: []string{"hello  world"}},
		{name: "greedy", text: "aa bb cc dd ee", max: 5, want: []string{"aa bb", "cc dd", "ee"}},
		{name: "oversized word", text: "a verylongword b", max: 5, want: []string{"a", "verylongword", "b"}},
		{name: "collapses whitespace", text: "one\ntwo\n\nthree four", max: 9, want: []string{"one two", "three", "four"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitWords(tt.text, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitWords(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestSplitWords_RoundTrip(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 200)
	chunks := SplitWords(text, 100)
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk[%d] length %d exceeds 100", i, len(c))
		}
	}
	if got := JoinWords(chunks); got != strings.TrimSpace(text) {
		t.Error("JoinWords(SplitWords()) does not reconstruct the input")
	}
}
