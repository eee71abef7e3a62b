package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reassemble(deltas []WordDelta, op Op) string {
	var b strings.Builder
	for _, d := range deltas {
		if d.Op == Equal || d.Op == op {
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func TestWordsReassemble(t *testing.T) {
	a := "Mara leaves the village at dawn."
	b := "Mara quietly leaves the town at dawn."
	deltas := Words(a, b)
	assert.Equal(t, a, reassemble(deltas, Delete))
	assert.Equal(t, b, reassemble(deltas, Insert))
}

func TestWordsIdentical(t *testing.T) {
	for _, d := range Words("same text", "same text") {
		assert.Equal(t, Equal, d.Op)
	}
}

func TestWordsEmptySides(t *testing.T) {
	deltas := Words("", "new text")
	assert.Equal(t, "new text", reassemble(deltas, Insert))
	assert.Equal(t, "", reassemble(deltas, Delete))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a b", []string{"a", " ", "b"}},
		{"don't stop!", []string{"don't", " ", "stop", "!"}},
		{"one-two, three", []string{"one-two", ",", " ", "three"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenize(tt.in), tt.in)
	}
}
