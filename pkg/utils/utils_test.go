package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\tb   c "))
	assert.Equal(t, "", CollapseWhitespace(" \n\t "))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", TruncateRunes("abc", 5))
	assert.Equal(t, "ab…", TruncateRunes("abcdef", 2))
	assert.Equal(t, "日本…", TruncateRunes("日本語です", 2))
}

func TestHardCutRunes(t *testing.T) {
	assert.Equal(t, "abc", HardCutRunes("abcdef", 3))
	assert.Equal(t, "abc", HardCutRunes("abc", 10))
	assert.Equal(t, "日本語", HardCutRunes("日本語です", 3))
}
