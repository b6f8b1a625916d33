package preproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcess_LineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc", Process("a\r\nb\rc"))
}

func TestProcess_LineContinuation(t *testing.T) {
	assert.Equal(t, "ab", Process("a\\\nb"))
}

func TestProcess_TrailingWhitespace(t *testing.T) {
	assert.Equal(t, "a\nb", Process("a   \nb\t\t"))
}

func TestProcess_ParagraphCollapse(t *testing.T) {
	assert.Equal(t, "a\n\nb", Process("a\n\n\n\n\nb"))
}

func TestProcess_EmDash(t *testing.T) {
	assert.Equal(t, "— a—", Process("-- a--"))
}

func TestProcess_StrikethroughSurvives(t *testing.T) {
	// tight on both sides: left for strikethrough rule to consume
	assert.Equal(t, "--strike--", Process("--strike--"))
}

func TestProcess_Idempotent(t *testing.T) {
	inputs := []string{
		"hello\r\nworld\\\nfoo   \n\n\n\nbar",
		"`quoted' and ``double'' and ,,low''",
		"-- a--",
	}
	for _, in := range inputs {
		once := Process(in)
		twice := Process(once)
		assert.Equal(t, once, twice, "Process must be idempotent for %q", in)
	}
}

func TestProcess_Typography(t *testing.T) {
	assert.Equal(t, "‘hi’", Process("`hi'"))
	assert.Equal(t, "“hi”", Process("``hi''"))
	assert.Equal(t, "„hi”", Process(",,hi''"))
}
