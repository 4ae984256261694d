package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("  "))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b ,"))
}

func TestRandomUpperAlnum(t *testing.T) {
	s, err := RandomUpperAlnum(10)
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{10}$`, s)
}
