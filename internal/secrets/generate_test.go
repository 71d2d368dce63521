package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHex(t *testing.T) {
	value, err := RandomHex(32)
	require.NoError(t, err)
	assert.Len(t, value, 64)
	for _, r := range value {
		assert.Contains(t, "0123456789abcdef", string(r))
	}

	other, err := RandomHex(32)
	require.NoError(t, err)
	assert.NotEqual(t, value, other)
}

func TestRandomAlnum(t *testing.T) {
	value, err := RandomAlnum(40)
	require.NoError(t, err)
	assert.Len(t, value, 40)
	for _, r := range value {
		assert.True(t, strings.ContainsRune(alnumCharset, r), "unexpected rune %q", r)
	}

	other, err := RandomAlnum(40)
	require.NoError(t, err)
	assert.NotEqual(t, value, other)
}
