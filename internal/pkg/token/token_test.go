package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinkToken_LengthAndUniqueness(t *testing.T) {
	a, err := NewLinkToken()
	require.NoError(t, err)
	b, err := NewLinkToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestNewOTPCode_DigitsOnly(t *testing.T) {
	code, err := NewOTPCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "non-digit rune %q", r)
	}
}

func TestNewOTPCode_RespectsLength(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		code, err := NewOTPCode(n)
		require.NoError(t, err)
		assert.Len(t, code, n)
	}
}
