package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		expectedLen int
	}{
		{"128-bit token", TokenSize128, 22},
		{"192-bit token", TokenSize192, 32},
		{"256-bit token", TokenSize256, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.expectedLen)

			// Must decode back to the requested number of bytes
			raw, err := base64.RawURLEncoding.DecodeString(token)
			require.NoError(t, err)
			require.Len(t, raw, tt.size)
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	_, err := GenerateToken(0)
	require.Error(t, err)

	_, err = GenerateToken(-1)
	require.Error(t, err)
}

func TestGenerateToken_Uniqueness(t *testing.T) {
	const count = 100
	seen := make(map[string]bool, count)

	for range count {
		token, err := GenerateToken(TokenSize192)
		require.NoError(t, err)
		require.NotContains(t, seen, token, "duplicate token generated")
		seen[token] = true
	}
}

func TestMustGenerateToken(t *testing.T) {
	token := MustGenerateToken(TokenSize256)
	require.Len(t, token, 43)

	require.Panics(t, func() { MustGenerateToken(-1) })
}

func TestGenerateNumericCode(t *testing.T) {
	for range 20 {
		code, err := GenerateNumericCode(6)
		require.NoError(t, err)
		require.Len(t, code, 6)

		for _, c := range code {
			require.True(t, c >= '0' && c <= '9',
				"code should only contain digits, got %q", code)
		}
	}
}

func TestGenerateNumericCode_InvalidLength(t *testing.T) {
	_, err := GenerateNumericCode(0)
	require.Error(t, err)

	_, err = GenerateNumericCode(-5)
	require.Error(t, err)
}
