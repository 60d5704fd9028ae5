package couponcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for range 500 {
		code, err := New()
		require.NoError(t, err)
		assert.True(t, Valid(code), code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 490)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "BDD-AB12CD", Normalize("  bdd-ab12cd "))
}

func TestValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"BDD-AB12CD", true},
		{"BDD-ab12cd", false},
		{"BDD-AB12C", false},
		{"XYZ-AB12CD", false},
		{"BDD-AB12CD9", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.code))
		})
	}
}
