package ratio

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleOfThree(t *testing.T) {
	tests := []struct {
		name              string
		mult1, mult2, div float64
		want              float64
	}{
		{"whole", 3, 4, 2, 6},
		{"zero multiplier", 5, 0, 10, 0},
		{"fraction", 1, 1, 3, 1.0 / 3},
		{"negative", -2, 5, 4, -2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RuleOfThree(tt.mult1, tt.mult2, tt.div)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRuleOfThree_DivisionByZero(t *testing.T) {
	got, err := RuleOfThree(1, 1, 0)
	assert.True(t, errors.Is(err, ErrDivisionByZero))
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsInf(got, 0))

	_, err = RuleOfThree(1, 1, math.Copysign(0, -1))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestRuleOfThree_Pure(t *testing.T) {
	first, err := RuleOfThree(7, 3, 9)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := RuleOfThree(7, 3, 9)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestParseArgs(t *testing.T) {
	a, b, c, err := ParseArgs([]string{"3", " 4.5 ", "-2"})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4.5, -2}, []float64{a, b, c})

	_, _, _, err = ParseArgs([]string{"1", "2"})
	assert.ErrorContains(t, err, "want 3 numbers")

	_, _, _, err = ParseArgs([]string{"1", "x", "2"})
	assert.ErrorContains(t, err, "argument 2")
	assert.ErrorIs(t, err, strconv.ErrSyntax)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "6.0", Format(6))
	assert.Equal(t, "0.0", Format(0))
	assert.Equal(t, "2.5", Format(2.5))
	assert.Equal(t, "-2.5", Format(-2.5))
}
