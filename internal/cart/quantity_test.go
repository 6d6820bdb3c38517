package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	valid := []struct {
		in   any
		want int
	}{
		{in: 1, want: 1},
		{in: int64(7), want: 7},
		{in: float64(3), want: 3},
		{in: json.Number("12"), want: 12},
		{in: "4", want: 4},
		{in: " 5 ", want: 5},
	}
	for _, tc := range valid {
		got, err := ParseQuantity(tc.in)
		require.NoError(t, err, "input %#v", tc.in)
		assert.Equal(t, tc.want, got, "input %#v", tc.in)
	}

	invalid := []any{
		nil,
		0,
		-3,
		float64(0),
		1.5,
		json.Number("2.5"),
		json.Number("1e2"),
		"abc",
		"",
		"0",
		"-1",
		"99999999999",
		true,
		[]any{1},
	}
	for _, in := range invalid {
		_, err := ParseQuantity(in)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "input %#v", in)
	}
}
