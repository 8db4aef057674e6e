package rewards_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gm-rewards/rewards"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestSqrt(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0", "0"},
		{"-4", "0"},
		{"4000000000000000000", "2000000000000000000"},
		{"1000000000000000000", "1000000000000000000"},
		{"1000", "31622776601"},
		{"300", "17320508075"},
		{"1", "1000000000"},
	}
	for _, c := range cases {
		got := rewards.Sqrt(dec(t, c.in))
		require.True(t, got.Equal(dec(t, c.want)), "Sqrt(%s) = %s, want %s", c.in, got, c.want)
	}
}

func TestMulDivTruncates(t *testing.T) {
	got := rewards.MulDiv(decimal.NewFromInt(100), decimal.NewFromInt(1), decimal.NewFromInt(3))
	require.True(t, got.Equal(decimal.NewFromInt(33)))

	got = rewards.MulDiv(decimal.NewFromInt(100), decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.True(t, got.Equal(decimal.NewFromInt(66)))

	// large operands keep full precision
	a := dec(t, "1000000000000000000000000")
	b := dec(t, "31622776601")
	c := dec(t, "48943284676")
	require.Equal(t, "646110632139625380953457", rewards.MulDiv(a, b, c).String())
}
