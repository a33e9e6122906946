package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinor_RoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"129.6288", 12963},
		{"0.005", 1},
		{"0.004", 0},
		{"-0.005", -1},
		{"10.125", 1013},
		{"10.135", 1014},
		{"2000", 200000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinor(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, int64(20000), Percent(200000, decimal.NewFromInt(10)))
	assert.Equal(t, int64(2333), Percent(12963, decimal.NewFromInt(18)))
	assert.Equal(t, int64(0), Percent(0, decimal.NewFromInt(18)))
}

func TestApplyMarkup(t *testing.T) {
	got := ApplyMarkup(decimal.RequireFromString("123.456"), decimal.NewFromInt(5))
	assert.Equal(t, int64(12963), got)

	assert.Equal(t, int64(10000), ApplyMarkup(decimal.NewFromInt(100), decimal.Zero))
}

func TestRoundToUnit(t *testing.T) {
	assert.Equal(t, int64(13000), RoundToUnit(12963))
	assert.Equal(t, int64(12900), RoundToUnit(12949))
	assert.Equal(t, int64(13000), RoundToUnit(12950))
}

func TestParse(t *testing.T) {
	d, err := Parse(" 18.5 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("18.5")))

	d, err = Parse("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = Parse("abc")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "152.96", Format(15296))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "-1.00", Format(-100))
}
