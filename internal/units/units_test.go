package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCanonicalUnits(t *testing.T) {
	cases := []struct {
		raw      float64
		unit     string
		wantUnit string
		wantVal  float64
	}{
		{1000, "m3/h", "m3/h", 1000},
		{1000, "м3/ч", "m3/h", 1000},
		{50, "m", "m", 50},
		{200, "mm", "mm", 200},
		{25, "bar", "bar", 25},
		{2.5, "MPa", "bar", 25},
		{200, "°C", "C", 200},
		{5000, "kW", "kW", 5000},
		{5, "MW", "kW", 5000},
	}
	for _, tc := range cases {
		t.Run(tc.unit, func(t *testing.T) {
			fact := Normalize(decimal.NewFromFloat(tc.raw), tc.unit)
			assert.Equal(t, tc.wantUnit, string(fact.Unit))
			assert.True(t, fact.Value.Equal(decimal.NewFromFloat(tc.wantVal)), "got %s want %v", fact.Value, tc.wantVal)
		})
	}
}

func TestParseDecimalCommaAndDot(t *testing.T) {
	v1, err := ParseDecimal("1000,5")
	require.NoError(t, err)
	assert.True(t, v1.Equal(decimal.NewFromFloat(1000.5)))

	v2, err := ParseDecimal("1000.5")
	require.NoError(t, err)
	assert.True(t, v2.Equal(decimal.NewFromFloat(1000.5)))
}

func TestWithinToleranceDefaultTau(t *testing.T) {
	tau := decimal.NewFromFloat(0.20)
	target := decimal.NewFromInt(1000)
	assert.True(t, WithinTolerance(target, decimal.NewFromInt(1150), tau))
	assert.False(t, WithinTolerance(target, decimal.NewFromInt(1300), tau))
}

func TestParamSimilarityDecaysToZeroAtTau(t *testing.T) {
	tau := decimal.NewFromFloat(0.20)
	target := decimal.NewFromInt(1000)

	exact := ParamSimilarity(target, target, tau)
	assert.True(t, exact.Equal(decimal.NewFromInt(1)))

	atTau := ParamSimilarity(target, decimal.NewFromInt(1200), tau)
	assert.True(t, atTau.IsZero())

	beyond := ParamSimilarity(target, decimal.NewFromInt(1500), tau)
	assert.True(t, beyond.IsZero())

	mid := ParamSimilarity(target, decimal.NewFromInt(1100), tau)
	assert.True(t, mid.GreaterThan(decimal.Zero))
	assert.True(t, mid.LessThan(decimal.NewFromInt(1)))
}
