package chunk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"aedocs/internal/normalize"
	"aedocs/internal/units"
)

func TestExtractNumericFactsPumpFixture(t *testing.T) {
	text := "Центробежный насос для перекачки аммиака. Производительность 1000 m3/h, напор 50 m. Материал корпуса — 316L."
	facts := ExtractNumericFacts(text)

	assert.Equal(t, units.Normalize(decimal.NewFromInt(1000), "m3/h"), facts["flow_rate"])
	assert.Equal(t, units.Normalize(decimal.NewFromInt(50), "m"), facts["head"])
	_, hasPressure := facts["pressure"]
	assert.False(t, hasPressure)
}

func TestExtractNumericFactsFromRawCyrillicUnits(t *testing.T) {
	raw := "Центробежный насос для перекачки аммиака. Производительность 1000 м3/ч, напор 50 м."
	block := normalize.Normalize(raw, normalize.DefaultUnitTable())

	facts := ExtractNumericFacts(block.Text)

	assert.Equal(t, units.Normalize(decimal.NewFromInt(1000), "m3/h"), facts["flow_rate"])
	assert.Equal(t, units.Normalize(decimal.NewFromInt(50), "m"), facts["head"])
}

func TestExtractNumericFactsDropsUnmatchedTerm(t *testing.T) {
	facts := ExtractNumericFacts("Давление не указано, расход неизвестен.")
	assert.Empty(t, facts)
}
