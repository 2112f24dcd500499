package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDehyphenatesAndCollapsesWhitespace(t *testing.T) {
	raw := "Насос для перекачки  этиленгли-\nколя,  производительность 1000,5 м3/ч"
	block := Normalize(raw, DefaultUnitTable())

	assert.Contains(t, block.Text, "этиленгликоля")
	assert.Contains(t, block.Text, "1000.5")
	assert.Contains(t, block.Text, "m3/h")
	assert.NotContains(t, block.Text, "  ")
	assert.Equal(t, LangRU, block.Lang)
}

func TestNormalizeDetectsLatinBlock(t *testing.T) {
	block := Normalize("Centrifugal pump, flow rate 1000 m3/h", DefaultUnitTable())
	assert.Equal(t, LangEN, block.Lang)
}

func TestNormalizeExtractsReferences(t *testing.T) {
	block := Normalize("Per ГОСТ 12.2.003-91 and СП 60.13330-2020, see п. 4.5", DefaultUnitTable())
	var families []string
	for _, r := range block.References {
		families = append(families, r.Family)
	}
	assert.Contains(t, families, "ГОСТ")
	assert.Contains(t, families, "СП")
	assert.Contains(t, families, "п.")
}

func TestUnitTablePreservesTemperature(t *testing.T) {
	table := DefaultUnitTable()
	assert.Equal(t, "Temperature 200°C", table.RewriteUnits("Temperature 200°C"))
}

func TestLoadUnitTableMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	require.NoError(t, os.WriteFile(path, []byte("'\\bпси\\b': psi\n"), 0o644))

	table, err := LoadUnitTable(path)
	require.NoError(t, err)
	assert.Equal(t, "психрометр 10 psi", table.RewriteUnits("психрометр 10 пси"))
	assert.Equal(t, "10 mm", table.RewriteUnits("10 мм"))
}
