package normalize

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnitTable rewrites raw unit spellings found in text to their canonical
// form (spec.md §4.3's "unit table"). It is data, loaded from config at
// startup (see internal/config), not a hard-coded switch, so a deployment
// can extend it without a rebuild.
type UnitTable struct {
	entries []unitEntry
}

type unitEntry struct {
	pattern   *regexp.Regexp
	canonical string
	// bounded is true when pattern was compiled from a `\bX\b`-style raw
	// pattern and rewritten into a capturing Unicode-safe boundary (see
	// compileEntry); RewriteUnits must then splice the captured boundary
	// runes back in around canonical instead of replacing the whole match.
	bounded bool
}

// compileEntry compiles a raw pattern into a unitEntry. Go's regexp \b is
// ASCII-only ("word characters are [A-Za-z0-9_]", regexp/syntax), so it never
// fires around Cyrillic text: neither side of a Cyrillic rune counts as a
// word character, so \b can't find the boundary it's meant to require. A
// raw pattern of the conventional `\bX\b` form is rewritten here into an
// explicit Unicode-letter/digit boundary class that works for any script.
func compileEntry(pattern, canonical string) unitEntry {
	if strings.HasPrefix(pattern, `\b`) && strings.HasSuffix(pattern, `\b`) {
		inner := strings.TrimSuffix(strings.TrimPrefix(pattern, `\b`), `\b`)
		expr := `(^|[^\p{L}\p{N}_])(?:` + inner + `)($|[^\p{L}\p{N}_])`
		return unitEntry{pattern: regexp.MustCompile(expr), canonical: canonical, bounded: true}
	}
	return unitEntry{pattern: regexp.MustCompile(pattern), canonical: canonical}
}

// DefaultUnitTable is the built-in seed table covering the units spec.md
// names explicitly: mm, m (bare metres), m3/h, °C (preserved), bar, kW.
func DefaultUnitTable() UnitTable {
	return NewUnitTable(map[string]string{
		`\bмм\b`:   "mm",
		`\bmm\b`:   "mm",
		`\bм3/ч\b`: "m3/h",
		`\bм³/ч\b`: "m3/h",
		`\bm3/h\b`: "m3/h",
		`\bm³/h\b`: "m3/h",
		`\bм\b`:    "m",
		`\bбар\b`:  "bar",
		`\bbar\b`:  "bar",
		`\bкВт\b`:  "kW",
		`\bkW\b`:   "kW",
		`°C`:       "°C",
	})
}

// NewUnitTable compiles a raw-pattern → canonical-form map into a UnitTable.
// Patterns are regexps so a single canonical form can absorb multiple
// spellings (Cyrillic/Latin, with/without superscript).
func NewUnitTable(raw map[string]string) UnitTable {
	t := UnitTable{entries: make([]unitEntry, 0, len(raw))}
	for pattern, canonical := range raw {
		t.entries = append(t.entries, compileEntry(pattern, canonical))
	}
	return t
}

// LoadUnitTable reads a raw-pattern -> canonical-form map from a YAML file
// at path and merges it over DefaultUnitTable, so a deployment file only
// needs to list additions to the built-in seed table.
func LoadUnitTable(path string) (UnitTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return UnitTable{}, err
	}
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return UnitTable{}, err
	}
	table := DefaultUnitTable()
	for pattern, canonical := range raw {
		table.entries = append(table.entries, compileEntry(pattern, canonical))
	}
	return table, nil
}

// RewriteUnits replaces every recognised unit spelling in text with its
// canonical form. Unknown units are left untouched as plain text — they are
// simply never picked up into the numeric-facts map downstream.
func (t UnitTable) RewriteUnits(text string) string {
	for _, e := range t.entries {
		repl := e.canonical
		if e.bounded {
			repl = "${1}" + e.canonical + "${2}"
		}
		text = e.pattern.ReplaceAllString(text, repl)
	}
	return text
}
