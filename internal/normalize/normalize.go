// Package normalize implements C3: whitespace/dehyphenation cleanup, unit
// and decimal-separator rewrite, block-level language detection, and
// standard-citation reference extraction, applied to every extracted block
// before chunking.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Lang is a detected block language tag.
type Lang string

const (
	LangRU Lang = "ru"
	LangEN Lang = "en"
)

// Reference is a structured standard citation found in a block.
type Reference struct {
	Family string // "ГОСТ", "СП", "СНиП", "ФНП", "ПУЭ", "п.", "раздел"
	Raw    string
}

// Block is one normalised text unit ready for chunking.
type Block struct {
	Text       string
	Lang       Lang
	References []Reference
}

var hyphenBreak = regexp.MustCompile(`(\p{L})-\n(\p{L})`)
var whitespaceRun = regexp.MustCompile(`[ \t]+`)
var blankLineRun = regexp.MustCompile(`\n{3,}`)
var decimalComma = regexp.MustCompile(`(\d),(\d)`)

// referencePatterns match the standard citation families spec.md §4.3
// names, compiled once at package init like the teacher's package-level
// regexp vars.
var referencePatterns = []struct {
	family string
	re     *regexp.Regexp
}{
	{"ГОСТ", regexp.MustCompile(`ГОСТ\s+[\wР.]+[-–]\d{2,4}`)},
	{"СП", regexp.MustCompile(`СП\s+\d+(\.\d+)*[-–.]\d{2,4}`)},
	{"СНиП", regexp.MustCompile(`СНиП\s+[\d.]+[-–]\d{2,4}`)},
	{"ФНП", regexp.MustCompile(`ФНП[-\s]\d+[-–]\d{2,4}`)},
	{"ПУЭ", regexp.MustCompile(`ПУЭ\s+\d+(\.\d+)?`)},
	{"п.", regexp.MustCompile(`п\.\s?\d+(\.\d+)*`)},
	{"раздел", regexp.MustCompile(`(?i)раздел\s+\d+`)},
}

// Normalize applies whitespace collapse, dehyphenation, unit/decimal
// rewrite, language detection and reference extraction to raw, returning
// the normalised Block.
func Normalize(raw string, table UnitTable) Block {
	text := norm.NFC.String(raw)
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = decimalComma.ReplaceAllString(text, "$1.$2")
	text = table.RewriteUnits(text)
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	return Block{
		Text:       text,
		Lang:       detectLang(text),
		References: extractReferences(text),
	}
}

// detectLang tags a block ru/en by Cyrillic vs Latin letter ratio; mixed
// blocks are tagged with the dominant script.
func detectLang(text string) Lang {
	var cyrillic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if cyrillic >= latin {
		return LangRU
	}
	return LangEN
}

func extractReferences(text string) []Reference {
	var refs []Reference
	for _, p := range referencePatterns {
		for _, match := range p.re.FindAllString(text, -1) {
			refs = append(refs, Reference{Family: p.family, Raw: match})
		}
	}
	return refs
}
