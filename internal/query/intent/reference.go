package intent

import (
	"regexp"
	"strconv"
)

// DocReference is the structured form of a standard citation extracted
// from a raw query, steering the retriever to a document family
// (spec.md §4.8).
type DocReference struct {
	Family string
	Number string
	Year   int    // 0 when absent
	Clause string // e.g. "4.2" from "п. 4.2"; empty when absent
}

var refExtractPatterns = []struct {
	family string
	re     *regexp.Regexp
}{
	{"ГОСТ", regexp.MustCompile(`(?i)ГОСТ\s*Р?\s*([\d.]+)[-–](\d{2,4})`)},
	{"СП", regexp.MustCompile(`(?i)СП\s*([\d.]+)[-–.](\d{2,4})`)},
	{"СНиП", regexp.MustCompile(`(?i)СНиП\s*([\d.]+)[-–](\d{2,4})`)},
	{"ФНП", regexp.MustCompile(`(?i)ФНП[-\s]*(\d+)[-–](\d{2,4})`)},
}

var clausePattern = regexp.MustCompile(`(?i)п\.\s?(\d+(?:\.\d+)*)`)

// ExtractReferences scans a raw query for standard-citation patterns and
// returns the structured references found, each paired with a clause
// number when "п. N.M" appears anywhere in the same query.
func ExtractReferences(rawQuery string) []DocReference {
	var clause string
	if m := clausePattern.FindStringSubmatch(rawQuery); m != nil {
		clause = m[1]
	}

	var refs []DocReference
	for _, p := range refExtractPatterns {
		for _, m := range p.re.FindAllStringSubmatch(rawQuery, -1) {
			year := normalizeYear(m[2])
			refs = append(refs, DocReference{
				Family: p.family,
				Number: m[1],
				Year:   year,
				Clause: clause,
			})
		}
	}
	return refs
}

func normalizeYear(raw string) int {
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	if y < 100 {
		if y < 50 {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}
