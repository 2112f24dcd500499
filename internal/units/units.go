// Package units normalises the raw numeric/unit pairs the normaliser and
// chunker extract from source text into the canonical units analog search
// compares against (spec.md §4.3, §4.12).
package units

import (
	"strings"

	"github.com/shopspring/decimal"

	"aedocs/internal/model"
)

// Canonical unit symbols. Analog search and NumericFact storage never use
// anything outside this set.
const (
	FlowM3H       model.NumericUnit = "m3/h"
	LengthM       model.NumericUnit = "m"
	LengthMM      model.NumericUnit = "mm"
	PressureBar   model.NumericUnit = "bar"
	TempC         model.NumericUnit = "C"
	PowerKW       model.NumericUnit = "kW"
	Dimensionless model.NumericUnit = ""
)

// conversion is a linear factor into the canonical unit for its dimension.
type conversion struct {
	canonical model.NumericUnit
	factor    decimal.Decimal // multiply raw value by this to reach canonical
}

var aliasTable = map[string]conversion{
	"m3/h":  {FlowM3H, decimal.NewFromInt(1)},
	"м3/ч":  {FlowM3H, decimal.NewFromInt(1)},
	"m³/h":  {FlowM3H, decimal.NewFromInt(1)},
	"м³/ч":  {FlowM3H, decimal.NewFromInt(1)},

	"m":  {LengthM, decimal.NewFromInt(1)},
	"м":  {LengthM, decimal.NewFromInt(1)},
	"mm": {LengthMM, decimal.NewFromInt(1)},
	"мм": {LengthMM, decimal.NewFromInt(1)},

	"bar":  {PressureBar, decimal.NewFromInt(1)},
	"бар":  {PressureBar, decimal.NewFromInt(1)},
	"mpa":  {PressureBar, decimal.NewFromInt(10)},
	"kpa":  {PressureBar, decimal.NewFromFloat(0.01)},

	"c":  {TempC, decimal.NewFromInt(1)},
	"°c": {TempC, decimal.NewFromInt(1)},
	"℃":  {TempC, decimal.NewFromInt(1)},

	"kw": {PowerKW, decimal.NewFromInt(1)},
	"квт": {PowerKW, decimal.NewFromInt(1)},
	"w":  {PowerKW, decimal.NewFromFloat(0.001)},
	"mw": {PowerKW, decimal.NewFromInt(1000)},

	"": {Dimensionless, decimal.NewFromInt(1)},
}

// Normalize converts a raw (value, unit) pair as extracted from source text
// into a NumericFact expressed in the canonical unit for its dimension. An
// unrecognised unit is passed through unconverted with its lower-cased,
// trimmed symbol, so it still participates in exact-unit equality checks
// even though it cannot be compared cross-unit.
func Normalize(raw decimal.Decimal, unit string) model.NumericFact {
	key := strings.ToLower(strings.TrimSpace(unit))
	conv, ok := aliasTable[key]
	if !ok {
		return model.NumericFact{Value: raw, Unit: model.NumericUnit(key)}
	}
	return model.NumericFact{Value: raw.Mul(conv.factor), Unit: conv.canonical}
}

// ParseDecimal parses a numeral using either a dot or a comma as the decimal
// separator, the way source documents mix both (spec.md §4.3 decimal-
// separator normalisation). Thousands separators (spaces, thin spaces) are
// stripped before parsing.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	// A comma is a decimal separator only when it isn't accompanied by a
	// dot already playing that role (e.g. "1,234.5" keeps the comma as a
	// thousands separator and is stripped above in the general case; here
	// we only see one separator kind at a time in practice).
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return decimal.NewFromString(s)
}

// WithinTolerance reports whether candidate is within the relative tolerance
// tau of target, i.e. |candidate-target|/target <= tau (spec.md §4.12,
// default tau=0.20). Units must already match; callers compare NumericFacts
// of the same canonical Unit only.
func WithinTolerance(target, candidate, tau decimal.Decimal) bool {
	if target.IsZero() {
		return candidate.IsZero()
	}
	diff := candidate.Sub(target).Abs()
	rel := diff.Div(target.Abs())
	return rel.LessThanOrEqual(tau)
}

// ParamSimilarity scores how close candidate is to target on a 0..1 scale,
// 1.0 at exact match decaying linearly to 0 at tau (and clamped at 0 beyond
// tau). This is the per-parameter term summed into analog search's
// param_sim (spec.md §4.12).
func ParamSimilarity(target, candidate, tau decimal.Decimal) decimal.Decimal {
	if target.IsZero() {
		if candidate.IsZero() {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	}
	diff := candidate.Sub(target).Abs()
	rel := diff.Div(target.Abs())
	if rel.GreaterThan(tau) {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	return one.Sub(rel.Div(tau))
}
