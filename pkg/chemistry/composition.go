package chemistry

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// compositionToken is the fractional-amount variant of formulaToken: the
// amount may carry a decimal point, e.g. "Pb0.6Zn0.4".
var compositionToken = regexp.MustCompile(`([A-Z][a-z]{0,2})(\d*\.?\d*)`)

// significanceThreshold is the fraction below which a component is dropped
// from a rendered composition.
const significanceThreshold = 1e-5

// ParseComposition parses a composition string with fractional amounts into a
// map of element symbol to amount. An absent amount means 1. Amounts for
// repeated symbols accumulate.
func ParseComposition(formula string) map[string]float64 {
	amounts := make(map[string]float64)
	for _, m := range compositionToken.FindAllStringSubmatch(formula, -1) {
		amt := 1.0
		if m[2] != "" && m[2] != "." {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			amt = v
		}
		amounts[m[1]] += amt
	}
	return amounts
}

// PrettyFormula renders a fraction map canonically: elements sorted
// alphabetically, each followed by its fraction rounded to 3 decimal places
// with no trailing zeros. A sole element with fraction ~1 renders as the bare
// symbol. Fractions below the significance threshold are omitted.
func PrettyFormula(fracs map[string]float64) string {
	significant := make(map[string]float64, len(fracs))
	for el, amt := range fracs {
		if amt > significanceThreshold {
			significant[el] = amt
		}
	}
	if len(significant) == 0 {
		return ""
	}

	symbols := make([]string, 0, len(significant))
	for el := range significant {
		symbols = append(symbols, el)
	}
	sort.Strings(symbols)

	var b strings.Builder
	for _, el := range symbols {
		amt := significant[el]
		if len(significant) == 1 && math.Abs(amt-1.0) < 1e-3 {
			b.WriteString(el)
			continue
		}
		rounded := math.Round(amt*1000) / 1000
		b.WriteString(el)
		b.WriteString(strconv.FormatFloat(rounded, 'f', -1, 64))
	}
	return b.String()
}
