// Package chemistry provides parsing and rendering of chemical formula
// strings: integer element counts for stoichiometric formulas and
// fractional amounts for normalized compositions.
package chemistry

import (
	"regexp"
	"strconv"
)

// formulaToken matches one element symbol (an uppercase letter followed by up
// to two lowercase letters) with an optional decimal count. Substrings that do
// not match are skipped, so parenthesized multiplier groups like "(SO4)3" are
// NOT expanded: the parentheses and the trailing multiplier are dropped.
// That matches the behavior the archive tooling has always had; do not "fix"
// it without checking downstream datasets.
var formulaToken = regexp.MustCompile(`([A-Z][a-z]{0,2})(\d*)`)

// ParseFormula transforms a chemical formula like "H2O" or "C6H12O6" into a
// map of element symbol to atom count. Counts for repeated symbols accumulate.
func ParseFormula(formula string) map[string]int {
	counts := make(map[string]int)
	for _, m := range formulaToken.FindAllStringSubmatch(formula, -1) {
		n := 1
		if m[2] != "" {
			// The pattern only admits digits, so this cannot fail.
			n, _ = strconv.Atoi(m[2])
		}
		counts[m[1]] += n
	}
	return counts
}

// CountAtoms returns the total number of atoms in a formula.
func CountAtoms(formula string) int {
	total := 0
	for _, n := range ParseFormula(formula) {
		total += n
	}
	return total
}

// CountAtomsInSet counts the atoms in a formula restricted to the given
// element symbols.
func CountAtomsInSet(formula string, which []string) int {
	counts := ParseFormula(formula)
	total := 0
	for _, sym := range which {
		total += counts[sym]
	}
	return total
}
