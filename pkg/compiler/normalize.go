package compiler

import (
	"sort"
	"strings"

	"github.com/acfdavis/thermopyl/pkg/chemistry"
	"github.com/acfdavis/thermopyl/pkg/elements"
	"github.com/acfdavis/thermopyl/pkg/parser"
)

// significanceThreshold is the mole fraction below which a component is
// considered spurious and dropped.
const significanceThreshold = 1e-5

// Normalization is the best-effort canonical composition of one record.
type Normalization struct {
	// Formula is the canonical composition string, e.g. "Pb0.6Zn0.4", or
	// "" when no composition could be reconstructed.
	Formula string
	// ActiveComponents joins the composition's element symbols,
	// alphabetically, with ", ".
	ActiveComponents string
}

// normalize reconstructs a mole-fraction composition from the record's
// component-linked fraction variables. At most one missing fraction is
// inferred; under-determined or implausible fraction sets degrade to the
// known fractions with a warning, and a failed round-trip of the rendered
// formula degrades to an empty formula. Nothing here ever fails the record.
func (c *Compiler) normalize(rec *parser.Record) Normalization {
	moleFracs := make(map[string]float64)
	massFracs := make(map[string]float64)
	active := make(map[string]bool)

	for _, v := range rec.VariableValues {
		if v.LinkedOrgNum == 0 || len(v.Values) == 0 {
			continue
		}
		sym := rec.ComponentIDMap[v.LinkedOrgNum]
		if sym == "" {
			continue
		}
		if !elements.IsValidSymbol(sym) {
			c.log.Warnw("invalid element symbol for linked component",
				"materialID", rec.MaterialID, "symbol", sym)
			continue
		}
		switch {
		case strings.HasPrefix(v.VarType, "Mole fraction"):
			active[sym] = true
			moleFracs[sym] = v.Values[0]
		case strings.HasPrefix(v.VarType, "Mass fraction"):
			active[sym] = true
			massFracs[sym] = v.Values[0]
		}
	}

	activeComponents := joinSymbols(active)
	if activeComponents == "" {
		// No linked fractions: fall back to the element set derivable
		// from the record's compound formulas.
		fallback := make(map[string]bool)
		for _, name := range rec.Components {
			if f := rec.CompoundFormulas[name]; f != "" && elements.IsValidSymbol(f) {
				fallback[f] = true
			}
		}
		activeComponents = joinSymbols(fallback)
	}

	// Mole fractions take priority when a record carries both bases.
	var fracs map[string]float64
	massBasis := false
	switch {
	case len(moleFracs) > 0:
		fracs = moleFracs
	case len(massFracs) > 0:
		fracs = massFracs
		massBasis = true
	default:
		return Normalization{Formula: "", ActiveComponents: activeComponents}
	}

	defined := make(map[string]bool)
	for _, sym := range rec.ComponentIDMap {
		if sym != "" && elements.IsValidSymbol(sym) {
			defined[sym] = true
		}
	}

	var missing []string
	for sym := range defined {
		if _, ok := fracs[sym]; !ok {
			missing = append(missing, sym)
		}
	}
	sort.Strings(missing)

	total := 0.0
	for _, amt := range fracs {
		total += amt
	}

	switch {
	case len(missing) == 1 && total > 0 && total < 1:
		if inferred := 1 - total; inferred > significanceThreshold {
			fracs[missing[0]] = inferred
			active[missing[0]] = true
		}
	case len(missing) > 0:
		c.log.Warnw("cannot infer missing fractions",
			"materialID", rec.MaterialID, "missing", missing, "knownSum", total)
	case total < 0.99 || total > 1.01:
		c.log.Warnw("fractions do not sum to 1",
			"materialID", rec.MaterialID, "sum", total)
	}

	if massBasis {
		moles := make(map[string]float64, len(fracs))
		for sym, mass := range fracs {
			// Symbols were validated above, so the mass lookup holds.
			m, err := elements.AtomicMass(sym)
			if err != nil {
				continue
			}
			moles[sym] = mass / m
		}
		fracs = moles
	}

	total = 0.0
	for _, amt := range fracs {
		total += amt
	}
	if total <= 1e-9 {
		c.log.Warnw("total composition effectively zero", "materialID", rec.MaterialID)
		return Normalization{Formula: "", ActiveComponents: activeComponents}
	}

	final := make(map[string]float64, len(fracs))
	for sym, amt := range fracs {
		if frac := amt / total; frac > significanceThreshold {
			final[sym] = frac
		}
	}

	formula := chemistry.PrettyFormula(final)
	if formula == "" {
		return Normalization{Formula: "", ActiveComponents: activeComponents}
	}

	// The rendered formula must parse back to the same element set;
	// anything else means the rendering is not trustworthy.
	parsed := chemistry.ParseComposition(formula)
	if !sameSymbolSet(parsed, final) {
		c.log.Warnw("normalized formula failed round-trip",
			"materialID", rec.MaterialID, "formula", formula)
		return Normalization{Formula: "", ActiveComponents: activeComponents}
	}

	parsedSet := make(map[string]bool, len(parsed))
	for sym := range parsed {
		parsedSet[sym] = true
	}
	return Normalization{Formula: formula, ActiveComponents: joinSymbols(parsedSet)}
}

func joinSymbols(set map[string]bool) string {
	if len(set) == 0 {
		return ""
	}
	symbols := make([]string, 0, len(set))
	for sym := range set {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return strings.Join(symbols, ", ")
}

func sameSymbolSet(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for sym := range a {
		if _, ok := b[sym]; !ok {
			return false
		}
	}
	return true
}
