package chemistry

import (
	"reflect"
	"testing"
)

func TestParseFormula(t *testing.T) {
	got := ParseFormula("C3H5N2OClBr")
	want := map[string]int{"C": 3, "H": 5, "N": 2, "O": 1, "Cl": 1, "Br": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseFormula = %v, want %v", got, want)
	}
}

func TestParseFormulaAccumulatesRepeats(t *testing.T) {
	got := ParseFormula("CH3CH2OH")
	want := map[string]int{"C": 2, "H": 6, "O": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseFormula = %v, want %v", got, want)
	}
}

// Parenthesized multiplier groups are not expanded; the parentheses and the
// trailing multiplier are dropped. This is the grammar's long-standing
// behavior and downstream data depends on it.
func TestParseFormulaIgnoresGroups(t *testing.T) {
	got := ParseFormula("Fe2(SO4)3")
	want := map[string]int{"Fe": 2, "S": 1, "O": 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseFormula = %v, want %v", got, want)
	}
}

func TestCountAtoms(t *testing.T) {
	if n := CountAtoms("C3H5N2OClBr"); n != 13 {
		t.Fatalf("CountAtoms = %d, want 13", n)
	}

	// CountAtoms must equal the sum of the parsed counts for any formula.
	for _, formula := range []string{"H2O", "C6H12O6", "Pb", "NaCl", "Fe2(SO4)3", ""} {
		sum := 0
		for _, n := range ParseFormula(formula) {
			sum += n
		}
		if n := CountAtoms(formula); n != sum {
			t.Errorf("CountAtoms(%q) = %d, want %d", formula, n, sum)
		}
	}
}

func TestCountAtomsInSet(t *testing.T) {
	if n := CountAtomsInSet("C3H5N2OClBr", []string{"C", "H"}); n != 8 {
		t.Fatalf("CountAtomsInSet = %d, want 8", n)
	}
	if n := CountAtomsInSet("C3H5N2OClBr", []string{"Xx"}); n != 0 {
		t.Fatalf("CountAtomsInSet with unknown symbol = %d, want 0", n)
	}
}
