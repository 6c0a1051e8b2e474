package chemistry

import (
	"math"
	"reflect"
	"testing"
)

func TestParseComposition(t *testing.T) {
	got := ParseComposition("Pb0.6Zn0.4")
	if len(got) != 2 || math.Abs(got["Pb"]-0.6) > 1e-9 || math.Abs(got["Zn"]-0.4) > 1e-9 {
		t.Fatalf("ParseComposition = %v", got)
	}
}

func TestParseCompositionBareSymbol(t *testing.T) {
	got := ParseComposition("Pb")
	want := map[string]float64{"Pb": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseComposition = %v, want %v", got, want)
	}
}

func TestPrettyFormula(t *testing.T) {
	tests := []struct {
		name  string
		fracs map[string]float64
		want  string
	}{
		{"binary", map[string]float64{"Zn": 0.4, "Pb": 0.6}, "Pb0.6Zn0.4"},
		{"sole element", map[string]float64{"Pb": 1.0}, "Pb"},
		{"sole near one", map[string]float64{"Pb": 0.9995}, "Pb"},
		{"drops insignificant", map[string]float64{"Pb": 0.99999, "Zn": 1e-6}, "Pb"},
		{"empty", map[string]float64{}, ""},
		{"alphabetical", map[string]float64{"Sn": 0.2, "Cu": 0.5, "Ag": 0.3}, "Ag0.3Cu0.5Sn0.2"},
		{"rounds to three places", map[string]float64{"Fe": 0.66666, "Ni": 0.33334}, "Fe0.667Ni0.333"},
	}
	for _, tt := range tests {
		if got := PrettyFormula(tt.fracs); got != tt.want {
			t.Errorf("%s: PrettyFormula = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// A rendered formula must re-parse to the element set it was rendered from.
func TestPrettyFormulaRoundTrip(t *testing.T) {
	fracs := map[string]float64{"Pb": 0.6, "Zn": 0.4}
	parsed := ParseComposition(PrettyFormula(fracs))
	if len(parsed) != len(fracs) {
		t.Fatalf("round trip changed element set: %v", parsed)
	}
	for el := range fracs {
		if _, ok := parsed[el]; !ok {
			t.Fatalf("round trip lost element %s: %v", el, parsed)
		}
	}
}
