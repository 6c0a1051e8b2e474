package table

import (
	"reflect"
	"testing"
)

func TestColumnsUnionAndOrder(t *testing.T) {
	tbl := New("material_id", "components")
	tbl.Append(Row{"material_id": "1", "components": "lead", "var_B": "2"})
	tbl.Append(Row{"material_id": "2", "components": "zinc", "var_A": "1", "prop_C": "3"})

	want := []string{"material_id", "components", "prop_C", "var_A", "var_B"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns = %v, want %v", got, want)
	}
}

func TestColumnsOmitUnusedLeading(t *testing.T) {
	tbl := New("material_id", "normalized_formula")
	tbl.Append(Row{"material_id": "1"})

	want := []string{"material_id"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns = %v, want %v", got, want)
	}
}

func TestCellAbsentIsEmpty(t *testing.T) {
	tbl := New()
	tbl.Append(Row{"a": "x"})
	tbl.Append(Row{"b": "y"})

	if got := tbl.Cell(0, "b"); got != "" {
		t.Fatalf("absent cell = %q, want empty", got)
	}
	if got := tbl.Cell(1, "b"); got != "y" {
		t.Fatalf("cell = %q, want y", got)
	}
}

func TestEmptyTable(t *testing.T) {
	tbl := New("a", "b")
	if tbl.Len() != 0 {
		t.Fatalf("Len = %d", tbl.Len())
	}
	if got := tbl.Columns(); len(got) != 0 {
		t.Fatalf("Columns of empty table = %v", got)
	}
}
