// Package parser extracts flat measurement records from decoded ThermoML
// documents. It resolves the schema's index-indirection (numeric IDs linking
// variables, properties and components across nesting levels) into typed
// records, tolerating partially-conformant data by skipping and logging the
// offending unit instead of failing the document.
package parser

// VariableValue is one resolved state-variable observation.
type VariableValue struct {
	// VarNumber is the entry-local variable index the value was resolved
	// through.
	VarNumber int
	// VarType is the resolved type label, e.g. "Temperature, K". When the
	// same label occurs for several variables of one entry, it carries a
	// "_<VarNumber>" suffix.
	VarType string
	Values  []float64
	// LinkedOrgNum is the org number of the component a composition
	// variable refers to, or 0 when the variable is not tied to a
	// component.
	LinkedOrgNum int
}

// PropertyValue is one resolved property observation.
type PropertyValue struct {
	PropName string
	Phase    string
	Values   []float64
	// Uncertainties holds zero or one standard uncertainty.
	Uncertainties []float64
}

// Citation carries the bibliographic fields attached to a record's source
// publication.
type Citation struct {
	DOI     string
	Title   string
	Authors []string
	Journal string
	PubYear string
}

// Record is one extracted data-entry (one PureOrMixtureData block).
type Record struct {
	// MaterialID joins the entry's component org numbers in document
	// order. It is not globally unique across files.
	MaterialID string
	// Components lists the resolved component names in document order.
	Components []string
	// CompoundFormulas maps component name to molecular formula,
	// restricted to this record's components.
	CompoundFormulas map[string]string
	VariableValues   []VariableValue
	PropertyValues   []PropertyValue
	// ComponentIDMap maps component org number to molecular formula.
	ComponentIDMap map[int]string
	SourceFile     string
	Citation       *Citation
}
