// Package thermoml models the subset of the ThermoML schema the extraction
// pipeline consumes and loads documents from disk. Full XSD conformance
// checking is the archive publisher's responsibility; Load only verifies that
// a file decodes into the expected document shape.
package thermoml

import (
	"encoding/xml"
	"fmt"
	"os"
)

// Namespace is the ThermoML XML namespace.
const Namespace = "http://www.iupac.org/namespaces/ThermoML"

// Document is the root DataReport element of a ThermoML file.
type Document struct {
	XMLName           xml.Name            `xml:"DataReport"`
	Citation          *Citation           `xml:"Citation"`
	Compounds         []Compound          `xml:"Compound"`
	PureOrMixtureData []PureOrMixtureData `xml:"PureOrMixtureData"`
}

// Citation carries the bibliographic fields of the source publication.
type Citation struct {
	Title   string   `xml:"sTitle"`
	Authors []string `xml:"sAuthor"`
	DOI     string   `xml:"sDOI"`
	PubName string   `xml:"sPubName"`
	PubYear string   `xml:"yrPubYr"`
}

// RegNum identifies a compound within one document. The org number is kept
// as raw text; the extractor parses it and skips entries that do not carry a
// valid integer.
type RegNum struct {
	OrgNum string `xml:"nOrgNum"`
}

// Compound is one entry of the document's compound list.
type Compound struct {
	RegNum       *RegNum  `xml:"RegNum"`
	CommonNames  []string `xml:"sCommonName"`
	FormulaMolec string   `xml:"sFormulaMolec"`
}

// PureOrMixtureData is one self-contained data-entry: a set of components
// with their properties and variables across one or more numeric-value
// blocks.
type PureOrMixtureData struct {
	Components []Component `xml:"Component"`
	Properties []Property  `xml:"Property"`
	Variables  []Variable  `xml:"Variable"`
	NumValues  []NumValues `xml:"NumValues"`
}

// Component references a compound of the document's compound list.
type Component struct {
	RegNum *RegNum `xml:"RegNum"`
}

// Property declares one measured property, keyed by nPropNumber within the
// enclosing data-entry.
type Property struct {
	PropNumber  string            `xml:"nPropNumber"`
	MethodID    *PropertyMethodID `xml:"Property-MethodID"`
	PropPhaseID []PropPhaseID     `xml:"PropPhaseID"`
}

// PropertyMethodID wraps the property group variant.
type PropertyMethodID struct {
	PropertyGroup *PropertyGroup `xml:"PropertyGroup"`
}

// PropertyGroup is a variant holding exactly one of three mutually-exclusive
// group shapes. Name returns the property name of the first populated shape,
// in the schema's declaration order.
type PropertyGroup struct {
	Volumetric *PropertyGroupEntry `xml:"VolumetricProp"`
	Transport  *PropertyGroupEntry `xml:"TransportProp"`
	Thermodyn  *PropertyGroupEntry `xml:"ThermodynProp"`
}

// PropertyGroupEntry holds the property name of one group shape.
type PropertyGroupEntry struct {
	PropName string `xml:"ePropName"`
}

// Name returns the property name from the first populated group shape, or ""
// when none is present.
func (g *PropertyGroup) Name() string {
	if g == nil {
		return ""
	}
	for _, entry := range []*PropertyGroupEntry{g.Volumetric, g.Transport, g.Thermodyn} {
		if entry != nil && entry.PropName != "" {
			return entry.PropName
		}
	}
	return ""
}

// PropPhaseID names the phase a property was measured in.
type PropPhaseID struct {
	PropPhase string `xml:"ePropPhase"`
}

// Variable declares one state variable, keyed by nVarNumber within the
// enclosing data-entry.
type Variable struct {
	VarNumber  string      `xml:"nVarNumber"`
	VariableID *VariableID `xml:"VariableID"`
}

// VariableID holds the variable's type and, for composition variables, the
// component it refers to.
type VariableID struct {
	VariableType *VariableType `xml:"VariableType"`
	RegNum       *RegNum       `xml:"RegNum"`
}

// VariableType is a variant with exactly one populated field naming the
// variable type. Label returns the first populated candidate in declaration
// order, or "UnknownType" when the node is empty or absent.
type VariableType struct {
	VarType              string `xml:"eVarType"`
	Temperature          string `xml:"eTemperature"`
	Pressure             string `xml:"ePressure"`
	ComponentComposition string `xml:"eComponentComposition"`
	SolventComposition   string `xml:"eSolventComposition"`
	Miscellaneous        string `xml:"eMiscellaneous"`
	BioVariables         string `xml:"eBioVariables"`
	ParticipantAmount    string `xml:"eParticipantAmount"`
}

// UnknownType is the label for variables whose type node is empty or absent.
const UnknownType = "UnknownType"

// Label returns the resolved variable-type label.
func (vt *VariableType) Label() string {
	if vt == nil {
		return UnknownType
	}
	for _, s := range []string{
		vt.VarType,
		vt.Temperature,
		vt.Pressure,
		vt.ComponentComposition,
		vt.SolventComposition,
		vt.Miscellaneous,
		vt.BioVariables,
		vt.ParticipantAmount,
	} {
		if s != "" {
			return s
		}
	}
	return UnknownType
}

// NumValues is one independent measurement: a set of variable values fixing
// the state point and the property values observed there.
type NumValues struct {
	VariableValues []VariableValue `xml:"VariableValue"`
	PropertyValues []PropertyValue `xml:"PropertyValue"`
}

// VariableValue is a raw (unresolved) variable observation. Numeric fields
// are kept as text; coercion failures are the extractor's to skip.
type VariableValue struct {
	VarNumber string `xml:"nVarNumber"`
	VarValue  string `xml:"nVarValue"`
}

// PropertyValue is a raw property observation with zero or more uncertainty
// blocks; only the first is consumed.
type PropertyValue struct {
	PropNumber      string            `xml:"nPropNumber"`
	PropValue       string            `xml:"nPropValue"`
	PropUncertainty []PropUncertainty `xml:"PropUncertainty"`
}

// PropUncertainty carries the standard uncertainty of one property value.
type PropUncertainty struct {
	StdUncertValue string `xml:"nStdUncertValue"`
}

// Load reads and decodes a ThermoML file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var doc Document
	if err := xml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, nil
}

// IsValid reports whether the file decodes into a ThermoML DataReport.
func IsValid(path string) bool {
	_, err := Load(path)
	return err == nil
}
