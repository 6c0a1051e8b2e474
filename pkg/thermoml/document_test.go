package thermoml

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<DataReport xmlns="http://www.iupac.org/namespaces/ThermoML">
  <Citation>
    <sTitle>Enthalpy of mixing of liquid alloys</sTitle>
    <sAuthor>Smith, J.; Doe, A.</sAuthor>
    <sDOI>10.1000/test.1</sDOI>
    <sPubName>J. Chem. Thermodyn.</sPubName>
    <yrPubYr>2008</yrPubYr>
  </Citation>
  <Compound>
    <RegNum><nOrgNum>1</nOrgNum></RegNum>
    <sCommonName>lead</sCommonName>
    <sFormulaMolec>Pb</sFormulaMolec>
  </Compound>
  <Compound>
    <RegNum><nOrgNum>2</nOrgNum></RegNum>
    <sCommonName>zinc</sCommonName>
    <sFormulaMolec>Zn</sFormulaMolec>
  </Compound>
  <PureOrMixtureData>
    <Component><RegNum><nOrgNum>1</nOrgNum></RegNum></Component>
    <Component><RegNum><nOrgNum>2</nOrgNum></RegNum></Component>
    <Property>
      <nPropNumber>1</nPropNumber>
      <Property-MethodID>
        <PropertyGroup>
          <ThermodynProp><ePropName>Molar enthalpy of mixing, kJ/mol</ePropName></ThermodynProp>
        </PropertyGroup>
      </Property-MethodID>
      <PropPhaseID><ePropPhase>Liquid</ePropPhase></PropPhaseID>
    </Property>
    <Variable>
      <nVarNumber>1</nVarNumber>
      <VariableID>
        <VariableType><eTemperature>Temperature, K</eTemperature></VariableType>
      </VariableID>
    </Variable>
    <Variable>
      <nVarNumber>2</nVarNumber>
      <VariableID>
        <VariableType><eComponentComposition>Mole fraction</eComponentComposition></VariableType>
        <RegNum><nOrgNum>1</nOrgNum></RegNum>
      </VariableID>
    </Variable>
    <NumValues>
      <VariableValue><nVarNumber>1</nVarNumber><nVarValue>700.0</nVarValue></VariableValue>
      <VariableValue><nVarNumber>2</nVarNumber><nVarValue>0.6</nVarValue></VariableValue>
      <PropertyValue>
        <nPropNumber>1</nPropNumber>
        <nPropValue>12.5</nPropValue>
        <PropUncertainty><nStdUncertValue>0.3</nStdUncertValue></PropUncertainty>
      </PropertyValue>
    </NumValues>
  </PureOrMixtureData>
</DataReport>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "sample.xml", sampleXML)
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(doc.Compounds) != 2 {
		t.Fatalf("expected 2 compounds, got %d", len(doc.Compounds))
	}
	if doc.Compounds[0].CommonNames[0] != "lead" || doc.Compounds[0].FormulaMolec != "Pb" {
		t.Fatalf("unexpected first compound: %+v", doc.Compounds[0])
	}
	if doc.Citation == nil || doc.Citation.DOI != "10.1000/test.1" {
		t.Fatalf("unexpected citation: %+v", doc.Citation)
	}

	if len(doc.PureOrMixtureData) != 1 {
		t.Fatalf("expected 1 data entry, got %d", len(doc.PureOrMixtureData))
	}
	entry := doc.PureOrMixtureData[0]
	if len(entry.Components) != 2 || len(entry.Variables) != 2 || len(entry.NumValues) != 1 {
		t.Fatalf("unexpected entry shape: %+v", entry)
	}
	if got := entry.Properties[0].MethodID.PropertyGroup.Name(); got != "Molar enthalpy of mixing, kJ/mol" {
		t.Fatalf("property group name = %q", got)
	}
	if got := entry.Variables[0].VariableID.VariableType.Label(); got != "Temperature, K" {
		t.Fatalf("variable type = %q", got)
	}
	if got := entry.Variables[1].VariableID.VariableType.Label(); got != "Mole fraction" {
		t.Fatalf("variable type = %q", got)
	}
}

func TestVariableTypeLabelFallback(t *testing.T) {
	if got := (*VariableType)(nil).Label(); got != UnknownType {
		t.Fatalf("nil label = %q", got)
	}
	if got := (&VariableType{}).Label(); got != UnknownType {
		t.Fatalf("empty label = %q", got)
	}
}

func TestIsValid(t *testing.T) {
	good := writeFile(t, "good.xml", sampleXML)
	if !IsValid(good) {
		t.Fatal("sample file should be valid")
	}

	bad := writeFile(t, "bad.xml", "<DataReport><Compound>")
	if IsValid(bad) {
		t.Fatal("truncated file should be invalid")
	}

	wrongRoot := writeFile(t, "wrong.xml", "<NotAReport></NotAReport>")
	if IsValid(wrongRoot) {
		t.Fatal("wrong root element should be invalid")
	}

	if IsValid(filepath.Join(t.TempDir(), "missing.xml")) {
		t.Fatal("missing file should be invalid")
	}
}
