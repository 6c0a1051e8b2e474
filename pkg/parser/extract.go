package parser

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/acfdavis/thermopyl/pkg/thermoml"
)

// materialIDSeparator joins component org numbers into a material id.
const materialIDSeparator = "__"

// compoundInfo is the per-document compound registry entry.
type compoundInfo struct {
	name    string
	formula string
}

// Extractor turns decoded ThermoML documents into Records.
type Extractor struct {
	log *zap.SugaredLogger
}

// NewExtractor returns an Extractor logging through log. A nil log means
// silent operation.
func NewExtractor(log *zap.SugaredLogger) *Extractor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Extractor{log: log}
}

// Extract produces one Record per data-entry of doc, in document order.
// Malformed compounds, entries and individual values are skipped and logged;
// a document with no compounds or no data-entries yields an empty result.
func (e *Extractor) Extract(doc *thermoml.Document, sourceFile string) []Record {
	compounds := e.buildCompounds(doc)

	var citation *Citation
	if doc.Citation != nil {
		citation = &Citation{
			DOI:     doc.Citation.DOI,
			Title:   doc.Citation.Title,
			Authors: doc.Citation.Authors,
			Journal: doc.Citation.PubName,
			PubYear: doc.Citation.PubYear,
		}
	}

	var records []Record
	for i := range doc.PureOrMixtureData {
		rec, err := e.extractEntry(&doc.PureOrMixtureData[i], compounds)
		if err != nil {
			e.log.Warnw("skipping entry", "file", sourceFile, "entry", i, "error", err)
			continue
		}
		rec.SourceFile = sourceFile
		rec.Citation = citation
		records = append(records, rec)
	}
	return records
}

// buildCompounds scans the document's compound list into an org-number keyed
// registry. A malformed compound is skipped with a warning; it does not fail
// the document.
func (e *Extractor) buildCompounds(doc *thermoml.Document) map[int]compoundInfo {
	compounds := make(map[int]compoundInfo)
	for i := range doc.Compounds {
		c := &doc.Compounds[i]
		orgNum, err := parseRegNum(c.RegNum)
		if err != nil {
			e.log.Warnw("skipping invalid compound", "index", i, "error", err)
			continue
		}
		if len(c.CommonNames) == 0 || c.CommonNames[0] == "" {
			e.log.Warnw("skipping compound without common name", "orgNum", orgNum)
			continue
		}
		compounds[orgNum] = compoundInfo{name: c.CommonNames[0], formula: c.FormulaMolec}
		e.log.Debugw("registered compound", "orgNum", orgNum, "name", c.CommonNames[0], "formula", c.FormulaMolec)
	}
	return compounds
}

// extractEntry builds one Record from a PureOrMixtureData block. It returns
// an error only for failures that invalidate the whole entry (an unparsable
// component identifier); everything below that granularity is skipped with a
// diagnostic.
func (e *Extractor) extractEntry(entry *thermoml.PureOrMixtureData, compounds map[int]compoundInfo) (Record, error) {
	componentIDs := make([]string, 0, len(entry.Components))
	components := make([]string, 0, len(entry.Components))
	compoundFormulas := make(map[string]string, len(entry.Components))
	componentIDMap := make(map[int]string, len(entry.Components))

	for i := range entry.Components {
		orgNum, err := parseRegNum(entry.Components[i].RegNum)
		if err != nil {
			return Record{}, fmt.Errorf("component %d: %w", i, err)
		}
		componentIDs = append(componentIDs, strconv.Itoa(orgNum))

		info, ok := compounds[orgNum]
		name := info.name
		if !ok {
			name = fmt.Sprintf("Unknown-%d", orgNum)
		}
		components = append(components, name)
		compoundFormulas[name] = info.formula
		componentIDMap[orgNum] = info.formula
	}

	materialID := "unknown"
	if len(componentIDs) > 0 {
		materialID = strings.Join(componentIDs, materialIDSeparator)
	}

	propNames, propPhases := e.buildPropertyMaps(entry)
	varTypes, varLinks := e.buildVariableMaps(entry)

	// Occurrence counts over the whole entry decide which labels need a
	// disambiguating suffix.
	typeCounts := make(map[string]int)
	for _, label := range varTypes {
		typeCounts[label]++
	}

	var variableValues []VariableValue
	var propertyValues []PropertyValue
	for i := range entry.NumValues {
		nv := &entry.NumValues[i]

		for j := range nv.VariableValues {
			vv, ok := e.resolveVariableValue(&nv.VariableValues[j], varTypes, varLinks, typeCounts)
			if !ok {
				continue
			}
			variableValues = append(variableValues, vv)
		}

		for j := range nv.PropertyValues {
			pv, ok := e.resolvePropertyValue(&nv.PropertyValues[j], propNames, propPhases)
			if !ok {
				continue
			}
			propertyValues = append(propertyValues, pv)
		}
	}

	return Record{
		MaterialID:       materialID,
		Components:       components,
		CompoundFormulas: compoundFormulas,
		VariableValues:   variableValues,
		PropertyValues:   propertyValues,
		ComponentIDMap:   componentIDMap,
	}, nil
}

// buildPropertyMaps resolves the entry's property declarations into
// index-keyed name and phase maps. A property whose group carries no name
// resolves to "unknown" rather than being dropped.
func (e *Extractor) buildPropertyMaps(entry *thermoml.PureOrMixtureData) (names map[int]string, phases map[int]string) {
	names = make(map[int]string, len(entry.Properties))
	phases = make(map[int]string, len(entry.Properties))
	for i := range entry.Properties {
		p := &entry.Properties[i]
		num, err := strconv.Atoi(strings.TrimSpace(p.PropNumber))
		if err != nil {
			e.log.Debugw("skipping property with invalid number", "index", i, "error", err)
			continue
		}
		name := ""
		if p.MethodID != nil {
			name = p.MethodID.PropertyGroup.Name()
		}
		if name == "" {
			name = "unknown"
		}
		names[num] = name
		if len(p.PropPhaseID) > 0 {
			phases[num] = p.PropPhaseID[0].PropPhase
		}
	}
	return names, phases
}

// buildVariableMaps resolves the entry's variable declarations into
// index-keyed type-label and component-link maps.
func (e *Extractor) buildVariableMaps(entry *thermoml.PureOrMixtureData) (types map[int]string, links map[int]int) {
	types = make(map[int]string, len(entry.Variables))
	links = make(map[int]int)
	for i := range entry.Variables {
		v := &entry.Variables[i]
		num, err := strconv.Atoi(strings.TrimSpace(v.VarNumber))
		if err != nil {
			e.log.Debugw("skipping variable with invalid number", "index", i, "error", err)
			continue
		}
		var vt *thermoml.VariableType
		if v.VariableID != nil {
			vt = v.VariableID.VariableType
			if orgNum, err := parseRegNum(v.VariableID.RegNum); err == nil {
				links[num] = orgNum
			}
		}
		types[num] = vt.Label()
	}
	return types, links
}

// resolveVariableValue coerces one raw variable value through the entry-local
// maps. Unresolved indices and coercion failures are dropped with a
// diagnostic.
func (e *Extractor) resolveVariableValue(raw *thermoml.VariableValue, types map[int]string, links map[int]int, typeCounts map[string]int) (VariableValue, bool) {
	num, err := strconv.Atoi(strings.TrimSpace(raw.VarNumber))
	if err != nil {
		e.log.Debugw("skipping variable value with invalid number", "error", err)
		return VariableValue{}, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw.VarValue), 64)
	if err != nil {
		e.log.Debugw("skipping non-numeric variable value", "varNumber", num, "error", err)
		return VariableValue{}, false
	}
	label, ok := types[num]
	if !ok {
		e.log.Debugw("dropping variable value with unresolved index", "varNumber", num)
		return VariableValue{}, false
	}
	if typeCounts[label] > 1 {
		label = fmt.Sprintf("%s_%d", label, num)
	}
	return VariableValue{
		VarNumber:    num,
		VarType:      label,
		Values:       []float64{value},
		LinkedOrgNum: links[num],
	}, true
}

// resolvePropertyValue coerces one raw property value through the entry-local
// maps, picking up at most one standard uncertainty.
func (e *Extractor) resolvePropertyValue(raw *thermoml.PropertyValue, names map[int]string, phases map[int]string) (PropertyValue, bool) {
	num, err := strconv.Atoi(strings.TrimSpace(raw.PropNumber))
	if err != nil {
		e.log.Debugw("skipping property value with invalid number", "error", err)
		return PropertyValue{}, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw.PropValue), 64)
	if err != nil {
		e.log.Debugw("skipping non-numeric property value", "propNumber", num, "error", err)
		return PropertyValue{}, false
	}
	name, ok := names[num]
	if !ok {
		e.log.Debugw("dropping property value with unresolved index", "propNumber", num)
		return PropertyValue{}, false
	}

	var uncertainties []float64
	if len(raw.PropUncertainty) > 0 {
		s := strings.TrimSpace(raw.PropUncertainty[0].StdUncertValue)
		if s == "" {
			uncertainties = []float64{0}
		} else if u, err := strconv.ParseFloat(s, 64); err == nil {
			uncertainties = []float64{u}
		} else {
			e.log.Debugw("skipping property value with non-numeric uncertainty", "propNumber", num, "error", err)
			return PropertyValue{}, false
		}
	}

	return PropertyValue{
		PropName:      name,
		Phase:         phases[num],
		Values:        []float64{value},
		Uncertainties: uncertainties,
	}, true
}

// parseRegNum extracts the integer org number from a RegNum node.
func parseRegNum(r *thermoml.RegNum) (int, error) {
	if r == nil {
		return 0, fmt.Errorf("missing RegNum")
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.OrgNum))
	if err != nil {
		return 0, fmt.Errorf("invalid nOrgNum %q", r.OrgNum)
	}
	return n, nil
}
