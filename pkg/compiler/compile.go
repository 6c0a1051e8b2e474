// Package compiler drives record extraction over many ThermoML files and
// flattens the results into two related tables: a wide per-measurement table
// and a deduplicated compound table. Compilation is a pure fold over its
// inputs: files are processed one at a time, in input order, and a bad file
// costs only its own rows.
package compiler

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/acfdavis/thermopyl/pkg/parser"
	"github.com/acfdavis/thermopyl/pkg/table"
	"github.com/acfdavis/thermopyl/pkg/thermoml"
)

// dataLeading fixes the leading column order of the measurements table;
// var_/prop_ columns follow, sorted.
var dataLeading = []string{
	"material_id", "components", "thermopyl_version",
	"source_file", "doi", "publication_year", "title", "author", "journal",
	"normalized_formula", "active_components",
}

// compoundsLeading fixes the column order of the compound table.
var compoundsLeading = []string{
	"symbol", "name",
	"source_file", "doi", "publication_year", "title", "author", "journal",
}

// Options controls one compilation.
type Options struct {
	// NormalizeAlloys adds normalized_formula and active_components
	// columns reconstructed from component-linked fraction variables.
	NormalizeAlloys bool
	// RepositoryMetadata is merged into the result as-is; it never
	// touches the per-measurement schema.
	RepositoryMetadata map[string]any
}

// Dataset is the output of one compilation.
type Dataset struct {
	Data               *table.Table
	Compounds          *table.Table
	RepositoryMetadata map[string]any
}

// Compiler compiles ThermoML files into a Dataset.
type Compiler struct {
	log       *zap.SugaredLogger
	extractor *parser.Extractor
}

// New returns a Compiler logging through log. A nil log means silent
// operation.
func New(log *zap.SugaredLogger) *Compiler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Compiler{log: log, extractor: parser.NewExtractor(log)}
}

// Build compiles the given files. A file that fails to load is skipped with
// a warning; Build itself never fails, and an all-bad input set yields two
// empty tables. Re-running Build over the same inputs yields identical
// tables.
func (c *Compiler) Build(files []string, opts Options) *Dataset {
	data := table.New(dataLeading...)
	compounds := table.New(compoundsLeading...)
	seenFormulas := make(map[string]bool)

	for _, path := range files {
		c.log.Infow("processing file", "path", path)
		doc, err := thermoml.Load(path)
		if err != nil {
			c.log.Warnw("skipping file", "path", path, "error", err)
			continue
		}

		for _, rec := range c.extractor.Extract(doc, path) {
			data.Append(c.buildRow(&rec, opts.NormalizeAlloys))
			c.collectCompounds(&rec, compounds, seenFormulas)
		}
	}

	meta := opts.RepositoryMetadata
	if meta == nil {
		meta = map[string]any{}
	}
	return &Dataset{Data: data, Compounds: compounds, RepositoryMetadata: meta}
}

// buildRow flattens one record into a wide table row.
func (c *Compiler) buildRow(rec *parser.Record, normalizeAlloys bool) table.Row {
	row := table.Row{
		"material_id":       rec.MaterialID,
		"components":        strings.Join(rec.Components, ", "),
		"thermopyl_version": Version(),
		"source_file":       rec.SourceFile,
	}

	for _, v := range rec.VariableValues {
		if len(v.Values) > 0 {
			row["var_"+v.VarType] = formatValue(v.Values[0])
		}
	}
	for _, p := range rec.PropertyValues {
		if len(p.Values) == 0 {
			continue
		}
		col := "prop_" + p.PropName
		row[col] = formatValue(p.Values[0])
		if len(p.Uncertainties) > 0 {
			row[col+"_uncertainty"] = formatValue(p.Uncertainties[0])
		}
		if p.Phase != "" {
			row[col+"_phase"] = p.Phase
		}
	}

	for col, val := range citationCells(rec.Citation) {
		row[col] = val
	}

	if normalizeAlloys {
		n := c.normalize(rec)
		row["normalized_formula"] = n.Formula
		row["active_components"] = n.ActiveComponents
	}
	return row
}

// collectCompounds appends one compound row per formula not seen before,
// walking the record's components in document order so the output is
// reproducible. First-seen name and provenance win.
func (c *Compiler) collectCompounds(rec *parser.Record, compounds *table.Table, seen map[string]bool) {
	for _, name := range rec.Components {
		formula := rec.CompoundFormulas[name]
		if formula == "" || seen[formula] {
			continue
		}
		seen[formula] = true

		row := table.Row{
			"symbol":      formula,
			"name":        name,
			"source_file": rec.SourceFile,
		}
		for col, val := range citationCells(rec.Citation) {
			row[col] = val
		}
		compounds.Append(row)
	}
}

// citationCells flattens an optional citation into its table cells. Absent
// fields render as empty strings, not nulls, so every row carries the same
// citation columns.
func citationCells(cit *parser.Citation) map[string]string {
	cells := map[string]string{
		"doi":              "",
		"publication_year": "",
		"title":            "",
		"author":           "",
		"journal":          "",
	}
	if cit == nil {
		return cells
	}
	cells["doi"] = cit.DOI
	cells["publication_year"] = cit.PubYear
	cells["title"] = cit.Title
	cells["journal"] = cit.Journal
	if len(cit.Authors) > 0 {
		// Author lists come as "Last, F.; Last, F."; keep the first.
		cells["author"] = strings.TrimSpace(strings.Split(cit.Authors[0], ";")[0])
	}
	return cells
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
