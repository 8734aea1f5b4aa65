// table.go — merged row view and table export.
//
// Row i is the merge of choice assignment i and measurement record i, with
// choice columns first (declaration order) followed by measurement columns
// (declaration order). Slots not yet explored present as all-Missing. This is
// the boundary external tooling should consume; it performs no computation of
// its own.
//
// Export targets: CSV (missing cells are left empty), an aligned plain-text
// table, and YAML (rows as ordered mappings).
package multiverses

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Row returns the merged row for universe i (1 ≤ i ≤ Len) as an ordered map.
func (m *Multiverse) Row(i int) (*MapObject, error) {
	k, err := m.index(i)
	if err != nil {
		return nil, err
	}
	row := NewMapObject()
	a := m.assignments[k]
	for j, name := range a.Names() {
		row.Set(name, a.At(j))
	}
	rec := m.placeholderRecord()
	if m.results[k] != nil {
		rec = *m.results[k]
	}
	for j, name := range rec.Names() {
		row.Set(name, rec.At(j))
	}
	return row, nil
}

// Rows returns every merged row in index order.
func (m *Multiverse) Rows() []*MapObject {
	out := make([]*MapObject, m.Len())
	for i := 1; i <= m.Len(); i++ {
		row, _ := m.Row(i)
		out[i-1] = row
	}
	return out
}

// Columns returns the merged column order: choice ids, then measurement ids.
func (m *Multiverse) Columns() []string {
	return append(m.ChoiceIDs(), m.MeasurementIDs()...)
}

// WriteCSV writes the full table to w. Missing measurements become empty
// cells; strings are written raw (encoding/csv handles quoting).
func (m *Multiverse) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := m.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, row := range m.Rows() {
		cells := make([]string, len(cols))
		for j, c := range cols {
			v, _ := row.Get(c)
			if v.Tag == VTMissing {
				cells[j] = ""
			} else {
				cells[j] = cellString(v)
			}
		}
		if err := cw.Write(cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTable writes an aligned plain-text rendering of the full table to w.
func (m *Multiverse) WriteTable(w io.Writer) error {
	cols := m.Columns()
	rows := m.Rows()

	widths := make([]int, len(cols))
	for j, c := range cols {
		widths[j] = len(c)
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			v, _ := row.Get(c)
			cells[i][j] = cellString(v)
			if len(cells[i][j]) > widths[j] {
				widths[j] = len(cells[i][j])
			}
		}
	}

	var b strings.Builder
	for j, c := range cols {
		if j > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%-*s", widths[j], c)
	}
	b.WriteByte('\n')
	for j := range cols {
		if j > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", widths[j]))
	}
	b.WriteByte('\n')
	for _, row := range cells {
		for j, cell := range row {
			if j > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[j], cell)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// EncodeYAML writes the table as a YAML sequence of ordered mappings.
func (m *Multiverse) EncodeYAML(w io.Writer) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range m.Rows() {
		mapping := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range row.Keys {
			mapping.Content = append(mapping.Content, yamlScalar(k, false), yamlValue(row.Entries[k]))
		}
		seq.Content = append(seq.Content, mapping)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(seq)
}

func yamlScalar(s string, quoted bool) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	if quoted {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func yamlValue(v Value) *yaml.Node {
	switch v.Tag {
	case VTNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case VTMissing:
		return yamlScalar("missing", false)
	case VTStr:
		return yamlScalar(v.Data.(string), true)
	case VTArray:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, x := range v.Data.([]Value) {
			seq.Content = append(seq.Content, yamlValue(x))
		}
		return seq
	case VTMap:
		mo := v.Data.(*MapObject)
		mapping := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range mo.Keys {
			mapping.Content = append(mapping.Content, yamlScalar(k, false), yamlValue(mo.Entries[k]))
		}
		return mapping
	default:
		return yamlScalar(cellString(v), false)
	}
}

// cellString renders a Value for table cells: strings unquoted, everything
// else as in Value.String.
func cellString(v Value) string {
	if v.Tag == VTStr {
		return v.Data.(string)
	}
	return v.String()
}
