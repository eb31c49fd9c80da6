package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thoas/go-funk"
)

// Dataset is a tabular view over the row objects returned by the
// pipeline's data extraction. Column order follows the key order of
// the first row, which the pipeline emits consistently for all rows.
type Dataset struct {
	columns []string
	rows    []map[string]json.RawMessage
}

func New(rows []json.RawMessage) (*Dataset, error) {
	ds := &Dataset{}
	if len(rows) == 0 {
		return ds, nil
	}
	columns, err := columnOrder(rows[0])
	if err != nil {
		return nil, fmt.Errorf("reading column order: %w", err)
	}
	ds.columns = columns
	for i, raw := range rows {
		row := make(map[string]json.RawMessage)
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", i, err)
		}
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

// columnOrder scans the object's tokens because unmarshalling into a
// map loses the key order.
func columnOrder(row json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(row))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("row is not a JSON object")
	}
	var columns []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in row object", tok)
		}
		var skipped json.RawMessage
		if err := dec.Decode(&skipped); err != nil {
			return nil, err
		}
		columns = append(columns, key)
	}
	return columns, nil
}

func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

func (d *Dataset) HasColumn(column string) bool {
	return funk.ContainsString(d.columns, column)
}

// Cell returns the value at the given row and column rendered as text.
// Missing keys and JSON nulls render as the empty string.
func (d *Dataset) Cell(row int, column string) string {
	raw, ok := d.rows[row][column]
	if !ok {
		return ""
	}
	return cellText(raw)
}

func cellText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	if text[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return text
}

// Row returns the cells of one row in column order.
func (d *Dataset) Row(i int) []string {
	cells := make([]string, 0, len(d.columns))
	for _, column := range d.columns {
		cells = append(cells, d.Cell(i, column))
	}
	return cells
}

// Records returns every row in column order, ready for export.
func (d *Dataset) Records() [][]string {
	records := make([][]string, 0, len(d.rows))
	for i := range d.rows {
		records = append(records, d.Row(i))
	}
	return records
}

// Filter returns a dataset holding the rows whose value in the given
// column contains the term, compared case-insensitively. An empty
// term keeps every row.
func (d *Dataset) Filter(column, term string) *Dataset {
	needle := strings.ToLower(term)
	out := &Dataset{columns: d.columns}
	for i, row := range d.rows {
		if strings.Contains(strings.ToLower(d.Cell(i, column)), needle) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}
