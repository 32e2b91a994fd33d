// Copyright 2023 OzQuote Authors

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders normalized quote records as aligned text or CSV
// output for the command-line tools.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"

	"github.com/ozquote/ozquote/quote"
)

// Table is an ordered set of columns with one row of cells per record. Fields
// a record lacks render as empty cells.
type Table struct {
	columns []string
	rows    [][]string
}

// New creates a Table with the given column order.
func New(columns ...string) *Table {
	return &Table{columns: columns}
}

// formatCell renders one decoded field value. The decoded types all carry
// their own canonical string form; anything else falls back to fmt.
func formatCell(v interface{}, ok bool) string {
	if !ok {
		return ""
	}
	switch c := v.(type) {
	case string:
		return c
	case fmt.Stringer:
		return c.String()
	}
	return fmt.Sprintf("%v", v)
}

// AddRecords appends one row per record, cells in column order.
func (t *Table) AddRecords(recs ...quote.Record) {
	for _, rec := range recs {
		row := make([]string, len(t.columns))
		for i, col := range t.columns {
			v, ok := rec[col]
			row[i] = formatCell(v, ok)
		}
		t.rows = append(t.rows, row)
	}
}

// AddRow appends a raw row of cells. Missing cells are padded empty, extra
// cells are an error at write time.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// WriteCSV writes the table to w in CSV format, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return errors.Annotate(err, "failed to write header")
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the table as column-aligned text for ease of reading.
func (t *Table) WriteText(w io.Writer) error {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = len(col)
	}
	for _, row := range t.rows {
		if len(row) != len(widths) {
			return errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i, cell := range row {
			if widths[i] < len(cell) {
				widths[i] = len(cell)
			}
		}
	}

	write := func(row []string) error {
		padded := make([]string, len(row))
		for i, cell := range row {
			padded[i] = fmt.Sprintf("%[2]*[1]s", cell, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(padded, " | "))
		return err
	}

	if err := write(t.columns); err != nil {
		return errors.Annotate(err, "failed to write header")
	}
	dashes := make([]string, len(widths))
	for i, n := range widths {
		dashes[i] = strings.Repeat("-", n)
	}
	if err := write(dashes); err != nil {
		return errors.Annotate(err, "failed to write header separator")
	}
	for _, row := range t.rows {
		if err := write(row); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
