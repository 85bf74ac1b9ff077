// Package sheet reads and writes named worksheets of named columns in an
// Excel workbook. It knows nothing about ATT&CK; it only moves tabular data.
package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Table is one worksheet of named columns. Rows map column headers to cell
// values; cells missing from a row are simply absent from its map.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// Read loads a single worksheet. The first row is the header; every following
// row becomes a map keyed by those headers. An empty worksheet yields a table
// with no columns.
func Read(path, name string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	table := &Table{Name: name}
	if len(rows) == 0 {
		return table, nil
	}

	table.Columns = rows[0]
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Write creates a workbook at path containing exactly the given tables, one
// worksheet each, replacing any existing file.
func Write(path string, tables []*Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, t := range tables {
		if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", t.Name, err)
		}

		header := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			header[i] = col
		}
		if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
			return fmt.Errorf("write header of %q: %w", t.Name, err)
		}

		for r, row := range t.Rows {
			cells := make([]any, len(t.Columns))
			for i, col := range t.Columns {
				cells[i] = row[col]
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("write sheet %q: %w", t.Name, err)
			}
			if err := f.SetSheetRow(t.Name, cell, &cells); err != nil {
				return fmt.Errorf("write row %d of %q: %w", r+2, t.Name, err)
			}
		}
	}

	// Drop the default sheet excelize creates with every new workbook.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
