package xlsx

import (
	"errors"
	"fmt"
	"io"
	"nburates/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Bank rates"

	// DateColumnWidth fits a YYYY-MM-DD date.
	DateColumnWidth = 11
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Save writes the table to path. An empty table is rejected before the file is touched.
func (e *Exporter) Save(table domain.RateTable, path string) error {
	f, err := e.build(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: failed to save Excel file %s: %w", domain.ErrExportFailure, path, err)
	}
	return nil
}

func (e *Exporter) Write(table domain.RateTable, w io.Writer) error {
	f, err := e.build(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = f.Write(w); err != nil {
		return fmt.Errorf("%w: failed to write workbook: %w", domain.ErrExportFailure, err)
	}
	return nil
}

func (e *Exporter) build(table domain.RateTable) (*excelize.File, error) {
	if table.Empty() {
		return nil, fmt.Errorf("%w: nothing to export, fetch rates first", domain.ErrEmptyResult)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeTable(f, table); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeTable(f *excelize.File, table domain.RateTable) error {
	header := table.Header()
	for col, name := range header {
		if err := setCell(f, col+1, 1, name); err != nil {
			return err
		}
	}

	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(SheetName, "A1", last, styleID); err != nil {
		return fmt.Errorf("failed to apply style to header: %w", err)
	}

	if err = f.SetColWidth(SheetName, "A", "A", DateColumnWidth); err != nil {
		return fmt.Errorf("failed to set column width for A: %w", err)
	}

	for i, row := range table.Rows {
		rowIdx := i + 2
		if err = setCell(f, 1, rowIdx, row.Date.Format(domain.DateLayout)); err != nil {
			return err
		}
		for col, rate := range row.Rates {
			if !rate.Valid {
				continue
			}
			if err = setCell(f, col+2, rowIdx, rate.Decimal.InexactFloat64()); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err = f.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("failed to write data at %s: %w", cell, err)
	}
	return nil
}

// Sheet is the content of an exported workbook as read back from disk.
type Sheet struct {
	Title           string
	Rows            [][]string
	DateColumnWidth float64
	HeaderBold      bool
}

// Read opens a workbook produced by Save.
func Read(path string) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, errors.New("workbook has no sheets")
	}
	title := sheets[0]

	rows, err := f.GetRows(title)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read rows: %w", err)
	}
	width, err := f.GetColWidth(title, "A")
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read column width: %w", err)
	}

	bold := false
	if styleID, err := f.GetCellStyle(title, "A1"); err == nil {
		if style, err := f.GetStyle(styleID); err == nil && style.Font != nil {
			bold = style.Font.Bold
		}
	}

	return Sheet{Title: title, Rows: rows, DateColumnWidth: width, HeaderBold: bold}, nil
}
