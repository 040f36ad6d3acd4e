// Package sheet turns an uploaded spreadsheet into a row store.
//
// Rows keep their 1-based spreadsheet number and cells are keyed by column
// letter, so "<B>" in a template refers to column B of the row being filed.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format, use .xlsx or .csv")
	ErrNoRows            = errors.New("spreadsheet has no filled rows")
)

// Format identifies a supported upload type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat picks the parser from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Parse reads every non-empty row of r. For workbooks only the active sheet is read.
func Parse(ctx context.Context, r io.Reader, filename string) (*entity.RowStore, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	var rows []entity.Row
	switch format {
	case FormatXLSX:
		rows, err = parseXLSX(ctx, r)
	case FormatCSV:
		rows, err = parseCSV(ctx, r)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	return entity.NewRowStore(rows), nil
}

// buildRow keeps the non-blank cells of one record; ok is false when none are left.
func buildRow(number int, record []string) (entity.Row, bool, error) {
	cells := make(map[string]string, len(record))
	for i, value := range record {
		if strings.TrimSpace(value) == "" {
			continue
		}
		col, err := columnName(i + 1)
		if err != nil {
			return entity.Row{}, false, err
		}
		cells[col] = value
	}

	if len(cells) == 0 {
		return entity.Row{}, false, nil
	}

	return entity.Row{Number: number, Cells: cells}, true, nil
}
