package sheet

import (
	"context"
	"io"
	"log/slog"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
	"github.com/xuri/excelize/v2"
)

func columnName(n int) (string, error) {
	return excelize.ColumnNumberToName(n)
}

func parseXLSX(ctx context.Context, r io.Reader) ([]entity.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close workbook", "error", cerr)
		}
	}()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	records, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}

	rows := make([]entity.Row, 0, len(records))
	for i, record := range records {
		row, ok, err := buildRow(i+1, record)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}

	slog.DebugContext(ctx, "workbook parsed", "sheet", name, "records", len(records), "rows", len(rows))

	return rows, nil
}
