package usecase

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

var placeholderPattern = regexp.MustCompile(`<([A-Za-z]+)>`)

// substitute replaces every <COLUMN> token with the row value of that column.
// Matching ignores case. Tokens naming a column absent from the row are kept
// verbatim and returned in missing. Inserted values are not scanned again.
func substitute(ctx context.Context, text string, row entity.Row) (string, []string) {
	var missing []string

	out := placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		column := strings.ToUpper(token[1 : len(token)-1])
		if value, ok := row.Value(column); ok {
			return value
		}

		missing = append(missing, column)
		slog.WarnContext(ctx, "placeholder column not found in row", "row", row.Number, "column", column)
		return token
	})

	return out, missing
}
