package pkgrouter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gochamado/internal/pkg/pkgerror"
)

// GetParam returns the trimmed path parameter stored by httprouter.
func GetParam(ctx context.Context, key string) string {
	return strings.TrimSpace(httprouter.ParamsFromContext(ctx).ByName(key))
}

// QueryInt reads a positive integer from the query string. A missing value
// yields def; values above ceil are clamped when ceil is positive.
func QueryInt(r *http.Request, key string, def, ceil int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, pkgerror.NewInvalidFields(
			errors.New("invalid "+key), map[string]string{key: "must be a positive integer"})
	}

	if ceil > 0 && value > ceil {
		value = ceil
	}

	return value, nil
}
