package pkgrouter

import (
	"context"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gochamado/internal/pkg/pkglog"
)

// Generator generates a unique string (used for correlation IDs).
type Generator interface {
	Generate() string
}

const (
	// HeaderCorrelationID is echoed on every response.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted when the proxy in front does not set a correlation ID.
	HeaderRequestID = "X-Request-ID"
	// HeaderUserEmail carries the e-mail of the authenticated user. Authentication
	// happens in front of this service; the header is trusted as-is.
	HeaderUserEmail = "X-User-Email"

	maxHeaderValue = 128
)

// headerValue returns the first usable value among names. Values with line
// breaks are ignored and long ones are cut at maxHeaderValue bytes.
func headerValue(h http.Header, names ...string) string {
	for _, name := range names {
		v := strings.TrimSpace(h.Get(name))
		if v == "" || strings.ContainsAny(v, "\r\n") {
			continue
		}
		if len(v) > maxHeaderValue {
			v = v[:maxHeaderValue]
		}
		return v
	}
	return ""
}

// middlewareRequestContext stores the correlation ID and the requester e-mail
// in the request context so handlers and log lines can read them.
func middlewareRequestContext(uid Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cid := headerValue(r.Header, HeaderCorrelationID, HeaderRequestID)
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}
			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				ctx = pkglog.SetCorrelationID(ctx, cid)
			}

			if email := strings.ToLower(headerValue(r.Header, HeaderUserEmail)); email != "" {
				ctx = pkglog.SetRequester(ctx, email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequester returns the requester e-mail taken from HeaderUserEmail.
func GetRequester(ctx context.Context) string {
	return pkglog.GetRequester(ctx)
}
