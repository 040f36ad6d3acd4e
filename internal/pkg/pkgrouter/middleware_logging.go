package pkgrouter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

const (
	maxLoggedBodyBytes = 64 * 1024
	masked             = "***"
)

//nolint:gochecknoglobals // read-only lookup table
var sensitiveKeys = map[string]struct{}{
	"password":        {},
	"authorization":   {},
	"cookie":          {},
	"set-cookie":      {},
	"j_password":      {},
	"consumer_key":    {},
	"consumer_secret": {},
	"token":           {},
	"token_secret":    {},
	"jsessionid":      {},
}

func isSensitive(key string) bool {
	_, found := sensitiveKeys[strings.ToLower(key)]
	return found
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if isSensitive(key) {
			result.Set(key, masked)
		}
	}
	return result
}

func maskData(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if isSensitive(k) {
				out[k] = masked
				continue
			}
			out[k] = maskData(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = maskData(item)
		}
		return out
	default:
		return v
	}
}

// capture keeps the first maxLoggedBodyBytes written to it.
type capture struct {
	buf       bytes.Buffer
	truncated bool
}

func (c *capture) keep(p []byte) {
	remaining := maxLoggedBodyBytes - c.buf.Len()
	if len(p) > remaining {
		p = p[:max(remaining, 0)]
		c.truncated = true
	}
	c.buf.Write(p)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   capture
}

func (w *responseRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.keep(p)

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // dynamic error
func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

func isMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// peekBody reads at most maxLoggedBodyBytes+1 bytes and puts them back in
// front of the remaining stream, so handlers still see the whole body.
func peekBody(r *http.Request) ([]byte, bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	//nolint:errcheck // the handler sees the same read error
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	if len(head) > maxLoggedBodyBytes {
		return head[:maxLoggedBodyBytes], true
	}
	return head, false
}

func parseAndMaskBody(contentType string, body []byte) any {
	if len(body) == 0 {
		return nil
	}

	var jsonBody any
	if err := json.Unmarshal(body, &jsonBody); err == nil {
		return maskData(jsonBody)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			form := make(map[string]any, len(values))
			for k, v := range values {
				switch {
				case isSensitive(k):
					form[k] = masked
				case len(v) == 1:
					form[k] = v[0]
				default:
					form[k] = v
				}
			}
			return form
		}
	}

	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	return string(body)
}

func requestBodyAttr(r *http.Request) any {
	contentType := r.Header.Get("Content-Type")
	if isMultipart(contentType) {
		return map[string]any{"multipart": true, "content_length": r.ContentLength}
	}

	body, truncated := peekBody(r)
	parsed := parseAndMaskBody(contentType, body)
	if truncated {
		return map[string]any{"body": parsed, "truncated": true}
	}
	return parsed
}

func responseBodyAttr(rec *responseRecorder) any {
	parsed := parseAndMaskBody(rec.Header().Get("Content-Type"), rec.body.buf.Bytes())
	if rec.body.truncated {
		return map[string]any{"body": parsed, "truncated": true}
	}
	return parsed
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		slog.InfoContext(r.Context(), "request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"headers", maskHeaders(r.Header),
			"body", requestBodyAttr(r),
		)

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		slog.Log(r.Context(), statusLevel(status), "response sent",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
			"body", responseBodyAttr(rec),
		)
	})
}
