package pkgrouter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", `OAuth oauth_consumer_key="k"`)
	headers.Set("Cookie", "JSESSIONID=abc")
	headers.Set("X-User-Email", "ana@uisa.com.br")

	out := maskHeaders(headers)
	if out.Get("Authorization") != masked || out.Get("Cookie") != masked {
		t.Fatalf("expected credentials masked, got %v", out)
	}
	if out.Get("X-User-Email") != "ana@uisa.com.br" {
		t.Fatalf("expected requester header kept, got %q", out.Get("X-User-Email"))
	}
	if headers.Get("Cookie") != "JSESSIONID=abc" {
		t.Fatal("expected input headers unchanged")
	}
}

func TestMaskDataNested(t *testing.T) {
	input := map[string]any{
		"fluig": map[string]any{"consumer_secret": "s", "env": "QLD"},
		"items": []any{map[string]any{"token": "t"}},
	}

	out := maskData(input).(map[string]any)
	fluig := out["fluig"].(map[string]any)
	if fluig["consumer_secret"] != masked || fluig["env"] != "QLD" {
		t.Fatalf("unexpected nested map: %v", fluig)
	}
	if out["items"].([]any)[0].(map[string]any)["token"] != masked {
		t.Fatal("expected token inside list masked")
	}
}

func TestParseAndMaskBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		check       func(t *testing.T, got any)
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        `{"titulo":"Troca de Monitor","j_password":"x"}`,
			check: func(t *testing.T, got any) {
				m := got.(map[string]any)
				if m["j_password"] != masked || m["titulo"] != "Troca de Monitor" {
					t.Fatalf("unexpected json body: %v", m)
				}
			},
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        "j_username=robo&j_password=x",
			check: func(t *testing.T, got any) {
				m := got.(map[string]any)
				if m["j_password"] != masked || m["j_username"] != "robo" {
					t.Fatalf("unexpected form body: %v", m)
				}
			},
		},
		{
			name:        "binary",
			contentType: "application/octet-stream",
			body:        "\xff\xfe\xfd",
			check: func(t *testing.T, got any) {
				if got != "<binary body omitted>" {
					t.Fatalf("expected binary omission, got %v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, parseAndMaskBody(tt.contentType, []byte(tt.body)))
		})
	}
}

func TestPeekBodyKeepsFullStream(t *testing.T) {
	payload := strings.Repeat("x", maxLoggedBodyBytes+10)
	req := httptest.NewRequest(http.MethodPost, "/chamados", strings.NewReader(payload))

	head, truncated := peekBody(req)
	if !truncated || len(head) != maxLoggedBodyBytes {
		t.Fatalf("expected truncated head of %d bytes, got %d (%v)", maxLoggedBodyBytes, len(head), truncated)
	}

	rest, err := io.ReadAll(req.Body)
	if err != nil || string(rest) != payload {
		t.Fatalf("expected handler to read the whole body, got %d bytes (%v)", len(rest), err)
	}
}

func TestRequestBodyAttrSkipsMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chamados/planilha", strings.NewReader("--b\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")

	attr, ok := requestBodyAttr(req).(map[string]any)
	if !ok || attr["multipart"] != true {
		t.Fatalf("expected multipart summary, got %v", attr)
	}

	body, _ := io.ReadAll(req.Body)
	if string(body) != "--b\r\n" {
		t.Fatalf("expected body untouched, got %q", body)
	}
}

func TestCaptureTruncates(t *testing.T) {
	var c capture
	c.keep([]byte(strings.Repeat("a", maxLoggedBodyBytes-1)))
	c.keep([]byte("bc"))
	c.keep([]byte("d"))

	if c.buf.Len() != maxLoggedBodyBytes || !c.truncated {
		t.Fatalf("expected capped capture, got %d bytes truncated=%v", c.buf.Len(), c.truncated)
	}
}

func TestStatusLevel(t *testing.T) {
	if statusLevel(http.StatusCreated) != slog.LevelInfo ||
		statusLevel(http.StatusUnprocessableEntity) != slog.LevelWarn ||
		statusLevel(http.StatusBadGateway) != slog.LevelError {
		t.Fatal("unexpected level mapping")
	}
}
