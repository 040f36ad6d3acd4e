package outbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"
)

const loginPath = "/portal/api/servlet/login.do"

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Session keeps the Fluig portal cookies used by process requests.
//
// Logins for the same user are collapsed into one request and the resulting
// cookies are written to disk so a restart does not force a new login.
type Session struct {
	cfg    Config
	base   *url.URL
	jar    http.CookieJar
	client *http.Client
	group  singleflight.Group
}

func newSession(cfg Config, base *url.URL, jar http.CookieJar, transport http.RoundTripper) *Session {
	return &Session{
		cfg:    cfg,
		base:   base,
		jar:    jar,
		client: &http.Client{Transport: transport, Jar: jar, Timeout: cfg.timeout()},
	}
}

func (s *Session) path() string {
	if s.cfg.SessionDir == "" {
		return ""
	}

	user := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(s.cfg.Username), "_"), "_")
	name := fmt.Sprintf("cookies_%s_%s.json", user, strings.ToLower(string(s.cfg.Env)))
	return filepath.Join(s.cfg.SessionDir, name)
}

func (s *Session) active() bool {
	return len(s.jar.Cookies(s.base)) > 0
}

// ensure makes sure the jar holds a session, restoring it from disk or logging in.
func (s *Session) ensure(ctx context.Context) error {
	if s.active() {
		return nil
	}

	if err := s.restore(); err != nil {
		slog.WarnContext(ctx, "failed to restore fluig session", "env", s.cfg.Env, "error", err)
	}
	if s.active() {
		return nil
	}

	return s.login(ctx)
}

func (s *Session) login(ctx context.Context) error {
	_, err, shared := s.group.Do(s.cfg.Username, func() (any, error) {
		return nil, s.doLogin(context.WithoutCancel(ctx))
	})
	if shared {
		slog.DebugContext(ctx, "fluig login shared with a concurrent caller", "env", s.cfg.Env)
	}
	return err
}

func (s *Session) doLogin(ctx context.Context) error {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return errors.New("fluig login credentials are not configured")
	}

	form := url.Values{
		"j_username": {s.cfg.Username},
		"j_password": {s.cfg.Password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base.String()+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	// only a cookie set by this login counts as a session
	s.expire()

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fluig login: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fluig login: %w", newStatusError(resp.StatusCode, body))
	}

	if !s.active() {
		return errors.New("fluig login: no session cookie returned")
	}

	slog.InfoContext(ctx, "fluig login succeeded", "env", s.cfg.Env, "user", s.cfg.Username)

	if err := s.persist(); err != nil {
		slog.WarnContext(ctx, "failed to persist fluig session", "env", s.cfg.Env, "error", err)
	}

	return nil
}

// expire drops the cookies the jar holds for the base URL.
func (s *Session) expire() {
	cookies := s.jar.Cookies(s.base)
	if len(cookies) == 0 {
		return
	}

	stale := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		stale = append(stale, &http.Cookie{Name: c.Name, Path: "/", MaxAge: -1})
	}
	s.jar.SetCookies(s.base, stale)
}

func (s *Session) persist() error {
	path := s.path()
	if path == "" {
		return nil
	}

	cookies := s.jar.Cookies(s.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func (s *Session) restore() error {
	path := s.path()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if c.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.jar.SetCookies(s.base, cookies)

	return nil
}
