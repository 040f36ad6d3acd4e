// Package outbound talks to the Fluig platform and keeps the local copy of
// the ITSM service catalog.
package outbound

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/gochamado/internal/chamado/entity"
)

const defaultTimeout = 15 * time.Second

// Config selects one Fluig environment.
type Config struct {
	Env            entity.Environment
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
	Username       string
	Password       string
	// TaskUserID is the colleague id Fluig checks ticket detail permissions against.
	TaskUserID string
	Timeout    time.Duration
	// SessionDir holds the persisted session cookies. Empty disables persistence.
	SessionDir string
}

func (c Config) validate() (*url.URL, error) {
	if c.Env != entity.EnvironmentPRD && c.Env != entity.EnvironmentQLD {
		return nil, errors.New("fluig environment must be PRD or QLD")
	}

	base, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New("fluig base url is invalid")
	}

	if c.ConsumerKey == "" || c.ConsumerSecret == "" || c.Token == "" || c.TokenSecret == "" {
		return nil, errors.New("fluig oauth credentials are incomplete")
	}

	// every Fluig endpoint is rooted at the host
	return &url.URL{Scheme: base.Scheme, Host: base.Host}, nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
