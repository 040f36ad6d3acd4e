package pkgconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var _ Config = (*Viper)(nil)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestViperConfigValues(t *testing.T) {
	path := writeConfigFile(t, "modules:\n  chamado:\n    enabled: true\n    max_reports: 200\n"+
		"fluig:\n  env: QLD\n  session_renew_interval: 10m\n"+
		"server:\n  cors_origins: https://portal.uisa.com.br, ,http://localhost:5173\n")

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}
	defer func() {
		if err := cfg.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	if got := cfg.GetInt("modules.chamado.max_reports"); got != 200 {
		t.Fatalf("GetInt: expected 200, got %d", got)
	}
	if got := cfg.GetBool("modules.chamado.enabled"); !got {
		t.Fatal("GetBool: expected true")
	}
	if got := cfg.GetString("fluig.env"); got != "QLD" {
		t.Fatalf("GetString: expected QLD, got %q", got)
	}
	if got := cfg.GetDuration("fluig.session_renew_interval"); got != 10*time.Minute {
		t.Fatalf("GetDuration: expected 10m, got %v", got)
	}

	want := []string{"https://portal.uisa.com.br", "http://localhost:5173"}
	if got := cfg.GetArray("server.cors_origins"); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetArray: unexpected value: %#v", got)
	}
	if got := cfg.GetArray("missing"); got != nil {
		t.Fatalf("GetArray missing: expected nil, got %#v", got)
	}
}

func TestViperEnvOverride(t *testing.T) {
	path := writeConfigFile(t, "fluig:\n  prd:\n    password: from-file\n")
	t.Setenv("FLUIG_PRD_PASSWORD", "from-env")

	cfg, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper: %v", err)
	}

	if got := cfg.GetString("fluig.prd.password"); got != "from-env" {
		t.Fatalf("expected env override, got %q", got)
	}
}

func TestNewViperMissingFile(t *testing.T) {
	if _, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
