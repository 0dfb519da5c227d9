package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFromMapDefaults(t *testing.T) {
	e, err := FromMap(map[string]string{})
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}

	if e.Mode() != ModeDevelopment {
		t.Errorf("Mode() = %q, want %q", e.Mode(), ModeDevelopment)
	}
	if !e.IsDev() || e.IsProd() {
		t.Errorf("IsDev() = %v, IsProd() = %v, want true, false", e.IsDev(), e.IsProd())
	}
	if e.AppTitle() != DefaultAppTitle {
		t.Errorf("AppTitle() = %q, want %q", e.AppTitle(), DefaultAppTitle)
	}
	if e.APIBaseURL() != "" {
		t.Errorf("APIBaseURL() = %q, want empty", e.APIBaseURL())
	}
}

func TestValue(t *testing.T) {
	e, err := FromMap(map[string]string{
		"QIANXUN_APP_TITLE": "Nav",
		"PLAIN":             "plain",
		"QIANXUN_EMPTY":     "",
	})
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}

	tests := []struct {
		name     string
		key      string
		fallback string
		want     string
	}{
		{name: "prefixed key", key: "APP_TITLE", fallback: "x", want: "Nav"},
		{name: "full key", key: "QIANXUN_APP_TITLE", fallback: "x", want: "Nav"},
		{name: "unprefixed key", key: "PLAIN", fallback: "x", want: "plain"},
		{name: "empty value uses fallback", key: "EMPTY", fallback: "fb", want: "fb"},
		{name: "missing key uses fallback", key: "MISSING", fallback: "fb", want: "fb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Value(tt.key, tt.fallback); got != tt.want {
				t.Errorf("Value(%q, %q) = %q, want %q", tt.key, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestLoadLayersDotEnvFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write(".env", "QIANXUN_APP_TITLE=base\nQIANXUN_API_BASE_URL=http://base\n")
	write(".env.production", "QIANXUN_API_BASE_URL=http://prod\n")

	for _, key := range []string{"QIANXUN_MODE", "QIANXUN_APP_TITLE", "QIANXUN_API_BASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	e, err := Load(dir, ModeProduction)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !e.IsProd() {
		t.Errorf("Mode() = %q, want production", e.Mode())
	}
	if got := e.APIBaseURL(); got != "http://prod" {
		t.Errorf("APIBaseURL() = %q, want http://prod", got)
	}
	if got := e.AppTitle(); got != "base" {
		t.Errorf("AppTitle() = %q, want base", got)
	}
}

func TestLoadProcessEnvWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("QIANXUN_APP_TITLE=file\n"), 0600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("QIANXUN_APP_TITLE", "process")

	e, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := e.AppTitle(); got != "process" {
		t.Errorf("AppTitle() = %q, want process", got)
	}
}

func TestLoadModeFromDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		wantMode string
		wantURL  string
	}{
		{name: "mode from .env selects mode files", mode: "", wantMode: ModeProduction, wantURL: "http://prod"},
		{name: "argument wins over .env", mode: "staging", wantMode: "staging", wantURL: "http://staging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			files := map[string]string{
				".env":            "QIANXUN_MODE=production\n",
				".env.production": "QIANXUN_API_BASE_URL=http://prod\n",
				".env.staging":    "QIANXUN_API_BASE_URL=http://staging\n",
			}
			for name, content := range files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
					t.Fatalf("write %s: %v", name, err)
				}
			}
			for _, key := range []string{"QIANXUN_MODE", "QIANXUN_API_BASE_URL"} {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}

			e, err := Load(dir, tt.mode)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := e.Mode(); got != tt.wantMode {
				t.Errorf("Mode() = %q, want %q", got, tt.wantMode)
			}
			if got := e.APIBaseURL(); got != tt.wantURL {
				t.Errorf("APIBaseURL() = %q, want %q", got, tt.wantURL)
			}
		})
	}
}
