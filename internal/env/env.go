// Package env resolves the values the app reads from its environment: the
// process environment layered over optional .env files.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable the app reads.
const Prefix = "QIANXUN_"

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	// DefaultAppTitle is shown when QIANXUN_APP_TITLE is unset.
	DefaultAppTitle = "千寻导航"
)

// Settings are the typed variables of the environment.
type Settings struct {
	Mode            string `env:"MODE" envDefault:"development"`
	APIBaseURL      string `env:"API_BASE_URL"`
	AppTitle        string `env:"APP_TITLE" envDefault:"千寻导航"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

// Env is an immutable snapshot of the environment.
type Env struct {
	settings Settings
	vars     map[string]string
}

// Load reads .env and .env.local from dir, resolves the mode, then reads
// .env.<mode> and .env.<mode>.local (later files win) and overlays the
// process environment on top. The mode is, in order: the mode argument,
// QIANXUN_MODE from the process, QIANXUN_MODE from the base files,
// development. The resolved mode always wins over file values.
func Load(dir, mode string) (*Env, error) {
	vars := make(map[string]string)
	if err := readFiles(dir, vars, ".env", ".env.local"); err != nil {
		return nil, err
	}

	if mode == "" {
		mode = os.Getenv(Prefix + "MODE")
	}
	if mode == "" {
		mode = vars[Prefix+"MODE"]
	}
	if mode == "" {
		mode = ModeDevelopment
	}

	if err := readFiles(dir, vars, ".env."+mode, ".env."+mode+".local"); err != nil {
		return nil, err
	}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	vars[Prefix+"MODE"] = mode

	return FromMap(vars)
}

// readFiles merges the named dotenv files into vars, skipping missing ones.
func readFiles(dir string, vars map[string]string, names ...string) error {
	for _, name := range names {
		values, err := godotenv.Read(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", name, err)
		}
		for k, v := range values {
			vars[k] = v
		}
	}
	return nil
}

// FromMap builds an Env from an explicit variable set, ignoring the process
// environment.
func FromMap(vars map[string]string) (*Env, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	var s Settings
	opts := env.Options{
		Environment: vars,
		Prefix:      Prefix,
	}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &Env{settings: s, vars: copied}, nil
}

// Settings returns the parsed variables.
func (e *Env) Settings() Settings {
	return e.settings
}

// Mode returns the current mode name.
func (e *Env) Mode() string {
	return e.settings.Mode
}

func (e *Env) IsDev() bool {
	return e.settings.Mode == ModeDevelopment
}

func (e *Env) IsProd() bool {
	return e.settings.Mode == ModeProduction
}

// Value looks up key, trying it verbatim and then with Prefix. Empty values
// count as unset.
func (e *Env) Value(key, fallback string) string {
	if v := e.vars[key]; v != "" {
		return v
	}
	if v := e.vars[Prefix+key]; v != "" {
		return v
	}
	return fallback
}

// APIBaseURL returns the backend base URL, or "" when unset.
func (e *Env) APIBaseURL() string {
	return e.Value("API_BASE_URL", "")
}

// AppTitle returns the application title.
func (e *Env) AppTitle() string {
	return e.Value("APP_TITLE", DefaultAppTitle)
}
