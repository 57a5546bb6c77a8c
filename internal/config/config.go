// Package config loads serve configuration from CUE files.
//
// The embedded schema supplies defaults and constraints; user files are
// unified with it, so a typo'd field or an out-of-range value is a load
// error rather than a silently ignored setting.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// Config is the serve-mode configuration.
type Config struct {
	// DBPath is the SQLite ledger database path.
	DBPath string `json:"db_path"`

	// ListenAddr is the firehose HTTP listen address.
	ListenAddr string `json:"listen_addr"`

	// SubscriberBuffer is the per-subscriber notification buffer size.
	SubscriberBuffer int `json:"subscriber_buffer"`

	// Metrics exposes Prometheus metrics on /metrics when true.
	Metrics bool `json:"metrics"`
}

// Default returns the configuration with every field at its schema
// default.
func Default() Config {
	cfg, err := decode("")
	if err != nil {
		// The embedded schema is fully defaulted; failure here is a
		// programming error.
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}
	return cfg
}

// Load reads a CUE config file and unifies it with the schema.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := decode(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// decode unifies user CUE source with the embedded schema and decodes
// the config struct. Empty source yields pure defaults.
func decode(source string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	v := schema
	if source != "" {
		user := ctx.CompileString(source)
		if err := user.Err(); err != nil {
			return Config{}, fmt.Errorf("compile config: %w", err)
		}
		v = schema.Unify(user)
	}

	configVal := v.LookupPath(cue.ParsePath("config"))
	if err := configVal.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	var cfg Config
	if err := configVal.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
