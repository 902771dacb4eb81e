package bindgen

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Target is one Kotlin compilation target the bindings can specialize for.
type Target string

const (
	TargetJvm     Target = "jvm"
	TargetAndroid Target = "android"
	TargetNative  Target = "native"
)

// DefaultTargets is the full target set used when multiplatform mode is forced
// on a config that names no targets of its own.
var DefaultTargets = []Target{TargetJvm, TargetAndroid, TargetNative}

func (t Target) valid() bool {
	switch t {
	case TargetJvm, TargetAndroid, TargetNative:
		return true
	}
	return false
}

// Config is the per-component binding configuration, read from the component's
// `uniffi.toml`. Keys may live either under [bindings.kotlin] or at the
// document root; the nested table fully shadows the root when present.
type Config struct {
	PackageName      string            `toml:"package_name"`
	CdylibName       string            `toml:"cdylib_name"`
	Multiplatform    bool              `toml:"kotlin_multiplatform"`
	Targets          []Target          `toml:"kotlin_targets"`
	ExternalPackages map[string]string `toml:"external_packages"`
	GenerateStub     bool              `toml:"generate_stub"`
}

// EffectivePackage returns the Kotlin package the component's bindings are
// emitted under: the explicit package_name if set, else `uniffi.<namespace>`.
// The answer is stable before and after cross-component linking.
func (c *Config) EffectivePackage(namespace string) string {
	if c.PackageName != "" {
		return c.PackageName
	}
	return "uniffi." + namespace
}

func (c *Config) HasTarget(t Target) bool {
	return slices.Contains(c.Targets, t)
}

// ConfigError reports a malformed or type-mismatched configuration document,
// naming the offending key when it is known.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config key %q: %v", e.Key, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseRawConfig parses a TOML document into an untyped tree and evaluates
// {{...}} expressions in every string value.
func ParseRawConfig(rdr io.Reader, env GenEnv) (map[string]any, error) {
	var raw map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&raw); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, &ConfigError{Key: strings.Join(derr.Key(), "."), Err: errors.New(derr.String())}
		}
		return nil, err
	}

	processed, err := processExpressions(raw, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in config: %w", err)
	}

	return processed.(map[string]any), nil
}

// ParseRawConfigFile reads and parses a config file. A missing file is not an
// error: components without a uniffi.toml run on defaults.
func ParseRawConfigFile(path string, env GenEnv) (map[string]any, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseRawConfig(bufio.NewReader(f), env)
}

// NewConfig resolves one raw config document into a Config. When
// forceMultiplatform is set, multiplatform mode is enabled regardless of the
// document and an empty target list is filled with DefaultTargets; an explicit
// non-empty target list is always preserved verbatim.
func NewConfig(root map[string]any, forceMultiplatform bool) (*Config, error) {
	// support both the [bindings.kotlin] table and flat keys at the root
	src := root
	if bindings, ok := root["bindings"].(map[string]any); ok {
		if kotlin, ok := bindings["kotlin"].(map[string]any); ok {
			src = kotlin
		}
	}

	cfg := new(Config)
	if err := unmarshalInto(src, cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalizeTargets(); err != nil {
		return nil, err
	}

	if forceMultiplatform {
		cfg.Multiplatform = true
		if len(cfg.Targets) == 0 {
			cfg.Targets = slices.Clone(DefaultTargets)
		}
	}

	return cfg, nil
}

// unmarshalInto round-trips an untyped tree through TOML into a typed struct,
// ignoring unrecognized keys.
func unmarshalInto(raw map[string]any, dst any) error {
	b, err := toml.Marshal(raw)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(b, dst); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return &ConfigError{Key: strings.Join(derr.Key(), "."), Err: errors.New(derr.String())}
		}
		return err
	}
	return nil
}

// normalizeTargets validates target names and drops duplicates, keeping first
// occurrence order.
func (c *Config) normalizeTargets() error {
	seen := make(map[Target]bool, len(c.Targets))
	out := c.Targets[:0]
	for _, t := range c.Targets {
		if !t.valid() {
			return &ConfigError{
				Key: "kotlin_targets",
				Err: fmt.Errorf("unknown target %q, known targets: %s, %s, %s", string(t), TargetJvm, TargetAndroid, TargetNative),
			}
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	c.Targets = out
	return nil
}
