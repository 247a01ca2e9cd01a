package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "APP_"
	defaultConfigDir = "configs"
)

// Option configures the Load function.
type Option func(*loadOptions)

type loadOptions struct {
	configDir string
}

// WithConfigDir points Load at a directory other than ./configs.
func WithConfigDir(dir string) Option {
	return func(o *loadOptions) {
		o.configDir = dir
	}
}

// layer is one source in the precedence stack. A nil parser means the
// provider already yields a key/value map.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

// Load builds a Config for the named profile. Later sources win:
//
//	built-in defaults < configs/base.yaml < configs/<profile>.yaml < APP_* env
//
// Env names are matched against the keys already loaded, so a field with an
// underscore in its name stays intact:
//
//	APP_SERVER_READ_TIMEOUT                  -> server.read_timeout
//	APP_STORAGE_CIRCUIT_BREAKER_MAX_FAILURES -> storage.circuit_breaker.max_failures
func Load(profile string, opts ...Option) (*Config, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	o := &loadOptions{configDir: defaultConfigDir}
	for _, opt := range opts {
		opt(o)
	}

	k := koanf.New(".")

	files := []layer{
		{name: "defaults", provider: confmap.Provider(defaults(), ".")},
		yamlLayer(o.configDir, "base"),
		yamlLayer(o.configDir, profile),
	}
	for _, l := range files {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	// The env layer resolves names against everything loaded so far.
	mapper := newEnvKeyMapper(k.Keys())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: mapper.transform,
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func yamlLayer(dir, name string) layer {
	path := filepath.Join(dir, name+".yaml")
	return layer{
		name:     path,
		provider: file.Provider(path),
		parser:   yaml.Parser(),
	}
}

// validateProfile rejects names that could escape the config directory.
func validateProfile(profile string) error {
	switch {
	case strings.TrimSpace(profile) == "":
		return errors.New("profile must not be empty")
	case strings.ContainsAny(profile, `/\`):
		return fmt.Errorf("profile must not contain path separators, got %q", profile)
	case strings.Contains(profile, ".."):
		return fmt.Errorf("profile must not contain path traversal, got %q", profile)
	}
	return nil
}

// envKeyMapper maps lower-cased env names without the prefix back to dotted
// config keys.
type envKeyMapper map[string]string

func newEnvKeyMapper(keys []string) envKeyMapper {
	m := make(envKeyMapper, len(keys))
	for _, key := range keys {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}
	return m
}

// transform is an env.Opt TransformFunc. Unknown names fall back to treating
// every underscore as a separator.
func (m envKeyMapper) transform(name, value string) (string, any) {
	name = strings.ToLower(strings.TrimPrefix(name, envPrefix))
	if key, ok := m[name]; ok {
		return key, value
	}
	return strings.ReplaceAll(name, "_", "."), value
}
