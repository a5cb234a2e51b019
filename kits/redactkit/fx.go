// Package redactkit builds a *sanitizer.Sanitizer from configuration and
// provides it to an fx application, where logkit picks it up.
//
// Example configuration:
//
//	redact:
//	  keys: [password, token, authorization]
//	  patterns: ['(?i)bearer\s+\S+']
//	  hash: sha256
package redactkit

import (
	"errors"

	"github.com/froppa/sanitary/kits/configkit"
	"github.com/froppa/sanitary/kits/sanitizer"
	"go.uber.org/fx"
)

// Key is the configuration key the redaction settings are read from.
const Key = "redact"

// Module provides *Config from the "redact" key and the *sanitizer.Sanitizer
// built from it. Invalid patterns or hash names fail the application at
// start, before any entry is logged.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(configkit.ProvideFromKey[Config](Key)),
		fx.Provide(New),
	)
}

// Config defines the redaction settings.
type Config struct {
	// Keys are mapping keys whose values are always replaced, compared
	// case-insensitively.
	Keys []string `yaml:"keys" validate:"dive,required"`

	// Patterns are RE2 expressions; text matching any of them is replaced by
	// Message.
	Patterns []string `yaml:"patterns" validate:"dive,required"`

	// Replacement is the static text substituted for sensitive values.
	// Defaults to sanitizer.DefaultReplacement.
	Replacement string `yaml:"replacement" validate:"excluded_with=Hash"`

	// Hash replaces sensitive values with their hex digest under the named
	// algorithm, e.g. "sha256" or "shake_128". See sanitizer.HashNames.
	Hash string `yaml:"hash"`

	// HashLength is the digest length in bytes for the shake algorithms.
	HashLength int `yaml:"hash_length" validate:"gte=0,excluded_without=Hash"`

	// Message replaces text matching a pattern. Defaults to
	// sanitizer.DefaultMessage.
	Message string `yaml:"message"`

	// StructFields exposes exported struct fields (named by their json tags)
	// to key matching. Defaults to true.
	StructFields *bool `yaml:"struct_fields"`
}

// Load reads and validates the redaction settings from p.
func Load(p *configkit.YAMLProvider) (*Config, error) {
	return configkit.ProvideFromKey[Config](Key)(p)
}

// Options translates cfg into sanitizer options.
func (cfg *Config) Options() ([]sanitizer.Option, error) {
	opts := []sanitizer.Option{
		sanitizer.WithKeys(cfg.Keys...),
		sanitizer.WithPatterns(cfg.Patterns...),
	}
	switch {
	case cfg.Hash != "":
		r, err := sanitizer.HashByName(cfg.Hash, cfg.HashLength)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sanitizer.WithReplacement(r))
	case cfg.Replacement != "":
		opts = append(opts, sanitizer.WithReplacement(sanitizer.Static(cfg.Replacement)))
	}
	if cfg.Message != "" {
		opts = append(opts, sanitizer.WithMessage(cfg.Message))
	}
	if cfg.StructFields == nil || *cfg.StructFields {
		opts = append(opts, sanitizer.WithMappingView(
			sanitizer.ChainViews(sanitizer.MappableView, sanitizer.StructFields),
		))
	}
	return opts, nil
}

// New builds the sanitizer described by cfg.
func New(cfg *Config) (*sanitizer.Sanitizer, error) {
	if cfg == nil {
		return nil, errors.New("redact config is nil")
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return sanitizer.New(opts...)
}
