package configkit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	uber "go.uber.org/config"
)

// ErrNoSources is returned by NewYAML when no file or explicit source exists.
var ErrNoSources = errors.New("config: no configuration sources available")

// YAMLProvider aliases the uber/config provider used across the kits.
type YAMLProvider = uber.YAML

// Source aliases the uber/config YAML options (file, reader, expand).
type Source = uber.YAMLOption

// File returns a Source that loads YAML from path.
func File(path string) Source { return uber.File(path) }

// DefaultSources returns config/config.yml when it exists.
func DefaultSources() []Source {
	path := filepath.Join("config", "config.yml")
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return []Source{uber.File(path)}
	}
	return nil
}

// NewYAML builds a provider for command line tools. Precedence, lowest first:
//
//	config/config.yml -> $CONFIG -> sources passed in opts
//
// Environment placeholders are always expanded. A $CONFIG that does not name
// a regular file is an error, as is having no source at all.
func NewYAML(_ context.Context, opts ...ModuleOption) (*YAMLProvider, error) {
	var o moduleOpts
	for _, opt := range opts {
		opt(&o)
	}

	chain := make([]uber.YAMLOption, 0, 4)
	chain = append(chain, DefaultSources()...)

	if cfgPath, ok := os.LookupEnv("CONFIG"); ok {
		fi, err := os.Stat(cfgPath)
		if err != nil || fi.IsDir() {
			return nil, fmt.Errorf("config: CONFIG path %q not found or not a file", cfgPath)
		}
		chain = append(chain, uber.File(cfgPath))
	}

	chain = append(chain, o.extra...)
	if len(chain) == 0 {
		return nil, ErrNoSources
	}
	chain = append(chain, uber.Expand(os.LookupEnv))
	return uber.NewYAML(chain...)
}
