// Package configkit provides a layered YAML configuration loader for fx
// applications, built on uber/config and go-playground/validator.
package configkit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/froppa/sanitary/kits/runtimeinfo"
	"github.com/go-playground/validator/v10"
	uber "go.uber.org/config"
	"go.uber.org/fx"
)

// validate is shared by every config struct. Field errors are reported by
// their yaml names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// Module wires the layered uber/config YAML provider into an fx application.
// It must be included for Provide and ProvideFromKey to resolve.
//
// Sources, lowest precedence first:
//  1. Custom sources from WithSources or WithEmbeddedBytes.
//  2. config/config.yml
//  3. config/config.local.yml
//  4. config/<service>.yml, where <service> is runtimeinfo.Name.
//  5. ${VAR} placeholders expanded from the environment.
func Module(opts ...ModuleOption) fx.Option {
	var cfg moduleOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	return fx.Provide(func() (*uber.YAML, error) {
		return load(cfg.extra...)
	})
}

// Provide loads the whole configuration into T. Shorthand for
// ProvideFromKey[T](uber.Root).
func Provide[T any]() func(*uber.YAML) (*T, error) {
	return ProvideFromKey[T](uber.Root)
}

// ProvideFromKey returns an fx constructor that populates T from the subtree
// at key and validates it against its `validate` tags. A missing key yields
// the zero T, which must itself pass validation.
func ProvideFromKey[T any](key string) func(provider *uber.YAML) (*T, error) {
	return func(provider *uber.YAML) (*T, error) {
		var cfg T
		if err := provider.Get(key).Populate(&cfg); err != nil {
			return nil, fmt.Errorf("config: could not populate key %q into %T: %w", key, cfg, err)
		}
		if err := validate.Struct(&cfg); err != nil {
			return nil, fmt.Errorf("config: validation failed for key %q (%T): %w", key, cfg, err)
		}
		return &cfg, nil
	}
}

// Issues flattens validation failures found in err into "path: rule" lines,
// with paths in yaml names relative to the populated key. Errors that carry
// no field failures are returned as a single line.
func Issues(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		rule := fe.Tag()
		if p := fe.Param(); p != "" {
			rule += "=" + p
		}
		out = append(out, path+": "+rule)
	}
	return out
}

// ModuleOption adds sources to Module or NewYAML.
type ModuleOption func(*moduleOpts)

// WithSources injects uber/config sources at the lowest precedence, e.g.
// defaults built in code.
func WithSources(srcs ...uber.YAMLOption) ModuleOption {
	return func(o *moduleOpts) {
		o.extra = append(o.extra, srcs...)
	}
}

// WithEmbeddedBytes adds a YAML payload, typically from //go:embed, as a
// low-precedence source.
func WithEmbeddedBytes(b []byte) ModuleOption {
	return WithSources(uber.Source(bytes.NewReader(b)))
}

type moduleOpts struct {
	extra []uber.YAMLOption
}

func load(extra ...uber.YAMLOption) (*uber.YAML, error) {
	opts := make([]uber.YAMLOption, 0, len(extra)+4)
	opts = append(opts, extra...)
	opts = append(opts, fileOptions("config")...)
	opts = append(opts, uber.Expand(os.LookupEnv))
	return uber.NewYAML(opts...)
}

// fileOptions returns sources for the standard files under dir that exist.
func fileOptions(dir string) []uber.YAMLOption {
	files := []string{
		filepath.Join(dir, "config.yml"),
		filepath.Join(dir, "config.local.yml"),
	}
	if name := strings.TrimSpace(runtimeinfo.Name); name != "" {
		files = append(files, filepath.Join(dir, name+".yml"))
	}

	var opts []uber.YAMLOption
	for _, path := range files {
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			opts = append(opts, uber.File(path))
		}
	}
	return opts
}
