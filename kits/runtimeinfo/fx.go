// Package runtimeinfo holds build metadata injected with -ldflags:
//
//	go build -ldflags "\
//	  -X github.com/froppa/sanitary/kits/runtimeinfo.Name=sanitaryctl \
//	  -X github.com/froppa/sanitary/kits/runtimeinfo.Version=1.2.3 \
//	  -X github.com/froppa/sanitary/kits/runtimeinfo.Commit=$(git rev-parse HEAD) \
//	  -X github.com/froppa/sanitary/kits/runtimeinfo.Date=$(date -u +%FT%TZ)"
package runtimeinfo

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Name is the service or binary name.
	Name string

	// Description is a human-readable description of the service.
	Description string

	// Version is the semantic version of the build. Defaults to "dev".
	Version = "dev"

	// Commit is the VCS revision of the build.
	Commit string

	// Date is the UTC build timestamp.
	Date string

	// BuiltBy names the builder, e.g. a CI system.
	BuiltBy string

	// GoVersion is the toolchain version used to compile the binary.
	GoVersion string
)

// Meta is a snapshot of the build metadata.
type Meta struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
	Commit      string `json:"git_commit,omitempty" yaml:"git_commit,omitempty"`
	Date        string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	BuiltBy     string `json:"built_by,omitempty" yaml:"built_by,omitempty"`
	GoVersion   string `json:"go_version,omitempty" yaml:"go_version,omitempty"`
}

// GetMetadata returns the current build metadata.
func GetMetadata() Meta {
	return Meta{
		Name:        Name,
		Description: Description,
		Version:     Version,
		Commit:      Commit,
		Date:        Date,
		BuiltBy:     BuiltBy,
		GoVersion:   GoVersion,
	}
}

// Fields returns the non-empty build metadata as zap fields for root loggers.
func Fields() []zapcore.Field {
	m := GetMetadata()
	fields := make([]zapcore.Field, 0, 7)
	add := func(key, val string) {
		if val != "" {
			fields = append(fields, zap.String(key, val))
		}
	}
	add("name", m.Name)
	add("description", m.Description)
	add("version", m.Version)
	add("commit", m.Commit)
	add("build_date", m.Date)
	add("built_by", m.BuiltBy)
	add("go_version", m.GoVersion)
	return fields
}

// OTELAttributes returns the non-empty build metadata as OpenTelemetry
// resource attributes, using semantic convention keys where one exists.
func OTELAttributes() []attribute.KeyValue {
	m := GetMetadata()
	attrs := make([]attribute.KeyValue, 0, 7)
	add := func(kv attribute.KeyValue) {
		if kv.Value.AsString() != "" {
			attrs = append(attrs, kv)
		}
	}
	add(semconv.ServiceNameKey.String(m.Name))
	add(semconv.ServiceVersionKey.String(m.Version))
	add(attribute.String("service.description", m.Description))
	add(attribute.String("vcs.revision", m.Commit))
	add(semconv.ProcessRuntimeVersionKey.String(m.GoVersion))
	add(attribute.String("build.time", m.Date))
	add(attribute.String("build.user", m.BuiltBy))
	return attrs
}
