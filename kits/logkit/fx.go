// Package logkit provides a configurable *zap.Logger for uber/fx applications.
//
// The module allows configuration for different environments (e.g., "production"
// for structured JSON logs, "development" for human-readable console logs)
// and log levels. When a *sanitizer.Sanitizer is present in the container,
// every entry is redacted by it before reaching the encoder.
package logkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/froppa/sanitary/kits/runtimeinfo"
	"github.com/froppa/sanitary/kits/sanitizer"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module provides a configured *zap.Logger and *zap.SugaredLogger to the Fx
// application container.
func Module() fx.Option {
	return fx.Options(
		// Provide a default config. Users can override this in their application
		// by providing their own logkit.Config.
		fx.Provide(func() Config {
			return Config{
				Encoding: "production",
				Level:    "info",
			}
		}),
		fx.Provide(newLogger),
		fx.Provide(func(log *zap.Logger) *zap.SugaredLogger {
			return log.Sugar()
		}),
		fx.Invoke(RegisterHooks),
	)
}

// Config defines the configuration for the logger.
type Config struct {
	// Encoding sets the logger's output format. Use "production|json" for JSON
	// or "development" for a human-readable console format.
	Encoding string `yaml:"encoding" validate:"required,oneof=production prod json development dev console"`

	// Level is the minimum log level to record, e.g., "debug", "info", "warn".
	Level string `yaml:"level" validate:"required,oneof=debug info warn error dpanic panic fatal"`

	// OutputPaths are zap sink URLs or file paths. Defaults to stderr.
	OutputPaths []string `yaml:"output_paths" validate:"dive,required"`
}

// Option customizes New.
type Option func(*options)

type options struct {
	sanitizer     *sanitizer.Sanitizer
	meterProvider metric.MeterProvider
}

// WithSanitizer redacts every entry written by the logger with s.
func WithSanitizer(s *sanitizer.Sanitizer) Option {
	return func(o *options) { o.sanitizer = s }
}

// WithMeterProvider records sanitizer counters on mp instead of the global
// otel meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

type loggerParams struct {
	fx.In

	Config    Config
	Sanitizer *sanitizer.Sanitizer `optional:"true"`
}

func newLogger(p loggerParams) (*zap.Logger, error) {
	var opts []Option
	if p.Sanitizer != nil {
		opts = append(opts, WithSanitizer(p.Sanitizer))
	}
	return New(p.Config, opts...)
}

// New constructs a new *zap.Logger based on the provided configuration.
// It enriches the logger with application metadata from the runtimeinfo package.
func New(cfg Config, opts ...Option) (*zap.Logger, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var zapCfg zap.Config
	switch strings.ToLower(cfg.Encoding) {
	case "prod", "production", "json":
		zapCfg = zap.NewProductionConfig()
	case "dev", "development", "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	default:
		return nil, fmt.Errorf("unknown logger encoding: %q", cfg.Encoding)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	var buildOpts []zap.Option
	if o.sanitizer != nil {
		proc := NewProcessor(o.sanitizer)
		var coreOpts []CoreOption
		if o.meterProvider != nil {
			coreOpts = append(coreOpts, WithCoreMeterProvider(o.meterProvider))
		}
		buildOpts = append(buildOpts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return NewCore(c, proc, coreOpts...)
		}))
	}

	logger, err := zapCfg.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	return logger.With(runtimeinfo.Fields()...), nil
}

// RegisterHooks attaches OnStart and OnStop hooks to the application lifecycle.
func RegisterHooks(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Service starting",
				zap.String("service", runtimeinfo.Name),
				zap.String("version", runtimeinfo.Version),
				zap.String("commit", runtimeinfo.Commit),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Service stopping")
			// Sync errors are ignored: on Linux they are usually a benign
			// "inappropriate ioctl for device" from stderr.
			_ = log.Sync()
			return nil
		},
	})
}
