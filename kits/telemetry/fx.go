// Package telemetry provides an OpenTelemetry module for uber/fx.
//
// It builds SDK tracer and meter providers, exports over OTLP/gRPC when an
// endpoint is configured and installs both globally. logkit records its
// sanitizer counters on the global meter and redactkit opens its spans on the
// global tracer.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/froppa/sanitary/kits/configkit"
	"github.com/froppa/sanitary/kits/runtimeinfo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the tracer and meter providers with a service tracer and
// meter, installs them globally and flushes them on stop.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(configkit.ProvideFromKey[Config]("telemetry")),
		fx.Provide(NewProviders),
		fx.Invoke(registerShutdown),
		fx.Invoke(installGlobals),
	)
}

type globalDeps struct {
	fx.In
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

func installGlobals(d globalDeps) {
	if d.TracerProvider != nil {
		otel.SetTracerProvider(d.TracerProvider)
	}
	if d.MeterProvider != nil {
		otel.SetMeterProvider(d.MeterProvider)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
}

// Config defines the telemetry settings, loaded from the "telemetry" key.
type Config struct {
	// ServiceName identifies the service. Overridden by OTEL_SERVICE_NAME.
	ServiceName string `yaml:"service_name"`

	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version"`

	// Environment is the deployment environment, e.g. "production".
	Environment string `yaml:"environment"`

	// OTLPEndpoint is the host:port of the OTLP collector. Setting it enables
	// trace and metric export unless TracingEnabled or MetricsEnabled say
	// otherwise. Overridden by OTEL_EXPORTER_OTLP_ENDPOINT.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Disabled turns the SDK off: spans are never sampled and instruments
	// record into a provider with no reader. Overridden by OTEL_SDK_DISABLED.
	Disabled *bool `yaml:"disabled"`

	// TracingEnabled forces span export on or off. Unset means "on when an
	// endpoint is configured".
	TracingEnabled *bool `yaml:"tracing_enabled"`

	// MetricsEnabled forces export on or off. Unset means "on when an
	// endpoint is configured".
	MetricsEnabled *bool `yaml:"metrics_enabled"`

	// TraceSampler is one of parent_ratio (default), always_on or always_off.
	TraceSampler string `yaml:"trace_sampler" validate:"omitempty,oneof=parent_ratio always_on always_off"`

	// TraceSampleRate is the ratio used by parent_ratio. Defaults to 1.
	TraceSampleRate float64 `yaml:"trace_sample_rate" validate:"gte=0,lte=1"`

	// ExportInterval is the periodic metric export interval. Defaults to 30s.
	ExportInterval time.Duration `yaml:"export_interval" validate:"gte=0"`

	// ResourceAttributes are extra resource key-value pairs.
	ResourceAttributes map[string]string `yaml:"resource_attributes" validate:"omitempty,dive,keys,required,endkeys,required"`
}

// Result provides the telemetry components to the container.
type Result struct {
	fx.Out
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
}

// NewProviders builds the tracer and meter providers described by cfg.
func NewProviders(ctx context.Context, cfg *Config, log *zap.Logger) (Result, error) {
	out := Result{}
	if cfg == nil {
		return out, errors.New("telemetry config is nil")
	}

	applyConfigDefaults(cfg)

	res, err := buildResource(*cfg)
	if err != nil {
		return out, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	if *cfg.Disabled {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.NeverSample()),
			sdktrace.WithResource(res),
		)
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		out.TracerProvider, out.Tracer = tp, tp.Tracer(cfg.ServiceName)
		out.MeterProvider, out.Meter = mp, mp.Meter(cfg.ServiceName)
		log.Info("telemetry disabled")
		return out, nil
	}

	tp, err := buildTracerProvider(ctx, *cfg, res)
	if err != nil {
		return out, err
	}
	out.TracerProvider, out.Tracer = tp, tp.Tracer(cfg.ServiceName)

	mp, err := buildMeterProvider(ctx, *cfg, res)
	if err != nil {
		return out, errors.Join(err, tp.Shutdown(ctx))
	}
	out.MeterProvider, out.Meter = mp, mp.Meter(cfg.ServiceName)

	if *cfg.TracingEnabled && cfg.OTLPEndpoint == "" {
		log.Warn("tracing enabled but no OTLP endpoint set")
	}
	if *cfg.MetricsEnabled && cfg.OTLPEndpoint == "" {
		log.Warn("metrics enabled but no OTLP endpoint set")
	}

	log.Info("telemetry initialized",
		zap.String("service.name", cfg.ServiceName),
		zap.String("service.version", cfg.ServiceVersion),
		zap.String("deployment.environment", cfg.Environment),
		zap.Bool("tracing.enabled", *cfg.TracingEnabled),
		zap.Bool("metrics.enabled", *cfg.MetricsEnabled),
		zap.String("otlp.endpoint", cfg.OTLPEndpoint),
		zap.Duration("export.interval", cfg.ExportInterval),
	)
	return out, nil
}

// applyConfigDefaults fills cfg from the environment, runtimeinfo and fixed
// defaults, in that order of precedence.
func applyConfigDefaults(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); v != "" {
		cfg.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("OTEL_SERVICE_NAME")); v != "" {
		cfg.ServiceName = v
	}
	if v := strings.TrimSpace(os.Getenv("OTEL_SDK_DISABLED")); v != "" {
		if disabled, err := strconv.ParseBool(v); err == nil {
			cfg.Disabled = &disabled
		}
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = runtimeinfo.Name
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = runtimeinfo.Version
	}
	if cfg.Environment == "" {
		cfg.Environment = coalesceEnv("ENV", "APP_ENV", "GO_ENV")
		if cfg.Environment == "" {
			cfg.Environment = "dev"
		}
	}
	if cfg.TraceSampleRate <= 0 {
		cfg.TraceSampleRate = 1
	}
	if cfg.ExportInterval <= 0 {
		cfg.ExportInterval = 30 * time.Second
	}

	setDefaultBool(&cfg.Disabled, false)
	byEndpoint := cfg.OTLPEndpoint != "" && !*cfg.Disabled
	setDefaultBool(&cfg.TracingEnabled, byEndpoint)
	setDefaultBool(&cfg.MetricsEnabled, byEndpoint)
	if *cfg.Disabled {
		off := false
		cfg.TracingEnabled, cfg.MetricsEnabled = &off, &off
	}
}

// buildResource merges the SDK defaults, the configured identity, build
// metadata and extra configured attributes.
func buildResource(cfg Config) (*sdkresource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	}
	if *cfg.Disabled {
		attrs = append(attrs, attribute.Bool("otel.sdk.disabled", true))
	}

	extra := make([]attribute.KeyValue, 0, len(cfg.ResourceAttributes))
	for k, v := range cfg.ResourceAttributes {
		extra = append(extra, attribute.String(k, v))
	}

	res := sdkresource.Default()
	for _, layer := range [][]attribute.KeyValue{attrs, runtimeinfo.OTELAttributes(), extra} {
		var err error
		res, err = sdkresource.Merge(res, sdkresource.NewWithAttributes(semconv.SchemaURL, layer...))
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

type shutdownDeps struct {
	fx.In

	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Logger         *zap.Logger
	LC             fx.Lifecycle
}

// registerShutdown flushes and stops both providers when the app stops.
func registerShutdown(params shutdownDeps) {
	params.LC.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("shutting down telemetry providers")
			// fx's stop context may already be close to its deadline.
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return errors.Join(
				shutdownMeter(ctx, params.MeterProvider, params.Logger),
				shutdownTracer(ctx, params.TracerProvider, params.Logger),
			)
		},
	})
}

func buildTracerProvider(ctx context.Context, cfg Config, res *sdkresource.Resource) (*sdktrace.TracerProvider, error) {
	var sampler sdktrace.Sampler
	switch cfg.TraceSampler {
	case "always_on":
		sampler = sdktrace.AlwaysSample()
	case "always_off":
		sampler = sdktrace.NeverSample()
	case "parent_ratio", "":
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))
	default:
		return nil, fmt.Errorf("unknown trace sampler: %q", cfg.TraceSampler)
	}

	if !*cfg.TracingEnabled || cfg.OTLPEndpoint == "" {
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		), nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	), nil
}

func buildMeterProvider(ctx context.Context, cfg Config, res *sdkresource.Resource) (*sdkmetric.MeterProvider, error) {
	if !*cfg.MetricsEnabled || cfg.OTLPEndpoint == "" {
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.ExportInterval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}

func shutdownTracer(ctx context.Context, tp *sdktrace.TracerProvider, log *zap.Logger) error {
	if tp == nil {
		return nil
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("failed to shut down telemetry tracer provider", zap.Error(err))
		return err
	}
	return nil
}

func shutdownMeter(ctx context.Context, mp *sdkmetric.MeterProvider, log *zap.Logger) error {
	if mp == nil {
		return nil
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("failed to shut down telemetry meter provider", zap.Error(err))
		return err
	}
	return nil
}

// coalesceEnv returns the first non-empty environment variable among keys.
func coalesceEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func setDefaultBool(b **bool, def bool) {
	if *b == nil {
		*b = &def
	}
}
