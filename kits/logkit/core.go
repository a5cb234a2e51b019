package logkit

import (
	"context"
	"fmt"
	"sort"

	"github.com/froppa/sanitary/kits/sanitizer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MessageKey is the event key the log message is sanitized under.
const MessageKey = "event"

const meterName = "github.com/froppa/sanitary/kits/logkit"

// Processor rewrites a log event before it is encoded. logger is the zap
// logger name and method the entry level, or "with" for fields bound by
// Logger.With.
type Processor func(logger, method string, event sanitizer.Value) (sanitizer.Value, error)

// NewProcessor returns a Processor that redacts events with s.
func NewProcessor(s *sanitizer.Sanitizer) Processor {
	return func(_, _ string, event sanitizer.Value) (sanitizer.Value, error) {
		return s.Sanitize(event)
	}
}

// CoreOption customizes NewCore.
type CoreOption func(*coreOptions)

type coreOptions struct {
	meterProvider metric.MeterProvider
}

// WithCoreMeterProvider records counters on mp instead of the global provider.
func WithCoreMeterProvider(mp metric.MeterProvider) CoreOption {
	return func(o *coreOptions) { o.meterProvider = mp }
}

type sanitizingCore struct {
	inner    zapcore.Core
	proc     Processor
	entries  metric.Int64Counter
	failures metric.Int64Counter
}

// NewCore wraps inner so that every entry message and field passes through
// proc before being written. An entry whose fields cannot be processed is
// dropped and Write returns the error; zap reports it on its ErrorOutput.
func NewCore(inner zapcore.Core, proc Processor, opts ...CoreOption) zapcore.Core {
	var o coreOptions
	for _, opt := range opts {
		opt(&o)
	}
	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	entries := counter(meter, "logkit.sanitize.entries", "Log entries passed through the sanitizer.")
	failures := counter(meter, "logkit.sanitize.failures", "Log entries dropped because sanitization failed.")

	return &sanitizingCore{inner: inner, proc: proc, entries: entries, failures: failures}
}

// counter falls back to a no-op instrument when meter cannot create one.
func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil || c == nil {
		return noop.Int64Counter{}
	}
	return c
}

func (c *sanitizingCore) Enabled(lvl zapcore.Level) bool { return c.inner.Enabled(lvl) }

func (c *sanitizingCore) With(fields []zapcore.Field) zapcore.Core {
	clean, err := c.process("", "with", fields)
	if err != nil {
		clean = []zapcore.Field{zap.NamedError("sanitizer_error", err)}
	}
	return &sanitizingCore{
		inner:    c.inner.With(clean),
		proc:     c.proc,
		entries:  c.entries,
		failures: c.failures,
	}
}

func (c *sanitizingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *sanitizingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	attrs := metric.WithAttributes(attribute.String("level", ent.Level.String()))
	msg, err := c.message(ent)
	if err == nil {
		fields, err = c.process(ent.LoggerName, ent.Level.String(), fields)
	}
	if err != nil {
		c.failures.Add(context.Background(), 1, attrs)
		return fmt.Errorf("logkit: sanitize entry: %w", err)
	}
	c.entries.Add(context.Background(), 1, attrs)
	ent.Message = msg
	return c.inner.Write(ent, fields)
}

func (c *sanitizingCore) Sync() error { return c.inner.Sync() }

func (c *sanitizingCore) message(ent zapcore.Entry) (string, error) {
	if ent.Message == "" {
		return "", nil
	}
	event := sanitizer.Mapping(sanitizer.Entry{Key: MessageKey, Value: sanitizer.Text(ent.Message)})
	out, err := c.proc(ent.LoggerName, ent.Level.String(), event)
	if err != nil {
		return "", err
	}
	if v, ok := out.Get(MessageKey); ok {
		return v.String(), nil
	}
	return "", nil
}

func (c *sanitizingCore) process(logger, method string, fields []zapcore.Field) ([]zapcore.Field, error) {
	if len(fields) == 0 {
		return fields, nil
	}
	out, err := c.proc(logger, method, eventOf(fields))
	if err != nil {
		return nil, err
	}
	if out.Kind() != sanitizer.KindMapping {
		return nil, fmt.Errorf("processor returned %s, want mapping", out.Kind())
	}
	return []zapcore.Field{zap.Inline(object(out))}, nil
}

// eventOf renders fields through a map encoder and orders the resulting keys
// by the field that first produced them.
func eventOf(fields []zapcore.Field) sanitizer.Value {
	enc := zapcore.NewMapObjectEncoder()
	seen := make(map[string]struct{}, len(fields))
	entries := make([]sanitizer.Entry, 0, len(fields))
	for _, f := range fields {
		f.AddTo(enc)
		var added []string
		for k := range enc.Fields {
			if _, ok := seen[k]; !ok {
				added = append(added, k)
			}
		}
		sort.Strings(added)
		for _, k := range added {
			seen[k] = struct{}{}
			entries = append(entries, sanitizer.Entry{Key: k})
		}
	}
	for i := range entries {
		entries[i].Value = sanitizer.FromAny(enc.Fields[entries[i].Key])
	}
	return sanitizer.Mapping(entries...)
}
