// Package sanitizer redacts sensitive data from dynamically shaped values
// before they are logged.
//
// A Sanitizer is configured once with sensitive mapping keys, text patterns
// and a Replacement policy, and is then safe for concurrent use. Sanitize walks
// a Value and returns a new tree of the same shape:
//
//   - values under a sensitive key (compared case-insensitively) are replaced
//     as a whole by the Replacement policy;
//   - text that decodes as a JSON document is sanitized as that document;
//   - other text matching any pattern is replaced by the warning message;
//   - Decimals become floats and Opaque values are resolved through a
//     MappingView or their text form.
//
// Input nesting is not bounded and self-referential values are not detected.
package sanitizer

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// DefaultReplacement masks the value of a sensitive key.
	DefaultReplacement = "********"
	// DefaultMessage replaces text matching a sensitive pattern.
	DefaultMessage = "#### WARNING: Message replaced due to sensitive information."
)

// Sanitizer holds an immutable redaction configuration.
type Sanitizer struct {
	keys        KeyMatcher
	patterns    PatternMatcher
	replacement Replacement
	message     string
	view        MappingView
}

// Option configures New.
type Option func(*options)

type options struct {
	keys        []string
	patterns    []string
	replacement Replacement
	message     string
	view        MappingView
}

// WithKeys adds sensitive mapping keys.
func WithKeys(keys ...string) Option {
	return func(o *options) { o.keys = append(o.keys, keys...) }
}

// WithPatterns adds RE2 expressions that flag plain-text values.
func WithPatterns(patterns ...string) Option {
	return func(o *options) { o.patterns = append(o.patterns, patterns...) }
}

// WithReplacement sets the policy applied to values of sensitive keys.
func WithReplacement(r Replacement) Option {
	return func(o *options) { o.replacement = r }
}

// WithMessage sets the text substituted for pattern matches.
func WithMessage(msg string) Option {
	return func(o *options) { o.message = msg }
}

// WithMappingView sets how Opaque values are turned into mappings.
func WithMappingView(view MappingView) Option {
	return func(o *options) { o.view = view }
}

// New builds a Sanitizer. Patterns are compiled here; any invalid pattern
// fails construction.
func New(opts ...Option) (*Sanitizer, error) {
	o := options{
		replacement: Static(DefaultReplacement),
		message:     DefaultMessage,
		view:        MappableView,
	}
	for _, opt := range opts {
		opt(&o)
	}
	patterns, err := CompilePatterns(o.patterns...)
	if err != nil {
		return nil, err
	}
	if o.view == nil {
		o.view = MappableView
	}
	return &Sanitizer{
		keys:        NewKeyMatcher(o.keys...),
		patterns:    patterns,
		replacement: o.replacement,
		message:     o.message,
		view:        o.view,
	}, nil
}

// Must is like New but panics on error. Intended for package-level
// sanitizers built from constant configuration.
func Must(opts ...Option) *Sanitizer {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns the normalized sensitive keys.
func (s *Sanitizer) Keys() []string { return s.keys.Keys() }

// Patterns returns the pattern sources.
func (s *Sanitizer) Patterns() []string { return s.patterns.Sources() }

// Message returns the pattern warning message.
func (s *Sanitizer) Message() string { return s.message }

// Sanitize returns a redacted copy of v. The only errors are those returned
// by a caller-supplied Transform or Digest function or by the MappingView,
// passed through unmodified.
func (s *Sanitizer) Sanitize(v Value) (Value, error) {
	return Walk(v, walker{s})
}

// SanitizeAny converts x with FromAny, sanitizes it and converts the result
// back with ToAny.
func (s *Sanitizer) SanitizeAny(x any) (any, error) {
	out, err := s.Sanitize(FromAny(x))
	if err != nil {
		return nil, err
	}
	return ToAny(out), nil
}

// SanitizeText sanitizes a single string. The result is not necessarily Text:
// a string holding a JSON document comes back as the sanitized document.
func (s *Sanitizer) SanitizeText(text string) (Value, error) {
	return s.Sanitize(Text(text))
}

type walker struct{ s *Sanitizer }

var _ Visitor = walker{}

func (w walker) Null() (Value, error) { return Null(), nil }

func (w walker) Bool(b bool) (Value, error) { return Bool(b), nil }

func (w walker) Number(n Value) (Value, error) { return n, nil }

func (w walker) Decimal(d decimal.Decimal) (Value, error) { return Float(d.InexactFloat64()), nil }

func (w walker) Text(text string) (Value, error) {
	if doc, ok := parseEmbedded(text); ok {
		return w.s.Sanitize(doc)
	}
	if w.s.patterns.Matches(text) {
		return Text(w.s.message), nil
	}
	return Text(text), nil
}

func (w walker) Sequence(elems []Value) (Value, error) {
	out, err := w.each(elems)
	if err != nil {
		return Value{}, err
	}
	return Sequence(out...), nil
}

func (w walker) Set(elems []Value) (Value, error) {
	out, err := w.each(elems)
	if err != nil {
		return Value{}, err
	}
	return Set(out...), nil
}

func (w walker) each(elems []Value) ([]Value, error) {
	out := make([]Value, len(elems))
	for i, e := range elems {
		v, err := w.s.Sanitize(e)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (w walker) Mapping(entries []Entry) (Value, error) {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		var (
			v   Value
			err error
		)
		if w.s.keys.IsSensitive(e.Key) {
			v, err = w.s.replacement.Apply(e.Value)
		} else {
			v, err = w.s.Sanitize(e.Value)
		}
		if err != nil {
			return Value{}, err
		}
		out[i] = Entry{Key: e.Key, Value: v}
	}
	return Value{kind: KindMapping, entries: out}, nil
}

func (w walker) Opaque(x any) (Value, error) {
	entries, err := w.s.view(x)
	if errors.Is(err, ErrNoMappingView) {
		return w.Text(fmt.Sprint(x))
	}
	if err != nil {
		return Value{}, err
	}
	return w.Mapping(entries)
}

// parseEmbedded decodes text holding a complete JSON document. The leading
// byte check skips the decoder for ordinary prose.
func parseEmbedded(text string) (Value, bool) {
	i := 0
	for i < len(text) && isJSONSpace(text[i]) {
		i++
	}
	if i == len(text) {
		return Value{}, false
	}
	switch c := text[i]; {
	case c == '{', c == '[', c == '"', c == '-', c >= '0' && c <= '9', c == 't', c == 'f', c == 'n':
	default:
		return Value{}, false
	}
	v, err := ParseJSON([]byte(text))
	if err != nil {
		return Value{}, false
	}
	return v, true
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
