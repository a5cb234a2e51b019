package configkit

import (
	"errors"
	"strings"

	"github.com/froppa/sanitary/kits/sanitizer"
	"github.com/shopspring/decimal"
)

// RedactMask replaces secret values in Redact output.
const RedactMask = "***"

var secretWords = []string{"password", "passwd", "secret", "token", "apikey", "key", "dsn", "cookie", "bearer", "credential"}

// Redact masks secret-looking values within v for display. A mapping key is
// secret when it contains one of the secret words, e.g. "db_password" or
// "api_key". If key itself looks secret the whole subtree is masked.
//
// Strings are shown as strings. A string holding a JSON object or array is
// searched as well and, when it contains secrets, re-encoded with them masked.
// The result is built from plain maps, slices and scalars, with map keys
// rendered as strings.
func Redact(key string, v any) any {
	if isSecretKey(lastSegment(key)) {
		return RedactMask
	}
	out, err := sanitizer.Walk(sanitizer.FromAny(v), secretMasker{})
	if err != nil {
		return RedactMask
	}
	return sanitizer.ToAny(out)
}

// secretMasker decides per mapping key whether its value is shown.
type secretMasker struct{}

var _ sanitizer.Visitor = secretMasker{}

func (secretMasker) Null() (sanitizer.Value, error) { return sanitizer.Null(), nil }

func (secretMasker) Bool(b bool) (sanitizer.Value, error) { return sanitizer.Bool(b), nil }

func (secretMasker) Number(n sanitizer.Value) (sanitizer.Value, error) { return n, nil }

func (secretMasker) Decimal(d decimal.Decimal) (sanitizer.Value, error) {
	return sanitizer.Decimal(d), nil
}

func (m secretMasker) Text(s string) (sanitizer.Value, error) {
	doc, err := sanitizer.ParseJSON([]byte(s))
	if err != nil {
		return sanitizer.Text(s), nil
	}
	if k := doc.Kind(); k != sanitizer.KindMapping && k != sanitizer.KindSequence {
		return sanitizer.Text(s), nil
	}
	masked, err := sanitizer.Walk(doc, m)
	if err != nil {
		return sanitizer.Value{}, err
	}
	if masked.Equal(doc) {
		return sanitizer.Text(s), nil
	}
	return sanitizer.Text(masked.String()), nil
}

func (m secretMasker) Sequence(elems []sanitizer.Value) (sanitizer.Value, error) {
	out, err := m.each(elems)
	if err != nil {
		return sanitizer.Value{}, err
	}
	return sanitizer.Sequence(out...), nil
}

func (m secretMasker) Set(elems []sanitizer.Value) (sanitizer.Value, error) {
	out, err := m.each(elems)
	if err != nil {
		return sanitizer.Value{}, err
	}
	return sanitizer.Set(out...), nil
}

func (m secretMasker) each(elems []sanitizer.Value) ([]sanitizer.Value, error) {
	out := make([]sanitizer.Value, len(elems))
	for i, e := range elems {
		v, err := sanitizer.Walk(e, m)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m secretMasker) Mapping(entries []sanitizer.Entry) (sanitizer.Value, error) {
	out := make([]sanitizer.Entry, len(entries))
	for i, e := range entries {
		if isSecretKey(e.Key) {
			out[i] = sanitizer.Entry{Key: e.Key, Value: sanitizer.Text(RedactMask)}
			continue
		}
		v, err := sanitizer.Walk(e.Value, m)
		if err != nil {
			return sanitizer.Value{}, err
		}
		out[i] = sanitizer.Entry{Key: e.Key, Value: v}
	}
	return sanitizer.Mapping(out...), nil
}

func (m secretMasker) Opaque(x any) (sanitizer.Value, error) {
	entries, err := sanitizer.StructFields(x)
	if errors.Is(err, sanitizer.ErrNoMappingView) {
		return sanitizer.Opaque(x), nil
	}
	if err != nil {
		return sanitizer.Value{}, err
	}
	return m.Mapping(entries)
}

func isSecretKey(k string) bool {
	low := strings.ToLower(k)
	for _, w := range secretWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

func lastSegment(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}
