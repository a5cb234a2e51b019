package sanitizer

import (
	"fmt"
	"math"
	"reflect"

	"github.com/shopspring/decimal"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindDecimal
	KindText
	KindSequence
	KindSet
	KindMapping
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindDecimal:  "decimal",
	KindText:     "text",
	KindSequence: "sequence",
	KindSet:      "set",
	KindMapping:  "mapping",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a dynamically typed tree: the input and output domain of a
// Sanitizer. The zero Value is Null.
//
// Values are immutable once built. Accessors that return slices hand out the
// backing storage; callers must not modify it.
type Value struct {
	kind    Kind
	b       bool
	isFloat bool
	i       int64
	f       float64
	dec     decimal.Decimal
	str     string
	elems   []Value
	entries []Entry
	opaque  any
}

// Entry is a single key/value pair of a Mapping. Mappings keep their entries
// in insertion order.
type Entry struct {
	Key   string
	Value Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integral Number.
func Int(i int64) Value { return Value{kind: KindNumber, i: i} }

// Float returns a floating-point Number.
func Float(f float64) Value { return Value{kind: KindNumber, isFloat: true, f: f} }

// Decimal returns an arbitrary-precision decimal Value.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }

// Text returns a string Value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Sequence returns an ordered list of values.
func Sequence(elems ...Value) Value { return Value{kind: KindSequence, elems: elems} }

// Set returns an unordered collection of values. Only membership is
// meaningful; element order is not.
func Set(elems ...Value) Value { return Value{kind: KindSet, elems: elems} }

// Mapping returns an ordered mapping. A repeated key keeps its first position
// and takes the last value, the same way a decoded JSON object behaves.
func Mapping(entries ...Entry) Value {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		if idx, ok := seen[e.Key]; ok {
			out[idx].Value = e.Value
			continue
		}
		seen[e.Key] = len(out)
		out = append(out, e)
	}
	return Value{kind: KindMapping, entries: out}
}

// Opaque wraps a host value that is none of the other variants. The
// Sanitizer resolves it through its MappingView or, failing that, through its
// textual representation.
func Opaque(v any) Value { return Value{kind: KindOpaque, opaque: v} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by a Bool value.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the integer held by a Number and whether the number is
// integral.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.isFloat {
		return int64(v.f), false
	}
	return v.i, true
}

// AsFloat returns a Number or Decimal as a float64.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindNumber:
		if v.isFloat {
			return v.f
		}
		return float64(v.i)
	case KindDecimal:
		return v.dec.InexactFloat64()
	default:
		return math.NaN()
	}
}

// IsFloat reports whether v is a non-integral Number.
func (v Value) IsFloat() bool { return v.kind == KindNumber && v.isFloat }

// AsDecimal returns the decimal held by a Decimal value.
func (v Value) AsDecimal() decimal.Decimal { return v.dec }

// AsText returns the string held by a Text value. Use String for a textual
// rendering of any kind.
func (v Value) AsText() string { return v.str }

// Elems returns the elements of a Sequence or Set.
func (v Value) Elems() []Value { return v.elems }

// Entries returns the entries of a Mapping in order.
func (v Value) Entries() []Entry { return v.entries }

// Underlying returns the host value wrapped by an Opaque value.
func (v Value) Underlying() any { return v.opaque }

// Len returns the number of elements or entries of a container and the byte
// length of Text.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence, KindSet:
		return len(v.elems)
	case KindMapping:
		return len(v.entries)
	case KindText:
		return len(v.str)
	default:
		return 0
	}
}

// Get looks up key in a Mapping.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Index returns the i-th element of a Sequence.
func (v Value) Index(i int) Value { return v.elems[i] }

// Equal reports whether v and o hold the same tree. Numbers compare by value
// regardless of integral form, Sets compare as multisets and Mappings compare
// entry by entry in order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if !v.isFloat && !o.isFloat {
			return v.i == o.i
		}
		return v.AsFloat() == o.AsFloat()
	case KindDecimal:
		return v.dec.Equal(o.dec)
	case KindText:
		return v.str == o.str
	case KindSequence:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindSet:
		return sameMembers(v.elems, o.elems)
	case KindMapping:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if v.entries[i].Key != o.entries[i].Key || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	case KindOpaque:
		return reflect.DeepEqual(v.opaque, o.opaque)
	}
	return false
}

func sameMembers(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && x.Equal(y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// String renders v as text: Text values verbatim, Opaque values through
// fmt.Sprint and every other kind as its JSON encoding. This is the coercion
// used by the Transform and Hash replacement policies.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.str
	case KindOpaque:
		return fmt.Sprint(v.opaque)
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprint(ToAny(v))
	}
	return string(b)
}

// Visitor handles every Value variant. Walk dispatches to exactly one method,
// so an implementation covers the whole domain by construction.
type Visitor interface {
	Null() (Value, error)
	Bool(b bool) (Value, error)
	Number(n Value) (Value, error)
	Decimal(d decimal.Decimal) (Value, error)
	Text(s string) (Value, error)
	Sequence(elems []Value) (Value, error)
	Set(elems []Value) (Value, error)
	Mapping(entries []Entry) (Value, error)
	Opaque(x any) (Value, error)
}

// Walk calls the Visitor method matching the kind of v.
func Walk(v Value, vis Visitor) (Value, error) {
	switch v.kind {
	case KindNull:
		return vis.Null()
	case KindBool:
		return vis.Bool(v.b)
	case KindNumber:
		return vis.Number(v)
	case KindDecimal:
		return vis.Decimal(v.dec)
	case KindText:
		return vis.Text(v.str)
	case KindSequence:
		return vis.Sequence(v.elems)
	case KindSet:
		return vis.Set(v.elems)
	case KindMapping:
		return vis.Mapping(v.entries)
	case KindOpaque:
		return vis.Opaque(v.opaque)
	}
	panic(fmt.Sprintf("sanitizer: unknown value kind %d", v.kind))
}
