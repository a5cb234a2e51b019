package sanitizer

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/fatih/structs"
	"github.com/shopspring/decimal"
)

// ErrNoMappingView is returned by a MappingView that cannot expose the fields
// of a value. The Sanitizer then falls back to the value's text form; any
// other error from a view aborts the Sanitize call.
var ErrNoMappingView = errors.New("sanitizer: no mapping view")

// MappingView exposes an Opaque value as ordered mapping entries.
type MappingView func(x any) ([]Entry, error)

// Mappable is implemented by host types that know how to present themselves
// as a mapping.
type Mappable interface {
	AsMapping() ([]Entry, error)
}

// MappableView is the default MappingView: it accepts values implementing
// Mappable and nothing else.
func MappableView(x any) ([]Entry, error) {
	if m, ok := x.(Mappable); ok {
		return m.AsMapping()
	}
	return nil, ErrNoMappingView
}

// StructFields views a struct, or pointer to struct, as a mapping of its
// exported fields in declaration order. Field names follow `json` tags when
// present; fields tagged `json:"-"` are skipped.
func StructFields(x any) ([]Entry, error) {
	if x == nil || !structs.IsStruct(x) {
		return nil, ErrNoMappingView
	}
	if rv := reflect.ValueOf(x); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, ErrNoMappingView
	}
	s := structs.New(x)
	var entries []Entry
	for _, f := range s.Fields() {
		if !f.IsExported() {
			continue
		}
		name := f.Name()
		if tag := f.Tag("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		entries = append(entries, Entry{Key: name, Value: FromAny(f.Value())})
	}
	return entries, nil
}

// ChainViews tries each view in order and returns the first result that is
// not ErrNoMappingView.
func ChainViews(views ...MappingView) MappingView {
	return func(x any) ([]Entry, error) {
		for _, view := range views {
			entries, err := view(x)
			if errors.Is(err, ErrNoMappingView) {
				continue
			}
			return entries, err
		}
		return nil, ErrNoMappingView
	}
}

// FromAny converts a host value into a Value at the engine boundary.
//
// Scalars, json.Number and decimal.Decimal map onto their variants; slices
// and arrays become Sequences; maps become Mappings with keys sorted by their
// text form, except map[K]struct{} which becomes a Set. When distinct keys
// share a text form, such as 1 and "1" in a map[any]any, the key whose type
// name sorts first is kept and the others are dropped. Types implementing
// encoding.TextMarshaler or error become Text. Structs and anything else are
// wrapped as Opaque and left to the Sanitizer's MappingView.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case json.Number:
		v, err := numberFromJSON(t)
		if err != nil {
			return Text(t.String())
		}
		return v
	case decimal.Decimal:
		return Decimal(t)
	case *decimal.Decimal:
		if t == nil {
			return Null()
		}
		return Decimal(*t)
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = FromAny(e)
		}
		return Sequence(elems...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{Key: k, Value: FromAny(t[k])}
		}
		return Mapping(entries...)
	case encoding.TextMarshaler:
		if b, err := t.MarshalText(); err == nil {
			return Text(string(b))
		}
	case error:
		return Text(t.Error())
	}
	return fromReflect(x)
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromReflect(x any) Value {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}
		if rv.Elem().Kind() == reflect.Struct {
			return Opaque(x)
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		elems := make([]Value, rv.Len())
		for i := range elems {
			elems[i] = FromAny(rv.Index(i).Interface())
		}
		return Sequence(elems...)
	case reflect.Map:
		if rv.IsNil() {
			return Null()
		}
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		types := make([]string, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
			types[i] = fmt.Sprintf("%T", k.Interface())
		}
		order := make([]int, len(keys))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			ia, ib := order[a], order[b]
			if names[ia] != names[ib] {
				return names[ia] < names[ib]
			}
			return types[ia] < types[ib]
		})
		order = firstPerName(order, names)
		if rv.Type().Elem() == emptyStruct {
			elems := make([]Value, len(order))
			for i, idx := range order {
				elems[i] = FromAny(keys[idx].Interface())
			}
			return Set(elems...)
		}
		entries := make([]Entry, len(order))
		for i, idx := range order {
			entries[i] = Entry{Key: names[idx], Value: FromAny(rv.MapIndex(keys[idx]).Interface())}
		}
		return Mapping(entries...)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return Text(rv.String())
	}
	return Opaque(x)
}

var emptyStruct = reflect.TypeOf(struct{}{})

// firstPerName keeps the first index of each run of equal names in a sorted
// order.
func firstPerName(order []int, names []string) []int {
	out := make([]int, 0, len(order))
	for _, idx := range order {
		if len(out) > 0 && names[idx] == names[out[len(out)-1]] {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// ToAny converts a Value back into plain Go values: map[string]any, []any,
// int64, float64, bool, string and nil. Decimals stay decimal.Decimal and
// Opaque values return their host value.
func ToAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.isFloat {
			return v.f
		}
		return v.i
	case KindDecimal:
		return v.dec
	case KindText:
		return v.str
	case KindSequence, KindSet:
		out := make([]any, len(v.elems))
		for i, e := range v.elems {
			out[i] = ToAny(e)
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = ToAny(e.Value)
		}
		return out
	case KindOpaque:
		return v.opaque
	}
	return nil
}
