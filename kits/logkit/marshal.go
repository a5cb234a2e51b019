package logkit

import (
	"github.com/froppa/sanitary/kits/sanitizer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// object encodes a Mapping value as a zap object, preserving key order.
type object sanitizer.Value

func (o object) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, e := range sanitizer.Value(o).Entries() {
		if err := addField(enc, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// array encodes a Sequence or Set value as a zap array.
type array sanitizer.Value

func (a array) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, v := range sanitizer.Value(a).Elems() {
		if err := appendElem(enc, v); err != nil {
			return err
		}
	}
	return nil
}

// Field converts a sanitized value into a zap field.
func Field(key string, v sanitizer.Value) zapcore.Field {
	switch v.Kind() {
	case sanitizer.KindNull:
		return zap.Reflect(key, nil)
	case sanitizer.KindBool:
		return zap.Bool(key, v.AsBool())
	case sanitizer.KindNumber:
		if n, ok := v.AsInt(); ok {
			return zap.Int64(key, n)
		}
		return zap.Float64(key, v.AsFloat())
	case sanitizer.KindText:
		return zap.String(key, v.AsText())
	case sanitizer.KindSequence, sanitizer.KindSet:
		return zap.Array(key, array(v))
	case sanitizer.KindMapping:
		return zap.Object(key, object(v))
	default:
		return zap.Stringer(key, v)
	}
}

func addField(enc zapcore.ObjectEncoder, key string, v sanitizer.Value) error {
	switch v.Kind() {
	case sanitizer.KindNull:
		return enc.AddReflected(key, nil)
	case sanitizer.KindBool:
		enc.AddBool(key, v.AsBool())
	case sanitizer.KindNumber:
		if n, ok := v.AsInt(); ok {
			enc.AddInt64(key, n)
		} else {
			enc.AddFloat64(key, v.AsFloat())
		}
	case sanitizer.KindText:
		enc.AddString(key, v.AsText())
	case sanitizer.KindSequence, sanitizer.KindSet:
		return enc.AddArray(key, array(v))
	case sanitizer.KindMapping:
		return enc.AddObject(key, object(v))
	default:
		enc.AddString(key, v.String())
	}
	return nil
}

func appendElem(enc zapcore.ArrayEncoder, v sanitizer.Value) error {
	switch v.Kind() {
	case sanitizer.KindNull:
		return enc.AppendReflected(nil)
	case sanitizer.KindBool:
		enc.AppendBool(v.AsBool())
	case sanitizer.KindNumber:
		if n, ok := v.AsInt(); ok {
			enc.AppendInt64(n)
		} else {
			enc.AppendFloat64(v.AsFloat())
		}
	case sanitizer.KindText:
		enc.AppendString(v.AsText())
	case sanitizer.KindSequence, sanitizer.KindSet:
		return enc.AppendArray(array(v))
	case sanitizer.KindMapping:
		return enc.AppendObject(object(v))
	default:
		enc.AppendString(v.String())
	}
	return nil
}
