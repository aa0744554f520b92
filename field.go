// field.go: typed key/value pairs attached to a log record's data map.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"fmt"
	"time"
)

type kind uint8

const (
	kindString kind = iota
	kindInt64
	kindUint64
	kindFloat64
	kindBool
	kindDuration
	kindTime
	kindBytes
	kindObject
)

// Field is a single structured key/value pair, stored as a tagged union so
// common scalar types avoid boxing in interface{}.
type Field struct {
	Key string
	k   kind
	i64 int64
	u64 uint64
	f64 float64
	str string
	b   []byte
	obj any
}

func Str(key, val string) Field   { return Field{Key: key, k: kindString, str: val} }
func Int(key string, v int) Field { return Field{Key: key, k: kindInt64, i64: int64(v)} }
func Int64(key string, v int64) Field { return Field{Key: key, k: kindInt64, i64: v} }
func Uint64(key string, v uint64) Field { return Field{Key: key, k: kindUint64, u64: v} }
func Float64(key string, v float64) Field { return Field{Key: key, k: kindFloat64, f64: v} }
func Bool(key string, v bool) Field {
	var i int64
	if v {
		i = 1
	}
	return Field{Key: key, k: kindBool, i64: i}
}
func Dur(key string, v time.Duration) Field {
	return Field{Key: key, k: kindDuration, i64: int64(v)}
}
func TimeField(key string, v time.Time) Field {
	return Field{Key: key, k: kindTime, i64: v.UnixNano()}
}
func Bytes(key string, v []byte) Field { return Field{Key: key, k: kindBytes, b: v} }

// Object wraps any value opaque to the field system; formatters fall back
// to fmt.Sprintf("%v", ...) or a Stringer implementation.
func Object(key string, v any) Field { return Field{Key: key, k: kindObject, obj: v} }

// Err attaches an error under the conventional key "error".
func Err(err error) Field { return Object("error", err) }

// NamedErr attaches an error under a caller-chosen key.
func NamedErr(key string, err error) Field { return Object(key, err) }

// Value returns the field's value boxed as any, for generic consumers
// (formatters, the ordered data map) that don't need the typed accessor.
func (f Field) Value() any {
	switch f.k {
	case kindString:
		return f.str
	case kindInt64:
		return f.i64
	case kindUint64:
		return f.u64
	case kindFloat64:
		return f.f64
	case kindBool:
		return f.i64 != 0
	case kindDuration:
		return time.Duration(f.i64)
	case kindTime:
		return time.Unix(0, f.i64)
	case kindBytes:
		return f.b
	default:
		return f.obj
	}
}

// String renders the field's value the way a text formatter would, without
// quoting — callers needing quoted/escaped output do that themselves.
func (f Field) String() string {
	switch f.k {
	case kindString:
		return f.str
	case kindInt64:
		return fmt.Sprintf("%d", f.i64)
	case kindUint64:
		return fmt.Sprintf("%d", f.u64)
	case kindFloat64:
		return fmt.Sprintf("%g", f.f64)
	case kindBool:
		return fmt.Sprintf("%t", f.i64 != 0)
	case kindDuration:
		return time.Duration(f.i64).String()
	case kindTime:
		return time.Unix(0, f.i64).Format(time.RFC3339Nano)
	case kindBytes:
		return string(f.b)
	default:
		if s, ok := f.obj.(fmt.Stringer); ok {
			return s.String()
		}
		if err, ok := f.obj.(error); ok {
			return err.Error()
		}
		return fmt.Sprintf("%v", f.obj)
	}
}
