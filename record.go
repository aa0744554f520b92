// record.go: the immutable LogRecord and its supporting ordered data map.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"hash/fnv"
	"reflect"
	"sync"
	"time"
)

// Data is an insertion-ordered string-keyed map. Re-inserting an existing
// key overwrites its value in place without moving its position: a key's
// order is fixed by its first occurrence.
type Data struct {
	keys []string
	vals map[string]any
}

// NewData builds a Data from fields in order.
func NewData(fields ...Field) Data {
	d := Data{}
	for _, f := range fields {
		d.Set(f.Key, f.Value())
	}
	return d
}

// Set inserts or overwrites key, preserving first-insertion order.
func (d *Data) Set(key string, val any) {
	if d.vals == nil {
		d.vals = make(map[string]any)
	}
	if _, exists := d.vals[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = val
}

// Get returns the value for key and whether it was present.
func (d Data) Get(key string) (any, bool) {
	v, ok := d.vals[key]
	return v, ok
}

// Len reports the number of entries.
func (d Data) Len() int { return len(d.keys) }

// Range visits entries in insertion order.
func (d Data) Range(fn func(key string, val any)) {
	for _, k := range d.keys {
		fn(k, d.vals[k])
	}
}

// Merge returns a new Data formed by layering the given maps in order:
// later values win on key collision, and a key's position is fixed by its
// first occurrence across the whole merge.
func Merge(layers ...Data) Data {
	out := Data{}
	for _, layer := range layers {
		layer.Range(func(k string, v any) {
			out.Set(k, v)
		})
	}
	return out
}

// Message is either an eager string or a zero-argument callable evaluated
// lazily, exactly once, after the level gate passes.
type Message struct {
	eager string
	lazy  func() string
	isSet bool
}

// Msg wraps a pre-built string.
func Msg(s string) Message { return Message{eager: s, isSet: true} }

// LazyMsg wraps a callable invoked only when the record actually gets
// built, so a filtered-out call never pays the construction cost.
func LazyMsg(fn func() string) Message {
	var once sync.Once
	var s string
	return Message{lazy: func() string {
		once.Do(func() { s = fn() })
		return s
	}, isSet: true}
}

// Resolve evaluates the message, calling the lazy function if present.
func (m Message) Resolve() string {
	if m.lazy != nil {
		return m.lazy()
	}
	return m.eager
}

// IsSet reports whether a message was provided at all.
func (m Message) IsSet() bool { return m.isSet }

// InstanceMarker identifies a specific object a call originated from, for
// formatters that print e.g. "ClassName@a1b2".
type InstanceMarker struct {
	TypeName string
	Hash     uint16
}

// MarkerFor derives a stable InstanceMarker from an arbitrary instance's
// identity. For pointers, maps, channels and funcs the address is hashed;
// for other (non-identity-bearing) values the hash is derived from the type
// name alone, so all such values of one type share a marker.
func MarkerFor(instance any) InstanceMarker {
	if instance == nil {
		return InstanceMarker{}
	}
	t := reflect.TypeOf(instance)
	name := t.String()
	v := reflect.ValueOf(instance)
	var ptr uintptr
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		ptr = v.Pointer()
	default:
		h := fnv.New64a()
		h.Write([]byte(name))
		ptr = uintptr(h.Sum64())
	}
	h := fnv.New32a()
	h.Write([]byte{byte(ptr), byte(ptr >> 8), byte(ptr >> 16), byte(ptr >> 24)})
	return InstanceMarker{TypeName: name, Hash: uint16(h.Sum32())}
}

// CallerToken is an opaque, lazily-parsed backtrace handle. It is captured
// once at the call site (cheap: just runtime.Callers) and only walked into
// a CallerInfo on first access.
type CallerToken struct {
	pcs      []uintptr
	resolved bool
	info     CallerInfo
}

// FormatOptions carries per-call overrides passed through to formatters
// untouched by the core pipeline.
type FormatOptions struct {
	values map[string]any
}

// NewFormatOptions builds a FormatOptions from key/value pairs.
func NewFormatOptions(kv map[string]any) FormatOptions {
	return FormatOptions{values: kv}
}

// Get returns an override value by key.
func (o FormatOptions) Get(key string) (any, bool) {
	if o.values == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Record is the immutable bundle carrying one log event through the
// pipeline from the logger down to every writer.
type Record struct {
	Timestamp   time.Time
	Level       Level
	Message     Message
	Data        Data
	Err         error
	StackTrace  string
	LoggerName  string
	Instance    InstanceMarker
	Caller      *CallerToken
	FormatOpts  FormatOptions
}

// CallerInfo returns the resolved caller, parsing the token on first call
// and caching the result so later calls are O(1).
func (r *Record) CallerInfo() CallerInfo {
	if r.Caller == nil {
		return CallerInfo{}
	}
	return r.Caller.resolve()
}
