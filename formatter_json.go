// formatter_json.go: JSON. One object per record, canonical field names,
// manual byte-buffer encoding without reflection.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"fmt"
	"sort"
	"strconv"
)

// JSONFormatter writes "{"timestamp":...,"level":...,"message":...,
// ["logger":...],["data":{...}],["error":...],["stack_trace":...]}"; the
// writer appends the "\n" record separator after it.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (f *JSONFormatter) RequiresCallerInfo() bool { return false }
func (f *JSONFormatter) RecordSeparator() string  { return "\n" }

func (f *JSONFormatter) Format(rec *Record, buf []byte) ([]byte, error) {
	buf = append(buf, '{')

	buf = append(buf, `"timestamp":"`...)
	buf = append(buf, rec.Timestamp.Format("2006-01-02T15:04:05.000Z07:00")...)
	buf = append(buf, '"')

	buf = append(buf, `,"level":"`...)
	buf = append(buf, rec.Level.Name...)
	buf = append(buf, '"')

	buf = append(buf, `,"message":`...)
	if rec.Message.IsSet() {
		buf = appendJSONString(buf, rec.Message.Resolve())
	} else {
		buf = append(buf, "null"...)
	}

	if rec.LoggerName != "" {
		buf = append(buf, `,"logger":`...)
		buf = appendJSONString(buf, rec.LoggerName)
	}

	if rec.Data.Len() > 0 {
		buf = append(buf, `,"data":{`...)
		first := true
		rec.Data.Range(func(k string, v any) {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf = appendJSONString(buf, k)
			buf = append(buf, ':')
			buf = appendJSONValue(buf, v)
		})
		buf = append(buf, '}')
	}

	if rec.Err != nil {
		buf = append(buf, `,"error":`...)
		buf = appendJSONString(buf, rec.Err.Error())
	}

	if rec.StackTrace != "" {
		buf = append(buf, `,"stack_trace":`...)
		buf = appendJSONString(buf, rec.StackTrace)
	}

	buf = append(buf, '}')
	return buf, nil
}

func appendJSONValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return appendJSONString(buf, val)
	case bool:
		return strconv.AppendBool(buf, val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return append(buf, fmt.Sprintf("%d", val)...)
	case float32, float64:
		return append(buf, fmt.Sprintf("%g", val)...)
	case nil:
		return append(buf, "null"...)
	case error:
		return appendJSONString(buf, val.Error())
	case Data:
		buf = append(buf, '{')
		first := true
		val.Range(func(k string, nested any) {
			if !first {
				buf = append(buf, ',')
			}
			first = false
			buf = appendJSONString(buf, k)
			buf = append(buf, ':')
			buf = appendJSONValue(buf, nested)
		})
		return append(buf, '}')
	case map[string]any:
		// Plain maps carry no insertion order, so sort keys to keep the
		// output deterministic across otherwise-identical records.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSONString(buf, k)
			buf = append(buf, ':')
			buf = appendJSONValue(buf, val[k])
		}
		return append(buf, '}')
	case []any:
		buf = append(buf, '[')
		for i, nested := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSONValue(buf, nested)
		}
		return append(buf, ']')
	default:
		return appendJSONString(buf, fmt.Sprintf("%v", val))
	}
}

// appendJSONString quotes and backslash-escapes s, with a fast path for
// strings needing no escaping at all.
func appendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	if !needsEscaping(s) {
		buf = append(buf, s...)
		buf = append(buf, '"')
		return buf
	}
	for _, r := range s {
		switch r {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if r < 0x20 {
				buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
			} else {
				buf = append(buf, string(r)...)
			}
		}
	}
	buf = append(buf, '"')
	return buf
}

func needsEscaping(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' || c < 0x20 {
			return true
		}
	}
	return false
}
