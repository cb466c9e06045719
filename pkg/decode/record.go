package decode

import (
	"encoding/json"
	"strconv"
)

// Record is a decoded agent response. Every field is optional; read it
// through the accessors below, which substitute a default instead of failing.
type Record map[string]any

// Has reports whether key is present, whatever its value.
func (r Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r[key]
	return ok
}

// String returns the text at key. Numbers and booleans are formatted;
// anything else yields "".
func (r Record) String(key string) string {
	if r == nil {
		return ""
	}
	return asText(r[key])
}

// Strings returns the text items of the list at key, skipping non-text
// items. The result is never nil.
func (r Record) Strings(key string) []string {
	items, _ := r.lookup(key).([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Records returns the object items of the list at key, skipping anything
// that is not an object. The result is never nil.
func (r Record) Records(key string) []Record {
	out := make([]Record, 0)
	switch items := r.lookup(key).(type) {
	case []any:
		for _, item := range items {
			if rec, ok := asRecord(item); ok {
				out = append(out, rec)
			}
		}
	case []map[string]any:
		for _, item := range items {
			if item != nil {
				out = append(out, item)
			}
		}
	case []Record:
		for _, item := range items {
			if item != nil {
				out = append(out, item)
			}
		}
	}
	return out
}

// Object returns the nested object at key, or an empty record.
func (r Record) Object(key string) Record {
	if rec, ok := asRecord(r.lookup(key)); ok {
		return rec
	}
	return Record{}
}

// Path walks nested objects. Missing steps yield an empty record.
func (r Record) Path(keys ...string) Record {
	cur := r
	if cur == nil {
		cur = Record{}
	}
	for _, k := range keys {
		cur = cur.Object(k)
	}
	return cur
}

// JSON re-encodes the record; an unencodable record yields "{}".
func (r Record) JSON() string {
	if r == nil {
		return "{}"
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (r Record) lookup(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return nil, false
		}
		return m, true
	case Record:
		if m == nil {
			return nil, false
		}
		return m, true
	}
	return nil, false
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
