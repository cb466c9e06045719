package decode

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// RawResponse is whatever an agent call handed back. It is only read.
type RawResponse = any

// Reason names why a response could not be decoded.
type Reason string

const (
	ReasonEmpty           Reason = "empty"
	ReasonUnparseable     Reason = "unparseable"
	ReasonUnsupportedType Reason = "unsupported-type"
)

var (
	ErrEmptyInput      = errors.New("decode: empty input")
	ErrUnparseableText = errors.New("decode: unparseable text")
	ErrUnsupportedType = errors.New("decode: unsupported input type")
)

// Outcome is either a decoded record or a failure reason, never both.
type Outcome struct {
	record Record
	reason Reason
}

// Decoded wraps a successfully decoded record.
func Decoded(rec Record) Outcome {
	if rec == nil {
		rec = Record{}
	}
	return Outcome{record: rec}
}

// Failed builds a failure outcome for the given reason. An empty reason
// is treated as unparseable so the result never reads as decoded.
func Failed(reason Reason) Outcome {
	if reason == "" {
		reason = ReasonUnparseable
	}
	return Outcome{reason: reason}
}

// OK reports whether the outcome carries a record.
func (o Outcome) OK() bool { return o.reason == "" }

// Record returns the decoded record, or nil for a failed outcome.
func (o Outcome) Record() Record {
	if !o.OK() {
		return nil
	}
	return o.record
}

// Reason returns the failure reason, empty when decoding succeeded.
func (o Outcome) Reason() Reason { return o.reason }

// Err maps the failure reason onto its sentinel error.
func (o Outcome) Err() error {
	switch o.reason {
	case "":
		return nil
	case ReasonEmpty:
		return ErrEmptyInput
	case ReasonUnparseable:
		return ErrUnparseableText
	default:
		return ErrUnsupportedType
	}
}

func (o Outcome) String() string {
	if o.OK() {
		return "decoded"
	}
	return "failed(" + string(o.reason) + ")"
}

// Decode turns a raw agent response into a record. Mappings pass through
// untouched; text is parsed strictly first and then by taking the span from
// the first '{' to the last '}'. Decode never panics.
func Decode(raw RawResponse) Outcome {
	switch v := raw.(type) {
	case nil:
		return Failed(ReasonEmpty)
	case Record:
		if v == nil {
			return Failed(ReasonEmpty)
		}
		return Outcome{record: v}
	case map[string]any:
		if v == nil {
			return Failed(ReasonEmpty)
		}
		return Outcome{record: v}
	case string:
		return decodeText(v)
	case *string:
		if v == nil {
			return Failed(ReasonEmpty)
		}
		return decodeText(*v)
	case json.RawMessage:
		if v == nil {
			return Failed(ReasonEmpty)
		}
		return decodeText(string(v))
	case []byte:
		if v == nil {
			return Failed(ReasonEmpty)
		}
		return decodeText(string(v))
	}
	if isNilValue(raw) {
		return Failed(ReasonEmpty)
	}
	return Failed(ReasonUnsupportedType)
}

// DecodeFirst decodes each candidate in order and returns the first record.
// When none decodes, the outcome of the last candidate is returned.
func DecodeFirst(candidates ...RawResponse) Outcome {
	out := Failed(ReasonEmpty)
	for _, c := range candidates {
		out = Decode(c)
		if out.OK() {
			return out
		}
	}
	return out
}

func decodeText(s string) Outcome {
	if rec, ok := parseObject(s); ok {
		return Outcome{record: rec}
	}
	if span, ok := braceSpan(s); ok {
		if rec, ok := parseObject(span); ok {
			return Outcome{record: rec}
		}
	}
	return Failed(ReasonUnparseable)
}

// braceSpan returns the text between the first '{' and the last '}',
// inclusive. Several objects in one text are captured together.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func parseObject(s string) (Record, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
