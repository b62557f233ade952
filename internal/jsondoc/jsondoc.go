// Package jsondoc edits JSON objects while keeping their key order, so that
// a rewritten file differs from the original only where it was changed.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned when a document is not a JSON object.
var ErrNotObject = errors.New("jsondoc: not a JSON object")

// Object is a JSON object that keeps its keys in document order. Member
// values stay raw until a caller asks for them.
type Object struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

// New returns an empty Object.
func New() *Object {
	return &Object{fields: orderedmap.New[string, json.RawMessage]()}
}

// Parse decodes data, which must hold a single JSON object.
func Parse(data []byte) (*Object, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("jsondoc: invalid JSON")
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}
	o := New()
	if err := o.fields.UnmarshalJSON(trimmed); err != nil {
		return nil, fmt.Errorf("jsondoc: %w", err)
	}
	return o, nil
}

// Keys returns the member names in document order.
func (o *Object) Keys() []string {
	out := make([]string, 0, o.fields.Len())
	for p := o.fields.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Has reports whether key is present, whatever its value.
func (o *Object) Has(key string) bool {
	_, ok := o.fields.Get(key)
	return ok
}

// Raw returns the raw value of key.
func (o *Object) Raw(key string) (json.RawMessage, bool) {
	return o.fields.Get(key)
}

// Truthy reports whether key is present with a value other than null,
// false, 0 or "". Empty arrays and objects are truthy.
func (o *Object) Truthy(key string) bool {
	raw, ok := o.fields.Get(key)
	return ok && Truthy(raw)
}

// Object returns the value of key when it is a JSON object.
func (o *Object) Object(key string) (*Object, bool) {
	raw, ok := o.fields.Get(key)
	if !ok {
		return nil, false
	}
	child, err := Parse(raw)
	if err != nil {
		return nil, false
	}
	return child, true
}

// Array returns the elements of key when it is a JSON array.
func (o *Object) Array(key string) ([]json.RawMessage, bool) {
	raw, ok := o.fields.Get(key)
	if !ok {
		return nil, false
	}
	return AsArray(raw)
}

// String returns the value of key when it is a JSON string.
func (o *Object) String(key string) (string, bool) {
	raw, ok := o.fields.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Set stores v under key. An existing key keeps its position; a new key is
// appended. v is encoded without HTML escaping; *Object and
// json.RawMessage values are embedded as they are.
func (o *Object) Set(key string, v any) error {
	raw, err := encode(v)
	if err != nil {
		return fmt.Errorf("jsondoc: set %q: %w", key, err)
	}
	o.fields.Set(key, raw)
	return nil
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, ok := o.fields.Delete(key)
	return ok
}

// MarshalJSON encodes the object compactly, in key order, without HTML
// escaping.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for p := o.fields.Oldest(); p != nil; p = p.Next() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := encode(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, p.Value); err != nil {
			return nil, fmt.Errorf("jsondoc: value of %q: %w", p.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode returns the object indented with two spaces and no trailing
// newline.
func Encode(o *Object) ([]byte, error) {
	compact, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("jsondoc: indent: %w", err)
	}
	return out.Bytes(), nil
}

// AsArray returns the elements of raw when it is a JSON array.
func AsArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	if arr == nil {
		// null decodes into a nil slice without error.
		return nil, false
	}
	return arr, true
}

// Truthy reports whether raw is a value other than null, false, 0 or "".
func Truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
