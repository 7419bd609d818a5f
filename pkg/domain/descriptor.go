package domain

import (
	"encoding/json"
	"strconv"
)

// Field names every object descriptor can carry. Fields outside this set are
// preserved verbatim by the decoding layers.
const (
	FieldIdentity = "identity"
	FieldPath     = "path"
	FieldClasses  = "classes"
	FieldChildren = "children"
)

// Descriptor is a single remote entity exactly as the probe reports it: a
// JSON object with a handful of recognized fields plus whatever else the
// probe chose to attach.
type Descriptor map[string]any

// Identity returns the remote identity handle, or 0 when the field is
// missing or malformed.
func (d Descriptor) Identity() uint64 {
	id, _ := AsIdentity(d[FieldIdentity])
	return id
}

// Path returns the designer path of the entity, or "" when absent.
func (d Descriptor) Path() string {
	s, _ := d[FieldPath].(string)
	return s
}

// Classes returns the class chain in the probe's order, most derived class
// first. Dispatch depends on that order.
func (d Descriptor) Classes() []string {
	return AsStrings(d[FieldClasses])
}

// Children returns the nested child descriptors. A missing or empty field
// means the entity has no children.
func (d Descriptor) Children() []Descriptor {
	switch v := d[FieldChildren].(type) {
	case []Descriptor:
		return v
	case []map[string]any:
		out := make([]Descriptor, 0, len(v))
		for _, m := range v {
			out = append(out, Descriptor(m))
		}
		return out
	case []any:
		out := make([]Descriptor, 0, len(v))
		for _, c := range v {
			if m, ok := c.(map[string]any); ok {
				out = append(out, Descriptor(m))
			}
		}
		return out
	}
	return nil
}

// AsStrings coerces a wire-side string list, which arrives as []any from
// a generic JSON decode. Non-string elements are dropped.
func AsStrings(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// AsIdentity coerces the identity representations seen on the wire into the
// canonical uint64 handle. JSON numbers arrive as json.Number or float64
// depending on the decoder in front of them.
func AsIdentity(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		id, err := strconv.ParseUint(n.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case string:
		id, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
