package models

import "encoding/json"

// Value is a decoded record payload tagged with the producing entry's
// declared type. Exactly one field (matching the tag) is meaningful; there
// is no implicit coercion between kinds.
type Value struct {
	Type EntryType

	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Bools  []bool
	Ints   []int64
	Floats []float64
	Strs   []string
}

func BoolValue(v bool) Value       { return Value{Type: EntryTypeBoolean, Bool: v} }
func IntValue(v int64) Value       { return Value{Type: EntryTypeInt64, Int: v} }
func DoubleValue(v float64) Value  { return Value{Type: EntryTypeDouble, Float: v} }
func StringValue(s string) Value   { return Value{Type: EntryTypeString, Str: s} }
func JSONValue(s string) Value     { return Value{Type: EntryTypeJSON, Str: s} }
func BoolsValue(v []bool) Value    { return Value{Type: EntryTypeBooleanArray, Bools: v} }
func IntsValue(v []int64) Value    { return Value{Type: EntryTypeInt64Array, Ints: v} }
func DoublesValue(v []float64) Value {
	return Value{Type: EntryTypeDoubleArray, Floats: v}
}
func FloatsValue(v []float64) Value {
	return Value{Type: EntryTypeFloatArray, Floats: v}
}
func StringsValue(v []string) Value {
	return Value{Type: EntryTypeStringArray, Strs: v}
}

// Any returns the dynamic value for serialization boundaries (JSON,
// MessagePack, SQL). The tagged representation stays the source of truth.
func (v Value) Any() interface{} {
	switch v.Type {
	case EntryTypeBoolean:
		return v.Bool
	case EntryTypeInt64:
		return v.Int
	case EntryTypeDouble:
		return v.Float
	case EntryTypeString, EntryTypeJSON:
		return v.Str
	case EntryTypeBooleanArray:
		return v.Bools
	case EntryTypeInt64Array:
		return v.Ints
	case EntryTypeDoubleArray, EntryTypeFloatArray:
		return v.Floats
	case EntryTypeStringArray:
		return v.Strs
	}
	return nil
}

// Equal compares two values for tag and payload equality.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case EntryTypeBoolean:
		return v.Bool == o.Bool
	case EntryTypeInt64:
		return v.Int == o.Int
	case EntryTypeDouble:
		return v.Float == o.Float
	case EntryTypeString, EntryTypeJSON:
		return v.Str == o.Str
	case EntryTypeBooleanArray:
		if len(v.Bools) != len(o.Bools) {
			return false
		}
		for i := range v.Bools {
			if v.Bools[i] != o.Bools[i] {
				return false
			}
		}
		return true
	case EntryTypeInt64Array:
		if len(v.Ints) != len(o.Ints) {
			return false
		}
		for i := range v.Ints {
			if v.Ints[i] != o.Ints[i] {
				return false
			}
		}
		return true
	case EntryTypeDoubleArray, EntryTypeFloatArray:
		if len(v.Floats) != len(o.Floats) {
			return false
		}
		for i := range v.Floats {
			if v.Floats[i] != o.Floats[i] {
				return false
			}
		}
		return true
	case EntryTypeStringArray:
		if len(v.Strs) != len(o.Strs) {
			return false
		}
		for i := range v.Strs {
			if v.Strs[i] != o.Strs[i] {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON emits the bare dynamic value, not the tagged struct.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}
