// Package models contains domain types for the Data Log Visualizer.
package models

// EntryType is the declared wire type of a log channel.
type EntryType string

const (
	EntryTypeDouble       EntryType = "double"
	EntryTypeInt64        EntryType = "int64"
	EntryTypeBoolean      EntryType = "boolean"
	EntryTypeString       EntryType = "string"
	EntryTypeJSON         EntryType = "json"
	EntryTypeDoubleArray  EntryType = "double[]"
	EntryTypeInt64Array   EntryType = "int64[]"
	EntryTypeFloatArray   EntryType = "float[]"
	EntryTypeBooleanArray EntryType = "boolean[]"
	EntryTypeStringArray  EntryType = "string[]"
)

// Known reports whether this layer has a decode rule for the type.
// Channels with other declared types are still registered, but their data
// records carry no decodable payload here and are skipped.
func (t EntryType) Known() bool {
	switch t {
	case EntryTypeDouble, EntryTypeInt64, EntryTypeBoolean,
		EntryTypeString, EntryTypeJSON,
		EntryTypeDoubleArray, EntryTypeInt64Array, EntryTypeFloatArray,
		EntryTypeBooleanArray, EntryTypeStringArray:
		return true
	}
	return false
}

// IsArray reports whether the type is one of the array variants.
func (t EntryType) IsArray() bool {
	switch t {
	case EntryTypeDoubleArray, EntryTypeInt64Array, EntryTypeFloatArray,
		EntryTypeBooleanArray, EntryTypeStringArray:
		return true
	}
	return false
}

// Entry identifies one logical telemetry channel. Entries are created once,
// when the record stream announces the channel start, and are immutable for
// the lifetime of the loaded file.
type Entry struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Type     EntryType `json:"type"`
	Metadata string    `json:"metadata,omitempty"`
}

// EntryInfo is an Entry together with its record count, as listed to the
// presentation layer.
type EntryInfo struct {
	Entry
	RecordCount int `json:"recordCount"`
}
