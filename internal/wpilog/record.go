package wpilog

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Control record types, stored in the first payload byte of records on
// entry id 0.
const (
	controlStart       = 0
	controlFinish      = 1
	controlSetMetadata = 2
)

// Record is one decoded, timestamped event from the log stream. Data holds
// the raw payload; the typed accessors decode it according to the producing
// entry's declared type.
type Record struct {
	Entry     int
	Timestamp uint64 // microseconds since device boot
	Data      []byte
}

// StartRecordData carries the channel announcement of a Start control
// record.
type StartRecordData struct {
	Entry    int
	Name     string
	Type     string
	Metadata string
}

// IsControl reports whether the record is a control record (entry id 0).
func (r *Record) IsControl() bool {
	return r.Entry == 0
}

func (r *Record) controlType() int {
	if !r.IsControl() || len(r.Data) < 1 {
		return -1
	}
	return int(r.Data[0])
}

// IsStart reports whether the record announces a new channel.
func (r *Record) IsStart() bool { return r.controlType() == controlStart }

// IsFinish reports whether the record closes a channel.
func (r *Record) IsFinish() bool { return r.controlType() == controlFinish }

// IsSetMetadata reports whether the record updates channel metadata.
func (r *Record) IsSetMetadata() bool { return r.controlType() == controlSetMetadata }

// GetStartData decodes the payload of a Start control record.
func (r *Record) GetStartData() (StartRecordData, error) {
	if !r.IsStart() {
		return StartRecordData{}, fmt.Errorf("wpilog: not a start record")
	}
	d := r.Data[1:]
	entry, d, err := readUint32(d)
	if err != nil {
		return StartRecordData{}, fmt.Errorf("wpilog: start record: %w", err)
	}
	name, d, err := readString(d)
	if err != nil {
		return StartRecordData{}, fmt.Errorf("wpilog: start record name: %w", err)
	}
	typ, d, err := readString(d)
	if err != nil {
		return StartRecordData{}, fmt.Errorf("wpilog: start record type: %w", err)
	}
	metadata, _, err := readString(d)
	if err != nil {
		return StartRecordData{}, fmt.Errorf("wpilog: start record metadata: %w", err)
	}
	return StartRecordData{
		Entry:    int(entry),
		Name:     name,
		Type:     typ,
		Metadata: metadata,
	}, nil
}

// GetBoolean decodes a single-byte boolean payload.
func (r *Record) GetBoolean() (bool, error) {
	if len(r.Data) != 1 {
		return false, fmt.Errorf("wpilog: boolean payload is %d bytes", len(r.Data))
	}
	return r.Data[0] != 0, nil
}

// GetInteger decodes a signed 64-bit little-endian payload.
func (r *Record) GetInteger() (int64, error) {
	if len(r.Data) != 8 {
		return 0, fmt.Errorf("wpilog: int64 payload is %d bytes", len(r.Data))
	}
	return int64(binary.LittleEndian.Uint64(r.Data)), nil
}

// GetDouble decodes a 64-bit IEEE 754 little-endian payload.
func (r *Record) GetDouble() (float64, error) {
	if len(r.Data) != 8 {
		return 0, fmt.Errorf("wpilog: double payload is %d bytes", len(r.Data))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.Data)), nil
}

// GetString decodes the payload as UTF-8 text. Every byte sequence is a
// valid payload, so there is no error path.
func (r *Record) GetString() string {
	return string(r.Data)
}

// GetBooleanArray decodes a payload of one byte per element.
func (r *Record) GetBooleanArray() ([]bool, error) {
	out := make([]bool, len(r.Data))
	for i, b := range r.Data {
		out[i] = b != 0
	}
	return out, nil
}

// GetIntegerArray decodes a payload of packed little-endian int64s.
func (r *Record) GetIntegerArray() ([]int64, error) {
	if len(r.Data)%8 != 0 {
		return nil, fmt.Errorf("wpilog: int64[] payload is %d bytes", len(r.Data))
	}
	out := make([]int64, len(r.Data)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(r.Data[i*8:]))
	}
	return out, nil
}

// GetDoubleArray decodes a payload of packed little-endian float64s.
func (r *Record) GetDoubleArray() ([]float64, error) {
	if len(r.Data)%8 != 0 {
		return nil, fmt.Errorf("wpilog: double[] payload is %d bytes", len(r.Data))
	}
	out := make([]float64, len(r.Data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(r.Data[i*8:]))
	}
	return out, nil
}

// GetFloatArray decodes a payload of packed little-endian float32s, widened
// to float64.
func (r *Record) GetFloatArray() ([]float64, error) {
	if len(r.Data)%4 != 0 {
		return nil, fmt.Errorf("wpilog: float[] payload is %d bytes", len(r.Data))
	}
	out := make([]float64, len(r.Data)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(r.Data[i*4:])))
	}
	return out, nil
}

// GetStringArray decodes a payload of a u32 count followed by
// length-prefixed strings.
func (r *Record) GetStringArray() ([]string, error) {
	count, d, err := readUint32(r.Data)
	if err != nil {
		return nil, fmt.Errorf("wpilog: string[] payload: %w", err)
	}
	// Each element carries at least a 4-byte length prefix, which bounds
	// how much a corrupt count can ask us to preallocate.
	prealloc := int(count)
	if limit := len(d) / 4; prealloc > limit {
		prealloc = limit
	}
	out := make([]string, 0, prealloc)
	for i := uint32(0); i < count; i++ {
		var s string
		s, d, err = readString(d)
		if err != nil {
			return nil, fmt.Errorf("wpilog: string[] element %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func readUint32(d []byte) (uint32, []byte, error) {
	if len(d) < 4 {
		return 0, nil, fmt.Errorf("short payload (%d bytes)", len(d))
	}
	return binary.LittleEndian.Uint32(d), d[4:], nil
}

func readString(d []byte) (string, []byte, error) {
	n, rest, err := readUint32(d)
	if err != nil {
		return "", nil, err
	}
	if uint32(len(rest)) < n {
		return "", nil, fmt.Errorf("string length %d exceeds payload", n)
	}
	return string(rest[:n]), rest[n:], nil
}
