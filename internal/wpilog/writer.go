package wpilog

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer produces a data log byte stream. Records are written with fixed
// field widths (4-byte entry id, 4-byte payload size, 8-byte timestamp),
// which is always a valid encoding.
type Writer struct {
	w io.Writer
}

// fixedBitfield encodes the fixed widths used by this writer.
const fixedBitfield = (4 - 1) | (4-1)<<2 | (8-1)<<4

// NewWriter writes the file header (with the given extra header string)
// and returns a Writer for the record stream.
func NewWriter(w io.Writer, extraHeader string) (*Writer, error) {
	hdr := make([]byte, 0, 12+len(extraHeader))
	hdr = append(hdr, magic...)
	hdr = binary.LittleEndian.AppendUint16(hdr, supportedMajor<<8)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(extraHeader)))
	hdr = append(hdr, extraHeader...)
	if _, err := w.Write(hdr); err != nil {
		return nil, err
	}
	return &Writer{w: w}, nil
}

// WriteRaw writes one record with an arbitrary payload.
func (w *Writer) WriteRaw(timestamp uint64, entry int, payload []byte) error {
	buf := make([]byte, 0, 17+len(payload))
	buf = append(buf, fixedBitfield)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(entry))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = binary.LittleEndian.AppendUint64(buf, timestamp)
	buf = append(buf, payload...)
	_, err := w.w.Write(buf)
	return err
}

// WriteStart announces a channel: id, name, declared type, and metadata.
func (w *Writer) WriteStart(timestamp uint64, entry int, name, typ, metadata string) error {
	payload := []byte{controlStart}
	payload = binary.LittleEndian.AppendUint32(payload, uint32(entry))
	payload = appendString(payload, name)
	payload = appendString(payload, typ)
	payload = appendString(payload, metadata)
	return w.WriteRaw(timestamp, 0, payload)
}

// WriteFinish closes a channel.
func (w *Writer) WriteFinish(timestamp uint64, entry int) error {
	payload := []byte{controlFinish}
	payload = binary.LittleEndian.AppendUint32(payload, uint32(entry))
	return w.WriteRaw(timestamp, 0, payload)
}

// WriteSetMetadata updates a channel's metadata string.
func (w *Writer) WriteSetMetadata(timestamp uint64, entry int, metadata string) error {
	payload := []byte{controlSetMetadata}
	payload = binary.LittleEndian.AppendUint32(payload, uint32(entry))
	payload = appendString(payload, metadata)
	return w.WriteRaw(timestamp, 0, payload)
}

// WriteBoolean writes a boolean data record.
func (w *Writer) WriteBoolean(timestamp uint64, entry int, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	return w.WriteRaw(timestamp, entry, []byte{b})
}

// WriteInteger writes an int64 data record.
func (w *Writer) WriteInteger(timestamp uint64, entry int, v int64) error {
	return w.WriteRaw(timestamp, entry,
		binary.LittleEndian.AppendUint64(nil, uint64(v)))
}

// WriteDouble writes a double data record.
func (w *Writer) WriteDouble(timestamp uint64, entry int, v float64) error {
	return w.WriteRaw(timestamp, entry,
		binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
}

// WriteString writes a string (or json) data record.
func (w *Writer) WriteString(timestamp uint64, entry int, v string) error {
	return w.WriteRaw(timestamp, entry, []byte(v))
}

// WriteBooleanArray writes a boolean[] data record.
func (w *Writer) WriteBooleanArray(timestamp uint64, entry int, v []bool) error {
	payload := make([]byte, len(v))
	for i, b := range v {
		if b {
			payload[i] = 1
		}
	}
	return w.WriteRaw(timestamp, entry, payload)
}

// WriteIntegerArray writes an int64[] data record.
func (w *Writer) WriteIntegerArray(timestamp uint64, entry int, v []int64) error {
	payload := make([]byte, 0, len(v)*8)
	for _, x := range v {
		payload = binary.LittleEndian.AppendUint64(payload, uint64(x))
	}
	return w.WriteRaw(timestamp, entry, payload)
}

// WriteDoubleArray writes a double[] data record.
func (w *Writer) WriteDoubleArray(timestamp uint64, entry int, v []float64) error {
	payload := make([]byte, 0, len(v)*8)
	for _, x := range v {
		payload = binary.LittleEndian.AppendUint64(payload, math.Float64bits(x))
	}
	return w.WriteRaw(timestamp, entry, payload)
}

// WriteFloatArray writes a float[] data record (32-bit elements).
func (w *Writer) WriteFloatArray(timestamp uint64, entry int, v []float32) error {
	payload := make([]byte, 0, len(v)*4)
	for _, x := range v {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(x))
	}
	return w.WriteRaw(timestamp, entry, payload)
}

// WriteStringArray writes a string[] data record.
func (w *Writer) WriteStringArray(timestamp uint64, entry int, v []string) error {
	payload := binary.LittleEndian.AppendUint32(nil, uint32(len(v)))
	for _, s := range v {
		payload = appendString(payload, s)
	}
	return w.WriteRaw(timestamp, entry, payload)
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}
