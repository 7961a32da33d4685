package wpilog

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func readAll(t *testing.T, buf *bytes.Buffer) []*Record {
	t.Helper()
	rd, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	var recs []*Record
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func TestHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(&buf, "extra header"); err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	rd, err := NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if rd.Version()>>8 != 1 {
		t.Errorf("Expected major version 1, got %d", rd.Version()>>8)
	}
	if rd.ExtraHeader() != "extra header" {
		t.Errorf("Expected extra header preserved, got %q", rd.ExtraHeader())
	}

	if _, err := rd.Next(); err != io.EOF {
		t.Errorf("Expected EOF on empty record stream, got %v", err)
	}
}

func TestBadMagic(t *testing.T) {
	data := []byte("NOTLOG\x00\x01\x00\x00\x00\x00")
	_, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrInvalidFile) {
		t.Errorf("Expected ErrInvalidFile, got %v", err)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	// Major version 2 in the high byte
	data := []byte("WPILOG\x00\x02\x00\x00\x00\x00")
	_, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err == nil || errors.Is(err, ErrInvalidFile) {
		t.Errorf("Expected distinct unsupported-version error, got %v", err)
	}
}

func TestStartRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	if err := w.WriteStart(100, 5, "/Robot/Speed", "double", "{}"); err != nil {
		t.Fatalf("WriteStart failed: %v", err)
	}

	recs := readAll(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(recs))
	}

	rec := recs[0]
	if !rec.IsControl() || !rec.IsStart() {
		t.Fatal("Expected a start control record")
	}
	if rec.Timestamp != 100 {
		t.Errorf("Expected timestamp 100, got %d", rec.Timestamp)
	}

	data, err := rec.GetStartData()
	if err != nil {
		t.Fatalf("GetStartData failed: %v", err)
	}
	if data.Entry != 5 {
		t.Errorf("Expected entry 5, got %d", data.Entry)
	}
	if data.Name != "/Robot/Speed" {
		t.Errorf("Expected name /Robot/Speed, got %s", data.Name)
	}
	if data.Type != "double" {
		t.Errorf("Expected type double, got %s", data.Type)
	}
	if data.Metadata != "{}" {
		t.Errorf("Expected metadata {}, got %s", data.Metadata)
	}
}

func TestControlRecordKinds(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	w.WriteFinish(10, 3)
	w.WriteSetMetadata(20, 3, `{"source":"test"}`)

	recs := readAll(t, &buf)
	if len(recs) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recs))
	}
	if !recs[0].IsFinish() {
		t.Error("Expected first record to be finish")
	}
	if !recs[1].IsSetMetadata() {
		t.Error("Expected second record to be setMetadata")
	}
	if recs[0].IsStart() || recs[1].IsStart() {
		t.Error("Finish/setMetadata must not report as start")
	}
}

func TestScalarRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	w.WriteBoolean(1, 1, true)
	w.WriteInteger(2, 2, -42)
	w.WriteDouble(3, 3, 3.25)
	w.WriteString(4, 4, "hello")

	recs := readAll(t, &buf)
	if len(recs) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(recs))
	}

	if b, err := recs[0].GetBoolean(); err != nil || b != true {
		t.Errorf("GetBoolean = %v, %v", b, err)
	}
	if i, err := recs[1].GetInteger(); err != nil || i != -42 {
		t.Errorf("GetInteger = %v, %v", i, err)
	}
	if d, err := recs[2].GetDouble(); err != nil || d != 3.25 {
		t.Errorf("GetDouble = %v, %v", d, err)
	}
	if s := recs[3].GetString(); s != "hello" {
		t.Errorf("GetString = %q", s)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	w.WriteBooleanArray(1, 1, []bool{true, false, true})
	w.WriteIntegerArray(2, 2, []int64{1, -2, 3})
	w.WriteDoubleArray(3, 3, []float64{0.5, -1.5})
	w.WriteFloatArray(4, 4, []float32{2.5, -4.5})
	w.WriteStringArray(5, 5, []string{"a", "", "abc"})

	recs := readAll(t, &buf)
	if len(recs) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(recs))
	}

	bools, err := recs[0].GetBooleanArray()
	if err != nil || len(bools) != 3 || !bools[0] || bools[1] || !bools[2] {
		t.Errorf("GetBooleanArray = %v, %v", bools, err)
	}

	ints, err := recs[1].GetIntegerArray()
	if err != nil || len(ints) != 3 || ints[1] != -2 {
		t.Errorf("GetIntegerArray = %v, %v", ints, err)
	}

	doubles, err := recs[2].GetDoubleArray()
	if err != nil || len(doubles) != 2 || doubles[1] != -1.5 {
		t.Errorf("GetDoubleArray = %v, %v", doubles, err)
	}

	floats, err := recs[3].GetFloatArray()
	if err != nil || len(floats) != 2 || floats[0] != 2.5 || floats[1] != -4.5 {
		t.Errorf("GetFloatArray = %v, %v", floats, err)
	}

	strs, err := recs[4].GetStringArray()
	if err != nil || len(strs) != 3 || strs[2] != "abc" {
		t.Errorf("GetStringArray = %v, %v", strs, err)
	}
}

func TestMaxTimestamp(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	w.WriteBoolean(math.MaxUint64, 1, true)

	recs := readAll(t, &buf)
	if recs[0].Timestamp != math.MaxUint64 {
		t.Errorf("Expected max timestamp preserved, got %d", recs[0].Timestamp)
	}
}

func TestTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	w.WriteDouble(1, 1, 1.0)

	// Cut off the last payload bytes
	data := buf.Bytes()[:buf.Len()-4]
	rd, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := rd.Next(); err == nil || err == io.EOF {
		t.Errorf("Expected truncation error, got %v", err)
	}
}

func TestPayloadSizeAccessorMismatch(t *testing.T) {
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, "")
	w.WriteRaw(1, 1, []byte{1, 2, 3}) // not a valid int64/double width

	recs := readAll(t, &buf)
	if _, err := recs[0].GetInteger(); err == nil {
		t.Error("Expected GetInteger to reject 3-byte payload")
	}
	if _, err := recs[0].GetDouble(); err == nil {
		t.Error("Expected GetDouble to reject 3-byte payload")
	}
	if _, err := recs[0].GetBoolean(); err == nil {
		t.Error("Expected GetBoolean to reject 3-byte payload")
	}
}

func TestStringArrayCorruptCount(t *testing.T) {
	// Count claims ~4 billion elements but the payload holds none; the
	// decode must fail without attempting an allocation of that size.
	rec := &Record{Entry: 1, Data: []byte{0xFF, 0xFF, 0xFF, 0xFF}}
	if _, err := rec.GetStringArray(); err == nil {
		t.Error("Expected GetStringArray to reject truncated element data")
	}

	rec = &Record{Entry: 1, Data: []byte{0x02, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 'a'}}
	if _, err := rec.GetStringArray(); err == nil {
		t.Error("Expected GetStringArray to reject missing second element")
	}
}
