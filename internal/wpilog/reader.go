/*
Package wpilog reads and writes the WPILib binary data log format
(".wpilog").

A log file is a fixed header ("WPILOG" magic, u16 version, length-prefixed
extra header string) followed by a flat sequence of records. Each record
starts with a one-byte bitfield giving the encoded widths of the entry id,
payload size, and timestamp fields that follow; the payload bytes are typed
by the channel's start record, not by the record itself.

The reader decodes sequentially from an io.ReaderAt so the byte source can
be a read-only memory mapping that lives for the duration of one pass.
*/
package wpilog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// ErrInvalidFile indicates the byte source is not a WPILib data log.
var ErrInvalidFile = errors.New("wpilog: not a valid data log file")

const magic = "WPILOG"

// supportedMajor is the format major version this reader understands.
const supportedMajor = 1

// Reader decodes a data log record stream.
type Reader struct {
	r       io.ReaderAt
	size    int64
	off     int64
	version uint16
	extra   string
}

// NewReader validates the file header and positions the reader at the
// first record.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	rd := &Reader{r: r, size: size}

	hdr := make([]byte, 12)
	if err := rd.readFull(hdr); err != nil {
		return nil, ErrInvalidFile
	}
	if string(hdr[:6]) != magic {
		return nil, ErrInvalidFile
	}
	rd.version = binary.LittleEndian.Uint16(hdr[6:8])
	if rd.version>>8 != supportedMajor {
		return nil, fmt.Errorf("wpilog: unsupported version %d.%d",
			rd.version>>8, rd.version&0xff)
	}

	extraLen := binary.LittleEndian.Uint32(hdr[8:12])
	if int64(extraLen) > rd.size-rd.off {
		return nil, ErrInvalidFile
	}
	extra := make([]byte, extraLen)
	if err := rd.readFull(extra); err != nil {
		return nil, ErrInvalidFile
	}
	rd.extra = string(extra)

	return rd, nil
}

// Version returns the format version (major in the high byte).
func (rd *Reader) Version() uint16 { return rd.version }

// ExtraHeader returns the free-form header string.
func (rd *Reader) ExtraHeader() string { return rd.extra }

// Offset returns the current byte offset, for progress reporting.
func (rd *Reader) Offset() int64 { return rd.off }

// Size returns the total byte size of the log.
func (rd *Reader) Size() int64 { return rd.size }

// Next returns the next record in stream order, or io.EOF after the last
// one. Any malformed framing mid-stream is returned as a non-EOF error.
func (rd *Reader) Next() (*Record, error) {
	if rd.off >= rd.size {
		return nil, io.EOF
	}

	var bitfield [1]byte
	if err := rd.readFull(bitfield[:]); err != nil {
		return nil, rd.truncated(err)
	}
	entryLen := int(bitfield[0]&0x3) + 1
	sizeLen := int(bitfield[0]>>2&0x3) + 1
	tsLen := int(bitfield[0]>>4&0x7) + 1

	fields := make([]byte, entryLen+sizeLen+tsLen)
	if err := rd.readFull(fields); err != nil {
		return nil, rd.truncated(err)
	}
	entry := readVarUint(fields[:entryLen])
	payloadSize := readVarUint(fields[entryLen : entryLen+sizeLen])
	timestamp := readVarUint(fields[entryLen+sizeLen:])

	if int64(payloadSize) > rd.size-rd.off {
		return nil, rd.truncated(io.ErrUnexpectedEOF)
	}
	payload := make([]byte, payloadSize)
	if err := rd.readFull(payload); err != nil {
		return nil, rd.truncated(err)
	}

	return &Record{
		Entry:     int(entry),
		Timestamp: timestamp,
		Data:      payload,
	}, nil
}

func (rd *Reader) readFull(p []byte) error {
	n, err := rd.r.ReadAt(p, rd.off)
	rd.off += int64(n)
	if err != nil && !(err == io.EOF && n == len(p)) {
		return err
	}
	if n < len(p) {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (rd *Reader) truncated(err error) error {
	return fmt.Errorf("wpilog: truncated record at offset %d: %w", rd.off, err)
}

// readVarUint decodes a little-endian unsigned integer of 1..8 bytes.
func readVarUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// File is a Reader over a read-only memory mapping of a log file. The
// mapping outlives every decode access and is released by Close once the
// pass is over.
type File struct {
	*Reader
	m *mmap.ReaderAt
}

// Open memory-maps the file at path and validates its header.
func Open(path string) (*File, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	rd, err := NewReader(m, int64(m.Len()))
	if err != nil {
		m.Close()
		return nil, err
	}
	return &File{Reader: rd, m: m}, nil
}

// Close releases the underlying mapping.
func (f *File) Close() error {
	return f.m.Close()
}
