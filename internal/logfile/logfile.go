// Package logfile aggregates a decoded data log record stream into
// per-channel time series and a browsable channel namespace.
//
// Aggregation is one eager, blocking pass per file: start records register
// channels, data records accumulate (timestamp, value) pairs, and records on
// the reserved synchronization channel anchor device-relative time to wall
// clock. After the pass every non-empty series is closed with a sentinel
// point at the file-wide maximum timestamp and rewritten to absolute time.
// The result is immutable; all queries operate on that snapshot.
package logfile

import (
	"errors"
	"io"
	"math"
	"sort"
	"time"

	"github.com/datalog-visualizer/backend/internal/models"
	"github.com/datalog-visualizer/backend/internal/wpilog"
)

// SyncChannelName is the reserved channel (declared type int64) whose data
// records carry a wall-clock epoch in microseconds instead of series data.
const SyncChannelName = "systemTime"

// ProgressFunc is called periodically during the aggregation pass.
type ProgressFunc func(records int, bytesRead, totalBytes int64)

// progressInterval is how many records pass between progress callbacks.
const progressInterval = 10000

// LogFile is the aggregated, immutable result of loading one data log.
type LogFile struct {
	entries   map[int]*models.Entry
	series    map[int][]models.SeriesPoint
	timeRange models.TimeRange
}

// Load aggregates the data log at path.
func Load(path string) (*LogFile, error) {
	return LoadWithProgress(path, nil)
}

// LoadWithProgress aggregates the data log at path, reporting progress from
// the mapped reader's offset. The mapping is held for the whole pass and
// released before return.
func LoadWithProgress(path string, onProgress ProgressFunc) (*LogFile, error) {
	f, err := wpilog.Open(path)
	if err != nil {
		if errors.Is(err, wpilog.ErrInvalidFile) {
			return nil, &InvalidFormatError{Reason: "unreadable header", Err: err}
		}
		return nil, err
	}
	defer f.Close()

	return Read(f.Reader, onProgress)
}

// relPoint is a series point before the synchronization rewrite: a
// device-relative timestamp in seconds and the decoded value.
type relPoint struct {
	rel float64
	val models.Value
}

// syncAnchor is the most recent mapping from device-relative time to wall
// clock. Repeated synchronization records overwrite it (last write wins).
type syncAnchor struct {
	rel  float64
	wall time.Time
	seen bool
}

// Read aggregates an already-opened record stream. Exposed so callers can
// supply any decoder source; Load is the mmap-backed convenience wrapper.
func Read(r *wpilog.Reader, onProgress ProgressFunc) (*LogFile, error) {
	entries := make(map[int]*models.Entry)
	acc := make(map[int][]relPoint)
	var anchor syncAnchor
	var maxRel float64
	records := 0

	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &InvalidFormatError{Reason: "malformed record stream", Err: err}
		}

		records++
		if onProgress != nil && records%progressInterval == 0 {
			onProgress(records, r.Offset(), r.Size())
		}

		rel := float64(rec.Timestamp) / 1e6
		if rel > maxRel {
			maxRel = rel
		}

		switch {
		case rec.IsStart():
			data, err := rec.GetStartData()
			if err != nil {
				return nil, &InvalidFormatError{Reason: "malformed start record", Err: err}
			}
			entries[data.Entry] = &models.Entry{
				ID:       data.Entry,
				Name:     data.Name,
				Type:     models.EntryType(data.Type),
				Metadata: data.Metadata,
			}
			acc[data.Entry] = nil

		case rec.IsFinish(), rec.IsSetMetadata(), rec.IsControl():
			// Reserved for future extension; no aggregation effect.

		default:
			entry, ok := entries[rec.Entry]
			if !ok {
				return nil, &UnknownEntryError{Entry: rec.Entry}
			}

			if entry.Name == SyncChannelName && entry.Type == models.EntryTypeInt64 {
				epoch, err := rec.GetInteger()
				if err != nil {
					return nil, &InvalidFormatError{Reason: "malformed sync record", Err: err}
				}
				anchor = syncAnchor{rel: rel, wall: time.UnixMicro(epoch), seen: true}
				continue
			}

			val, ok, err := decodeValue(rec, entry.Type)
			if err != nil {
				return nil, &InvalidFormatError{Reason: "malformed data record", Err: err}
			}
			if !ok {
				continue
			}
			acc[rec.Entry] = append(acc[rec.Entry], relPoint{rel: rel, val: val})
		}
	}

	if onProgress != nil {
		onProgress(records, r.Offset(), r.Size())
	}

	if !anchor.seen {
		return nil, &InvalidFormatError{Reason: "no synchronization record"}
	}

	start := anchor.wall.Add(-time.Duration(anchor.rel * float64(time.Second)))

	series := make(map[int][]models.SeriesPoint, len(acc))
	for id, pts := range acc {
		if len(pts) == 0 {
			series[id] = nil
			continue
		}
		pts = append(pts, relPoint{rel: maxRel, val: pts[len(pts)-1].val})

		out := make([]models.SeriesPoint, len(pts))
		for i, p := range pts {
			out[i] = models.SeriesPoint{
				Time:  absoluteTime(start, p.rel),
				Value: p.val,
			}
		}
		series[id] = out
	}

	return &LogFile{
		entries: entries,
		series:  series,
		timeRange: models.TimeRange{
			Start: start,
			End:   absoluteTime(start, maxRel),
		},
	}, nil
}

// maxRelSeconds is the largest device-relative offset representable as a
// time.Duration.
const maxRelSeconds = float64(math.MaxInt64) / float64(time.Second)

// absoluteTime maps a device-relative timestamp onto wall clock. Offsets
// beyond the representable range clamp to the start-of-recording instant:
// such values are known artifacts confined to the first records of a file,
// so losing them beats failing the load.
func absoluteTime(start time.Time, rel float64) time.Time {
	if rel >= maxRelSeconds {
		return start
	}
	return start.Add(time.Duration(rel * float64(time.Second)))
}

// decodeValue applies the fixed type→accessor table. The second return is
// false for declared types with no decode rule here; those records are
// skipped, matching the original viewer.
func decodeValue(rec *wpilog.Record, typ models.EntryType) (models.Value, bool, error) {
	switch typ {
	case models.EntryTypeDouble:
		v, err := rec.GetDouble()
		return models.DoubleValue(v), true, err
	case models.EntryTypeInt64:
		v, err := rec.GetInteger()
		return models.IntValue(v), true, err
	case models.EntryTypeBoolean:
		v, err := rec.GetBoolean()
		return models.BoolValue(v), true, err
	case models.EntryTypeString:
		return models.StringValue(rec.GetString()), true, nil
	case models.EntryTypeJSON:
		// Stored identically to string; "json" carries no structure here.
		return models.JSONValue(rec.GetString()), true, nil
	case models.EntryTypeDoubleArray:
		v, err := rec.GetDoubleArray()
		return models.DoublesValue(v), true, err
	case models.EntryTypeInt64Array:
		v, err := rec.GetIntegerArray()
		return models.IntsValue(v), true, err
	case models.EntryTypeFloatArray:
		v, err := rec.GetFloatArray()
		return models.FloatsValue(v), true, err
	case models.EntryTypeBooleanArray:
		v, err := rec.GetBooleanArray()
		return models.BoolsValue(v), true, err
	case models.EntryTypeStringArray:
		v, err := rec.GetStringArray()
		return models.StringsValue(v), true, err
	}
	return models.Value{}, false, nil
}

// Entry returns the registry entry for an id.
func (lf *LogFile) Entry(id int) (*models.Entry, bool) {
	e, ok := lf.entries[id]
	return e, ok
}

// Entries lists all registered channels sorted by name, with record counts.
func (lf *LogFile) Entries() []models.EntryInfo {
	out := make([]models.EntryInfo, 0, len(lf.entries))
	for id, e := range lf.entries {
		out = append(out, models.EntryInfo{Entry: *e, RecordCount: lf.RecordCount(id)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Series returns the full time series for an entry id.
func (lf *LogFile) Series(id int) ([]models.SeriesPoint, bool) {
	s, ok := lf.series[id]
	return s, ok
}

// RecordCount reports the number of real data records for an entry,
// excluding the synthetic sentinel. Entries with no data report 0.
func (lf *LogFile) RecordCount(id int) int {
	n := len(lf.series[id]) - 1
	if n < 0 {
		return 0
	}
	return n
}

// EntryCount reports the number of registered channels.
func (lf *LogFile) EntryCount() int { return len(lf.entries) }

// TotalRecords reports the sum of record counts across all channels.
func (lf *LogFile) TotalRecords() int {
	total := 0
	for id := range lf.series {
		total += lf.RecordCount(id)
	}
	return total
}

// TimeRange returns the wall-clock span of the recording.
func (lf *LogFile) TimeRange() models.TimeRange { return lf.timeRange }
