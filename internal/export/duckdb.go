// Package export writes a loaded data log to a DuckDB database file for
// offline analysis. The export is derived data: the load path never reads
// it back.
package export

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog/log"

	"github.com/datalog-visualizer/backend/internal/logfile"
	"github.com/datalog-visualizer/backend/internal/models"
)

// Options tunes the DuckDB instance used for the export.
type Options struct {
	Threads     int
	MemoryLimit string
}

// DefaultOptions returns the export tuning defaults.
func DefaultOptions() Options {
	return Options{Threads: 4, MemoryLimit: "1GB"}
}

// insertBatch is how many points are inserted per statement.
const insertBatch = 5000

// ToDuckDB writes the channels and series of lf to a new database at
// dbPath. Sentinel points are not exported; the series tables carry real
// records only. An existing file at dbPath is replaced.
func ToDuckDB(lf *logfile.LogFile, dbPath string, opts Options) error {
	os.Remove(dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	defer db.Close()

	if err := createSchema(db); err != nil {
		os.Remove(dbPath)
		return err
	}

	entries := lf.Entries()
	if err := insertEntries(db, entries); err != nil {
		os.Remove(dbPath)
		return err
	}

	total := 0
	for _, e := range entries {
		n, err := insertSeries(db, lf, e.ID)
		if err != nil {
			os.Remove(dbPath)
			return err
		}
		total += n
	}

	// Index after all inserts; indexing during them slows the bulk load.
	if _, err := db.Exec("CREATE INDEX idx_points_entry_ts ON points(entry_id, ts)"); err != nil {
		os.Remove(dbPath)
		return fmt.Errorf("creating index: %w", err)
	}

	log.Info().Str("path", dbPath).
		Int("entries", len(entries)).
		Int("points", total).
		Msg("data log exported")

	return nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE entries (
			id           INTEGER PRIMARY KEY,
			name         VARCHAR NOT NULL,
			type         VARCHAR NOT NULL,
			metadata     VARCHAR,
			record_count INTEGER NOT NULL
		)`,
		`CREATE TABLE points (
			entry_id  INTEGER NOT NULL,
			ts        BIGINT NOT NULL,
			val_type  TINYINT NOT NULL,
			val_bool  BOOLEAN,
			val_int   BIGINT,
			val_float DOUBLE,
			val_str   VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func insertEntries(db *sql.DB, entries []models.EntryInfo) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO entries VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, e := range entries {
		if _, err := stmt.Exec(e.ID, e.Name, string(e.Type), e.Metadata, e.RecordCount); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("inserting entry %d: %w", e.ID, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

func insertSeries(db *sql.DB, lf *logfile.LogFile, entryID int) (int, error) {
	series, ok := lf.Series(entryID)
	if !ok || len(series) == 0 {
		return 0, nil
	}
	points := series[:len(series)-1] // drop the sentinel

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare("INSERT INTO points VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	inserted := 0
	for _, p := range points {
		valType, valBool, valInt, valFloat, valStr := encodeValue(p.Value)
		if _, err := stmt.Exec(entryID, p.Time.UnixMilli(),
			valType, valBool, valInt, valFloat, valStr); err != nil {
			stmt.Close()
			tx.Rollback()
			return 0, fmt.Errorf("inserting point for entry %d: %w", entryID, err)
		}
		inserted++
		if inserted%insertBatch == 0 {
			stmt.Close()
			if err := tx.Commit(); err != nil {
				return 0, err
			}
			if tx, err = db.Begin(); err != nil {
				return 0, err
			}
			if stmt, err = tx.Prepare("INSERT INTO points VALUES (?, ?, ?, ?, ?, ?, ?)"); err != nil {
				tx.Rollback()
				return 0, err
			}
		}
	}

	stmt.Close()
	return inserted, tx.Commit()
}

// Value type discriminators in the points table.
const (
	valTypeBool = iota
	valTypeInt
	valTypeFloat
	valTypeString
	valTypeArray // serialized as JSON in val_str
)

func encodeValue(v models.Value) (valType int, valBool bool, valInt int64, valFloat float64, valStr string) {
	switch v.Type {
	case models.EntryTypeBoolean:
		return valTypeBool, v.Bool, 0, 0, ""
	case models.EntryTypeInt64:
		return valTypeInt, false, v.Int, 0, ""
	case models.EntryTypeDouble:
		return valTypeFloat, false, 0, v.Float, ""
	case models.EntryTypeString, models.EntryTypeJSON:
		return valTypeString, false, 0, 0, v.Str
	default:
		data, _ := json.Marshal(v.Any())
		return valTypeArray, false, 0, 0, string(data)
	}
}
