package export

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/datalog-visualizer/backend/internal/logfile"
	"github.com/datalog-visualizer/backend/internal/wpilog"
)

var wallAnchor = time.Date(2024, 3, 16, 14, 30, 0, 0, time.UTC)

func loadFixture(t *testing.T) *logfile.LogFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.wpilog")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := wpilog.NewWriter(f, "")
	if err != nil {
		t.Fatal(err)
	}
	w.WriteStart(0, 1, logfile.SyncChannelName, "int64", "")
	w.WriteStart(0, 2, "NT:/Robot/Speed", "double", "")
	w.WriteStart(0, 3, "DS:enabled", "boolean", "")
	w.WriteStart(0, 4, "pose", "double[]", "")
	w.WriteInteger(100_000_000, 1, wallAnchor.UnixMicro())
	w.WriteDouble(5_000_000, 2, 1.25)
	w.WriteDouble(6_000_000, 2, 2.5)
	w.WriteBoolean(5_000_000, 3, true)
	w.WriteDoubleArray(7_000_000, 4, []float64{1, 2, 3})
	f.Close()

	lf, err := logfile.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return lf
}

func TestToDuckDB(t *testing.T) {
	lf := loadFixture(t)
	dbPath := filepath.Join(t.TempDir(), "out.duckdb")

	if err := ToDuckDB(lf, dbPath, DefaultOptions()); err != nil {
		t.Fatalf("ToDuckDB failed: %v", err)
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		t.Fatalf("Opening export failed: %v", err)
	}
	defer db.Close()

	var entryCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&entryCount); err != nil {
		t.Fatalf("Querying entries failed: %v", err)
	}
	if entryCount != 4 {
		t.Errorf("Expected 4 entries, got %d", entryCount)
	}

	// Sentinels are dropped: 2 + 1 + 1 real points
	var pointCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM points").Scan(&pointCount); err != nil {
		t.Fatalf("Querying points failed: %v", err)
	}
	if pointCount != 4 {
		t.Errorf("Expected 4 points, got %d", pointCount)
	}

	// Typed columns round-trip
	var valFloat float64
	err = db.QueryRow("SELECT val_float FROM points WHERE entry_id = 2 ORDER BY ts LIMIT 1").Scan(&valFloat)
	if err != nil {
		t.Fatalf("Querying double point failed: %v", err)
	}
	if valFloat != 1.25 {
		t.Errorf("Expected 1.25, got %f", valFloat)
	}

	var valStr string
	err = db.QueryRow("SELECT val_str FROM points WHERE entry_id = 4").Scan(&valStr)
	if err != nil {
		t.Fatalf("Querying array point failed: %v", err)
	}
	if valStr != "[1,2,3]" {
		t.Errorf("Expected JSON-encoded array, got %s", valStr)
	}

	// Timestamps are absolute wall clock in milliseconds
	start := wallAnchor.Add(-100 * time.Second)
	var ts int64
	err = db.QueryRow("SELECT ts FROM points WHERE entry_id = 3").Scan(&ts)
	if err != nil {
		t.Fatalf("Querying boolean point failed: %v", err)
	}
	if ts != start.Add(5*time.Second).UnixMilli() {
		t.Errorf("Expected ts %d, got %d", start.Add(5*time.Second).UnixMilli(), ts)
	}

	var name string
	err = db.QueryRow("SELECT name FROM entries WHERE id = 2").Scan(&name)
	if err != nil {
		t.Fatalf("Querying entry name failed: %v", err)
	}
	if name != "NT:/Robot/Speed" {
		t.Errorf("Expected channel name preserved, got %s", name)
	}
}

func TestToDuckDBReplacesExisting(t *testing.T) {
	lf := loadFixture(t)
	dbPath := filepath.Join(t.TempDir(), "out.duckdb")

	if err := os.WriteFile(dbPath, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ToDuckDB(lf, dbPath, DefaultOptions()); err != nil {
		t.Fatalf("ToDuckDB over existing file failed: %v", err)
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		t.Fatalf("Opening export failed: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		t.Fatalf("Expected a fresh database, got %v", err)
	}
}
