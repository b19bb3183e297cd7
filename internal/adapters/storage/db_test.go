package storage

import (
	"database/sql"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getSchemaSQL returns sorted CREATE statements from sqlite_master.
func getSchemaSQL(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT sql FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' AND sql IS NOT NULL ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var sqls []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("failed to scan sql: %v", err)
		}
		sqls = append(sqls, strings.Join(strings.Fields(s), " "))
	}
	sort.Strings(sqls)
	return sqls
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"attendance",
	"invoice",
	"member",
	"outbox",
	"payment",
	"schema_version",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}

	tables := getTableNames(t, db)
	if strings.Join(tables, ",") != strings.Join(expectedTables, ",") {
		t.Errorf("tables = %v, want %v", tables, expectedTables)
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice produces no errors
// and leaves the schema unchanged.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	before := getSchemaSQL(t, db)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	after := getSchemaSQL(t, db)

	if strings.Join(before, "\n") != strings.Join(after, "\n") {
		t.Errorf("schema changed after idempotent run")
	}
	if v, _ := SchemaVersion(db); v != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_VersionProgression verifies that SchemaVersion reports 0 before
// migration and the latest version after.
func TestMigrateDB_VersionProgression(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != 0 {
		t.Errorf("initial version = %d, want 0", v)
	}

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	if v, _ := SchemaVersion(db); v != LatestSchemaVersion() {
		t.Errorf("post-migration version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_DataSurvival verifies that existing rows survive a re-run.
func TestMigrateDB_DataSurvival(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO member (id, name, phone, email, membership_type, batch, status, created_at)
		VALUES ('m1', 'Test User', '99', 't@x.com', 'Regular', 'Morning', 'Active', '2026-01-01T00:00:00.000000000Z')`)
	if err != nil {
		t.Fatalf("failed to insert test member: %v", err)
	}

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM member WHERE id = 'm1'").Scan(&name); err != nil {
		t.Fatalf("member data lost after migration: %v", err)
	}
	if name != "Test User" {
		t.Errorf("member name = %q, want %q", name, "Test User")
	}
}

// TestMigrateDB_AttendanceUniquePerDay verifies the one-check-in-per-day index.
func TestMigrateDB_AttendanceUniquePerDay(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	insert := `INSERT INTO attendance (id, member_id, check_in_at, class_date, batch) VALUES (?, 'm1', '2026-01-01T01:00:00.000000000Z', ?, 'Morning')`
	if _, err := db.Exec(insert, "a1", "2026-01-01"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := db.Exec(insert, "a2", "2026-01-01")
	if !IsUniqueViolation(err) {
		t.Errorf("second insert error = %v, want unique violation", err)
	}
	if _, err := db.Exec(insert, "a3", "2026-01-02"); err != nil {
		t.Errorf("next-day insert: %v", err)
	}
}

// TestIsUniqueViolation verifies unrelated errors are not misclassified.
func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("nil is not a violation")
	}
	if IsUniqueViolation(errors.New("disk I/O error")) {
		t.Error("generic error is not a violation")
	}
}

// TestTimeRoundTrip verifies the fixed-width layout sorts chronologically.
func TestTimeRoundTrip(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	a := time.Date(2026, 3, 1, 9, 0, 0, 0, ist)
	b := a.Add(1500 * time.Millisecond)

	fa, fb := FormatTime(a), FormatTime(b)
	if !(fa < fb) {
		t.Errorf("lexical order broken: %q !< %q", fa, fb)
	}
	got, err := ParseTime(fa)
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !got.Equal(a) {
		t.Errorf("round trip = %v, want %v", got, a)
	}
	if zero, err := ParseTime(""); err != nil || !zero.IsZero() {
		t.Errorf("ParseTime(\"\") = %v, %v", zero, err)
	}
	if NullTime(time.Time{}).Valid {
		t.Error("zero time should be NULL")
	}
}
