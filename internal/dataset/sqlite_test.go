package dataset

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestDB(t *testing.T, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE features (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		baseline           TEXT NOT NULL,
		baseline_low_date  TEXT,
		baseline_high_date TEXT,
		spec_url           TEXT,
		doc_url            TEXT
	)`)
	require.NoError(t, err)

	for _, row := range rows {
		_, err = db.Exec(
			`INSERT INTO features (id, name, baseline, baseline_low_date) VALUES (?, ?, ?, ?)`,
			row...)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteSource_Load(t *testing.T) {
	path := writeTestDB(t, [][]any{
		{"css.properties.gap", "gap", "high", "2020-01-15"},
		{"html.elements.dialog", "<dialog>", "low", nil},
		{"api.Bluetooth.requestDevice", "Bluetooth.requestDevice()", "false", nil},
		{"css.properties.display", "display", "true", nil}, // legacy bool-as-text encoding
	})

	a := New(SQLiteFile(path), nil)
	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, 4, a.Len())

	rec, ok := a.Feature("css.properties.gap")
	require.True(t, ok)
	assert.Equal(t, StatusWidely, rec.Status)
	assert.Equal(t, "2020-01-15", rec.LowDate)

	rec, ok = a.Feature("css.properties.display")
	require.True(t, ok)
	assert.Equal(t, StatusWidely, rec.Status)

	assert.False(t, a.BaselineSupported("api.Bluetooth.requestDevice"))
	assert.True(t, a.BaselineSupported("html.elements.dialog"))
}

func TestSQLiteSource_UnknownStatus(t *testing.T) {
	path := writeTestDB(t, [][]any{
		{"css.properties.gap", "gap", "maybe", nil},
	})

	a := New(SQLiteFile(path), nil)
	err := a.Initialize(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "unknown baseline status")
}

func TestSQLiteSource_MissingFile(t *testing.T) {
	a := New(SQLiteFile(filepath.Join(t.TempDir(), "absent.db")), nil)
	require.Error(t, a.Initialize(context.Background()))
}
