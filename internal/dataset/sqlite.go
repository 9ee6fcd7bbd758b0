package dataset

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSource loads feature records from a versioned SQLite database
// file with a single `features` table:
//
//	CREATE TABLE features (
//	  id                 TEXT PRIMARY KEY,
//	  name               TEXT NOT NULL,
//	  baseline           TEXT NOT NULL,   -- 'high' | 'low' | 'false'
//	  baseline_low_date  TEXT,
//	  baseline_high_date TEXT,
//	  spec_url           TEXT,
//	  doc_url            TEXT
//	);
//
// The database is opened read-only and closed after the load; it is input
// data, not a result store.
type SQLiteSource struct {
	path string
}

// SQLiteFile returns a SQLiteSource for the database at path.
func SQLiteFile(path string) *SQLiteSource {
	return &SQLiteSource{path: path}
}

func (s *SQLiteSource) Name() string { return s.path }

func (s *SQLiteSource) Load(ctx context.Context) ([]FeatureRecord, error) {
	db, err := sql.Open("sqlite3", "file:"+s.path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, baseline,
		       COALESCE(baseline_low_date, ''),
		       COALESCE(baseline_high_date, ''),
		       COALESCE(spec_url, ''),
		       COALESCE(doc_url, '')
		FROM features`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var records []FeatureRecord
	for rows.Next() {
		var rec FeatureRecord
		var status string
		if err := rows.Scan(&rec.ID, &rec.Name, &status,
			&rec.LowDate, &rec.HighDate, &rec.SpecURL, &rec.DocURL); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		switch Status(status) {
		case StatusWidely, StatusLimited, StatusUnsupported:
			rec.Status = Status(status)
		case "true":
			rec.Status = StatusWidely
		default:
			return nil, fmt.Errorf("feature %s: unknown baseline status %q", rec.ID, status)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
