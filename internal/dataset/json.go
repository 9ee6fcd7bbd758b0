package dataset

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// The bundled compatibility snapshot. Callers that want a newer table pass
// their own JSONSource or SQLiteSource instead.
//
//go:embed data/features.json
var embeddedFeatures []byte

// UnmarshalJSON accepts both encodings seen in compatibility data: the
// booleans true/false and the strings "low"/"high"/"false".
func (s *Status) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		if val {
			*s = StatusWidely
		} else {
			*s = StatusUnsupported
		}
		return nil
	case string:
		switch Status(val) {
		case StatusWidely, StatusLimited, StatusUnsupported:
			*s = Status(val)
			return nil
		}
		return fmt.Errorf("unknown baseline status %q", val)
	}
	return fmt.Errorf("baseline status must be bool or string, got %T", v)
}

// JSONSource loads feature records from JSON: either the embedded
// snapshot or a file on disk.
type JSONSource struct {
	path string // empty means embedded
	data []byte
}

// Embedded returns the JSONSource for the bundled snapshot.
func Embedded() *JSONSource {
	return &JSONSource{data: embeddedFeatures}
}

// JSONFile returns a JSONSource reading from a file at load time.
func JSONFile(path string) *JSONSource {
	return &JSONSource{path: path}
}

// JSONBytes returns a JSONSource over raw bytes, mainly for tests.
func JSONBytes(data []byte) *JSONSource {
	return &JSONSource{data: data}
}

func (s *JSONSource) Name() string {
	if s.path != "" {
		return s.path
	}
	return "embedded features.json"
}

func (s *JSONSource) Load(ctx context.Context) ([]FeatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := s.data
	if s.path != "" {
		var err error
		data, err = os.ReadFile(s.path)
		if err != nil {
			return nil, err
		}
	}
	var records []FeatureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return records, nil
}
