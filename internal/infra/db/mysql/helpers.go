package mysql

import (
	"database/sql"
	"encoding/json"

	domain "github.com/bryanwahyu/artscan/internal/domain/artworks"
)

// MySQL has no array column type, so embeddings travel as JSON text.
func encodeVector(v domain.Vector) (string, error) {
	b, err := json.Marshal([]float64(v))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeVector(raw string) domain.Vector {
	var v []float64
	if json.Unmarshal([]byte(raw), &v) != nil {
		return nil
	}
	return domain.Vector(v)
}

func marshalDescription(d map[string]any) (string, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalDescription(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var d map[string]any
	if json.Unmarshal([]byte(raw), &d) != nil {
		return nil
	}
	return d
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}
