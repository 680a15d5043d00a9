package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// ParseTime parses a date string in "2006-01-02", RFC3339 or SQLite
// CURRENT_TIMESTAMP format.
// Note: mirrors validation.ParseTime — both are intentionally kept local to avoid cross-layer imports.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// parseNullTime converts a nullable column into a *time.Time.
func parseNullTime(str sql.NullString) (*time.Time, error) {
	if !str.Valid || str.String == "" {
		return nil, nil
	}
	t, err := ParseTime(str.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatTime renders a timestamp for storage. Nil stays NULL.
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
