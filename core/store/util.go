package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Timestamps are stored as sortable ISO-8601 text without a zone, the format
// the platform has always written. Reads accept a few legacy variants.
const timeLayout = "2006-01-02T15:04:05"

var timeReadLayouts = []string{
	timeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeReadLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func scanTime(ns sql.NullString) (time.Time, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return time.Time{}, nil
	}
	return parseTime(ns.String)
}

func scanTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// boolToInt converts a boolean into 0/1 for SQLite booleans.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// parseLegacyBool normalizes the boolean-like text the old ticket exporter
// wrote into the sla_met column. Unknown or empty text reads as unset.
func parseLegacyBool(s string) *bool {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "true", "yes", "1", "t", "y":
		b := true
		return &b
	case "false", "no", "0", "f", "n":
		b := false
		return &b
	}
	return nil
}

func legacyBoolText(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return "True"
	}
	return "False"
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func round2(f float64) float64 {
	if f < 0 {
		return float64(int64(f*100-0.5)) / 100
	}
	return float64(int64(f*100+0.5)) / 100
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
