package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// sqliteDateLayouts are the textual forms SQLite hands back for date columns
// when the driver cannot see a declared type, e.g. for MAX(payment_date).
var sqliteDateLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// nullDate scans DATE values from both PostgreSQL (time.Time) and SQLite
// (time.Time or text), normalising to UTC midnight.
type nullDate struct {
	Time  time.Time
	Valid bool
}

func (d *nullDate) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time, d.Valid = toDate(v), true
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into date", value)
	}
}

func (d *nullDate) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range sqliteDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time, d.Valid = toDate(t), true
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as date", s)
}

func (d nullDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Time, nil
}

func (d nullDate) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toDate(*t)
}
