package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SplitTolerance is the allowed difference between a payment amount and the
// sum of the monthly prices it is split across.
var SplitTolerance = decimal.New(1, -2)

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last calendar day of the given month.
func EndOfMonth(year, month int) time.Time {
	return time.Date(year, time.Month(month), DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
}

// ElapsedMonths counts calendar months from start to cutoff, the start month
// being month 1. Day of month is ignored; the result is < 1 when cutoff lies
// in an earlier month than start.
func ElapsedMonths(start, cutoff time.Time) int {
	return (cutoff.Year()-start.Year())*12 + int(cutoff.Month()) - int(start.Month()) + 1
}

// ExpectedAmount is the rent owed from start through the cutoff month.
// Partial months are never prorated.
func ExpectedAmount(start, cutoff time.Time, monthlyPrice decimal.Decimal) decimal.Decimal {
	months := ElapsedMonths(start, cutoff)
	if months < 1 {
		return decimal.Zero
	}
	return monthlyPrice.Mul(decimal.NewFromInt(int64(months)))
}

// OutstandingAmount returns expected - paid; negative means overpaid.
func OutstandingAmount(expected, paid decimal.Decimal) decimal.Decimal {
	return expected.Sub(paid)
}

// IsOutstanding reports whether paid falls strictly short of expected.
func IsOutstanding(expected, paid decimal.Decimal) bool {
	return paid.LessThan(expected)
}

// WithinTolerance reports whether |a-b| <= SplitTolerance.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(SplitTolerance)
}

// ParseDate converts a dd.MM.yyyy string into a UTC date.
func ParseDate(dateStr string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(dateStr), ".")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return time.Time{}, fmt.Errorf("invalid date format, expected dd.mm.yyyy")
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %v", err)
	}

	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year: %v", err)
	}

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}

	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// ParseMonth converts MM.yyyy into the last day of that month.
func ParseMonth(monthStr string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(monthStr), ".")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid month format, expected mm.yyyy")
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return time.Time{}, fmt.Errorf("invalid year %q", parts[1])
	}
	return EndOfMonth(year, month), nil
}

var currencyMarks = []string{"€", "EUR", "$", "USD", "\"", "'", " ", "\u00a0"}

// ParseAmount parses a currency cell such as "45,00 €", "\"1.234,56\"" or "1,234.56".
// When both separators occur the right-most one is the decimal mark; a lone comma
// is a decimal mark.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	for _, mark := range currencyMarks {
		s = strings.ReplaceAll(s, mark, "")
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, fmt.Errorf("invalid amount %q", s)
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %v", s, err)
	}
	return d, nil
}
