package timeutil

import "time"

const (
	// DateLayout defines the canonical display date format (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// CompactDateLayout is the upstream date encoding (YYYYMMDD).
	CompactDateLayout = "20060102"
	// ClockLayout is the upstream time-of-day encoding (HHMMSS).
	ClockLayout = "150405"
)

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseCompactDate parses a YYYYMMDD date string.
func ParseCompactDate(value string) (time.Time, error) {
	return time.Parse(CompactDateLayout, value)
}

// FormatCompactDate formats a time as YYYYMMDD in its current location.
func FormatCompactDate(t time.Time) string {
	return t.Format(CompactDateLayout)
}

// FormatClock formats the time-of-day portion as HHMMSS.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// ResolveTimezone returns a location for a tz string, or nil if it is empty or unknown.
func ResolveTimezone(tz string) *time.Location {
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil
	}
	return loc
}
