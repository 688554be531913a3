package timeutil

import (
	"testing"
	"time"
)

func TestParseAndFormatDate(t *testing.T) {
	parsed, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatDate(parsed); got != "2024-01-15" {
		t.Fatalf("expected round-trip date, got %s", got)
	}
}

func TestCompactDateAndClock(t *testing.T) {
	ts := time.Date(2018, 2, 3, 19, 5, 9, 0, time.UTC)
	if got := FormatCompactDate(ts); got != "20180203" {
		t.Fatalf("expected 20180203, got %s", got)
	}
	if got := FormatClock(ts); got != "190509" {
		t.Fatalf("expected 190509, got %s", got)
	}

	parsed, err := ParseCompactDate("20180203")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Year() != 2018 || parsed.Month() != time.February || parsed.Day() != 3 {
		t.Fatalf("unexpected parsed date %s", parsed)
	}
}

func TestParseDateRejectsInvalid(t *testing.T) {
	if _, err := ParseDate("2024/01/15"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
	if _, err := ParseCompactDate("2024011"); err == nil {
		t.Fatal("expected error for short compact date")
	}
}

func TestResolveTimezone(t *testing.T) {
	if ResolveTimezone("") != nil {
		t.Fatal("expected nil for empty tz")
	}
	if ResolveTimezone("Not/AZone") != nil {
		t.Fatal("expected nil for unknown tz")
	}
	loc := ResolveTimezone("America/New_York")
	if loc == nil || loc.String() != "America/New_York" {
		t.Fatalf("unexpected location %v", loc)
	}
}
