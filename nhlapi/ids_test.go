package nhlapi

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeSeason(t *testing.T) {
	cases := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{"int", 2017, "2017", false},
		{"int64", int64(2017), "2017", false},
		{"uint16", uint16(1999), "1999", false},
		{"string", "2017", "2017", false},
		{"time", time.Date(2017, 10, 5, 0, 0, 0, 0, time.UTC), "2017", false},
		{"first valid year", 1941, "1941", false},
		{"bound int", 1940, "", true},
		{"bound string", "1940", "", true},
		{"old time", time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC), "", true},
		{"short string", "17", "", true},
		{"long string", "20172", "", true},
		{"non numeric", "abcd", "", true},
		{"float", 2017.0, "", true},
		{"nil", nil, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeSeason(tc.in)
			if tc.wantErr {
				if _, ok := AsValidationError(err); !ok {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("NormalizeSeason(%v) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name    string
		in      any
		want    string
		wantErr bool
	}{
		{"string", "20171005", "20171005", false},
		{"int", 20171005, "20171005", false},
		{"time", time.Date(2017, 10, 5, 22, 0, 0, 0, time.UTC), "20171005", false},
		{"lower bound", "19400101", "19400101", false},
		{"before bound string", "19391231", "", true},
		{"before bound int", 19391231, "", true},
		{"short", "2017105", "", true},
		{"dashed", "2017-10-05", "", true},
		{"bool", true, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeDate(tc.in)
			if tc.wantErr {
				if _, ok := AsValidationError(err); !ok {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("NormalizeDate(%v) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	if got, err := NormalizeTime("123000"); err != nil || got != "123000" {
		t.Fatalf("unexpected %q %v", got, err)
	}
	if got, err := NormalizeTime(time.Date(2017, 1, 1, 9, 5, 7, 0, time.UTC)); err != nil || got != "090507" {
		t.Fatalf("unexpected %q %v", got, err)
	}
	for _, bad := range []any{"1230", "12a000", "1230000", 123000, nil} {
		if _, err := NormalizeTime(bad); err == nil {
			t.Fatalf("expected error for %v", bad)
		} else if _, ok := AsValidationError(err); !ok {
			t.Fatalf("expected ValidationError for %v, got %v", bad, err)
		}
	}
}

func TestNormalizeGameType(t *testing.T) {
	valid := map[any]string{
		1:           GameTypePreseason,
		2:           GameTypeRegular,
		int8(3):     GameTypePlayoffs,
		"4":         GameTypeAllStar,
		"02":        GameTypeRegular,
		"preseason": GameTypePreseason,
		"regular":   GameTypeRegular,
		"playoffs":  GameTypePlayoffs,
		"all-star":  GameTypeAllStar,
	}
	for in, want := range valid {
		got, err := NormalizeGameType(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeGameType(%v) = %q, %v; want %q", in, got, err, want)
		}
		got, err = NormalizeGameTypeStrict(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeGameTypeStrict(%v) = %q, %v; want %q", in, got, err, want)
		}
	}

	for _, bad := range []any{0, 5, "5", "x", "", "11", "playoff", true, 2.0} {
		if _, err := NormalizeGameType(bad); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestNormalizeGameTypeLooseAcceptsAnyCodeWithZero(t *testing.T) {
	got, err := NormalizeGameType("20")
	if err != nil || got != "20" {
		t.Fatalf("expected loose pass-through, got %q %v", got, err)
	}
	if _, err := NormalizeGameTypeStrict("20"); err == nil {
		t.Fatalf("expected strict rejection of 20")
	}
	if _, err := NormalizeGameTypeStrict("05"); err == nil {
		t.Fatalf("expected strict rejection of 05")
	}
}

func TestFormatGameNumber(t *testing.T) {
	valid := map[any]string{
		7:      "0007",
		"7":    "0007",
		"0007": "0007",
		1234:   "1234",
		9999:   "9999",
		0:      "0000",
	}
	for in, want := range valid {
		got, err := FormatGameNumber(in)
		if err != nil || got != want {
			t.Fatalf("FormatGameNumber(%v) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []any{12345, -1, "12a", "12345", 3.0} {
		if _, err := FormatGameNumber(bad); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func TestBuildGameIDShape(t *testing.T) {
	for _, season := range []any{1941, 2017, "2023"} {
		for _, gameType := range []any{1, 2, 3, 4} {
			for _, number := range []any{1, 82, "1271"} {
				s, err := NormalizeSeason(season)
				if err != nil {
					t.Fatal(err)
				}
				gt, err := NormalizeGameType(gameType)
				if err != nil {
					t.Fatal(err)
				}
				n, err := FormatGameNumber(number)
				if err != nil {
					t.Fatal(err)
				}
				id := BuildGameID(s, gt, n)
				if len(id) != 10 || !isDigits(id) {
					t.Fatalf("expected 10 digit id, got %q", id)
				}
				if id[:4] != s || id[4:6] != gt || id[6:] != n {
					t.Fatalf("id %q does not decompose into %s/%s/%s", id, s, gt, n)
				}
			}
		}
	}
	if got := BuildGameID("2017", "02", "0001"); got != "2017020001" {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestTimecode(t *testing.T) {
	if got := Timecode("20171005", "193000"); got != "20171005_193000" {
		t.Fatalf("unexpected timecode %q", got)
	}
}

func TestSeasonRange(t *testing.T) {
	r, err := NewSeasonRange(2017)
	if err != nil {
		t.Fatal(err)
	}
	if r.String() != "2017-2018" || r.Compact() != "20172018" {
		t.Fatalf("unexpected range %s / %s", r.String(), r.Compact())
	}
	if _, err := NewSeasonRange("bad"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFormatTeamSeason(t *testing.T) {
	got, err := FormatTeamSeason("2017")
	if err != nil || got != "20172018" {
		t.Fatalf("unexpected %q %v", got, err)
	}

	_, err = FormatTeamSeason(17)
	vErr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(vErr.Reason, "first year of the season") {
		t.Fatalf("expected hint in reason, got %q", vErr.Reason)
	}
}
