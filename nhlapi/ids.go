package nhlapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dtemkin/nhlapi-go/internal/timeutil"
)

const (
	// MinSeason is the exclusive lower bound for a season's first year.
	MinSeason = 1940
	// MinDate is the inclusive lower bound for YYYYMMDD dates.
	MinDate = 19400101

	maxGameNumber = 9999
)

// Game type codes as expected in the third segment of a GameID.
const (
	GameTypePreseason = "01"
	GameTypeRegular   = "02"
	GameTypePlayoffs  = "03"
	GameTypeAllStar   = "04"
)

var gameTypeNames = map[string]string{
	"preseason": GameTypePreseason,
	"regular":   GameTypeRegular,
	"playoffs":  GameTypePlayoffs,
	"all-star":  GameTypeAllStar,
}

var gameTypeCodes = map[string]struct{}{
	GameTypePreseason: {},
	GameTypeRegular:   {},
	GameTypePlayoffs:  {},
	GameTypeAllStar:   {},
}

// SeasonRange is the pair of calendar years a season spans.
type SeasonRange struct {
	Start int
	End   int
}

// NewSeasonRange builds the range for a season's first year.
func NewSeasonRange(season any) (SeasonRange, error) {
	year, err := NormalizeSeason(season)
	if err != nil {
		return SeasonRange{}, err
	}
	start, _ := strconv.Atoi(year)
	return SeasonRange{Start: start, End: start + 1}, nil
}

// String returns the lookup/display form, e.g. "2017-2018".
func (r SeasonRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Compact returns the query-parameter form, e.g. "20172018".
func (r SeasonRange) Compact() string {
	return fmt.Sprintf("%04d%04d", r.Start, r.End)
}

// NormalizeSeason accepts an integer year, a 4-digit numeric string or a
// time.Time and returns the season's first year as 4 digits.
func NormalizeSeason(v any) (string, error) {
	if n, ok := asInt(v); ok {
		return seasonFromYear(n, v)
	}
	switch s := v.(type) {
	case string:
		if !isDigits(s) {
			return "", invalid("season", v, "must be numeric in YYYY format")
		}
		if len(s) != 4 {
			return "", invalid("season", v, "must have exactly 4 digits (YYYY)")
		}
		year, _ := strconv.ParseInt(s, 10, 64)
		if year <= MinSeason {
			return "", invalid("season", v, fmt.Sprintf("must be after %d", MinSeason))
		}
		return s, nil
	case time.Time:
		return seasonFromYear(int64(s.Year()), v)
	default:
		return "", invalid("season", v, "must be a string, integer or time.Time")
	}
}

func seasonFromYear(year int64, raw any) (string, error) {
	if year <= MinSeason || year > 9999 {
		return "", invalid("season", raw, fmt.Sprintf("out of range; must be after %d", MinSeason))
	}
	return strconv.FormatInt(year, 10), nil
}

// NormalizeDate accepts an 8-digit numeric string, an integer or a time.Time
// and returns YYYYMMDD.
func NormalizeDate(v any) (string, error) {
	if n, ok := asInt(v); ok {
		if n < MinDate || n > 99999999 {
			return "", invalid("date", v, fmt.Sprintf("out of range; must be on or after %d", MinDate))
		}
		return strconv.FormatInt(n, 10), nil
	}
	switch s := v.(type) {
	case string:
		if !isDigits(s) {
			return "", invalid("date", v, "must be numeric in YYYYMMDD format")
		}
		if len(s) != 8 {
			return "", invalid("date", v, "must have exactly 8 digits (YYYYMMDD)")
		}
		if n, _ := strconv.ParseInt(s, 10, 64); n < MinDate {
			return "", invalid("date", v, fmt.Sprintf("must be on or after %d", MinDate))
		}
		return s, nil
	case time.Time:
		date := timeutil.FormatCompactDate(s)
		if n, _ := strconv.ParseInt(date, 10, 64); n < MinDate {
			return "", invalid("date", v, fmt.Sprintf("must be on or after %d", MinDate))
		}
		return date, nil
	default:
		return "", invalid("date", v, "must be a string, integer or time.Time")
	}
}

// NormalizeTime accepts a 6-digit numeric string (or a time.Time) and returns HHMMSS.
func NormalizeTime(v any) (string, error) {
	switch s := v.(type) {
	case string:
		if !isDigits(s) {
			return "", invalid("time", v, "must be numeric in HHMMSS format")
		}
		if len(s) != 6 {
			return "", invalid("time", v, "must have exactly 6 digits (HHMMSS)")
		}
		return s, nil
	case time.Time:
		return timeutil.FormatClock(s), nil
	default:
		return "", invalid("time", v, "must be an HHMMSS string")
	}
}

// NormalizeGameType maps 1-4, "1"-"4", a 2-character code or a canonical name
// to the 2-digit game type code.
//
// Any 2-character string containing "0" is passed through unchanged. Use
// NormalizeGameTypeStrict to accept only the four known codes.
func NormalizeGameType(v any) (string, error) {
	return normalizeGameType(v, false)
}

// NormalizeGameTypeStrict behaves like NormalizeGameType but rejects 2-character
// strings other than "01", "02", "03" and "04".
func NormalizeGameTypeStrict(v any) (string, error) {
	return normalizeGameType(v, true)
}

func normalizeGameType(v any, strict bool) (string, error) {
	if n, ok := asInt(v); ok {
		return gameTypeFromInt(n, v)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalid("game type", v, "must be an integer or string")
	}

	switch {
	case len(s) < 2:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", invalid("game type", v, "must be a value 1-4")
		}
		return gameTypeFromInt(n, v)
	case len(s) == 2:
		if strict {
			if _, known := gameTypeCodes[s]; known {
				return s, nil
			}
		} else if strings.Contains(s, "0") {
			return s, nil
		}
		return "", invalid("game type", v, `must be one of "01", "02", "03", "04"`)
	}

	if code, known := gameTypeNames[s]; known {
		return code, nil
	}
	return "", invalid("game type", v, `must be "01"-"04" or one of "preseason", "regular", "playoffs", "all-star"`)
}

func gameTypeFromInt(n int64, raw any) (string, error) {
	if n < 1 || n > 4 {
		return "", invalid("game type", raw, "must be a value 1-4")
	}
	return "0" + strconv.FormatInt(n, 10), nil
}

// FormatGameNumber zero-pads an integer or numeric string to 4 digits.
func FormatGameNumber(v any) (string, error) {
	n, err := parseGameNumber(v)
	if err != nil {
		return "", err
	}
	return padGameNumber(n), nil
}

func padGameNumber(n int) string {
	return fmt.Sprintf("%04d", n)
}

func parseGameNumber(v any) (int, error) {
	if v == nil {
		return 0, nil
	}
	if n, ok := asInt(v); ok {
		if n < 0 || n > maxGameNumber {
			return 0, invalid("game number", v, fmt.Sprintf("must be between 0 and %d", maxGameNumber))
		}
		return int(n), nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, invalid("game number", v, "must be an integer or numeric string")
	}
	if s == "" {
		return 0, nil
	}
	if !isDigits(s) || len(s) > 4 {
		return 0, invalid("game number", v, "must be numeric with at most 4 digits")
	}
	n, _ := strconv.Atoi(s)
	return n, nil
}

// BuildGameID concatenates the normalized season, game type and game number.
func BuildGameID(season, gameType, gameNumber string) string {
	return season + gameType + gameNumber
}

// Timecode joins a YYYYMMDD date and HHMMSS time for the startTimecode parameter.
func Timecode(date, clock string) string {
	return date + "_" + clock
}

// FormatTeamSeason converts a season's first year into the 8-digit form used by
// the season query parameter (2017 -> "20172018").
func FormatTeamSeason(v any) (string, error) {
	r, err := NewSeasonRange(v)
	if err != nil {
		if vErr, ok := AsValidationError(err); ok {
			vErr.Reason += "; use the first year of the season (e.g. 2017 for 2017-2018)"
		}
		return "", err
	}
	return r.Compact(), nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
