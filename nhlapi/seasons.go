package nhlapi

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	lockoutSeason  = "2004-2005"
	fallbackMargin = 100
)

//go:embed data/seasons_info.csv
var defaultSeasonsCSV []byte

var seasonTableHeader = []string{"num", "season", "num_teams", "reg_season_games", "total_games"}

// SeasonInfo is one row of the season reference dataset.
type SeasonInfo struct {
	Num            int
	Season         string
	NumTeams       int
	RegSeasonGames int
	TotalGames     int
}

// SeasonTable maps "YYYY-YYYY" season keys to game counts. It is immutable once
// loaded and safe for concurrent use.
type SeasonTable struct {
	rows     map[string]SeasonInfo
	maxTotal int
}

// DefaultSeasonTable parses the dataset bundled with the package.
func DefaultSeasonTable() (*SeasonTable, error) {
	return LoadSeasonTable(bytes.NewReader(defaultSeasonsCSV))
}

// LoadSeasonTableFile reads a season dataset from disk.
func LoadSeasonTableFile(path string) (*SeasonTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open season table: %w", err)
	}
	defer f.Close()
	return LoadSeasonTable(f)
}

// LoadSeasonTable parses CSV rows of num,season,num_teams,reg_season_games,total_games.
// A leading header row is optional.
func LoadSeasonTable(r io.Reader) (*SeasonTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(seasonTableHeader)
	reader.TrimLeadingSpace = true

	table := &SeasonTable{rows: make(map[string]SeasonInfo)}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read season table: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), seasonTableHeader[0]) {
			continue
		}

		info, err := parseSeasonRecord(record)
		if err != nil {
			return nil, fmt.Errorf("season table line %d: %w", line, err)
		}
		table.rows[info.Season] = info
		if info.TotalGames > table.maxTotal {
			table.maxTotal = info.TotalGames
		}
	}
	return table, nil
}

func parseSeasonRecord(record []string) (SeasonInfo, error) {
	ints := make([]int, 0, 4)
	for _, idx := range []int{0, 2, 3, 4} {
		n, err := strconv.Atoi(strings.TrimSpace(record[idx]))
		if err != nil {
			return SeasonInfo{}, fmt.Errorf("column %s: %w", seasonTableHeader[idx], err)
		}
		ints = append(ints, n)
	}
	season := strings.TrimSpace(record[1])
	if season == "" {
		return SeasonInfo{}, errors.New("column season: empty")
	}
	return SeasonInfo{
		Num:            ints[0],
		Season:         season,
		NumTeams:       ints[1],
		RegSeasonGames: ints[2],
		TotalGames:     ints[3],
	}, nil
}

// Len reports the number of seasons in the table.
func (t *SeasonTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Season returns the row recorded for a "YYYY-YYYY" season key.
func (t *SeasonTable) Season(season string) (SeasonInfo, bool) {
	if t == nil {
		return SeasonInfo{}, false
	}
	info, ok := t.rows[season]
	return info, ok
}

// GameNumbers returns every valid 4-digit game number for the season, from
// "0001" up to (but excluding) the recorded total. The 2004-2005 lockout has no
// games. Seasons missing from the table fall back to the largest recorded total
// plus a margin of 100.
func (t *SeasonTable) GameNumbers(season string) ([]string, error) {
	limit, err := t.MaxGameNumber(season)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		numbers = append(numbers, padGameNumber(i))
	}
	return numbers, nil
}

// MaxGameNumber returns the highest valid game number for the season (0 when
// the season has no games).
func (t *SeasonTable) MaxGameNumber(season string) (int, error) {
	if season == lockoutSeason {
		return 0, nil
	}
	total, err := t.totalGames(season)
	if err != nil {
		return 0, err
	}
	if total <= 1 {
		return 0, nil
	}
	return total - 1, nil
}

// Contains reports whether the game number is valid for the season.
func (t *SeasonTable) Contains(season string, gameNumber int) (bool, error) {
	limit, err := t.MaxGameNumber(season)
	if err != nil {
		return false, err
	}
	return gameNumber >= 1 && gameNumber <= limit, nil
}

func (t *SeasonTable) totalGames(season string) (int, error) {
	if t.Len() == 0 {
		return 0, &LookupError{Season: season}
	}
	if info, ok := t.rows[season]; ok && info.TotalGames > 0 {
		return info.TotalGames, nil
	}
	return t.maxTotal + fallbackMargin, nil
}
