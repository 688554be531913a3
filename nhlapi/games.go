package nhlapi

import (
	"context"
	"net/url"
	"strconv"
)

// Game is one fetched game resource.
type Game struct {
	ID   string  `json:"id"`
	Body Payload `json:"body"`
}

// Feed returns the full live feed for a game, or for every game of the season
// when gameNumber is nil, 0 or "0".
func (c *Client) Feed(ctx context.Context, season, gameType, gameNumber any) ([]Game, error) {
	return c.games(ctx, DetailFeed, season, gameType, gameNumber, nil)
}

// Boxscore returns post-game boxscores.
func (c *Client) Boxscore(ctx context.Context, season, gameType, gameNumber any) ([]Game, error) {
	return c.games(ctx, DetailBoxscore, season, gameType, gameNumber, nil)
}

// Content returns game media content.
func (c *Client) Content(ctx context.Context, season, gameType, gameNumber any) ([]Game, error) {
	return c.games(ctx, DetailContent, season, gameType, gameNumber, nil)
}

// gameSelection is the validated set of games a call targets.
type gameSelection struct {
	season   string
	span     SeasonRange
	gameType string
	numbers  []string
}

func (s gameSelection) ids() []string {
	ids := make([]string, 0, len(s.numbers))
	for _, n := range s.numbers {
		ids = append(ids, BuildGameID(s.season, s.gameType, n))
	}
	return ids
}

// selectGames validates inputs and resolves the game numbers to fetch without
// touching the network.
func (c *Client) selectGames(season, gameType, gameNumber any) (gameSelection, error) {
	year, err := NormalizeSeason(season)
	if err != nil {
		return gameSelection{}, err
	}
	code, err := c.gameType(gameType)
	if err != nil {
		return gameSelection{}, err
	}
	number, err := parseGameNumber(gameNumber)
	if err != nil {
		return gameSelection{}, err
	}

	start, _ := strconv.Atoi(year)
	sel := gameSelection{
		season:   year,
		span:     SeasonRange{Start: start, End: start + 1},
		gameType: code,
	}
	key := sel.span.String()

	if number == 0 {
		numbers, err := c.seasons.GameNumbers(key)
		if err != nil {
			return gameSelection{}, err
		}
		sel.numbers = numbers
		return sel, nil
	}

	limit, err := c.seasons.MaxGameNumber(key)
	if err != nil {
		return gameSelection{}, err
	}
	if number > limit {
		rErr := &RangeError{Season: key, GameNumber: padGameNumber(number)}
		if limit > 0 {
			rErr.Max = padGameNumber(limit)
		}
		return gameSelection{}, rErr
	}
	sel.numbers = []string{padGameNumber(number)}
	return sel, nil
}

func (c *Client) games(ctx context.Context, detail string, season, gameType, gameNumber any, params url.Values) ([]Game, error) {
	sel, err := c.selectGames(season, gameType, gameNumber)
	if err != nil {
		return nil, err
	}
	return c.fetchSelection(ctx, detail, sel, params)
}

func (c *Client) fetchSelection(ctx context.Context, detail string, sel gameSelection, params url.Values) ([]Game, error) {
	ids := sel.ids()
	tasks := make([]fetchTask, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, fetchTask{gameID: id, path: c.gamePath(id, detail)})
	}

	payloads, err := c.fanOut(ctx, detail, tasks, params)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(payloads))
	for i, payload := range payloads {
		games = append(games, Game{ID: tasks[i].gameID, Body: payload})
	}
	return games, nil
}
