package nhlapi

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Recognised values for the expand query parameter on team endpoints.
const (
	ExpandTeamRoster           = "team.roster"
	ExpandPersonNames          = "person.names"
	ExpandTeamScheduleNext     = "team.schedule.next"
	ExpandTeamSchedulePrevious = "team.schedule.previous"
	ExpandTeamStats            = "team.stats"
)

var validExpands = map[string]struct{}{
	ExpandTeamRoster:           {},
	ExpandPersonNames:          {},
	ExpandTeamScheduleNext:     {},
	ExpandTeamSchedulePrevious: {},
	ExpandTeamStats:            {},
}

// TeamsQuery narrows the teams listing.
type TeamsQuery struct {
	IDs []int
	// Expand keys that are not recognised are dropped.
	Expand []string
	// Season is the first year of the season, e.g. 2017 for 2017-2018.
	Season any
}

// Values encodes the query as teamId, expand and season parameters.
func (q TeamsQuery) Values() (url.Values, error) {
	params := url.Values{}
	if len(q.IDs) > 0 {
		ids := make([]string, 0, len(q.IDs))
		for _, id := range q.IDs {
			ids = append(ids, strconv.Itoa(id))
		}
		params.Set("teamId", strings.Join(ids, ","))
	}

	expand := make([]string, 0, len(q.Expand))
	for _, key := range q.Expand {
		if _, ok := validExpands[key]; ok {
			expand = append(expand, key)
		}
	}
	if len(expand) > 0 {
		params.Set("expand", strings.Join(expand, ","))
	}

	if q.Season != nil && q.Season != "" {
		season, err := FormatTeamSeason(q.Season)
		if err != nil {
			return nil, err
		}
		params.Set("season", season)
	}
	return params, nil
}

// Teams lists teams matching the query.
func (c *Client) Teams(ctx context.Context, q TeamsQuery) ([]json.RawMessage, error) {
	params, err := q.Values()
	if err != nil {
		return nil, err
	}
	return c.list(ctx, "teams", params)
}

// TeamRoster returns the roster for one team.
func (c *Client) TeamRoster(ctx context.Context, id int) (Payload, error) {
	return c.Get(ctx, joinPath("teams", strconv.Itoa(id), "roster"), nil)
}

// TeamStats returns season statistics for one team.
func (c *Client) TeamStats(ctx context.Context, id int) (Payload, error) {
	return c.Get(ctx, joinPath("teams", strconv.Itoa(id), "stats"), nil)
}

// list fetches a collection endpoint and returns the array stored under the
// collection's own name, e.g. {"teams": [...]}.
func (c *Client) list(ctx context.Context, collection string, params url.Values) ([]json.RawMessage, error) {
	payload, err := c.fetch(ctx, request{label: collection, path: collection, params: params})
	if err != nil {
		return nil, err
	}
	return decodeCollection(payload, collection, c.resourceURL(collection))
}

func decodeCollection(payload Payload, collection, target string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := payload.Decode(collection, &items); err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	return items, nil
}
