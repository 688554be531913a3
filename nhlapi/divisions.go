package nhlapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	collectionDivisions   = "divisions"
	collectionConferences = "conferences"

	activeField = "active"
)

// Divisions lists the currently active divisions.
func (c *Client) Divisions(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, collectionDivisions, nil)
}

// Division returns a single division by id, active or not.
func (c *Client) Division(ctx context.Context, id int) (json.RawMessage, error) {
	return c.member(ctx, collectionDivisions, id)
}

// InactiveDivisions returns every division whose id is below the smallest
// currently active id.
func (c *Client) InactiveDivisions(ctx context.Context) ([]json.RawMessage, error) {
	return c.inactive(ctx, collectionDivisions)
}

// AllDivisions returns inactive then current divisions, each with an
// "active" field set accordingly.
func (c *Client) AllDivisions(ctx context.Context) ([]json.RawMessage, error) {
	return c.all(ctx, collectionDivisions)
}

// DivisionByName finds a division among the current (active=true) or inactive
// entries. key is matched case-insensitively against name, nameShort,
// shortName and abbreviation; an all-digit key matches the id.
func (c *Client) DivisionByName(ctx context.Context, key string, active bool) (json.RawMessage, error) {
	return c.byName(ctx, collectionDivisions, key, active)
}

// Conferences lists the currently active conferences.
func (c *Client) Conferences(ctx context.Context) ([]json.RawMessage, error) {
	return c.list(ctx, collectionConferences, nil)
}

// Conference returns a single conference by id, active or not.
func (c *Client) Conference(ctx context.Context, id int) (json.RawMessage, error) {
	return c.member(ctx, collectionConferences, id)
}

// InactiveConferences returns every conference whose id is below the smallest
// currently active id.
func (c *Client) InactiveConferences(ctx context.Context) ([]json.RawMessage, error) {
	return c.inactive(ctx, collectionConferences)
}

// AllConferences returns inactive then current conferences, each with an
// "active" field set accordingly.
func (c *Client) AllConferences(ctx context.Context) ([]json.RawMessage, error) {
	return c.all(ctx, collectionConferences)
}

// ConferenceByName finds a conference the same way DivisionByName finds a division.
func (c *Client) ConferenceByName(ctx context.Context, key string, active bool) (json.RawMessage, error) {
	return c.byName(ctx, collectionConferences, key, active)
}

// ConferenceForDivision returns the conference of every division, current or
// inactive, whose id equals division (when it is all digits) or whose name
// contains it, ignoring case.
func (c *Client) ConferenceForDivision(ctx context.Context, division string) ([]json.RawMessage, error) {
	divisions, err := c.AllDivisions(ctx)
	if err != nil {
		return nil, err
	}

	id, byID := parseID(division)
	needle := strings.ToLower(strings.TrimSpace(division))
	var found []json.RawMessage
	for _, raw := range divisions {
		e, err := decodeEntry(raw)
		if err != nil {
			return nil, &FetchError{URL: c.resourceURL(collectionDivisions), Err: err}
		}
		matched := (byID && e.ID == id) || (!byID && needle != "" && strings.Contains(strings.ToLower(e.Name), needle))
		if matched && len(e.Conference) > 0 {
			found = append(found, e.Conference)
		}
	}
	if len(found) == 0 {
		return nil, &NotFoundError{Collection: collectionConferences, Key: division}
	}
	return found, nil
}

func (c *Client) member(ctx context.Context, collection string, id int) (json.RawMessage, error) {
	path := joinPath(collection, strconv.Itoa(id))
	payload, err := c.fetch(ctx, request{label: collection, path: path})
	if err != nil {
		return nil, err
	}
	return firstItem(payload, collection, c.resourceURL(path))
}

func (c *Client) inactive(ctx context.Context, collection string) ([]json.RawMessage, error) {
	current, err := c.list(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	return c.inactiveBelow(ctx, collection, current)
}

// inactiveBelow fetches ids 1 up to the smallest id in current.
func (c *Client) inactiveBelow(ctx context.Context, collection string, current []json.RawMessage) ([]json.RawMessage, error) {
	lowest, err := lowestID(current)
	if err != nil {
		return nil, &FetchError{URL: c.resourceURL(collection), Err: err}
	}

	tasks := make([]fetchTask, 0, lowest)
	for id := 1; id < lowest; id++ {
		tasks = append(tasks, fetchTask{path: joinPath(collection, strconv.Itoa(id))})
	}
	payloads, err := c.fanOut(ctx, collection, tasks, nil)
	if err != nil {
		return nil, err
	}

	items := make([]json.RawMessage, 0, len(payloads))
	for i, payload := range payloads {
		item, err := firstItem(payload, collection, c.resourceURL(tasks[i].path))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) all(ctx context.Context, collection string) ([]json.RawMessage, error) {
	current, err := c.list(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	old, err := c.inactiveBelow(ctx, collection, current)
	if err != nil {
		return nil, err
	}

	out := make([]json.RawMessage, 0, len(old)+len(current))
	for _, group := range []struct {
		items  []json.RawMessage
		active bool
	}{{old, false}, {current, true}} {
		for _, raw := range group.items {
			tagged, err := withActive(raw, group.active)
			if err != nil {
				return nil, &FetchError{URL: c.resourceURL(collection), Err: err}
			}
			out = append(out, tagged)
		}
	}
	return out, nil
}

func (c *Client) byName(ctx context.Context, collection, key string, active bool) (json.RawMessage, error) {
	var (
		items []json.RawMessage
		err   error
	)
	if active {
		items, err = c.list(ctx, collection, nil)
	} else {
		items, err = c.inactive(ctx, collection)
	}
	if err != nil {
		return nil, err
	}

	for _, raw := range items {
		e, err := decodeEntry(raw)
		if err != nil {
			return nil, &FetchError{URL: c.resourceURL(collection), Err: err}
		}
		if e.matches(key) {
			return raw, nil
		}
	}
	return nil, &NotFoundError{Collection: collection, Key: key}
}

// entry holds the fields shared by division and conference objects that
// lookups match on.
type entry struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	NameShort    string          `json:"nameShort"`
	ShortName    string          `json:"shortName"`
	Abbreviation string          `json:"abbreviation"`
	Conference   json.RawMessage `json:"conference"`
}

func decodeEntry(raw json.RawMessage) (entry, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}

func (e entry) matches(key string) bool {
	key = strings.TrimSpace(key)
	if id, ok := parseID(key); ok {
		return e.ID == id
	}
	if key == "" {
		return false
	}
	for _, candidate := range []string{e.Name, e.NameShort, e.ShortName, e.Abbreviation} {
		if candidate != "" && strings.EqualFold(candidate, key) {
			return true
		}
	}
	return false
}

func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !isDigits(s) {
		return 0, false
	}
	id, err := strconv.Atoi(s)
	return id, err == nil
}

// withActive sets the "active" field on a JSON object.
func withActive(raw json.RawMessage, active bool) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("decode entry: expected a JSON object")
	}
	fields[activeField] = json.RawMessage(strconv.FormatBool(active))
	return json.Marshal(fields)
}

func firstItem(payload Payload, collection, target string) (json.RawMessage, error) {
	items, err := decodeCollection(payload, collection, target)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &FetchError{URL: target, Err: fmt.Errorf("response has no %s", collection)}
	}
	return items[0], nil
}

func lowestID(items []json.RawMessage) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("no active entries")
	}
	lowest := 0
	for _, raw := range items {
		var item struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return 0, fmt.Errorf("decode id: %w", err)
		}
		if lowest == 0 || item.ID < lowest {
			lowest = item.ID
		}
	}
	return lowest, nil
}
