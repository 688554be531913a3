package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtemkin/nhlapi-go/internal/logging"
	"github.com/dtemkin/nhlapi-go/internal/server"
	"github.com/dtemkin/nhlapi-go/internal/timeutil"
	"github.com/dtemkin/nhlapi-go/nhlapi"
)

type gameFetcher func(c *nhlapi.Client, ctx context.Context, season, gameType, gameNumber any) ([]nhlapi.Game, error)

type gameFlags struct {
	season   string
	gameType string
	game     string
}

func (f *gameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.season, "season", "", "First year of the season, e.g. 2017 for 2017-2018")
	cmd.Flags().StringVar(&f.gameType, "type", "regular", "Game type: 1-4, 01-04, preseason, regular, playoffs or all-star")
	cmd.Flags().StringVar(&f.game, "game", "0", "Game number; 0 fetches every game of the season")
	_ = cmd.MarkFlagRequired("season")
}

func (a *app) gameCmd(name, short string, fetch gameFetcher) *cobra.Command {
	var f gameFlags
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			start := time.Now()
			games, err := fetch(client, cmd.Context(), f.season, f.gameType, f.game)
			if err != nil {
				return err
			}
			logging.Info(a.logger, "fetch complete",
				slog.String(logging.FieldDetail, name),
				slog.String(logging.FieldSeason, f.season),
				slog.Int(logging.FieldCount, len(games)),
				elapsed(start),
			)
			return writeJSON(a.out, games)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) updatesCmd() *cobra.Command {
	var (
		f       gameFlags
		date    string
		from    string
		minutes int
		serve   bool
	)
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "Fetch diff-patch updates since a time, or poll a rolling window",
		RunE: func(cmd *cobra.Command, args []string) error {
			gameDate, err := parseGameDate(date)
			if err != nil {
				return err
			}
			req := nhlapi.UpdatesRequest{
				Season:     f.season,
				GameType:   f.gameType,
				GameDate:   gameDate,
				GameNumber: f.game,
				NMinutes:   minutes,
			}
			if from != "" {
				req.FromTime = from
			}
			logging.Debug(a.logger, "updates requested",
				slog.String(logging.FieldSeason, f.season),
				slog.String("game_date", timeutil.FormatDate(gameDate)),
			)

			if serve {
				return a.serveUpdates(cmd.Context(), req)
			}

			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			if minutes == 0 {
				games, err := client.Updates(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(a.out, games)
			}

			req.OnBatch = a.batchPrinter()
			_, err = client.Updates(cmd.Context(), req)
			if isShutdown(err) {
				return nil
			}
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "Game date as YYYYMMDD or YYYY-MM-DD")
	cmd.Flags().StringVar(&from, "from", "", "Fetch updates since this HHMMSS time on the game date")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Poll continuously for updates from the last N minutes")
	cmd.Flags().BoolVar(&serve, "serve", false, "With --minutes, run as a service exposing /healthz and /metrics")
	_ = cmd.MarkFlagRequired("date")
	cmd.MarkFlagsMutuallyExclusive("from", "serve")
	return cmd
}

// serveUpdates runs the background poller with a health and metrics listener
// until the context is cancelled.
func (a *app) serveUpdates(ctx context.Context, req nhlapi.UpdatesRequest) error {
	telemetry := server.SetupTelemetry(ctx, a.cfg.Metrics, a.logger)
	client, err := a.newClient(telemetry.Recorder)
	if err != nil {
		return err
	}
	req.OnBatch = a.batchPrinter()
	poller, err := client.NewUpdatePoller(req)
	if err != nil {
		return err
	}

	stop := a.stop
	if stop == nil {
		stop = func() {}
	}
	server.New(a.cfg.Metrics, a.logger, telemetry, poller).Run(ctx, stop)
	return nil
}

// batchPrinter writes each batch as one JSON line.
func (a *app) batchPrinter() func([]nhlapi.Game) {
	var mu sync.Mutex
	return func(batch []nhlapi.Game) {
		mu.Lock()
		defer mu.Unlock()
		if err := json.NewEncoder(a.out).Encode(batch); err != nil {
			logging.Error(a.logger, "failed to write batch", err)
		}
	}
}

// parseGameDate accepts YYYY-MM-DD or YYYYMMDD and rejects impossible calendar dates.
func parseGameDate(raw string) (time.Time, error) {
	parse := timeutil.ParseCompactDate
	if strings.Contains(raw, "-") {
		parse = timeutil.ParseDate
	}
	t, err := parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --date %q: %w", raw, err)
	}
	return t, nil
}

func (a *app) teamsCmd() *cobra.Command {
	var (
		ids    []int
		expand []string
		season string
		roster bool
		stats  bool
	)
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			if roster || stats {
				if len(ids) != 1 {
					return fmt.Errorf("--roster and --stats need exactly one --id")
				}
				fetch := client.TeamRoster
				if stats {
					fetch = client.TeamStats
				}
				payload, err := fetch(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				return writeJSON(a.out, payload)
			}

			q := nhlapi.TeamsQuery{IDs: ids, Expand: expand}
			if season != "" {
				q.Season = season
			}
			teams, err := client.Teams(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(a.out, teams)
		},
	}
	cmd.Flags().IntSliceVar(&ids, "id", nil, "Team id (repeatable)")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Expansion key, e.g. team.roster (repeatable)")
	cmd.Flags().StringVar(&season, "season", "", "First year of the season, e.g. 2017")
	cmd.Flags().BoolVar(&roster, "roster", false, "Fetch the roster of the single --id team")
	cmd.Flags().BoolVar(&stats, "stats", false, "Fetch the stats of the single --id team")
	cmd.MarkFlagsMutuallyExclusive("roster", "stats")
	return cmd
}

type (
	listFunc   func(*nhlapi.Client, context.Context) ([]json.RawMessage, error)
	memberFunc func(*nhlapi.Client, context.Context, int) (json.RawMessage, error)
	nameFunc   func(*nhlapi.Client, context.Context, string, bool) (json.RawMessage, error)
)

// groupOps holds the client methods behind the divisions and conferences
// commands. forDivision is only set for conferences.
type groupOps struct {
	list        listFunc
	member      memberFunc
	inactive    listFunc
	all         listFunc
	byName      nameFunc
	forDivision func(*nhlapi.Client, context.Context, string) ([]json.RawMessage, error)
}

var (
	divisionOps = groupOps{
		list:     (*nhlapi.Client).Divisions,
		member:   (*nhlapi.Client).Division,
		inactive: (*nhlapi.Client).InactiveDivisions,
		all:      (*nhlapi.Client).AllDivisions,
		byName:   (*nhlapi.Client).DivisionByName,
	}
	conferenceOps = groupOps{
		list:        (*nhlapi.Client).Conferences,
		member:      (*nhlapi.Client).Conference,
		inactive:    (*nhlapi.Client).InactiveConferences,
		all:         (*nhlapi.Client).AllConferences,
		byName:      (*nhlapi.Client).ConferenceByName,
		forDivision: (*nhlapi.Client).ConferenceForDivision,
	}
)

// groupCmd builds the divisions and conferences commands, which share a shape.
func (a *app) groupCmd(name string, ops groupOps) *cobra.Command {
	var (
		id           int
		key          string
		division     string
		all          bool
		onlyInactive bool
	)
	cmd := &cobra.Command{
		Use:   name,
		Short: "List " + name,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			switch {
			case id > 0:
				return a.writeOne(ops.member(client, ctx, id))
			case key != "":
				return a.writeOne(ops.byName(client, ctx, key, !onlyInactive))
			case division != "":
				return a.writeMany(ops.forDivision(client, ctx, division))
			case all:
				return a.writeMany(ops.all(client, ctx))
			case onlyInactive:
				return a.writeMany(ops.inactive(client, ctx))
			default:
				return a.writeMany(ops.list(client, ctx))
			}
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Fetch a single entry by id")
	cmd.Flags().StringVar(&key, "name", "", "Find an entry by name, short name or abbreviation (current unless --inactive)")
	cmd.Flags().BoolVar(&all, "all", false, "List inactive and current entries with an active flag")
	cmd.Flags().BoolVar(&onlyInactive, "inactive", false, "List entries that are no longer active, or search them with --name")
	cmd.MarkFlagsMutuallyExclusive("id", "name", "all")
	cmd.MarkFlagsMutuallyExclusive("id", "inactive")
	cmd.MarkFlagsMutuallyExclusive("all", "inactive")
	if ops.forDivision != nil {
		cmd.Flags().StringVar(&division, "division", "", "Find the conference of a division by id or partial name")
		cmd.MarkFlagsMutuallyExclusive("division", "id", "name", "all", "inactive")
	}
	return cmd
}

func (a *app) writeOne(item json.RawMessage, err error) error {
	if err != nil {
		return err
	}
	return writeJSON(a.out, item)
}

func (a *app) writeMany(items []json.RawMessage, err error) error {
	if err != nil {
		return err
	}
	return writeJSON(a.out, items)
}

type gameNumbersOutput struct {
	Season      string   `json:"season"`
	Count       int      `json:"count"`
	GameNumbers []string `json:"gameNumbers"`
}

func (a *app) gameNumbersCmd() *cobra.Command {
	var season string
	cmd := &cobra.Command{
		Use:   "game-numbers",
		Short: "List the valid game numbers for a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			span, err := nhlapi.NewSeasonRange(season)
			if err != nil {
				return err
			}
			numbers, err := client.Seasons().GameNumbers(span.String())
			if err != nil {
				return err
			}
			return writeJSON(a.out, gameNumbersOutput{Season: span.String(), Count: len(numbers), GameNumbers: numbers})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "First year of the season, e.g. 2017")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
