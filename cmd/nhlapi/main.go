// Command nhlapi fetches data from the NHL stats API.
//
// Usage:
//
//	nhlapi feed --season 2017 --type regular --game 1
//	nhlapi boxscore --season 2017 --type 2
//	nhlapi updates --season 2017 --type 2 --game 1 --date 20171005 --from 193000
//	nhlapi updates --season 2017 --type 2 --date 2017-10-05 --minutes 10 --serve
//	nhlapi teams --id 1 --id 10 --expand team.roster --season 2017
//	nhlapi divisions --inactive
//	nhlapi divisions --name metro
//	nhlapi conferences --division pacific
//	nhlapi game-numbers --season 2017
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dtemkin/nhlapi-go/internal/config"
	"github.com/dtemkin/nhlapi-go/internal/logging"
	"github.com/dtemkin/nhlapi-go/nhlapi"
)

const appVersion = "dev"

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, stop, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, stop context.CancelFunc, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(config.Load(), stop, stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// app carries state shared by every subcommand.
type app struct {
	cfg    config.Config
	stop   context.CancelFunc
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

func newRootCmd(cfg config.Config, stop context.CancelFunc, stdout, stderr io.Writer) *cobra.Command {
	a := &app{cfg: cfg, stop: stop, out: stdout, errOut: stderr}

	root := &cobra.Command{
		Use:           "nhlapi",
		Short:         "Query the NHL stats API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logCfg := a.cfg.Log
			logCfg.Version = appVersion
			logCfg.Output = a.errOut
			a.logger = logging.NewLogger(logCfg)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	api := &a.cfg.StatsAPI
	flags := root.PersistentFlags()
	flags.StringVar(&api.BaseURL, "base-url", api.BaseURL, "Stats API base URL, without the version segment")
	flags.DurationVar(&api.Timeout, "timeout", api.Timeout, "Per-request timeout")
	flags.IntVar(&api.Workers, "workers", api.Workers, "Maximum concurrent requests for multi-game fetches")
	flags.Float64Var(&api.RPS, "rps", api.RPS, "Client-side request rate limit (0 = unlimited)")
	flags.StringVar(&api.SeasonsFile, "seasons-file", api.SeasonsFile, "CSV of season game counts to use instead of the bundled dataset")
	flags.StringVar(&api.Timezone, "tz", api.Timezone, "IANA zone for rolling poll timecodes (default local time)")
	flags.BoolVar(&api.StrictGameType, "strict-game-type", api.StrictGameType, `Only accept game type codes "01"-"04"`)

	root.AddCommand(
		a.gameCmd("feed", "Fetch live feeds", (*nhlapi.Client).Feed),
		a.gameCmd("boxscore", "Fetch boxscores", (*nhlapi.Client).Boxscore),
		a.gameCmd("content", "Fetch game media content", (*nhlapi.Client).Content),
		a.updatesCmd(),
		a.teamsCmd(),
		a.groupCmd("divisions", divisionOps),
		a.groupCmd("conferences", conferenceOps),
		a.gameNumbersCmd(),
	)
	return root
}

func (a *app) newClient(rec nhlapi.Recorder) (*nhlapi.Client, error) {
	clientCfg, err := a.cfg.StatsAPI.ClientConfig(a.logger, rec)
	if err != nil {
		return nil, err
	}
	return nhlapi.NewClient(clientCfg)
}

// isShutdown reports whether err only reflects the user stopping a long-running command.
func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}

func elapsed(start time.Time) slog.Attr {
	return slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds())
}
