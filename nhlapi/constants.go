package nhlapi

import "time"

const (
	// DefaultBaseURL is the public stats API root, without the version segment.
	DefaultBaseURL = "https://statsapi.web.nhl.com/api"
	// DefaultVersion is appended to the base URL as "/v{version}".
	DefaultVersion = 1

	defaultCollection  = "game"
	defaultHTTPTimeout = 10 * time.Second
	defaultWorkers     = 5

	maxErrorBody    = 512
	copyrightField  = "copyright"
	requestIDHeader = "X-Request-ID"
)

// Detail suffixes select which view of a game is requested.
const (
	DetailFeed      = "feed/live"
	DetailBoxscore  = "boxscore"
	DetailContent   = "content"
	DetailDiffPatch = "feed/live/diffPatch"
)
