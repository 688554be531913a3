package nhlapi

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range caller input. It is always
// returned before any network activity.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "nhlapi: invalid input: " + e.Reason
	}
	return fmt.Sprintf("nhlapi: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// LookupError is returned when a season cannot be resolved and no fallback applies.
type LookupError struct {
	Season string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("nhlapi: no game count available for season %q", e.Season)
}

// RangeError is returned when a game number is outside the season's known range.
type RangeError struct {
	Season     string
	GameNumber string
	Max        string
}

func (e *RangeError) Error() string {
	if e.Max == "" {
		return fmt.Sprintf("nhlapi: game %s does not exist in season %s", e.GameNumber, e.Season)
	}
	return fmt.Sprintf("nhlapi: game %s exceeds number of games in season %s (max %s)", e.GameNumber, e.Season, e.Max)
}

// NotFoundError is returned when no division or conference matches a lookup key.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("nhlapi: no %s matching %q", e.Collection, e.Key)
}

// FetchError wraps a failed request: transport errors, timeouts, non-2xx
// responses and undecodable bodies.
type FetchError struct {
	GameID     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	target := e.GameID
	if target == "" {
		target = e.URL
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("nhlapi: fetch %s failed (status=%d): %v", target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("nhlapi: fetch %s failed: %v", target, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsValidationError attempts to unwrap an error into a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// AsLookupError attempts to unwrap an error into a LookupError.
func AsLookupError(err error) (*LookupError, bool) {
	var lErr *LookupError
	if errors.As(err, &lErr) {
		return lErr, true
	}
	return nil, false
}

// AsRangeError attempts to unwrap an error into a RangeError.
func AsRangeError(err error) (*RangeError, bool) {
	var rErr *RangeError
	if errors.As(err, &rErr) {
		return rErr, true
	}
	return nil, false
}

// AsNotFoundError attempts to unwrap an error into a NotFoundError.
func AsNotFoundError(err error) (*NotFoundError, bool) {
	var nErr *NotFoundError
	if errors.As(err, &nErr) {
		return nErr, true
	}
	return nil, false
}

// AsFetchError attempts to unwrap an error into a FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fErr *FetchError
	if errors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
