// Package places provides a client for the Google Places and Geocoding APIs.
// This package centralizes all Places API interactions for the application.
package places

import (
	"fmt"
)

// TransportError represents a network-level failure reaching the API,
// including timeouts.
type TransportError struct {
	Endpoint string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("places transport timeout (endpoint: %s): %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("places transport error (endpoint: %s): %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError represents a response body that is not valid JSON.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("places malformed response (endpoint: %s): %v", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// APIError represents an error reported by the Places API, either as a
// non-200 HTTP status or a decoded status outside OK/ZERO_RESULTS.
type APIError struct {
	Endpoint   string
	HTTPStatus int
	Status     string // Provider status code, e.g. "REQUEST_DENIED"
	Message    string // Provider error_message when present
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("places API error: %s - %s (endpoint: %s)", e.Status, e.Message, e.Endpoint)
	}
	return fmt.Sprintf("places API error: HTTP %d - %s (endpoint: %s)", e.HTTPStatus, e.Message, e.Endpoint)
}

// DayTime represents a specific day and time in an opening-hours period.
// Day is 0 (Sunday) through 6 (Saturday); Time is a 4-digit "HHMM" string.
type DayTime struct {
	Day  int
	Time string
}

// Period represents a single opening period. A nil Close means the place
// stays open continuously from the opening time.
type Period struct {
	Open  DayTime
	Close *DayTime
}

// DayHours is one weekday's formatted opening hours.
type DayHours struct {
	Open      string // "HH:MM"
	Close     string // "HH:MM", or "24:00" for periods with no close
	Is24Hours bool
}
