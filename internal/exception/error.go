package exception

import "errors"

// ErrRecordNotFound custom database error for failure to find record
var ErrRecordNotFound = errors.New("record not found")

// ErrScanInProgress returned when a scan is requested while another is
// scanning or paused
var ErrScanInProgress = errors.New("scan already running")

// ErrInvalidTransition returned when a lifecycle request is not valid for
// the current scan state
var ErrInvalidTransition = errors.New("invalid scan state transition")

// ErrInvalidRange wraps all range expression parse failures
var ErrInvalidRange = errors.New("invalid range")

// ErrInvalidPorts wraps all port list parse failures
var ErrInvalidPorts = errors.New("invalid port list")

// ErrNoFallbackPath returned when neither the preferred cache path nor the
// fallback location is writable
var ErrNoFallbackPath = errors.New("no writable cache path")
