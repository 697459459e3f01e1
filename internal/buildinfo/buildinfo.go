// Package buildinfo carries the version metadata stamped into the binary.
package buildinfo

import "time"

// Populated through -ldflags="-X ..." by the release build; all empty in a
// plain `go build`.
var (
	BuildTime  string
	CommitTime string
	CommitHash string
)

// StartTime marks process start, for uptime reporting on /health
var StartTime = time.Now().UTC().Format(time.RFC3339)
