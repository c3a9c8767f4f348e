// Package store persists run state and terminal verdicts. Run status
// lives in Redis (hot, short-lived), verdicts and custom personas in
// Postgres (durable, queryable by the surrounding product).
package store

import "errors"

// ErrRunNotFound is returned when no run exists for the given ID.
var ErrRunNotFound = errors.New("store: run not found")
