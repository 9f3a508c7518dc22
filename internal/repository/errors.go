// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and the handlers to distinguish between different
// failure scenarios: a missing stand becomes a 404, a sold out stand a
// 400, and anything else a generic storage failure.
package repository

import "errors"

// ErrMatchNotFound is returned when a match ID does not exist.
var ErrMatchNotFound = errors.New("match not found")

// ErrStandNotFound is returned when no stand with the requested label
// exists for the match. Handlers translate this into an HTTP 404.
var ErrStandNotFound = errors.New("stand not found")

// ErrSoldOut is returned by DecrementTx when a stand's available count
// has reached zero. It is an expected, user-facing condition rather
// than a system fault; no state is mutated when it is returned.
var ErrSoldOut = errors.New("stand sold out")

// ErrPlayerNotFound is returned when a player lookup matches no row.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPhoneExists is returned when a user insert collides with an
// existing phone number. ResolveTx handles it internally by re-reading
// the committed row, so callers normally never see it.
var ErrPhoneExists = errors.New("phone already registered")
