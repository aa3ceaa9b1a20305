package services

import "errors"

// ErrPartialUpdate marks a non-fatal outcome: the primary operation
// succeeded but a best-effort follow-up did not (e.g. recurring bookings
// after client creation). Callers receive the usable result alongside it.
var ErrPartialUpdate = errors.New("operation partially completed")
