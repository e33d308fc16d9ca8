package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownProvider is returned when a settings patch targets a provider
	// key outside the fixed enumerated set.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrSubmitInFlight rejects a re-entrant order submission while one is
	// already awaiting the order API.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrOrderNotSubmittable is returned when submit is attempted before the
	// summary step or without accepted terms.
	ErrOrderNotSubmittable = errors.New("checkout not ready for submission")
)
