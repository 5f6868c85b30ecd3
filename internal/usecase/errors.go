package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrPopulationUnavailable signals that the known-population source
	// could not be reached. Distinct from an empty population: callers
	// must make an explicit proceed/abort decision, defaulting to abort.
	ErrPopulationUnavailable = errors.New("known population source unavailable")
	// ErrRunAborted is returned when an unresolved availability failure
	// stops the run before any hydration calls are issued.
	ErrRunAborted = errors.New("extraction run aborted")
)
