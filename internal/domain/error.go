package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid job status transition")

	// Pipeline errors
	ErrAIServiceFailure  = errors.New("ai service failure")
	ErrMalformedResponse = errors.New("malformed ai response")
	ErrJobLocked         = errors.New("job is locked by another run")
	ErrNoArticle         = errors.New("job has no article")
)
