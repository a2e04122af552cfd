package pipeline

import "errors"

var (
	// ErrEmptyResult marks a model call that succeeded but produced nothing
	// usable (no box, no image). It never fails a run.
	ErrEmptyResult = errors.New("model returned no usable result")

	// ErrInvalidImage is returned when an upload cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidAudio is returned when a problems clip is empty.
	ErrInvalidAudio = errors.New("invalid audio")
)
