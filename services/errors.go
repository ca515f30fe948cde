package services

import (
	"errors"
	"fmt"
)

// Terminal failure kinds for a query. Compare with errors.Is.
var (
	ErrNotInterpretable = errors.New("query could not be interpreted")
	ErrNoLocation       = errors.New("no zipcode or city to search")
	ErrSearchFailure    = errors.New("search scrape failed")
	ErrDetailFailure    = errors.New("detail scrape failed")
)

// PipelineError reports which stage aborted a query and why.
type PipelineError struct {
	Kind error
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	if errors.Is(e.Err, e.Kind) {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func pipelineErr(kind, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Err: cause}
}
