package service

import (
	"errors"
	"fmt"
)

var (
	// ErrRunInProgress means another run holds the run lock. Nothing was touched.
	ErrRunInProgress = errors.New("credit consumption run already in progress")

	ErrAccountNotFound = errors.New("account not found")
)

// FetchError is returned when the candidate accounts could not be loaded.
// The run is aborted before any account is evaluated.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch accounts: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
