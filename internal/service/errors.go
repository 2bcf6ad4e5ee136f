package service

import "errors"

// Not-found sentinels returned by the per-user document services.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrListNotFound     = errors.New("prospect list not found")
	ErrProspectNotFound = errors.New("prospect not found on list")
)

// ValidationError indicates that caller-supplied input is invalid.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) || errors.Is(err, ErrListNotFound) || errors.Is(err, ErrProspectNotFound)
}
