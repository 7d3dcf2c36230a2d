package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)
	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("match %w", ErrNotFound)
	ErrScoreNotFound      = fmt.Errorf("score %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	ErrValidationFailed = errors.New("validation failed")

	ErrUsernameConflict = errors.New("username is already in use")

	ErrAuthInvalidCredentials = errors.New("invalid username or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// ValidationError carries per-field messages. It matches ErrValidationFailed
// under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
