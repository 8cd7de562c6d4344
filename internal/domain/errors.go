package domain

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks bad caller input, rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing joke or topic.
	ErrNotFound = errors.New("not found")
	// ErrTopicBlocked marks a topic whose stem key failed moderation.
	ErrTopicBlocked = errors.New("topic blocked by moderation")
	// ErrConflict marks a unique-constraint race that could not be resolved locally.
	ErrConflict = errors.New("conflict")
	// ErrRetryable marks a transient store failure; the whole operation may be retried.
	ErrRetryable = errors.New("retryable failure")
	// ErrDependency marks a failing external collaborator such as the LLM.
	ErrDependency = errors.New("dependency failure")
	// ErrPersistence marks a transaction or connection failure.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError tags msg as a validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// NotFoundError tags msg as a not-found condition.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// DependencyError wraps err as an external collaborator failure.
func DependencyError(err error) error {
	return errors.Join(ErrDependency, err)
}
