package domain

import "fmt"

// NotFoundError represents a missing entity.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing entities.
var ErrNotFound = NotFoundError{}

// AlreadyExistsError represents a create against an occupied unique key.
type AlreadyExistsError struct {
	Resource string
}

func (e AlreadyExistsError) Error() string {
	if e.Resource == "" {
		return "already exists"
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// Is enables errors.Is matching on AlreadyExistsError.
func (e AlreadyExistsError) Is(target error) bool {
	_, ok := target.(AlreadyExistsError)
	if ok {
		return true
	}
	_, ok = target.(*AlreadyExistsError)
	return ok
}

// ErrAlreadyExists is the sentinel error for duplicate creates.
var ErrAlreadyExists = AlreadyExistsError{}
