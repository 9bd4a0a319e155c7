package core

import (
	"errors"
	"fmt"
)

// ErrValidation marks malformed input to a core operation, such as an empty fact.
var ErrValidation = errors.New("validation failed")

// ModelError is returned when the language model call failed. It ends the turn.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when a fact could not be written durably.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}
