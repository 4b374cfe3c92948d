package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrOutOfRange     = errors.New("out of range")
	ErrSeatConflict   = errors.New("seat conflict")
	ErrPersistence    = errors.New("persistence failure")
	ErrNotFound       = errors.New("not found")
	ErrStaleSeatState = errors.New("stale seat state")
)

// InvalidInputError names the request field that failed validation.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

type OutOfRangeError struct {
	Kind  string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Kind, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// SeatConflictError lists the requested seats that were already reserved
// when the request tried to commit.
type SeatConflictError struct {
	Seats []int
}

func (e *SeatConflictError) Error() string {
	parts := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		parts[i] = strconv.Itoa(s)
	}
	return fmt.Sprintf("seats already reserved: %s", strings.Join(parts, ","))
}

func (e *SeatConflictError) Is(target error) bool { return target == ErrSeatConflict }

// PersistenceError means the durable write did not complete and nothing
// from the attempted commit is visible.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewSeatConflict(seats SeatSet) *SeatConflictError {
	return &SeatConflictError{Seats: seats.Sorted()}
}
