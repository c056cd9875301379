package settlement

import (
	"errors"
	"fmt"

	"github.com/mauv0809/team-ladder/internal/roster"
)

// Class groups settlement failures by how a caller should react to them.
type Class string

const (
	ClassValidation  Class = "validation"
	ClassLookup      Class = "lookup"
	ClassIntegrity   Class = "integrity"
	ClassPersistence Class = "persistence"
)

var (
	ErrMissingFields   = errors.New("team1Id and team2Id are required")
	ErrSameTeams       = errors.New("team1Id and team2Id must be different")
	ErrInvalidDuration = errors.New("duration must be a positive integer")
	ErrInvalidWinner   = errors.New("winningTeamId must be team1Id or team2Id")
	ErrTeamNotFound    = errors.New("team not found")
	ErrEmptyRoster     = errors.New("team has no players")
	ErrRosterSize      = fmt.Errorf("team must have exactly %d players", roster.TeamSize)
	ErrPersistence     = errors.New("failed to persist settlement")
)

// Error is a classified settlement failure.
type Error struct {
	Class Class
	Err   error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClassOf returns the class of err. Unclassified errors count as persistence failures.
func ClassOf(err error) Class {
	var se *Error
	if errors.As(err, &se) {
		return se.Class
	}
	return ClassPersistence
}

func newError(class Class, err error) error {
	return &Error{Class: class, Err: err}
}

// persistenceError keeps both ErrPersistence and the underlying cause reachable via errors.Is.
func persistenceError(err error) error {
	return newError(ClassPersistence, fmt.Errorf("%w: %w", ErrPersistence, err))
}

// NewValidationError classifies err as a validation failure. Used by callers that
// parse a Match themselves and reject it before it reaches the engine.
func NewValidationError(err error) error {
	return newError(ClassValidation, err)
}
