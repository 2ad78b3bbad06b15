package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-management-api/internal/store"
)

var (
	// ErrValidation marks input rejected before any store call.
	ErrValidation = errors.New("validation failed")

	ErrMembershipNotFound = errors.New("membership not found")
	ErrOrganizerNotFound  = errors.New("organizer relation not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrAlreadyTeamMember        = errors.New("user is already a member of this team")
	ErrAlreadyOrganizer         = errors.New("user is already an organizer of this tournament")
	ErrInviteNotPending         = errors.New("invite is not pending")
	ErrOrganizerCapacityReached = errors.New("tournament has reached its organizer limit")
	ErrTeamAlreadyRegistered    = errors.New("team is already registered for this tournament")

	// ErrSafetyViolation matches every *SafetyViolationError.
	ErrSafetyViolation = errors.New("safety violation")

	// ErrStoreUnavailable matches infrastructure failures from the document store.
	ErrStoreUnavailable = store.ErrUnavailable
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Aggregate names the kind of record a safety rule protects.
type Aggregate string

const (
	AggregateTeam       Aggregate = "team"
	AggregateTournament Aggregate = "tournament"
)

// SafetyViolationError reports a removal that would leave a team without a
// coach or a tournament without an organizer. Nothing was mutated.
type SafetyViolationError struct {
	Aggregate       Aggregate
	AggregateID     string
	AggregateName   string
	PrivilegedCount int
	Message         string
}

func (e *SafetyViolationError) Error() string {
	return e.Message
}

func (e *SafetyViolationError) Is(target error) bool {
	return target == ErrSafetyViolation
}

// CascadeStageError reports a cascade that stopped at Stage. Earlier stages
// have been applied; rerunning the operation resumes from the failed stage.
type CascadeStageError struct {
	Operation string
	Stage     string
	Err       error
}

func (e *CascadeStageError) Error() string {
	return fmt.Sprintf("%s: stage %s failed: %v", e.Operation, e.Stage, e.Err)
}

func (e *CascadeStageError) Unwrap() error {
	return e.Err
}

// lookupError maps a missing document to notFound and wraps anything else.
func lookupError(err, notFound error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}
