package services

import "errors"

// Shared business errors, mapped to HTTP statuses by the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed          = errors.New("validation failed")
	ErrTournamentNameRequired    = errors.New("tournament name is required")
	ErrTournamentInvalidDates    = errors.New("tournament end date must not be before start date")
	ErrTournamentInvalidCapacity = errors.New("tournament max teams must be at least min teams")
	ErrTeamNameRequired          = errors.New("team name is required")
	ErrTournamentFull            = errors.New("tournament has reached its maximum number of teams")
	ErrScoreNegative             = errors.New("scores must not be negative")
	ErrScoreTied                 = errors.New("a completed match cannot end in a tie")
	ErrStatusRegression          = errors.New("match status cannot move backwards")
	ErrMatchNotEditable          = errors.New("completed matches cannot be rescored")
	ErrSetIndexOutOfRange        = errors.New("set number is out of range for this match")
	ErrNotEnoughTeams            = errors.New("not enough teams registered")
	ErrPoolPlayNotEnabled        = errors.New("tournament does not use pool play")
	ErrPoolPlayNotComplete       = errors.New("pool play is not complete")
	ErrPoolPlayAlreadyComplete   = errors.New("pool play is already complete")
	ErrPoolMatchesUnfinished     = errors.New("all pool matches must be completed first")
	ErrBracketAlreadyExists      = errors.New("a bracket already exists for this tournament")
	ErrInvalidBracketSize        = errors.New("bracket size must be 4, 8 or 12")
	ErrLocationRequired          = errors.New("location name is required")

	// Conflicts
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamNameConflict       = errors.New("team name is already taken in this tournament")
	ErrLocationInUse          = errors.New("location is still referenced by a tournament or pool")

	// Status transitions
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid admin password")

	// Entity lookups
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrPoolMatchNotFound  = errors.New("pool match not found")
	ErrLocationNotFound   = errors.New("location not found")
)
