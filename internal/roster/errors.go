package roster

import (
	"errors"
	"fmt"
)

var (
	ErrNicknameRequired = errors.New("nickname is required")
	ErrNicknameTaken    = errors.New("player with this nickname already exists")
	ErrPlayerNotFound   = errors.New("player not found")

	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameTaken    = errors.New("team name already exists")
	ErrTeamSize         = fmt.Errorf("a team must have exactly %d players", TeamSize)
	ErrDuplicatePlayers = errors.New("players must be unique")
	ErrUnknownPlayers   = errors.New("one or more players do not exist")
	ErrTeamNotFound     = errors.New("team not found")
)

// AlreadyOnTeamError is returned by CreateTeam when a player is already assigned.
type AlreadyOnTeamError struct {
	PlayerID string
}

func (e *AlreadyOnTeamError) Error() string {
	return fmt.Sprintf("player %s is already in another team", e.PlayerID)
}

// IsValidationError reports whether err was caused by bad caller input rather than storage.
func IsValidationError(err error) bool {
	var onTeam *AlreadyOnTeamError
	return errors.Is(err, ErrNicknameRequired) ||
		errors.Is(err, ErrNicknameTaken) ||
		errors.Is(err, ErrTeamNameRequired) ||
		errors.Is(err, ErrTeamNameTaken) ||
		errors.Is(err, ErrTeamSize) ||
		errors.Is(err, ErrDuplicatePlayers) ||
		errors.Is(err, ErrUnknownPlayers) ||
		errors.As(err, &onTeam)
}
