package services

import (
	"errors"

	"github.com/Dosada05/tournament-engine/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentStartRequired = errors.New("tournament start time is required")
	ErrUnknownTeams            = errors.New("one or more teams do not exist")
	ErrUnknownPlayers          = errors.New("one or more players do not exist")
	ErrTeamSizeNotAllowed      = errors.New("team size is not allowed")
	ErrNegativeScore           = errors.New("scores must not be negative")
	ErrInvalidWinners          = errors.New("invalid winners for the current round")

	// Ошибки конфликтов
	ErrTournamentNameConflict   = errors.New("tournament name already exists")
	ErrScheduleAlreadyGenerated = errors.New("schedule already generated for this tournament")
	ErrNotLeague                = errors.New("standings are only available for league tournaments")
	ErrNotKnockout              = errors.New("operation is only available for knockout tournaments")
	ErrRoundNotFinished         = errors.New("current round still has unfinished matches")
	ErrNoRoundToAdvance         = errors.New("tournament has no scheduled round to advance")
	ErrTournamentCompleted      = errors.New("tournament is already completed")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTeamNotFound       = errors.New("team not found")
)

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
// Незнакомые ошибки возвращаются как есть.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrScheduleAlreadyGenerated):
		return ErrScheduleAlreadyGenerated
	case errors.Is(err, repositories.ErrMatchTeamInvalid):
		return ErrUnknownTeams
	case errors.Is(err, repositories.ErrTeamMemberInvalid):
		return ErrUnknownPlayers
	case errors.Is(err, repositories.ErrMatchScoreInvalid):
		return ErrNegativeScore
	default:
		return err
	}
}
