package brackets

import "errors"

// Ошибки предусловий движка. Все операции завершаются сразу и не возвращают частичных результатов.
var (
	ErrInvalidGroupSize        = errors.New("pool size must be a positive multiple of the team size")
	ErrInvalidParticipantCount = errors.New("at least 2 participants are required")
	ErrInvalidBracketSize      = errors.New("knockout bracket requires an even number of participants")
	ErrDuplicateParticipant    = errors.New("participant listed more than once")
	ErrInvalidCadence          = errors.New("invalid cadence policy")
	ErrInvalidScoringRule      = errors.New("scoring rule values must not be negative")
	ErrInvalidStageTransition  = errors.New("invalid knockout stage transition")

	// ErrEmptySchedule is a warning rather than a failure: the schedule is valid
	// but contains no fixtures, and the caller must confirm before persisting nothing.
	ErrEmptySchedule = errors.New("schedule contains no fixtures")
)
