package brackets

import (
	"fmt"

	"github.com/Dosada05/tournament-engine/models"
)

var stageTransitions = map[models.KnockoutStage][]models.KnockoutStage{
	models.StageSeeded:     {models.StageInProgress},
	models.StageInProgress: {models.StageAdvanced},
	models.StageAdvanced:   {models.StageInProgress, models.StageCompleted},
	models.StageCompleted:  {},
}

// CanAdvanceStage reports whether a knockout tournament may move from one stage to the next.
func CanAdvanceStage(from, to models.KnockoutStage) bool {
	for _, allowed := range stageTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func AdvanceStage(from, to models.KnockoutStage) (models.KnockoutStage, error) {
	if !CanAdvanceStage(from, to) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidStageTransition, from, to)
	}
	return to, nil
}
