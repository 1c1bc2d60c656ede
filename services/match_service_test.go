package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResult_LeagueProgress(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tournament, err := e.tournaments.CreateTournament(ctx, leagueInput(e.withTeams(3)))
	require.NoError(t, err)
	require.Len(t, tournament.Matches, 3)

	m, err := e.matches.RecordResult(ctx, tournament.Matches[0].ID, RecordResultInput{HomeScore: 2, AwayScore: 2, IsFinished: true})
	require.NoError(t, err)
	assert.True(t, m.IsFinished)
	assert.Equal(t, 2, m.HomeScore)

	got, err := e.tournaments.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)

	finish(t, e, tournament.Matches[1].ID, 1, 0)
	finish(t, e, tournament.Matches[2].ID, 0, 4)

	got, err = e.tournaments.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	// reopening a match puts the league back in play
	_, err = e.matches.RecordResult(ctx, tournament.Matches[2].ID, RecordResultInput{HomeScore: 0, AwayScore: 4, IsFinished: false})
	require.NoError(t, err)
	got, err = e.tournaments.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestRecordResult_KnockoutFirstResultStartsBracket(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tournament, err := e.tournaments.CreateTournament(ctx, knockoutInput(e.withTeams(4)))
	require.NoError(t, err)

	_, err = e.matches.RecordResult(ctx, tournament.Matches[0].ID, RecordResultInput{HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	got, err := e.tournaments.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Stage)
	assert.Equal(t, models.StageInProgress, *got.Stage)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestRecordResult_OptionalFields(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tournament, err := e.tournaments.CreateTournament(ctx, leagueInput(e.withTeams(2)))
	require.NoError(t, err)

	moved := kickoff.Add(48 * time.Hour)
	name := "  Opening Day "
	m, err := e.matches.RecordResult(ctx, tournament.Matches[0].ID, RecordResultInput{StartTime: &moved, RoundName: &name})
	require.NoError(t, err)
	assert.Equal(t, moved, m.StartTime)
	assert.Equal(t, "Opening Day", m.RoundName)
	assert.Equal(t, 1, m.RoundOrder)
	assert.False(t, m.IsFinished)

	blank := " "
	_, err = e.matches.RecordResult(ctx, tournament.Matches[0].ID, RecordResultInput{RoundName: &blank})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRecordResult_Errors(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tournament, err := e.tournaments.CreateTournament(ctx, leagueInput(e.withTeams(2)))
	require.NoError(t, err)

	_, err = e.matches.RecordResult(ctx, tournament.Matches[0].ID, RecordResultInput{HomeScore: -1, AwayScore: 0, IsFinished: true})
	assert.ErrorIs(t, err, ErrNegativeScore)

	_, err = e.matches.RecordResult(ctx, 404, RecordResultInput{HomeScore: 1})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	stored := e.store.matches[tournament.Matches[0].ID]
	assert.False(t, stored.IsFinished)
	assert.Zero(t, stored.HomeScore)
}

func TestListMatchesByTournament(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	tournament, err := e.tournaments.CreateTournament(ctx, leagueInput(e.withTeams(4)))
	require.NoError(t, err)

	all, err := e.matches.ListMatchesByTournament(ctx, tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].StartTime.Before(all[i-1].StartTime))
	}

	round := 2
	second, err := e.matches.ListMatchesByTournament(ctx, tournament.ID, &round)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, m := range second {
		assert.Equal(t, 2, m.RoundOrder)
	}

	_, err = e.matches.ListMatchesByTournament(ctx, 404, nil)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
