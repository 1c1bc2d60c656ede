package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"github.com/Dosada05/tournament-engine/storage"
)

var kickoff = time.Date(2024, time.March, 1, 19, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory database shared by the fake repositories.
type memStore struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]models.Tournament
	matches     map[int]models.Match
	claims      map[int]bool
	teams       map[int]models.Team
	members     map[int][]int
	players     map[int]models.Player

	failBatch error
	commits   int
	rollbacks int
}

func newMemStore() *memStore {
	return &memStore{
		nextID:      1000,
		tournaments: map[int]models.Tournament{},
		matches:     map[int]models.Match{},
		claims:      map[int]bool{},
		teams:       map[int]models.Team{},
		members:     map[int][]int{},
		players:     map[int]models.Player{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) addTeam(id int, name string, strength float64) {
	s.teams[id] = models.Team{ID: id, Name: name, Strength: strength, CreatedAt: kickoff}
}

func (s *memStore) addPlayer(id int, username string, level int) {
	s.players[id] = models.Player{ID: id, Username: username, Level: level}
}

type storeSnapshot struct {
	nextID      int
	tournaments map[int]models.Tournament
	matches     map[int]models.Match
	claims      map[int]bool
	teams       map[int]models.Team
	members     map[int][]int
}

// fakeTx restores the store when the unit of work fails.
type fakeTx struct {
	store *memStore
}

func (tx *fakeTx) WithinTransaction(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	s := tx.store
	s.mu.Lock()
	snap := storeSnapshot{
		nextID:      s.nextID,
		tournaments: maps.Clone(s.tournaments),
		matches:     maps.Clone(s.matches),
		claims:      maps.Clone(s.claims),
		teams:       maps.Clone(s.teams),
		members:     maps.Clone(s.members),
	}
	s.mu.Unlock()

	err := fn(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.nextID = snap.nextID
		s.tournaments = snap.tournaments
		s.matches = snap.matches
		s.claims = snap.claims
		s.teams = snap.teams
		s.members = snap.members
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

func copyTournament(t models.Tournament) *models.Tournament {
	if t.Stage != nil {
		stage := *t.Stage
		t.Stage = &stage
	}
	if t.ScoringRules != nil {
		rule := *t.ScoringRules
		t.ScoringRules = &rule
	}
	if t.ByeTeamID != nil {
		bye := *t.ByeTeamID
		t.ByeTeamID = &bye
	}
	return &t
}

type fakeTournamentRepo struct{ s *memStore }

func (r *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = kickoff
	r.s.tournaments[t.ID] = *copyTournament(*t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return copyTournament(t), nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Format != nil && t.Format != *filter.Format {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *copyTournament(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateProgress(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus, stage *models.KnockoutStage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.Stage = nil
	if stage != nil {
		st := *stage
		t.Stage = &st
	}
	r.s.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) SetBye(_ context.Context, _ repositories.SQLExecutor, id int, teamID *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.ByeTeamID = nil
	if teamID != nil {
		bye := *teamID
		t.ByeTeamID = &bye
	}
	r.s.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	delete(r.s.claims, id)
	for mid, m := range r.s.matches {
		if m.TournamentID == id {
			delete(r.s.matches, mid)
		}
	}
	return nil
}

type fakeMatchRepo struct{ s *memStore }

func (r *fakeMatchRepo) ClaimSchedule(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[tournamentID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	if r.s.claims[tournamentID] {
		return fmt.Errorf("%w: tournament %d", repositories.ErrScheduleAlreadyGenerated, tournamentID)
	}
	r.s.claims[tournamentID] = true
	return nil
}

func (r *fakeMatchRepo) ReleaseSchedule(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.claims, tournamentID)
	return nil
}

func (r *fakeMatchRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failBatch != nil {
		return r.s.failBatch
	}
	for _, m := range matches {
		if _, ok := r.s.teams[m.HomeTeamID]; !ok {
			return repositories.ErrMatchTeamInvalid
		}
		if _, ok := r.s.teams[m.AwayTeamID]; !ok {
			return repositories.ErrMatchTeamInvalid
		}
		m.ID = r.s.id()
		m.CreatedAt = kickoff
		r.s.matches[m.ID] = *m
	}
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, round *int) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.RoundOrder != *round {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		if out[i].RoundOrder != out[j].RoundOrder {
			return out[i].RoundOrder < out[j].RoundOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	if m.HomeScore < 0 || m.AwayScore < 0 {
		return repositories.ErrMatchScoreInvalid
	}
	r.s.matches[m.ID] = *m
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.matches, id)
			n++
		}
	}
	return n, nil
}

type fakeTeamRepo struct{ s *memStore }

func (r *fakeTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	team.ID = r.s.id()
	team.CreatedAt = kickoff
	r.s.teams[team.ID] = models.Team{ID: team.ID, Name: team.Name, CreatedAt: team.CreatedAt}
	return nil
}

func (r *fakeTeamRepo) AddMembers(_ context.Context, _ repositories.SQLExecutor, teamID int, playerIDs []int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[teamID]; !ok {
		return repositories.ErrTeamNotFound
	}
	for _, id := range playerIDs {
		if _, ok := r.s.players[id]; !ok {
			return repositories.ErrTeamMemberInvalid
		}
	}
	r.s.members[teamID] = append(append([]int(nil), r.s.members[teamID]...), playerIDs...)
	return nil
}

func (r *fakeTeamRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Team, 0, len(ids))
	for _, id := range ids {
		t, ok := r.s.teams[id]
		if !ok {
			continue
		}
		if members := r.s.members[id]; len(members) > 0 {
			total := 0
			for _, pid := range members {
				total += r.s.players[pid].Level
			}
			t.Strength = float64(total) / float64(len(members))
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePlayerRepo struct{ s *memStore }

func (r *fakePlayerRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.players[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	schedules map[string]int
	fixtures  int
	teams     int
	standings map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{schedules: map[string]int{}, standings: map[string]int{}}
}

func (f *fakeRecorder) ScheduleGenerated(format string, fixtures int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules[format]++
	f.fixtures += fixtures
}

func (f *fakeRecorder) TeamsGenerated(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams += count
}

func (f *fakeRecorder) StandingsComputed(format string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standings[format]++
}

type fakePublisher struct {
	snapshots []storage.ScheduleSnapshot
	purged    []int
	fail      error
}

func (p *fakePublisher) Purge(_ context.Context, tournamentID int) (int, error) {
	if p.fail != nil {
		return 0, p.fail
	}
	p.purged = append(p.purged, tournamentID)
	removed := 0
	kept := p.snapshots[:0]
	for _, snap := range p.snapshots {
		if snap.TournamentID == tournamentID {
			removed++
			continue
		}
		kept = append(kept, snap)
	}
	p.snapshots = kept
	return removed, nil
}

func (p *fakePublisher) Publish(_ context.Context, snapshot storage.ScheduleSnapshot) (string, error) {
	if p.fail != nil {
		return "", p.fail
	}
	p.snapshots = append(p.snapshots, snapshot)
	return fmt.Sprintf("https://cdn.example/schedules/%d/snapshot.json", snapshot.TournamentID), nil
}

// env wires every service over one memStore.
type env struct {
	store       *memStore
	recorder    *fakeRecorder
	publisher   *fakePublisher
	tournaments TournamentService
	matches     MatchService
	standings   StandingsService
	teams       TeamService
}

func newEnv(opts ...TournamentServiceOption) *env {
	store := newMemStore()
	tx := &fakeTx{store: store}
	tournamentRepo := &fakeTournamentRepo{s: store}
	matchRepo := &fakeMatchRepo{s: store}
	teamRepo := &fakeTeamRepo{s: store}
	recorder := newFakeRecorder()
	publisher := &fakePublisher{}
	logger := discardLogger()

	return &env{
		store:     store,
		recorder:  recorder,
		publisher: publisher,
		tournaments: NewTournamentService(tx, tournamentRepo, matchRepo, teamRepo, publisher, recorder,
			ScheduleDefaults{Cadence: "weekly", MatchDurationMinutes: 30}, logger, opts...),
		matches:   NewMatchService(tx, matchRepo, tournamentRepo, logger),
		standings: NewStandingsService(tournamentRepo, matchRepo, teamRepo, recorder),
		teams:     NewTeamService(tx, teamRepo, &fakePlayerRepo{s: store}, recorder, []int{2, 4}, logger),
	}
}

// withTeams registers teams 1..n with strength 10*id.
func (e *env) withTeams(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		id := i + 1
		e.store.addTeam(id, fmt.Sprintf("Team %d", id), float64(10*id))
		ids[i] = id
	}
	return ids
}
