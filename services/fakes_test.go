package services

import (
	"context"

	"github.com/beachrally/tournament-server/models"
	"github.com/beachrally/tournament-server/repositories"
)

// In-memory repository fakes. They ignore the executor argument, so service
// tests run without a database.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = f.nextID
	f.nextID++
	cp := *t
	f.tournaments[t.ID] = &cp
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := f.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	f.tournaments[t.ID] = &cp
	return nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) SetPoolPlayComplete(_ context.Context, _ repositories.SQLExecutor, id int, complete bool) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.PoolPlayComplete = complete
	return nil
}

func (f *fakeTournamentRepo) SetBracketSize(_ context.Context, _ repositories.SQLExecutor, id int, size int) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.BracketSize = &size
	return nil
}

func (f *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

type fakeTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (f *fakeTeamRepo) add(team models.Team) models.Team {
	if team.ID == 0 {
		team.ID = f.nextID
		f.nextID++
	} else if team.ID >= f.nextID {
		f.nextID = team.ID + 1
	}
	cp := team
	f.teams[team.ID] = &cp
	return team
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	for _, existing := range f.teams {
		if existing.TournamentID == team.TournamentID && existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	*team = f.add(*team)
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *team
	return &cp, nil
}

func (f *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Team, error) {
	out := make([]models.Team, 0)
	for id := 1; id < f.nextID; id++ {
		if team, ok := f.teams[id]; ok && team.TournamentID == tournamentID {
			out = append(out, *team)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) GetByIDs(_ context.Context, ids []int) (map[int]models.Team, error) {
	out := make(map[int]models.Team, len(ids))
	for _, id := range ids {
		if team, ok := f.teams[id]; ok {
			out[id] = *team
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	cp := *team
	f.teams[team.ID] = &cp
	return nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (f *fakeMatchRepo) add(match models.Match) models.Match {
	if match.ID == 0 {
		match.ID = f.nextID
		f.nextID++
	} else if match.ID >= f.nextID {
		f.nextID = match.ID + 1
	}
	cp := match
	f.matches[match.ID] = &cp
	return match
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	*match = f.add(*match)
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *match
	return &cp, nil
}

func (f *fakeMatchRepo) List(_ context.Context, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	out := make([]models.Match, 0)
	for id := 1; id < f.nextID; id++ {
		match, ok := f.matches[id]
		if !ok || match.TournamentID != filter.TournamentID {
			continue
		}
		if filter.Status != nil && match.Status != *filter.Status {
			continue
		}
		out = append(out, *match)
	}
	return out, nil
}

func (f *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	if _, ok := f.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *match
	f.matches[match.ID] = &cp
	return nil
}

func (f *fakeMatchRepo) UpdateNextMatchID(_ context.Context, _ repositories.SQLExecutor, id int, nextMatchID *int) error {
	match, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.NextMatchID = nextMatchID
	return nil
}

func (f *fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, match := range f.matches {
		if match.TournamentID == tournamentID {
			delete(f.matches, id)
		}
	}
	return nil
}

type fakePoolRepo struct {
	pools  map[int]*models.Pool
	nextID int
}

func newFakePoolRepo() *fakePoolRepo {
	return &fakePoolRepo{pools: make(map[int]*models.Pool), nextID: 1}
}

func (f *fakePoolRepo) Create(_ context.Context, _ repositories.SQLExecutor, pool *models.Pool) error {
	pool.ID = f.nextID
	f.nextID++
	cp := *pool
	f.pools[pool.ID] = &cp
	return nil
}

func (f *fakePoolRepo) GetByID(_ context.Context, id int) (*models.Pool, error) {
	pool, ok := f.pools[id]
	if !ok {
		return nil, repositories.ErrPoolNotFound
	}
	cp := *pool
	return &cp, nil
}

func (f *fakePoolRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Pool, error) {
	out := make([]models.Pool, 0)
	for id := 1; id < f.nextID; id++ {
		if pool, ok := f.pools[id]; ok && pool.TournamentID == tournamentID {
			out = append(out, *pool)
		}
	}
	return out, nil
}

func (f *fakePoolRepo) ReplaceTeams(_ context.Context, _ repositories.SQLExecutor, poolID int, teamIDs []int) error {
	pool, ok := f.pools[poolID]
	if !ok {
		return repositories.ErrPoolNotFound
	}
	pool.TeamIDs = append([]int(nil), teamIDs...)
	return nil
}

func (f *fakePoolRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.pools[id]; !ok {
		return repositories.ErrPoolNotFound
	}
	delete(f.pools, id)
	return nil
}

type fakePoolMatchRepo struct {
	matches map[int]*models.PoolMatch
	nextID  int
}

func newFakePoolMatchRepo() *fakePoolMatchRepo {
	return &fakePoolMatchRepo{matches: make(map[int]*models.PoolMatch), nextID: 1}
}

func (f *fakePoolMatchRepo) add(match models.PoolMatch) models.PoolMatch {
	if match.ID == 0 {
		match.ID = f.nextID
		f.nextID++
	} else if match.ID >= f.nextID {
		f.nextID = match.ID + 1
	}
	cp := match
	f.matches[match.ID] = &cp
	return match
}

func (f *fakePoolMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.PoolMatch) error {
	*match = f.add(*match)
	return nil
}

func (f *fakePoolMatchRepo) GetByID(_ context.Context, id int) (*models.PoolMatch, error) {
	match, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrPoolMatchNotFound
	}
	cp := *match
	cp.ScoresTeam1 = append([]int64(nil), match.ScoresTeam1...)
	cp.ScoresTeam2 = append([]int64(nil), match.ScoresTeam2...)
	return &cp, nil
}

func (f *fakePoolMatchRepo) ListByPool(_ context.Context, poolID int) ([]models.PoolMatch, error) {
	out := make([]models.PoolMatch, 0)
	for id := 1; id < f.nextID; id++ {
		if match, ok := f.matches[id]; ok && match.PoolID == poolID {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (f *fakePoolMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.PoolMatch, error) {
	out := make([]models.PoolMatch, 0)
	for id := 1; id < f.nextID; id++ {
		if match, ok := f.matches[id]; ok && match.TournamentID == tournamentID {
			out = append(out, *match)
		}
	}
	return out, nil
}

func (f *fakePoolMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.PoolMatch) error {
	if _, ok := f.matches[match.ID]; !ok {
		return repositories.ErrPoolMatchNotFound
	}
	cp := *match
	f.matches[match.ID] = &cp
	return nil
}

func (f *fakePoolMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrPoolMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

type fakeStandingRepo struct {
	standings map[int]*models.PoolStanding
	nextID    int
}

func newFakeStandingRepo() *fakeStandingRepo {
	return &fakeStandingRepo{standings: make(map[int]*models.PoolStanding), nextID: 1}
}

func (f *fakeStandingRepo) Create(_ context.Context, _ repositories.SQLExecutor, standing *models.PoolStanding) error {
	for _, existing := range f.standings {
		if existing.PoolID == standing.PoolID && existing.TeamID == standing.TeamID {
			*standing = *existing
			return nil
		}
	}
	standing.ID = f.nextID
	f.nextID++
	cp := *standing
	f.standings[standing.ID] = &cp
	return nil
}

func (f *fakeStandingRepo) GetByTeamAndPool(_ context.Context, teamID, poolID int) (*models.PoolStanding, error) {
	for _, standing := range f.standings {
		if standing.TeamID == teamID && standing.PoolID == poolID {
			cp := *standing
			return &cp, nil
		}
	}
	return nil, repositories.ErrStandingNotFound
}

func (f *fakeStandingRepo) ListByPool(_ context.Context, poolID int) ([]models.PoolStanding, error) {
	out := make([]models.PoolStanding, 0)
	for id := 1; id < f.nextID; id++ {
		if standing, ok := f.standings[id]; ok && standing.PoolID == poolID {
			out = append(out, *standing)
		}
	}
	return out, nil
}

func (f *fakeStandingRepo) Update(_ context.Context, _ repositories.SQLExecutor, standing *models.PoolStanding) error {
	if _, ok := f.standings[standing.ID]; !ok {
		return repositories.ErrStandingNotFound
	}
	cp := *standing
	f.standings[standing.ID] = &cp
	return nil
}

func (f *fakeStandingRepo) AssignRank(_ context.Context, _ repositories.SQLExecutor, id int, rank int) error {
	standing, ok := f.standings[id]
	if !ok {
		return repositories.ErrStandingNotFound
	}
	standing.Rank = &rank
	return nil
}

type fakeUpdateRepo struct {
	updates []models.Update
	nextID  int
}

func newFakeUpdateRepo() *fakeUpdateRepo {
	return &fakeUpdateRepo{nextID: 1}
}

func (f *fakeUpdateRepo) Create(_ context.Context, _ repositories.SQLExecutor, update *models.Update) error {
	update.ID = f.nextID
	f.nextID++
	f.updates = append(f.updates, *update)
	return nil
}

func (f *fakeUpdateRepo) ListByTournament(_ context.Context, filter repositories.ListUpdatesFilter) ([]models.Update, error) {
	out := make([]models.Update, 0)
	for i := len(f.updates) - 1; i >= 0; i-- {
		u := f.updates[i]
		if u.TournamentID != filter.TournamentID {
			continue
		}
		if filter.Since != nil && u.Timestamp <= *filter.Since {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}
