package internal

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
)

var errFakeStorage = errors.New("fake storage failure")

// fakeRepo is an in-memory Repository. It mirrors the schema's constraints:
// unique usernames/emails, RESTRICT on disciplines in use and CASCADE from
// matches to statistics.
type fakeRepo struct {
	mu sync.Mutex

	users       map[int]User
	disciplines map[int]Discipline
	teams       map[int]Team
	matches     map[int]MatchInput
	stats       map[int]MatchStatistics
	nextID      int

	// failStatsInsert makes CreateMatch fail after the match insert.
	failStatsInsert bool
	failAll         bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[int]User{},
		disciplines: map[int]Discipline{},
		teams:       map[int]Team{},
		matches:     map[int]MatchInput{},
		stats:       map[int]MatchStatistics{},
	}
}

func (f *fakeRepo) id() int {
	f.nextID++
	return f.nextID
}

func pgErr(code string) error {
	return &pgconn.PgError{Code: code}
}

func (f *fakeRepo) Ping(ctx context.Context) error {
	if f.failAll {
		return errFakeStorage
	}
	return nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, u User) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errFakeStorage
	}
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return 0, pgErr(pgUniqueViolation)
		}
	}
	u.ID = f.id()
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeRepo) UserByUsername(ctx context.Context, username string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return User{}, errFakeStorage
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (f *fakeRepo) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFakeStorage
	}
	out := []Discipline{}
	for _, d := range f.disciplines {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CreateDiscipline(ctx context.Context, name string, description *string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errFakeStorage
	}
	id := f.id()
	f.disciplines[id] = Discipline{ID: id, Name: name, Description: description}
	return id, nil
}

func (f *fakeRepo) UpdateDiscipline(ctx context.Context, id int, name string, description *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFakeStorage
	}
	if _, ok := f.disciplines[id]; ok {
		f.disciplines[id] = Discipline{ID: id, Name: name, Description: description}
	}
	return nil
}

func (f *fakeRepo) DeleteDiscipline(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFakeStorage
	}
	for _, t := range f.teams {
		if t.DisciplineID == id {
			return pgErr(pgForeignKeyViolation)
		}
	}
	for _, m := range f.matches {
		if m.DisciplineID == id {
			return pgErr(pgForeignKeyViolation)
		}
	}
	delete(f.disciplines, id)
	return nil
}

func (f *fakeRepo) ListTeams(ctx context.Context, disciplineID *int) ([]Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFakeStorage
	}
	out := []Team{}
	for _, t := range f.teams {
		if disciplineID == nil || t.DisciplineID == *disciplineID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CreateTeam(ctx context.Context, name string, disciplineID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.disciplines[disciplineID]; !ok {
		return 0, pgErr(pgForeignKeyViolation)
	}
	id := f.id()
	f.teams[id] = Team{ID: id, Name: name, DisciplineID: disciplineID}
	return id, nil
}

func (f *fakeRepo) ListMatches(ctx context.Context, disciplineID int) ([]MatchRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFakeStorage
	}
	out := []MatchRow{}
	for id, m := range f.matches {
		if m.DisciplineID != disciplineID {
			continue
		}
		row := MatchRow{
			ID:           id,
			StartTime:    m.StartTime,
			EndTime:      m.EndTime,
			Status:       m.Status,
			Team1ID:      m.Team1ID,
			Team2ID:      m.Team2ID,
			Team1Name:    f.teams[m.Team1ID].Name,
			Team2Name:    f.teams[m.Team2ID].Name,
			WinnerTeamID: m.WinnerTeamID,
		}
		if st, ok := f.stats[id]; ok {
			s1, s2 := st.Team1Score, st.Team2Score
			row.Team1Score, row.Team2Score = &s1, &s2
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateMatch stages both rows and only publishes them when every step succeeds.
func (f *fakeRepo) CreateMatch(ctx context.Context, m MatchInput) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errFakeStorage
	}
	for _, teamID := range []int{m.Team1ID, m.Team2ID} {
		if _, ok := f.teams[teamID]; !ok {
			return 0, pgErr(pgForeignKeyViolation)
		}
	}
	if f.failStatsInsert {
		return 0, errFakeStorage
	}
	id := f.id()
	st := MatchStatistics{MatchID: id}
	if m.Status == StatusCompleted {
		st.Team1Score, st.Team2Score = m.Team1Score, m.Team2Score
	}
	f.matches[id] = m
	f.stats[id] = st
	return id, nil
}

func (f *fakeRepo) UpdateMatch(ctx context.Context, id int, m MatchInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFakeStorage
	}
	old, ok := f.matches[id]
	if !ok {
		return nil
	}
	m.DisciplineID = old.DisciplineID
	f.matches[id] = m
	if _, ok := f.stats[id]; ok {
		f.stats[id] = MatchStatistics{MatchID: id, Team1Score: m.Team1Score, Team2Score: m.Team2Score}
	}
	return nil
}

func (f *fakeRepo) DeleteMatch(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFakeStorage
	}
	delete(f.matches, id)
	delete(f.stats, id)
	return nil
}

// seedTeams creates a discipline with two teams and returns their ids.
func (f *fakeRepo) seedTeams() (disciplineID, team1, team2 int) {
	disciplineID, _ = f.CreateDiscipline(context.Background(), "Football", nil)
	team1, _ = f.CreateTeam(context.Background(), "Reds", disciplineID)
	team2, _ = f.CreateTeam(context.Background(), "Blues", disciplineID)
	return disciplineID, team1, team2
}
