package internal

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Repository = (*Store)(nil)

// Store implements Repository on a pgx pool.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ------------------- Users -------------------

func (s *Store) CreateUser(ctx context.Context, u User) (int, error) {
	var id int
	err := qScan(ctx, s.db, psql.Insert("users").
		Columns("username", "email", "password_hash", "role").
		Values(u.Username, u.Email, u.PasswordHash, u.Role).
		Suffix("RETURNING id"), &id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := qScan(ctx, s.db, psql.Select("id", "username", "email", "password_hash", "role").
		From("users").
		Where(sq.Eq{"username": username}),
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// ------------------- Disciplines -------------------

func (s *Store) ListDisciplines(ctx context.Context) ([]Discipline, error) {
	rows, err := qQuery(ctx, s.db, psql.Select("id", "name", "description").
		From("disciplines").
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("select disciplines: %w", err)
	}
	defer rows.Close()

	out := []Discipline{}
	for rows.Next() {
		var d Discipline
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, fmt.Errorf("scan discipline: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDiscipline(ctx context.Context, name string, description *string) (int, error) {
	var id int
	err := qScan(ctx, s.db, psql.Insert("disciplines").
		Columns("name", "description").
		Values(name, description).
		Suffix("RETURNING id"), &id)
	if err != nil {
		return 0, fmt.Errorf("insert discipline: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateDiscipline(ctx context.Context, id int, name string, description *string) error {
	_, err := qExec(ctx, s.db, psql.Update("disciplines").
		Set("name", name).
		Set("description", description).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("update discipline %d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteDiscipline(ctx context.Context, id int) error {
	_, err := qExec(ctx, s.db, psql.Delete("disciplines").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete discipline %d: %w", id, err)
	}
	return nil
}

// ------------------- Teams -------------------

func (s *Store) ListTeams(ctx context.Context, disciplineID *int) ([]Team, error) {
	q := psql.Select("id", "name", "discipline_id").From("teams").OrderBy("id")
	if disciplineID != nil {
		q = q.Where(sq.Eq{"discipline_id": *disciplineID})
	}
	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	defer rows.Close()

	out := []Team{}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.DisciplineID); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateTeam(ctx context.Context, name string, disciplineID int) (int, error) {
	var id int
	err := qScan(ctx, s.db, psql.Insert("teams").
		Columns("name", "discipline_id").
		Values(name, disciplineID).
		Suffix("RETURNING id"), &id)
	if err != nil {
		return 0, fmt.Errorf("insert team: %w", err)
	}
	return id, nil
}

// ------------------- Matches -------------------

func (s *Store) ListMatches(ctx context.Context, disciplineID int) ([]MatchRow, error) {
	q := psql.Select(
		"m.id", "m.start_time", "m.end_time", "m.status",
		"t1.name", "t2.name", "t1.id", "t2.id",
		"m.winner_team_id", "ms.team1_score", "ms.team2_score",
	).
		From("matches m").
		Join("teams t1 ON m.team1_id = t1.id").
		Join("teams t2 ON m.team2_id = t2.id").
		LeftJoin("match_statistics ms ON m.id = ms.match_id").
		Where(sq.Eq{"m.discipline_id": disciplineID}).
		OrderBy("m.start_time", "m.id")

	rows, err := qQuery(ctx, s.db, q)
	if err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}
	defer rows.Close()

	out := []MatchRow{}
	for rows.Next() {
		var m MatchRow
		if err := rows.Scan(&m.ID, &m.StartTime, &m.EndTime, &m.Status,
			&m.Team1Name, &m.Team2Name, &m.Team1ID, &m.Team2ID,
			&m.WinnerTeamID, &m.Team1Score, &m.Team2Score); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateMatch(ctx context.Context, m MatchInput) (int, error) {
	var id int
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := qScan(ctx, tx, psql.Insert("matches").
			Columns("discipline_id", "team1_id", "team2_id", "start_time", "end_time", "status", "winner_team_id").
			Values(m.DisciplineID, m.Team1ID, m.Team2ID, m.StartTime, m.EndTime, m.Status, m.WinnerTeamID).
			Suffix("RETURNING id"), &id)
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}

		if _, err := qExec(ctx, tx, psql.Insert("match_statistics").
			Columns("match_id", "team1_score", "team2_score").
			Values(id, 0, 0)); err != nil {
			return fmt.Errorf("insert statistics: %w", err)
		}

		if m.Status == StatusCompleted {
			if err := setScores(ctx, tx, MatchStatistics{MatchID: id, Team1Score: m.Team1Score, Team2Score: m.Team2Score}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) UpdateMatch(ctx context.Context, id int, m MatchInput) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := qExec(ctx, tx, psql.Update("matches").
			Set("team1_id", m.Team1ID).
			Set("team2_id", m.Team2ID).
			Set("start_time", m.StartTime).
			Set("end_time", m.EndTime).
			Set("status", m.Status).
			Set("winner_team_id", m.WinnerTeamID).
			Where(sq.Eq{"id": id}))
		if err != nil {
			return fmt.Errorf("update match %d: %w", id, err)
		}
		return setScores(ctx, tx, MatchStatistics{MatchID: id, Team1Score: m.Team1Score, Team2Score: m.Team2Score})
	})
}

func setScores(ctx context.Context, tx pgx.Tx, st MatchStatistics) error {
	_, err := qExec(ctx, tx, psql.Update("match_statistics").
		Set("team1_score", st.Team1Score).
		Set("team2_score", st.Team2Score).
		Where(sq.Eq{"match_id": st.MatchID}))
	if err != nil {
		return fmt.Errorf("update statistics of match %d: %w", st.MatchID, err)
	}
	return nil
}

// DeleteMatch removes the match; its statistics row goes with it via ON DELETE CASCADE.
func (s *Store) DeleteMatch(ctx context.Context, id int) error {
	_, err := qExec(ctx, s.db, psql.Delete("matches").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete match %d: %w", id, err)
	}
	return nil
}
