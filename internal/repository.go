package internal

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned by UserByUsername when no row matches.
var ErrUserNotFound = errors.New("user not found")

// Repository is the storage surface used by the HTTP handlers.
type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u User) (int, error)
	UserByUsername(ctx context.Context, username string) (User, error)

	ListDisciplines(ctx context.Context) ([]Discipline, error)
	CreateDiscipline(ctx context.Context, name string, description *string) (int, error)
	// UpdateDiscipline and DeleteDiscipline do not report missing rows.
	UpdateDiscipline(ctx context.Context, id int, name string, description *string) error
	DeleteDiscipline(ctx context.Context, id int) error

	// ListTeams returns all teams, or only those of disciplineID when it is non-nil.
	ListTeams(ctx context.Context, disciplineID *int) ([]Team, error)
	CreateTeam(ctx context.Context, name string, disciplineID int) (int, error)

	ListMatches(ctx context.Context, disciplineID int) ([]MatchRow, error)
	// CreateMatch inserts the match and its statistics row in one transaction.
	CreateMatch(ctx context.Context, m MatchInput) (int, error)
	UpdateMatch(ctx context.Context, id int, m MatchInput) error
	DeleteMatch(ctx context.Context, id int) error
}
