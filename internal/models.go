package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
)

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

type Discipline struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisciplineID int    `json:"discipline_id"`
}

// MatchInput is the set of columns written by create and update.
type MatchInput struct {
	DisciplineID int
	Team1ID      int
	Team2ID      int
	StartTime    time.Time
	EndTime      *time.Time
	Status       string
	WinnerTeamID *int
	Team1Score   int
	Team2Score   int
}

// MatchRow is one row of the match ledger joined with teams and statistics.
// Scores are nil when the statistics row is missing.
type MatchRow struct {
	ID           int        `json:"id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	Status       string     `json:"status"`
	Team1Name    string     `json:"team1_name"`
	Team2Name    string     `json:"team2_name"`
	Team1ID      int        `json:"team1_id"`
	Team2ID      int        `json:"team2_id"`
	WinnerTeamID *int       `json:"winner_team_id"`
	Team1Score   *int       `json:"team1_score"`
	Team2Score   *int       `json:"team2_score"`
}

// MatchStatistics is the score record of a single match.
type MatchStatistics struct {
	MatchID    int `json:"match_id"`
	Team1Score int `json:"team1_score"`
	Team2Score int `json:"team2_score"`
}

func validStatus(s string) bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
		return true
	}
	return false
}

// flexInt decodes from a JSON number or a numeric string; the browser client
// posts form values as strings. An empty string or null leaves it unset.
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexInt{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexInt{}
			return nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexInt{Value: n, Set: true}
	return nil
}

func (f flexInt) ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

// timeLayouts are tried in order; the last one is what <input type="datetime-local"> produces.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// flexTime decodes RFC 3339 or datetime-local strings. Layouts without a zone are read as UTC.
type flexTime struct {
	Value time.Time
	Set   bool
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*f = flexTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime{Value: t, Set: true}
			return nil
		}
	}
	return fmt.Errorf("bad time %q", s)
}

func (f flexTime) ptr() *time.Time {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}
