package internal

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func Health(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ------------------- Disciplines -------------------

type disciplineRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func bindDiscipline(c *gin.Context) (disciplineRequest, bool) {
	var req disciplineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, validationErr("bad json"))
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fail(c, validationErr("name is required"))
		return req, false
	}
	return req, true
}

func ListDisciplines(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListDisciplines(c.Request.Context())
		if err != nil {
			failStore(c, err, "failed to load disciplines", "failed to load disciplines")
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateDiscipline(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindDiscipline(c)
		if !ok {
			return
		}
		id, err := repo.CreateDiscipline(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			failStore(c, err, "failed to create discipline", "discipline already exists")
			return
		}
		logAction(c, "create_discipline", "discipline_id", id)
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

// UpdateDiscipline reports success even when no row has the id.
func UpdateDiscipline(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		req, ok := bindDiscipline(c)
		if !ok {
			return
		}
		if err := repo.UpdateDiscipline(c.Request.Context(), id, req.Name, req.Description); err != nil {
			failStore(c, err, "failed to update discipline", "discipline already exists")
			return
		}
		logAction(c, "update_discipline", "discipline_id", id)
		c.JSON(http.StatusOK, gin.H{"message": "discipline updated"})
	}
}

// DeleteDiscipline is idempotent. A discipline still referenced by teams or matches is refused with 409.
func DeleteDiscipline(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := repo.DeleteDiscipline(c.Request.Context(), id); err != nil {
			failStore(c, err, "failed to delete discipline", "discipline is referenced by teams or matches")
			return
		}
		logAction(c, "delete_discipline", "discipline_id", id)
		c.JSON(http.StatusOK, gin.H{"message": "discipline deleted"})
	}
}

// ------------------- Teams -------------------

// GET /api/teams[?disciplineId=]
func ListTeams(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter *int
		if v := c.Query("disciplineId"); v != "" {
			id, err := strconv.Atoi(v)
			if err != nil {
				fail(c, validationErr("bad disciplineId"))
				return
			}
			filter = &id
		}
		out, err := repo.ListTeams(c.Request.Context(), filter)
		if err != nil {
			failStore(c, err, "failed to load teams", "failed to load teams")
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// ------------------- Matches -------------------

type matchRequest struct {
	DisciplineID flexInt  `json:"discipline_id"`
	Team1ID      flexInt  `json:"team1_id"`
	Team2ID      flexInt  `json:"team2_id"`
	StartTime    flexTime `json:"start_time"`
	EndTime      flexTime `json:"end_time"`
	Status       string   `json:"status"`
	Team1Score   flexInt  `json:"team1_score"`
	Team2Score   flexInt  `json:"team2_score"`
	WinnerTeamID flexInt  `json:"winner_team_id"`
}

// toInput checks field presence and the cross-field rules shared by create and update.
func (r matchRequest) toInput(requireDiscipline bool) (MatchInput, *APIError) {
	if requireDiscipline && !r.DisciplineID.Set {
		return MatchInput{}, validationErr("discipline_id is required")
	}
	if !r.Team1ID.Set || !r.Team2ID.Set {
		return MatchInput{}, validationErr("team1_id and team2_id are required")
	}
	if !r.StartTime.Set {
		return MatchInput{}, validationErr("start_time is required")
	}
	if !validStatus(r.Status) {
		return MatchInput{}, validationErr("status must be upcoming, ongoing or completed")
	}
	if r.Team1ID.Value == r.Team2ID.Value {
		return MatchInput{}, validationErr("a team cannot play itself")
	}
	if w := r.WinnerTeamID; w.Set && w.Value != r.Team1ID.Value && w.Value != r.Team2ID.Value {
		return MatchInput{}, validationErr("winner must be one of the match teams")
	}
	return MatchInput{
		DisciplineID: r.DisciplineID.Value,
		Team1ID:      r.Team1ID.Value,
		Team2ID:      r.Team2ID.Value,
		StartTime:    r.StartTime.Value,
		EndTime:      r.EndTime.ptr(),
		Status:       r.Status,
		WinnerTeamID: r.WinnerTeamID.ptr(),
		Team1Score:   r.Team1Score.Value,
		Team2Score:   r.Team2Score.Value,
	}, nil
}

// GET /api/matches?disciplineId=
func ListMatches(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := c.Query("disciplineId")
		if v == "" {
			fail(c, validationErr("disciplineId is required"))
			return
		}
		disciplineID, err := strconv.Atoi(v)
		if err != nil {
			fail(c, validationErr("bad disciplineId"))
			return
		}
		out, err := repo.ListMatches(c.Request.Context(), disciplineID)
		if err != nil {
			failStore(c, err, "failed to load matches", "failed to load matches")
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// CreateMatch stores the match and its statistics atomically. Scores are
// applied only when the match is created as completed.
func CreateMatch(repo Repository, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req matchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, validationErr("bad json"))
			return
		}
		in, apiErr := req.toInput(true)
		if apiErr != nil {
			fail(c, apiErr)
			return
		}

		id, err := repo.CreateMatch(c.Request.Context(), in)
		if err != nil {
			// Constraint violations are not distinguished here; the id is never exposed on failure.
			_ = c.Error(err)
			fail(c, storageErr("failed to create match"))
			return
		}
		m.matchCreated()
		logAction(c, "create_match", "match_id", id, "status", in.Status)
		c.JSON(http.StatusOK, gin.H{"id": id, "message": "match created"})
	}
}

func UpdateMatch(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var req matchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, validationErr("bad json"))
			return
		}
		in, apiErr := req.toInput(false)
		if apiErr != nil {
			fail(c, apiErr)
			return
		}

		if err := repo.UpdateMatch(c.Request.Context(), id, in); err != nil {
			failStore(c, err, "failed to update match", "unknown team")
			return
		}
		logAction(c, "update_match", "match_id", id, "status", in.Status)
		c.JSON(http.StatusOK, gin.H{"message": "match updated"})
	}
}

func DeleteMatch(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := repo.DeleteMatch(c.Request.Context(), id); err != nil {
			failStore(c, err, "failed to delete match", "failed to delete match")
			return
		}
		logAction(c, "delete_match", "match_id", id)
		c.JSON(http.StatusOK, gin.H{"message": "match deleted"})
	}
}
