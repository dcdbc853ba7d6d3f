package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in      string
		want    flexInt
		wantErr bool
	}{
		{`3`, flexInt{Value: 3, Set: true}, false},
		{`"12"`, flexInt{Value: 12, Set: true}, false},
		{`" 4 "`, flexInt{Value: 4, Set: true}, false},
		{`""`, flexInt{}, false},
		{`null`, flexInt{}, false},
		{`0`, flexInt{Value: 0, Set: true}, false},
		{`"x"`, flexInt{}, true},
		{`1.5`, flexInt{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got flexInt
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	for _, in := range []string{
		`"2024-05-01T18:30:00Z"`,
		`"2024-05-01T18:30"`,
		`"2024-05-01T18:30:00"`,
		`"2024-05-01 18:30:00"`,
		`"2024-05-01T20:30:00+02:00"`,
	} {
		t.Run(in, func(t *testing.T) {
			var got flexTime
			require.NoError(t, json.Unmarshal([]byte(in), &got))
			assert.True(t, got.Set)
			assert.True(t, want.Equal(got.Value), "got %s", got.Value)
		})
	}

	var empty flexTime
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.False(t, empty.Set)
	assert.Nil(t, empty.ptr())

	var bad flexTime
	assert.Error(t, json.Unmarshal([]byte(`"next week"`), &bad))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   error
	}{
		{"unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation}), http.StatusConflict, ErrConflict},
		{"foreign key", fmt.Errorf("delete: %w", &pgconn.PgError{Code: pgForeignKeyViolation}), http.StatusConflict, ErrConflict},
		{"other pg", &pgconn.PgError{Code: "08006"}, http.StatusInternalServerError, ErrStorage},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ErrStorage},
		{"already classified", forbiddenErr("no"), http.StatusForbidden, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, "storage", "conflict")
			assert.Equal(t, tt.status, got.Status)
			assert.ErrorIs(t, got, tt.kind)
		})
	}
}
