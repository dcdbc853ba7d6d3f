package internal

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrValidation     = errors.New("validation")
	ErrAuthentication = errors.New("authentication")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrStorage        = errors.New("storage")
)

// Postgres SQLSTATE codes mapped to ErrConflict.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// APIError carries the HTTP status and the message returned to the caller.
// Kind is one of the sentinel errors above.
type APIError struct {
	Kind    error
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Kind }

func validationErr(msg string) *APIError {
	return &APIError{Kind: ErrValidation, Status: http.StatusBadRequest, Message: msg}
}

func authenticationErr(msg string) *APIError {
	return &APIError{Kind: ErrAuthentication, Status: http.StatusBadRequest, Message: msg}
}

func unauthorizedErr(msg string) *APIError {
	return &APIError{Kind: ErrUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

func forbiddenErr(msg string) *APIError {
	return &APIError{Kind: ErrForbidden, Status: http.StatusForbidden, Message: msg}
}

func conflictErr(msg string) *APIError {
	return &APIError{Kind: ErrConflict, Status: http.StatusConflict, Message: msg}
}

func storageErr(msg string) *APIError {
	return &APIError{Kind: ErrStorage, Status: http.StatusInternalServerError, Message: msg}
}

// isConstraintViolation reports whether err is a unique or foreign key violation.
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgForeignKeyViolation
}

// classify turns a store error into an APIError. msg is used for storage
// failures; constraint violations get conflictMsg.
func classify(err error, msg, conflictMsg string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if isConstraintViolation(err) {
		return conflictErr(conflictMsg)
	}
	return storageErr(msg)
}

// fail writes the error body and aborts. Storage failures are logged with the underlying cause.
func fail(c *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = storageErr("internal error")
	}
	if apiErr.Status >= http.StatusInternalServerError {
		cause := apiErr.Message
		if last := c.Errors.Last(); last != nil {
			cause = last.Err.Error()
		}
		log.Error("request failed", "method", c.Request.Method, "route", c.FullPath(), "err", cause)
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
}

// failStore classifies a store error, records the cause on the context and writes the response.
func failStore(c *gin.Context, err error, msg, conflictMsg string) {
	_ = c.Error(err)
	fail(c, classify(err, msg, conflictMsg))
}
