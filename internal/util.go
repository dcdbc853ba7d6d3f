package internal

import (
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// logAction writes an audit line attributed to the authenticated user.
func logAction(c *gin.Context, action string, keyvals ...any) {
	kv := append([]any{"actor", uid(c), "action", action}, keyvals...)
	log.Info("audit", kv...)
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, validationErr("bad id"))
		return 0, false
	}
	return id, true
}
