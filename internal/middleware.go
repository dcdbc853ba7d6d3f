package internal

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "uid"
	ctxRole   = "role"
)

// Auth requires a valid bearer token and stores its identity on the context.
func Auth(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			fail(c, unauthorizedErr("authorization required"))
			return
		}

		cl, err := tokens.Verify(tokenStr)
		if err != nil {
			fail(c, unauthorizedErr("invalid token"))
			return
		}

		c.Set(ctxUserID, cl.UserID)
		c.Set(ctxRole, cl.Role)
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxRole) != RoleAdmin {
			fail(c, forbiddenErr("access denied"))
			return
		}
		c.Next()
	}
}

// uid returns the authenticated user id, or 0 on public routes.
func uid(c *gin.Context) int {
	return c.GetInt(ctxUserID)
}

// RequestLogger logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		log.Info("request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}
