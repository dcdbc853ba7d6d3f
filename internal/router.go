package internal

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries what NewRouter needs besides the repository.
type RouterConfig struct {
	Tokens           *Tokens
	Metrics          *Metrics
	MetricsHandler   http.Handler
	AllowAdminSignup bool
	CORSOrigins      []string
	StaticDir        string
}

// NewRouter builds the gin engine with every API route.
func NewRouter(repo Repository, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/health", Health(repo))
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	auth := Auth(cfg.Tokens)
	admin := RequireAdmin()

	api := r.Group("/api")
	{
		api.POST("/register", Register(repo, cfg.AllowAdminSignup))
		api.POST("/login", Login(repo, cfg.Tokens, cfg.Metrics))

		api.GET("/disciplines", ListDisciplines(repo))
		api.POST("/disciplines", auth, admin, CreateDiscipline(repo))
		api.PUT("/disciplines/:id", auth, admin, UpdateDiscipline(repo))
		api.DELETE("/disciplines/:id", auth, admin, DeleteDiscipline(repo))

		api.GET("/teams", ListTeams(repo))

		api.GET("/matches", ListMatches(repo))
		api.POST("/matches", auth, admin, CreateMatch(repo, cfg.Metrics))
		api.PUT("/matches/:id", auth, admin, UpdateMatch(repo))
		api.DELETE("/matches/:id", auth, admin, DeleteMatch(repo))
	}

	if cfg.StaticDir != "" {
		serveClient(r, cfg.StaticDir)
	} else {
		r.NoRoute(notFound)
	}
	return r
}

func notFound(c *gin.Context) {
	fail(c, &APIError{Kind: ErrValidation, Status: http.StatusNotFound, Message: "not found"})
}

// corsMiddleware allows any origin when none are configured.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        5 * time.Minute,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}

// serveClient serves the single-page client; unknown non-API GETs fall back to index.html.
func serveClient(r *gin.Engine, dir string) {
	r.Static("/static", filepath.Join(dir, "static"))
	index := filepath.Join(dir, "index.html")
	r.GET("/", func(c *gin.Context) { c.File(index) })
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}
		c.File(index)
	})
}
