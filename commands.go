package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"sport-stat/internal"
	"sport-stat/internal/config"
	"sport-stat/migrations"
)

func init() {
	serveCmd.Flags().Bool("skip-migrate", false, "do not apply migrations on startup")

	createAdminCmd.Flags().String("username", "", "admin username")
	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("password", "", "admin password")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	seedCmd.Flags().String("discipline", "", "discipline name")
	seedCmd.Flags().String("description", "", "discipline description")
	seedCmd.Flags().StringSlice("teams", nil, "comma separated team names")
	_ = seedCmd.MarkFlagRequired("discipline")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, seedCmd)
}

// withPool loads config, connects and runs fn with the pool.
func withPool(ctx context.Context, fn func(*config.Config, *pgxpool.Pool) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := internal.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(cfg, pool)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withPool(ctx, func(cfg *config.Config, pool *pgxpool.Pool) error {
			if !skipMigrate {
				if err := migrations.Up(ctx, pool); err != nil {
					return err
				}
			}
			return serve(ctx, cfg, internal.NewStore(pool))
		})
	},
}

func serve(ctx context.Context, cfg *config.Config, repo internal.Repository) error {
	gin.SetMode(gin.ReleaseMode)
	router := internal.NewRouter(repo, internal.RouterConfig{
		Tokens:           internal.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer),
		Metrics:          internal.NewMetrics(),
		MetricsHandler:   internal.NewMetricsHandler(),
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
		CORSOrigins:      cfg.Server.CORSOrigins,
		StaticDir:        cfg.Server.StaticDir,
	})
	if cfg.Auth.AllowAdminSignup {
		log.Warn("self-registration as admin is enabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server started", "port", cfg.Server.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version]",
	Short:     "Apply or inspect schema migrations",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down", "status", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}
		return withPool(cmd.Context(), func(_ *config.Config, pool *pgxpool.Pool) error {
			return migrations.Run(cmd.Context(), pool, command)
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		hash, err := internal.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		return withPool(cmd.Context(), func(_ *config.Config, pool *pgxpool.Pool) error {
			id, err := internal.NewStore(pool).CreateUser(cmd.Context(), internal.User{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				Role:         internal.RoleAdmin,
			})
			if err != nil {
				return err
			}
			log.Info("admin created", "id", id, "username", username)
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a discipline and its teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("discipline")
		description, _ := cmd.Flags().GetString("description")
		teams, _ := cmd.Flags().GetStringSlice("teams")

		return withPool(cmd.Context(), func(_ *config.Config, pool *pgxpool.Pool) error {
			store := internal.NewStore(pool)
			var desc *string
			if description != "" {
				desc = &description
			}
			disciplineID, err := store.CreateDiscipline(cmd.Context(), name, desc)
			if err != nil {
				return err
			}
			log.Info("discipline created", "id", disciplineID, "name", name)

			for _, t := range teams {
				if t = strings.TrimSpace(t); t == "" {
					continue
				}
				id, err := store.CreateTeam(cmd.Context(), t, disciplineID)
				if err != nil {
					return err
				}
				log.Info("team created", "id", id, "name", t, "discipline_id", disciplineID)
			}
			return nil
		})
	},
}
