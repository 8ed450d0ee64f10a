package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/taskapi/internal/auth"
	"github.com/Tomlord1122/taskapi/internal/config"
	"github.com/Tomlord1122/taskapi/internal/database"
	"github.com/Tomlord1122/taskapi/internal/metrics"
	"github.com/Tomlord1122/taskapi/internal/repository"
	"github.com/Tomlord1122/taskapi/internal/server"
	"github.com/Tomlord1122/taskapi/internal/service"
)

func gracefulShutdown(apiServer *http.Server, dbService database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	if dbService != nil {
		log.Println("Closing database connection pool...")
		if err := dbService.Close(); err != nil {
			log.Printf("Error closing database connection pool: %v", err)
		} else {
			log.Println("Database connection pool closed.")
		}
	}

	log.Println("Server exiting")

	done <- true
}

func newRootCmd() *cobra.Command {
	var autoMigrate bool

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return runServer(cfg, autoMigrate || cfg.IsDevelopment())
	}

	root := &cobra.Command{
		Use:           "taskapi",
		Short:         "Multi-user todo list API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.PersistentFlags().BoolVar(&autoMigrate, "auto-migrate", false,
		"run schema migration before serving (always on when APP_ENV=development)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  serve,
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			dbService, err := database.New(cfg.DB)
			if err != nil {
				return err
			}
			defer dbService.Close()

			log.Println("Running database migration...")
			if err := dbService.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Println("Database migration complete.")
			return nil
		},
	})

	return root
}

func runServer(cfg *config.Config, migrate bool) error {
	// 1. Database
	dbService, err := database.New(cfg.DB)
	if err != nil {
		return err
	}

	if migrate {
		log.Println("Running database auto-migration...")
		if err := dbService.Migrate(context.Background()); err != nil {
			_ = dbService.Close()
			return err
		}
		log.Println("Database auto-migration complete.")
	}

	gormDB := dbService.GetDB()

	// 2. Repositories
	userRepo := repository.NewGormUserRepository(gormDB)
	todoRepo := repository.NewGormTodoRepository(gormDB)

	// 3. Auth primitives and services
	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		_ = dbService.Close()
		return err
	}
	userService, err := service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.BcryptCost))
	if err != nil {
		_ = dbService.Close()
		return err
	}
	todoService := service.NewTodoService(todoRepo)

	// 4. HTTP server
	apiServer := server.NewServer(server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		UserService:    userService,
		TodoService:    todoService,
		Tokens:         tokens,
		DB:             dbService,
		Metrics:        metrics.New(),
	})

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, done)

	log.Printf("Starting server on %s (env=%s, db=%s)", apiServer.Addr, cfg.Env, cfg.DB.Driver)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = dbService.Close()
		return fmt.Errorf("HTTP server ListenAndServe error: %w", err)
	}

	<-done
	log.Println("Graceful shutdown complete.")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
