package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/savemyigcse/backend/internal/api"
	"github.com/savemyigcse/backend/internal/auth"
	"github.com/savemyigcse/backend/internal/config"
	"github.com/savemyigcse/backend/internal/database"
	"github.com/savemyigcse/backend/internal/logger"
	"github.com/savemyigcse/backend/internal/monitoring"
	"github.com/savemyigcse/backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env)
	auth.Init(cfg.JWTSecret)

	// Set up database. A failed connection at startup is fatal.
	db, err := database.New(cfg.ActiveDatabasePath())
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ActiveDatabasePath()).Msg("Failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	userService := services.NewUserService(db)
	subjectService := services.NewSubjectService(db)
	questionService := services.NewQuestionService(db)

	// Set up and run the background token janitor
	janitor := monitoring.NewTokenJanitor(userService)
	go janitor.Run()

	// Set up router
	router := api.NewRouter(cfg, userService, subjectService, questionService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().
			Str("env", cfg.Env).
			Str("apiVersion", cfg.APIVersion).
			Int("port", cfg.Port).
			Msg("SaveMyIGCSE server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	janitor.Stop()

	// Stop accepting new requests and drain in-flight ones before the
	// database handle is closed.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	log.Info().Msg("Server exiting")
}
