// Command buildsite runs the public website and admin API.
package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/atlasbuild/buildsite/internal/adapters/httpserver"
	"github.com/atlasbuild/buildsite/internal/adapters/mailer"
	"github.com/atlasbuild/buildsite/internal/auth"
	"github.com/atlasbuild/buildsite/internal/config"
	"github.com/atlasbuild/buildsite/internal/database"
	"github.com/atlasbuild/buildsite/internal/store"
	"github.com/atlasbuild/buildsite/internal/views"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.App.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate database")
	}

	st := store.New(db)
	if err := st.Load(context.Background()); err != nil {
		zlog.Fatal().Err(err).Msg("failed to load data")
	}

	tmpl, err := template.New("layout").ParseFS(views.FS, "*.html")
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to parse templates")
	}

	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, time.Duration(cfg.Auth.TokenExpiryMinutes)*time.Minute)
	ml := mailer.New(&cfg.Email)

	handler := httpserver.New(cfg, st, tokens, ml, tmpl)
	server := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info().Str("addr", server.Addr).Str("app", cfg.App.Name).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("shutdown")
	}
}
