package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"

	"github.com/handsomefox/reelscout/internal/catalog"
	"github.com/handsomefox/reelscout/internal/chat"
	"github.com/handsomefox/reelscout/internal/config"
	"github.com/handsomefox/reelscout/internal/favorites"
	"github.com/handsomefox/reelscout/internal/handlers"
	"github.com/handsomefox/reelscout/internal/kv"
	"github.com/handsomefox/reelscout/internal/logger"
	"github.com/handsomefox/reelscout/internal/prefs"
	"github.com/handsomefox/reelscout/internal/tmdb"
)

const (
	sessionIdle     = 30 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Println("Error:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, logCloser := logger.New(logger.ParseLevel(cfg.LogLevel), cfg.LogFile)
	slog.SetDefault(log)
	defer func() {
		if err := logCloser.Close(); err != nil {
			fmt.Println("close log file:", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := kv.Open(ctx, cfg.KV)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.KV.Backend, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Failed to close store", logger.Error(err))
		}
	}()

	var tmdbOpts []tmdb.Option
	if cfg.TMDB.BaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	if cfg.TMDB.Language != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithDefaultLanguage(cfg.TMDB.Language))
	}
	svc := catalog.NewService(tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.ReadToken, tmdbOpts...))

	sessions := catalog.NewSessions(svc, sessionIdle)
	go sessions.Run(ctx)

	assistant := chat.New(cfg.Chat)
	if !assistant.Configured() {
		slog.Warn("chat has no API key; replies will explain how to configure one")
	}

	app, err := handlers.New(&handlers.Config{
		Catalog:   svc,
		Sessions:  sessions,
		Chat:      assistant,
		Favorites: favorites.New(st, favorites.FavoritesKey),
		Watchlist: favorites.New(st, favorites.WatchlistKey),
		Prefs:     prefs.New(st),
		ImageBase: cfg.TMDB.ImageBase,
		Env:       cfg.Env,
	})
	if err != nil {
		return fmt.Errorf("failed to init handlers: %w", err)
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(log, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaECS,
		RecoverPanics: true,
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/healthz"
		},
	}))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", handlers.ProfileHeader},
			ExposedHeaders:   []string{"Content-Language"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Route("/api", app.RegisterRoutes)

	if cfg.StaticDir != "" {
		spa, err := handlers.SPA(os.DirFS(cfg.StaticDir))
		if err != nil {
			return fmt.Errorf("failed to serve %s: %w", cfg.StaticDir, err)
		}
		r.Handle("/*", spa)
	}

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      assistantBudget(cfg.Chat.Timeout),
		IdleTimeout:       60 * time.Second,
		// Event streams end when ctx is cancelled instead of holding Shutdown open.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening",
			slog.String("addr", addr),
			slog.String("env", string(cfg.Env)),
			slog.String("store", cfg.KV.Backend),
			slog.String("chat_provider", assistant.ProviderName()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// assistantBudget leaves room for a chat reply that uses its whole timeout.
func assistantBudget(chatTimeout time.Duration) time.Duration {
	if chatTimeout <= 0 {
		chatTimeout = chat.DefaultTimeout
	}
	return chatTimeout + 10*time.Second
}
