package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"holdem-arcade/apps/server/internal/auth"
	"holdem-arcade/apps/server/internal/gateway"
	"holdem-arcade/apps/server/internal/ladder"
	"holdem-arcade/apps/server/internal/ledger"
	"holdem-arcade/apps/server/internal/lobby"
	"holdem-arcade/apps/server/internal/store"
	"holdem-arcade/holdem"
	"holdem-arcade/holdem/npc"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "server",
		ReportTimestamp: true,
		Level:           levelFromEnv(),
	})

	db, storeMode, err := store.OpenFromEnv(logger)
	if err != nil {
		logger.Fatal("init store failed", "err", err)
	}
	if db != nil {
		defer db.Close()
	}

	authService, err := auth.New(db, logger)
	if err != nil {
		logger.Fatal("init auth failed", "err", err)
	}
	defer authService.Close()
	ledgerService, err := ledger.New(db, logger)
	if err != nil {
		logger.Fatal("init ledger failed", "err", err)
	}
	defer ledgerService.Close()
	ladderService, err := ladder.New(db, logger)
	if err != nil {
		logger.Fatal("init ladder failed", "err", err)
	}
	defer ladderService.Close()

	registry, err := npc.DefaultRegistry()
	if err != nil {
		logger.Fatal("load personas failed", "err", err)
	}
	if path := strings.TrimSpace(os.Getenv("NPC_PERSONAS_FILE")); path != "" {
		if err := registry.LoadFromFile(path); err != nil {
			logger.Fatal("load persona override failed", "path", path, "err", err)
		}
	}
	npcs := npc.NewManager(registry, logger, 0)

	lby := lobby.New(npcs, ledgerService, ladderService, lobby.Options{
		StartingStack: envInt64("STARTING_STACK", holdem.DefaultStartingStack),
		OpeningBet:    envInt64("OPENING_BET", holdem.DefaultOpeningBet),
		ShowdownDelay: time.Duration(envInt64("SHOWDOWN_DELAY_MS", 3000)) * time.Millisecond,
		EnforceLadder: envBool("ENFORCE_LADDER"),
		IdleTTL:       time.Duration(envInt64("TABLE_IDLE_MINUTES", 30)) * time.Minute,
	}, logger)
	gw := gateway.New(lby, authService, splitList(os.Getenv("ALLOWED_ORIGINS")), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/ws", gw.HandleWebSocket)
	auth.NewHTTPHandler(authService).Mount(r)
	ledger.NewHTTPHandler(authService, ledgerService, logger).Mount(r)
	ladder.NewHTTPHandler(authService, ladderService).Mount(r)
	lby.Mount(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go lby.RunReaper(ctx, time.Minute)

	addr := envString("LISTEN_ADDR", ":8080")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting", "addr", addr, "store", storeMode, "personas", registry.Count())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen failed", "err", err)
	}
	logger.Info("stopped")
}

func levelFromEnv() log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
