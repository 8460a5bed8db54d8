package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Signal/internal/adapters/http"
	signaling "github.com/dkeye/Signal/internal/adapters/signal"
	"github.com/dkeye/Signal/internal/adapters/turn"
	"github.com/dkeye/Signal/internal/app"
	"github.com/dkeye/Signal/internal/config"
	"github.com/dkeye/Signal/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	peers := core.NewRegistry()
	sessions := core.NewSessionTracker()
	creds := app.NewCredentials(cfg.Turn)
	broker := signaling.NewBroker(peers, sessions)

	responder := turn.NewResponder(cfg.Turn)
	if err := responder.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start connectivity responder")
	}

	r := router.SetupRouter(ctx, cfg, broker, creds)
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Signal server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
