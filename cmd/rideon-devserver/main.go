package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/rideon-session/internal/config"
	"github.com/jrsteele09/rideon-session/server"
	"github.com/jrsteele09/rideon-session/token"
	"github.com/jrsteele09/rideon-session/token/refresh"
	refreshrepofake "github.com/jrsteele09/rideon-session/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/rideon-session/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const cleanupInterval = 10 * time.Minute

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Bytes("stack", debug.Stack()).Msgf("Recovered from panic: %v", r)
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(c.GetLogLevel()); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	displayAppname(c.GetAppName())

	refreshManager := refresh.NewManager(refreshrepofake.NewFakeRefreshTokenRepo())
	issuer := token.NewIssuer(
		token.NewHMACSigner(c.GetSigningSecret()),
		refreshManager,
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
	)

	handler, err := server.New(c, fakeuserrepo.NewFakeUserRepo(), issuer)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupLoop(ctx, refreshManager)

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// cleanupLoop drops expired refresh token records until ctx is cancelled.
func cleanupLoop(ctx context.Context, manager *refresh.Manager) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := manager.Cleanup()
			if err != nil {
				log.Err(err).Msg("Refresh token cleanup failed")
				continue
			}
			log.Debug().Int("removed", removed).Msg("Refresh token cleanup")
		}
	}
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
