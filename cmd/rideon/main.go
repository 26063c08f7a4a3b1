package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrsteele09/rideon-session/auth"
	"github.com/jrsteele09/rideon-session/internal/config"
	"github.com/jrsteele09/rideon-session/internal/metrics"
	"github.com/jrsteele09/rideon-session/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

const usage = `usage: rideon <command> [flags]

commands:
  login    authenticate and store the session
  logout   end the session
  profile  fetch and print the user profile
  status   print the navigation state and token expiry
  get      send an authenticated GET request
  watch    keep the session fresh until interrupted
`

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Err(err).Str("command", os.Args[1]).Msg("rideon failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	if level, err := zerolog.ParseLevel(cfg.GetLogLevel()); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	a, err := newApp(cfg, repo, out)
	if err != nil {
		return err
	}

	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx, args)
	case "profile":
		return a.profile(ctx, args)
	case "status":
		return a.status(ctx, args)
	case "get":
		return a.get(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	}
	fmt.Fprint(os.Stderr, usage)
	return errors.Errorf("unknown command %q", command)
}

type app struct {
	cfg     config.Config
	manager *auth.Manager
	metrics *metrics.Metrics
	out     io.Writer
}

func newApp(cfg config.Config, repo session.Repo, out io.Writer) (*app, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "cookie jar")
	}

	a := &app{
		cfg:     cfg,
		metrics: metrics.New(cfg.GetAppName()),
		out:     out,
	}
	a.manager, err = auth.NewManager(cfg.GetBaseURL(), repo,
		auth.WithHTTPClient(&http.Client{Jar: jar, Timeout: cfg.GetHTTPTimeout()}),
		auth.WithCSRFCookieName(cfg.GetCSRFCookieName()),
		auth.WithMetrics(a.metrics),
		auth.WithLogger(log.Logger),
		auth.WithNavigator(auth.NavigatorFunc(func(route string) {
			log.Info().Str("route", route).Msg("Navigate")
		})),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}
