package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/rideon-session/auth"
	"github.com/jrsteele09/rideon-session/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// primeCSRF loads the site root so the jar holds the CSRF cookie before an
// unsafe request. The cookie jar lives only as long as the process.
func (a *app) primeCSRF(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.manager.URL(auth.HomeRoute), nil)
	if err != nil {
		return
	}
	resp, err := a.manager.Client().Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("could not load CSRF cookie")
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", config.GetEnv("RIDEON_EMAIL", ""), "account email")
	password := fs.String("password", config.GetEnv("RIDEON_PASSWORD", ""), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("email and password are required (flags or RIDEON_EMAIL/RIDEON_PASSWORD)")
	}

	a.primeCSRF(ctx)
	result, err := a.manager.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if _, err := a.manager.FetchProfile(ctx); err != nil {
		log.Warn().Err(err).Msg("logged in but the profile could not be fetched")
	}
	fmt.Fprintf(a.out, "%s as %s (%s), dashboard %s\n", result.Message, result.Email, result.UserType, result.Dashboard)
	return nil
}

func (a *app) logout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a.primeCSRF(ctx)
	a.manager.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	profile, err := a.manager.FetchProfile(ctx)
	if err != nil {
		return err
	}
	return a.printJSON(profile)
}

type statusOutput struct {
	Navigation auth.Navigation `json:"navigation"`
	ExpiresIn  string          `json:"expires_in,omitempty"`
	Attempted  bool            `json:"refresh_attempted,omitempty"`
	Refreshed  bool            `json:"refreshed,omitempty"`
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	refresh := fs.Bool("refresh", false, "refresh the access token when it is close to expiry")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var out statusOutput
	if *refresh {
		cycle := auth.NewRefreshCycle(a.manager, a.cfg.GetRefreshInterval(), a.cfg.GetRefreshThreshold())
		out.Attempted, out.Refreshed = cycle.Check(ctx)
	}

	nav, err := a.manager.Navigation(ctx)
	if err != nil {
		return err
	}
	out.Navigation = nav

	s, err := a.manager.Session(ctx)
	if err != nil {
		return err
	}
	if remaining, ok := a.manager.Inspector().ExpiresIn(s.AccessToken); ok {
		out.ExpiresIn = remaining.Round(time.Second).String()
	}
	return a.printJSON(out)
}

func (a *app) get(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	useOAuth2 := fs.Bool("oauth2", false, "send through the golang.org/x/oauth2 client instead of the retrying wrapper")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("get takes exactly one path or URL")
	}
	target := fs.Arg(0)

	var (
		resp *http.Response
		err  error
	)
	if *useOAuth2 {
		if len(target) > 0 && target[0] == '/' {
			target = a.manager.URL(target)
		}
		resp, err = a.manager.HTTPClient(ctx).Get(target)
	} else {
		resp, err = a.manager.Request(ctx, http.MethodGet, target, nil, nil)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Fprintf(a.out, "%s\n", resp.Status)
	if _, err := io.Copy(a.out, resp.Body); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	metricsAddr := fs.String("metrics-addr", a.cfg.GetMetricsAddr(), "address to serve Prometheus metrics on, empty to disable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	nav, err := a.manager.Resume(ctx)
	if err != nil {
		return err
	}
	if !nav.Authenticated {
		log.Warn().Msg("no authenticated session, the refresh cycle will idle until login")
	} else {
		a.manager.RedirectToDashboard(ctx)
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: a.metrics.Handler(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			log.Info().Str("addr", *metricsAddr).Msg("Serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Err(err).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	cycle := auth.NewRefreshCycle(a.manager, a.cfg.GetRefreshInterval(), a.cfg.GetRefreshThreshold())
	cycle.Start(ctx)
	log.Info().
		Dur("interval", a.cfg.GetRefreshInterval()).
		Dur("threshold", a.cfg.GetRefreshThreshold()).
		Msg("Refresh cycle started")

	<-ctx.Done()
	cycle.Stop()
	log.Info().Msg("Refresh cycle stopped")
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
