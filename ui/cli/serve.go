// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toeirei/blog/internal/api"
	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/i18n"
	"github.com/toeirei/blog/internal/logging"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the REST API together with its background workers: the expired
session reaper (database session backend) and the Kafka event producer
(when events.brokers is set). SIGINT or SIGTERM shuts everything down
gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
	cmd.Flags().String("http.address", ":8080", "Listen address")
	cmd.Flags().Bool("http.debug", false, "Expose internal error messages in API responses")
	cmd.Flags().Bool("http.secure_cookies", false, "Mark the session cookie Secure (serve behind TLS)")
	cmd.Flags().String("session.backend", "database", "Session store (database, redis)")
	return cmd
}

// sessionBackend builds the configured session store. The returned close
// function releases its resources; reap reports whether expired sessions
// need purging from the database.
func sessionBackend(st db.Store) (sessions auth.SessionStore, closeFn func() error, reap bool) {
	if appConfig.Session.Backend == "redis" {
		pool := auth.NewRedisPool(appConfig.Redis.Address, 8, 64)
		return auth.NewRedisSessionStore(pool, appConfig.Redis.Prefix), pool.Close, false
	}
	return auth.NewDBSessionStore(st), func() error { return nil }, true
}

// serverOptions maps the http section of the configuration onto api.Options.
func serverOptions(st db.Store, authn *auth.Authenticator, publisher events.Publisher) api.Options {
	return api.Options{
		Store:         st,
		Auth:          authn,
		Events:        publisher,
		Debug:         appConfig.HTTP.Debug,
		SecureCookies: appConfig.HTTP.SecureCookies,
	}
}

func runServe(ctx context.Context) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	sessions, closeSessions, reap := sessionBackend(st)
	defer func() { _ = closeSessions() }()

	authn := auth.NewAuthenticator(st, sessions, auth.Config{
		TTL:         appConfig.Session.TTL,
		RememberTTL: appConfig.Session.RememberTTL,
	})

	g, gctx := errgroup.WithContext(ctx)

	var publisher events.Publisher = events.NopPublisher{}
	if len(appConfig.Events.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(appConfig.Events.Brokers, appConfig.Events.Topic), events.DefaultBufferSize)
		kp.Start(gctx)
		defer func() {
			if err := kp.Close(); err != nil {
				logging.Warnf("events: close: %v", err)
			}
		}()
		publisher = kp
		logging.Infof("events: publishing to %s on %v", appConfig.Events.Topic, appConfig.Events.Brokers)
	}

	srv := api.NewServer(serverOptions(st, authn, publisher))

	if reap {
		g.Go(func() error {
			auth.RunSessionReaper(gctx, st, appConfig.Session.ReapInterval)
			return nil
		})
	}
	g.Go(func() error {
		logging.Infof("%s", i18n.T("cli.serve_starting", appConfig.HTTP.Address))
		return srv.Serve(gctx, appConfig.HTTP.Address)
	})
	return g.Wait()
}
