// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package api exposes the blog resources over a JSON REST API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/logging"
)

// ShutdownTimeout bounds the graceful shutdown in Serve.
const ShutdownTimeout = 10 * time.Second

// Options configure a Server.
type Options struct {
	Store  db.Store
	Auth   *auth.Authenticator
	Events events.Publisher
	// Debug exposes internal error messages in problem responses.
	Debug bool
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Server routes API requests to the store.
type Server struct {
	store         db.Store
	auth          *auth.Authenticator
	events        events.Publisher
	debug         bool
	secureCookies bool
	router        *mux.Router
}

// NewServer builds the router. A nil Events publisher is replaced by a no-op.
func NewServer(opts Options) *Server {
	s := &Server{
		store:         opts.Store,
		auth:          opts.Auth,
		events:        opts.Events,
		debug:         opts.Debug,
		secureCookies: opts.SecureCookies,
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.authenticate)
	r.NotFoundHandler = s.handle(func(*requestContext) error { return errNoRoute })
	r.MethodNotAllowedHandler = s.handle(func(*requestContext) error { return errMethod })

	r.Handle("/", s.handle(s.home)).Methods(http.MethodGet)
	r.Handle("/healthz", s.handle(s.health)).Methods(http.MethodGet)

	r.Handle("/register", s.handle(s.register)).Methods(http.MethodPost)
	r.Handle("/login", s.handle(s.login)).Methods(http.MethodPost)
	r.Handle("/login", s.handle(s.currentUser)).Methods(http.MethodGet)
	r.Handle("/logout", s.handle(s.logout)).Methods(http.MethodPost)

	r.Handle("/categories", s.handle(s.listCategories)).Methods(http.MethodGet)
	r.Handle("/categories", s.handle(s.createCategory)).Methods(http.MethodPost)
	r.Handle("/categories/{id:[0-9]+}", s.handle(s.getCategory)).Methods(http.MethodGet)
	r.Handle("/categories/{id:[0-9]+}", s.handle(s.replaceCategory)).Methods(http.MethodPut)
	r.Handle("/categories/{id:[0-9]+}", s.handle(s.patchCategory)).Methods(http.MethodPatch)
	r.Handle("/categories/{id:[0-9]+}", s.handle(s.deleteCategory)).Methods(http.MethodDelete)

	r.Handle("/posts", s.handle(s.listPosts)).Methods(http.MethodGet)
	r.Handle("/posts", s.handle(s.createPost)).Methods(http.MethodPost)
	r.Handle("/posts/{id:[0-9]+}", s.handle(s.getPost)).Methods(http.MethodGet)
	r.Handle("/posts/{id:[0-9]+}", s.handle(s.replacePost)).Methods(http.MethodPut)
	r.Handle("/posts/{id:[0-9]+}", s.handle(s.patchPost)).Methods(http.MethodPatch)
	r.Handle("/posts/{id:[0-9]+}", s.handle(s.deletePost)).Methods(http.MethodDelete)

	r.Handle("/users", s.handle(s.listUsers)).Methods(http.MethodGet)
	r.Handle("/users", s.handle(s.createUser)).Methods(http.MethodPost)
	r.Handle("/users/{id:[0-9]+}", s.handle(s.getUser)).Methods(http.MethodGet)
	r.Handle("/users/{id:[0-9]+}", s.handle(s.replaceUser)).Methods(http.MethodPut)
	r.Handle("/users/{id:[0-9]+}", s.handle(s.patchUser)).Methods(http.MethodPatch)
	r.Handle("/users/{id:[0-9]+}", s.handle(s.deleteUser)).Methods(http.MethodDelete)
	return r
}

var (
	errNoRoute = &apiError{status: http.StatusNotFound, detail: "No route found."}
	errMethod  = &apiError{status: http.StatusMethodNotAllowed, detail: "Method not allowed."}
)

// Handler returns the full handler chain: request id, access log, gzip and
// the router.
func (s *Server) Handler() http.Handler {
	logged := logging.LogHandler(gzhttp.GzipHandler(s.router), func(r *http.Request) string {
		return RequestIDFrom(r.Context())
	})
	return withRequestID(logged)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("api: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	logging.Infof("api: shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) home(c *requestContext) error {
	return c.writeJSON(http.StatusOK, map[string]string{"message": c.tr.T("home.welcome")})
}

func (s *Server) health(c *requestContext) error {
	if err := s.store.Ping(c.context()); err != nil {
		logging.Warnf("api: health check failed: %v", err)
		return c.writeJSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.writeJSON(http.StatusOK, map[string]string{"status": "ok"})
}

// publish emits a domain event. Failures never fail the request.
func (s *Server) publish(c *requestContext, resource, action string, id int, payload any) {
	if err := s.events.Publish(c.context(), events.New(resource, action, id, payload)); err != nil {
		logging.Warnf("api: publish %s.%s %d: %v", resource, action, id, err)
	}
}
