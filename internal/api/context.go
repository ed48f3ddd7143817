// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/i18n"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// requestContext carries everything a handler needs for one request.
type requestContext struct {
	w         http.ResponseWriter
	r         *http.Request
	requestID string
	principal *auth.Principal
	tr        i18n.Translator
}

func (c *requestContext) context() context.Context {
	return c.r.Context()
}

// handle adapts fn to http.HandlerFunc; a returned error becomes a problem
// response.
func (s *Server) handle(fn func(*requestContext) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := &requestContext{
			w:         w,
			r:         r,
			requestID: RequestIDFrom(r.Context()),
			principal: auth.PrincipalFrom(r.Context()),
			tr:        i18n.For(r.Header.Get("Accept-Language")),
		}
		if err := fn(c); err != nil {
			s.writeError(c, err)
		}
	}
}

func (c *requestContext) writeJSON(status int, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.w.WriteHeader(status)
	_, err = c.w.Write(raw)
	return err
}

func (c *requestContext) noContent() error {
	c.w.WriteHeader(http.StatusNoContent)
	return nil
}

// decode reads a JSON object body into v.
func (c *requestContext) decode(v any) error {
	body := http.MaxBytesReader(c.w, c.r.Body, maxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		return badRequest("Request body too large or unreadable.", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return badRequest("Syntax error: empty request body.", nil)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest("Syntax error: the request body is not valid JSON for this resource.", err)
	}
	return nil
}

// pathID returns the {id} route variable. Values the router accepted but
// that overflow int are reported as not found.
func (c *requestContext) pathID() (int, error) {
	id, err := strconv.Atoi(mux.Vars(c.r)["id"])
	if err != nil || id <= 0 {
		return 0, db.ErrNotFound
	}
	return id, nil
}

type requestIDKey struct{}

// RequestIDFrom returns the request id stored by withRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID assigns every request an id, reusing a well-formed incoming
// X-Request-Id, and echoes it in the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// SessionCookie is the name of the session cookie.
const SessionCookie = "BLOGSESSID"

// tokenFrom returns the bearer token, or the session cookie value.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if ck, err := r.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

// authenticate resolves the request token into a principal. Unknown and
// expired tokens leave the request anonymous.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := tokenFrom(r); token != "" {
			p, err := s.auth.Resolve(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(auth.WithPrincipal(r.Context(), p))
			case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrSessionExpired):
			default:
				s.handle(func(*requestContext) error { return err }).ServeHTTP(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
