// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/logging"
	"github.com/toeirei/blog/internal/model"
)

// Problem is the JSON body of every error response.
type Problem struct {
	Title      string            `json:"title"`
	Detail     string            `json:"detail"`
	Status     int               `json:"status"`
	Violations []model.Violation `json:"violations,omitempty"`
}

// apiError is an error that already knows its HTTP rendering.
type apiError struct {
	status     int
	title      string
	detail     string
	violations model.Violations
	cause      error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return e.detail + ": " + e.cause.Error()
	}
	return e.detail
}

func (e *apiError) Unwrap() error { return e.cause }

func badRequest(detail string, cause error) *apiError {
	return &apiError{status: http.StatusBadRequest, detail: detail, cause: cause}
}

// violation reports a single failed constraint.
func violation(path, message string) error {
	return model.Violations{{PropertyPath: path, Message: message}}
}

// toAPIError maps err onto a status and message.
func (s *Server) toAPIError(c *requestContext, err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	var vs model.Violations
	if errors.As(err, &vs) {
		details := make([]string, 0, len(vs))
		for _, v := range vs {
			details = append(details, v.PropertyPath+": "+v.Message)
		}
		return &apiError{
			status:     http.StatusUnprocessableEntity,
			title:      c.tr.T("validation.failed"),
			detail:     strings.Join(details, "\n"),
			violations: vs,
		}
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &apiError{status: http.StatusUnauthorized, detail: c.tr.T("auth.invalid_credentials")}
	case errors.Is(err, auth.ErrUnauthenticated):
		return &apiError{status: http.StatusUnauthorized, detail: c.tr.T("auth.required")}
	case errors.Is(err, auth.ErrForbidden):
		return &apiError{status: http.StatusForbidden, detail: c.tr.T("auth.forbidden")}
	case errors.Is(err, db.ErrNotFound):
		return &apiError{status: http.StatusNotFound, detail: c.tr.T("error.not_found")}
	case errors.Is(err, db.ErrInvalidReference):
		return &apiError{status: http.StatusBadRequest, detail: err.Error()}
	case errors.Is(err, db.ErrDuplicate):
		return &apiError{status: http.StatusUnprocessableEntity, title: c.tr.T("validation.failed"), detail: err.Error()}
	}
	return &apiError{status: http.StatusInternalServerError, cause: err}
}

// writeError renders err as problem JSON. Internal errors are logged and,
// outside debug mode, only the request id is disclosed.
func (s *Server) writeError(c *requestContext, err error) {
	ae := s.toAPIError(c, err)
	if ae.status == http.StatusInternalServerError {
		logging.Errorf("api: request %s %s %s failed: %v", c.requestID, c.r.Method, c.r.URL.Path, err)
		ae.detail = c.tr.T("error.internal", c.requestID)
		if s.debug {
			ae.detail = err.Error() + " [ID = " + c.requestID + "]"
		}
	}
	title := ae.title
	if title == "" {
		title = http.StatusText(ae.status)
	}
	if ae.status == http.StatusUnauthorized {
		c.w.Header().Set("WWW-Authenticate", `Bearer realm="blog"`)
	}
	raw, mErr := json.Marshal(Problem{Title: title, Detail: ae.detail, Status: ae.status, Violations: ae.violations})
	if mErr != nil {
		http.Error(c.w, ae.detail, ae.status)
		return
	}
	c.w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	c.w.WriteHeader(ae.status)
	_, _ = c.w.Write(raw)
}
