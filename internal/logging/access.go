// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package logging

import (
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Access is the logrus logger used for the HTTP access log.
var Access = newAccessLogger()

func newAccessLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// ProxyResponseWriter records the status code and body size written through it.
type ProxyResponseWriter struct {
	http.ResponseWriter
	Status int
	Bytes  int64
}

// WriteHeader records the status code before passing it on.
func (w *ProxyResponseWriter) WriteHeader(code int) {
	if w.Status == 0 {
		w.Status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ProxyResponseWriter) Write(raw []byte) (int, error) {
	if w.Status == 0 {
		w.Status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(raw)
	w.Bytes += int64(n)
	return n, err
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (w *ProxyResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LoggedHandler writes one access log entry per request.
type LoggedHandler struct {
	Logger *logrus.Logger
	// RequestID extracts the request id for the entry; may be nil.
	RequestID func(*http.Request) string
	Next      http.Handler
}

// LogHandler wraps next with the package access logger.
func LogHandler(next http.Handler, requestID func(*http.Request) string) *LoggedHandler {
	return &LoggedHandler{Logger: Access, RequestID: requestID, Next: next}
}

func (h *LoggedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	proxy := &ProxyResponseWriter{ResponseWriter: w}

	h.Next.ServeHTTP(proxy, r)

	status := proxy.Status
	if status == 0 {
		status = http.StatusOK
	}
	fields := logrus.Fields{
		"method":   r.Method,
		"uri":      r.RequestURI,
		"status":   status,
		"bytes":    proxy.Bytes,
		"remote":   r.RemoteAddr,
		"duration": time.Since(start).String(),
	}
	if h.RequestID != nil {
		fields["request"] = h.RequestID(r)
	}
	entry := h.Logger.WithFields(fields)
	switch {
	case status >= 500:
		entry.Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request served")
	}
	if h.Logger.IsLevelEnabled(logrus.DebugLevel) {
		for k, v := range r.Header {
			if k == "Authorization" || k == "Cookie" {
				continue
			}
			entry.WithField("header", k).Debug(v)
		}
	}
}
