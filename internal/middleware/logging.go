package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// statusWriter remembers what a handler sent back. Websocket handshakes
// hijack the connection, after which nothing passes through it.
type statusWriter struct {
	http.ResponseWriter
	status   int
	bytes    int
	upgraded bool
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	w.upgraded = true
	return h.Hijack()
}

func level(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Logging writes one line per request, at warn level for client errors and
// error level for server errors.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug(r.Method + " " + r.URL.Path)
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.Int("status", sw.status),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remoteAddr", r.RemoteAddr),
				slog.String("xffHeader", r.Header.Get("X-Forwarded-For")),
				slog.Int64("duration (ms)", time.Since(start).Milliseconds()),
			}
			if sw.upgraded {
				attrs = append(attrs, slog.Bool("websocket", true))
			} else {
				attrs = append(attrs, slog.Int("bytes", sw.bytes))
			}
			logger.LogAttrs(r.Context(), level(sw.status), "handled request", attrs...)
		})
	}
}
