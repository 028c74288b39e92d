package xhttp

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"cdr.dev/slog"
	"golang.org/x/text/message"

	"oss.terrastruct.com/lrviz/lib/log"
)

type ResponseWriter interface {
	http.ResponseWriter
	http.Hijacker
	http.Flusher
	writtenResponseWriter
}

var _ ResponseWriter = &responseWriter{}

type responseWriter struct {
	rw http.ResponseWriter

	written bool
	status  int
	length  int
}

func (rw *responseWriter) Header() http.Header {
	return rw.rw.Header()
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.written = true
		rw.status = statusCode
	}
	rw.rw.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	if !rw.written && len(p) > 0 {
		rw.written = true
		if rw.status == 0 {
			rw.status = http.StatusOK
		}
	}
	rw.length += len(p)
	return rw.rw.Write(p)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.rw.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying response writer does not implement http.Hijacker: %T", rw.rw)
	}
	rw.written = true
	rw.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (rw *responseWriter) Flush() {
	f, ok := rw.rw.(http.Flusher)
	if !ok {
		return
	}
	f.Flush()
}

func (rw *responseWriter) Written() bool {
	return rw.written
}

var englishPrinter = message.NewPrinter(message.MatchLanguage("en"))

// Log logs every request handled by next with its status, size and duration
// and turns panics into 500s.
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rw := &responseWriter{
			rw: w,
		}
		defer func() {
			rec := recover()
			if rec != nil {
				log.Error(ctx, "caught panic",
					slog.F("panic", fmt.Sprintf("%#v", rec)),
					slog.F("stack", string(debug.Stack())),
				)
				if !rw.Written() {
					JSON(ctx, rw, http.StatusInternalServerError, map[string]interface{}{
						"error": http.StatusText(http.StatusInternalServerError),
					})
				}
			}
		}()

		start := time.Now()
		next.ServeHTTP(rw, r)
		dur := time.Since(start)

		fields := []slog.Field{
			slog.F("method", r.Method),
			slog.F("url", r.URL.String()),
			slog.F("duration", dur),
		}
		if !rw.Written() {
			_, err := rw.Write(nil)
			if errors.Is(err, http.ErrHijacked) {
				log.Debug(ctx, "hijacked", fields...)
				return
			}
			log.Warn(ctx, "no response written", fields...)
			return
		}

		fields = append(fields,
			slog.F("status", rw.status),
			slog.F("length", englishPrinter.Sprintf("%dB", rw.length)),
		)
		switch {
		case rw.status == http.StatusSwitchingProtocols:
			log.Debug(ctx, "upgraded", fields...)
		case rw.status < 400:
			log.Info(ctx, "served", fields...)
		case rw.status < 500:
			log.Warn(ctx, "served", fields...)
		default:
			log.Error(ctx, "served", fields...)
		}
	})
}
