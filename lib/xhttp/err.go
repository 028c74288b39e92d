package xhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cdr.dev/slog"

	"oss.terrastruct.com/lrviz/lib/log"
)

// Error is an error with the HTTP status and response body it should produce.
// It's exported only for comparison in tests.
type Error struct {
	Code int
	Resp interface{}
	Err  error
}

var _ interface {
	Is(error) bool
	Unwrap() error
} = Error{}

// Errorf creates a new error with code, resp, msg and v.
//
// When returned from an xhttp.HandlerFunc, it will be correctly logged
// and written to the connection. See xhttp.HandlerFuncAdapter
func Errorf(code int, resp interface{}, msg string, v ...interface{}) error {
	return ErrorWrap(code, resp, fmt.Errorf(msg, v...))
}

// ErrorWrap wraps err with the code and resp for xhttp.HandlerFunc.
func ErrorWrap(code int, resp interface{}, err error) error {
	if resp == nil {
		resp = http.StatusText(code)
	}
	return Error{code, resp, err}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Is(err error) bool {
	e2, ok := err.(Error)
	if !ok {
		return false
	}
	return e.Code == e2.Code && e.Resp == e2.Resp && errors.Is(e.Err, e2.Err)
}

func (e Error) Error() string {
	return fmt.Sprintf("http error with code %v and resp %#v: %v", e.Code, e.Resp, e.Err)
}

// HandlerFunc is like http.HandlerFunc but returns an error.
// See Errorf and ErrorWrap.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP logs and writes any error from h to the connection.
//
// Errors made with Errorf or ErrorWrap are written with their code and resp,
// 400s logged as warnings and 500s as errors. Anything else becomes a 500.
func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h(w, r)
	if err != nil {
		handleError(r.Context(), w, err)
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	var herr Error
	if !errors.As(err, &herr) {
		herr = ErrorWrap(http.StatusInternalServerError, nil, err).(Error)
	}

	if herr.Code < 400 || herr.Code >= 600 {
		log.Error(ctx, "unexpected non error http status code",
			slog.F("code", herr.Code),
			slog.F("resp", herr.Resp),
		)
		herr.Code = http.StatusInternalServerError
		herr.Resp = http.StatusText(herr.Code)
	}

	if herr.Code < 500 {
		log.Warn(ctx, "error handling http request", slog.Error(err))
	} else {
		log.Error(ctx, "error handling http request", slog.Error(err))
	}

	if ww, ok := w.(writtenResponseWriter); ok && ww.Written() {
		// The response was already on its way out.
		return
	}

	JSON(ctx, w, herr.Code, map[string]interface{}{
		"error": herr.Resp,
	})
}

type writtenResponseWriter interface {
	Written() bool
}

// JSON writes v as the JSON body of a response with code.
func JSON(ctx context.Context, w http.ResponseWriter, code int, v interface{}) {
	if v == nil {
		v = map[string]interface{}{
			"status": http.StatusText(code),
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		log.Error(ctx, "json marshal error", slog.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
