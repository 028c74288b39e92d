package xhttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cdr.dev/slog/sloggers/slogtest"
	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/lrviz/lib/log"
)

func request(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	ctx := log.WithTB(context.Background(), t, &slogtest.Options{IgnoreErrors: true})
	r := httptest.NewRequest(http.MethodGet, "/watch", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	Log(h).ServeHTTP(w, r)
	return w
}

func TestHandlerFuncErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		err     error
		expCode int
		expBody string
	}{
		{
			name:    "client",
			err:     Errorf(http.StatusBadRequest, "no input", "missing %s", "input"),
			expCode: http.StatusBadRequest,
			expBody: `{"error":"no input"}`,
		},
		{
			name:    "default_resp",
			err:     ErrorWrap(http.StatusServiceUnavailable, nil, errors.New("closing")),
			expCode: http.StatusServiceUnavailable,
			expBody: `{"error":"Service Unavailable"}`,
		},
		{
			name:    "plain",
			err:     errors.New("boom"),
			expCode: http.StatusInternalServerError,
			expBody: `{"error":"Internal Server Error"}`,
		},
		{
			name:    "not_an_error_code",
			err:     Errorf(http.StatusOK, nil, "fine"),
			expCode: http.StatusInternalServerError,
			expBody: `{"error":"Internal Server Error"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := request(t, HandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tc.err
			}))
			assert.Equal(t, tc.expCode, w.Code)
			assert.JSONEq(t, tc.expBody, w.Body.String())
		})
	}
}

func TestErrorIs(t *testing.T) {
	t.Parallel()

	base := errors.New("base")
	err := ErrorWrap(http.StatusNotFound, nil, base)
	assert.True(t, errors.Is(err, base))
	assert.True(t, errors.Is(err, ErrorWrap(http.StatusNotFound, nil, base)))
	assert.False(t, errors.Is(err, ErrorWrap(http.StatusGone, nil, base)))
}

func TestLogPanic(t *testing.T) {
	t.Parallel()

	w := request(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("oops")
	}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogWritten(t *testing.T) {
	t.Parallel()

	w := request(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSON(r.Context(), w, http.StatusCreated, nil)
	}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"Created"}`, w.Body.String())
}
