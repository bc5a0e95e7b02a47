package handlers_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/docket/pkg/handlers"
)

func TestRespondJSONEncodesBody(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusCreated, map[string]any{"id": "c1", "pages": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"c1","pages":3}`, rec.Body.String())
}

func TestRespondErrorLevels(t *testing.T) {
	cases := []struct {
		status int
		level  string
	}{
		{http.StatusConflict, "level=WARN"},
		{http.StatusBadGateway, "level=ERROR"},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logs, nil))
			rec := httptest.NewRecorder()

			handlers.RespondError(rec, logger, tc.status, errors.New("case is being analyzed"))

			require.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, `{"error":"case is being analyzed"}`, rec.Body.String())
			assert.Contains(t, logs.String(), tc.level)
		})
	}
}
