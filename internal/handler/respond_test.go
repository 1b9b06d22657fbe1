package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler(dev bool) *Handler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &Handler{log: log, dev: dev}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantStatus  string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         apperr.New(apperr.KindNotFound, "product not found"),
			wantCode:    404,
			wantStatus:  "error",
			wantMessage: "product not found",
		},
		{
			name:        "conflict",
			err:         apperr.New(apperr.KindConflict, "product is already in the cart"),
			wantCode:    409,
			wantStatus:  "error",
			wantMessage: "product is already in the cart",
		},
		{
			name:        "insufficient stock maps to bad request",
			err:         apperr.New(apperr.KindInsufficientStock, "this product only has 2 items available"),
			wantCode:    400,
			wantStatus:  "error",
			wantMessage: "this product only has 2 items available",
		},
		{
			name:        "session expired",
			err:         apperr.New(apperr.KindSessionExpired, "your session has expired, please login again"),
			wantCode:    401,
			wantStatus:  "error",
			wantMessage: "your session has expired, please login again",
		},
		{
			name:        "untyped error is internal and opaque",
			err:         errors.New("pq: connection refused"),
			wantCode:    500,
			wantStatus:  "fail",
			wantMessage: "Something went wrong",
		},
		{
			name:        "wrapped kind survives",
			err:         apperr.Wrap(apperr.KindForbidden, "you can only modify your own products", errors.New("owner mismatch")),
			wantCode:    403,
			wantStatus:  "error",
			wantMessage: "you can only modify your own products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			testHandler(false).respondError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, tt.wantMessage, body["message"])
			assert.NotContains(t, body, "error")
		})
	}
}

func TestRespondErrorDevMode(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandler(true).respondError(rec, errors.New("pq: connection refused"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pq: connection refused", body["error"])
}
