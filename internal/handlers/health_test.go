package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

// TestHealth проверяет статус сервиса в зависимости от доступности базы.
func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		db     Pinger
		code   int
		status string
	}{
		{name: "ok", db: fakePinger{}, code: http.StatusOK, status: `"status":"ok"`},
		{name: "down", db: fakePinger{err: errors.New("connection refused")}, code: http.StatusServiceUnavailable, status: `"status":"degraded"`},
		{name: "none", db: nil, code: http.StatusOK, status: `"database":"unknown"`},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()

			if err := Health(tc.db)(e.NewContext(req, rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.status) {
				t.Fatalf("expected %s in body, got %s", tc.status, rec.Body.String())
			}
		})
	}
}
