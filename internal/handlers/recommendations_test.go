package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/repository"
)

// TestParseIDs проверяет, что неверные идентификаторы пакета попадают в ошибки, а не прерывают его.
func TestParseIDs(t *testing.T) {
	ids, failed := parseIDs([]string{visaID.String(), "bad", amexID.String()})

	if len(ids) != 2 || ids[0] != visaID || ids[1] != amexID {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if len(failed) != 1 || failed[0].ID != "bad" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

// TestWriteRecommendationError проверяет коды ответов для ошибок рекомендаций.
func TestWriteRecommendationError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{err: repository.ErrNotFound, code: http.StatusNotFound},
		{err: repository.ErrAlreadyExecuted, code: http.StatusConflict},
		{err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()

		if err := writeRecommendationError(e.NewContext(req, rec), tc.err); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != tc.code {
			t.Fatalf("expected %d for %v, got %d", tc.code, tc.err, rec.Code)
		}
	}
}

// TestToRecommendationResponse проверяет сумму платежа для рассрочки.
func TestToRecommendationResponse(t *testing.T) {
	payments := 3
	frequency := "monthly"
	item := repository.RecommendationWithSchedule{
		Recommendation: models.PurchaseRecommendation{
			ID:               visaID,
			AmountCents:      90000,
			PurchaseDate:     time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
			IsDeferred:       true,
			NumPayments:      &payments,
			PaymentFrequency: &frequency,
			CardName:         "Visa",
			Status:           models.RecommendationPending,
		},
	}

	response := toRecommendationResponse(item)
	if response.Amount != 900 || response.PaymentAmount != 300 {
		t.Fatalf("unexpected amounts: %+v", response)
	}
	if response.PurchaseDate != "2026-01-10" {
		t.Fatalf("unexpected purchase date: %s", response.PurchaseDate)
	}
	if response.Schedule == nil {
		t.Fatal("expected empty schedule slice")
	}
}
