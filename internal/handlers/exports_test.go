package handlers

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/repository"
)

func readScheduleCSV(t *testing.T, item repository.RecommendationWithSchedule) [][]string {
	t.Helper()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeScheduleCSV(writer, item); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

// TestWriteScheduleCSVSinglePayment проверяет выгрузку покупки без рассрочки одной строкой.
func TestWriteScheduleCSVSinglePayment(t *testing.T) {
	item := repository.RecommendationWithSchedule{
		Recommendation: models.PurchaseRecommendation{
			ID:           uuid.New(),
			Description:  "Laptop",
			AmountCents:  12345,
			PurchaseDate: time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
			CardName:     "Visa",
		},
	}

	records := readScheduleCSV(t, item)
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d", len(records))
	}
	row := records[1]
	if row[1] != "Visa" || row[3] != "1" || row[4] != "123.45" || row[5] != "2026-01-10" || row[6] != "" {
		t.Fatalf("unexpected row: %v", row)
	}
}

// TestWriteScheduleCSVDeferred проверяет строку на каждый платеж рассрочки.
func TestWriteScheduleCSVDeferred(t *testing.T) {
	id := uuid.New()
	start := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)
	item := repository.RecommendationWithSchedule{
		Recommendation: models.PurchaseRecommendation{
			ID:          id,
			Description: "Sofa",
			AmountCents: 90000,
			IsDeferred:  true,
			CardName:    "Amex",
		},
	}
	for i := 0; i < 3; i++ {
		item.Schedule = append(item.Schedule, models.DeferredPayment{
			RecommendationID:   id,
			PaymentNumber:      i + 1,
			AmountCents:        30000,
			ExpectedDate:       start.AddDate(0, i, 0),
			StatementCloseDate: start.AddDate(0, i-1, 20),
		})
	}

	records := readScheduleCSV(t, item)
	if len(records) != 4 {
		t.Fatalf("expected header and three rows, got %d", len(records))
	}
	if records[0][0] != "recommendation_id" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	last := records[3]
	if last[0] != id.String() || last[3] != "3" || last[4] != "300.00" || last[5] != "2026-04-05" {
		t.Fatalf("unexpected last row: %v", last)
	}
}
