package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/repository"
)

// ScheduleCSV выгружает график платежей рекомендации в CSV-файл.
func (h *RecommendationHandler) ScheduleCSV(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "invalid recommendation id")
	}

	item, err := h.Recommendations.Get(c.Request().Context(), id)
	if err != nil {
		return writeRecommendationError(c, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeScheduleCSV(writer, item); err != nil {
		return serverError(c)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "recommendation-" + item.Recommendation.ID.String() + "-schedule.csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Для покупки без рассрочки выгружается одна строка на всю сумму.
func writeScheduleCSV(writer *csv.Writer, item repository.RecommendationWithSchedule) error {
	header := []string{
		"recommendation_id",
		"card_name",
		"description",
		"payment_number",
		"amount",
		"expected_date",
		"statement_close_date",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	rec := item.Recommendation
	if len(item.Schedule) == 0 {
		return writer.Write([]string{
			rec.ID.String(),
			rec.CardName,
			rec.Description,
			formatInt(1),
			formatAmount(rec.AmountCents),
			formatDate(rec.PurchaseDate),
			"",
		})
	}

	for _, p := range item.Schedule {
		record := []string{
			rec.ID.String(),
			rec.CardName,
			rec.Description,
			formatInt(p.PaymentNumber),
			formatAmount(p.AmountCents),
			formatDate(p.ExpectedDate),
			formatDate(p.StatementCloseDate),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatAmount(cents int64) string {
	return strconv.FormatFloat(money(cents), 'f', 2, 64)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
