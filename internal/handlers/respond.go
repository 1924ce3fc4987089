package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/planner"
)

const dateLayout = "2006-01-02"

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func unprocessable(c echo.Context, message string) error {
	return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func parseID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

// Clock отдает текущий момент в часовом поясе пользователя.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewClock создает часы в заданной локации.
func NewClock(location *time.Location) Clock {
	if location == nil {
		location = time.UTC
	}
	return Clock{Location: location, Now: time.Now}
}

// Today возвращает сегодняшнюю дату в полночь локального времени.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return planner.DateOnly(now().In(loc))
}

// parseDate принимает YYYY-MM-DD или RFC3339; время суток отбрасывается.
func (c Clock) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	if strings.Contains(value, "T") {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := parsed.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}

	return time.ParseInLocation(dateLayout, value, loc)
}

func money(cents int64) float64 {
	return planner.Round2(planner.FromCents(cents))
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := formatDate(*t)
	return &value
}
