package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/card-planner/backend/internal/models"
	"example.com/card-planner/backend/internal/notifications"
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий.
func (h *NotificationHandler) Stream(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe()
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected"})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}

func publishBalanceUpdate(hub *notifications.Hub, account *models.Account, card *models.Card) {
	if hub == nil || (account == nil && card == nil) {
		return
	}

	data := map[string]interface{}{}
	if account != nil {
		data["checking_balance"] = money(account.BalanceCents)
	}
	if card != nil {
		data["card_id"] = card.ID.String()
		data["card_name"] = card.Name
		data["closed_balance"] = money(card.ClosedBalanceCents)
		data["open_balance"] = money(card.OpenBalanceCents)
	}

	hub.Publish(notifications.Event{Type: notifications.EventBalanceUpdated, Data: data})
}

func publishRecommendation(hub *notifications.Hub, eventType string, rec RecommendationResponse) {
	if hub == nil {
		return
	}

	hub.Publish(notifications.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"recommendation_id": rec.ID.String(),
			"card_name":         rec.CardName,
			"amount":            rec.Amount,
			"status":            rec.Status,
		},
	})
}
