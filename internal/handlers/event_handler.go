package handlers

import (
	"net/http"

	"cipherledger/internal/dto"
	"cipherledger/internal/errors"
	"cipherledger/internal/repositories"

	"github.com/labstack/echo/v4"
)

const (
	defaultEventPageSize = 50
	maxEventPageSize     = 200
)

// EventHandler serves the per-account event journal
type EventHandler struct {
	repo repositories.EventRepositoryInterface
}

// NewEventHandler creates a new event handler
func NewEventHandler(repo repositories.EventRepositoryInterface) *EventHandler {
	return &EventHandler{repo: repo}
}

// ListEvents returns the authenticated account's journal page
func (h *EventHandler) ListEvents(c echo.Context) error {
	account, err := getAccountFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var filters dto.EventFilters
	if err := c.Bind(&filters); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid query parameters"))
	}
	if filters.Limit <= 0 {
		filters.Limit = defaultEventPageSize
	}
	if filters.Limit > maxEventPageSize {
		filters.Limit = maxEventPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	events, total, err := h.repo.ListByAccount(account, filters.Offset, filters.Limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	resp := dto.ListEventsResponse{
		Events: make([]dto.EventEntry, 0, len(events)),
		Total:  total,
		Offset: filters.Offset,
		Limit:  filters.Limit,
	}
	for _, event := range events {
		label := event.Category
		if label == "" {
			label = event.Source
		}
		if label == "" {
			label = event.Name
		}
		resp.Events = append(resp.Events, dto.EventEntry{
			ID:             event.ID.String(),
			AccountAddress: event.AccountAddress,
			EventType:      event.EventType,
			Label:          label,
			CreatedAt:      event.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
