package dto

import "time"

// EventFilters contains filtering options for event journal queries
type EventFilters struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

// EventEntry is one journal row. It records that something happened,
// never an amount.
type EventEntry struct {
	ID             string    `json:"id"`
	AccountAddress string    `json:"account_address"`
	EventType      string    `json:"event_type"`
	Label          string    `json:"label,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListEventsResponse is the paginated event journal for one account.
type ListEventsResponse struct {
	Events []EventEntry `json:"events"`
	Total  int64        `json:"total"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}
