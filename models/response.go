package models

// CardsResponse is the response for GET /api/v1/cards.
type CardsResponse struct {
	// Success indicates whether the snapshot was read without errors.
	Success bool `json:"success"`

	// Total is the number of cards in Cards after filtering.
	Total int `json:"total"`

	// Cards are the snapshot records in snapshot order.
	Cards []CardRecord `json:"cards"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// StatsResponse is the response for GET /api/v1/stats.
type StatsResponse struct {
	Success    bool            `json:"success"`
	Total      int             `json:"total"`
	ByTier     map[string]int  `json:"by_tier"`
	ByCategory []CategoryCount `json:"by_category"`
	Top        []CardRecord    `json:"top"`
	Error      *ErrorDetail    `json:"error,omitempty"`
}

// CategoryCount is the number of cards extracted for one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"` // "healthy" or "degraded"
	Uptime       string `json:"uptime"`
	SnapshotPath string `json:"snapshot_path"`
	Version      string `json:"version"`
}

// ErrorResponse is the body of every failed API call that has no richer
// response type.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
