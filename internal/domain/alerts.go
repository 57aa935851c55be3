package domain

import "time"

// SeverityLevel is an alert severity with its display color
type SeverityLevel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Category groups alerts and reports
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Alert is a city-wide notice
type Alert struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CategoryID     string    `json:"category_id"`
	SeverityID     string    `json:"severity_id"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsActive       bool      `json:"is_active"`
	AffectedAreas  string    `json:"affected_areas"`
	Source         string    `json:"source"`
	ActionRequired string    `json:"action_required"`
}

// ActiveAt reports whether the alert is live at t
func (a Alert) ActiveAt(t time.Time) bool {
	return a.IsActive && a.ExpiresAt.After(t)
}

// AlertFilter narrows an alert listing
type AlertFilter struct {
	CategoryID string
	SeverityID string
	ActiveOnly bool
}

// AlertSummary counts active alerts
type AlertSummary struct {
	TotalActive          int            `json:"total_active"`
	CategoryCounts       map[string]int `json:"category_counts"`
	SeverityCounts       map[string]int `json:"severity_counts"`
	HighestSeverityAlert *Alert         `json:"highest_severity_alert"`
}
