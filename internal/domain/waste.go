package domain

import "time"

// Bin fill bands
const (
	BinLow      = "low"
	BinModerate = "moderate"
	BinHigh     = "high"
)

// WasteBin is a monitored public waste container
type WasteBin struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"`
	Location       Location     `json:"location"`
	CapacityLiters int          `json:"capacity"`
	FillPercentage float64      `json:"fill_percentage"`
	Status         string       `json:"status"`
	Color          string       `json:"color"`
	LastUpdated    time.Time    `json:"last_updated"`
	NextCollection time.Time    `json:"next_collection"`
	History        []FillSample `json:"history"`
}

// FillSample is a daily fill level
type FillSample struct {
	Timestamp      time.Time `json:"timestamp"`
	FillPercentage float64   `json:"fill_percentage"`
}

// WasteInventory is every bin in the store
type WasteInventory struct {
	Count     int        `json:"count"`
	Bins      []WasteBin `json:"bins"`
	Generated time.Time  `json:"generated"`
}
