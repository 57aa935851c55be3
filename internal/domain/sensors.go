package domain

import "time"

// Sensor is an IoT device with its latest readings
type Sensor struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	Location    Location           `json:"location"`
	Status      string             `json:"status"`
	Battery     int                `json:"battery,omitempty"`
	LastUpdated time.Time          `json:"last_updated"`
	Readings    map[string]float64 `json:"readings"`
	History     []SensorSample     `json:"history,omitempty"`
}

// SensorSample is one hourly set of readings
type SensorSample struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// SensorList is the sensors near a point
type SensorList struct {
	Count   int      `json:"count"`
	Sensors []Sensor `json:"sensors"`
	IsMock  bool     `json:"is_mock"`
}
