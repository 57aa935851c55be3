package domain

import "time"

// TransitRoute is a public transport line and its stops
type TransitRoute struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ShortName   string        `json:"short_name"`
	Type        string        `json:"type"`
	TypeID      int           `json:"type_id"`
	Color       string        `json:"color"`
	TextColor   string        `json:"text_color"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	Stops       []TransitStop `json:"stops"`
}

// TransitStop is a boarding point with its next departures
type TransitStop struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     Location  `json:"location"`
	NextArrivals []Arrival `json:"next_arrivals"`
	Accessible   bool      `json:"accessible"`
	HasShelter   bool      `json:"has_shelter"`
}

// Arrival is a scheduled vehicle arrival (HH:MM local)
type Arrival struct {
	Scheduled    string `json:"scheduled"`
	Estimated    string `json:"estimated"`
	DelayMinutes int    `json:"delay"`
}

// TransitNetwork is every route in the store
type TransitNetwork struct {
	Count     int            `json:"count"`
	Routes    []TransitRoute `json:"routes"`
	Generated time.Time      `json:"generated"`
}

// RouteRef identifies the route a nearby stop belongs to
type RouteRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

// NearbyStop is a stop with its distance from the query point
type NearbyStop struct {
	TransitStop
	DistanceKm float64  `json:"distance"`
	Route      RouteRef `json:"route"`
}

// NearbyStops lists stops within a radius, closest first
type NearbyStops struct {
	Count    int          `json:"count"`
	RadiusKm float64      `json:"radius_km"`
	Center   Location     `json:"center"`
	Stops    []NearbyStop `json:"stops"`
}
