package service

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geo"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

// Snapshot shape
const (
	RoadCount     = 12
	JunctionCount = 8
	MaxIncidents  = 3
)

var roadNames = [RoadCount]string{
	"Main Street", "Oak Avenue", "Park Road", "Broadway", "Highland Avenue",
	"Riverside Drive", "Central Parkway", "Market Street", "University Boulevard",
	"Industrial Way", "Harbor Road", "Commerce Street",
}

var junctionTypes = []string{
	domain.JunctionTrafficLight,
	domain.JunctionRoundabout,
	domain.JunctionUncontrolled,
}

// incidentProfile fixes severity and delay range per incident type
type incidentProfile struct {
	kind         string
	severity     string
	minDelay     int
	maxDelay     int
	descriptions []string
}

var incidentProfiles = []incidentProfile{
	{domain.IncidentAccident, domain.SeverityHigh, 20, 60, []string{
		"Multi-vehicle collision causing delays",
		"Traffic accident with emergency responders on scene",
		"Minor collision, right lane blocked",
	}},
	{domain.IncidentConstruction, domain.SeverityMedium, 10, 30, []string{
		"Road maintenance work in progress",
		"Lane closures due to utility repairs",
		"Construction zone, reduced speed limit",
	}},
	{domain.IncidentEvent, domain.SeverityLow, 5, 15, []string{
		"Sports event causing increased traffic",
		"Public gathering affecting traffic flow",
		"Street fair closing multiple lanes",
	}},
	{domain.IncidentRoadClosure, domain.SeverityHigh, 30, 90, []string{
		"Full road closure due to gas leak",
		"Bridge closed for emergency repairs",
		"Road closed due to flooding",
	}},
	{domain.IncidentDisabledVehicle, domain.SeverityMedium, 10, 25, []string{
		"Stalled vehicle in right lane",
		"Disabled truck on shoulder",
		"Vehicle with flat tire blocking lane",
	}},
}

// NetworkBuilder synthesizes road/junction/incident snapshots around a point
type NetworkBuilder struct {
	estimator *CongestionEstimator
	series    *SeriesSynthesizer
	rng       RandomSource
	isHoliday HolidayFunc
}

// NewNetworkBuilder creates a builder
func NewNetworkBuilder(estimator *CongestionEstimator, series *SeriesSynthesizer, rng RandomSource, isHoliday HolidayFunc) *NetworkBuilder {
	if isHoliday == nil {
		isHoliday = WeekendAsHoliday
	}
	return &NetworkBuilder{
		estimator: estimator,
		series:    series,
		rng:       rng,
		isHoliday: isHoliday,
	}
}

// Build generates a fresh snapshot centred on lat/lon as of now
func (b *NetworkBuilder) Build(lat, lon float64, now time.Time) *domain.NetworkSnapshot {
	center := domain.Coordinates{Latitude: lat, Longitude: lon}
	hour := now.Hour()
	weekday := domain.MondayWeekday(now)
	holiday := b.isHoliday(now)

	roads := b.buildRoads(center, now, hour, weekday, holiday)
	junctions := b.buildJunctions(center, roads, hour, weekday, holiday)
	incidents := b.buildIncidents(roads, now)

	return &domain.NetworkSnapshot{
		ID:        uuid.New(),
		Timestamp: now,
		Center:    center,
		Roads:     roads,
		Junctions: junctions,
		Incidents: incidents,
		Stats:     computeStats(roads, incidents, hour),
		Source:    domain.SourceSynthetic,
	}
}

func (b *NetworkBuilder) buildRoads(center domain.Coordinates, now time.Time, hour, weekday int, holiday bool) []domain.Road {
	roads := make([]domain.Road, 0, RoadCount)

	for i, name := range roadNames {
		capacity := randInt(b.rng, 1, 5)
		baseline := randInt(b.rng, 20, 80)

		score := b.estimator.Predict(domain.FeatureVector{
			Hour:            hour,
			Weekday:         weekday,
			IsHoliday:       holiday,
			RoadCapacity:    capacity,
			BaselineTraffic: baseline,
		})
		score = utils.RoundTo(score, 1)

		// bigger roads have a higher free-flow speed
		baseSpeed := 10 + float64(capacity)*15
		speed := math.Max(5, baseSpeed*(1-(score/100)*0.8))

		start := b.jitter(center, 0.02)
		seg := domain.Segment{Start: start, End: b.jitter(start, 0.01)}
		lengthKm := geo.Distance(seg.Start.Point(), seg.End.Point()) / 1000

		roads = append(roads, domain.Road{
			ID:                fmt.Sprintf("road-%d", i+1),
			Name:              name,
			Capacity:          capacity,
			CongestionScore:   score,
			CongestionLevel:   domain.LevelFor(score),
			AverageSpeed:      utils.RoundTo(speed, 1),
			FreeFlowSpeed:     baseSpeed,
			LengthKm:          utils.RoundTo(lengthKm, 2),
			TravelTimeMinutes: utils.RoundTo(lengthKm/speed*60, 1),
			Coordinates:       seg,
			History:           slices.Collect(b.series.History(now, baseline, capacity)),
			Prediction:        slices.Collect(b.series.Prediction(now, baseline, capacity, weekday)),
		})
	}

	return roads
}

func (b *NetworkBuilder) buildJunctions(center domain.Coordinates, roads []domain.Road, hour, weekday int, holiday bool) []domain.Junction {
	roadIDs := make([]string, len(roads))
	for i, r := range roads {
		roadIDs[i] = r.ID
	}

	junctions := make([]domain.Junction, 0, JunctionCount)
	for i := 0; i < JunctionCount; i++ {
		coords := b.jitter(center, 0.015)
		connected := sample(b.rng, roadIDs, randInt(b.rng, 2, 4))

		// junctions tend to be more congested than the roads feeding them
		score := b.estimator.Predict(domain.FeatureVector{
			Hour:            hour,
			Weekday:         weekday,
			IsHoliday:       holiday,
			RoadCapacity:    randInt(b.rng, 1, 5),
			BaselineTraffic: randInt(b.rng, 30, 90),
		})
		score = utils.RoundTo(score, 1)

		junctions = append(junctions, domain.Junction{
			ID:                 fmt.Sprintf("junction-%d", i+1),
			Name:               fmt.Sprintf("Junction %d", i+1),
			Type:               pick(b.rng, junctionTypes),
			Coordinates:        coords,
			ConnectedRoads:     connected,
			CongestionScore:    score,
			CongestionLevel:    domain.LevelFor(score),
			AverageWaitSeconds: int(score * 1.2),
		})
	}

	return junctions
}

func (b *NetworkBuilder) buildIncidents(roads []domain.Road, now time.Time) []domain.Incident {
	count := randInt(b.rng, 0, MaxIncidents)
	incidents := make([]domain.Incident, 0, count)

	for i := 0; i < count; i++ {
		profile := pick(b.rng, incidentProfiles)
		road := pick(b.rng, roads)

		start := now.Add(-time.Duration(randInt(b.rng, 0, 60)) * time.Minute)
		end := start.Add(time.Duration(randInt(b.rng, 30, 180)) * time.Minute)

		incidents = append(incidents, domain.Incident{
			ID:               fmt.Sprintf("incident-%d", i+1),
			Type:             profile.kind,
			Severity:         profile.severity,
			DelayMinutes:     float64(randInt(b.rng, profile.minDelay, profile.maxDelay)),
			RoadID:           road.ID,
			RoadName:         road.Name,
			Description:      pick(b.rng, profile.descriptions),
			Coordinates:      b.jitter(road.Coordinates.Midpoint(), 0.002),
			StartTime:        &start,
			EstimatedEndTime: &end,
			Status:           "active",
		})
	}

	return incidents
}

// jitter offsets a point by up to ±spread degrees on each axis
func (b *NetworkBuilder) jitter(c domain.Coordinates, spread float64) domain.Coordinates {
	return domain.Coordinates{
		Latitude:  c.Latitude + uniform(b.rng, -spread, spread),
		Longitude: c.Longitude + uniform(b.rng, -spread, spread),
	}
}

// computeStats aggregates roads and incidents; roads above 70 count as high congestion
func computeStats(roads []domain.Road, incidents []domain.Incident, hour int) domain.NetworkStats {
	stats := domain.NetworkStats{
		TotalIncidents: len(incidents),
		DayPhase:       domain.DayPhase(hour),
	}
	if len(roads) == 0 {
		return stats
	}

	var sum float64
	for _, r := range roads {
		sum += r.CongestionScore
		if r.CongestionScore > 70 {
			stats.HighCongestionAreas++
		}
	}
	stats.AverageCongestion = utils.RoundTo(sum/float64(len(roads)), 1)
	return stats
}
