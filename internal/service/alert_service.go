package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
)

const syntheticAlertCount = 20

var severityLevels = []domain.SeverityLevel{
	{ID: "info", Name: "Information", Color: "blue"},
	{ID: "advisory", Name: "Advisory", Color: "yellow"},
	{ID: "warning", Name: "Warning", Color: "orange"},
	{ID: "emergency", Name: "Emergency", Color: "red"},
}

// severityRank orders severities from most to least urgent
var severityRank = map[string]int{"emergency": 0, "warning": 1, "advisory": 2, "info": 3}

var alertCategories = []domain.Category{
	{ID: "weather", Name: "Weather", Icon: "cloud"},
	{ID: "traffic", Name: "Traffic", Icon: "car"},
	{ID: "environment", Name: "Environment", Icon: "tree"},
	{ID: "safety", Name: "Public Safety", Icon: "shield"},
	{ID: "infrastructure", Name: "Infrastructure", Icon: "building"},
	{ID: "health", Name: "Public Health", Icon: "medkit"},
	{ID: "events", Name: "Events", Icon: "calendar"},
}

type alertTemplate struct {
	category string
	title    string
	text     string
}

var alertTemplates = []alertTemplate{
	{"weather", "Heavy Rain Expected", "Heavy rainfall expected over the next 24 hours. Possible localized flooding in low-lying areas."},
	{"weather", "High Wind Warning", "Strong wind gusts expected. Secure loose outdoor objects and use caution when driving."},
	{"traffic", "Major Road Closure", "Main Street closed for water main repair. Expect diversions until further notice."},
	{"traffic", "Special Event Traffic", "Heavy traffic expected downtown due to a concert. Consider alternate routes."},
	{"environment", "Air Quality Alert", "Air quality has reached unhealthy levels. Sensitive groups should limit outdoor exposure."},
	{"environment", "Water Conservation Request", "Voluntary water conservation requested due to drought conditions."},
	{"safety", "Gas Leak Warning", "Gas leak reported near Main and 5th. Area closed to traffic."},
	{"safety", "Power Outage Alert", "Power outage affecting the north side. Utility crews are restoring service."},
}

var (
	alertAreas   = []string{"Downtown", "North Side", "Waterfront"}
	alertSources = []string{"City Emergency Management", "Police Department", "Weather Service", "Department of Transportation"}
	alertActions = []string{
		"No action required. For informational purposes only.",
		"Be prepared and stay informed.",
		"Take precautions and follow official guidance.",
		"Take immediate action as directed.",
	}
)

// AlertService keeps city alerts in memory, seeding synthetic ones on first use
type AlertService struct {
	mu     sync.RWMutex
	seed   sync.Once
	alerts []domain.Alert
	rng    RandomSource
	now    func() time.Time
}

// NewAlertService creates an empty alert store
func NewAlertService(rng RandomSource) *AlertService {
	return &AlertService{rng: rng, now: time.Now}
}

func (s *AlertService) ensureSeeded() {
	s.seed.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.alerts) == 0 {
			s.alerts = s.generate()
		}
	})
}

func (s *AlertService) generate() []domain.Alert {
	now := s.now()
	alerts := make([]domain.Alert, 0, syntheticAlertCount)

	for i := 0; i < syntheticAlertCount; i++ {
		tpl := pick(s.rng, alertTemplates)
		active := s.rng.Float64() < 0.7

		var created, expires time.Time
		if active {
			created = now.Add(-time.Duration(randInt(s.rng, 1, 24)) * time.Hour)
			expires = now.Add(time.Duration(randInt(s.rng, 1, 48)) * time.Hour)
		} else {
			created = now.AddDate(0, 0, -randInt(s.rng, 2, 10))
			expires = now.Add(-time.Duration(randInt(s.rng, 1, 24)) * time.Hour)
		}

		alerts = append(alerts, domain.Alert{
			ID:             fmt.Sprintf("alert-%d", i+1),
			Title:          tpl.title,
			Description:    tpl.text,
			CategoryID:     tpl.category,
			SeverityID:     pick(s.rng, severityLevels).ID,
			CreatedAt:      created,
			ExpiresAt:      expires,
			IsActive:       active,
			AffectedAreas:  pick(s.rng, alertAreas),
			Source:         pick(s.rng, alertSources),
			ActionRequired: pick(s.rng, alertActions),
		})
	}
	return alerts
}

// List returns alerts matching the filter, most severe first, then newest first
func (s *AlertService) List(ctx context.Context, filter domain.AlertFilter) []domain.Alert {
	s.ensureSeeded()
	now := s.now()

	s.mu.RLock()
	out := make([]domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if filter.CategoryID != "" && a.CategoryID != filter.CategoryID {
			continue
		}
		if filter.SeverityID != "" && a.SeverityID != filter.SeverityID {
			continue
		}
		if filter.ActiveOnly && !a.ActiveAt(now) {
			continue
		}
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := severityRank[out[i].SeverityID], severityRank[out[j].SeverityID]
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns an alert by id
func (s *AlertService) Get(ctx context.Context, id string) (domain.Alert, error) {
	s.ensureSeeded()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Alert{}, notFoundf("Alert %s not found", id)
}

// Categories lists alert categories
func (s *AlertService) Categories() []domain.Category {
	return alertCategories
}

// SeverityLevels lists alert severities, least urgent first
func (s *AlertService) SeverityLevels() []domain.SeverityLevel {
	return severityLevels
}

// Summary counts active alerts per category and severity
func (s *AlertService) Summary(ctx context.Context) domain.AlertSummary {
	active := s.List(ctx, domain.AlertFilter{ActiveOnly: true})

	summary := domain.AlertSummary{
		TotalActive:    len(active),
		CategoryCounts: map[string]int{},
		SeverityCounts: map[string]int{},
	}
	for _, a := range active {
		summary.CategoryCounts[a.CategoryID]++
		summary.SeverityCounts[a.SeverityID]++
	}
	// List is already sorted most severe first
	if len(active) > 0 {
		top := active[0]
		summary.HighestSeverityAlert = &top
	}
	return summary
}
