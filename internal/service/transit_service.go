package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/paulmach/orb/geo"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const (
	transitRouteCount = 10
	transitSpread     = 0.02
	arrivalsPerStop   = 3

	// DefaultStopRadiusKm is the stop search radius when none is given
	DefaultStopRadiusKm = 1.0
	// MaxStopRadiusKm bounds the stop search radius
	MaxStopRadiusKm = 50.0
)

// GTFS route_type codes
var transitModes = []struct {
	id   int
	name string
}{
	{0, "Tram/Light Rail"},
	{1, "Subway/Metro"},
	{2, "Rail"},
	{3, "Bus"},
	{4, "Ferry"},
}

// mostly on time
var arrivalDelays = []int{0, 0, 0, 1, 2, -1}

const hexDigits = "0123456789ABCDEF"

// TransitService keeps a synthetic public transport network in memory
type TransitService struct {
	mu      sync.RWMutex
	network *domain.TransitNetwork
	rng     RandomSource
	now     func() time.Time

	centerLat float64
	centerLon float64
}

// NewTransitService creates an empty network store centred on the given point
func NewTransitService(rng RandomSource, centerLat, centerLon float64) *TransitService {
	return &TransitService{rng: rng, now: time.Now, centerLat: centerLat, centerLon: centerLon}
}

// Routes returns every route. refresh (or first use) regenerates the network around
// lat/lon, defaulting to the city centre.
func (s *TransitService) Routes(ctx context.Context, lat, lon *float64, refresh bool) domain.TransitNetwork {
	if refresh {
		s.regenerate(lat, lon)
	}
	return *s.current()
}

// Route returns one route by id
func (s *TransitService) Route(ctx context.Context, id string) (domain.TransitRoute, error) {
	for _, route := range s.current().Routes {
		if route.ID == id {
			return route, nil
		}
	}
	return domain.TransitRoute{}, notFoundf("Route %s not found", id)
}

// Stops returns the stops within radiusKm of a point, closest first
func (s *TransitService) Stops(ctx context.Context, lat, lon, radiusKm float64) (domain.NearbyStops, error) {
	if radiusKm <= 0 || radiusKm > MaxStopRadiusKm {
		return domain.NearbyStops{}, invalidf("Radius must be greater than 0 and at most %g km", MaxStopRadiusKm)
	}

	center := domain.Location{Latitude: lat, Longitude: lon}
	var stops []domain.NearbyStop
	for _, route := range s.current().Routes {
		ref := domain.RouteRef{ID: route.ID, Name: route.Name, Type: route.Type, Color: route.Color}
		for _, stop := range route.Stops {
			km := geo.Distance(center.Point(), stop.Location.Point()) / 1000
			if km > radiusKm {
				continue
			}
			stops = append(stops, domain.NearbyStop{
				TransitStop: stop,
				DistanceKm:  utils.RoundTo(km, 2),
				Route:       ref,
			})
		}
	}

	sort.SliceStable(stops, func(i, j int) bool {
		return stops[i].DistanceKm < stops[j].DistanceKm
	})
	if stops == nil {
		stops = []domain.NearbyStop{}
	}

	return domain.NearbyStops{
		Count:    len(stops),
		RadiusKm: radiusKm,
		Center:   center,
		Stops:    stops,
	}, nil
}

// current returns the network, generating it around the city centre on first use.
// The network is replaced wholesale, never mutated, so callers may share it.
func (s *TransitService) current() *domain.TransitNetwork {
	s.mu.RLock()
	network := s.network
	s.mu.RUnlock()
	if network != nil {
		return network
	}
	return s.regenerateIfEmpty()
}

func (s *TransitService) regenerateIfEmpty() *domain.TransitNetwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.network == nil {
		s.network = s.generate(s.centerLat, s.centerLon)
	}
	return s.network
}

func (s *TransitService) regenerate(lat, lon *float64) {
	centerLat, centerLon := s.centerLat, s.centerLon
	if lat != nil {
		centerLat = *lat
	}
	if lon != nil {
		centerLon = *lon
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = s.generate(centerLat, centerLon)
}

func (s *TransitService) generate(lat, lon float64) *domain.TransitNetwork {
	now := s.now()
	routes := make([]domain.TransitRoute, 0, transitRouteCount)

	for i := 1; i <= transitRouteCount; i++ {
		mode := pick(s.rng, transitModes)
		color := s.routeColor()

		route := domain.TransitRoute{
			ID:          fmt.Sprintf("route-%d", i),
			Name:        fmt.Sprintf("Route %d", i),
			ShortName:   fmt.Sprintf("R%d", i),
			Type:        mode.name,
			TypeID:      mode.id,
			Color:       color,
			TextColor:   textColorFor(color),
			Description: fmt.Sprintf("A %s route serving the city center and suburbs", mode.name),
			URL:         fmt.Sprintf("https://example.com/routes/%d", i),
		}

		stopCount := randInt(s.rng, 5, 15)
		route.Stops = make([]domain.TransitStop, 0, stopCount)
		for j := 1; j <= stopCount; j++ {
			arrivals := make([]domain.Arrival, 0, arrivalsPerStop)
			for k := 0; k < arrivalsPerStop; k++ {
				minutes := j*2 + k*10 + randInt(s.rng, 0, 5)
				scheduled := now.Add(time.Duration(minutes) * time.Minute)
				estimated := scheduled.Add(time.Duration(uniform(s.rng, -2, 5) * float64(time.Minute)))
				arrivals = append(arrivals, domain.Arrival{
					Scheduled:    scheduled.Format("15:04"),
					Estimated:    estimated.Format("15:04"),
					DelayMinutes: pick(s.rng, arrivalDelays),
				})
			}

			route.Stops = append(route.Stops, domain.TransitStop{
				ID:   fmt.Sprintf("stop-%d-%d", i, j),
				Name: fmt.Sprintf("Stop %d on Route %d", j, i),
				Location: domain.Location{
					Latitude:  lat + uniform(s.rng, -transitSpread, transitSpread),
					Longitude: lon + uniform(s.rng, -transitSpread, transitSpread),
				},
				NextArrivals: arrivals,
				Accessible:   s.rng.Intn(3) > 0,
				HasShelter:   s.rng.Intn(2) == 0,
			})
		}
		routes = append(routes, route)
	}

	return &domain.TransitNetwork{Count: len(routes), Routes: routes, Generated: now}
}

func (s *TransitService) routeColor() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = hexDigits[s.rng.Intn(len(hexDigits))]
	}
	return string(b)
}

// textColorFor picks white text on dark-red-channel colors, black otherwise
func textColorFor(color string) string {
	red, err := strconv.ParseUint(color[:2], 16, 8)
	if err == nil && red < 128 {
		return "FFFFFF"
	}
	return "000000"
}
