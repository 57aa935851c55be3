package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const (
	wasteHistoryDays = 7
	// fraction of bins whose level moves on each read
	wasteDriftRate = 0.3
)

var wasteBinTypes = []string{"general", "recycling", "organic", "paper", "glass"}

var wasteSites = []struct {
	name       string
	dLat, dLon float64
}{
	{"City Park", 0.005, 0.007},
	{"Main Street", 0.002, -0.004},
	{"Shopping Center", -0.006, 0.003},
	{"Residential Area", -0.003, -0.008},
	{"Civic Center", 0.001, 0.001},
	{"Riverside Walk", 0.008, -0.002},
}

var wasteCapacities = []int{100, 200, 300, 500}

// BinStatus maps a fill percentage to its band and display color
func BinStatus(fill float64) (status, color string) {
	switch {
	case fill < 25:
		return domain.BinLow, "green"
	case fill < 75:
		return domain.BinModerate, "yellow"
	default:
		return domain.BinHigh, "red"
	}
}

// WasteService simulates smart waste bins. Each read nudges some fill levels upward,
// standing in for live telemetry.
type WasteService struct {
	mu        sync.Mutex
	inventory *domain.WasteInventory
	rng       RandomSource
	now       func() time.Time

	centerLat float64
	centerLon float64
}

// NewWasteService creates an empty bin store centred on the given point
func NewWasteService(rng RandomSource, centerLat, centerLon float64) *WasteService {
	return &WasteService{rng: rng, now: time.Now, centerLat: centerLat, centerLon: centerLon}
}

// List returns every bin. refresh (or first use) regenerates the bins around lat/lon,
// defaulting to the city centre; otherwise levels drift.
func (s *WasteService) List(ctx context.Context, lat, lon *float64, refresh bool) domain.WasteInventory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if refresh || s.inventory == nil {
		centerLat, centerLon := s.centerLat, s.centerLon
		if lat != nil {
			centerLat = *lat
		}
		if lon != nil {
			centerLon = *lon
		}
		s.inventory = s.generate(centerLat, centerLon)
		return s.copyLocked()
	}

	now := s.now()
	for i := range s.inventory.Bins {
		bin := &s.inventory.Bins[i]
		if s.rng.Float64() >= wasteDriftRate {
			continue
		}
		bin.FillPercentage = utils.RoundTo(utils.Clamp(bin.FillPercentage+uniform(s.rng, -5, 15), 0, 100), 1)
		bin.Status, bin.Color = BinStatus(bin.FillPercentage)
		bin.LastUpdated = now
	}
	return s.copyLocked()
}

// Get returns one bin by id
func (s *WasteService) Get(ctx context.Context, id string) (domain.WasteBin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inventory == nil {
		s.inventory = s.generate(s.centerLat, s.centerLon)
	}
	for _, bin := range s.inventory.Bins {
		if bin.ID == id {
			return bin, nil
		}
	}
	return domain.WasteBin{}, notFoundf("Waste bin %s not found", id)
}

// copyLocked detaches the returned bins from later drift
func (s *WasteService) copyLocked() domain.WasteInventory {
	out := *s.inventory
	out.Bins = make([]domain.WasteBin, len(s.inventory.Bins))
	copy(out.Bins, s.inventory.Bins)
	return out
}

func (s *WasteService) generate(lat, lon float64) *domain.WasteInventory {
	now := s.now()
	var bins []domain.WasteBin

	for _, site := range wasteSites {
		for _, binType := range wasteBinTypes {
			// not every site has every stream
			if s.rng.Float64() < 0.2 {
				continue
			}

			var fill int
			switch binType {
			case "general":
				fill = randInt(s.rng, 50, 90)
			case "recycling", "paper":
				fill = randInt(s.rng, 30, 80)
			default:
				fill = randInt(s.rng, 20, 70)
			}

			next := now.AddDate(0, 0, randInt(s.rng, 2, 5))
			if fill > 75 {
				next = now.AddDate(0, 0, randInt(s.rng, 0, 1))
			}

			history := make([]domain.FillSample, 0, wasteHistoryDays)
			for day := 0; day < wasteHistoryDays; day++ {
				history = append(history, domain.FillSample{
					Timestamp:      now.AddDate(0, 0, -day),
					FillPercentage: float64(max(0, fill-day*randInt(s.rng, 10, 20))),
				})
			}

			status, color := BinStatus(float64(fill))
			bins = append(bins, domain.WasteBin{
				ID:   fmt.Sprintf("bin-%d", len(bins)+1),
				Type: binType,
				Location: domain.Location{
					Name:      site.name,
					Latitude:  lat + site.dLat,
					Longitude: lon + site.dLon,
				},
				CapacityLiters: pick(s.rng, wasteCapacities),
				FillPercentage: float64(fill),
				Status:         status,
				Color:          color,
				LastUpdated:    now,
				NextCollection: next,
				History:        history,
			})
		}
	}

	return &domain.WasteInventory{Count: len(bins), Bins: bins, Generated: now}
}
