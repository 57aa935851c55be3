package service

import (
	"context"
	"math"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const (
	solarHistoryDays = 30
	co2KgPerKWh      = 0.5
	tariffPerKWh     = 0.15
	installCostPerKW = 2500
	// sum of the hourly bell weights from 06:00 to 18:00
	solarCurveWeight = 6.0
)

// SolarSystemSizes are the residential system sizes (kW) with estimates
var SolarSystemSizes = []int{3, 5, 10, 15}

type solarSeason struct {
	name        string
	radiation   float64 // kWh/m²/day
	cloudFactor float64
}

var (
	seasonSpring = solarSeason{"spring", 4.5, 0.7}
	seasonSummer = solarSeason{"summer", 6.0, 0.8}
	seasonAutumn = solarSeason{"autumn", 3.5, 0.6}
	seasonWinter = solarSeason{"winter", 2.0, 0.5}
)

var skyConditions = []struct {
	name   string
	factor float64
}{
	{"sunny", 1.0},
	{"partly_cloudy", 0.8},
	{"cloudy", 0.5},
	{"rainy", 0.3},
}

// daily production range (kWh) per system size before weather
var solarBaseProduction = map[int][2]float64{
	3:  {7, 12},
	5:  {12, 20},
	10: {24, 40},
	15: {36, 60},
}

// seasonFor picks the solar season for a month, mirrored south of the equator
func seasonFor(month time.Month, lat float64) solarSeason {
	if lat < 0 {
		month = (month+5)%12 + 1
	}
	switch {
	case month >= time.March && month <= time.May:
		return seasonSpring
	case month >= time.June && month <= time.August:
		return seasonSummer
	case month >= time.September && month <= time.November:
		return seasonAutumn
	default:
		return seasonWinter
	}
}

// hourWeight is the bell-shaped share of daily output peaking at noon
func hourWeight(hour int) float64 {
	return math.Max(0, 1-math.Abs(float64(hour)-12)/6)
}

// SolarService estimates rooftop solar generation
type SolarService struct {
	rng       RandomSource
	isHoliday HolidayFunc
	now       func() time.Time
}

// NewSolarService creates a solar estimator. Days the predicate marks as holidays
// have higher self-consumption.
func NewSolarService(rng RandomSource, isHoliday HolidayFunc) *SolarService {
	if isHoliday == nil {
		isHoliday = WeekendAsHoliday
	}
	return &SolarService{rng: rng, isHoliday: isHoliday, now: time.Now}
}

// Estimate projects today's generation for every standard system size
func (s *SolarService) Estimate(ctx context.Context, lat, lon float64) domain.SolarEstimate {
	now := s.now()
	season := seasonFor(now.Month(), lat)
	sky := pick(s.rng, skyConditions)
	radiation := season.radiation * season.cloudFactor * sky.factor * uniform(s.rng, 0.9, 1.1)

	systems := make([]domain.SolarSystem, 0, len(SolarSystemSizes))
	for _, size := range SolarSystemSizes {
		efficiency := uniform(s.rng, 0.18, 0.22)
		losses := uniform(s.rng, 0.1, 0.2)

		daily := radiation * float64(size) * efficiency * (1 - losses)
		monthly := daily * 30
		annual := daily * 365
		cost := float64(size * installCostPerKW)
		savingsAnnual := annual * tariffPerKWh

		hourly := make([]domain.SolarHour, 0, 24)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		for hour := 0; hour < 24; hour++ {
			hourly = append(hourly, domain.SolarHour{
				Timestamp:     midnight.Add(time.Duration(hour) * time.Hour),
				ProductionKWh: utils.RoundTo(daily*hourWeight(hour)*uniform(s.rng, 0.9, 1.1)/solarCurveWeight, 2),
			})
		}

		systems = append(systems, domain.SolarSystem{
			SizeKW:                size,
			PanelEfficiency:       utils.RoundTo(efficiency*100, 1),
			DailyProductionKWh:    utils.RoundTo(daily, 2),
			MonthlyProductionKWh:  utils.RoundTo(monthly, 2),
			AnnualProductionKWh:   utils.RoundTo(annual, 2),
			CO2ReductionKgYear:    utils.RoundTo(annual*co2KgPerKWh, 2),
			CostSavingsMonthly:    utils.RoundTo(monthly*tariffPerKWh, 2),
			CostSavingsAnnual:     utils.RoundTo(savingsAnnual, 2),
			EstimatedSystemCost:   cost,
			EstimatedPaybackYears: utils.RoundTo(cost/savingsAnnual, 1),
			HourlyData:            hourly,
		})
	}

	return domain.SolarEstimate{
		Location:          domain.Location{Latitude: lat, Longitude: lon},
		Season:            season.name,
		WeatherConditions: sky.name,
		DailyRadiation:    utils.RoundTo(radiation, 2),
		Systems:           systems,
	}
}

// History returns the last 30 days of production for one system size, oldest first
func (s *SolarService) History(ctx context.Context, sizeKW int, lat, lon float64) (domain.SolarHistory, error) {
	base, ok := solarBaseProduction[sizeKW]
	if !ok {
		return domain.SolarHistory{}, invalidf("Invalid system size. Available sizes: 3, 5, 10, 15 kW")
	}

	now := s.now()
	out := domain.SolarHistory{
		SizeKW:   sizeKW,
		Location: domain.Location{Latitude: lat, Longitude: lon},
		History:  make([]domain.SolarDay, 0, solarHistoryDays),
	}

	for daysAgo := solarHistoryDays; daysAgo > 0; daysAgo-- {
		day := now.AddDate(0, 0, -daysAgo)
		produced := uniform(s.rng, base[0], base[1]) * uniform(s.rng, 0.5, 1.0)

		share := uniform(s.rng, 0.2, 0.4)
		if s.isHoliday(day) {
			share = uniform(s.rng, 0.4, 0.6)
		}
		selfConsumed := produced * share

		entry := domain.SolarDay{
			Date:            day.Format(time.DateOnly),
			ProductionKWh:   utils.RoundTo(produced, 2),
			SelfConsumedKWh: utils.RoundTo(selfConsumed, 2),
			GridExportedKWh: utils.RoundTo(produced-selfConsumed, 2),
		}
		out.History = append(out.History, entry)
		out.TotalProducedKWh += entry.ProductionKWh
		out.TotalSelfConsumedKWh += entry.SelfConsumedKWh
		out.TotalGridExportedKWh += entry.GridExportedKWh
	}

	out.TotalProducedKWh = utils.RoundTo(out.TotalProducedKWh, 2)
	out.TotalSelfConsumedKWh = utils.RoundTo(out.TotalSelfConsumedKWh, 2)
	out.TotalGridExportedKWh = utils.RoundTo(out.TotalGridExportedKWh, 2)
	return out, nil
}
