package service

import (
	"iter"
	"time"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

const (
	historyHours    = 24
	predictionHours = 12
)

// SeriesSynthesizer produces the trailing history and forward prediction of a road
type SeriesSynthesizer struct {
	estimator *CongestionEstimator
	rng       RandomSource
	isHoliday HolidayFunc
}

// NewSeriesSynthesizer creates a synthesizer sharing the given estimator
func NewSeriesSynthesizer(estimator *CongestionEstimator, rng RandomSource, isHoliday HolidayFunc) *SeriesSynthesizer {
	if isHoliday == nil {
		isHoliday = WeekendAsHoliday
	}
	return &SeriesSynthesizer{estimator: estimator, rng: rng, isHoliday: isHoliday}
}

// History yields one point per trailing hour, oldest first (now-24h .. now-1h).
// Every range over the sequence draws fresh noise.
func (s *SeriesSynthesizer) History(now time.Time, baseline, capacity int) iter.Seq[domain.SeriesPoint] {
	return func(yield func(domain.SeriesPoint) bool) {
		for i := 0; i < historyHours; i++ {
			ts := now.Add(-time.Duration(historyHours-i) * time.Hour)
			weekend := domain.MondayWeekday(ts) >= 5

			score := baseline
			if weekend {
				score -= 20
			}
			if isRushHour(ts.Hour()) && !weekend {
				score += randInt(s.rng, 15, 35)
			}
			score -= 5 * capacity
			score += randInt(s.rng, -10, 10)

			if !yield(point(ts, float64(score))) {
				return
			}
		}
	}
}

// Prediction yields one estimator-scored point per forward hour (now+1h .. now+12h).
// weekday is the Monday-first weekday at now; it advances with each calendar day crossed.
func (s *SeriesSynthesizer) Prediction(now time.Time, baseline, capacity, weekday int) iter.Seq[domain.SeriesPoint] {
	return func(yield func(domain.SeriesPoint) bool) {
		for i := 1; i <= predictionHours; i++ {
			ts := now.Add(time.Duration(i) * time.Hour)

			score := s.estimator.Predict(domain.FeatureVector{
				Hour:            ts.Hour(),
				Weekday:         (weekday + daysBetween(now, ts)) % 7,
				IsHoliday:       s.isHoliday(ts),
				RoadCapacity:    capacity,
				BaselineTraffic: baseline,
			})

			if !yield(point(ts, score)) {
				return
			}
		}
	}
}

func point(ts time.Time, score float64) domain.SeriesPoint {
	score = utils.RoundTo(utils.ClampScore(score), 1)
	return domain.SeriesPoint{
		Timestamp:       ts,
		CongestionScore: score,
		CongestionLevel: domain.LevelFor(score),
	}
}

// daysBetween counts calendar days from a to b in a's location
func daysBetween(a, b time.Time) int {
	b = b.In(a.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
