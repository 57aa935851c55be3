package service

import (
	"fmt"
	"log"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/smartcity/cityapi/internal/domain"
	"github.com/smartcity/cityapi/pkg/utils"
)

// TrainingSamples is the size of the synthetic training set
const TrainingSamples = 500

var featureNames = []string{"hour", "weekday", "is_holiday", "road_capacity", "baseline_traffic"}

// CongestionEstimator is a linear regression from a FeatureVector to a 0-100 congestion score.
// It is trained once on synthetic data and shared by every score the snapshot builder produces,
// so current, historical and predicted values stay mutually plausible.
type CongestionEstimator struct {
	mu      sync.RWMutex
	rng     RandomSource
	coef    []float64 // intercept followed by one weight per feature
	trained bool
}

// NewCongestionEstimator creates an untrained estimator
func NewCongestionEstimator(rng RandomSource) *CongestionEstimator {
	return &CongestionEstimator{rng: rng}
}

// Fit trains the model. Calling it again on a trained estimator is a no-op.
func (e *CongestionEstimator) Fit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.trained {
		return nil
	}

	cols := len(featureNames) + 1
	x := mat.NewDense(TrainingSamples, cols, nil)
	y := mat.NewVecDense(TrainingSamples, nil)

	for i := 0; i < TrainingSamples; i++ {
		fv := domain.FeatureVector{
			Hour:            randInt(e.rng, 0, 23),
			Weekday:         randInt(e.rng, 0, 6),
			IsHoliday:       e.rng.Intn(2) == 1,
			RoadCapacity:    randInt(e.rng, 1, 5),
			BaselineTraffic: randInt(e.rng, 10, 90),
		}
		x.SetRow(i, append([]float64{1}, features(fv)...))
		y.SetVec(i, e.trainingLabel(fv))
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		return fmt.Errorf("estimator: failed to solve least squares: %w", err)
	}

	e.coef = make([]float64, cols)
	for i := range e.coef {
		e.coef[i] = beta.AtVec(i)
	}
	e.trained = true
	return nil
}

// trainingLabel applies the synthetic congestion rule for one feature vector
func (e *CongestionEstimator) trainingLabel(fv domain.FeatureVector) float64 {
	score := fv.BaselineTraffic

	if fv.Weekday < 5 && isRushHour(fv.Hour) {
		score += randInt(e.rng, 10, 30)
	}
	if fv.Weekday >= 5 {
		score -= 10
	}
	if fv.IsHoliday {
		score -= 15
	}
	score -= 5 * fv.RoadCapacity
	score += randInt(e.rng, -10, 10)

	return utils.ClampScore(float64(score))
}

// Predict scores a feature vector, training first if needed
func (e *CongestionEstimator) Predict(fv domain.FeatureVector) float64 {
	e.mu.RLock()
	trained := e.trained
	e.mu.RUnlock()

	if !trained {
		if err := e.Fit(); err != nil {
			// untrained model scores the baseline
			log.Printf("estimator: %v", err)
			return utils.ClampScore(float64(fv.BaselineTraffic))
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	raw := e.coef[0]
	for i, v := range features(fv) {
		raw += e.coef[i+1] * v
	}
	return utils.ClampScore(raw)
}

// Info reports the fitted coefficients
func (e *CongestionEstimator) Info() domain.ModelInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info := domain.ModelInfo{Trained: e.trained, Weights: map[string]float64{}}
	if !e.trained {
		return info
	}
	info.TrainingSamples = TrainingSamples
	info.Intercept = utils.RoundTo(e.coef[0], 4)
	for i, name := range featureNames {
		info.Weights[name] = utils.RoundTo(e.coef[i+1], 4)
	}
	return info
}

func features(fv domain.FeatureVector) []float64 {
	holiday := 0.0
	if fv.IsHoliday {
		holiday = 1
	}
	return []float64{
		float64(fv.Hour),
		float64(fv.Weekday),
		holiday,
		float64(fv.RoadCapacity),
		float64(fv.BaselineTraffic),
	}
}

// isRushHour covers 7-9am and 4-6pm
func isRushHour(hour int) bool {
	return (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18)
}
