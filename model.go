package loadplan

import "time"

// Smoothing spans, in days, of the fitness (chronic) and fatigue (acute) averages.
const (
	FitnessSpan = 42
	FatigueSpan = 7
)

// DefaultHistoryDays is how much history an export fetches. The fitness
// average needs several spans of data before its seed stops dominating.
const DefaultHistoryDays = 120

// Form boundaries used by Classify.
const (
	FreshFormFloor    = -10.0
	BalancedFormFloor = -25.0
)

var (
	fitnessAlpha = 2.0 / (FitnessSpan + 1.0)
	fatigueAlpha = 2.0 / (FatigueSpan + 1.0)
)

// PerformanceState is the fitness/fatigue/form triple for one day.
type PerformanceState struct {
	Date    time.Time `json:"date"`
	Fitness float64   `json:"fitness"`
	Fatigue float64   `json:"fatigue"`
	Form    float64   `json:"form"`
}

// TrainingState is the form category reported to the athlete.
type TrainingState string

const (
	StateUnknown  TrainingState = ""
	StateFresh    TrainingState = "fresh/positive trend"
	StateBalanced TrainingState = "balanced"
	StateFatigued TrainingState = "accumulated fatigue"
)

// Trend folds both exponential averages over the whole series and returns
// one state per day. Both averages are seeded with the first day's load.
func Trend(series DailySeries) []PerformanceState {
	if len(series) == 0 {
		return nil
	}

	out := make([]PerformanceState, 0, len(series))
	fitness := series[0].Load
	fatigue := series[0].Load
	for i, day := range series {
		if i > 0 {
			fitness = fitnessAlpha*day.Load + (1-fitnessAlpha)*fitness
			fatigue = fatigueAlpha*day.Load + (1-fatigueAlpha)*fatigue
		}
		out = append(out, PerformanceState{
			Date:    day.Date,
			Fitness: fitness,
			Fatigue: fatigue,
			Form:    fitness - fatigue,
		})
	}
	return out
}

// ComputePerformance returns the state of the last day in the series.
// ok is false when the series is empty; callers must treat that as
// insufficient data.
func ComputePerformance(series DailySeries) (PerformanceState, bool) {
	trend := Trend(series)
	if len(trend) == 0 {
		return PerformanceState{}, false
	}
	return trend[len(trend)-1], true
}

// Classify maps form to a training state. A form sitting exactly on a
// boundary falls into the less fatigued bucket: -10 is fresh, -25 balanced.
func Classify(form float64) TrainingState {
	switch {
	case form >= FreshFormFloor:
		return StateFresh
	case form >= BalancedFormFloor:
		return StateBalanced
	default:
		return StateFatigued
	}
}
