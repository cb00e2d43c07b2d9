package loadplan

import (
	"fmt"
	"strings"
)

// FatigueLoadThreshold is the weekly load above which the plan is lightened.
const FatigueLoadThreshold = 700.0

// LongRideDay selects which weekend day carries the long session.
type LongRideDay int

const (
	LongRideSunday LongRideDay = iota
	LongRideSaturday
)

// DefaultLongRideDay applies when no preference is configured.
const DefaultLongRideDay = LongRideSunday

func (d LongRideDay) String() string {
	if d == LongRideSaturday {
		return "Saturday"
	}
	return "Sunday"
}

// ParseLongRideDay accepts English and Portuguese day names.
func ParseLongRideDay(s string) (LongRideDay, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "saturday", "sat", "sábado", "sabado":
		return LongRideSaturday, true
	case "sunday", "sun", "domingo":
		return LongRideSunday, true
	default:
		return DefaultLongRideDay, false
	}
}

// PlanEntry is one day of the prescription.
type PlanEntry struct {
	Day     string `json:"day"`
	Workout string `json:"workout"`
}

// Plan is the prescribed week. The array length pins it to seven days.
type Plan struct {
	Days  [7]PlanEntry `json:"days"`
	Notes []string     `json:"notes"`
}

// PlannerInput is everything Prescribe depends on.
type PlannerInput struct {
	Fatigued       bool
	LongRide       LongRideDay
	Best20MinPower *float64
}

// FatigueFlag is true only for a known weekly load strictly above the threshold.
func FatigueFlag(totalLoad *float64) bool {
	return totalLoad != nil && *totalLoad > FatigueLoadThreshold
}

var weekDays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const (
	workoutRecovery      = "Rest / active recovery (optional 30-45' easy spin)"
	workoutTechnique     = "Trainer 60-90' - technique, cadence and mobility; include 3x6' seated low-cadence strength"
	workoutShortRecovery = "Trainer 60' - active recovery + mobility"
	workoutLongRide      = "4h - long ride (3x30' zone 3 blocks, remainder zone 2)"
	workoutEasyWeekend   = "Rest / optional easy ride 1.5-2h"

	noteFatigued = "Previous week carried a high load -> reduce the prescribed intensities by ~10-20% and prioritise sleep and nutrition."
	noteGeneric  = "Plan based on last week's load. Adjust if you feel accumulated fatigue."
)

// qualityDays holds the Tuesday/Thursday sessions for each fatigue branch.
var qualityDays = map[bool][2]string{
	false: {
		"2h - intervals: 4x12' zone 3-4 with 8' recovery (endurance/threshold focus)",
		"2h - 6x5' zone 4 with 5' recovery",
	},
	true: {
		"2h - zone 2 aerobic endurance at -10% intensity (lighter session)",
		"2h - easy spin/tempo zone 2 with 2 short zone 3 blocks",
	},
}

// weekendPairs holds the Saturday/Sunday sessions for each preference.
var weekendPairs = map[LongRideDay][2]string{
	LongRideSaturday: {workoutLongRide, workoutEasyWeekend},
	LongRideSunday:   {workoutEasyWeekend, workoutLongRide},
}

// Prescribe builds next week's plan. It is a pure function of its input.
func Prescribe(in PlannerInput) Plan {
	quality := qualityDays[in.Fatigued]
	weekend, ok := weekendPairs[in.LongRide]
	if !ok {
		weekend = weekendPairs[DefaultLongRideDay]
	}

	workouts := [7]string{
		workoutRecovery,
		quality[0],
		workoutTechnique,
		quality[1],
		workoutShortRecovery,
		weekend[0],
		weekend[1],
	}

	var plan Plan
	for i := range plan.Days {
		plan.Days[i] = PlanEntry{Day: weekDays[i], Workout: workouts[i]}
	}

	if in.Fatigued {
		plan.Notes = append(plan.Notes, noteFatigued)
	} else {
		plan.Notes = append(plan.Notes, noteGeneric)
	}
	if in.Best20MinPower != nil && *in.Best20MinPower > 0 {
		plan.Notes = append(plan.Notes, fmt.Sprintf(
			"Latest best 20': %.1f W - use it as the reference for threshold zones.",
			*in.Best20MinPower,
		))
	}
	return plan
}
