package fitimport

import (
	"math"
	"sort"
	"time"

	"github.com/tormoder/fit"
)

const (
	npWindowSeconds  = 30
	maxFillGapSecond = 30
	best20Seconds    = 20 * 60
)

// powerSeries resamples record power to 1 Hz, forward-filling short gaps so
// rolling windows measure seconds rather than samples.
func powerSeries(records []*fit.RecordMsg) []float64 {
	type sample struct {
		ts    time.Time
		power float64
	}
	samples := make([]sample, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.Power == math.MaxUint16 {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		samples = append(samples, sample{ts: ts, power: float64(rec.Power)})
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].ts.Before(samples[j].ts)
	})

	out := make([]float64, 0, len(samples))
	for i, s := range samples {
		if i > 0 {
			gap := int(math.Round(s.ts.Sub(samples[i-1].ts).Seconds())) - 1
			if gap > 0 && gap <= maxFillGapSecond {
				for j := 0; j < gap; j++ {
					out = append(out, samples[i-1].power)
				}
			}
		}
		out = append(out, s.power)
	}
	return out
}

// normalizedPower is the fourth-power mean of the 30 s rolling average.
func normalizedPower(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}
	if len(power) < npWindowSeconds {
		return average(power)
	}

	sum := 0.0
	for i := 0; i < npWindowSeconds; i++ {
		sum += power[i]
	}
	fourth := 0.0
	count := 0
	for i := npWindowSeconds - 1; i < len(power); i++ {
		if i >= npWindowSeconds {
			sum += power[i] - power[i-npWindowSeconds]
		}
		rolling := sum / npWindowSeconds
		fourth += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(fourth/float64(count), 0.25)
}

// bestRollingPower returns the highest mean over any window of the given length.
// Shorter rides fall back to their overall mean.
func bestRollingPower(power []float64, seconds int) float64 {
	if len(power) == 0 || seconds <= 0 {
		return 0
	}
	if len(power) < seconds {
		return average(power)
	}

	sum := 0.0
	for i := 0; i < seconds; i++ {
		sum += power[i]
	}
	best := sum / float64(seconds)
	for i := seconds; i < len(power); i++ {
		sum += power[i] - power[i-seconds]
		if current := sum / float64(seconds); current > best {
			best = current
		}
	}
	return best
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func safePositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
