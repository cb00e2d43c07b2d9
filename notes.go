package loadplan

import (
	"fmt"
	"strings"
	"time"
)

// ReportSubject is the subject line shared by the email and the artifacts.
func ReportSubject(now time.Time) string {
	return fmt.Sprintf("Weekly report - %s", now.Format(dateKeyLayout))
}

// BuildWeeklyNotes renders the result as the plain-text email body.
// Unknown summary fields are left out rather than printed as zero.
func BuildWeeklyNotes(r Result, athlete string, now time.Time) string {
	var b strings.Builder

	if strings.TrimSpace(athlete) == "" {
		athlete = "athlete"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", athlete)
	b.WriteString("Here is the summary of last week:\n")

	s := r.Summary
	fmt.Fprintf(&b, "- Sessions: %d\n", s.Activities)
	fmt.Fprintf(&b, "- Total hours: %.2f h\n", s.TotalHours)
	if s.TotalDistanceKm != nil {
		fmt.Fprintf(&b, "- Total distance: %.1f km\n", *s.TotalDistanceKm)
	}
	if s.TotalLoad != nil {
		fmt.Fprintf(&b, "- Total TSS: %.1f\n", *s.TotalLoad)
	}
	if s.MeanPower != nil {
		fmt.Fprintf(&b, "- Mean NP (approx): %.1f W\n", *s.MeanPower)
	}
	if s.IntensityFactor != nil {
		fmt.Fprintf(&b, "- Mean IF (approx): %.2f\n", *s.IntensityFactor)
	}

	b.WriteString("\nTraining load\n")
	if r.Performance != nil {
		fmt.Fprintf(
			&b,
			"- Fitness %.1f | Fatigue %.1f | Form %+.1f (%s)\n",
			r.Performance.Fitness,
			r.Performance.Fatigue,
			r.Performance.Form,
			r.State,
		)
	} else {
		b.WriteString("- Not enough dated activities to estimate fitness and fatigue.\n")
	}

	b.WriteString("\nNext week's plan:\n")
	for _, day := range r.Plan.Days {
		fmt.Fprintf(&b, "- %s: %s\n", day.Day, day.Workout)
	}

	if len(r.Plan.Notes) > 0 {
		b.WriteByte('\n')
		for _, n := range r.Plan.Notes {
			b.WriteString(n)
			b.WriteByte('\n')
		}
	}

	if !now.IsZero() {
		fmt.Fprintf(&b, "\nGenerated %s\n", now.Format("2006-01-02 15:04"))
	}
	return strings.TrimSpace(b.String())
}
