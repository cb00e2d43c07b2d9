// Package report renders a weekly result as a spreadsheet.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	loadplan "github.com/goncalonina/Road-to-Power"
)

// Sheet names.
const (
	SheetSummary   = "Summary"
	SheetPlan      = "Plan"
	SheetDailyLoad = "Daily load"
)

const dateLayout = "2006-01-02"

// Workbook builds a workbook with the week summary, next week's plan and the
// daily load series with its trend.
func Workbook(r loadplan.Result, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetPlan, SheetDailyLoad} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, r, now, header); err != nil {
		return nil, fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writePlan(f, r.Plan, header); err != nil {
		return nil, fmt.Errorf("write plan sheet: %w", err)
	}
	if err := writeDaily(f, r, header); err != nil {
		return nil, fmt.Errorf("write daily sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummary(f *excelize.File, r loadplan.Result, now time.Time, header int) error {
	sheet := SheetSummary
	s := r.Summary

	rows := [][]any{
		{"Metric", "Value"},
		{"Activities", s.Activities},
		{"Total hours", s.TotalHours},
		{"Total distance (km)", optional(s.TotalDistanceKm)},
		{"Total TSS", optional(s.TotalLoad)},
		{"Mean NP (W)", optional(s.MeanPower)},
		{"Mean IF", optional(s.IntensityFactor)},
		{"Best 20' (W)", optional(s.Best20MinPower)},
		{"Fatigue flag", r.Fatigued},
		{"Long ride day", r.LongRideDay},
	}
	if !s.WindowStart.IsZero() {
		rows = append(rows,
			[]any{"Window start", s.WindowStart.Format(dateLayout)},
			[]any{"Window end", s.WindowEnd.Format(dateLayout)},
		)
	}
	if p := r.Performance; p != nil {
		rows = append(rows,
			[]any{"Fitness", round1(p.Fitness)},
			[]any{"Fatigue", round1(p.Fatigue)},
			[]any{"Form", round1(p.Form)},
			[]any{"State", string(r.State)},
		)
	}
	for _, w := range r.Warnings {
		rows = append(rows, []any{"Warning", w})
	}
	if !now.IsZero() {
		rows = append(rows, []any{"Generated", now.Format("2006-01-02 15:04")})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "B", 24)
}

func writePlan(f *excelize.File, plan loadplan.Plan, header int) error {
	sheet := SheetPlan
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Day", "Workout"}); err != nil {
		return err
	}
	for i, entry := range plan.Days {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{entry.Day, entry.Workout}); err != nil {
			return err
		}
	}

	row := len(plan.Days) + 3
	for _, note := range plan.Notes {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), note); err != nil {
			return err
		}
		row++
	}

	if err := f.SetCellStyle(sheet, "A1", "B1", header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 14); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 60)
}

func writeDaily(f *excelize.File, r loadplan.Result, header int) error {
	sheet := SheetDailyLoad
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Date", "Load", "Fitness", "Fatigue", "Form"}); err != nil {
		return err
	}
	for i, day := range r.Series {
		row := []any{day.Date.Format(dateLayout), round1(day.Load)}
		if i < len(r.Trend) {
			t := r.Trend[i]
			row = append(row, round1(t.Fitness), round1(t.Fatigue), round1(t.Form))
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", header); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "E", 12)
}

// optional renders an absent value as an empty cell.
func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
