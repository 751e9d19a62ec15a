package validator

import (
	"fmt"
	"strings"

	"meterdata-pipeline/models"
)

//Summary renders the report as markdown text. The same text is logged after a run and embedded in exported reports.
func Summary(report models.Report) string {
	var sb strings.Builder

	sb.WriteString("## Validation report\n\n")
	if report.TotalRecords == 0 {
		sb.WriteString("No readings in the selected period.\n\n")
		fmt.Fprintf(&sb, "**Overall health:** %s\n", report.OverallHealth)
		return sb.String()
	}

	fmt.Fprintf(&sb, "- Period: %s → %s (%d days)\n",
		report.DateRangeStart.Format("2006-01-02"), report.DateRangeEnd.Format("2006-01-02"), report.TotalDays)
	fmt.Fprintf(&sb, "- Records: %d\n\n", report.TotalRecords)

	sb.WriteString("### Consumption\n\n")
	fmt.Fprintf(&sb, "- Total: %.1f kWh\n", report.TotalConsumptionKWh)
	fmt.Fprintf(&sb, "- Daily average: %.1f kWh/day\n", report.AvgDailyKWh)
	fmt.Fprintf(&sb, "- Hourly average: %.3f kWh/h\n\n", report.AvgHourlyKWh)

	fmt.Fprintf(&sb, "### Seasons (dominant: %s)\n\n", report.DominantSeason)
	for _, s := range report.SeasonalBreakdown {
		if s.EnergyKWh != 0 {
			fmt.Fprintf(&sb, "- %s: %.1f kWh\n", s.Season, s.EnergyKWh)
		}
	}
	sb.WriteString("\n### Data quality\n\n")
	fmt.Fprintf(&sb, "- Negative values: %d\n", report.NegativeValues)
	fmt.Fprintf(&sb, "- Zero values: %d\n", report.ZeroValues)
	fmt.Fprintf(&sb, "- Extreme values: %d\n", report.ExtremeValues)
	fmt.Fprintf(&sb, "- Intervals: %d × 15 min, %d × 60 min, %d × 24 h, %d other\n\n",
		report.Intervals.FifteenMinute, report.Intervals.Hourly, report.Intervals.Daily, report.Intervals.Other)

	sb.WriteString("### Checks\n\n")
	for _, r := range report.Results {
		mark := "OK"
		if !r.Valid {
			mark = strings.ToUpper(r.Severity.String())
		}
		fmt.Fprintf(&sb, "- [%s] %s\n", mark, r.Message)
	}
	fmt.Fprintf(&sb, "\n**Overall health:** %s\n\n", report.OverallHealth)

	sb.WriteString("### Estimates\n\n")
	fmt.Fprintf(&sb, "- Monthly: %.0f kWh\n", report.MonthlyEstimateKWh)
	fmt.Fprintf(&sb, "- Yearly: %.0f kWh\n", report.YearlyEstimateKWh)
	fmt.Fprintf(&sb, "- Yearly cost: %.0f Ft\n", report.YearlyCostEstimate)
	return sb.String()
}
