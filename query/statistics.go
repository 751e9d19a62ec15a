package query

import (
	"github.com/montanaflynn/stats"

	"meterdata-pipeline/models"
)

// Average month and year lengths used by the dashboard estimates
const (
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

//Statistics is the summary panel shown next to a selected slice
type Statistics struct {
	Avg         float64 `json:"avg"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Total       float64 `json:"total"`
	DailyAvg    float64 `json:"daily_avg"`
	MonthlyEst  float64 `json:"monthly_est"`
	MonthlyCost float64 `json:"monthly_cost"`
	YearlyEst   float64 `json:"yearly_est"`
	YearlyCost  float64 `json:"yearly_cost"`
}

//Summarize computes the panel statistics over selected points. Every field is zero for an empty selection.
//The daily average divides the total by the number of calendar days the points span.
func Summarize(points []models.SeriesPoint, price float64) Statistics {
	if len(points) == 0 {
		return Statistics{}
	}
	values := make([]float64, len(points))
	first, last := points[0].Timestamp, points[0].Timestamp
	for n, p := range points {
		values[n] = p.EnergyKWh
		if p.Timestamp.Before(first) {
			first = p.Timestamp
		}
		if p.Timestamp.After(last) {
			last = p.Timestamp
		}
	}

	var s Statistics
	s.Avg, _ = stats.Mean(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	s.Total, _ = stats.Sum(values)

	days := int(last.Sub(first).Hours()/24) + 1
	s.DailyAvg = s.Total / float64(days)
	s.MonthlyEst = s.DailyAvg * daysPerMonth
	s.MonthlyCost = s.MonthlyEst * price
	s.YearlyEst = s.DailyAvg * daysPerYear
	s.YearlyCost = s.YearlyEst * price
	return s
}
