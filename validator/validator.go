package validator

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
)

// Check names used in ValidationResult.Check
const (
	CheckCompleteness = "completeness"
	CheckNegative     = "negative_values"
	CheckZero         = "zero_values"
	CheckIntervals    = "interval_regularity"
	CheckSeasonal     = "seasonal_plausibility"
)

type Validator struct {
	opts Options
	log  logger.Logger
}

func New(opts Options, lg logger.Logger) *Validator {
	opts.SeasonalBounds = opts.boundsCopy()
	return &Validator{opts: opts, log: lg}
}

func (v *Validator) Options() Options {
	opts := v.opts
	opts.SeasonalBounds = opts.boundsCopy()
	return opts
}

type basicStats struct {
	start, end     time.Time
	totalDays      int
	total          float64
	avgHourly      float64
	avgDaily       float64
	negative, zero int
	extreme        int
}

//Validate builds the report for a series or any slice of it. The series is not modified.
func (v *Validator) Validate(series models.Series) models.Report {
	report := models.Report{
		TotalRecords:      len(series),
		OverallHealth:     models.HealthUnknown,
		SeasonalBreakdown: seasonalBreakdown(series),
	}
	report.DominantSeason = dominantSeason(report.SeasonalBreakdown)
	if len(series) == 0 {
		v.log.Warn("Validation skipped: empty series")
		return report
	}

	b := v.basicStatistics(series)
	report.DateRangeStart = b.start
	report.DateRangeEnd = b.end
	report.TotalDays = b.totalDays
	report.TotalConsumptionKWh = b.total
	report.AvgHourlyKWh = b.avgHourly
	report.AvgDailyKWh = b.avgDaily
	report.NegativeValues = b.negative
	report.ZeroValues = b.zero
	report.ExtremeValues = b.extreme
	report.Intervals = AnalyzeIntervals(series)
	report.PeriodSeason = periodSeason(b.start, b.end)

	report.Results = append(report.Results, v.checkCompleteness(series))
	report.Results = append(report.Results, v.checkValues(series, b)...)
	report.Results = append(report.Results, v.checkIntervals(report.Intervals, len(series)))
	report.Results = append(report.Results, v.ValidateBounds(b.avgDaily, report.PeriodSeason))
	report.OverallHealth = OverallHealth(report.Results)

	report.MonthlyEstimateKWh = b.avgDaily * 30
	report.YearlyEstimateKWh = b.avgDaily * 365
	report.YearlyCostEstimate = report.YearlyEstimateKWh * v.opts.ElectricityPrice

	v.log.Info(fmt.Sprintf("Validation finished: %d records, %.1f kWh/day, health %s",
		report.TotalRecords, report.AvgDailyKWh, report.OverallHealth))
	return report
}

func (v *Validator) basicStatistics(series models.Series) basicStats {
	var b basicStats
	b.start, b.end = series.Span()
	b.totalDays = int(b.end.Sub(b.start).Hours()/24) + 1

	energies := make([]float64, 0, len(series))
	rates := make([]float64, 0, len(series))
	for _, r := range series {
		if math.IsNaN(r.EnergyKWh) {
			continue
		}
		energies = append(energies, r.EnergyKWh)
		switch {
		case r.EnergyKWh < 0:
			b.negative++
		case r.EnergyKWh == 0:
			b.zero++
		}
		hours := r.Duration().Hours()
		if hours <= 0 {
			continue
		}
		rate := r.EnergyKWh / hours
		rates = append(rates, rate)
		if rate > v.opts.ExtremeHourlyKWh {
			b.extreme++
		}
	}
	// Sum and Mean only fail on empty input, which leaves the zero value
	b.total, _ = stats.Sum(energies)
	b.avgHourly, _ = stats.Mean(rates)
	b.avgDaily = b.avgHourly * 24
	return b
}

func (v *Validator) checkCompleteness(series models.Series) models.ValidationResult {
	var missingStart, missingEnd, missingEnergy float64
	for _, r := range series {
		if r.IntervalStart.IsZero() {
			missingStart++
		}
		if r.IntervalEnd.IsZero() {
			missingEnd++
		}
		if math.IsNaN(r.EnergyKWh) {
			missingEnergy++
		}
	}
	total := missingStart + missingEnd + missingEnergy
	if total == 0 {
		return models.ValidationResult{
			Check:    CheckCompleteness,
			Valid:    true,
			Severity: models.HealthHealthy,
			Message:  "No missing values",
			Details:  map[string]float64{"missing_count": 0},
		}
	}
	return models.ValidationResult{
		Check:    CheckCompleteness,
		Valid:    false,
		Severity: models.HealthWarning,
		Message:  fmt.Sprintf("Missing values found: %.0f", total),
		Details: map[string]float64{
			"missing_start_dates": missingStart,
			"missing_end_dates":   missingEnd,
			"missing_consumption": missingEnergy,
		},
	}
}

func (v *Validator) checkValues(series models.Series, b basicStats) []models.ValidationResult {
	negative := models.ValidationResult{
		Check:    CheckNegative,
		Valid:    true,
		Severity: models.HealthHealthy,
		Message:  "No negative consumption values",
		Details:  map[string]float64{"negative_values": 0},
	}
	if b.negative > 0 {
		negative.Valid = false
		negative.Severity = models.HealthWarning
		negative.Message = fmt.Sprintf("Negative consumption values: %d", b.negative)
		negative.Details["negative_values"] = float64(b.negative)
	}

	zero := models.ValidationResult{
		Check:    CheckZero,
		Valid:    true,
		Severity: models.HealthHealthy,
		Message:  "No zero consumption values",
		Details:  map[string]float64{"zero_values": 0, "zero_percentage": 0},
	}
	if b.zero > 0 {
		pct := float64(b.zero) / float64(len(series)) * 100
		zero.Valid = pct < v.opts.ZeroValidPercent
		zero.Severity = models.HealthWarning
		if pct > v.opts.ZeroCriticalPercent {
			zero.Severity = models.HealthCritical
		}
		zero.Message = fmt.Sprintf("Zero consumption values: %d (%.1f%%)", b.zero, pct)
		zero.Details["zero_values"] = float64(b.zero)
		zero.Details["zero_percentage"] = pct
	}
	return []models.ValidationResult{negative, zero}
}

func (v *Validator) checkIntervals(dist models.IntervalDistribution, n int) models.ValidationResult {
	standard := float64(dist.FifteenMinute + dist.Hourly)
	pct := standard / float64(n) * 100
	result := models.ValidationResult{
		Check:    CheckIntervals,
		Valid:    true,
		Severity: models.HealthHealthy,
		Message:  fmt.Sprintf("Intervals regular (%.1f%% standard)", pct),
		Details: map[string]float64{
			"interval_15min":      float64(dist.FifteenMinute),
			"interval_60min":      float64(dist.Hourly),
			"standard_percentage": pct,
		},
	}
	if pct < v.opts.StandardIntervalPercent {
		result.Valid = false
		result.Severity = models.HealthWarning
		result.Message = fmt.Sprintf("Unusual intervals (%.1f%% standard)", pct)
	}
	return result
}

//ValidateBounds checks an average daily consumption against the band of the given season.
//Both ends of the band are inclusive.
func (v *Validator) ValidateBounds(avgDaily float64, season models.Season) models.ValidationResult {
	bounds := v.opts.SeasonalBounds[season]
	result := models.ValidationResult{
		Check:    CheckSeasonal,
		Valid:    true,
		Severity: models.HealthHealthy,
		Message:  fmt.Sprintf("Consumption within the %s band", season),
		Details: map[string]float64{
			"avg_daily":    avgDaily,
			"expected_min": bounds.MinDailyKWh,
			"expected_max": bounds.MaxDailyKWh,
		},
	}
	switch {
	case avgDaily < bounds.MinDailyKWh:
		result.Valid = false
		result.Severity = models.HealthWarning
		result.Message = fmt.Sprintf("Consumption below the %s band", season)
	case avgDaily > bounds.MaxDailyKWh:
		result.Valid = false
		result.Severity = models.HealthWarning
		result.Message = fmt.Sprintf("Consumption above the %s band", season)
	}
	return result
}

//OverallHealth returns the worst severity among the results, or Unknown when there are none
func OverallHealth(results []models.ValidationResult) models.Health {
	if len(results) == 0 {
		return models.HealthUnknown
	}
	health := models.HealthHealthy
	for _, r := range results {
		if r.Severity > health && r.Severity != models.HealthUnknown {
			health = r.Severity
		}
	}
	return health
}

//AnalyzeIntervals counts readings by interval length: 15 minutes (±1), 60 minutes (±5),
//24 hours (1400-1500 minutes), other
func AnalyzeIntervals(series models.Series) models.IntervalDistribution {
	var dist models.IntervalDistribution
	for _, r := range series {
		minutes := r.Duration().Minutes()
		switch {
		case minutes >= 14 && minutes <= 16:
			dist.FifteenMinute++
		case minutes >= 55 && minutes <= 65:
			dist.Hourly++
		case minutes >= 1400 && minutes <= 1500:
			dist.Daily++
		default:
			dist.Other++
		}
	}
	return dist
}

// periodSeason takes the season of the midpoint between the first start and the last end
func periodSeason(start, end time.Time) models.Season {
	middle := start.Add(end.Sub(start) / 2)
	return models.SeasonForMonth(middle.Month())
}

func seasonalBreakdown(series models.Series) []models.SeasonalConsumption {
	totals := make(map[models.Season]float64, 4)
	for _, r := range series {
		if math.IsNaN(r.EnergyKWh) {
			continue
		}
		totals[models.SeasonForMonth(r.Midpoint().Month())] += r.EnergyKWh
	}
	breakdown := make([]models.SeasonalConsumption, 0, 4)
	for _, season := range models.Seasons() {
		breakdown = append(breakdown, models.SeasonalConsumption{Season: season, EnergyKWh: totals[season]})
	}
	return breakdown
}

// dominantSeason returns the season with the largest total. On equal totals the season listed
// first in models.Seasons() wins.
func dominantSeason(breakdown []models.SeasonalConsumption) models.Season {
	dominant := models.SeasonWinter
	best := math.Inf(-1)
	for _, s := range breakdown {
		if s.EnergyKWh > best {
			best = s.EnergyKWh
			dominant = s.Season
		}
	}
	return dominant
}
