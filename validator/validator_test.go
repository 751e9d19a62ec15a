package validator

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
)

func newTestValidator() *Validator {
	base, _ := test.NewNullLogger()
	return New(DefaultOptions(), logger.FromLogrus(base))
}

// quarterHours returns n consecutive 15 minute readings starting at start with the given energy
func quarterHours(start time.Time, n int, energy float64) models.Series {
	s := make(models.Series, n)
	for i := range s {
		from := start.Add(time.Duration(i) * 15 * time.Minute)
		s[i] = models.Reading{MeterID: "123", SubID: "A1", IntervalStart: from, IntervalEnd: from.Add(15 * time.Minute), EnergyKWh: energy, Seq: i}
	}
	return s
}

func result(t *testing.T, report models.Report, check string) models.ValidationResult {
	t.Helper()
	for _, r := range report.Results {
		if r.Check == check {
			return r
		}
	}
	require.Failf(t, "missing check", "no %s result", check)
	return models.ValidationResult{}
}

var january = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestValidateWinterWithinBand(t *testing.T) {
	report := newTestValidator().Validate(quarterHours(january, 96, 0.625))

	assert.Equal(t, 96, report.TotalRecords)
	// The last interval ends at midnight of the next day
	assert.Equal(t, 2, report.TotalDays)
	assert.InDelta(t, 60, report.TotalConsumptionKWh, 1e-9)
	assert.InDelta(t, 2.5, report.AvgHourlyKWh, 1e-9)
	assert.InDelta(t, 60, report.AvgDailyKWh, 1e-9)
	assert.Equal(t, models.SeasonWinter, report.PeriodSeason)
	assert.Equal(t, models.SeasonWinter, report.DominantSeason)
	assert.Equal(t, models.IntervalDistribution{FifteenMinute: 96}, report.Intervals)

	seasonal := result(t, report, CheckSeasonal)
	assert.True(t, seasonal.Valid)
	assert.Equal(t, models.HealthHealthy, report.OverallHealth)

	assert.InDelta(t, 60*30, report.MonthlyEstimateKWh, 1e-9)
	assert.InDelta(t, 60*365, report.YearlyEstimateKWh, 1e-9)
	assert.InDelta(t, 60*365*56.07, report.YearlyCostEstimate, 1e-6)
}

func TestValidateWinterAboveBand(t *testing.T) {
	report := newTestValidator().Validate(quarterHours(january, 96, 1.0))

	seasonal := result(t, report, CheckSeasonal)
	assert.False(t, seasonal.Valid)
	assert.Equal(t, models.HealthWarning, seasonal.Severity)
	assert.Contains(t, seasonal.Message, "above")
	assert.InDelta(t, 96, seasonal.Details["avg_daily"], 1e-9)
	assert.Equal(t, models.HealthWarning, report.OverallHealth)
}

func TestValidateBounds(t *testing.T) {
	v := newTestValidator()
	tests := []struct {
		avgDaily float64
		season   models.Season
		valid    bool
		word     string
	}{
		{60, models.SeasonWinter, true, "within"},
		{80, models.SeasonWinter, true, "within"},
		{15, models.SeasonWinter, true, "within"},
		{80.1, models.SeasonWinter, false, "above"},
		{14.9, models.SeasonWinter, false, "below"},
		{30, models.SeasonSummer, false, "above"},
		{2, models.SeasonSummer, false, "below"},
		{45, models.SeasonAutumn, true, "within"},
	}
	for _, tt := range tests {
		r := v.ValidateBounds(tt.avgDaily, tt.season)
		assert.Equal(t, tt.valid, r.Valid, "%v %s", tt.avgDaily, tt.season)
		assert.Contains(t, r.Message, tt.word)
		assert.Contains(t, r.Message, tt.season.String())
	}
}

func TestValidateEmptySeries(t *testing.T) {
	report := newTestValidator().Validate(models.Series{})
	assert.Equal(t, models.HealthUnknown, report.OverallHealth)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.TotalRecords)
	assert.Len(t, report.SeasonalBreakdown, 4)
}

func TestValidateZeroValues(t *testing.T) {
	tests := []struct {
		name     string
		zeros    int
		total    int
		valid    bool
		severity models.Health
	}{
		{"under five percent", 1, 25, true, models.HealthWarning},
		{"between five and ten percent", 2, 25, false, models.HealthWarning},
		{"over ten percent", 3, 25, false, models.HealthCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := quarterHours(january, tt.total, 0.5)
			for n := 0; n < tt.zeros; n++ {
				series[n].EnergyKWh = 0
			}
			report := newTestValidator().Validate(series)

			zero := result(t, report, CheckZero)
			assert.Equal(t, tt.valid, zero.Valid)
			assert.Equal(t, tt.severity, zero.Severity)
			assert.Equal(t, float64(tt.zeros), zero.Details["zero_values"])
			assert.Equal(t, tt.zeros, report.ZeroValues)
			assert.GreaterOrEqual(t, int(report.OverallHealth), int(tt.severity))
		})
	}
}

func TestValidateNegativeAndExtremeValues(t *testing.T) {
	series := quarterHours(january, 8, 0.5)
	series[0].EnergyKWh = -0.1
	series[1].EnergyKWh = 20 // 80 kWh/h

	report := newTestValidator().Validate(series)
	assert.Equal(t, 1, report.NegativeValues)
	assert.Equal(t, 1, report.ExtremeValues)

	negative := result(t, report, CheckNegative)
	assert.False(t, negative.Valid)
	assert.Equal(t, models.HealthWarning, negative.Severity)
}

func TestValidateIrregularIntervals(t *testing.T) {
	series := quarterHours(january, 4, 0.5)
	series = append(series, models.Reading{
		IntervalStart: january.Add(time.Hour),
		IntervalEnd:   january.Add(3 * time.Hour),
		EnergyKWh:     1,
	})
	report := newTestValidator().Validate(series)

	assert.Equal(t, models.IntervalDistribution{FifteenMinute: 4, Other: 1}, report.Intervals)
	intervals := result(t, report, CheckIntervals)
	assert.False(t, intervals.Valid)
	assert.InDelta(t, 80, intervals.Details["standard_percentage"], 1e-9)
}

func TestAnalyzeIntervals(t *testing.T) {
	mk := func(d time.Duration) models.Reading {
		return models.Reading{IntervalStart: january, IntervalEnd: january.Add(d)}
	}
	dist := AnalyzeIntervals(models.Series{
		mk(15 * time.Minute), mk(16 * time.Minute), mk(time.Hour), mk(58 * time.Minute),
		mk(24 * time.Hour), mk(30 * time.Minute),
	})
	assert.Equal(t, models.IntervalDistribution{FifteenMinute: 2, Hourly: 2, Daily: 1, Other: 1}, dist)
}

func TestSeasonalBreakdownAndDominantSeason(t *testing.T) {
	series := append(quarterHours(january, 4, 1), quarterHours(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 4, 2)...)
	report := newTestValidator().Validate(series)

	require.Len(t, report.SeasonalBreakdown, 4)
	assert.Equal(t, models.SeasonalConsumption{Season: models.SeasonWinter, EnergyKWh: 4}, report.SeasonalBreakdown[0])
	assert.Equal(t, models.SeasonalConsumption{Season: models.SeasonSummer, EnergyKWh: 8}, report.SeasonalBreakdown[2])
	assert.Equal(t, models.SeasonSummer, report.DominantSeason)
}

func TestDominantSeasonTieGoesToFirstSeason(t *testing.T) {
	breakdown := []models.SeasonalConsumption{
		{Season: models.SeasonWinter, EnergyKWh: 0},
		{Season: models.SeasonSpring, EnergyKWh: 5},
		{Season: models.SeasonSummer, EnergyKWh: 0},
		{Season: models.SeasonAutumn, EnergyKWh: 5},
	}
	assert.Equal(t, models.SeasonSpring, dominantSeason(breakdown))
}

func TestPeriodSeasonUsesMidpoint(t *testing.T) {
	// 1 Feb to 30 Apr: midpoint in mid-March
	assert.Equal(t, models.SeasonSpring, periodSeason(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)))
}

func TestOverallHealth(t *testing.T) {
	assert.Equal(t, models.HealthUnknown, OverallHealth(nil))
	assert.Equal(t, models.HealthHealthy, OverallHealth([]models.ValidationResult{{Severity: models.HealthHealthy}}))
	assert.Equal(t, models.HealthCritical, OverallHealth([]models.ValidationResult{
		{Severity: models.HealthWarning}, {Severity: models.HealthCritical}, {Severity: models.HealthHealthy},
	}))
}

func TestOptionsAreImmutable(t *testing.T) {
	opts := DefaultOptions()
	base, _ := test.NewNullLogger()
	v := New(opts, logger.FromLogrus(base))

	opts.SeasonalBounds[models.SeasonWinter] = Bounds{MinDailyKWh: 0, MaxDailyKWh: 1}
	assert.InDelta(t, 80, v.Options().SeasonalBounds[models.SeasonWinter].MaxDailyKWh, 1e-9)

	got := v.Options()
	got.SeasonalBounds[models.SeasonWinter] = Bounds{}
	assert.InDelta(t, 80, v.Options().SeasonalBounds[models.SeasonWinter].MaxDailyKWh, 1e-9)

	defaults := DefaultOptions()
	priced := defaults.WithElectricityPrice(70)
	assert.InDelta(t, 70, priced.ElectricityPrice, 1e-9)
	assert.InDelta(t, 56.07, defaults.ElectricityPrice, 1e-9)
}

func TestValidateCompleteness(t *testing.T) {
	tests := []struct {
		name                               string
		mutate                             func(s models.Series)
		missingStart, missingEnd, missingE float64
	}{
		{"nan energy", func(s models.Series) { s[0].EnergyKWh = math.NaN() }, 0, 0, 1},
		{"zero start", func(s models.Series) { s[1].IntervalStart = time.Time{} }, 1, 0, 0},
		{"zero end and nan energy", func(s models.Series) {
			s[0].IntervalEnd = time.Time{}
			s[1].EnergyKWh = math.NaN()
		}, 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := quarterHours(january, 4, 0.5)
			tt.mutate(series)
			report := newTestValidator().Validate(series)

			completeness := result(t, report, CheckCompleteness)
			assert.False(t, completeness.Valid)
			assert.Equal(t, models.HealthWarning, completeness.Severity)
			assert.Equal(t, tt.missingStart, completeness.Details["missing_start_dates"])
			assert.Equal(t, tt.missingEnd, completeness.Details["missing_end_dates"])
			assert.Equal(t, tt.missingE, completeness.Details["missing_consumption"])
			assert.GreaterOrEqual(t, int(report.OverallHealth), int(models.HealthWarning))
		})
	}
}

func TestValidateCompletenessIgnoresNaNInAverages(t *testing.T) {
	series := quarterHours(january, 2, 1.0)
	series[1].EnergyKWh = math.NaN()
	report := newTestValidator().Validate(series)

	assert.InDelta(t, 96, report.AvgDailyKWh, 1e-9)
	assert.InDelta(t, 1, report.TotalConsumptionKWh, 1e-9)
	assert.Equal(t, "Missing values found: 1", result(t, report, CheckCompleteness).Message)
}

func TestValidateDoesNotModifySeries(t *testing.T) {
	series := quarterHours(january, 8, 0.5)
	before := append(models.Series(nil), series...)
	newTestValidator().Validate(series)
	assert.Equal(t, before, series)
}

func TestSummary(t *testing.T) {
	report := newTestValidator().Validate(quarterHours(january, 96, 1.0))
	text := Summary(report)

	assert.Contains(t, text, "2024-01-15")
	assert.Contains(t, text, "Total: 96.0 kWh")
	assert.Contains(t, text, "[WARNING] Consumption above the winter band")
	assert.Contains(t, text, "**Overall health:** warning")
	assert.True(t, strings.HasPrefix(text, "## Validation report"))

	empty := Summary(newTestValidator().Validate(nil))
	assert.Contains(t, empty, "No readings")
	assert.Contains(t, empty, "unknown")
}
