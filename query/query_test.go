package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterdata-pipeline/models"
)

func date(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func reading(start time.Time, energy float64) models.Reading {
	return models.Reading{IntervalStart: start, IntervalEnd: start.Add(15 * time.Minute), EnergyKWh: energy}
}

func sample() models.Series {
	return models.Series{
		reading(date(2024, 1, 30, 23, 45), 1),
		reading(date(2024, 1, 31, 0, 0), 2),
		reading(date(2024, 2, 1, 0, 0), 3),
		reading(date(2024, 2, 15, 12, 0), 4),
		reading(date(2024, 3, 1, 0, 0), 5),
	}
}

func TestNewFilter(t *testing.T) {
	f, err := NewFilter("2024-01-01", "2024-01-31", "daily")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1, 0, 0), f.StartDate)
	assert.Equal(t, date(2024, 1, 31, 0, 0), f.EndDate)
	assert.Equal(t, models.GranularityDaily, f.Granularity)

	_, err = NewFilter("2024-02-01", "2024-01-01", "")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewFilter("01/02/2024", "2024-01-01", "")
	assert.Error(t, err)

	_, err = NewFilter("2024-01-01", "2024-01-02", "fortnightly")
	assert.Error(t, err)

	f, err = NewFilter("2024-01-01", "2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, models.GranularityNone, f.Granularity)
}

func TestInRangeIncludesWholeEndDay(t *testing.T) {
	got := InRange(sample(), date(2024, 1, 31, 0, 0), date(2024, 2, 1, 0, 0))
	require.Len(t, got, 2)
	assert.Equal(t, 2.0, got[0].EnergyKWh)
	assert.Equal(t, 3.0, got[1].EnergyKWh)
}

func TestSelectEmptyRange(t *testing.T) {
	f, err := NewFilter("2023-01-01", "2023-12-31", "monthly")
	require.NoError(t, err)
	points := Select(sample(), f)
	assert.NotNil(t, points)
	assert.Empty(t, points)

	f.Granularity = models.GranularityNone
	points = Select(sample(), f)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestSelectRawRows(t *testing.T) {
	f, err := NewFilter("2024-02-01", "2024-02-29", "")
	require.NoError(t, err)
	points := Select(sample(), f)
	assert.Equal(t, []models.SeriesPoint{
		{Timestamp: date(2024, 2, 1, 0, 0), EnergyKWh: 3},
		{Timestamp: date(2024, 2, 15, 12, 0), EnergyKWh: 4},
	}, points)
}

func TestResampleMonthly(t *testing.T) {
	points := Resample(sample(), models.GranularityMonthly)
	assert.Equal(t, []models.SeriesPoint{
		{Timestamp: date(2024, 1, 1, 0, 0), EnergyKWh: 3},
		{Timestamp: date(2024, 2, 1, 0, 0), EnergyKWh: 7},
		{Timestamp: date(2024, 3, 1, 0, 0), EnergyKWh: 5},
	}, points)
}

func TestResampleSkipsEmptyBuckets(t *testing.T) {
	points := Resample(sample(), models.GranularityDaily)
	require.Len(t, points, 5)
	assert.Equal(t, date(2024, 2, 15, 0, 0), points[3].Timestamp)
}

func TestResampleHourlyAndQuarterHour(t *testing.T) {
	series := models.Series{
		reading(date(2024, 1, 1, 0, 0), 0.1),
		reading(date(2024, 1, 1, 0, 15), 0.2),
		reading(date(2024, 1, 1, 0, 30), 0.3),
		reading(date(2024, 1, 1, 1, 0), 0.4),
	}
	hourly := Resample(series, models.GranularityHourly)
	require.Len(t, hourly, 2)
	assert.InDelta(t, 0.6, hourly[0].EnergyKWh, 1e-12)
	assert.InDelta(t, 0.4, hourly[1].EnergyKWh, 1e-12)

	assert.Len(t, Resample(series, models.GranularityQuarterHour), 4)
}

func TestBucketStartWeeklyStartsOnMonday(t *testing.T) {
	monday := date(2024, 1, 1, 0, 0)
	for _, d := range []time.Time{
		date(2024, 1, 1, 0, 0),
		date(2024, 1, 3, 13, 30),
		date(2024, 1, 7, 23, 45),
	} {
		assert.Equal(t, monday, BucketStart(d, models.GranularityWeekly), d.String())
	}
	assert.Equal(t, date(2024, 1, 8, 0, 0), BucketStart(date(2024, 1, 8, 0, 15), models.GranularityWeekly))
	assert.Equal(t, date(2024, 1, 1, 13, 15), BucketStart(date(2024, 1, 1, 13, 29), models.GranularityQuarterHour))
}

func TestSummarize(t *testing.T) {
	points := []models.SeriesPoint{
		{Timestamp: date(2024, 1, 1, 0, 0), EnergyKWh: 10},
		{Timestamp: date(2024, 1, 2, 0, 0), EnergyKWh: 20},
		{Timestamp: date(2024, 1, 3, 0, 0), EnergyKWh: 30},
	}
	s := Summarize(points, 50)

	assert.InDelta(t, 20, s.Avg, 1e-9)
	assert.InDelta(t, 10, s.Min, 1e-9)
	assert.InDelta(t, 30, s.Max, 1e-9)
	assert.InDelta(t, 60, s.Total, 1e-9)
	assert.InDelta(t, 20, s.DailyAvg, 1e-9)
	assert.InDelta(t, 20*30.44, s.MonthlyEst, 1e-9)
	assert.InDelta(t, 20*30.44*50, s.MonthlyCost, 1e-6)
	assert.InDelta(t, 20*365.25, s.YearlyEst, 1e-9)
	assert.InDelta(t, 20*365.25*50, s.YearlyCost, 1e-6)

	assert.Equal(t, Statistics{}, Summarize(nil, 50))
}
