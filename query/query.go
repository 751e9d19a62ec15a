package query

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"meterdata-pipeline/config"
	"meterdata-pipeline/models"
	"meterdata-pipeline/utils"
)

var ErrInvalidRange = errors.New("end date is before start date")

//Filter holds the query parameters exposed to the presentation layer
type Filter struct {
	StartDate   time.Time
	EndDate     time.Time
	Granularity models.Granularity
}

//NewFilter parses YYYY-MM-DD dates and a granularity name
func NewFilter(start, end, granularity string) (Filter, error) {
	var f Filter
	var err error
	if f.StartDate, err = time.ParseInLocation(config.GetQueryDateLayout(), start, time.UTC); err != nil {
		return f, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	if f.EndDate, err = time.ParseInLocation(config.GetQueryDateLayout(), end, time.UTC); err != nil {
		return f, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if f.EndDate.Before(f.StartDate) {
		return f, ErrInvalidRange
	}
	if f.Granularity, err = models.ParseGranularity(granularity); err != nil {
		return f, err
	}
	return f, nil
}

//InRange returns the readings whose interval starts within [start day 00:00, end day + 1 day)
func InRange(series models.Series, startDate, endDate time.Time) models.Series {
	from := utils.StartOfDay(startDate)
	until := utils.StartOfDay(endDate).AddDate(0, 0, 1)
	out := models.Series{}
	for _, r := range series {
		if !r.IntervalStart.Before(from) && r.IntervalStart.Before(until) {
			out = append(out, r)
		}
	}
	return out
}

//Select applies the filter. With GranularityNone the rows in range are returned as they are,
//otherwise they are summed into buckets. An empty result means there is nothing to show.
func Select(series models.Series, f Filter) []models.SeriesPoint {
	selected := InRange(series, f.StartDate, f.EndDate)
	if f.Granularity == models.GranularityNone {
		points := make([]models.SeriesPoint, len(selected))
		for n, r := range selected {
			points[n] = models.SeriesPoint{Timestamp: r.IntervalStart, EnergyKWh: r.EnergyKWh}
		}
		return points
	}
	return Resample(selected, f.Granularity)
}

//Resample sums energy into buckets keyed by bucket start. Buckets without readings are not emitted.
func Resample(series models.Series, g models.Granularity) []models.SeriesPoint {
	sums := make(map[time.Time]float64)
	for _, r := range series {
		sums[BucketStart(r.IntervalStart, g)] += r.EnergyKWh
	}
	points := make([]models.SeriesPoint, 0, len(sums))
	for ts, energy := range sums {
		points = append(points, models.SeriesPoint{Timestamp: ts, EnergyKWh: energy})
	}
	sort.Slice(points, func(a, b int) bool {
		return points[a].Timestamp.Before(points[b].Timestamp)
	})
	return points
}

//BucketStart returns the start of the bucket t falls into. Weeks start on Monday.
func BucketStart(t time.Time, g models.Granularity) time.Time {
	switch g {
	case models.GranularityQuarterHour:
		return t.Truncate(15 * time.Minute)
	case models.GranularityHourly:
		return t.Truncate(time.Hour)
	case models.GranularityDaily:
		return utils.StartOfDay(t)
	case models.GranularityWeekly:
		day := utils.StartOfDay(t)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case models.GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return t
}
