package processor

import (
	"fmt"
	"sort"

	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
)

//Resolver removes duplicate interval readings
type Resolver struct {
	policy models.KeepPolicy
	log    logger.Logger
}

func NewResolver(policy models.KeepPolicy, lg logger.Logger) *Resolver {
	return &Resolver{policy: policy, log: lg}
}

func (r *Resolver) Policy() models.KeepPolicy {
	return r.policy
}

// prefer reports whether candidate should replace current under the policy.
// Later ingestion means larger Seq; equal Seq keeps the current reading.
func prefer(policy models.KeepPolicy, candidate, current models.Reading) bool {
	if policy == models.KeepFirst {
		return candidate.Seq < current.Seq
	}
	return candidate.Seq > current.Seq
}

//RemoveFullRowDuplicates collapses readings identical in all five fields.
//The representative of each group is chosen with the same policy as the key pass. The result keeps
//the relative order of the input.
func RemoveFullRowDuplicates(readings []models.Reading, policy models.KeepPolicy) []models.Reading {
	return dedupe(readings, policy, func(r models.Reading) interface{} { return r.RowKey() })
}

//RemoveKeyDuplicates keeps exactly one reading per (meter, sub id, start, end). The energy value
//is never consulted; the survivor is picked by ingestion sequence only.
func RemoveKeyDuplicates(readings []models.Reading, policy models.KeepPolicy) []models.Reading {
	return dedupe(readings, policy, func(r models.Reading) interface{} { return r.Key() })
}

func dedupe(readings []models.Reading, policy models.KeepPolicy, key func(models.Reading) interface{}) []models.Reading {
	winner := make(map[interface{}]int, len(readings))
	for n, reading := range readings {
		k := key(reading)
		current, seen := winner[k]
		if !seen || prefer(policy, reading, readings[current]) {
			winner[k] = n
		}
	}
	out := make([]models.Reading, 0, len(winner))
	for n, reading := range readings {
		if winner[key(reading)] == n {
			out = append(out, reading)
		}
	}
	return out
}

//SortSeries orders readings by interval start. Ties are broken by meter, sub id, end and sequence
//so the output does not depend on map iteration or input order.
func SortSeries(readings []models.Reading) {
	sort.SliceStable(readings, func(a, b int) bool {
		x, y := readings[a], readings[b]
		if !x.IntervalStart.Equal(y.IntervalStart) {
			return x.IntervalStart.Before(y.IntervalStart)
		}
		if x.MeterID != y.MeterID {
			return x.MeterID < y.MeterID
		}
		if x.SubID != y.SubID {
			return x.SubID < y.SubID
		}
		if !x.IntervalEnd.Equal(y.IntervalEnd) {
			return x.IntervalEnd.Before(y.IntervalEnd)
		}
		return x.Seq < y.Seq
	})
}

//Resolve runs the full-row pass and then the key pass, and returns the sorted canonical series.
//When the table lacks a key column the key pass is skipped and reported as a warning.
func (r *Resolver) Resolve(table models.ReadingTable) (models.Series, models.DuplicationStats) {
	stats := models.DuplicationStats{InitialCount: len(table.Readings)}
	r.log.Info(fmt.Sprintf("Duplicate resolution started: %d readings, policy %s", stats.InitialCount, r.policy))

	clean := RemoveFullRowDuplicates(table.Readings, r.policy)
	stats.AfterFullRowCount = len(clean)
	stats.FullRowDuplicates = stats.InitialCount - stats.AfterFullRowCount
	if stats.FullRowDuplicates > 0 {
		r.log.Info(fmt.Sprintf("Full-row duplicates removed: %d", stats.FullRowDuplicates))
	}

	if missing := table.HasColumns(models.KeyColumns()...); len(missing) > 0 {
		stats.KeyColumnsMissing = missing
		r.log.Warn(fmt.Sprintf("Key columns missing, interval-key pass skipped: %v", missing))
	} else {
		clean = RemoveKeyDuplicates(clean, r.policy)
	}
	stats.FinalCount = len(clean)
	stats.KeyDuplicates = stats.AfterFullRowCount - stats.FinalCount
	stats.RemovedTotal = stats.InitialCount - stats.FinalCount
	if stats.InitialCount > 0 {
		stats.RetentionRate = float64(stats.FinalCount) / float64(stats.InitialCount) * 100
	}
	if stats.KeyDuplicates > 0 {
		r.log.Info(fmt.Sprintf("Interval-key duplicates removed: %d (%s)", stats.KeyDuplicates, r.policy))
	} else {
		r.log.Debug("No interval-key duplicates found")
	}

	SortSeries(clean)
	r.log.Info(fmt.Sprintf("Duplicate resolution finished: %d -> %d readings, %d removed, %.1f%% retained",
		stats.InitialCount, stats.FinalCount, stats.RemovedTotal, stats.RetentionRate))
	return models.Series(clean), stats
}
