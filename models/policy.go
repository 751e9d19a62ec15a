package models

import (
	"fmt"
	"strings"
)

//KeepPolicy selects which reading survives a deduplication key collision
type KeepPolicy int

const (
	// KeepLast retains the reading reported last. A re-reported interval supersedes the earlier value.
	KeepLast KeepPolicy = iota
	// KeepFirst retains the reading reported first.
	KeepFirst
)

func (p KeepPolicy) String() string {
	switch p {
	case KeepFirst:
		return "keep-first"
	default:
		return "keep-last"
	}
}

//ParseKeepPolicy accepts "last", "keep-last", "first" and "keep-first" (case-insensitive)
func ParseKeepPolicy(s string) (KeepPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", "keep-last":
		return KeepLast, nil
	case "first", "keep-first":
		return KeepFirst, nil
	}
	return KeepLast, fmt.Errorf("unknown keep policy %q", s)
}

//Granularity is the bucket size used when re-sampling a series for presentation
type Granularity int

const (
	GranularityNone Granularity = iota
	GranularityQuarterHour
	GranularityHourly
	GranularityDaily
	GranularityWeekly
	GranularityMonthly
)

var granularityNames = map[Granularity]string{
	GranularityNone:        "none",
	GranularityQuarterHour: "15min",
	GranularityHourly:      "hourly",
	GranularityDaily:       "daily",
	GranularityWeekly:      "weekly",
	GranularityMonthly:     "monthly",
}

func (g Granularity) String() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

//ParseGranularity maps a query parameter onto a Granularity. An empty value means no aggregation.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "raw":
		return GranularityNone, nil
	case "15min", "15-minute", "quarter-hour":
		return GranularityQuarterHour, nil
	case "hourly", "hour":
		return GranularityHourly, nil
	case "daily", "day":
		return GranularityDaily, nil
	case "weekly", "week":
		return GranularityWeekly, nil
	case "monthly", "month":
		return GranularityMonthly, nil
	}
	return GranularityNone, fmt.Errorf("unknown granularity %q", s)
}
