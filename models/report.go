package models

import (
	"fmt"
	"time"
)

//Season is one of the four fixed consumption seasons
type Season int

const (
	SeasonWinter Season = iota // Dec, Jan, Feb
	SeasonSpring               // Mar, Apr, May
	SeasonSummer               // Jun, Jul, Aug
	SeasonAutumn               // Sep, Oct, Nov
)

//Seasons returns the seasons in enumeration order. This order breaks ties for the dominant season.
func Seasons() []Season {
	return []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}
}

func (s Season) String() string {
	switch s {
	case SeasonWinter:
		return "winter"
	case SeasonSpring:
		return "spring"
	case SeasonSummer:
		return "summer"
	case SeasonAutumn:
		return "autumn"
	}
	return fmt.Sprintf("season(%d)", int(s))
}

func (s Season) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

//SeasonForMonth maps a calendar month onto its season
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

//Health is the ordinal severity of validation findings: Healthy < Warning < Critical < Unknown
type Health int

const (
	HealthHealthy Health = iota
	HealthWarning
	HealthCritical
	HealthUnknown
)

func (h Health) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthWarning:
		return "warning"
	case HealthCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func (h Health) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

//ValidationResult is the outcome of one quality check
type ValidationResult struct {
	Check    string             `json:"check"`
	Valid    bool               `json:"valid"`
	Severity Health             `json:"severity"`
	Message  string             `json:"message"`
	Details  map[string]float64 `json:"details,omitempty"`
}

//SeasonalConsumption is the energy summed over the readings of one season
type SeasonalConsumption struct {
	Season    Season  `json:"season"`
	EnergyKWh float64 `json:"energy_kwh"`
}

//Report defines the read-only validation summary over a series
type Report struct {
	TotalRecords   int       `json:"total_records"`
	DateRangeStart time.Time `json:"date_range_start"`
	DateRangeEnd   time.Time `json:"date_range_end"`
	TotalDays      int       `json:"total_days"`

	TotalConsumptionKWh float64 `json:"total_consumption_kwh"`
	AvgHourlyKWh        float64 `json:"avg_hourly_kwh"`
	AvgDailyKWh         float64 `json:"avg_daily_kwh"`

	NegativeValues int                  `json:"negative_values"`
	ZeroValues     int                  `json:"zero_values"`
	ExtremeValues  int                  `json:"extreme_values"`
	Intervals      IntervalDistribution `json:"intervals"`

	PeriodSeason      Season                `json:"period_season"`
	DominantSeason    Season                `json:"dominant_season"`
	SeasonalBreakdown []SeasonalConsumption `json:"seasonal_breakdown"`

	Results       []ValidationResult `json:"results"`
	OverallHealth Health             `json:"overall_health"`

	MonthlyEstimateKWh float64 `json:"monthly_estimate_kwh"`
	YearlyEstimateKWh  float64 `json:"yearly_estimate_kwh"`
	YearlyCostEstimate float64 `json:"yearly_cost_estimate"`
}
