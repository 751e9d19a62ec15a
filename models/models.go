package models

import (
	"math"
	"time"
)

// Canonical column names, in output order of the normalized table
const (
	ColumnMeterID       = "Gyariszam"
	ColumnSubID         = "Azonosito"
	ColumnIntervalStart = "Kezdo_datum"
	ColumnIntervalEnd   = "Zaro_datum"
	ColumnEnergyKWh     = "Hatasos_ertek_kWh"
)

//CanonicalColumns returns the five fields every accepted input file must provide
func CanonicalColumns() []string {
	return []string{ColumnMeterID, ColumnSubID, ColumnIntervalStart, ColumnIntervalEnd, ColumnEnergyKWh}
}

//KeyColumns returns the fields that make up the deduplication key. The energy value is not part of it.
func KeyColumns() []string {
	return []string{ColumnMeterID, ColumnSubID, ColumnIntervalStart, ColumnIntervalEnd}
}

//RawTable defines one input file as decoded from disk
type RawTable struct {
	Source   string
	Encoding string
	Header   []string
	Rows     [][]string
}

//RawRow defines one line of a normalized table. All fields are still text.
type RawRow struct {
	MeterID       string
	SubID         string
	IntervalStart string
	IntervalEnd   string
	EnergyKWh     string
	Source        string
	Line          int
}

//Reading defines one canonical interval reading covering [IntervalStart, IntervalEnd)
type Reading struct {
	MeterID       string    `json:"meter_id"`
	SubID         string    `json:"sub_id"`
	IntervalStart time.Time `json:"interval_start"`
	IntervalEnd   time.Time `json:"interval_end"`
	EnergyKWh     float64   `json:"energy_kwh"`

	// Seq is the ingestion sequence number. Larger means reported later.
	Seq int `json:"-"`
}

//DedupKey identifies the physical interval a reading belongs to
type DedupKey struct {
	MeterID       string
	SubID         string
	IntervalStart int64
	IntervalEnd   int64
}

//RowKey identifies a reading by all five fields
type RowKey struct {
	DedupKey
	EnergyBits uint64
}

func (r Reading) Key() DedupKey {
	return DedupKey{
		MeterID:       r.MeterID,
		SubID:         r.SubID,
		IntervalStart: r.IntervalStart.UnixNano(),
		IntervalEnd:   r.IntervalEnd.UnixNano(),
	}
}

func (r Reading) RowKey() RowKey {
	return RowKey{DedupKey: r.Key(), EnergyBits: math.Float64bits(r.EnergyKWh)}
}

func (r Reading) Duration() time.Duration {
	return r.IntervalEnd.Sub(r.IntervalStart)
}

//Midpoint returns the instant halfway through the interval
func (r Reading) Midpoint() time.Time {
	return r.IntervalStart.Add(r.Duration() / 2)
}

//Valid reports whether the reading satisfies the canonical invariants
func (r Reading) Valid() bool {
	if r.IntervalStart.IsZero() || r.IntervalEnd.IsZero() {
		return false
	}
	if math.IsNaN(r.EnergyKWh) || math.IsInf(r.EnergyKWh, 0) {
		return false
	}
	return r.IntervalEnd.After(r.IntervalStart)
}

//ReadingTable defines a coerced table together with the canonical columns it carries
type ReadingTable struct {
	Columns  []string
	Readings []Reading
}

//HasColumns reports whether every given column is present in the table
func (t ReadingTable) HasColumns(columns ...string) (missing []string) {
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}
	for _, c := range columns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

//Series defines the deduplicated canonical series, sorted by interval start
type Series []Reading

//Span returns the earliest interval start and the latest interval end
func (s Series) Span() (time.Time, time.Time) {
	var from, to time.Time
	for i, r := range s {
		if i == 0 || r.IntervalStart.Before(from) {
			from = r.IntervalStart
		}
		if i == 0 || r.IntervalEnd.After(to) {
			to = r.IntervalEnd
		}
	}
	return from, to
}

//Energies returns the energy column
func (s Series) Energies() []float64 {
	values := make([]float64, len(s))
	for i, r := range s {
		values[i] = r.EnergyKWh
	}
	return values
}

//SeriesPoint defines one presentation row: a bucket (or interval) start and its energy
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	EnergyKWh float64   `json:"energy_kwh"`
}

//DuplicationStats describes what one resolver run removed
type DuplicationStats struct {
	InitialCount      int      `json:"initial_count"`
	AfterFullRowCount int      `json:"after_full_row_count"`
	FinalCount        int      `json:"final_count"`
	FullRowDuplicates int      `json:"full_row_duplicates"`
	KeyDuplicates     int      `json:"key_duplicates"`
	RemovedTotal      int      `json:"removed_total"`
	RetentionRate     float64  `json:"retention_rate"`
	KeyColumnsMissing []string `json:"key_columns_missing,omitempty"`
}

//IntervalDistribution counts readings by interval length
type IntervalDistribution struct {
	FifteenMinute int `json:"15min"`
	Hourly        int `json:"60min"`
	Daily         int `json:"24hour"`
	Other         int `json:"other"`
}
