package processor

import (
	"fmt"
	"sort"
	"strings"

	"meterdata-pipeline/models"
)

// columnAliases maps cleaned header variants onto canonical columns.
// Keys are lower-case, trimmed and have underscores replaced by spaces.
var columnAliases = map[string]string{
	"gyáriszám":           models.ColumnMeterID,
	"gyariszam":           models.ColumnMeterID,
	"azonosító":           models.ColumnSubID,
	"azonosito":           models.ColumnSubID,
	"kezdő dátum":         models.ColumnIntervalStart,
	"kezdo dátum":         models.ColumnIntervalStart,
	"kezdo datum":         models.ColumnIntervalStart,
	"záró dátum":          models.ColumnIntervalEnd,
	"zaro dátum":          models.ColumnIntervalEnd,
	"zaro datum":          models.ColumnIntervalEnd,
	"hatásos érték [kwh]": models.ColumnEnergyKWh,
	"hatasos ertek [kwh]": models.ColumnEnergyKWh,
	"hatasos ertek kwh":   models.ColumnEnergyKWh,
}

//MissingColumnsError is returned when a file does not provide every canonical column
type MissingColumnsError struct {
	File     string
	Found    []string
	Required []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("'%s' skipped: missing columns. Required: %v, found: %v", e.File, e.Required, e.Found)
}

//Missing returns the required columns that were not found
func (e *MissingColumnsError) Missing() []string {
	found := make(map[string]bool, len(e.Found))
	for _, c := range e.Found {
		found[c] = true
	}
	var missing []string
	for _, c := range e.Required {
		if !found[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

func cleanHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", " ")
}

//MatchColumns returns, for each canonical column, the index of the header that provides it.
//The first matching header wins when several aliases of the same column are present.
func MatchColumns(header []string) map[string]int {
	matched := make(map[string]int)
	for n, name := range header {
		canonical, ok := columnAliases[cleanHeader(name)]
		if !ok {
			continue
		}
		if _, seen := matched[canonical]; !seen {
			matched[canonical] = n
		}
	}
	return matched
}

//NormalizeTable restricts a raw table to the canonical columns in canonical order.
//The table is accepted only when all five columns are present; the input is not modified.
func NormalizeTable(table models.RawTable) ([]models.RawRow, error) {
	matched := MatchColumns(table.Header)
	required := models.CanonicalColumns()
	if len(matched) < len(required) {
		found := make([]string, 0, len(matched))
		for c := range matched {
			found = append(found, c)
		}
		sort.Strings(found)
		return nil, &MissingColumnsError{File: table.Source, Found: found, Required: required}
	}

	field := func(record []string, column string) string {
		n := matched[column]
		if n < len(record) {
			return record[n]
		}
		return ""
	}
	rows := make([]models.RawRow, 0, len(table.Rows))
	for n, record := range table.Rows {
		rows = append(rows, models.RawRow{
			MeterID:       field(record, models.ColumnMeterID),
			SubID:         field(record, models.ColumnSubID),
			IntervalStart: field(record, models.ColumnIntervalStart),
			IntervalEnd:   field(record, models.ColumnIntervalEnd),
			EnergyKWh:     field(record, models.ColumnEnergyKWh),
			Source:        table.Source,
			Line:          n + 2,
		})
	}
	return rows, nil
}
