package processor

import (
	"strings"

	"meterdata-pipeline/models"
	"meterdata-pipeline/utils"
)

//CoercionStats counts the rows dropped while converting text to typed readings
type CoercionStats struct {
	Input            int
	Kept             int
	BadEnergy        int
	BadStart         int
	BadEnd           int
	NonPositiveSpans int
}

func (s CoercionStats) Dropped() int {
	return s.Input - s.Kept
}

//Coerce converts the concatenated normalized rows to readings.
//A row is dropped when any of its energy, start or end values fails to parse, or when the interval
//is empty or reversed. Nothing is repaired or imputed. Seq follows the row order of the input.
func Coerce(rows []models.RawRow) (models.ReadingTable, CoercionStats) {
	stats := CoercionStats{Input: len(rows)}
	readings := make([]models.Reading, 0, len(rows))

	for n, row := range rows {
		energy, errEnergy := utils.ParseDecimal(row.EnergyKWh)
		start, errStart := utils.ParseTimestamp(row.IntervalStart)
		end, errEnd := utils.ParseTimestamp(row.IntervalEnd)
		if errEnergy != nil || errStart != nil || errEnd != nil {
			if errEnergy != nil {
				stats.BadEnergy++
			}
			if errStart != nil {
				stats.BadStart++
			}
			if errEnd != nil {
				stats.BadEnd++
			}
			continue
		}
		if !end.After(start) {
			stats.NonPositiveSpans++
			continue
		}
		readings = append(readings, models.Reading{
			MeterID:       strings.TrimSpace(row.MeterID),
			SubID:         strings.TrimSpace(row.SubID),
			IntervalStart: start,
			IntervalEnd:   end,
			EnergyKWh:     energy,
			Seq:           n,
		})
	}
	stats.Kept = len(readings)
	return models.ReadingTable{Columns: models.CanonicalColumns(), Readings: readings}, stats
}
