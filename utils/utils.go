package utils

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"meterdata-pipeline/config"
	"meterdata-pipeline/logger"
)

var ErrEmptyValue = errors.New("empty value")

//ParseTimestamp parses a wall-clock timestamp using the layouts from config.
//Timestamps carry no zone in the exports; they are kept as naive wall-clock values in UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmptyValue
	}
	for _, layout := range config.GetTimestampLayouts() {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			// An explicit offset is dropped; the wall clock is kept as written
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}

//ParseDecimal parses a number written with either a comma or a dot radix.
//Thousands separators are not accepted; such values are rejected rather than repaired.
func ParseDecimal(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrEmptyValue
	}
	value = strings.ReplaceAll(value, ",", ".")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable decimal %q", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite decimal %q", value)
	}
	return f, nil
}

//FormatDecimal renders a value with a dot radix and the shortest exact representation
func FormatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

//StartOfDay truncates t to midnight of its calendar day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

//PrintMemUsage logs the current heap and system memory in MiB
func PrintMemUsage(lg logger.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	lg.Debug(fmt.Sprintf("Alloc = %v MiB, TotalAlloc = %v MiB, Sys = %v MiB, NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC))
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
