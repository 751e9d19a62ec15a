package repository

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"

	"meterdata-pipeline/config"
	"meterdata-pipeline/models"
	"meterdata-pipeline/utils"
)

//WriteReport writes the validation report as YAML next to the canonical output
func (i *Impl) WriteReport(report models.Report) (string, error) {
	out, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.MkdirAll(i.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	stem := strings.TrimSuffix(i.OutputFile, filepath.Ext(i.OutputFile))
	path := filepath.Join(i.OutputDir, stem+config.GetReportSuffix())
	err = writeAtomically(path, func(f *os.File) error {
		_, err := f.Write(out)
		return err
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

//writeAtomically writes to <path>.tmp and renames it over path once the content is synced
func writeAtomically(path string, write func(f *os.File) error) (err error) {
	tmpPath := path + config.GetTmpExtension()
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// keep the original modification time like a metadata-preserving copy
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

//encodeSeries writes the two-column canonical format: BOM, header, one row per reading
func encodeSeries(w io.Writer, series models.Series) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(bw)
	writer.Comma = config.GetCSVDelimiter()

	if err := writer.Write([]string{models.ColumnIntervalStart, models.ColumnEnergyKWh}); err != nil {
		return err
	}
	for n, r := range series {
		record := []string{r.IntervalStart.Format(config.GetOutputDateLayout()), utils.FormatDecimal(r.EnergyKWh)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", n, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

//decodeSeries reads the canonical format back. Rows that do not parse are counted and skipped.
func decodeSeries(r io.Reader, interval time.Duration) (models.Series, int, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	reader := csv.NewReader(br)
	reader.Comma = config.GetCSVDelimiter()
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return models.Series{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	startCol, energyCol := 0, 1
	for n, name := range header {
		switch strings.TrimSpace(name) {
		case models.ColumnIntervalStart:
			startCol = n
		case models.ColumnEnergyKWh:
			energyCol = n
		}
	}

	series := models.Series{}
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		if len(record) <= startCol || len(record) <= energyCol {
			skipped++
			continue
		}
		start, err := utils.ParseTimestamp(record[startCol])
		if err != nil {
			skipped++
			continue
		}
		energy, err := utils.ParseDecimal(record[energyCol])
		if err != nil {
			skipped++
			continue
		}
		series = append(series, models.Reading{
			IntervalStart: start,
			IntervalEnd:   start.Add(interval),
			EnergyKWh:     energy,
			Seq:           len(series),
		})
	}
	return series, skipped, nil
}
