package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"meterdata-pipeline/config"
	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
)

// ErrUnreadable is returned when no trial encoding yields an acceptable table
var ErrUnreadable = errors.New("file could not be read with any supported encoding")

type Repository interface {
	ListInputFiles() ([]string, error)
	ReadTable(path string) (models.RawTable, error)
	WriteSeries(series models.Series) (string, error)
	ReadSeries() (models.Series, error)
	WriteReport(report models.Report) (string, error)
	OutputPath() string
}

type Impl struct {
	InputDir        string
	OutputDir       string
	OutputFile      string
	BackupDir       string
	DefaultInterval time.Duration

	// Now is the clock used to stamp backup file names
	Now func() time.Time
	Log logger.Logger
}

var NewRepository = func(configuration config.Configuration, lg logger.Logger) Repository {
	return &Impl{
		InputDir:        configuration.INPUT_DIR,
		OutputDir:       configuration.OUTPUT_DIR,
		OutputFile:      configuration.OUTPUT_FILE,
		BackupDir:       configuration.BACKUP_DIR,
		DefaultInterval: time.Duration(configuration.DEFAULT_INTERVAL_MINUTES) * time.Minute,
		Now:             time.Now,
		Log:             lg,
	}
}

func (i *Impl) OutputPath() string {
	return filepath.Join(i.OutputDir, i.OutputFile)
}

//ListInputFiles returns the input CSV files sorted by file name
func (i *Impl) ListInputFiles() ([]string, error) {
	entries, err := os.ReadDir(i.InputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), config.GetInputExtension()) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	paths := make([]string, len(files))
	for n, name := range files {
		paths[n] = filepath.Join(i.InputDir, name)
	}
	return paths, nil
}

//ReadTable reads one input file, trying every supported encoding in order
func (i *Impl) ReadTable(path string) (models.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	table, err := decodeTable(data)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	table.Source = filepath.Base(path)
	if table.SkippedLines > 0 {
		i.Log.Warn(fmt.Sprintf("'%s': %d malformed lines skipped", table.Source, table.SkippedLines))
	}
	i.Log.Info(fmt.Sprintf("'%s' read successfully ('%s', %d rows)", table.Source, table.Encoding, len(table.Rows)))
	return table.RawTable, nil
}

//WriteSeries writes the canonical output file.
//An existing non-empty output is copied to the backup directory first. The new content goes to a
//temporary file which is then renamed over the target.
func (i *Impl) WriteSeries(series models.Series) (string, error) {
	path := i.OutputPath()
	if err := os.MkdirAll(i.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if backup, err := i.backup(path); err != nil {
		return "", err
	} else if backup != "" {
		i.Log.Info("Previous output backed up to " + backup)
	}
	if err := writeAtomically(path, func(f *os.File) error {
		return encodeSeries(f, series)
	}); err != nil {
		return "", err
	}
	return path, nil
}

//ReadSeries loads the canonical output file
func (i *Impl) ReadSeries() (models.Series, error) {
	f, err := os.Open(i.OutputPath())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, skipped, err := decodeSeries(f, i.DefaultInterval)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", i.OutputFile, err)
	}
	if skipped > 0 {
		i.Log.Warn(fmt.Sprintf("'%s': %d unparsable rows skipped", i.OutputFile, skipped))
	}
	return series, nil
}

func (i *Impl) backup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}
	if err := os.MkdirAll(i.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := stem + config.GetBackupInfix() + i.Now().Format(config.GetBackupDateLayout()) + ".csv"
	target := filepath.Join(i.BackupDir, name)
	if err := copyFile(path, target); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return target, nil
}
