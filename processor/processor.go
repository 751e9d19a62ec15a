package processor

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"meterdata-pipeline/config"
	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
	"meterdata-pipeline/repository"
	"meterdata-pipeline/validator"
)

// Fatal run conditions. Everything else is absorbed per file or per row.
var (
	ErrNoInputFiles    = errors.New("no input files found")
	ErrNoAcceptedFiles = errors.New("no input file passed schema normalization")
	ErrWriteOutput     = errors.New("canonical output could not be written")
)

//FileOutcome records what happened to one input file
type FileOutcome struct {
	File     string `json:"file"`
	Encoding string `json:"encoding,omitempty"`
	Rows     int    `json:"rows"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

//RunResult is everything one pipeline run produced
type RunResult struct {
	RunID       string
	Files       []FileOutcome
	Coercion    CoercionStats
	Duplication models.DuplicationStats
	Series      models.Series
	Report      models.Report
	OutputPath  string
	ReportPath  string
}

type Processor struct {
	repo        repository.Repository
	resolver    *Resolver
	validator   *validator.Validator
	log         logger.Logger
	writeReport bool

	last *RunResult
}

func NewProcessor(repo repository.Repository, resolver *Resolver, v *validator.Validator, lg logger.Logger, writeReport bool) *Processor {
	return &Processor{
		repo:        repo,
		resolver:    resolver,
		validator:   v,
		log:         lg,
		writeReport: writeReport,
	}
}

//LastResult returns the result of the most recent successful run, or nil
func (p *Processor) LastResult() *RunResult {
	return p.last
}

//Run reads every input file, normalizes, coerces and deduplicates the rows, writes the canonical
//series and validates it
func (p *Processor) Run() (*RunResult, error) {
	result := &RunResult{RunID: uuid.NewString()}
	p.log.Info("Starting run id " + result.RunID)

	//Cleanup - remove .tmp files left in the output folder by an interrupted run
	outputDir := filepath.Dir(p.repo.OutputPath())
	if n, err := RemoveFiles(outputDir, config.GetTmpExtension()); err != nil {
		p.log.Error(fmt.Errorf("removing stale temporary files: %w", err))
	} else if n > 0 {
		p.log.Info(fmt.Sprintf("Removed %d stale temporary files from %s", n, outputDir))
	}

	paths, err := p.repo.ListInputFiles()
	if err != nil {
		return nil, fmt.Errorf("listing input files: %w", err)
	}
	if len(paths) == 0 {
		return nil, ErrNoInputFiles
	}
	p.log.Info(fmt.Sprintf("Found %d input files", len(paths)))

	rows, outcomes := p.LoadRows(paths)
	result.Files = outcomes
	if len(rows) == 0 && !anyAccepted(outcomes) {
		return nil, ErrNoAcceptedFiles
	}
	p.log.Info(fmt.Sprintf("Normalized tables concatenated: %d rows", len(rows)))

	table, coercion := Coerce(rows)
	result.Coercion = coercion
	if coercion.Dropped() > 0 {
		p.log.Warn(fmt.Sprintf("%d rows dropped during type conversion (energy: %d, start: %d, end: %d, empty interval: %d)",
			coercion.Dropped(), coercion.BadEnergy, coercion.BadStart, coercion.BadEnd, coercion.NonPositiveSpans))
	}

	result.Series, result.Duplication = p.resolver.Resolve(table)

	result.OutputPath, err = p.repo.WriteSeries(result.Series)
	if err != nil {
		p.log.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	p.log.Info(fmt.Sprintf("Canonical series written to %s (%d rows)", result.OutputPath, len(result.Series)))

	result.Report = p.validator.Validate(result.Series)
	p.log.Info("\n" + validator.Summary(result.Report))
	if p.writeReport {
		// The report is advisory; failing to persist it does not fail the run
		result.ReportPath, err = p.repo.WriteReport(result.Report)
		if err != nil {
			p.log.Error(fmt.Errorf("writing validation report: %w", err))
		}
	}

	p.last = result
	p.log.Info("Finished run id " + result.RunID)
	return result, nil
}

//LoadRows reads and normalizes the given files in order. Unreadable files and files missing a
//canonical column are skipped with a diagnostic.
func (p *Processor) LoadRows(paths []string) ([]models.RawRow, []FileOutcome) {
	var rows []models.RawRow
	outcomes := make([]FileOutcome, 0, len(paths))

	for _, path := range paths {
		outcome := FileOutcome{File: filepath.Base(path)}

		table, err := p.repo.ReadTable(path)
		if err != nil {
			outcome.Reason = err.Error()
			p.log.ErrorWithText(fmt.Sprintf("'%s' could not be read, skipped: %v", outcome.File, err))
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Encoding = table.Encoding

		normalized, err := NormalizeTable(table)
		if err != nil {
			outcome.Reason = err.Error()
			p.log.Warn(err.Error())
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.Accepted = true
		outcome.Rows = len(normalized)
		p.log.Info(fmt.Sprintf("'%s' normalized: %d rows", outcome.File, outcome.Rows))

		rows = append(rows, normalized...)
		outcomes = append(outcomes, outcome)
	}
	return rows, outcomes
}

func anyAccepted(outcomes []FileOutcome) bool {
	for _, o := range outcomes {
		if o.Accepted {
			return true
		}
	}
	return false
}
