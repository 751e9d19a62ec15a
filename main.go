package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"meterdata-pipeline/api"
	"meterdata-pipeline/config"
	"meterdata-pipeline/export"
	"meterdata-pipeline/logger"
	"meterdata-pipeline/models"
	"meterdata-pipeline/processor"
	"meterdata-pipeline/query"
	"meterdata-pipeline/repository"
	"meterdata-pipeline/utils"
	"meterdata-pipeline/validator"
)

var (
	sha1ver   string // sha1 revision used to build the program
	buildTime string // when the executable was built
	version   string // custom version number of the program

	flgVersion     bool
	flgMode        string
	flgStart       string
	flgEnd         string
	flgGranularity string
)

func main() {

	parseCmdLineFlags()

	//Store the current time before running the program in order to track execution time
	timer := time.Now()

	//The environment is given as a parameter (defaults to PROD)
	environment := getEnvironment()

	//Get the configurations for the given environment
	configurations := config.GetConfig(environment)

	// Create the log file if it doesn't exist. Append to it if it already exists.
	logFileLogger, err := logger.NewLogger(configurations.LOG_FILE, configurations.MAX_LOGFILE_SIZE)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Logging to stderr:", err)
	}
	defer logFileLogger.Close()
	logFileLogger.SetDebug(configurations.DEBUG_LOGGING)

	logFileLogger.Info("Using configurations from config files with prefix: " + environment)
	logFileLogger.Info("version = " + version)
	logFileLogger.Info("buildTime = " + buildTime)
	logFileLogger.Info("sha1Version = " + sha1ver)
	logFileLogger.Debug("Mode: " + flgMode)

	policy, err := models.ParseKeepPolicy(configurations.KEEP_POLICY)
	if err != nil {
		logFileLogger.Fatal(err)
	}
	opts := validator.DefaultOptions().WithElectricityPrice(configurations.ELECTRICITY_PRICE)

	repo := repository.NewRepository(configurations, logFileLogger)
	v := validator.New(opts, logFileLogger)

	switch flgMode {
	case "process":
		resolver := processor.NewResolver(policy, logFileLogger)
		p := processor.NewProcessor(repo, resolver, v, logFileLogger, !configurations.SKIP_REPORT)
		result, err := p.Run()
		if err != nil {
			logFileLogger.Fatal(err)
		}
		logFileLogger.Info(fmt.Sprintf("Overall health: %s, %d rows in %s", result.Report.OverallHealth, len(result.Series), result.OutputPath))
	case "serve":
		server := api.NewServer(repo, v, logFileLogger)
		if err := server.ListenAndServe(configurations.SERVER_ADDR); err != nil {
			logFileLogger.Fatal(err)
		}
	case "export":
		exporter := export.NewExporter(configurations, logFileLogger)
		if err := runExport(repo, v, exporter, logFileLogger); err != nil {
			logFileLogger.Fatal(err)
		}
	default:
		logFileLogger.Fatal(fmt.Errorf("unknown mode %q, expected process, serve or export", flgMode))
	}

	utils.PrintMemUsage(logFileLogger)

	//Print the time it took to run the program
	logFileLogger.Info(" Execution time: " + time.Since(timer).String())
}

//runExport writes the spreadsheet and the HTML report for the period given on the command line
func runExport(repo repository.Repository, v *validator.Validator, exporter *export.Exporter, lg logger.Logger) error {
	series, err := repo.ReadSeries()
	if err != nil {
		return err
	}
	start, end := flgStart, flgEnd
	first, last := series.Span()
	if start == "" {
		start = first.Format(config.GetQueryDateLayout())
	}
	if end == "" {
		end = last.Format(config.GetQueryDateLayout())
	}
	f, err := query.NewFilter(start, end, flgGranularity)
	if err != nil {
		return err
	}

	points := query.Select(series, f)
	if _, err := exporter.ExportExcel(points, f.Granularity); err != nil {
		if errors.Is(err, export.ErrNothingToExport) {
			lg.Warn(fmt.Sprintf("Nothing to export between %s and %s", start, end))
			return nil
		}
		return err
	}
	report := v.Validate(query.InRange(series, f.StartDate, f.EndDate))
	_, err = exporter.ExportReport(points, report, f.Granularity)
	return err
}

func getEnvironment() string {
	environment := config.GetDefaultEnvironment()
	if flag.NArg() > 0 {
		environment = flag.Arg(0)
	}
	return environment
}

func parseCmdLineFlags() {
	flag.BoolVar(&flgVersion, "version", false, "if true, print version and exit")
	flag.StringVar(&flgMode, "mode", "process", "process, serve or export")
	flag.StringVar(&flgStart, "start", "", "first day of the export period (YYYY-MM-DD)")
	flag.StringVar(&flgEnd, "end", "", "last day of the export period (YYYY-MM-DD)")
	flag.StringVar(&flgGranularity, "granularity", "", "15min, hourly, daily, weekly or monthly (empty for raw rows)")
	flag.Parse()
	if flgVersion {
		fmt.Printf("Version %s - build on %s from sha1 %s\n", version, buildTime, sha1ver)
		os.Exit(0)
	}
}
