package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tkanos/gonfig"
)

type Configuration struct {
	INPUT_DIR                string
	OUTPUT_DIR               string
	OUTPUT_FILE              string
	BACKUP_DIR               string
	EXPORT_DIR               string
	LOG_FILE                 string
	MAX_LOGFILE_SIZE         int64
	DEBUG_LOGGING            bool
	KEEP_POLICY              string
	ELECTRICITY_PRICE        float64
	DEFAULT_INTERVAL_MINUTES int
	SERVER_ADDR              string
	SKIP_REPORT              bool
}

//GetConfig reads ./<env>_config.json and overlays environment variables with the same field names.
//A missing file is not fatal: every field has a default.
func GetConfig(params ...string) Configuration {
	configuration := Configuration{}
	env := ""
	if len(params) > 0 {
		env = params[0]
	}
	fileName := fmt.Sprintf("./%s_config.json", env)

	err := gonfig.GetConf(fileName, &configuration)
	if err != nil {
		log.Warn("Could not read config file ", fileName, ", using defaults: ", err)
	}
	configuration.ApplyDefaults()

	log.Info("Using configurations in config file with prefix: ", env)

	return configuration
}

//ApplyDefaults fills every zero-valued field with its default
func (c *Configuration) ApplyDefaults() {
	if c.INPUT_DIR == "" {
		c.INPUT_DIR = "CSV-eredeti"
	}
	if c.OUTPUT_DIR == "" {
		c.OUTPUT_DIR = "CSV-normalis"
	}
	if c.OUTPUT_FILE == "" {
		c.OUTPUT_FILE = "energia_adatok_tisztitott.csv"
	}
	if c.BACKUP_DIR == "" {
		c.BACKUP_DIR = "backups"
	}
	if c.EXPORT_DIR == "" {
		c.EXPORT_DIR = "exports"
	}
	if c.LOG_FILE == "" {
		c.LOG_FILE = GetLogFileName()
	}
	if c.MAX_LOGFILE_SIZE == 0 {
		c.MAX_LOGFILE_SIZE = 10
	}
	if c.KEEP_POLICY == "" {
		c.KEEP_POLICY = "last"
	}
	if c.ELECTRICITY_PRICE == 0 {
		c.ELECTRICITY_PRICE = GetDefaultElectricityPrice()
	}
	if c.DEFAULT_INTERVAL_MINUTES <= 0 {
		c.DEFAULT_INTERVAL_MINUTES = 15
	}
	if c.SERVER_ADDR == "" {
		c.SERVER_ADDR = ":8080"
	}
}

//GetCSVDelimiter returns the field delimiter of input and output files
func GetCSVDelimiter() rune {
	return ';'
}

//GetInputEncodings returns the trial encodings in the order they are attempted
func GetInputEncodings() []string {
	return []string{"utf-8-sig", "iso-8859-2", "cp1250", "latin1"}
}

//GetMinInputColumns returns the column count an input table must exceed to be accepted
func GetMinInputColumns() int {
	return 5
}

//GetTimestampLayouts returns the layouts tried when parsing interval timestamps
func GetTimestampLayouts() []string {
	return []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		time.RFC3339,
		"2006.01.02. 15:04:05",
		"2006.01.02. 15:04",
		"2006.01.02 15:04:05",
		"2006.01.02 15:04",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"2006-01-02",
		"2006.01.02.",
		"2006.01.02",
	}
}

//GetOutputDateLayout returns the timestamp layout of the canonical output file
func GetOutputDateLayout() string {
	return "2006-01-02 15:04:05"
}

//GetQueryDateLayout returns the layout of start/end query parameters
func GetQueryDateLayout() string {
	return "2006-01-02"
}

//GetBackupDateLayout returns the timestamp layout used in backup and export file names
func GetBackupDateLayout() string {
	return "20060102_150405"
}

//GetFileDateLayout returns the timestamp layout used when archiving log files
func GetFileDateLayout() string {
	return "20060102150405"
}

//GetBackupInfix returns the text placed between the original stem and the timestamp of a backup
func GetBackupInfix() string {
	return "_backup_"
}

//GetReportSuffix returns the suffix of the YAML report written next to the canonical output
func GetReportSuffix() string {
	return "_report.yaml"
}

//GetTmpExtension returns the temporary extension used while writing the output file
func GetTmpExtension() string {
	return ".tmp"
}

//GetInputExtension returns the extension of input files
func GetInputExtension() string {
	return ".csv"
}

//GetDefaultElectricityPrice returns the unit price in Ft/kWh (2025)
func GetDefaultElectricityPrice() float64 {
	return 56.07
}

//GetLogFileName return the name of the log file
func GetLogFileName() string {
	return "./logs/meterdata-pipeline.log"
}

//GetDefaultEnvironment returns the default config file prefix
func GetDefaultEnvironment() string {
	return "PROD"
}
