package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"meterdata-pipeline/config"
)

type Impl struct {
	mu             sync.Mutex
	lineCounter    int
	base           *log.Logger
	LogFile        *os.File
	MaxLogfileSize int64
}

type Logger interface {
	Fatal(err error)
	Error(err error)
	ErrorWithText(logMessage string)
	Warn(logMessage string)
	Info(logMessage string)
	Debug(logMessage string)
	SetDebug(enabled bool)

	Close()
}

//NewLogger appends to fileName, creating it and its directory when needed.
//If the file cannot be opened the logger falls back to stderr and the error is returned alongside it.
var NewLogger = func(fileName string, maxLogfileSize int64) (Logger, error) {
	base := log.New()
	base.SetFormatter(&log.TextFormatter{QuoteEmptyFields: true, FullTimestamp: true})
	base.SetReportCaller(true)
	base.SetLevel(log.InfoLevel)

	if err := os.MkdirAll(filepath.Dir(fileName), 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		base.SetOutput(os.Stderr)
		return &Impl{base: base}, err
	}
	logFile, err := os.OpenFile(fileName, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		// Cannot open log file. Logging to stderr
		fmt.Fprintln(os.Stderr, err)
		base.SetOutput(os.Stderr)
		return &Impl{base: base}, err
	}
	base.SetOutput(logFile)

	return &Impl{
		base:           base,
		LogFile:        logFile,
		MaxLogfileSize: maxLogfileSize,
	}, nil
}

//FromLogrus wraps an existing logrus logger. No log file is managed.
func FromLogrus(base *log.Logger) Logger {
	return &Impl{base: base}
}

func (i *Impl) SetDebug(enabled bool) {
	if enabled {
		i.base.SetLevel(log.DebugLevel)
	} else {
		i.base.SetLevel(log.InfoLevel)
	}
}

func (i *Impl) ErrorWithText(logMessage string) {
	i.write(log.ErrorLevel, logMessage)
}

func (i *Impl) Error(err error) {
	i.write(log.ErrorLevel, err)
}

func (i *Impl) Warn(logMessage string) {
	i.write(log.WarnLevel, logMessage)
}

func (i *Impl) Info(logMessage string) {
	i.write(log.InfoLevel, logMessage)
}

func (i *Impl) Debug(logMessage string) {
	i.write(log.DebugLevel, logMessage)
}

func (i *Impl) Fatal(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.base.Fatal(err)
}

func (i *Impl) write(level log.Level, args ...interface{}) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.lineCounter++

	i.base.Log(level, args...)
	if i.logFileIsTooLarge() {
		err := i.replaceLogFile()
		if err != nil {
			i.base.Error(err)
		}
	}
}

func (i *Impl) replaceLogFile() error {

	i.base.Info("Archiving existing log file")

	name := i.LogFile.Name()
	err := i.LogFile.Close()
	if err != nil {
		return err
	}
	ext := filepath.Ext(name)
	newFileName := strings.TrimSuffix(name, ext) + "_" + time.Now().Format(config.GetFileDateLayout()) + ext
	renameErr := os.Rename(name, newFileName)

	// Reopen under the original name whether or not the archive rename worked
	i.LogFile, err = os.OpenFile(name, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		i.base.SetOutput(os.Stderr)
		return err
	}
	i.base.SetOutput(i.LogFile)
	return renameErr
}

func (i *Impl) logFileIsTooLarge() bool {
	if i.LogFile == nil || i.lineCounter < 100 {
		return false
	}
	i.lineCounter = 0

	fileInfo, err := i.LogFile.Stat()
	if err != nil {
		i.base.Error("Error:", err)
		return false
	}
	return fileInfo.Size()/(1024*1024) >= i.MaxLogfileSize
}

func (i *Impl) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.LogFile != nil {
		i.LogFile.Close()
	}
}
