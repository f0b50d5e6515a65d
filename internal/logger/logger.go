package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

// Log levels
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// Logger writes levelled messages prefixed with time and caller
type Logger struct {
	level     LogLevel
	logger    *log.Logger
	file      *os.File
	useColors bool
	exit      func(int)
}

var levelColors = map[LogLevel]string{
	DEBUG: "\033[36m",
	INFO:  "\033[32m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
	FATAL: "\033[35m",
}

var levelPrefixes = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO ",
	WARN:  "WARN ",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// NewLogger creates a console logger with the specified log level
func NewLogger(levelStr string) *Logger {
	l := New(levelStr, os.Stdout)

	// Colors only make sense on a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil && fileInfo.Mode()&os.ModeCharDevice != 0 {
		l.useColors = true
	}

	return l
}

// New creates an uncolored logger writing to w
func New(levelStr string, w io.Writer) *Logger {
	return &Logger{
		level:  ParseLevel(levelStr),
		logger: log.New(w, "", 0),
		exit:   os.Exit,
	}
}

func openLogFile(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// NewFileLogger creates a new logger that writes to a file
func NewFileLogger(levelStr, filePath string) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}

	l := New(levelStr, file)
	l.file = file
	return l, nil
}

// NewMultiLogger creates a logger that writes to both console and file
func NewMultiLogger(levelStr, filePath string) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}

	l := New(levelStr, io.MultiWriter(os.Stdout, file))
	l.file = file
	return l, nil
}

// emit writes msg prefixed with the public method's caller
func (l *Logger) emit(level LogLevel, msg string) {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		file = "unknown"
		line = 0
	}

	prefix := fmt.Sprintf("%s [%s] %s:%d:",
		time.Now().Format("2006/01/02 15:04:05"), levelPrefixes[level], filepath.Base(file), line)

	if l.useColors {
		prefix = levelColors[level] + prefix + "\033[0m"
	}

	l.logger.Println(prefix, msg)

	if level == FATAL {
		l.Close()
		l.exit(1)
	}
}

func (l *Logger) log(level LogLevel, v ...interface{}) {
	if level < l.level {
		return
	}
	l.emit(level, fmt.Sprint(v...))
}

func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.emit(level, fmt.Sprintf(format, v...))
}

// Debug logs a debug message
func (l *Logger) Debug(v ...interface{}) { l.log(DEBUG, v...) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...interface{}) { l.logf(DEBUG, format, v...) }

// Info logs an info message
func (l *Logger) Info(v ...interface{}) { l.log(INFO, v...) }

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...interface{}) { l.logf(INFO, format, v...) }

// Warn logs a warning message
func (l *Logger) Warn(v ...interface{}) { l.log(WARN, v...) }

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...interface{}) { l.logf(WARN, format, v...) }

// Error logs an error message
func (l *Logger) Error(v ...interface{}) { l.log(ERROR, v...) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, v ...interface{}) { l.logf(ERROR, format, v...) }

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(v ...interface{}) { l.log(FATAL, v...) }

// Fatalf logs a formatted fatal message and exits the program
func (l *Logger) Fatalf(format string, v ...interface{}) { l.logf(FATAL, format, v...) }

// SetLevel sets the log level
func (l *Logger) SetLevel(levelStr string) {
	l.level = ParseLevel(levelStr)
}

// Level returns the current threshold
func (l *Logger) Level() LogLevel {
	return l.level
}

// SetOutput sets the output writer for the logger
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// EnableColors enables or disables colored output
func (l *Logger) EnableColors(enable bool) {
	l.useColors = enable
}

// Close closes the logger's file if it exists
func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
