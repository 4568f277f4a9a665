package logger

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// sink is one destination for a level. Only the primary writer of a level is
// colored; writers added later, such as log files, get plain lines.
type sink struct {
	w     io.Writer
	color bool
}

type ColoredLogger struct {
	verbose bool
	mu      sync.RWMutex
	sinks   map[LogLevel][]sink
	colors  map[LogLevel]*color.Color
	muted   *color.Color

	out sync.Mutex
}

var globalLogger *ColoredLogger

func init() {
	globalLogger = &ColoredLogger{
		sinks: make(map[LogLevel][]sink),
		colors: map[LogLevel]*color.Color{
			DEBUG: color.New(color.FgHiBlack),
			INFO:  color.New(color.FgBlue),
			WARN:  color.New(color.FgYellow),
			ERROR: color.New(color.FgRed),
			FATAL: color.New(color.FgMagenta, color.Bold),
		},
		muted: color.New(color.FgHiBlack),
	}

	for level := DEBUG; level <= FATAL; level++ {
		globalLogger.sinks[level] = []sink{{w: os.Stdout, color: true}}
	}
}

func SetVerbose(verbose bool) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.verbose = verbose
}

// SetNoColor disables level coloring for every writer.
func SetNoColor(noColor bool) {
	color.NoColor = noColor //nolint:reassign // library switch for all color.Color values
}

// SetWriter replaces every writer of level with w.
func SetWriter(level LogLevel, w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks[level] = []sink{{w: w, color: true}}
}

func SetWriterForAll(w io.Writer) {
	for level := DEBUG; level <= FATAL; level++ {
		SetWriter(level, w)
	}
}

// AddWriter sends level to w as well, without color codes.
func AddWriter(level LogLevel, w io.Writer) {
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	globalLogger.sinks[level] = append(globalLogger.sinks[level], sink{w: w})
}

func AddWriterForAll(w io.Writer) {
	for level := DEBUG; level <= FATAL; level++ {
		AddWriter(level, w)
	}
}

// SetErrorWriter moves ERROR and FATAL to stderr.
func SetErrorWriter() {
	SetWriter(ERROR, os.Stderr)
	SetWriter(FATAL, os.Stderr)
}

func (cl *ColoredLogger) formatMessage(level LogLevel, timestamp, message string, colored bool) string {
	if !colored {
		return fmt.Sprintf("[%s] %-5s %s\n", timestamp, level, message)
	}

	levelColor, ok := cl.colors[level]
	if !ok {
		levelColor = color.New(color.FgWhite)
	}
	return fmt.Sprintf(
		"%s %s %s\n",
		cl.muted.Sprintf("[%s]", timestamp),
		levelColor.Sprintf("%-5s", level.String()),
		message,
	)
}

func (cl *ColoredLogger) log(level LogLevel, format string, args ...interface{}) {
	cl.mu.RLock()
	if level == DEBUG && !cl.verbose {
		cl.mu.RUnlock()
		return
	}
	sinks := slices.Clone(cl.sinks[level])
	cl.mu.RUnlock()

	timestamp := time.Now().Format("06-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)

	cl.out.Lock()
	for _, s := range sinks {
		_, _ = io.WriteString(s.w, cl.formatMessage(level, timestamp, message, s.color))
	}
	cl.out.Unlock()

	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	globalLogger.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	globalLogger.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	globalLogger.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	globalLogger.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	globalLogger.log(FATAL, format, args...)
}

func GetLogFromLevel(level LogLevel) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		globalLogger.log(level, format, args...)
	}
}
