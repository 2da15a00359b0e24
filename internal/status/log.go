package status

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "?"
	}
}

// Logger is a small leveled logger. The engine logs each finalised module
// and the cache logs each eviction, both at Debug level.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	prefix string
}

// NewLogger builds a Logger writing to w at the given minimum level.
func NewLogger(w io.Writer, prefix string, level Level) *Logger {
	return &Logger{out: w, prefix: prefix, level: level}
}

// Default is the package-wide logger, writing to stderr at Info.
var Default = NewLogger(os.Stderr, "exprc", LevelInfo)

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s [%s] %s: %s\n", time.Now().UTC().Format(time.RFC3339Nano), level, l.prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }

// Bytes renders a byte count human-readably, e.g. "84 KB", for use in log
// lines such as reporting a compiled module's code size.
func Bytes(n uint64) string {
	return humanize.Bytes(n)
}
