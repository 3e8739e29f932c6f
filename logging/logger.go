// Package logging provides the leveled console logger used by dsplit.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Level declares supported logging levels ordered by verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel maps a case-insensitive level name to a Level.
// An empty name selects LevelInfo.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("logging: unknown level %q", name)
}

// Printer is the contract implemented by Logger.
type Printer interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithComponent(name string) Printer
}

type levelMeta struct {
	tag       string
	colorCode string
}

var metas = map[Level]levelMeta{
	LevelDebug: {tag: "DEBUG", colorCode: "36"},
	LevelInfo:  {tag: " INFO", colorCode: "32"},
	LevelWarn:  {tag: " WARN", colorCode: "33"},
	LevelError: {tag: "ERROR", colorCode: "31"},
}

// Option customises Logger.
type Option func(*Logger)

// WithLevel configures the minimum emitted level.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// WithTimeFormat sets the timestamp format (empty disables timestamps).
func WithTimeFormat(layout string) Option {
	return func(l *Logger) {
		l.timeFormat = layout
	}
}

// WithColored forces ANSI colouring on or off, overriding terminal detection.
func WithColored(colored bool) Option {
	return func(l *Logger) {
		l.colored = &colored
	}
}

// WithWriter registers a dedicated writer for a level.
func WithWriter(level Level, w io.Writer) Option {
	return func(l *Logger) {
		if w != nil {
			l.writers[level] = w
		}
	}
}

// WithOutput routes debug, info and warn to out and error to errOut.
func WithOutput(out, errOut io.Writer) Option {
	return func(l *Logger) {
		for _, lvl := range []Level{LevelDebug, LevelInfo, LevelWarn} {
			if out != nil {
				l.writers[lvl] = out
			}
		}
		if errOut != nil {
			l.writers[LevelError] = errOut
		}
	}
}

// Logger writes tagged, optionally coloured lines. Safe for concurrent use.
type Logger struct {
	mu          sync.Mutex
	level       Level
	timeFormat  string
	colored     *bool
	component   string
	writers     map[Level]io.Writer
	timeNowFunc func() time.Time
}

// New instantiates a logger writing to stdout/stderr at LevelInfo.
func New(opts ...Option) *Logger {
	l := &Logger{
		level:      LevelInfo,
		timeFormat: "15:04:05.000",
		writers: map[Level]io.Writer{
			LevelDebug: os.Stdout,
			LevelInfo:  os.Stdout,
			LevelWarn:  os.Stdout,
			LevelError: os.Stderr,
		},
		timeNowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Level reports the minimum emitted level.
func (l *Logger) Level() Level {
	return l.level
}

// WithComponent clones the logger, tagging every line with name.
func (l *Logger) WithComponent(name string) Printer {
	if l == nil {
		return NewNop()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		level:       l.level,
		timeFormat:  l.timeFormat,
		colored:     l.colored,
		component:   name,
		writers:     l.writers,
		timeNowFunc: l.timeNowFunc,
	}
}

// SetTimeNow overrides the clock (primarily for tests).
func (l *Logger) SetTimeNow(fn func() time.Time) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timeNowFunc = fn
}

func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || level < l.level || l.level == LevelSilent {
		return
	}

	message := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if message == "" {
		return
	}
	lines := splitLines(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := ""
	if l.timeFormat != "" {
		ts = l.timeNowFunc().Format(l.timeFormat)
	}

	writer := l.levelWriter(level)
	prefix := l.renderPrefix(metas[level], ts, l.useColor(writer))
	connectors := renderConnectors(len(lines))

	for i, line := range lines {
		fmt.Fprintf(writer, "%s%s%s\n", prefix, connectors[i], line)
	}
}

func (l *Logger) levelWriter(level Level) io.Writer {
	if w, ok := l.writers[level]; ok && w != nil {
		return w
	}
	if level >= LevelError {
		return os.Stderr
	}
	return os.Stdout
}

// useColor honours an explicit WithColored, otherwise colours only terminals.
func (l *Logger) useColor(w io.Writer) bool {
	if l.colored != nil {
		return *l.colored
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (l *Logger) renderPrefix(meta levelMeta, timestamp string, colored bool) string {
	var b strings.Builder

	if colored && meta.colorCode != "" {
		fmt.Fprintf(&b, "\033[%sm%s\033[0m", meta.colorCode, meta.tag)
	} else {
		b.WriteString(meta.tag)
	}
	b.WriteByte(' ')

	if timestamp != "" {
		b.WriteString(timestamp)
		b.WriteByte(' ')
	}
	if l.component != "" {
		b.WriteByte('[')
		b.WriteString(l.component)
		b.WriteString("] ")
	} else {
		b.WriteByte(' ')
	}
	return b.String()
}

func splitLines(msg string) []string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

func renderConnectors(total int) []string {
	if total <= 1 {
		return []string{"   "}
	}
	connectors := make([]string, total)
	for i := range connectors {
		switch i {
		case 0:
			connectors[i] = "┬── "
		case total - 1:
			connectors[i] = "└── "
		default:
			connectors[i] = "├── "
		}
	}
	return connectors
}

// NopLogger discards every message.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
func (NopLogger) WithComponent(string) Printer {
	return NopLogger{}
}

// NewNop returns a logger that suppresses output.
func NewNop() Printer {
	return NopLogger{}
}
