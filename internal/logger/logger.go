// Package logger wraps zerolog with the defaults json-split uses: console
// output on stderr, coloured only when stderr is a terminal.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "JSON_SPLIT_LOG_LEVEL"

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// Options configures the root logger.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

var root atomic.Pointer[zerolog.Logger]

// Init builds the root logger. Later calls replace it.
func Init(opt Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := opt.Level
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		level = env
	}

	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	if !strings.EqualFold(opt.Format, "json") {
		w = consoleWriter(w)
	}

	log := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	root.Store(&log)
}

// Get returns the root logger, initialising a warn-level console logger on
// first use.
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(Options{Level: "warn"})
	return root.Load()
}

// Named returns a child logger with a component field.
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	ll := Get().With().Str("component", component).Logger()
	return &ll
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		cw.Out = colorable.NewColorable(f)
		cw.NoColor = false
	}
	return cw
}

// parseLevel maps a level name to zerolog, defaulting to warn.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}
