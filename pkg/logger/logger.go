// Package logger holds the process-wide zerolog logger.
//
// main calls Init once; services receive children built with Component so
// every entry carries the emitting subsystem.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how Init builds the logger.
type Options struct {
	// Level is a zerolog level name; "warning" is accepted for warn.
	// Anything unrecognised falls back to info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is stamped on every entry as "service" when non-empty.
	Service string
}

var (
	mu       sync.RWMutex
	root     zerolog.Logger
	initOnce sync.Once
	ready    bool
)

// Init builds the process logger. Only the first call has any effect.
func Init(opts Options) zerolog.Logger {
	initOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		lc := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
		if opts.Service != "" {
			lc = lc.Str("service", opts.Service)
		}

		mu.Lock()
		root = lc.Logger()
		ready = true
		mu.Unlock()
	})
	return Get()
}

// Get returns the process logger. It panics before Init.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component returns a child logger tagged with component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset lets tests call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	initOnce = sync.Once{}
	root = zerolog.Logger{}
	ready = false
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
