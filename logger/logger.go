package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Fields carries structured context for a log entry (operation, ids, backend code...).
type Fields map[string]interface{}

// Person identifies the authenticated user attached to a reported entry.
type Person struct {
	ID    string
	Email string
}

type Options struct {
	Level           string
	RollbarToken    string
	RollbarEndpoint string
	Env             string
	Version         string
	Output          io.Writer
}

// Logger writes leveled, tagged lines to a standard logger and forwards
// warnings and errors to Rollbar when a token is configured.
type Logger struct {
	std     *log.Logger
	level   Level
	tag     string
	rollbar *rollbar.Client
}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	l := &Logger{
		std:   log.New(out, "", log.LstdFlags),
		level: ParseLevel(opts.Level),
	}
	if opts.RollbarToken != "" {
		l.rollbar = rollbar.New(opts.RollbarToken, opts.Env, opts.Version, "", "campus")
		if opts.RollbarEndpoint != "" {
			l.rollbar.SetEndpoint(opts.RollbarEndpoint)
		}
	}
	return l
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return &Logger{std: log.New(io.Discard, "", 0), level: LevelError + 1}
}

func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// With returns a copy of the logger that prefixes lines with [TAG].
func (l *Logger) With(tag string) *Logger {
	cp := *l
	cp.tag = strings.ToUpper(tag)
	return &cp
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", msg, args)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.write(LevelInfo, "INFO", msg, args)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.write(LevelWarn, "WARN", msg, args) {
		l.report(rollbar.WARN, msg, args)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	if l.write(LevelError, "ERROR", msg, args) {
		l.report(rollbar.ERR, msg, args)
	}
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.rollbar != nil {
		l.report(rollbar.CRIT, msg, args)
		l.rollbar.Wait()
	}
	l.std.Fatal(l.format("FATAL", msg, args))
}

// Close flushes pending Rollbar items.
func (l *Logger) Close() {
	if l.rollbar != nil {
		l.rollbar.Close()
	}
}

func (l *Logger) write(level Level, label, msg string, args []interface{}) bool {
	if level < l.level {
		return false
	}
	l.std.Println(l.format(label, msg, args))
	return true
}

func (l *Logger) format(label, msg string, args []interface{}) string {
	var b strings.Builder
	if l.tag != "" {
		b.WriteString("[" + l.tag + "] ")
	}
	b.WriteString(label + " " + msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case Fields:
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, v[k])
			}
		case Person:
			fmt.Fprintf(&b, " user=%s", v.ID)
		case error:
			fmt.Fprintf(&b, " error=%q", v.Error())
		default:
			fmt.Fprintf(&b, " %v", v)
		}
	}
	return b.String()
}

// report sends one item to Rollbar. The person travels in the item's
// context so concurrent reports never share it.
// expected args: error, Fields, Person
func (l *Logger) report(level, msg string, args []interface{}) {
	if l.rollbar == nil {
		return
	}
	if l.tag != "" {
		msg = "[" + l.tag + "] " + msg
	}

	ctx := context.Background()
	extras := map[string]interface{}{}
	var err error
	for _, arg := range args {
		switch v := arg.(type) {
		case Person:
			if _, ok := rollbar.PersonFromContext(ctx); !ok && v.ID != "" {
				ctx = rollbar.NewPersonContext(ctx, &rollbar.Person{Id: v.ID, Email: v.Email})
			}
		case Fields:
			for k, val := range v {
				extras[k] = val
			}
		case error:
			if err == nil {
				err = v
			}
		default:
			extras[fmt.Sprintf("arg%d", len(extras))] = v
		}
	}

	if err != nil {
		extras["message"] = msg
		l.rollbar.ErrorWithExtrasAndContext(ctx, level, err, extras)
		return
	}
	l.rollbar.MessageWithExtrasAndContext(ctx, level, msg, extras)
}
