package logging

import (
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
)

// Format represents the logging output format
type Format int

const (
	FormatConsole Format = iota + 1
	FormatJSON
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var formats = map[string]Format{
	"console": FormatConsole,
	"json":    FormatJSON,
}

// emailPattern matches addresses of notification recipients and senders.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ParseLevel converts a case insensitive level name to slog.Level
func ParseLevel(s string) (slog.Level, error) {
	level, ok := levels[strings.ToLower(s)]
	if !ok {
		return slog.LevelInfo, goerr.New("invalid log level",
			goerr.V("level", s),
			goerr.V("valid_levels", []string{"debug", "info", "warn", "error"}),
		)
	}
	return level, nil
}

// ParseFormat converts a case insensitive format name to Format
func ParseFormat(s string) (Format, error) {
	format, ok := formats[strings.ToLower(s)]
	if !ok {
		return FormatConsole, goerr.New("invalid log format",
			goerr.V("format", s),
			goerr.V("valid_formats", []string{"console", "json"}),
		)
	}
	return format, nil
}

// Options configures New
type Options struct {
	Level      slog.Level
	Format     Format
	Stacktrace bool
}

// New creates a logger writing to w. Secrets and email addresses are masked
// in every format.
func New(w io.Writer, opts Options) *slog.Logger {
	filter := newFilter()

	switch opts.Format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       opts.Level,
			ReplaceAttr: filter,
		}))

	default:
		attrHook := clog.GoerrHook
		if !opts.Stacktrace {
			attrHook = goerrNoStacktrace
		}
		return slog.New(clog.New(
			clog.WithWriter(w),
			clog.WithLevel(opts.Level),
			clog.WithReplaceAttr(filter),
			clog.WithAttrHook(attrHook),
			clog.WithColorMap(colorMap()),
		))
	}
}

// SetDefault installs logger as the process wide slog default
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

// Quiet returns a logger discarding everything and installs it as default
func Quiet() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	SetDefault(logger)
	return logger
}

func newFilter() func([]string, slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldPrefix("secret_"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("APIKey"),
		masq.WithFieldName("Password"),
		masq.WithFieldName("OAuthToken"),
		masq.WithFieldName("JWTSecret"),
		masq.WithRegex(emailPattern),
	)
}

func colorMap() *clog.ColorMap {
	return &clog.ColorMap{
		Level: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgGreen, color.Bold),
			slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
			slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
		LevelDefault: color.New(color.FgBlue, color.Bold),
		Time:         color.New(color.FgWhite),
		Message:      color.New(color.FgHiWhite),
		AttrKey:      color.New(color.FgHiCyan),
		AttrValue:    color.New(color.FgHiWhite),
	}
}

// goerrNoStacktrace renders goerr errors as a group of their values, message
// and cause.
func goerrNoStacktrace(_ []string, attr slog.Attr) *clog.HandleAttr {
	goErr, ok := attr.Value.Any().(*goerr.Error)
	if !ok {
		return nil
	}

	var attrs []any
	for k, v := range goErr.Values() {
		attrs = append(attrs, slog.Any(k, v))
	}
	attrs = append(attrs, slog.String("message", goErr.Error()))
	if cause := goErr.Unwrap(); cause != nil {
		attrs = append(attrs, slog.Any("cause", cause))
	}

	newAttr := slog.Group(attr.Key, attrs...)
	return &clog.HandleAttr{
		NewAttr: &newAttr,
	}
}
