// Package logx builds the process logger. Diagnostics go to stderr through
// slog; user-facing progress is printed by the commands themselves.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format specifies the output format for logs.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// sensitiveKeys are masked wherever they appear as attribute keys.
var sensitiveKeys = map[string]bool{
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"openaiapikey":  true,
}

// ParseFormat accepts "text" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text or json)", s)
	}
}

// New returns a logger writing to w. Verbose lowers the level to debug;
// otherwise only warnings and errors are emitted.
func New(w io.Writer, format Format, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: maskSensitive,
	}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func maskSensitive(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] && a.Value.Kind() == slog.KindString && a.Value.String() != "" {
		return slog.String(a.Key, "***")
	}
	return a
}
