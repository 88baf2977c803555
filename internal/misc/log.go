package misc

import (
	"io"
	"log/slog"
)

// SetDefaultLog installs a text slog handler writing to w as the process default.
func SetDefaultLog(w io.Writer, level slog.Leveler) {
	slog.SetDefault(
		slog.New(
			slog.NewTextHandler(
				w,
				&slog.HandlerOptions{
					Level: level,
				},
			),
		),
	)
}

// LogLevel maps the -verbose flag to a slog level.
func LogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
