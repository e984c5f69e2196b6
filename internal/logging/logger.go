// Package logging is the threadnest log pipeline: JSON slog to stdout,
// fanned out to a batching handler that lands ERROR+ records in the
// system_logs table, with a retention sweep to keep that table bounded.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs a stdout-only JSON logger. main replaces it with the full
// fan-out once the database is up, so records emitted before Connect still
// land somewhere.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
