package logger

import (
	"log/slog"
	"os"
)

// New creates a preconfigured slog.Logger that tags records with the request id from context.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(NewContextHandler(handler))
}
