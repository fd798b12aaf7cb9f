package stripe

import (
	"context"
	"fmt"
	"log/slog"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// leveledLogger routes stripe-go client logs into slog.
type leveledLogger struct {
	logger *slog.Logger
}

func newLeveledLogger(logger *slog.Logger) stripeapi.LeveledLoggerInterface {
	return &leveledLogger{logger: logger.With(slog.String("component", "stripe"))}
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.log(slog.LevelInfo, format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.log(slog.LevelWarn, format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
}

func (l *leveledLogger) log(level slog.Level, format string, v ...interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, v...))
}
