package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/isolate"
)

// Ensure LoggingSheetLoader implements isolate.SheetLoader.
var _ isolate.SheetLoader = (*LoggingSheetLoader)(nil)

// LoggingSheetLoader wraps a SheetLoader with debug logging.
type LoggingSheetLoader struct {
	next   isolate.SheetLoader
	logger *slog.Logger
}

// NewLoggingSheetLoader creates a new LoggingSheetLoader.
func NewLoggingSheetLoader(next isolate.SheetLoader, logger *slog.Logger) *LoggingSheetLoader {
	return &LoggingSheetLoader{next: next, logger: logger}
}

// LoadSheet delegates to the wrapped loader and logs the operation.
func (l *LoggingSheetLoader) LoadSheet(ctx context.Context, href string) (css string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"href", href,
			"bytes", len(css),
			"duration", time.Since(begin),
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		l.logger.Debug("load stylesheet", attrs...)
	}(time.Now())

	return l.next.LoadSheet(ctx, href)
}
