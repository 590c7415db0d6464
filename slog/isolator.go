package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// Ensure LoggingIsolator implements isolate.Isolator.
var _ isolate.Isolator = (*LoggingIsolator)(nil)

// LoggingIsolator wraps an Isolator and logs a summary of each run.
type LoggingIsolator struct {
	next   isolate.Isolator
	logger *slog.Logger
}

// NewLoggingIsolator creates a new LoggingIsolator.
func NewLoggingIsolator(next isolate.Isolator, logger *slog.Logger) *LoggingIsolator {
	return &LoggingIsolator{next: next, logger: logger}
}

// Isolate delegates to the wrapped isolator and logs the result.
func (i *LoggingIsolator) Isolate(ctx context.Context, doc, target *html.Node) (res *isolate.Result, err error) {
	defer func(begin time.Time) {
		if err != nil {
			i.logger.Error("isolate", "err", err, "duration", time.Since(begin))
			return
		}
		i.logger.Info("isolate",
			"cancelled", res.Cancel.Timers+res.Cancel.Frames,
			"iterations", res.Prune.Iterations,
			"removed", res.Prune.Removed,
			"converged", res.Prune.Converged,
			"containers", res.Styles.Containers,
			"rules_removed", res.Styles.RulesRemoved,
			"style_errors", res.Styles.Errors,
			"comments_removed", res.CommentsRemoved,
			"bytes", len(res.HTML),
			"duration", time.Since(begin),
		)
	}(time.Now())

	return i.next.Isolate(ctx, doc, target)
}
