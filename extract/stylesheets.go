package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// Ensure StyleSheetPruner implements isolate.StyleSheetPruner at compile time.
var _ isolate.StyleSheetPruner = (*StyleSheetPruner)(nil)

// StyleSheetPruner deletes style rules whose selectors match nothing and
// media rules whose condition does not hold.
type StyleSheetPruner struct {
	Selectors isolate.SelectorMatcher
	Media     isolate.MediaMatcher
	Logger    *slog.Logger
}

// Prune walks every container. A failure inside one container is logged,
// counted in StyleStats.Errors and does not stop the others.
func (p *StyleSheetPruner) Prune(ctx context.Context, doc *html.Node, containers []isolate.RuleContainer) isolate.StyleStats {
	var stats isolate.StyleStats
	for i, c := range containers {
		if ctx.Err() != nil {
			break
		}
		stats.Containers++
		removed, err := p.pruneContainer(ctx, doc, c)
		stats.RulesRemoved += removed
		if err != nil {
			stats.Errors++
			p.logger().Warn("prune stylesheet", "index", i, "err", err)
		}
	}
	return stats
}

// pruneContainer returns the number of rules deleted from c and the nested
// containers it reached, along with the first error it met.
func (p *StyleSheetPruner) pruneContainer(ctx context.Context, doc *html.Node, c isolate.RuleContainer) (int, error) {
	rules, err := ruleList(c)
	if err != nil {
		return 0, err
	}

	var removed int
	var firstErr error
	note := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	// Reverse order keeps indexes of unvisited rules stable across deletes.
	for i := rules.Len() - 1; i >= 0; i-- {
		switch r := rules.Rule(i).(type) {
		case isolate.StyleRule:
			n, err := p.Selectors.Count(doc, r.SelectorText())
			if err != nil {
				p.logger().Debug("keep rule with unmatched selector syntax", "selector", r.SelectorText(), "err", err)
				continue
			}
			if n > 0 {
				continue
			}
			if err := rules.DeleteRule(i); err != nil {
				note(fmt.Errorf("delete rule %q: %w", r.SelectorText(), err))
				continue
			}
			removed++

		case isolate.ImportRule:
			sheet, err := r.StyleSheet()
			if err != nil {
				note(fmt.Errorf("import %s: %w", r.Href(), err))
				continue
			}
			n, err := p.pruneContainer(ctx, doc, sheet)
			removed += n
			if err != nil {
				note(fmt.Errorf("import %s: %w", r.Href(), err))
			}

		case isolate.MediaRule:
			ok, err := p.Media.MatchMedia(ctx, r.ConditionText())
			if err != nil {
				note(fmt.Errorf("media %q: %w", r.ConditionText(), err))
				continue
			}
			if !ok {
				if err := rules.DeleteRule(i); err != nil {
					note(fmt.Errorf("delete media rule %q: %w", r.ConditionText(), err))
					continue
				}
				removed++
				continue
			}
			n, err := p.pruneContainer(ctx, doc, r)
			removed += n
			if err != nil {
				note(fmt.Errorf("media %q: %w", r.ConditionText(), err))
			}
		}
	}
	return removed, firstErr
}

// ruleList prefers the legacy accessor, since some containers only
// populate one of the two.
func ruleList(c isolate.RuleContainer) (isolate.RuleList, error) {
	if legacy, ok := c.(isolate.LegacyRuleContainer); ok {
		if rules := legacy.Rules(); rules != nil {
			return rules, nil
		}
	}
	rules, err := c.CSSRules()
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	if rules == nil {
		return nil, isolate.Errorf(isolate.EINVALID, "container exposes no rule list")
	}
	return rules, nil
}

func (p *StyleSheetPruner) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
