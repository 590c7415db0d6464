package isolate

import (
	"context"

	"golang.org/x/net/html"
)

// StyleStats reports what the stylesheet pruner did.
type StyleStats struct {
	Containers   int
	RulesRemoved int

	// Errors counts containers whose processing failed part way.
	Errors int
}

// Rule is a single CSS rule. Concrete rules additionally implement one of
// StyleRule, ImportRule or MediaRule; anything else is left untouched.
type Rule interface {
	CSSText() string
}

// StyleRule is a rule with a selector, e.g. `.nav a { color: red }`.
type StyleRule interface {
	Rule
	SelectorText() string
}

// ImportRule is an `@import` rule.
type ImportRule interface {
	Rule
	Href() string

	// StyleSheet returns the imported sheet. Returns an error when the sheet
	// could not be loaded.
	StyleSheet() (RuleContainer, error)
}

// MediaRule is an `@media` rule holding nested rules.
type MediaRule interface {
	Rule
	RuleContainer
	ConditionText() string
}

// RuleList is an indexed, mutable list of rules.
type RuleList interface {
	Len() int
	Rule(i int) Rule

	// DeleteRule removes the rule at index i. Indexes of later rules shift down.
	DeleteRule(i int) error
}

// RuleContainer is anything holding a rule list: a stylesheet or a media rule.
type RuleContainer interface {
	CSSRules() (RuleList, error)
}

// LegacyRuleContainer is implemented by containers that also expose their
// rules under a second accessor. Some container kinds only populate one of
// the two, so callers try Rules first and fall back to CSSRules.
type LegacyRuleContainer interface {
	RuleContainer
	Rules() RuleList
}

// StyleSheetSource collects the stylesheets attached to a document.
type StyleSheetSource interface {
	Load(ctx context.Context, doc *html.Node) (StyleSheetSet, error)
}

// StyleSheetSet is the set of sheets loaded from one document.
type StyleSheetSet interface {
	Containers() []RuleContainer

	// Commit writes the sheets, including deletions, back into the document.
	Commit() error
}

// SelectorMatcher counts elements of a document matching a CSS selector.
type SelectorMatcher interface {
	Count(doc *html.Node, selector string) (int, error)
}

// MediaMatcher evaluates media query conditions against a viewport.
type MediaMatcher interface {
	MatchMedia(ctx context.Context, condition string) (bool, error)
}

// SheetLoader retrieves stylesheet text for an absolute URL.
type SheetLoader interface {
	LoadSheet(ctx context.Context, href string) (string, error)
}

// StyleSheetPruner deletes rules that no element of the document uses.
type StyleSheetPruner interface {
	Prune(ctx context.Context, doc *html.Node, containers []RuleContainer) StyleStats
}
