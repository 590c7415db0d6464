// Package douceur adapts stylesheets parsed by github.com/aymerick/douceur
// to the rule container interfaces of package isolate.
package douceur

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// Ensure Sheet implements the container interfaces at compile time.
var (
	_ isolate.RuleContainer       = (*Sheet)(nil)
	_ isolate.LegacyRuleContainer = (*Sheet)(nil)
)

// Sheet is a parsed stylesheet. Deletions made through its rule lists are
// reflected by String.
type Sheet struct {
	href  string
	css   *css.Stylesheet
	owner *html.Node

	// imports holds the sheets loaded for @import rules of this sheet.
	imports map[*css.Rule]*imported
}

type imported struct {
	sheet *Sheet
	err   error
}

// Parse parses CSS text into a Sheet. href is the URL the text was loaded
// from; it may be empty. When set, relative url() references and @import
// targets are rewritten to absolute URLs so the sheet can be inlined into
// a document with a different base.
func Parse(text, href string) (*Sheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, isolate.Errorf(isolate.EINVALID, "failed to parse stylesheet %s: %v", displayHref(href), err)
	}
	if href != "" {
		base, err := url.Parse(href)
		if err != nil {
			return nil, isolate.Errorf(isolate.EINVALID, "invalid stylesheet URL %q: %v", href, err)
		}
		absolutizeRules(sheet.Rules, base)
	}
	return &Sheet{
		href:    href,
		css:     sheet,
		imports: make(map[*css.Rule]*imported),
	}, nil
}

// Href returns the URL the sheet was loaded from.
func (s *Sheet) Href() string {
	return s.href
}

// Owner returns the <style> or <link> element the sheet came from, or nil
// for imported sheets.
func (s *Sheet) Owner() *html.Node {
	return s.owner
}

// CSSRules returns the top-level rules.
func (s *Sheet) CSSRules() (isolate.RuleList, error) {
	return &ruleList{rules: &s.css.Rules, sheet: s}, nil
}

// Rules returns the same list as CSSRules.
func (s *Sheet) Rules() isolate.RuleList {
	return &ruleList{rules: &s.css.Rules, sheet: s}
}

// String renders the sheet. Imported sheets that were loaded are inlined in
// place of their @import rule.
func (s *Sheet) String() string {
	var b strings.Builder
	for _, r := range s.css.Rules {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if imp, ok := s.imports[r]; ok && imp.sheet != nil {
			_, media := parseImport(r.Prelude)
			if media != "" {
				fmt.Fprintf(&b, "@media %s {\n%s\n}", media, imp.sheet.String())
			} else {
				b.WriteString(imp.sheet.String())
			}
			continue
		}
		b.WriteString(r.String())
	}
	return b.String()
}

// ruleList is a view over a slice of rules owned by a sheet or a media rule.
type ruleList struct {
	rules *[]*css.Rule
	sheet *Sheet
}

func (l *ruleList) Len() int {
	return len(*l.rules)
}

func (l *ruleList) Rule(i int) isolate.Rule {
	return wrap((*l.rules)[i], l.sheet)
}

func (l *ruleList) DeleteRule(i int) error {
	if i < 0 || i >= len(*l.rules) {
		return isolate.Errorf(isolate.EINVALID, "rule index %d out of range [0, %d)", i, len(*l.rules))
	}
	delete(l.sheet.imports, (*l.rules)[i])
	*l.rules = slices.Delete(*l.rules, i, i+1)
	return nil
}

func wrap(r *css.Rule, sheet *Sheet) isolate.Rule {
	if r.Kind == css.QualifiedRule {
		return &styleRule{rule: r}
	}
	switch strings.ToLower(r.Name) {
	case "@import":
		return &importRule{rule: r, sheet: sheet}
	case "@media":
		return &mediaRule{rule: r, sheet: sheet}
	}
	return &otherRule{rule: r}
}

type styleRule struct {
	rule *css.Rule
}

func (r *styleRule) CSSText() string { return r.rule.String() }

func (r *styleRule) SelectorText() string {
	if p := strings.TrimSpace(r.rule.Prelude); p != "" {
		return p
	}
	return strings.Join(r.rule.Selectors, ", ")
}

type importRule struct {
	rule  *css.Rule
	sheet *Sheet
}

func (r *importRule) CSSText() string { return r.rule.String() }

func (r *importRule) Href() string {
	href, _ := parseImport(r.rule.Prelude)
	return href
}

func (r *importRule) StyleSheet() (isolate.RuleContainer, error) {
	imp, ok := r.sheet.imports[r.rule]
	if !ok {
		return nil, isolate.Errorf(isolate.ENOTFOUND, "imported sheet %s not loaded", r.Href())
	}
	if imp.err != nil {
		return nil, imp.err
	}
	return imp.sheet, nil
}

// mediaRule only exposes CSSRules, matching how browsers expose nested
// rule lists of grouping rules.
type mediaRule struct {
	rule  *css.Rule
	sheet *Sheet
}

func (r *mediaRule) CSSText() string { return r.rule.String() }

func (r *mediaRule) ConditionText() string { return strings.TrimSpace(r.rule.Prelude) }

func (r *mediaRule) CSSRules() (isolate.RuleList, error) {
	return &ruleList{rules: &r.rule.Rules, sheet: r.sheet}, nil
}

type otherRule struct {
	rule *css.Rule
}

func (r *otherRule) CSSText() string { return r.rule.String() }

// parseImport splits an @import prelude such as `url("a.css") screen` into
// the referenced URL and the trailing media query list.
func parseImport(prelude string) (href, media string) {
	p := strings.TrimSpace(prelude)
	switch {
	case strings.HasPrefix(strings.ToLower(p), "url("):
		end := strings.Index(p, ")")
		if end < 0 {
			return unquote(p[4:]), ""
		}
		href, media = unquote(p[4:end]), p[end+1:]
	case strings.HasPrefix(p, `"`) || strings.HasPrefix(p, `'`):
		end := strings.IndexByte(p[1:], p[0])
		if end < 0 {
			return unquote(p), ""
		}
		href, media = p[1:end+1], p[end+2:]
	default:
		fields := strings.Fields(p)
		if len(fields) == 0 {
			return "", ""
		}
		href, media = fields[0], strings.TrimPrefix(p, fields[0])
	}
	return href, strings.TrimSpace(media)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func displayHref(href string) string {
	if href == "" {
		return "(inline)"
	}
	return href
}
