// Package media evaluates CSS media queries against a static viewport.
//
// It serves documents processed without a browser; the rod package answers
// the same question with the page's own matchMedia.
package media

import (
	"context"
	"strconv"
	"strings"

	"github.com/fwojciec/isolate"
)

// Ensure Viewport implements isolate.MediaMatcher at compile time.
var _ isolate.MediaMatcher = Viewport{}

// Default viewport values.
const (
	DefaultWidth       = 1280
	DefaultHeight      = 800
	DefaultType        = "screen"
	DefaultColorScheme = "light"
	DefaultFontSize    = 16
)

// Viewport describes the rendering environment media queries are matched
// against. Zero fields fall back to the defaults above.
type Viewport struct {
	Width       float64 // CSS pixels
	Height      float64 // CSS pixels
	Type        string  // screen, print
	ColorScheme string  // light, dark
	FontSize    float64 // root font size in pixels, for em and rem
}

// MatchMedia reports whether condition, the text of an @media prelude,
// matches the viewport. Unknown media features evaluate to false.
// Malformed queries return an EINVALID error.
func (v Viewport) MatchMedia(ctx context.Context, condition string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v = v.withDefaults()

	condition = strings.ToLower(strings.TrimSpace(condition))
	if condition == "" {
		return true, nil
	}
	queries, err := splitTopLevel(condition, ',')
	if err != nil {
		return false, err
	}
	for _, q := range queries {
		ok, err := v.query(q)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (v Viewport) withDefaults() Viewport {
	if v.Width <= 0 {
		v.Width = DefaultWidth
	}
	if v.Height <= 0 {
		v.Height = DefaultHeight
	}
	if v.Type == "" {
		v.Type = DefaultType
	}
	if v.ColorScheme == "" {
		v.ColorScheme = DefaultColorScheme
	}
	if v.FontSize <= 0 {
		v.FontSize = DefaultFontSize
	}
	v.Type = strings.ToLower(v.Type)
	v.ColorScheme = strings.ToLower(v.ColorScheme)
	return v
}

// query evaluates one entry of a comma separated media query list.
func (v Viewport) query(q string) (bool, error) {
	toks, err := tokenize(q)
	if err != nil {
		return false, err
	}
	if len(toks) == 0 {
		return false, isolate.Errorf(isolate.EINVALID, "empty media query in list")
	}

	// <media-condition> form, starting with a parenthesised group.
	if toks[0].group || (toks[0].word == "not" && len(toks) > 1 && toks[1].group) {
		return v.condition(toks)
	}

	negate := false
	switch toks[0].word {
	case "not":
		negate = true
		toks = toks[1:]
	case "only":
		toks = toks[1:]
	}
	if len(toks) == 0 || toks[0].group {
		return false, isolate.Errorf(isolate.EINVALID, "media type expected in %q", q)
	}

	ok := v.matchType(toks[0].word)
	rest := toks[1:]
	if len(rest) > 0 {
		if rest[0].word != "and" || len(rest) == 1 {
			return false, isolate.Errorf(isolate.EINVALID, "unexpected %q in %q", rest[0].String(), q)
		}
		cond, err := v.condition(rest[1:])
		if err != nil {
			return false, err
		}
		ok = ok && cond
	}
	if negate {
		return !ok, nil
	}
	return ok, nil
}

func (v Viewport) matchType(t string) bool {
	switch t {
	case "all":
		return true
	case "screen", "print", "speech":
		return t == v.Type
	}
	// Deprecated types (tty, tv, projection, ...) never match.
	return false
}

// condition evaluates `not X`, `X and Y and ...` or `X or Y or ...`.
func (v Viewport) condition(toks []token) (bool, error) {
	if len(toks) == 0 {
		return false, isolate.Errorf(isolate.EINVALID, "media condition expected")
	}
	if toks[0].word == "not" {
		if len(toks) != 2 || !toks[1].group {
			return false, isolate.Errorf(isolate.EINVALID, "malformed not condition")
		}
		ok, err := v.inParens(toks[1].text)
		return !ok, err
	}

	var op string
	result := false
	for i, tok := range toks {
		if i%2 == 1 {
			if tok.word != "and" && tok.word != "or" {
				return false, isolate.Errorf(isolate.EINVALID, "unexpected %q in media condition", tok.String())
			}
			if op != "" && op != tok.word {
				return false, isolate.Errorf(isolate.EINVALID, "cannot mix and/or without parentheses")
			}
			op = tok.word
			continue
		}
		if !tok.group {
			return false, isolate.Errorf(isolate.EINVALID, "unexpected %q in media condition", tok.String())
		}
		ok, err := v.inParens(tok.text)
		if err != nil {
			return false, err
		}
		switch {
		case i == 0:
			result = ok
		case op == "and":
			result = result && ok
		default:
			result = result || ok
		}
	}
	if len(toks)%2 == 0 {
		return false, isolate.Errorf(isolate.EINVALID, "dangling %q in media condition", op)
	}
	return result, nil
}

// inParens evaluates the text inside one pair of parentheses: a nested
// condition or a single media feature.
func (v Viewport) inParens(text string) (bool, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") || strings.HasPrefix(text, "not ") || strings.HasPrefix(text, "not(") {
		toks, err := tokenize(text)
		if err != nil {
			return false, err
		}
		return v.condition(toks)
	}
	return v.feature(text)
}

// feature evaluates `name`, `name: value` or a range such as
// `400px <= width < 800px`.
func (v Viewport) feature(text string) (bool, error) {
	if name, value, ok := strings.Cut(text, ":"); ok {
		return v.plain(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if !strings.ContainsAny(text, "<>=") {
		return v.boolean(strings.TrimSpace(text)), nil
	}
	return v.rangeFeature(text)
}

func (v Viewport) boolean(name string) bool {
	switch name {
	case "width", "height":
		return true
	case "color", "hover", "pointer", "any-hover", "any-pointer":
		return v.Type == "screen"
	case "grid", "monochrome", "color-index":
		return false
	}
	return false
}

func (v Viewport) plain(name, value string) (bool, error) {
	prefix := ""
	switch {
	case strings.HasPrefix(name, "min-"):
		prefix, name = "min", strings.TrimPrefix(name, "min-")
	case strings.HasPrefix(name, "max-"):
		prefix, name = "max", strings.TrimPrefix(name, "max-")
	}

	switch name {
	case "width", "height", "aspect-ratio":
		actual := v.numeric(name)
		want, err := v.value(name, value)
		if err != nil {
			return false, err
		}
		switch prefix {
		case "min":
			return actual >= want, nil
		case "max":
			return actual <= want, nil
		}
		return actual == want, nil
	case "orientation":
		if prefix != "" {
			return false, nil
		}
		if v.Height >= v.Width {
			return value == "portrait", nil
		}
		return value == "landscape", nil
	case "prefers-color-scheme":
		return prefix == "" && value == v.ColorScheme, nil
	case "prefers-reduced-motion", "prefers-reduced-transparency", "prefers-contrast":
		return prefix == "" && value == "no-preference", nil
	case "hover", "any-hover":
		return prefix == "" && value == "hover" && v.Type == "screen", nil
	case "pointer", "any-pointer":
		return prefix == "" && value == "fine" && v.Type == "screen", nil
	case "scripting":
		return prefix == "" && value == "enabled", nil
	}
	return false, nil
}

var rangeOps = []string{"<=", ">=", "<", ">", "="}

// rangeFeature evaluates level 4 range syntax.
func (v Viewport) rangeFeature(text string) (bool, error) {
	parts, ops := splitRange(text)
	if len(parts) < 2 || len(parts) > 3 {
		return false, isolate.Errorf(isolate.EINVALID, "malformed range %q", text)
	}

	// Locate the feature name: the only operand that is not a value.
	nameAt := -1
	for i, p := range parts {
		if isFeatureName(p) {
			nameAt = i
			break
		}
	}
	if nameAt < 0 || (len(parts) == 3 && nameAt != 1) {
		return false, isolate.Errorf(isolate.EINVALID, "malformed range %q", text)
	}
	name := parts[nameAt]
	switch name {
	case "width", "height", "aspect-ratio":
	default:
		return false, nil
	}
	actual := v.numeric(name)

	for i, op := range ops {
		left, right := parts[i], parts[i+1]
		var a, b float64
		var err error
		if i == nameAt {
			// name op value
			a = actual
			b, err = v.value(name, right)
		} else {
			// value op name
			a, err = v.value(name, left)
			b = actual
		}
		if err != nil {
			return false, err
		}
		if !compare(a, op, b) {
			return false, nil
		}
	}
	return true, nil
}

func isFeatureName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '-' {
			return false
		}
	}
	return true
}

func splitRange(text string) (parts, ops []string) {
	rest := text
	for {
		at, op := -1, ""
		for _, candidate := range rangeOps {
			if i := strings.Index(rest, candidate); i >= 0 && (at < 0 || i < at || (i == at && len(candidate) > len(op))) {
				at, op = i, candidate
			}
		}
		if at < 0 {
			parts = append(parts, strings.TrimSpace(rest))
			return parts, ops
		}
		parts = append(parts, strings.TrimSpace(rest[:at]))
		ops = append(ops, op)
		rest = rest[at+len(op):]
	}
}

func compare(a float64, op string, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return a == b
}

func (v Viewport) numeric(name string) float64 {
	switch name {
	case "width":
		return v.Width
	case "height":
		return v.Height
	}
	return v.Width / v.Height
}

// value parses a length (px, em, rem) or, for aspect-ratio, a ratio such as
// 16/9.
func (v Viewport) value(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if name == "aspect-ratio" {
		num, den, found := strings.Cut(s, "/")
		n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
		if err != nil {
			return 0, isolate.Errorf(isolate.EINVALID, "invalid ratio %q", s)
		}
		if !found {
			return n, nil
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || d == 0 {
			return 0, isolate.Errorf(isolate.EINVALID, "invalid ratio %q", s)
		}
		return n / d, nil
	}

	unit := strings.TrimLeft(s, "0123456789.+-")
	n, err := strconv.ParseFloat(strings.TrimSuffix(s, unit), 64)
	if err != nil {
		return 0, isolate.Errorf(isolate.EINVALID, "invalid length %q", s)
	}
	switch unit {
	case "px":
		return n, nil
	case "em", "rem":
		return n * v.FontSize, nil
	case "":
		if n == 0 {
			return 0, nil
		}
	}
	return 0, isolate.Errorf(isolate.EINVALID, "unsupported length unit in %q", s)
}

// token is a bare word or the text inside one balanced pair of parentheses.
type token struct {
	word  string
	text  string
	group bool
}

func (t token) String() string {
	if t.group {
		return "(" + t.text + ")"
	}
	return t.word
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			depth := 0
			j := i
			for ; j < len(s); j++ {
				if s[j] == '(' {
					depth++
				} else if s[j] == ')' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if j == len(s) {
				return nil, isolate.Errorf(isolate.EINVALID, "unbalanced parentheses in %q", s)
			}
			toks = append(toks, token{text: s[i+1 : j], group: true})
			i = j + 1
		case c == ')':
			return nil, isolate.Errorf(isolate.EINVALID, "unbalanced parentheses in %q", s)
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t\n\r()", rune(s[j])) {
				j++
			}
			toks = append(toks, token{word: s[i:j]})
			i = j
		}
	}
	return toks, nil
}

// splitTopLevel splits s on sep outside parentheses.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, isolate.Errorf(isolate.EINVALID, "unbalanced parentheses in %q", s)
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, isolate.Errorf(isolate.EINVALID, "unbalanced parentheses in %q", s)
	}
	return append(parts, strings.TrimSpace(s[start:])), nil
}
