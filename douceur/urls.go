package douceur

import (
	"net/url"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/gorilla/css/scanner"
)

// absolutizeRules rewrites relative url() references in rules, and the
// targets of @import preludes, to absolute URLs resolved against base.
// Sheets loaded from a URL keep working when their text is moved into the
// document.
func absolutizeRules(rules []*css.Rule, base *url.URL) {
	for _, r := range rules {
		if r.Kind == css.AtRule && strings.EqualFold(r.Name, "@import") {
			r.Prelude = absolutizeValue(r.Prelude, base, true)
		}
		for _, d := range r.Declarations {
			d.Value = absolutizeValue(d.Value, base, false)
		}
		absolutizeRules(r.Rules, base)
	}
}

// absolutizeValue rewrites the url() tokens of value. With bareStrings set,
// a quoted string also counts as a URL, as in `@import "a.css"`. Values the
// scanner rejects are returned unchanged.
func absolutizeValue(value string, base *url.URL, bareStrings bool) string {
	if !strings.Contains(strings.ToLower(value), "url(") && !bareStrings {
		return value
	}

	var b strings.Builder
	s := scanner.New(value)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return b.String()
		case scanner.TokenError:
			return value
		case scanner.TokenURI:
			b.WriteString(rewriteURI(tok.Value, base))
		case scanner.TokenString:
			if bareStrings {
				b.WriteString(rewriteString(tok.Value, base))
			} else {
				b.WriteString(tok.Value)
			}
		default:
			b.WriteString(tok.Value)
		}
	}
}

// rewriteURI rewrites a `url(...)` token, keeping its quoting style.
func rewriteURI(tok string, base *url.URL) string {
	open := strings.IndexByte(tok, '(')
	end := strings.LastIndexByte(tok, ')')
	if open < 0 || end <= open {
		return tok
	}
	inner := strings.TrimSpace(tok[open+1 : end])
	quote := ""
	if len(inner) >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[len(inner)-1] == inner[0] {
		quote = inner[:1]
		inner = inner[1 : len(inner)-1]
	}
	abs, ok := absoluteRef(inner, base)
	if !ok {
		return tok
	}
	return tok[:open+1] + quote + abs + quote + ")"
}

// rewriteString rewrites a quoted string token.
func rewriteString(tok string, base *url.URL) string {
	if len(tok) < 2 {
		return tok
	}
	abs, ok := absoluteRef(tok[1:len(tok)-1], base)
	if !ok {
		return tok
	}
	return tok[:1] + abs + tok[len(tok)-1:]
}

// absoluteRef resolves ref against base. Empty references, fragments,
// data: URIs and references that are already absolute are left alone.
func absoluteRef(ref string, base *url.URL) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.ContainsAny(ref, "\\\n") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}
