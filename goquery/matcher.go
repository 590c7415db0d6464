package goquery

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/isolate"
	"golang.org/x/net/html"
)

// Ensure Matcher implements isolate.SelectorMatcher at compile time.
var _ isolate.SelectorMatcher = Matcher{}

// userActions are pseudo-classes that depend on pointer or focus state.
// A static document is never hovered, so a:hover counts every <a> instead.
var userActions = map[string]bool{
	"hover":         true,
	"active":        true,
	"focus":         true,
	"focus-visible": true,
	"focus-within":  true,
	"visited":       true,
}

// Matcher counts elements matching CSS selectors. Pseudo-elements are
// matched on their originating element, so `p::before` counts every <p>,
// and user-action pseudo-classes are ignored.
type Matcher struct{}

// Count returns the number of elements below doc matching selector.
// Returns EINVALID for selectors cascadia cannot parse, such as vendor
// pseudo-elements.
func (Matcher) Count(doc *html.Node, selector string) (int, error) {
	group, err := cascadia.ParseGroupWithPseudoElements(strings.TrimSpace(stripUserActions(selector)))
	if err != nil {
		return 0, isolate.Errorf(isolate.EINVALID, "unsupported selector %q: %v", selector, err)
	}
	return len(cascadia.QueryAll(doc, group)), nil
}

// stripUserActions removes user-action pseudo-classes from sel. Attribute
// selectors and strings are copied untouched. A compound left empty
// becomes `*`, and a :not() whose argument mentions a user action is
// dropped whole, so a:not(:hover) counts every <a>.
func stripUserActions(sel string) string {
	var b strings.Builder
	for i := 0; i < len(sel); {
		switch c := sel[i]; {
		case c == '\\':
			end := min(i+2, len(sel))
			b.WriteString(sel[i:end])
			i = end
		case c == '"' || c == '\'':
			end := skipString(sel, i)
			b.WriteString(sel[i:end])
			i = end
		case c == '[':
			end, _ := skipBlock(sel, i, '[', ']')
			b.WriteString(sel[i:end])
			i = end
		case c == ':' && i+1 < len(sel) && sel[i+1] == ':':
			b.WriteString("::")
			i += 2
		case c == ':':
			j := i + 1
			for j < len(sel) && isNameChar(sel[j]) {
				j++
			}
			name := strings.ToLower(sel[i+1 : j])
			if j < len(sel) && sel[j] == '(' {
				end, ok := skipBlock(sel, j, '(', ')')
				if !ok {
					b.WriteString(sel[i:])
					return b.String()
				}
				arg := sel[j+1 : end-1]
				stripped := stripUserActions(arg)
				if name == "not" && stripped != arg {
					emptyCompound(&b, sel, end)
				} else {
					b.WriteString(sel[i : j+1])
					b.WriteString(stripped)
					b.WriteByte(')')
				}
				i = end
				continue
			}
			if userActions[name] {
				emptyCompound(&b, sel, j)
			} else {
				b.WriteString(sel[i:j])
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// emptyCompound writes `*` when the simple selector just dropped was the
// whole compound, with next indexing the rest of sel.
func emptyCompound(b *strings.Builder, sel string, next int) {
	out := b.String()
	start := out == "" || strings.IndexByte(" \t\n\r\f>+~,(", out[len(out)-1]) >= 0
	end := next >= len(sel) || strings.IndexByte(" \t\n\r\f>+~,)", sel[next]) >= 0
	if start && end {
		b.WriteByte('*')
	}
}

// skipString returns the index just past the string opening at sel[i].
func skipString(sel string, i int) int {
	quote := sel[i]
	for j := i + 1; j < len(sel); j++ {
		switch sel[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(sel)
}

// skipBlock returns the index just past the block opening at sel[i] and
// whether it was closed.
func skipBlock(sel string, i int, open, closer byte) (int, bool) {
	depth := 0
	for j := i; j < len(sel); {
		switch sel[j] {
		case '\\':
			j += 2
			continue
		case '"', '\'':
			j = skipString(sel, j)
			continue
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j + 1, true
			}
		}
		j++
	}
	return len(sel), false
}

func isNameChar(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
