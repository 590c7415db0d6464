package goquery

import "golang.org/x/net/html"

// StripComments removes every comment node that is a direct child of an
// element and returns how many were removed. Comments outside the document
// element are left alone.
func StripComments(doc *html.Node) int {
	removed := 0
	for _, el := range Elements(doc) {
		// Collect first: removing while walking NextSibling would skip
		// the comment following a removed one.
		var comments []*html.Node
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.CommentNode {
				comments = append(comments, c)
			}
		}
		for _, c := range comments {
			el.RemoveChild(c)
			removed++
		}
	}
	return removed
}
