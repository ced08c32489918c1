package gutenberg

import (
	"strings"

	"github.com/raphaelgruber/bookgraph/internal/models"
	"golang.org/x/net/html"
)

// ExtractMetadata pulls the bibliographic fields out of a parsed catalog
// page. Every field falls back to its "Unknown" sentinel so downstream
// code never sees an absent value. The selector fallback chains match the
// bibrec table layout of the Gutenberg ebook pages.
func ExtractMetadata(doc *html.Node) models.BookMetadata {
	return models.BookMetadata{
		Title:       extractTitle(doc),
		Author:      extractAuthor(doc),
		Language:    extractLanguage(doc),
		ReleaseDate: extractReleaseDate(doc),
		Subjects:    extractSubjects(doc),
	}
}

func extractTitle(doc *html.Node) string {
	if n := findFirst(doc, hasID("book_title")); n != nil {
		if t := nodeText(n); t != "" {
			return t
		}
	}
	if n := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "name") == "title"
	}); n != nil {
		if c := strings.TrimSpace(attr(n, "content")); c != "" {
			return c
		}
	}
	if n := findFirst(doc, isElement("h1")); n != nil {
		if t := nodeText(n); t != "" {
			return t
		}
	}
	return models.UnknownTitle
}

func extractAuthor(doc *html.Node) string {
	if n := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "a" && attr(n, "rel") == "marcrel:aut"
	}); n != nil {
		if t := nodeText(n); t != "" {
			return t
		}
	}
	if td := bibrecValue(doc, "Author"); td != nil {
		if t := nodeText(td); t != "" {
			return t
		}
	}
	return models.UnknownAuthor
}

func extractLanguage(doc *html.Node) string {
	if tr := findFirst(doc, func(n *html.Node) bool {
		return n.Data == "tr" && attr(n, "property") == "dcterms:language"
	}); tr != nil {
		if td := findFirst(tr, isElement("td")); td != nil {
			if t := nodeText(td); t != "" {
				return t
			}
		}
	}
	return models.UnknownLanguage
}

func extractReleaseDate(doc *html.Node) string {
	if td := bibrecValue(doc, "Release Date"); td != nil {
		if t := nodeText(td); t != "" {
			return t
		}
	}
	return models.UnknownReleaseDate
}

func extractSubjects(doc *html.Node) []string {
	subjects := []string{}
	for _, tr := range findAll(doc, isElement("tr")) {
		th := findFirst(tr, isElement("th"))
		if th == nil || !strings.Contains(nodeText(th), "Subject") {
			continue
		}
		td := findFirst(tr, isElement("td"))
		if td == nil {
			continue
		}
		for _, a := range findAll(td, isElement("a")) {
			if t := nodeText(a); t != "" {
				subjects = append(subjects, t)
			}
		}
	}
	return subjects
}

// bibrecValue returns the td of the first bibrec table row whose th
// contains the given label.
func bibrecValue(doc *html.Node, label string) *html.Node {
	for _, tr := range findAll(doc, isElement("tr")) {
		th := findFirst(tr, isElement("th"))
		if th == nil || !strings.Contains(nodeText(th), label) {
			continue
		}
		return findFirst(tr, isElement("td"))
	}
	return nil
}

// findFirst returns the first element node matching pred in document order.
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element node matching pred in document order.
func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && pred(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, pred)...)
	}
	return out
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func hasID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attr(n, "id") == id }
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeText concatenates all text descendants, collapsing the whitespace
// the way rendered text would read.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
