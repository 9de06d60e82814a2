package source

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var defaultSelectors = []string{
	"main",
	"article",
	".report",
	"#report",
}

// blockElements end a line of text. Reports lean on line breaks to keep
// one measurement per line.
var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "section": true, "pre": true,
}

func parseHTML(r io.Reader, selectors []string) (title, content string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(doc.Find("title").Text()), extractMainContent(doc, selectors), nil
}

func extractMainContent(doc *goquery.Document, selectors []string) string {
	doc.Find("script, style, noscript").Remove()

	var content string
	for _, selector := range selectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = blockText(selected.First())
			break
		}
	}

	// Fallback to body if no main content found
	if strings.TrimSpace(content) == "" {
		content = blockText(doc.Find("body"))
	}

	return cleanContent(content)
}

// blockText is Selection.Text with a line break after every block element.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "br" {
				b.WriteString("\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch {
			case blockElements[n.Data]:
				b.WriteString("\n")
			case n.Data == "td" || n.Data == "th":
				b.WriteString(" ")
			}
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// cleanContent collapses whitespace inside lines and drops blank lines.
func cleanContent(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
