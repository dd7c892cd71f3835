// Package profile renders the extras shown by a detailed profile lookup:
// a plain-text excerpt of the user's "me!" page and a rank-history chart.
package profile

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const DefaultExcerptLength = 300

var skipTags = map[string]bool{
	"script": true,
	"style":  true,
	"img":    true,
	"iframe": true,
	"audio":  true,
	"video":  true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "center": true,
}

// Excerpt turns userpage HTML into at most limit runes of plain text.
// Links keep their text only, and block elements become line breaks.
func Excerpt(pageHTML string, limit int) (string, error) {
	if strings.TrimSpace(pageHTML) == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	walk(doc.Find("body").Contents(), &sb)

	lines := strings.Split(sb.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return truncate(strings.Join(kept, "\n"), limit), nil
}

func walk(sel *goquery.Selection, sb *strings.Builder) {
	sel.Each(func(_ int, s *goquery.Selection) {
		node := s.Nodes[0]
		switch node.Type {
		case html.TextNode:
			sb.WriteString(node.Data)
		case html.ElementNode:
			tag := goquery.NodeName(s)
			if skipTags[tag] {
				return
			}
			walk(s.Contents(), sb)
			if blockTags[tag] {
				sb.WriteByte('\n')
			}
		}
	})
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	if limit <= 3 {
		return string(r[:limit])
	}
	return strings.TrimSpace(string(r[:limit-3])) + "..."
}
