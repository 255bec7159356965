package tui

import (
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/tui/theme"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// RenderHTML turns the Telegram HTML of a bot reply into terminal text.
// Bold runs get the emphasis style; other tags are dropped and entities are
// decoded.
func RenderHTML(s string, th theme.Theme) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	style := th.EmphasisStyle()
	doc.Find("b, strong").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithNodes(textNode(style.Render(sel.Text())))
	})
	return doc.Find("body").Text()
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
