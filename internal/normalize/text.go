package normalize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText flattens an HTML fragment to whitespace-collapsed text.
// Block boundaries and <br> become spaces; script and style are dropped.
func PlainText(fragment string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range nodes {
		extractText(n, &sb)
	}
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func extractText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Br, atom.P, atom.Div, atom.Li, atom.Tr:
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb)
	}
}
