package align

import (
	"strings"

	"golang.org/x/net/html"
)

// tableText flattens an HTML table into its cell text, one row per line with
// cells separated by a space. Non-HTML input is returned unchanged.
func tableText(body string) string {
	if !IsHTMLTable(body) {
		return body
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}

	var rows []string
	var cells []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "tr":
				cells = cells[:0]

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}

				if len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " "))
				}
				return
			case "td", "th":
				cells = append(cells, strings.TrimSpace(nodeText(n)))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return strings.Join(rows, "\n")
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}

	return b.String()
}
