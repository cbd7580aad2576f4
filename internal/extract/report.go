// Package extract turns raw documents into the inputs of the matcher:
// requirement lists from requirement tables and plain report text from HTML.
package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockElements end the current line of text
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Table: true, atom.Caption: true,
	atom.Ul: true, atom.Ol: true, atom.Blockquote: true, atom.Pre: true,
}

// ReportText extracts the visible text of an HTML report. Table rows are
// written as pipe-delimited lines so that the table parser can read them.
func ReportText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Iframe, atom.Head:
				return
			case atom.Tr:
				writeRow(&buf, n)
				return
			}
		}

		if n.Type == html.TextNode {
			if text := collapseSpace(n.Data); text != "" {
				if buf.Len() > 0 && !endsWithBreak(&buf) {
					buf.WriteByte(' ')
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			newline(&buf)
		}
	}

	walk(doc)
	return tidyLines(buf.String()), nil
}

// writeRow renders a <tr> as "| a | b |"
func writeRow(buf *strings.Builder, tr *html.Node) {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cell := collapseSpace(textContent(c))
			cells = append(cells, strings.ReplaceAll(cell, "|", "/"))
		}
	}
	if len(cells) == 0 {
		return
	}

	newline(buf)
	buf.WriteString("| ")
	buf.WriteString(strings.Join(cells, " | "))
	buf.WriteString(" |\n")
}

// textContent concatenates every text node below n
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func endsWithBreak(buf *strings.Builder) bool {
	s := buf.String()
	return strings.HasSuffix(s, "\n") || strings.HasSuffix(s, " ")
}

func newline(buf *strings.Builder) {
	if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
		buf.WriteByte('\n')
	}
}

// tidyLines trims every line and drops blank ones
func tidyLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
