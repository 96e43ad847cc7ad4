// Package htmlutil extracts parallel string pairs from HTML tables and
// definition lists.
package htmlutil

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/happyhackingspace/parallign/internal/textutil"
)

// LoadHTML parses HTML from r into a goquery Document.
func LoadHTML(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// LoadHTMLString parses an HTML string into a goquery Document.
func LoadHTMLString(htmlStr string) (*goquery.Document, error) {
	return LoadHTML(strings.NewReader(htmlStr))
}

// CellText returns the visible text of s with white space collapsed.
func CellText(s *goquery.Selection) string {
	return strings.TrimSpace(textutil.NormalizeWhitespaces(s.Text()))
}

// TablePairs returns the first two data cells of every table row that has
// at least two <td> cells. Header rows made of <th> cells are skipped, as
// are rows where both cells are empty.
func TablePairs(doc *goquery.Document) [][2]string {
	var pairs [][2]string
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		src := CellText(cells.Eq(0))
		tgt := CellText(cells.Eq(1))
		if src == "" && tgt == "" {
			return
		}
		pairs = append(pairs, [2]string{src, tgt})
	})
	return pairs
}

// DefinitionPairs returns (term, description) pairs from <dl> lists. Each
// <dd> is paired with the nearest preceding <dt>; a <dt> without a <dd>
// yields nothing.
func DefinitionPairs(doc *goquery.Document) [][2]string {
	var pairs [][2]string
	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		term, haveTerm := "", false
		dl.Children().Each(func(_ int, s *goquery.Selection) {
			switch s.Nodes[0].DataAtom {
			case atom.Dt:
				term, haveTerm = CellText(s), true
			case atom.Dd:
				if haveTerm {
					pairs = append(pairs, [2]string{term, CellText(s)})
				}
			}
		})
	})
	return pairs
}

// ExtractPairs returns table pairs followed by definition list pairs.
func ExtractPairs(doc *goquery.Document) [][2]string {
	return append(TablePairs(doc), DefinitionPairs(doc)...)
}
