package textutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var horizontalSpace = regexp.MustCompile(`[ \t]+`)

// CleanHTML turns a fragment of HTML, escaped or not, into a single line of
// readable text. Script, style and noscript content is discarded. Blank
// results are reported as nil.
func CleanHTML(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(text)))
	if err != nil {
		return nil
	}
	doc.Find("script, style, noscript").Remove()

	var pieces []string
	collectText(doc.Selection, &pieces)

	joined := horizontalSpace.ReplaceAllString(strings.Join(pieces, "\n"), " ")

	lines := make([]string, 0, len(pieces))
	for _, line := range strings.Split(joined, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return nil
	}
	cleaned := strings.Join(lines, " ")
	return &cleaned
}

func collectText(sel *goquery.Selection, pieces *[]string) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			if t := strings.TrimSpace(s.Text()); t != "" {
				*pieces = append(*pieces, t)
			}
			return
		}
		collectText(s, pieces)
	})
}
