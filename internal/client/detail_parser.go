package client

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/textutil"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

const (
	breadcrumbSelector         = "ol.Breadcrumbs-module_breadcrumb__b47ha a"
	selectedBreadcrumbSelector = "a.Breadcrumbs-module_selected-bread-crumb__ZPj02"
	nextDataSelector           = "script#__NEXT_DATA__"

	// site root and top-level taxonomy
	skippedBreadcrumbs = 2
)

var categoryHrefPattern = regexp.MustCompile(`/category/([^/?#]+)`)

type detailParser struct {
	catalog *domain.Catalog
}

type nextData struct {
	Props struct {
		PageProps struct {
			ProductData map[string]any `json:"productData"`
		} `json:"pageProps"`
	} `json:"props"`
}

func newDetailParser(catalog *domain.Catalog) *detailParser {
	return &detailParser{catalog: catalog}
}

// ParseProductPage extracts category, subcategory and description from a
// product page. Only an unreadable document is an error.
func (p *detailParser) ParseProductPage(html string) (domain.DetailInfo, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.DetailInfo{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var details domain.DetailInfo
	details.Category, details.Subcategory = p.extractBreadcrumbCategories(doc)
	if details.Category == nil {
		details.Category = p.lookupSelectedCategory(doc)
	}
	details.Description = p.extractDescription(doc)

	return details, nil
}

// extractBreadcrumbCategories takes the two levels after the skipped ones:
// [Home, Mascotas, Higiene, Cepillos] -> Higiene, Cepillos
func (p *detailParser) extractBreadcrumbCategories(doc *goquery.Document) (*string, *string) {
	var crumbs []string
	doc.Find(breadcrumbSelector).Each(func(_ int, s *goquery.Selection) {
		crumbs = append(crumbs, strings.TrimSpace(s.Text()))
	})

	if len(crumbs) <= skippedBreadcrumbs {
		return nil, nil
	}
	crumbs = crumbs[skippedBreadcrumbs:]

	category := domain.NullableString(crumbs[0])
	var subcategory *string
	if len(crumbs) > 1 {
		subcategory = domain.NullableString(crumbs[1])
	}
	return category, subcategory
}

// lookupSelectedCategory resolves the selected breadcrumb's category id
// through the static catalog.
func (p *detailParser) lookupSelectedCategory(doc *goquery.Document) *string {
	if p.catalog == nil {
		return nil
	}

	href, ok := doc.Find(selectedBreadcrumbSelector).First().Attr("href")
	if !ok {
		return nil
	}

	m := categoryHrefPattern.FindStringSubmatch(href)
	if m == nil {
		return nil
	}

	category, ok := p.catalog.LookupByID(m[1])
	if !ok {
		log.Debugf("Category id %s from breadcrumb is not in the catalog", m[1])
		return nil
	}
	return domain.NullableString(category.Label)
}

func (p *detailParser) extractDescription(doc *goquery.Document) *string {
	script := doc.Find(nextDataSelector).First()
	if script.Length() == 0 {
		return nil
	}

	payload := strings.TrimSpace(script.Text())
	if payload == "" {
		return nil
	}

	var data nextData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		log.Debugf("Failed to decode page data: %v", err)
		return nil
	}

	product := data.Props.PageProps.ProductData
	for _, key := range []string{"longDescription", "description"} {
		if raw, ok := product[key].(string); ok && raw != "" {
			return textutil.CleanHTML(raw)
		}
	}
	return nil
}
