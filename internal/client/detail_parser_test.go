package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagafalabella/scraper/internal/domain"
)

const productPageHTML = `<html><head>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"productData":{"longDescription":"&lt;p&gt;Pipeta &lt;b&gt;antipulgas&lt;/b&gt;&lt;/p&gt;","description":"corta"}}}}
</script>
</head><body>
<ol class="Breadcrumbs-module_breadcrumb__b47ha">
  <li><a href="/falabella-pe">Home</a></li>
  <li><a href="/falabella-pe/category/cat40712">Mascotas - Perros</a></li>
  <li><a href="/falabella-pe/category/CATG15478">Higiene y cuidados para perros</a></li>
  <li><a class="Breadcrumbs-module_selected-bread-crumb__ZPj02" href="/falabella-pe/category/cat999/Antiparasitarios">Antiparasitarios</a></li>
</ol>
</body></html>`

func TestParseProductPage(t *testing.T) {
	p := newDetailParser(domain.DefaultCatalog())

	details, err := p.ParseProductPage(productPageHTML)
	require.NoError(t, err)

	require.NotNil(t, details.Category)
	assert.Equal(t, "Higiene y cuidados para perros", *details.Category)
	require.NotNil(t, details.Subcategory)
	assert.Equal(t, "Antiparasitarios", *details.Subcategory)
	require.NotNil(t, details.Description)
	assert.Equal(t, "Pipeta antipulgas", *details.Description)
}

func TestParseProductPageVariants(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		category    string
		subcategory string
		description string
	}{
		{
			name: "description fallback when long description is empty",
			html: `<script id="__NEXT_DATA__">{"props":{"pageProps":{"productData":{"longDescription":"","description":"<div>Cama ortopédica</div>"}}}}</script>`,
			description: "Cama ortopédica",
		},
		{
			name: "malformed page data",
			html: `<ol class="Breadcrumbs-module_breadcrumb__b47ha"><a>Home</a><a>Mascotas</a><a>Camas</a></ol>
<script id="__NEXT_DATA__">{not json</script>`,
			category: "Camas",
		},
		{
			name: "non string description ignored",
			html: `<script id="__NEXT_DATA__">{"props":{"pageProps":{"productData":{"longDescription":{"a":1}}}}}</script>`,
		},
		{
			name: "too few breadcrumbs",
			html: `<ol class="Breadcrumbs-module_breadcrumb__b47ha"><a>Home</a><a>Mascotas</a></ol>`,
		},
		{
			name: "catalog lookup when breadcrumbs are missing",
			html: `<a class="Breadcrumbs-module_selected-bread-crumb__ZPj02" href="/falabella-pe/category/catg15472/Arena">Arena</a>`,
			category: "Arena",
		},
		{
			name: "unknown category id",
			html: `<a class="Breadcrumbs-module_selected-bread-crumb__ZPj02" href="/falabella-pe/category/CAT1/x">x</a>`,
		},
		{
			name: "empty document",
			html: ``,
		},
	}

	p := newDetailParser(domain.DefaultCatalog())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, err := p.ParseProductPage(tt.html)
			require.NoError(t, err)

			assertOptional(t, tt.category, details.Category)
			assertOptional(t, tt.subcategory, details.Subcategory)
			assertOptional(t, tt.description, details.Description)
		})
	}
}

func assertOptional(t *testing.T, expected string, got *string) {
	t.Helper()
	if expected == "" {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.Equal(t, expected, *got)
}
