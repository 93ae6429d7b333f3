package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sagafalabella/scraper/internal/config"
	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/proxy"
)

func testConfig(baseURL string) config.CatalogConfig {
	return config.CatalogConfig{
		BaseURL:     baseURL,
		ListingPath: "/s/browse/v1/listing/pe",
		PID:         "pid-1",
		Timeout:     5,
		UserAgent:   "test-agent",
	}
}

var food = domain.CategoryDescriptor{ID: "CATG15475", Animal: domain.AnimalDog, Label: "Alimentos", Slug: "Alimento-para-perros"}

func TestGetListingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s/browse/v1/listing/pe", r.URL.Path)
		assert.Equal(t, "CATG15475", r.URL.Query().Get("categoryId"))
		assert.Equal(t, "Alimento-para-perros", r.URL.Query().Get("categoryName"))
		assert.Equal(t, "pid-1", r.URL.Query().Get("pid"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"data":{"results":[{"skuId":"S1"},{"skuId":"S2"}]}}`)
		case "2":
			fmt.Fprint(w, `{"data":{"results":[]}}`)
		default:
			fmt.Fprint(w, `{"data":{}}`)
		}
	}))
	defer server.Close()

	c := NewFalabellaClient(testConfig(server.URL), domain.DefaultCatalog(), nil)

	page, err := c.GetListingPage(context.Background(), food, 1)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, 1, page.PageNumber)
	assert.Len(t, page.Entries, 2)
	assert.Equal(t, food, page.Category)

	page, err = c.GetListingPage(context.Background(), food, 2)
	assert.NoError(t, err)
	assert.Nil(t, page)

	page, err = c.GetListingPage(context.Background(), food, 3)
	assert.NoError(t, err)
	assert.Nil(t, page)
}

func TestGetListingPageFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			status:  http.StatusInternalServerError,
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			status:  http.StatusNotFound,
		},
		{
			name:    "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `<html>maintenance</html>`) },
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			status:  http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewFalabellaClient(testConfig(server.URL), nil, nil)
			page, err := c.GetListingPage(context.Background(), food, 1)
			assert.Nil(t, page)

			var fetchErr *domain.FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, tt.status, fetchErr.StatusCode)
		})
	}
}

func TestGetProductDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, productPageHTML)
	}))
	defer server.Close()

	c := NewFalabellaClient(testConfig(server.URL), domain.DefaultCatalog(), proxy.NewStaticSupplier(nil))

	details, err := c.GetProductDetails(context.Background(), "S1", server.URL+"/product/1")
	require.NoError(t, err)
	assert.Equal(t, "Higiene y cuidados para perros", *details.Category)
	assert.Equal(t, "Antiparasitarios", *details.Subcategory)

	details, err = c.GetProductDetails(context.Background(), "S2", server.URL+"/missing")
	assert.Error(t, err)
	assert.True(t, details.IsEmpty())
}
