package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sagafalabella/scraper/internal/config"
	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/proxy"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CatalogClient talks to the storefront listing API and product pages
type CatalogClient interface {
	GetListingPage(ctx context.Context, category domain.CategoryDescriptor, pageNumber int) (*domain.ListingPage, error)
	GetProductDetails(ctx context.Context, sku, productURL string) (domain.DetailInfo, error)
}

type falabellaClient struct {
	rl            ratelimit.Limiter
	config        config.CatalogConfig
	listingURL    string
	httpClient    *resty.Client
	parser        *detailParser
	proxySupplier proxy.Supplier
}

type listingResponse struct {
	Data struct {
		Results []json.RawMessage `json:"results"`
	} `json:"data"`
}

func NewFalabellaClient(cfg config.CatalogConfig, catalog *domain.Catalog, proxySupplier proxy.Supplier) CatalogClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept-Language", "es-PE,es;q=0.9")

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &falabellaClient{
		rl:            rl,
		config:        cfg,
		listingURL:    strings.TrimRight(cfg.BaseURL, "/") + cfg.ListingPath,
		httpClient:    client,
		parser:        newDetailParser(catalog),
		proxySupplier: proxySupplier,
	}
}

// GetListingPage returns the raw entries of one listing page. An empty page is
// returned as (nil, nil); any failure is returned as a *domain.FetchError.
func (c *falabellaClient) GetListingPage(ctx context.Context, category domain.CategoryDescriptor, pageNumber int) (*domain.ListingPage, error) {
	body, err := c.fetch(ctx, c.listingURL, map[string]string{
		"page":         strconv.Itoa(pageNumber),
		"categoryId":   category.ID,
		"categoryName": category.Slug,
		"pid":          c.config.PID,
	}, "application/json")
	if err != nil {
		return nil, err
	}

	var payload listingResponse
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, &domain.FetchError{URL: c.listingURL, Err: fmt.Errorf("decode listing: %w", err)}
	}

	if len(payload.Data.Results) == 0 {
		return nil, nil
	}

	log.Debugf("Fetched page %d of %s/%s with %d entries", pageNumber, category.Animal, category.ID, len(payload.Data.Results))

	return &domain.ListingPage{
		PageNumber: pageNumber,
		Category:   category,
		Entries:    payload.Data.Results,
	}, nil
}

// GetProductDetails downloads a product page and extracts its breadcrumb
// categories and description. A fetch failure returns an empty DetailInfo with
// the error; parse problems only leave the affected field empty.
func (c *falabellaClient) GetProductDetails(ctx context.Context, sku, productURL string) (domain.DetailInfo, error) {
	html, err := c.fetch(ctx, productURL, nil, "text/html,application/xhtml+xml")
	if err != nil {
		return domain.DetailInfo{}, err
	}

	details, err := c.parser.ParseProductPage(html)
	if err != nil {
		return domain.DetailInfo{}, fmt.Errorf("failed to parse product page for sku %s: %w", sku, err)
	}

	if details.Description == nil {
		log.WithFields(log.Fields{"sku": sku, "url": productURL}).Warn("⚠️ No description found on product page")
	}

	return details, nil
}

func (c *falabellaClient) fetch(ctx context.Context, url string, query map[string]string, accept string) (string, error) {
	c.rl.Take()

	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", accept)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", &domain.FetchError{URL: url, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		c.rotateProxy(resp.StatusCode())
		return "", &domain.FetchError{URL: url, StatusCode: resp.StatusCode(), Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	body := resp.String()
	if strings.TrimSpace(body) == "" {
		return "", &domain.FetchError{URL: url, StatusCode: resp.StatusCode(), Err: domain.ErrEmptyResponse}
	}

	return body, nil
}

// rotateProxy switches to the next proxy when the storefront starts refusing us.
func (c *falabellaClient) rotateProxy(status int) {
	if status != http.StatusForbidden && status != http.StatusTooManyRequests {
		return
	}
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return
	}
	if next := c.proxySupplier.Get(); next != "" {
		log.Warnf("🚫 Storefront answered %d, switching proxy to %s", status, next)
		c.httpClient.SetProxy(next)
	}
}
