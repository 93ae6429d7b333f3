package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

const (
	validationTimeout     = 5 * time.Second
	validationConcurrency = 20
)

// Supplier hands out proxies in round-robin order
type Supplier interface {
	Get() string
	Len() int
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewStaticSupplier rotates over proxies without validating them
func NewStaticSupplier(proxies []string) Supplier {
	out := make([]string, len(proxies))
	copy(out, proxies)
	return &supplier{proxies: out}
}

// NewSupplier keeps only the proxies that can reach testURL, preserving the
// configured order.
func NewSupplier(ctx context.Context, proxies []string, testURL string) Supplier {
	if len(proxies) == 0 {
		return NewStaticSupplier(nil)
	}

	log.Infof("🔄 Testing %d proxies against %s...", len(proxies), testURL)

	reachable := make([]bool, len(proxies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(validationConcurrency)

	for i, proxyURL := range proxies {
		i, proxyURL := i, proxyURL
		g.Go(func() error {
			reachable[i] = isReachable(gctx, proxyURL, testURL)
			return nil
		})
	}
	_ = g.Wait()

	valid := make([]string, 0, len(proxies))
	for i, ok := range reachable {
		if ok {
			valid = append(valid, proxies[i])
		}
	}

	log.Infof("✅ Proxy supplier ready with %d of %d proxies", len(valid), len(proxies))
	return NewStaticSupplier(valid)
}

// Get returns the next proxy URL, or "" when none is configured
func (s *supplier) Get() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}

	proxyURL := s.proxies[s.current]
	s.current = (s.current + 1) % len(s.proxies)
	return proxyURL
}

func (s *supplier) Len() int {
	return len(s.proxies)
}

func isReachable(ctx context.Context, proxyURL, testURL string) bool {
	client := resty.New().
		SetTimeout(validationTimeout).
		SetProxy(proxyURL)

	resp, err := client.R().
		SetContext(ctx).
		Head(testURL)
	if err != nil {
		log.Debugf("❌ Proxy %s unreachable: %v", proxyURL, err)
		return false
	}
	if resp.IsError() {
		log.Debugf("❌ Proxy %s rejected with status %s", proxyURL, resp.Status())
		return false
	}
	return true
}
