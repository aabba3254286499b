package catalog

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker caches and checks robots.txt rules per shop domain
// before the page fallback fetches a third-party product page.
type RobotsChecker struct {
	mu       sync.RWMutex
	rules    map[string]*robotstxt.RobotsData
	expiry   map[string]time.Time
	client   *http.Client
	cacheTTL time.Duration
	enabled  bool
}

// NewRobotsChecker creates a robots.txt checker. When disabled it allows
// everything.
func NewRobotsChecker(client *http.Client, enabled bool) *RobotsChecker {
	return &RobotsChecker{
		rules:    make(map[string]*robotstxt.RobotsData),
		expiry:   make(map[string]time.Time),
		client:   client,
		cacheTTL: time.Hour,
		enabled:  enabled,
	}
}

// IsAllowed checks whether the given URL may be fetched.
func (r *RobotsChecker) IsAllowed(userAgent, rawURL string) bool {
	if r == nil || !r.enabled {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	data, err := r.getRobots(u.Scheme + "://" + u.Host)
	if err != nil {
		// No readable robots.txt means no stated objection.
		return true
	}
	return data.FindGroup(userAgent).Test(u.Path)
}

func (r *RobotsChecker) getRobots(origin string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.rules[origin]
	exp := r.expiry[origin]
	r.mu.RUnlock()
	if ok && time.Now().Before(exp) {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if data, ok := r.rules[origin]; ok && time.Now().Before(r.expiry[origin]) {
		return data, nil
	}

	resp, err := r.client.Get(origin + "/robots.txt")
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	// A 4xx robots.txt means no stated objection; 5xx means crawl denied.
	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.rules[origin] = data
	r.expiry[origin] = time.Now().Add(r.cacheTTL)
	return data, nil
}
