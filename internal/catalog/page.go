package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lukman83/bazenda-cli/internal/httputil"
	"github.com/lukman83/bazenda-cli/internal/models"
	"golang.org/x/net/html"
)

// PageClient recovers a product's current price straight from its shop
// page when the search index no longer returns it. Pages are fetched
// with browser headers after a robots.txt check and mined for JSON-LD
// Product offers.
type PageClient struct {
	client *http.Client
	robots *RobotsChecker
}

// NewPageClient creates a PageClient. robots may be nil to skip checks.
func NewPageClient(client *http.Client, robots *RobotsChecker) *PageClient {
	return &PageClient{client: client, robots: robots}
}

// PagePrice fetches pageURL and returns the first JSON-LD offer price
// found on it.
func (p *PageClient) PagePrice(ctx context.Context, pageURL string) (float64, error) {
	headers := httputil.BrowserHeaders()
	if !p.robots.IsAllowed(headers.Get("User-Agent"), pageURL) {
		return 0, fmt.Errorf("blocked by robots.txt: %s", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := httputil.DoWithRetry(p.client, req, 1)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("shop page status %d", resp.StatusCode)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return 0, err
	}

	price, ok := extractOfferPrice(string(body))
	if !ok {
		return 0, fmt.Errorf("no JSON-LD offer price on page")
	}
	return price, nil
}

// extractOfferPrice walks the HTML for JSON-LD script blocks and pulls
// the first Product offer price out of them.
func extractOfferPrice(page string) (float64, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return 0, false
	}

	var price float64
	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, attr := range n.Attr {
				if attr.Key == "type" && attr.Val == "application/ld+json" && n.FirstChild != nil {
					if p, ok := offerPriceFromJSONLD(n.FirstChild.Data); ok {
						price, found = p, true
						return
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return price, found
}

type ldProduct struct {
	Type   string `json:"@type"`
	Offers *struct {
		Price    json.Number `json:"price"`
		LowPrice json.Number `json:"lowPrice"`
	} `json:"offers"`
}

func offerPriceFromJSONLD(data string) (float64, bool) {
	data = strings.TrimSpace(data)

	var single ldProduct
	if err := json.Unmarshal([]byte(data), &single); err == nil {
		if p, ok := productOfferPrice(single); ok {
			return p, true
		}
	}

	var many []ldProduct
	if err := json.Unmarshal([]byte(data), &many); err == nil {
		for _, item := range many {
			if p, ok := productOfferPrice(item); ok {
				return p, true
			}
		}
	}
	return 0, false
}

func productOfferPrice(item ldProduct) (float64, bool) {
	if item.Type != "Product" || item.Offers == nil {
		return 0, false
	}
	if f, err := item.Offers.Price.Float64(); err == nil && f > 0 {
		return f, true
	}
	if f, err := item.Offers.LowPrice.Float64(); err == nil && f > 0 {
		return f, true
	}
	// Some shops emit the price as a localized string.
	if f, ok := models.ParsePrice(item.Offers.Price.String()); ok && f > 0 {
		return f, true
	}
	return 0, false
}
