// Package catalog is the client for the Bazenda product search API.
// All queries go through the single /get_results endpoint as keyed
// multipart forms; a response with zero results is a normal outcome,
// not an error.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lukman83/bazenda-cli/internal/httputil"
	"github.com/lukman83/bazenda-cli/internal/models"
	"github.com/lukman83/bazenda-cli/internal/progress"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// SearchOpts narrows a catalog query.
type SearchOpts struct {
	Page     int
	SortBy   string // API sort key, "0" = relevance
	PriceMin float64
	PriceMax float64
	Genders  []string
}

// Client issues catalog queries.
type Client struct {
	client        *http.Client
	baseURL       string
	limiter       *rate.Limiter
	maxConcurrent int
}

// NewClient creates a catalog client. The limiter paces multi-page
// fan-out; per-request pacing also rides on the transport.
func NewClient(client *http.Client, baseURL string, limiter *rate.Limiter, maxConcurrent int) *Client {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Client{
		client:        client,
		baseURL:       baseURL,
		limiter:       limiter,
		maxConcurrent: maxConcurrent,
	}
}

// Search runs a text query. Returns the page of products and the total
// result count; both are empty (with a nil error) when nothing matched.
func (c *Client) Search(ctx context.Context, query string, opts SearchOpts) ([]models.Product, int, error) {
	form := c.baseForm(query, opts)
	form["search_type"] = "text"
	resp, err := c.postForm(ctx, form, nil)
	if err != nil {
		return nil, 0, err
	}
	return resp.Results, resp.TotalCount, nil
}

// Trending fetches the trend feed (empty query, relevance sort).
func (c *Client) Trending(ctx context.Context, page int) ([]models.Product, error) {
	products, _, err := c.Search(ctx, "", SearchOpts{Page: page})
	return products, err
}

// Radar fetches the radar feed.
func (c *Client) Radar(ctx context.Context) ([]models.Product, error) {
	products, _, err := c.Search(ctx, "radar", SearchOpts{Page: 1})
	return products, err
}

// VisualSearch uploads an image and returns visually similar products.
// The matching itself is entirely server-side; this call only ships the
// image and parses the standard result envelope.
func (c *Client) VisualSearch(ctx context.Context, imagePath string, opts SearchOpts) ([]models.Product, int, error) {
	img, err := os.Open(imagePath)
	if err != nil {
		return nil, 0, fmt.Errorf("open image: %w", err)
	}
	defer img.Close()

	form := c.baseForm("", opts)
	form["search_type"] = "visual"
	resp, err := c.postForm(ctx, form, &fileField{
		field:    "search_image",
		filename: filepath.Base(imagePath),
		reader:   img,
	})
	if err != nil {
		return nil, 0, err
	}
	if !resp.Success && resp.Message != "" {
		return nil, 0, fmt.Errorf("visual search rejected: %s", resp.Message)
	}
	return resp.Results, resp.TotalCount, nil
}

// SearchAll fetches multiple result pages concurrently, paced by the
// shared rate limiter.
func (c *Client) SearchAll(ctx context.Context, query string, pages int, opts SearchOpts) ([]models.Product, error) {
	if pages <= 0 {
		pages = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	results := make([][]models.Product, pages)
	for i := 0; i < pages; i++ {
		g.Go(func() error {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			pageOpts := opts
			pageOpts.Page = i + 1
			products, _, err := c.Search(ctx, query, pageOpts)
			if err != nil {
				return err
			}
			progress.Report(ctx, fmt.Sprintf("Fetched page %d (%d products)", i+1, len(products)))
			results[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.Product
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (c *Client) baseForm(query string, opts SearchOpts) map[string]any {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "0"
	}
	form := map[string]any{
		"query":   query,
		"page":    strconv.Itoa(page),
		"sort_by": sortBy,
	}
	if opts.PriceMin > 0 {
		form["price_min"] = strconv.FormatFloat(opts.PriceMin, 'f', -1, 64)
	}
	if opts.PriceMax > 0 {
		form["price_max"] = strconv.FormatFloat(opts.PriceMax, 'f', -1, 64)
	}
	if len(opts.Genders) > 0 {
		form["gender_select[]"] = opts.Genders
	}
	return form
}

type fileField struct {
	field    string
	filename string
	reader   io.Reader
}

// postForm builds the multipart body, posts it to /get_results and
// decodes the response envelope.
func (c *Client) postForm(ctx context.Context, fields map[string]any, file *fileField) (*models.SearchResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, val := range fields {
		switch v := val.(type) {
		case string:
			if err := w.WriteField(key, v); err != nil {
				return nil, fmt.Errorf("write form field %s: %w", key, err)
			}
		case []string:
			for _, item := range v {
				if err := w.WriteField(key, item); err != nil {
					return nil, fmt.Errorf("write form field %s: %w", key, err)
				}
			}
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.reader); err != nil {
			return nil, fmt.Errorf("copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	body := buf.Bytes()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get_results", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	for k, v := range httputil.APIHeaders() {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := httputil.DoWithRetry(c.client, req, 2)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog response status %d", resp.StatusCode)
	}

	var envelope models.SearchResponse
	if err := httputil.DecodeJSON(resp, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}
