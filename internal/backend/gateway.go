// Package backend is the sync gateway to the Bazenda price-tracking
// service. Every call attaches the device identity, posts a keyed form,
// and reports success as a bool: nothing here returns an error to the
// caller, because the local favorites map stays authoritative whether or
// not the backend heard about a change.
package backend

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lukman83/bazenda-cli/internal/httputil"
	"github.com/lukman83/bazenda-cli/internal/models"
)

// DeviceIDSource resolves the stable per-install device id.
type DeviceIDSource interface {
	DeviceID() (string, error)
}

// Gateway issues requests against the /notifications endpoints.
type Gateway struct {
	client     *http.Client
	baseURL    string
	ids        DeviceIDSource
	platform   string
	appVersion string
}

// NewGateway creates a Gateway.
func NewGateway(client *http.Client, baseURL string, ids DeviceIDSource, platform, appVersion string) *Gateway {
	return &Gateway{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		ids:        ids,
		platform:   platform,
		appVersion: appVersion,
	}
}

// successResponse is the minimal envelope every mutation endpoint returns.
type successResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RegisterDevice registers this install for push delivery.
func (g *Gateway) RegisterDevice(ctx context.Context, pushToken string) bool {
	form := url.Values{}
	form.Set("push_token", pushToken)
	form.Set("platform", g.platform)
	form.Set("app_version", g.appVersion)
	return g.post(ctx, "/notifications/register-device", form)
}

// UnregisterDevice deactivates push delivery for this install.
func (g *Gateway) UnregisterDevice(ctx context.Context, pushToken string) bool {
	form := url.Values{}
	form.Set("push_token", pushToken)
	return g.post(ctx, "/notifications/unregister-device", form)
}

// AddFavorite records one favorite on the backend.
func (g *Gateway) AddFavorite(ctx context.Context, productID string, currentPrice float64) bool {
	form := url.Values{}
	form.Set("product_id", productID)
	form.Set("current_price", strconv.FormatFloat(currentPrice, 'f', 2, 64))
	return g.post(ctx, "/notifications/add-favorite", form)
}

// RemoveFavorite removes one favorite on the backend.
func (g *Gateway) RemoveFavorite(ctx context.Context, productID string) bool {
	form := url.Values{}
	form.Set("product_id", productID)
	return g.post(ctx, "/notifications/remove-favorite", form)
}

// SyncFavorites replaces the backend's favorite set for this device in
// one call. The list rides as a JSON-encoded form field.
func (g *Gateway) SyncFavorites(ctx context.Context, favorites []models.FavoriteRef) bool {
	if favorites == nil {
		favorites = []models.FavoriteRef{}
	}
	payload, err := json.Marshal(favorites)
	if err != nil {
		log.Printf("backend: encode favorites failed: %v", err)
		return false
	}
	form := url.Values{}
	form.Set("favorites", string(payload))
	return g.post(ctx, "/notifications/sync-favorites", form)
}

// Notifications fetches a page of stored notifications for this device.
func (g *Gateway) Notifications(ctx context.Context, limit, offset int, unreadOnly bool) (models.NotificationsPage, bool) {
	if limit <= 0 {
		limit = 50
	}
	form := url.Values{}
	form.Set("limit", strconv.Itoa(limit))
	form.Set("offset", strconv.Itoa(offset))
	form.Set("unread_only", strconv.FormatBool(unreadOnly))

	var page models.NotificationsPage
	if !g.postInto(ctx, "/notifications/get-notifications", form, &page) {
		return models.NotificationsPage{Notifications: []models.Notification{}}, false
	}
	return page, page.Success
}

// MarkAsRead marks one notification as read.
func (g *Gateway) MarkAsRead(ctx context.Context, notificationID int64) bool {
	form := url.Values{}
	form.Set("notification_id", strconv.FormatInt(notificationID, 10))
	return g.post(ctx, "/notifications/mark-as-read", form)
}

// MarkAllRead marks every notification for this device as read.
func (g *Gateway) MarkAllRead(ctx context.Context) bool {
	return g.post(ctx, "/notifications/mark-all-read", url.Values{})
}

// DeleteNotification deletes one notification.
func (g *Gateway) DeleteNotification(ctx context.Context, notificationID int64) bool {
	form := url.Values{}
	form.Set("notification_id", strconv.FormatInt(notificationID, 10))
	return g.post(ctx, "/notifications/delete-notification", form)
}

// post sends a keyed form and reports the backend's success flag.
func (g *Gateway) post(ctx context.Context, path string, form url.Values) bool {
	var resp successResponse
	if !g.postInto(ctx, path, form, &resp) {
		return false
	}
	if !resp.Success && resp.Error != "" {
		log.Printf("backend: %s rejected: %s", path, resp.Error)
	}
	return resp.Success
}

// postInto sends a keyed form with the device id attached and decodes
// the JSON response into out. A 404 is logged distinctly because it
// means the endpoint is not provisioned, not that the network flaked.
func (g *Gateway) postInto(ctx context.Context, path string, form url.Values, out any) bool {
	deviceID, err := g.ids.DeviceID()
	if err != nil {
		log.Printf("backend: no device id for %s: %v", path, err)
		return false
	}
	form.Set("device_id", deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("backend: build request %s: %v", path, err)
		return false
	}
	for k, v := range httputil.APIHeaders() {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("backend: %s failed: %v", path, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("backend: %s returned 404: endpoint not provisioned, check backend deployment", path)
		return false
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("backend: %s returned status %d", path, resp.StatusCode)
		return false
	}

	if err := httputil.DecodeJSON(resp, out); err != nil {
		log.Printf("backend: %s: %v", path, err)
		return false
	}
	return true
}
