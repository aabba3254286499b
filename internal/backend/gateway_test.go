package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lukman83/bazenda-cli/internal/models"
)

type staticID string

func (s staticID) DeviceID() (string, error) { return string(s), nil }

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := NewGateway(srv.Client(), srv.URL, staticID("android_1234_abc"), "android", "1.0.0")
	return g, srv
}

func okJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"success":true}`))
}

func TestAddFavoriteForm(t *testing.T) {
	var got url.Values
	var path string
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = r.PostForm
		okJSON(w)
	})

	if !g.AddFavorite(context.Background(), "p42", 199.9) {
		t.Fatal("AddFavorite returned false")
	}
	if path != "/notifications/add-favorite" {
		t.Errorf("path = %s", path)
	}
	if got.Get("device_id") != "android_1234_abc" {
		t.Errorf("device_id = %q, want the provider's id", got.Get("device_id"))
	}
	if got.Get("product_id") != "p42" {
		t.Errorf("product_id = %q", got.Get("product_id"))
	}
	if got.Get("current_price") != "199.90" {
		t.Errorf("current_price = %q, want 199.90", got.Get("current_price"))
	}
}

func TestSyncFavoritesEncodesJSONField(t *testing.T) {
	var got url.Values
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm
		okJSON(w)
	})

	refs := []models.FavoriteRef{
		{ProductID: "a", CurrentPrice: 10},
		{ProductID: "b", CurrentPrice: 20.5},
	}
	if !g.SyncFavorites(context.Background(), refs) {
		t.Fatal("SyncFavorites returned false")
	}

	var decoded []models.FavoriteRef
	if err := json.Unmarshal([]byte(got.Get("favorites")), &decoded); err != nil {
		t.Fatalf("favorites field is not JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].ProductID != "b" || decoded[1].CurrentPrice != 20.5 {
		t.Errorf("decoded favorites = %+v", decoded)
	}
}

func TestSyncFavoritesNilBecomesEmptyList(t *testing.T) {
	var raw string
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		raw = r.PostForm.Get("favorites")
		okJSON(w)
	})

	g.SyncFavorites(context.Background(), nil)
	if raw != "[]" {
		t.Errorf("favorites field = %q, want [] not null", raw)
	}
}

func TestRegisterDeviceForm(t *testing.T) {
	var got url.Values
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm
		okJSON(w)
	})

	if !g.RegisterDevice(context.Background(), "tok123") {
		t.Fatal("RegisterDevice returned false")
	}
	if got.Get("push_token") != "tok123" {
		t.Errorf("push_token = %q", got.Get("push_token"))
	}
	if got.Get("platform") != "android" || got.Get("app_version") != "1.0.0" {
		t.Errorf("platform/app_version = %q/%q", got.Get("platform"), got.Get("app_version"))
	}
}

func TestBackendRejectionIsFalse(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"unknown product"}`))
	})

	if g.RemoveFavorite(context.Background(), "ghost") {
		t.Error("a success:false response must report failure")
	}
}

func TestNotFoundIsFalse(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if g.AddFavorite(context.Background(), "p1", 10) {
		t.Error("404 must report failure")
	}
}

func TestNetworkFailureIsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	g := NewGateway(&http.Client{Timeout: time.Second}, srv.URL, staticID("d"), "android", "1.0.0")

	if g.MarkAllRead(context.Background()) {
		t.Error("a refused connection must report failure")
	}
}

func TestNotificationsPaging(t *testing.T) {
	var got url.Values
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.NotificationsPage{
			Success:     true,
			TotalCount:  2,
			UnreadCount: 1,
			Notifications: []models.Notification{
				{ID: 7, Title: "Price dropped!", IsRead: 0},
				{ID: 6, Title: "Price dropped!", IsRead: 1},
			},
		})
	})

	page, ok := g.Notifications(context.Background(), 10, 5, true)
	if !ok {
		t.Fatal("Notifications returned false")
	}
	if got.Get("limit") != "10" || got.Get("offset") != "5" || got.Get("unread_only") != "true" {
		t.Errorf("paging form = %v", got)
	}
	if len(page.Notifications) != 2 || page.Notifications[0].ID != 7 {
		t.Errorf("page = %+v", page)
	}
	if page.UnreadCount != 1 {
		t.Errorf("UnreadCount = %d, want 1", page.UnreadCount)
	}
}

func TestMarkAsReadForm(t *testing.T) {
	var got url.Values
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r.PostForm
		okJSON(w)
	})

	if !g.MarkAsRead(context.Background(), 99) {
		t.Fatal("MarkAsRead returned false")
	}
	if got.Get("notification_id") != "99" {
		t.Errorf("notification_id = %q", got.Get("notification_id"))
	}
}
