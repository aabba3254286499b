package catalog

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractOfferPrice(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		want   float64
		wantOK bool
	}{
		{
			name: "numeric price",
			page: `<html><head><script type="application/ld+json">
				{"@type":"Product","name":"Shoe","offers":{"@type":"Offer","price":449.90}}
			</script></head><body></body></html>`,
			want:   449.90,
			wantOK: true,
		},
		{
			name: "string price",
			page: `<html><head><script type="application/ld+json">
				{"@type":"Product","offers":{"price":"299.99"}}
			</script></head></html>`,
			want:   299.99,
			wantOK: true,
		},
		{
			name: "aggregate offer low price",
			page: `<html><head><script type="application/ld+json">
				{"@type":"Product","offers":{"lowPrice":150,"highPrice":300}}
			</script></head></html>`,
			want:   150,
			wantOK: true,
		},
		{
			name: "array of ld entities",
			page: `<html><head><script type="application/ld+json">
				[{"@type":"BreadcrumbList"},{"@type":"Product","offers":{"price":89.50}}]
			</script></head></html>`,
			want:   89.50,
			wantOK: true,
		},
		{
			name: "first product wins among multiple scripts",
			page: `<html><head>
				<script type="application/ld+json">{"@type":"Organization"}</script>
				<script type="application/ld+json">{"@type":"Product","offers":{"price":10}}</script>
				<script type="application/ld+json">{"@type":"Product","offers":{"price":20}}</script>
			</head></html>`,
			want:   10,
			wantOK: true,
		},
		{
			name:   "no ld+json",
			page:   `<html><body><p>449.90</p></body></html>`,
			wantOK: false,
		},
		{
			name: "product without offers",
			page: `<html><head><script type="application/ld+json">
				{"@type":"Product","name":"Shoe"}
			</script></head></html>`,
			wantOK: false,
		},
		{
			name: "malformed json",
			page: `<html><head><script type="application/ld+json">{not json</script></head></html>`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractOfferPrice(tt.page)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 0.001 {
				t.Errorf("price = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPagePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nAllow: /\n")
			return
		}
		fmt.Fprint(w, `<html><head><script type="application/ld+json">
			{"@type":"Product","offers":{"price":777.77}}
		</script></head></html>`)
	}))
	defer srv.Close()

	robots := NewRobotsChecker(srv.Client(), true)
	pc := NewPageClient(srv.Client(), robots)

	price, err := pc.PagePrice(context.Background(), srv.URL+"/product/1")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(price-777.77) > 0.001 {
		t.Errorf("price = %v, want 777.77", price)
	}
}

func TestPagePriceBlockedByRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
			return
		}
		t.Error("page fetched despite robots disallow")
	}))
	defer srv.Close()

	robots := NewRobotsChecker(srv.Client(), true)
	pc := NewPageClient(srv.Client(), robots)

	if _, err := pc.PagePrice(context.Background(), srv.URL+"/product/1"); err == nil {
		t.Fatal("expected a robots error")
	}
}

func TestPagePriceNoOffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body>no structured data here</body></html>`)
	}))
	defer srv.Close()

	robots := NewRobotsChecker(srv.Client(), true)
	pc := NewPageClient(srv.Client(), robots)

	if _, err := pc.PagePrice(context.Background(), srv.URL+"/p"); err == nil {
		t.Fatal("expected an error when the page has no offer")
	}
}
