package httputil

import "net/http"

// APIHeaders returns the headers sent on Bazenda API calls.
func APIHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json; charset=utf-8")
	h.Set("Accept-Encoding", "gzip, br")
	return h
}

// BrowserHeaders returns common browser-like headers, used when fetching
// third-party shop pages for the price fallback.
func BrowserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}
