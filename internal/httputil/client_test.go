package httputil

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestDoWithRetryRecoversFromServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := DoWithRetry(srv.Client(), req, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func TestDoWithRetryResetsBody(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	payload := "field=value"
	req, _ := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(payload))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(payload)), nil
	}

	resp, err := DoWithRetry(srv.Client(), req, 1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if len(bodies) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(bodies))
	}
	if bodies[1] != payload {
		t.Errorf("retried body = %q, want %q", bodies[1], payload)
	}
}

func TestDoWithRetryGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := DoWithRetry(srv.Client(), req, 1); err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := DoWithRetry(srv.Client(), req, 3)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, a 4xx must not retry", attempts.Load())
	}
}

func TestReadBodyPlain(t *testing.T) {
	resp := &http.Response{
		Body:   io.NopCloser(strings.NewReader("hello")),
		Header: http.Header{},
	}
	body, err := ReadBody(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
}

func TestReadBodyGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("compressed payload"))
	zw.Close()

	resp := &http.Response{
		Body:   io.NopCloser(&buf),
		Header: http.Header{"Content-Encoding": {"gzip"}},
	}
	body, err := ReadBody(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "compressed payload" {
		t.Errorf("body = %q", body)
	}
}

func TestReadBodyBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte("brotli payload"))
	bw.Close()

	resp := &http.Response{
		Body:   io.NopCloser(&buf),
		Header: http.Header{"Content-Encoding": {"br"}},
	}
	body, err := ReadBody(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "brotli payload" {
		t.Errorf("body = %q", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	resp := &http.Response{
		Body:   io.NopCloser(strings.NewReader(`{"success":true,"total_count":7}`)),
		Header: http.Header{},
	}
	var out struct {
		Success    bool `json:"success"`
		TotalCount int  `json:"total_count"`
	}
	if err := DecodeJSON(resp, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.TotalCount != 7 {
		t.Errorf("decoded = %+v", out)
	}
}
