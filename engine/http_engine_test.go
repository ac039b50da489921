package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPEngine_FetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("custom header not forwarded")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title> Корпорации </title></head><body><div class="card"></div></body></html>`))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine("").Fetch(context.Background(), &FetchRequest{
		URL:     srv.URL + "/corps.html",
		Headers: map[string]string{"X-Test": "1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "Корпорации" {
		t.Errorf("title = %q", res.Title)
	}
	if res.StatusCode != http.StatusOK || res.EngineName != "http" {
		t.Errorf("result = %+v", res)
	}
}

func TestHTTPEngine_RejectsNonHTML(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ct     string
	}{
		{"not found", http.StatusNotFound, "text/html"},
		{"json", http.StatusOK, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.ct)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("{}"))
			}))
			defer srv.Close()

			_, err := NewHTTPEngine("").Fetch(context.Background(), &FetchRequest{URL: srv.URL})
			if !errors.Is(err, ErrNotHTML) {
				t.Fatalf("err = %v, want ErrNotHTML", err)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<title>Tier list</title>", "Tier list"},
		{"<html><body>no title</body></html>", ""},
		{"<title></title>", ""},
	}
	for _, tt := range tests {
		if got := extractTitle(tt.in); got != tt.want {
			t.Errorf("extractTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
