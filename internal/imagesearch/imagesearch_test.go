package imagesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPexelsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "pexels-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("query"); got != "supreme court" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "5" {
			t.Errorf("per_page = %q", got)
		}
		w.Write([]byte(`{"photos":[{"url":"https://pexels.com/p/1","photographer":"A. Rao","alt":"courtroom",
			"src":{"large":"https://img/large.jpg","small":"https://img/small.jpg"}}]}`))
	}))
	defer srv.Close()

	c, err := NewPexelsClient("pexels-key", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	c.baseURL = srv.URL

	got, err := c.Search(context.Background(), Query{Text: "supreme court"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("results: %+v", got)
	}
	r := got[0]
	if r.URL != "https://img/large.jpg" || r.ThumbnailURL != "https://img/small.jpg" ||
		r.Photographer != "A. Rao" || r.SourcePage != "https://pexels.com/p/1" {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestUnsplashSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Client-ID unsplash-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"results":[{"description":"","alt_description":"gavel on desk",
			"urls":{"regular":"https://img/regular.jpg","small":"https://img/small.jpg"},
			"links":{"html":"https://unsplash.com/p/1"},"user":{"name":"B. Iyer"}}]}`))
	}))
	defer srv.Close()

	c, err := NewUnsplashClient("unsplash-key", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	c.baseURL = srv.URL

	got, err := c.Search(context.Background(), Query{Text: "gavel", PerPage: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Description != "gavel on desk" || got[0].Photographer != "B. Iyer" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := NewPexelsClient("k", srv.Client())
	c.baseURL = srv.URL

	_, err := c.Search(context.Background(), Query{Text: "x"})
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusTooManyRequests || se.Provider != "pexels" {
		t.Fatalf("want StatusError 429, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	if _, err := NewPexelsClient("", nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("pexels: %v", err)
	}
	if _, err := NewUnsplashClient("", nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("unsplash: %v", err)
	}
}

func TestPerPageClamp(t *testing.T) {
	if got := perPage(Query{}); got != 5 {
		t.Fatalf("default = %d", got)
	}
	if got := perPage(Query{PerPage: 100}); got != 30 {
		t.Fatalf("cap = %d", got)
	}
}
