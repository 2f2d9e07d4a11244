package options

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPCatalog_Fetch(t *testing.T) {
	var gotType, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.URL.Query().Get("type")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/ld+json")
		_, _ = w.Write([]byte(`{"@graph": [{"@id": "https://example.org/companies/1", "name": "ACME"}]}`))
	}))
	defer srv.Close()

	catalog, err := NewHTTPCatalog(srv.URL+"/catalog", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	payload, err := catalog.Fetch(context.Background(), "https://onerecord.iata.org/ns/cargo#Company")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotType != "https://onerecord.iata.org/ns/cargo#Company" {
		t.Fatalf("type parameter = %q", gotType)
	}
	if gotAccept == "" {
		t.Fatalf("Accept header not sent")
	}

	entries, err := Normalize(payload)
	if err != nil || len(entries) != 1 {
		t.Fatalf("normalize: %v %v", entries, err)
	}
}

func TestHTTPCatalog_Placeholder(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	catalog, err := NewHTTPCatalog(srv.URL + "/lookup?iri={iri}")
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if _, err := catalog.Fetch(context.Background(), "http://example.org/a#B"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "iri=http%3A%2F%2Fexample.org%2Fa%23B" {
		t.Fatalf("query = %q", gotPath)
	}
}

func TestHTTPCatalog_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "broken" {
			_, _ = w.Write([]byte(`{not json`))
			return
		}
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	catalog, _ := NewHTTPCatalog(srv.URL)
	if _, err := catalog.Fetch(context.Background(), "x"); err == nil {
		t.Fatalf("expected status error")
	}
	if _, err := catalog.Fetch(context.Background(), "broken"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if _, err := NewHTTPCatalog(" "); err == nil {
		t.Fatalf("empty endpoint accepted")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    []string
	}{
		{"single object", map[string]any{"@id": "a"}, []string{"a"}},
		{"graph", map[string]any{"@graph": []any{map[string]any{"@id": "a"}, map[string]any{}, map[string]any{"@id": ""}, "x", map[string]any{"id": "b"}}}, []string{"a", "b"}},
		{"graph object", map[string]any{"@graph": map[string]any{"@id": "g"}}, []string{"g"}},
		{"array", []any{map[string]any{"@id": map[string]any{"@id": "nested"}}}, []string{"nested"}},
		{"nil", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := Normalize(tc.payload)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			var ids []string
			for _, entry := range entries {
				ids = append(ids, entryID(entry))
			}
			if diff := cmp.Diff(tc.want, ids); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := Normalize("text"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
