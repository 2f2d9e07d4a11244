package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-loform/pkg/typed"
)

// Catalog looks up instances of an object type. Implementations return either
// a single JSON object or an envelope carrying an "@graph" collection.
type Catalog interface {
	Fetch(ctx context.Context, typeIRI string) (any, error)
}

// CatalogFunc adapts a function into a Catalog.
type CatalogFunc func(ctx context.Context, typeIRI string) (any, error)

// Fetch implements Catalog.
func (fn CatalogFunc) Fetch(ctx context.Context, typeIRI string) (any, error) {
	return fn(ctx, typeIRI)
}

const iriPlaceholder = "{iri}"

// HTTPCatalog fetches catalog entries over HTTP. The endpoint either contains
// an "{iri}" placeholder replaced by the URL-encoded type IRI, or receives the
// IRI as a query parameter.
type HTTPCatalog struct {
	endpoint string
	param    string
	client   *http.Client
	timeout  time.Duration
}

var _ Catalog = (*HTTPCatalog)(nil)

// CatalogOption configures an HTTPCatalog.
type CatalogOption func(*HTTPCatalog)

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(client *http.Client) CatalogOption {
	return func(c *HTTPCatalog) {
		if client != nil {
			c.client = client
		}
	}
}

// WithQueryParam renames the query parameter carrying the type IRI.
func WithQueryParam(name string) CatalogOption {
	return func(c *HTTPCatalog) {
		if name = strings.TrimSpace(name); name != "" {
			c.param = name
		}
	}
}

// WithRequestTimeout caps each lookup.
func WithRequestTimeout(timeout time.Duration) CatalogOption {
	return func(c *HTTPCatalog) {
		c.timeout = timeout
	}
}

// NewHTTPCatalog validates endpoint and returns a catalog client.
func NewHTTPCatalog(endpoint string, options ...CatalogOption) (*HTTPCatalog, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("options: catalog endpoint is required")
	}
	probe := strings.ReplaceAll(endpoint, iriPlaceholder, "x")
	if _, err := url.ParseRequestURI(probe); err != nil {
		return nil, fmt.Errorf("options: invalid catalog endpoint %q: %w", endpoint, err)
	}

	catalog := &HTTPCatalog{
		endpoint: endpoint,
		param:    "type",
		client:   http.DefaultClient,
	}
	for _, opt := range options {
		if opt != nil {
			opt(catalog)
		}
	}
	return catalog, nil
}

// Fetch implements Catalog.
func (c *HTTPCatalog) Fetch(ctx context.Context, typeIRI string) (any, error) {
	reqURL, err := c.url(typeIRI)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	return payload, nil
}

func (c *HTTPCatalog) url(typeIRI string) (string, error) {
	if strings.Contains(c.endpoint, iriPlaceholder) {
		return strings.ReplaceAll(c.endpoint, iriPlaceholder, url.QueryEscape(typeIRI)), nil
	}
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	q := reqURL.Query()
	q.Set(c.param, typeIRI)
	reqURL.RawQuery = q.Encode()
	return reqURL.String(), nil
}

// Normalize flattens a catalog payload into its entries: a single object, an
// array of objects, or an "@graph" envelope. Empty entries are dropped. A
// payload of any other shape is reported as ErrMalformedResponse.
func Normalize(payload any) ([]map[string]any, error) {
	var items []any
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []any:
		items = v
	case map[string]any:
		if graph, ok := v[typed.KeyGraph]; ok {
			switch g := graph.(type) {
			case []any:
				items = g
			case map[string]any:
				items = []any{g}
			case nil:
			default:
				return nil, fmt.Errorf("%w: @graph is %T", ErrMalformedResponse, graph)
			}
		} else {
			items = []any{v}
		}
	default:
		return nil, fmt.Errorf("%w: payload is %T", ErrMalformedResponse, payload)
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || len(obj) == 0 || entryID(obj) == "" {
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

func entryID(obj map[string]any) string {
	for _, key := range []string{typed.KeyID, "id"} {
		if raw, ok := obj[key]; ok {
			if id, ok := typed.IDOf(raw); ok && strings.TrimSpace(id) != "" {
				return id
			}
			if value, ok := typed.ValueOf(raw); ok && strings.TrimSpace(value) != "" {
				return value
			}
		}
	}
	return ""
}

func entryLabel(obj map[string]any, keys []string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if value, ok := typed.ValueOf(raw); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
