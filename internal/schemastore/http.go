package schemastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-loform/pkg/schema"
)

// HTTPStore fetches schema documents from <base>/<id>.json.
type HTTPStore struct {
	base    string
	client  *http.Client
	timeout time.Duration
}

var _ schema.Store = (*HTTPStore)(nil)

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithClient injects the HTTP client.
func WithClient(client *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPStore) {
		s.timeout = timeout
	}
}

// NewHTTPStore validates base and returns a store rooted at it.
func NewHTTPStore(base string, options ...HTTPOption) (*HTTPStore, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, errors.New("schemastore: base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("schemastore: invalid base url %q: %w", base, err)
	}
	store := &HTTPStore{base: base, client: http.DefaultClient}
	for _, opt := range options {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Load implements schema.Store. A 404 maps to schema.ErrNotFound.
func (s *HTTPStore) Load(ctx context.Context, id string) (schema.Document, error) {
	data, err := s.fetch(ctx, s.base+"/"+url.PathEscape(id)+".json")
	if err != nil {
		return schema.Document{}, fmt.Errorf("schemastore: fetch %s: %w", id, err)
	}
	return schema.ParseDocument(id, data)
}

func (s *HTTPStore) fetch(ctx context.Context, target string) ([]byte, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, schema.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.New("unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
