package options

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-loform/pkg/model"
)

// DefaultLabelKeys lists the catalog entry keys tried, in order, for labels.
var DefaultLabelKeys = []string{"label", "rdfs:label", "http://www.w3.org/2000/01/rdf-schema#label", "name", "description"}

// LoadHook observes every lookup that reached a source. err is nil on success.
type LoadHook func(source Source, elapsed time.Duration, err error)

// Provider resolves reference options for fields. Successful results are
// cached per lookup key until Refresh or Reset; concurrent loads for different
// fields never wait on each other.
type Provider struct {
	table     *Table
	catalog   Catalog
	labelKeys []string
	logger    *slog.Logger
	onLoad    LoadHook
	onError   func(*LoadError)

	mu    sync.Mutex
	cache map[string][]Option
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTable injects the codelist table.
func WithTable(table Table) ProviderOption {
	return func(p *Provider) {
		p.table = &table
	}
}

// WithCatalog injects the catalog lookup service.
func WithCatalog(catalog Catalog) ProviderOption {
	return func(p *Provider) {
		p.catalog = catalog
	}
}

// WithLabelKeys overrides DefaultLabelKeys.
func WithLabelKeys(keys ...string) ProviderOption {
	return func(p *Provider) {
		if len(keys) > 0 {
			p.labelKeys = append([]string(nil), keys...)
		}
	}
}

// WithLogger routes lookup failures to logger.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLoadHook registers a hook called after every source lookup.
func WithLoadHook(hook LoadHook) ProviderOption {
	return func(p *Provider) {
		p.onLoad = hook
	}
}

// WithErrorHook registers a hook receiving every swallowed lookup failure.
func WithErrorHook(hook func(*LoadError)) ProviderOption {
	return func(p *Provider) {
		p.onError = hook
	}
}

// NewProvider constructs a Provider. Without a table or catalog the matching
// lookups fail softly to empty lists.
func NewProvider(options ...ProviderOption) *Provider {
	p := &Provider{
		labelKeys: DefaultLabelKeys,
		logger:    slog.Default(),
		cache:     make(map[string][]Option),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Load returns the options of field, consulting the cache first. Lookup
// failures are logged, reported to the error hook and yield an empty list that
// is not cached, so the next Load retries the source. Fields that are not
// references have no options.
func (p *Provider) Load(ctx context.Context, field model.Field) []Option {
	if !field.NeedsOptions() {
		return []Option{}
	}
	key := cacheKey(field)

	p.mu.Lock()
	cached, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return cloneOptions(cached)
	}

	options, err := p.Fetch(ctx, field)
	if err != nil {
		p.fail(ctx, err)
		return options
	}

	p.mu.Lock()
	p.cache[key] = options
	p.mu.Unlock()
	return cloneOptions(options)
}

// Refresh drops the cached options of field and loads them again.
func (p *Provider) Refresh(ctx context.Context, field model.Field) []Option {
	p.mu.Lock()
	delete(p.cache, cacheKey(field))
	p.mu.Unlock()
	return p.Load(ctx, field)
}

// Reset clears the whole cache.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.cache = make(map[string][]Option)
	p.mu.Unlock()
}

// Fetch looks options up without caching. The returned list is never nil; a
// non-nil error is a *LoadError describing why it is empty.
func (p *Provider) Fetch(ctx context.Context, field model.Field) ([]Option, error) {
	if field.Codelist {
		return p.fromCodelist(field)
	}
	return p.fromCatalog(ctx, field)
}

func (p *Provider) fromCodelist(field model.Field) ([]Option, error) {
	key := CodelistKey(field.ValueIRI)
	if p.table == nil {
		return []Option{}, &LoadError{Field: field.Name, Source: SourceCodelist, Key: key, Err: ErrNoTable}
	}

	start := time.Now()
	entries, ok := p.table.Lookup(key)
	p.observe(SourceCodelist, start, nil)
	if !ok {
		p.logger.Debug("codelist not found", slog.String("field", field.Name), slog.String("codelist", key))
		return []Option{}, nil
	}

	options := make([]Option, 0, len(entries))
	for _, entry := range entries {
		label := entry.Description
		if strings.TrimSpace(label) == "" {
			label = entry.ID
		}
		options = append(options, Option{ID: entry.ID, Label: label})
	}
	return options, nil
}

func (p *Provider) fromCatalog(ctx context.Context, field model.Field) ([]Option, error) {
	iri := strings.TrimSpace(field.ValueIRI)
	if iri == "" {
		iri = field.ReferenceType
	}
	if p.catalog == nil {
		return []Option{}, &LoadError{Field: field.Name, Source: SourceCatalog, Key: iri, Err: ErrNoCatalog}
	}

	start := time.Now()
	payload, err := p.catalog.Fetch(ctx, iri)
	if err == nil {
		var entries []map[string]any
		if entries, err = Normalize(payload); err == nil {
			p.observe(SourceCatalog, start, nil)
			return p.catalogOptions(entries), nil
		}
	}
	p.observe(SourceCatalog, start, err)
	return []Option{}, &LoadError{Field: field.Name, Source: SourceCatalog, Key: iri, Err: err}
}

func (p *Provider) catalogOptions(entries []map[string]any) []Option {
	options := make([]Option, 0, len(entries))
	for _, entry := range entries {
		id := entryID(entry)
		label := entryLabel(entry, p.labelKeys)
		if label == "" {
			label = id
		}
		options = append(options, Option{ID: id, Label: label})
	}
	return options
}

func (p *Provider) fail(ctx context.Context, err error) {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		loadErr = &LoadError{Err: err}
	}
	p.logger.WarnContext(ctx, "option lookup failed",
		slog.String("field", loadErr.Field),
		slog.String("source", string(loadErr.Source)),
		slog.String("key", loadErr.Key),
		slog.Any("error", loadErr.Err),
	)
	if p.onError != nil {
		p.onError(loadErr)
	}
}

func (p *Provider) observe(source Source, start time.Time, err error) {
	if p.onLoad != nil {
		p.onLoad(source, time.Since(start), err)
	}
}

func cacheKey(field model.Field) string {
	if field.Codelist {
		return string(SourceCodelist) + ":" + CodelistKey(field.ValueIRI)
	}
	iri := strings.TrimSpace(field.ValueIRI)
	if iri == "" {
		iri = field.ReferenceType
	}
	return string(SourceCatalog) + ":" + iri
}
