package loform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-loform/pkg/model"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
	"github.com/goliatone/go-loform/pkg/store"
)

// Re-exported types so callers can stay on the root package for common flows.
type (
	Field  = model.Field
	Option = options.Option
	Record = store.Record
)

var (
	// ErrNoSchemaStore is returned when a Service has no schema store.
	ErrNoSchemaStore = errors.New("loform: no schema store configured")
	// ErrUnknownField is returned by Options for paths outside the object.
	ErrUnknownField = errors.New("loform: unknown field")
	// ErrNotReference is returned by Options for fields that carry no options.
	ErrNotReference = errors.New("loform: field has no reference options")
)

// Hooks observe service activity. Any hook may be nil.
type Hooks struct {
	OnSchemaError  func(*schema.LoadError)
	OnOptionLoad   options.LoadHook
	OnSnapshot     func(objectType string)
	OnSessionOpen  func()
	OnSessionClose func()
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithSchemaStore sets the store object and embedded schemas are loaded from.
func WithSchemaStore(s schema.Store) ServiceOption {
	return func(svc *Service) {
		svc.schemas = s
	}
}

// WithProvider injects a preconfigured option provider. It takes precedence
// over WithTable and WithCatalog.
func WithProvider(p *options.Provider) ServiceOption {
	return func(svc *Service) {
		svc.provider = p
	}
}

// WithTable sets the codelist table of the default provider.
func WithTable(table options.Table) ServiceOption {
	return func(svc *Service) {
		svc.providerOpts = append(svc.providerOpts, options.WithTable(table))
	}
}

// WithCatalog sets the catalog of the default provider.
func WithCatalog(catalog options.Catalog) ServiceOption {
	return func(svc *Service) {
		svc.providerOpts = append(svc.providerOpts, options.WithCatalog(catalog))
	}
}

// WithResolverOptions forwards options to the schema resolver.
func WithResolverOptions(opts ...model.ResolverOption) ServiceOption {
	return func(svc *Service) {
		svc.resolverOpts = append(svc.resolverOpts, opts...)
	}
}

// WithLogger sets the logger shared by the resolver, provider and stores.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(svc *Service) {
		if logger != nil {
			svc.logger = logger
		}
	}
}

// WithDelay overrides the snapshot debounce window of new sessions.
func WithDelay(delay time.Duration) ServiceOption {
	return func(svc *Service) {
		svc.delay = delay
	}
}

// WithClock injects the clock driving session debouncers.
func WithClock(clock store.Clock) ServiceOption {
	return func(svc *Service) {
		svc.clock = clock
	}
}

// WithHooks registers activity hooks, e.g. a metrics recorder.
func WithHooks(hooks Hooks) ServiceOption {
	return func(svc *Service) {
		svc.hooks = hooks
	}
}

// Service resolves object types into field trees, serves reference options
// and opens editing sessions. It is safe for concurrent use.
type Service struct {
	schemas      schema.Store
	provider     *options.Provider
	providerOpts []options.ProviderOption
	resolverOpts []model.ResolverOption
	resolver     model.Resolver
	logger       *slog.Logger
	delay        time.Duration
	clock        store.Clock
	hooks        Hooks

	mu     sync.Mutex
	fields map[string][]model.Field
}

// New constructs a Service. Without WithProvider a provider is built from the
// table/catalog options.
func New(opts ...ServiceOption) *Service {
	svc := &Service{
		logger: slog.Default(),
		delay:  store.DefaultDelay,
		fields: make(map[string][]model.Field),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}

	if svc.provider == nil {
		popts := append([]options.ProviderOption{
			options.WithLogger(svc.logger),
			options.WithLoadHook(svc.hooks.OnOptionLoad),
		}, svc.providerOpts...)
		svc.provider = options.NewProvider(popts...)
	}
	if svc.schemas != nil {
		ropts := append([]model.ResolverOption{
			model.WithLogger(svc.logger),
			model.WithLoadErrorHook(svc.hooks.OnSchemaError),
		}, svc.resolverOpts...)
		svc.resolver = model.NewResolver(svc.schemas, ropts...)
	}
	return svc
}

// Provider exposes the option provider, e.g. for scheduled resets.
func (s *Service) Provider() *options.Provider {
	return s.provider
}

// Fields resolves objectType once and serves copies of the cached tree.
// Partial trees are returned with the joined load errors but not cached, so
// a repaired schema is picked up on the next call.
func (s *Service) Fields(ctx context.Context, objectType string) ([]model.Field, error) {
	if s.resolver == nil {
		return nil, ErrNoSchemaStore
	}

	s.mu.Lock()
	cached, ok := s.fields[objectType]
	s.mu.Unlock()
	if ok {
		return model.CloneFields(cached), nil
	}

	fields, err := s.resolver.ResolveObject(ctx, objectType)
	if fields == nil {
		return nil, err
	}
	if err != nil {
		return fields, err
	}

	s.mu.Lock()
	s.fields[objectType] = fields
	s.mu.Unlock()
	return model.CloneFields(fields), nil
}

// Invalidate drops cached field trees. With no arguments every object type is
// dropped.
func (s *Service) Invalidate(objectTypes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(objectTypes) == 0 {
		s.fields = make(map[string][]model.Field)
		return
	}
	for _, objectType := range objectTypes {
		delete(s.fields, objectType)
	}
}

// Options returns the reference options of the field at path.
func (s *Service) Options(ctx context.Context, objectType, path string) ([]options.Option, error) {
	fields, err := s.Fields(ctx, objectType)
	if fields == nil {
		return nil, err
	}
	field, ok := model.Lookup(fields, path)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, objectType, path)
	}
	if !field.NeedsOptions() {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotReference, objectType, path)
	}
	return s.provider.Load(ctx, field), nil
}

// NewSession resolves objectType and opens an editing session seeded with
// initial. consumer receives every debounced snapshot and may be nil.
func (s *Service) NewSession(ctx context.Context, objectType string, initial store.Record, consumer store.Consumer) (*Session, error) {
	fields, err := s.Fields(ctx, objectType)
	if fields == nil {
		return nil, fmt.Errorf("loform: open session %s: %w", objectType, err)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "session opened with partial schema",
			slog.String("object_type", objectType),
			slog.Any("error", err),
		)
	}

	session := &Session{
		ID:      uuid.NewString(),
		onClose: s.hooks.OnSessionClose,
	}
	onSnapshot := s.hooks.OnSnapshot
	emit := func(record store.Record) {
		if onSnapshot != nil {
			onSnapshot(objectType)
		}
		if consumer != nil {
			consumer(record)
		}
	}

	opts := []store.Option{
		store.WithConsumer(emit),
		store.WithDelay(s.delay),
		store.WithLogger(s.logger.With(slog.String("session", session.ID))),
		store.WithProvider(s.provider),
	}
	if s.clock != nil {
		opts = append(opts, store.WithClock(s.clock))
	}
	session.Store = store.New(objectType, fields, initial, opts...)

	if s.hooks.OnSessionOpen != nil {
		s.hooks.OnSessionOpen()
	}
	s.logger.DebugContext(ctx, "session opened",
		slog.String("session", session.ID),
		slog.String("object_type", objectType),
	)
	return session, nil
}

// Session is one editing session of a logistics object.
type Session struct {
	ID    string
	Store *store.Store

	onClose   func()
	closeOnce sync.Once
}

// ObjectType returns the type the session edits.
func (s *Session) ObjectType() string {
	return s.Store.ObjectType()
}

// Close cancels a pending snapshot and rejects further edits. Calling Close
// more than once is harmless.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Store.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
}
