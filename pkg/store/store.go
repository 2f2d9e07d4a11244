package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-loform/pkg/model"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/typed"
)

// Record is a logistics object in wire form.
type Record = map[string]any

// Store owns the record of one editing session.
type Store struct {
	objectType string
	fields     []model.Field

	consumer Consumer
	delay    time.Duration
	clock    Clock
	logger   *slog.Logger
	provider *options.Provider

	debouncer *Debouncer

	mu      sync.Mutex
	record  Record
	closed  bool
	emitted int

	statesMu sync.Mutex
	states   map[string]*options.State
}

// New creates a store for objectType seeded with a deep copy of initial.
func New(objectType string, fields []model.Field, initial Record, opts ...Option) *Store {
	s := &Store{
		objectType: objectType,
		fields:     model.CloneFields(fields),
		delay:      DefaultDelay,
		clock:      SystemClock(),
		logger:     slog.Default(),
		states:     make(map[string]*options.State),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.record = make(Record, len(initial))
	for key, value := range initial {
		s.record[key] = deepCopy(value)
	}
	s.debouncer = NewDebouncer(s.clock, s.delay, s.emit)
	return s
}

// ObjectType returns the object type the store edits.
func (s *Store) ObjectType() string {
	return s.objectType
}

// Fields returns a copy of the descriptors the store validates paths against.
func (s *Store) Fields() []model.Field {
	return model.CloneFields(s.fields)
}

// SetField stores raw at path, encoding it through the codec of the target
// field. Array fields take an already composed sequence; a trailing index
// ("pieces.1") replaces one element; embedded fields take a mapping that is
// merged into the existing value. Values already in wire form are stored
// unchanged.
func (s *Store) SetField(path string, raw any) error {
	return s.SetFieldContext(context.Background(), path, raw)
}

// SetFieldContext is SetField with a context; a cancelled ctx rejects the
// edit. Reference options are never loaded here, see OpenOptions.
func (s *Store) SetFieldContext(ctx context.Context, path string, raw any) error {
	return s.mutate(ctx, path, func(existing any, field model.Field, index int) (any, error) {
		if index >= 0 {
			return encodeElement(existing, field, raw)
		}
		return encodeValue(existing, field, raw)
	})
}

// InsertAt inserts raw before index in the array field at path.
func (s *Store) InsertAt(path string, index int, raw any) error {
	return s.mutate(context.Background(), path, func(existing any, field model.Field, at int) (any, error) {
		if !field.Array || at >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotArray, path)
		}
		elem, err := encodeElement(nil, field, raw)
		if err != nil {
			return nil, err
		}
		seq, _ := typed.AsSlice(existing)
		return typed.InsertAt(seq, index, elem), nil
	})
}

// Append adds raw at the end of the array field at path.
func (s *Store) Append(path string, raw any) error {
	return s.mutate(context.Background(), path, func(existing any, field model.Field, at int) (any, error) {
		if !field.Array || at >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotArray, path)
		}
		elem, err := encodeElement(nil, field, raw)
		if err != nil {
			return nil, err
		}
		seq, _ := typed.AsSlice(existing)
		return typed.Append(seq, elem), nil
	})
}

// RemoveAt drops the element at index from the array field at path.
func (s *Store) RemoveAt(path string, index int) error {
	return s.mutate(context.Background(), path, func(existing any, field model.Field, at int) (any, error) {
		if !field.Array || at >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrNotArray, path)
		}
		seq, _ := typed.AsSlice(existing)
		return typed.RemoveAt(seq, index), nil
	})
}

func (s *Store) mutate(ctx context.Context, path string, leaf leafFunc) error {
	segments := model.SplitPath(path)
	if len(segments) == 0 {
		return ErrEmptyPath
	}
	field, ok := model.Lookup(s.fields, path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := put(s.record, s.fields, segments, leaf); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("store: set %s: %w", path, err)
	}
	var (
		key    string
		values []string
	)
	if field.Kind == model.KindReference {
		key = fieldPath(segments)
		values = s.referenceValues(key, field)
	}
	s.debouncer.Arm()
	s.mu.Unlock()

	if field.Kind == model.KindReference {
		s.track(key, values)
	}
	return nil
}

// GetField returns the decoded value at path. Array fields decode
// element-wise; embedded values are returned as copies in wire form.
func (s *Store) GetField(path string) (any, bool) {
	segments := model.SplitPath(path)
	if len(segments) == 0 {
		return nil, false
	}
	field, ok := model.Lookup(s.fields, path)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	value, found := getPath(s.record, segments)
	value = deepCopy(value)
	s.mu.Unlock()
	if !found {
		return nil, false
	}

	_, element := model.IsIndex(segments[len(segments)-1])
	switch {
	case field.Kind == model.KindEmbedded:
		if field.Array && !element {
			seq, _ := typed.AsSlice(value)
			return seq, true
		}
		return value, true
	case field.Array && !element:
		return typed.DecodeAll(value, field.CodecKind()), true
	default:
		return typed.Decode(value, field.CodecKind()), true
	}
}

// Snapshot returns a deep copy of the current record.
func (s *Store) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.record).(map[string]any)
}

// Pending reports whether a snapshot is waiting for its window to close.
func (s *Store) Pending() bool {
	return s.debouncer.Pending()
}

// Emitted returns how many snapshots have been delivered.
func (s *Store) Emitted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emitted
}

// Flush delivers a pending snapshot immediately and reports whether one was
// pending.
func (s *Store) Flush() bool {
	if !s.debouncer.Cancel() {
		return false
	}
	s.emit()
	return true
}

// Close cancels any pending snapshot without delivering it. Later edits fail
// with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.debouncer.Cancel()
}

func (s *Store) emit() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	snapshot := deepCopy(s.record).(map[string]any)
	s.emitted++
	s.mu.Unlock()

	s.logger.Debug("store: snapshot emitted", "object_type", s.objectType, "fields", len(snapshot))
	if s.consumer != nil {
		s.consumer(snapshot)
	}
}

// OptionState returns the option state tracked for the reference field at
// path, creating it from the current value on first use.
func (s *Store) OptionState(path string) (*options.State, bool) {
	segments := model.SplitPath(path)
	field, ok := model.Lookup(s.fields, path)
	if !ok || field.Kind != model.KindReference {
		return nil, false
	}
	key := fieldPath(segments)

	s.statesMu.Lock()
	state, ok := s.states[key]
	if !ok {
		state = options.NewState()
		s.states[key] = state
	}
	s.statesMu.Unlock()

	if !ok {
		s.mu.Lock()
		values := s.referenceValues(key, field)
		s.mu.Unlock()
		state.SetValues(values)
	}
	return state, true
}

// OpenOptions loads the options of the reference field at path through the
// attached provider and records them in its state.
func (s *Store) OpenOptions(ctx context.Context, path string) []options.Option {
	state, ok := s.OptionState(path)
	if !ok || s.provider == nil {
		return []options.Option{}
	}
	field, _ := model.Lookup(s.fields, path)
	return state.Open(ctx, s.provider, field)
}

// DirectInput reports the advisory direct-input flag of the reference field
// at path. It is false for fields whose options have not been loaded.
func (s *Store) DirectInput(path string) bool {
	segments := model.SplitPath(path)
	s.statesMu.Lock()
	state, ok := s.states[fieldPath(segments)]
	s.statesMu.Unlock()
	if !ok {
		return false
	}
	return state.DirectInput()
}

// track re-evaluates the option state of a changed reference field against
// the options loaded so far. States are created by OptionState.
func (s *Store) track(key string, values []string) {
	s.statesMu.Lock()
	state, ok := s.states[key]
	s.statesMu.Unlock()
	if !ok {
		return
	}

	state.SetValues(values)
	if state.DirectInput() {
		s.logger.Debug("store: value outside option list", "path", key, "values", values)
	}
}

// referenceValues reads the current ids of the reference field stored at key.
// Callers hold s.mu.
func (s *Store) referenceValues(key string, field model.Field) []string {
	value, ok := getPath(s.record, model.SplitPath(key))
	if !ok {
		return nil
	}
	if !field.Array {
		return []string{fmt.Sprint(typed.Decode(value, typed.KindReference))}
	}
	decoded := typed.DecodeAll(value, typed.KindReference)
	out := make([]string, 0, len(decoded))
	for _, item := range decoded {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// fieldPath strips a trailing element index so that element edits of an array
// field share the field's option state.
func fieldPath(segments []string) string {
	if n := len(segments); n > 1 {
		if _, ok := model.IsIndex(segments[n-1]); ok {
			segments = segments[:n-1]
		}
	}
	return strings.Join(segments, ".")
}
