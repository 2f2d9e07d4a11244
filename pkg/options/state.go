package options

import (
	"context"
	"sync"

	"github.com/goliatone/go-loform/pkg/model"
)

// State is the presentation state of one reference field: its loaded options,
// its current value(s), and the derived direct-input flag. The flag is
// recomputed whenever either input changes and never feeds back into the
// value.
type State struct {
	mu      sync.RWMutex
	loaded  bool
	options []Option
	values  []string
	direct  bool
}

// NewState returns a State for a field whose options are not loaded yet.
func NewState() *State {
	return &State{}
}

// SetOptions records a (re)loaded option set.
func (s *State) SetOptions(options []Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.options = cloneOptions(options)
	s.evaluate()
}

// SetValue records the field's current single value.
func (s *State) SetValue(value string) {
	s.SetValues([]string{value})
}

// SetValues records the current values of an array field.
func (s *State) SetValues(values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append([]string(nil), values...)
	s.evaluate()
}

// Options returns the loaded options and whether a load has completed.
func (s *State) Options() ([]Option, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOptions(s.options), s.loaded
}

// DirectInput reports whether free-text entry should replace constrained
// choice. It stays false until options have been loaded (or failed to load).
func (s *State) DirectInput() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct
}

func (s *State) evaluate() {
	s.direct = s.loaded && DirectInputAny(s.options, s.values)
}

// Open loads the field's options through p, typically when a renderer is about
// to display them, and records the result in the state.
func (s *State) Open(ctx context.Context, p *Provider, field model.Field) []Option {
	options := p.Load(ctx, field)
	s.SetOptions(options)
	return options
}
