package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-loform/pkg/model"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/store"
	"github.com/goliatone/go-loform/pkg/typed"
)

// otherLabel is appended to option lists so values outside the catalog can
// still be entered.
const otherLabel = "Other (enter id)"

// Option configures an Editor.
type Option func(*Editor)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor prompts for every field of a store and applies the answers.
type Editor struct {
	driver Driver
	logger *slog.Logger
}

// NewEditor returns an Editor using the terminal driver unless overridden.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver()
	}
	return e
}

// Run walks the fields of st in declaration order. Empty answers leave a
// field untouched. ErrAborted stops the walk; answers given so far stay in
// the store.
func (e *Editor) Run(ctx context.Context, st *store.Store) error {
	for _, field := range st.Fields() {
		if err := e.field(ctx, st, field, field.Name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) field(ctx context.Context, st *store.Store, field model.Field, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case field.Kind == model.KindEmbedded && field.Array:
		return e.embeddedArray(ctx, st, field, path)
	case field.Kind == model.KindEmbedded:
		return e.embedded(ctx, st, field, path)
	case field.Kind == model.KindReference:
		return e.reference(ctx, st, field, path)
	case field.Array:
		return e.scalarArray(ctx, st, field, path)
	case field.ScalarKind == typed.KindBoolean:
		return e.boolean(ctx, st, field, path)
	default:
		return e.scalar(ctx, st, field, path)
	}
}

func (e *Editor) embedded(ctx context.Context, st *store.Store, field model.Field, path string) error {
	_ = e.driver.Info(ctx, field.Label)
	for _, child := range field.Children {
		if err := e.field(ctx, st, child, path+"."+child.Name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) embeddedArray(ctx context.Context, st *store.Store, field model.Field, path string) error {
	count := 0
	if existing, ok := st.GetField(path); ok {
		seq, _ := typed.AsSlice(existing)
		count = len(seq)
	}
	for {
		more, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add %s?", field.Label),
			Help:    field.Description,
		})
		if err != nil || !more {
			return err
		}
		if err := st.Append(path, map[string]any{}); err != nil {
			return err
		}
		itemPath := fmt.Sprintf("%s.%d", path, count)
		count++
		for _, child := range field.Children {
			if err := e.field(ctx, st, child, itemPath+"."+child.Name); err != nil {
				return err
			}
		}
	}
}

func (e *Editor) boolean(ctx context.Context, st *store.Store, field model.Field, path string) error {
	current, _ := st.GetField(path)
	def, _ := current.(bool)
	answer, err := e.driver.Confirm(ctx, ConfirmConfig{
		Message: field.Label,
		Default: def,
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	return st.SetFieldContext(ctx, path, answer)
}

func (e *Editor) scalar(ctx context.Context, st *store.Store, field model.Field, path string) error {
	answer, err := e.input(ctx, InputConfig{
		Message:   field.Label,
		Default:   e.current(st, path),
		Help:      field.Description,
		Validator: validator(field.ScalarKind),
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	return st.SetFieldContext(ctx, path, answer)
}

func (e *Editor) scalarArray(ctx context.Context, st *store.Store, field model.Field, path string) error {
	for {
		answer, err := e.input(ctx, InputConfig{
			Message:   field.Label + " (empty to finish)",
			Help:      field.Description,
			Validator: validator(field.ScalarKind),
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			return nil
		}
		if err := st.Append(path, answer); err != nil {
			return err
		}
	}
}

func (e *Editor) reference(ctx context.Context, st *store.Store, field model.Field, path string) error {
	opts := st.OpenOptions(ctx, path)
	if field.Array {
		return e.referenceArray(ctx, st, field, path, opts)
	}

	if len(opts) == 0 {
		answer, err := e.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: e.current(st, path),
			Help:    field.Description,
		})
		if err != nil || strings.TrimSpace(answer) == "" {
			return err
		}
		return st.SetFieldContext(ctx, path, strings.TrimSpace(answer))
	}

	labels := optionLabels(opts)
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      field.Label,
		Options:      append(labels, otherLabel),
		DefaultIndex: optionIndex(opts, e.current(st, path)),
		Help:         field.Description,
	})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(opts) {
		return st.SetFieldContext(ctx, path, opts[idx].ID)
	}

	answer, err := e.driver.Input(ctx, InputConfig{Message: field.Label + " id"})
	if err != nil || strings.TrimSpace(answer) == "" {
		return err
	}
	if err := st.SetFieldContext(ctx, path, strings.TrimSpace(answer)); err != nil {
		return err
	}
	if st.DirectInput(path) {
		_ = e.driver.Info(ctx, fmt.Sprintf("%s is not in the %s list", answer, field.Label))
	}
	return nil
}

func (e *Editor) referenceArray(ctx context.Context, st *store.Store, field model.Field, path string, opts []options.Option) error {
	var ids []string
	if len(opts) > 0 {
		var current []string
		if existing, ok := st.GetField(path); ok {
			if seq, ok := existing.([]any); ok {
				for _, item := range seq {
					current = append(current, fmt.Sprint(item))
				}
			}
		}
		var defaults []int
		for _, id := range current {
			if i := optionIndex(opts, id); i >= 0 {
				defaults = append(defaults, i)
			}
		}
		indices, err := e.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label,
			Options:  optionLabels(opts),
			Defaults: defaults,
			Help:     field.Description,
		})
		if err != nil {
			return err
		}
		for _, i := range indices {
			if i >= 0 && i < len(opts) {
				ids = append(ids, opts[i].ID)
			}
		}
	} else {
		for {
			answer, err := e.driver.Input(ctx, InputConfig{Message: field.Label + " id (empty to finish)"})
			if err != nil {
				return err
			}
			answer = strings.TrimSpace(answer)
			if answer == "" {
				break
			}
			ids = append(ids, answer)
		}
	}

	if err := st.SetFieldContext(ctx, path, nil); err != nil {
		return err
	}
	for _, id := range ids {
		if err := st.Append(path, id); err != nil {
			return err
		}
	}
	return nil
}

// input asks until the answer passes cfg.Validator. Drivers may validate on
// their own; the check is repeated here for drivers that do not.
func (e *Editor) input(ctx context.Context, cfg InputConfig) (string, error) {
	for {
		answer, err := e.driver.Input(ctx, cfg)
		if err != nil {
			return "", err
		}
		if cfg.Validator == nil {
			return answer, nil
		}
		if verr := cfg.Validator(answer); verr != nil {
			_ = e.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", cfg.Message, verr))
			continue
		}
		return answer, nil
	}
}

func (e *Editor) current(st *store.Store, path string) string {
	value, ok := st.GetField(path)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// validator rejects answers the codec of kind would store as the NaN
// sentinel. Empty answers are accepted so fields can be skipped.
func validator(kind typed.Kind) func(string) error {
	if kind == typed.KindString || kind == typed.KindPlain {
		return nil
	}
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			return nil
		}
		if _, err := typed.EncodeChecked(answer, kind); err != nil {
			var coercion *typed.CoercionError
			if errors.As(err, &coercion) {
				return fmt.Errorf("not a valid %s", kind)
			}
			return err
		}
		return nil
	}
}

func optionLabels(opts []options.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		switch {
		case o.Label != "" && o.Label != o.ID:
			out[i] = fmt.Sprintf("%s (%s)", o.Label, o.ID)
		default:
			out[i] = o.ID
		}
	}
	return out
}

func optionIndex(opts []options.Option, id string) int {
	for i, o := range opts {
		if o.ID == id {
			return i
		}
	}
	return -1
}
