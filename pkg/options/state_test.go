package options

import (
	"context"
	"testing"

	"github.com/goliatone/go-loform/pkg/model"
)

func TestState_DirectInputFollowsOptionsAndValue(t *testing.T) {
	s := NewState()
	s.SetValue("C")
	if s.DirectInput() {
		t.Fatalf("flag raised before options loaded")
	}

	s.SetOptions([]Option{{ID: "A"}, {ID: "B"}})
	if !s.DirectInput() {
		t.Fatalf("value outside the options must switch to direct input")
	}
	s.SetValue("A")
	if s.DirectInput() {
		t.Fatalf("listed value must keep constrained choice")
	}
	s.SetOptions([]Option{{ID: "B"}})
	if !s.DirectInput() {
		t.Fatalf("flag not re-evaluated after options changed")
	}
	s.SetValues([]string{"B", ""})
	if s.DirectInput() {
		t.Fatalf("empty array elements must not raise the flag")
	}
}

func TestState_OpenAfterFailedLoad(t *testing.T) {
	p := NewProvider()
	field := model.Field{Name: "unit", Kind: model.KindReference, Codelist: true, ValueIRI: "#UnitType"}

	s := NewState()
	s.SetValue("KGM")
	if got := s.Open(context.Background(), p, field); len(got) != 0 {
		t.Fatalf("failed load returned options: %v", got)
	}
	opts, loaded := s.Options()
	if !loaded || len(opts) != 0 {
		t.Fatalf("failed load must still count as loaded: %v %v", opts, loaded)
	}
	if !s.DirectInput() {
		t.Fatalf("empty option list with a value must fall back to direct input")
	}
}
