package options

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDirectInput(t *testing.T) {
	opts := []Option{{ID: "A"}, {ID: "B"}}

	cases := []struct {
		value string
		want  bool
	}{
		{"C", true},
		{"A", false},
		{"", false},
		{"  ", false},
	}
	for _, tc := range cases {
		if got := DirectInput(opts, tc.value); got != tc.want {
			t.Fatalf("DirectInput(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}

	if !DirectInput(nil, "A") {
		t.Fatalf("a value with no options must fall back to direct input")
	}
	if !DirectInputAny(opts, []string{"A", "C"}) || DirectInputAny(opts, []string{"B", ""}) {
		t.Fatalf("DirectInputAny mismatch")
	}
	if !Contains(opts, "B") || Contains(opts, "b") {
		t.Fatalf("Contains must match identifiers exactly")
	}
}

func TestOptionJSON(t *testing.T) {
	raw, err := json.Marshal(Option{ID: "KGM", Label: "Kilogram"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]string
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	want := map[string]string{"@id": "KGM", "id": "KGM", "label": "Kilogram"}
	if diff := cmp.Diff(want, generic); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}

	var legacy Option
	if err := json.Unmarshal([]byte(`{"id": "CMT", "label": "Centimetre"}`), &legacy); err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if legacy != (Option{ID: "CMT", Label: "Centimetre"}) {
		t.Fatalf("legacy option = %+v", legacy)
	}
}
