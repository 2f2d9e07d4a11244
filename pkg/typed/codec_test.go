package typed

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEncode(t *testing.T) {
	cases := []struct {
		name  string
		plain any
		kind  Kind
		want  any
	}{
		{"reference", "https://example.org/c/1", KindReference, map[string]any{KeyID: "https://example.org/c/1"}},
		{"empty reference", "", KindReference, map[string]any{KeyID: ""}},
		{"string", "fragile", KindString, tagged(XSDString, "fragile")},
		{"boolean true", true, KindBoolean, tagged(XSDBoolean, "true")},
		{"boolean string", "true", KindBoolean, tagged(XSDBoolean, "true")},
		{"boolean other", "yes", KindBoolean, tagged(XSDBoolean, "false")},
		{"boolean uppercase", "TRUE", KindBoolean, tagged(XSDBoolean, "false")},
		{"integer", 42, KindInteger, tagged(XSDInteger, "42")},
		{"integer prefix", " 12kg", KindInteger, tagged(XSDInteger, "12")},
		{"integer float", 3.9, KindInteger, tagged(XSDInteger, "3")},
		{"integer garbage", "abc", KindInteger, tagged(XSDInteger, NaN)},
		{"double", "2.50", KindDouble, tagged(XSDDouble, "2.5")},
		{"double exponent", "1e3x", KindDouble, tagged(XSDDouble, "1000")},
		{"double garbage", "", KindDouble, tagged(XSDDouble, NaN)},
		{"double large", 1e300, KindDouble, tagged(XSDDouble, "1e+300")},
		{"double exponent threshold", 1e21, KindDouble, tagged(XSDDouble, "1e+21")},
		{"double below threshold", 123456789012345680000.0, KindDouble, tagged(XSDDouble, "123456789012345680000")},
		{"double tiny", "-1.5e-7", KindDouble, tagged(XSDDouble, "-1.5e-7")},
		{"double small", 0.000001, KindDouble, tagged(XSDDouble, "0.000001")},
		{"datetime rfc3339", "2024-03-01T10:00:00Z", KindDateTime, tagged(XSDDateTime, "1709287200000")},
		{"datetime date", "2024-03-01", KindDateTime, tagged(XSDDateTime, "1709251200000")},
		{"datetime millis", "1709287200000", KindDateTime, tagged(XSDDateTime, "1709287200000")},
		{"datetime time", time.UnixMilli(1000), KindDateTime, tagged(XSDDateTime, "1000")},
		{"datetime garbage", "soon", KindDateTime, tagged(XSDDateTime, NaN)},
		{"plain", []any{"a"}, KindPlain, []any{"a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Encode(tc.plain, tc.kind)); diff != "" {
				t.Fatalf("Encode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name  string
		typed any
		kind  Kind
		want  any
	}{
		{"reference", map[string]any{KeyID: "x"}, KindReference, "x"},
		{"reference absent", nil, KindReference, ""},
		{"boolean", tagged(XSDBoolean, "true"), KindBoolean, true},
		{"boolean absent", map[string]any{}, KindBoolean, false},
		{"integer", tagged(XSDInteger, "42"), KindInteger, int64(42)},
		{"integer absent", nil, KindInteger, int64(0)},
		{"integer nan", tagged(XSDInteger, NaN), KindInteger, int64(0)},
		{"integer double tag", tagged(XSDDouble, "7.8"), KindInteger, int64(7)},
		{"double", tagged(XSDDouble, "2.5"), KindDouble, 2.5},
		{"double nan", tagged(XSDDouble, NaN), KindDouble, float64(0)},
		{"datetime", tagged(XSDDateTime, "1000"), KindDateTime, "1000"},
		{"datetime absent", nil, KindDateTime, ""},
		{"string", tagged(XSDString, "a"), KindString, "a"},
		{"plain", "raw", KindPlain, "raw"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Decode(tc.typed, tc.kind)); diff != "" {
				t.Fatalf("Decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	if got := Decode(Encode("true", KindBoolean), KindBoolean); got != true {
		t.Fatalf("boolean round trip = %v", got)
	}
	if got := Decode(Encode(42, KindInteger), KindInteger); got != int64(42) {
		t.Fatalf("integer round trip = %v", got)
	}
	for _, v := range []string{"https://example.org/a", ""} {
		if got := Decode(Encode(v, KindReference), KindReference); got != v {
			t.Fatalf("reference round trip = %q, want %q", got, v)
		}
	}
	if got := Decode(Encode("1709287200000", KindDateTime), KindDateTime); got != "1709287200000" {
		t.Fatalf("datetime round trip = %v", got)
	}

	// every kind tolerates arbitrary input without panicking
	inputs := []any{nil, "", "x", 1, 1.5, true, []any{}, map[string]any{}}
	for _, entry := range Scalars() {
		for _, in := range inputs {
			Decode(Encode(in, entry.Kind), entry.Kind)
		}
	}
}

func TestEncodeChecked(t *testing.T) {
	encoded, err := EncodeChecked("n/a", KindDouble)
	var coercion *CoercionError
	if !errors.As(err, &coercion) || coercion.Kind != KindDouble {
		t.Fatalf("expected CoercionError, got %v", err)
	}
	if diff := cmp.Diff(tagged(XSDDouble, NaN), encoded); diff != "" {
		t.Fatalf("encoded mismatch (-want +got):\n%s", diff)
	}

	if _, err := EncodeChecked("NaN", KindString); err != nil {
		t.Fatalf("string values never report coercion: %v", err)
	}
	if _, err := EncodeChecked("3", KindInteger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeAnyAndIsEmpty(t *testing.T) {
	if got := DecodeAny(tagged(XSDInteger, "9")); got != int64(9) {
		t.Fatalf("DecodeAny integer = %v", got)
	}
	if got := DecodeAny(map[string]any{KeyID: "r"}); got != "r" {
		t.Fatalf("DecodeAny reference = %v", got)
	}
	embedded := map[string]any{KeyType: "Value", "unit": map[string]any{KeyID: "KGM"}}
	if diff := cmp.Diff(embedded, DecodeAny(embedded)); diff != "" {
		t.Fatalf("embedded values pass through (-want +got):\n%s", diff)
	}

	for _, v := range []any{nil, "", map[string]any{KeyID: ""}, tagged(XSDString, " "), []any{}} {
		if !IsEmpty(v) {
			t.Fatalf("IsEmpty(%v) = false", v)
		}
	}
	if IsEmpty(tagged(XSDInteger, "0")) {
		t.Fatalf("zero is a value")
	}
}
