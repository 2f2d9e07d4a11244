package model

import "testing"

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"grossWeight":          "Gross Weight",
		"goods_description":    "Goods Description",
		"ULDTypeCode":          "ULD Type Code",
		"shipmentIRI":          "Shipment IRI",
		"line2Address":         "Line 2 Address",
		"handling-instruction": "Handling Instruction",
		"upid":                 "Upid",
	}
	for in, want := range cases {
		if got := DefaultLabeler(in); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"  plain  ":                       "plain",
		"<p>Gross <em>weight</em></p>":    "Gross weight",
		"<script>alert(1)</script>Weight": "Weight",
		"Length &amp; width\n\n in cm":    "Length & width in cm",
		"":                                "",
	}
	for in, want := range cases {
		if got := SanitizeText(in); got != want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
