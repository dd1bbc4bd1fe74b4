package textutil

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"plain":       {input: "  Leave at the gate  ", want: "Leave at the gate"},
		"ampersand":   {input: "Shirts & Pants", want: "Shirts & Pants"},
		"script":      {input: "<script>alert(1)</script>Ring twice", want: "Ring twice"},
		"inline tags": {input: "<b>Flat 4B</b>, <i>Indiranagar</i>", want: "Flat 4B, Indiranagar"},
		"only markup": {input: "<img src=x onerror=alert(1)>", want: ""},
		"empty":       {input: "   ", want: ""},
		"quotes kept": {input: `Handle "silk" gently`, want: `Handle "silk" gently`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Sanitize(tc.input); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeAll(t *testing.T) {
	got := SanitizeAll([]string{" Eco-friendly ", "<br>", "Same <b>day</b>"})
	want := []string{"Eco-friendly", "Same day"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v got %#v", want, got)
	}
	if SanitizeAll([]string{"<p></p>"}) != nil {
		t.Fatalf("expected nil when everything is stripped")
	}
}
