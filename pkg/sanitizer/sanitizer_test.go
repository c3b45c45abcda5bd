package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizeRegistrationNumber(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ka-01 ab 1234", "KA01AB1234"},
		{"KA01AB1234", "KA01AB1234"},
		{"  mh.12-cd/5678  ", "MH12CD5678"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeRegistrationNumber(tt.input); got != tt.want {
			t.Errorf("SanitizeRegistrationNumber(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Petrol", "petrol"},
		{"  Semi Automatic ", "semi_automatic"},
		{"electric--plug-in", "electric_plug_in"},
		{"___", ""},
	}

	for _, tt := range tests {
		if got := SanitizeLabel(tt.input); got != tt.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeSlice(t *testing.T) {
	got := SanitizeSlice([]string{" GPS ", "gps", "", "Sunroof", "GPS"}, TrimAndNormalize)
	want := []string{"GPS", "gps", "Sunroof"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeSlice = %v, want %v", got, want)
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Toyota   Corolla  ", "Toyota Corolla"},
		{"one\t\ntwo", "one two"},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.input); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
