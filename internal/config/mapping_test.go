package config

import (
	"sort"
	"strings"
	"testing"
)

func TestParseFieldMapping(t *testing.T) {
	m := ParseFieldMapping("email:email, name:full_name ,phone_number:phone")

	tests := []struct {
		attr  string
		field string
		ok    bool
	}{
		{"email", "email", true},
		{"name", "full_name", true},
		{"phone_number", "phone", true},
		{"address", "", false},
	}

	for _, tt := range tests {
		field, ok := m.Lookup(tt.attr)
		if ok != tt.ok || field != tt.field {
			t.Errorf("Lookup(%q) = %q/%v, want %q/%v", tt.attr, field, ok, tt.field, tt.ok)
		}
	}

	attrs := m.Attributes()
	sort.Strings(attrs)
	want := []string{"email", "name", "phone_number"}
	if len(attrs) != len(want) {
		t.Fatalf("Attributes() = %v, want %v", attrs, want)
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Errorf("Attributes()[%d] = %q, want %q", i, attrs[i], want[i])
		}
	}
}

func TestFieldMappingValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr string
	}{
		{"valid", "email:email,name:name", ""},
		{"empty spec", "", "no entries"},
		{"only commas", " , , ", "no entries"},
		{"missing separator", "email", "both attribute and field are required"},
		{"empty field", "email:", "both attribute and field are required"},
		{"duplicate target", "email:contact,phone_number:contact", "same field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseFieldMapping(tt.spec).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
