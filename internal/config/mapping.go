package config

import (
	"fmt"
	"strings"
)

// FieldMapping maps Cognito attribute names to local user field names.
// Parsed once at startup and validated; lookups never silently skip.
type FieldMapping struct {
	pairs  map[string]string
	parsed string
}

// ParseFieldMapping parses a "attr:field,attr:field" spec. Validation is
// deferred to Validate so Load never fails.
func ParseFieldMapping(spec string) FieldMapping {
	m := FieldMapping{pairs: make(map[string]string), parsed: spec}
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		attr, field, ok := strings.Cut(entry, ":")
		if !ok {
			// Recorded as-is; Validate reports the malformed entry.
			m.pairs[entry] = ""
			continue
		}
		m.pairs[strings.TrimSpace(attr)] = strings.TrimSpace(field)
	}
	return m
}

// Validate rejects malformed, empty or duplicate-target entries.
func (m FieldMapping) Validate() error {
	if len(m.pairs) == 0 {
		return fmt.Errorf("COGNITO_FIELD_MAPPING %q contains no entries", m.parsed)
	}
	seen := make(map[string]string, len(m.pairs))
	for attr, field := range m.pairs {
		if attr == "" || field == "" {
			return fmt.Errorf("COGNITO_FIELD_MAPPING entry %q: both attribute and field are required", attr)
		}
		if prev, dup := seen[field]; dup {
			return fmt.Errorf("COGNITO_FIELD_MAPPING: attributes %q and %q map to the same field %q", prev, attr, field)
		}
		seen[field] = attr
	}
	return nil
}

// Lookup returns the local field name for a Cognito attribute.
func (m FieldMapping) Lookup(attr string) (string, bool) {
	field, ok := m.pairs[attr]
	if !ok || field == "" {
		return "", false
	}
	return field, true
}

// Attributes returns the mapped Cognito attribute names.
func (m FieldMapping) Attributes() []string {
	attrs := make([]string, 0, len(m.pairs))
	for attr := range m.pairs {
		attrs = append(attrs, attr)
	}
	return attrs
}
