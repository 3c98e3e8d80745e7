// ABOUTME: Tests for version constants
// ABOUTME: Checks the identification strings sent in protocol hellos
package version

import (
	"strconv"
	"strings"
	"testing"
)

func TestIdentificationStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Fatalf("expected %s to be set", tt.name)
			}
			if strings.TrimSpace(tt.value) != tt.value {
				t.Errorf("expected %s without surrounding space, got %q", tt.name, tt.value)
			}
		})
	}
}

func TestVersionIsSemantic(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %s", Version)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			t.Errorf("expected numeric component, got %q in %s", p, Version)
		}
	}
}
