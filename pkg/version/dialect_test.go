package version

import (
	"testing"
)

func TestLoadDialect(t *testing.T) {
	tests := []struct {
		schema       string
		version      string
		defaultMatch string
	}{
		{"", Legacy, "compatible"},
		{"3.0", "3.0", "greaterOrEqual"},
		{"3.2", "3.2", "greaterOrEqual"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			d, err := LoadDialect(tt.schema)
			if err != nil {
				t.Fatalf("LoadDialect(%q) error: %v", tt.schema, err)
			}
			if d.Version != tt.version {
				t.Errorf("Version = %q, want %q", d.Version, tt.version)
			}
			if d.DefaultMatch != tt.defaultMatch {
				t.Errorf("DefaultMatch = %q, want %q", d.DefaultMatch, tt.defaultMatch)
			}
			if d.Description == "" {
				t.Error("Description is empty")
			}
		})
	}
}

func TestLoadDialect_Cached(t *testing.T) {
	a, err := LoadDialect("3.0")
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadDialect("3.0")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the cached dialect to be returned")
	}
}

func TestLoadDialect_NotFound(t *testing.T) {
	_, err := LoadDialect("99.99")
	if err == nil {
		t.Fatal("LoadDialect(99.99) should return error")
	}
}

func TestAvailableDialects(t *testing.T) {
	names, err := AvailableDialects()
	if err != nil {
		t.Fatalf("AvailableDialects() error: %v", err)
	}
	want := []string{"3.0", "3.2", Legacy}
	if len(names) != len(want) {
		t.Fatalf("AvailableDialects() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("AvailableDialects()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDialect_Knows(t *testing.T) {
	d, err := LoadDialect("3.0")
	if err != nil {
		t.Fatal(err)
	}

	if !d.KnowsSection("runtime") {
		t.Error("runtime should be a known section")
	}
	if d.KnowsSection("bogus") {
		t.Error("bogus should NOT be a known section")
	}
	if !d.KnowsAttribute("fragment", "plugin-id") {
		t.Error("fragment should define plugin-id")
	}
	if d.KnowsAttribute("plugin", "plugin-id") {
		t.Error("plugin should NOT define plugin-id")
	}
}
