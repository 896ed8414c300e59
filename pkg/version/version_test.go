package version

import (
	"testing"
)

func TestParseSchema_Valid(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
	}{
		{"3.0", 3, 0},
		{"3.2", 3, 2},
		{"10.23", 10, 23},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseSchema(tt.input)
			if err != nil {
				t.Fatalf("ParseSchema(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major {
				t.Errorf("Major = %d, want %d", v.Major, tt.major)
			}
			if v.Minor != tt.minor {
				t.Errorf("Minor = %d, want %d", v.Minor, tt.minor)
			}
			if v.String() != tt.input {
				t.Errorf("String() = %q, want %q", v.String(), tt.input)
			}
		})
	}
}

func TestParseSchema_Invalid(t *testing.T) {
	tests := []string{
		"",
		"3",
		"abc",
		"3.0.0",
		"3.x",
		"-1.0",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSchema(input)
			if err == nil {
				t.Errorf("ParseSchema(%q) should return error", input)
			}
		})
	}
}

func TestSchemaVersion_Ordering(t *testing.T) {
	v30, _ := ParseSchema("3.0")
	v32, _ := ParseSchema("3.2")
	v40, _ := ParseSchema("4.0")

	if !v32.AtLeast(v30) {
		t.Error("3.2 should be at least 3.0")
	}
	if v30.AtLeast(v32) {
		t.Error("3.0 should NOT be at least 3.2")
	}
	if !v30.Compatible(v32) {
		t.Error("3.0 should be compatible with 3.2")
	}
	if v30.Compatible(v40) {
		t.Error("3.0 should NOT be compatible with 4.0")
	}
}

func TestCurrentSchema(t *testing.T) {
	v, err := ParseSchema(CurrentSchema)
	if err != nil {
		t.Fatalf("ParseSchema(CurrentSchema) returned error: %v", err)
	}
	if v.Major != 3 {
		t.Errorf("CurrentSchema = %s, want major 3", v)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1", "1.0.0", false},
		{"1.2", "1.2.0", false},
		{"1.2.3", "1.2.3", false},
		{"1.2.3.v2024-01_rc", "1.2.3.v2024-01_rc", false},
		{"", "", true},
		{"1.a", "", true},
		{"1..3", "", true},
		{"1.2.3.", "", true},
		{"1.2.3.bad qualifier", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && v.String() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.2.0", "1.10.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0.a", "1.0.0.b", -1},
		{"1.0.0", "1.0.0.a", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a, _ := Parse(tt.a)
			b, _ := Parse(tt.b)
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
