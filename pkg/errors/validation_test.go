package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "empty", false},
		{"valid with underscore", "plane_to_prism", false},
		{"valid with dash", "wall-height", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "a..b", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid flat", "tower", false},
		{"valid nested", "structures/tower", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "structures/../../secret", true},
		{"backslash", "structures\\tower", true},
		{"control char", "tower\x01", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"http://localhost:3000", false},
		{"wss://architect.example.com", false},
		{"", true},
		{"ftp://example.com", true},
		{"localhost:3000", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePack(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"base", false},
		{"medieval-pack_2", false},
		{"Base", true},
		{"-base", true},
		{"base pack", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidatePack(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePack(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
