package errors

import (
	"strings"
	"testing"
)

func TestValidatePortalName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Exit", false},
		{"valid with space", "On Enter", false},
		{"valid unicode", "Größe", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"leading space", " Exit", true},
		{"trailing space", "Exit ", true},
		{"newline", "Ex\nit", true},
		{"null byte", "Ex\x00it", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePortalName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePortalName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidatePortalName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateContainerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Root", false},
		{"valid with slash", "enemies/patrol", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("b", 257), true},
		{"tab", "Ro\tot", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContainerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContainerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://cdn.example.com/files", false},
		{"http", "http://localhost:8080", false},
		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"relative", "/files", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
