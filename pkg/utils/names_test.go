package utils

import (
	"errors"
	"testing"
)

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		err      error
	}{
		{"Anna", "Anna", nil},
		{"  Anna Lee \t", "Anna Lee", nil},
		{"", "", ErrEmptyName},
		{"   ", "", ErrEmptyName},
		{"Anna,Ben", "", ErrInvalidName},
		{"Anna\nBen", "", ErrInvalidName},
		{"Anna\rBen", "", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := NormalizePlayerName(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("NormalizePlayerName(%q) error = %v, want %v", tt.input, err, tt.err)
			}
			if result != tt.expected {
				t.Errorf("NormalizePlayerName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
