package utils

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyName is returned for names that are blank after trimming.
	ErrEmptyName = errors.New("player name cannot be empty")

	// ErrInvalidName is returned for names that would break a backup line.
	ErrInvalidName = errors.New("player name cannot contain commas or line breaks")
)

// forbiddenNameChars separate fields and records in backups.
const forbiddenNameChars = ",\r\n"

// NormalizePlayerName trims surrounding whitespace and rejects names that
// cannot round-trip through a backup.
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return "", ErrInvalidName
	}
	return name, nil
}
