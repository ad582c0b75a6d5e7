// Package uuid generates identifiers for players and games.
package uuid

import "github.com/google/uuid"

//go:generate mockgen -package=mocks -destination=mocks/mock_uuid.go github.com/pdlmetrix/pdlmetrix/internal/common/uuid UUID

// UUID produces unique identifiers.
type UUID interface {
	NewUUID() string
}

// DefaultUUID implements UUID with random (version 4) UUIDs.
type DefaultUUID struct{}

// New returns the default generator.
func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new UUID string.
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}
