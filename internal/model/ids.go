package model

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource generates fresh record identifiers. Implementations must never
// repeat an id within a session.
type IDSource interface {
	NewID() string
}

// UUIDSource issues random (v4) UUIDs
type UUIDSource struct{}

// NewID implements IDSource
func (UUIDSource) NewID() string {
	return uuid.NewString()
}

// SequenceSource issues prefix-1, prefix-2, ... for reproducible tests and fixtures
type SequenceSource struct {
	Prefix string
	n      atomic.Int64
}

// NewID implements IDSource
func (s *SequenceSource) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, s.n.Add(1))
}
