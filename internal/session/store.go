package session

import "context"

// Store persists a single session slot. Save overwrites the slot.
type Store interface {
	Save(ctx context.Context, s *Session) error

	// Load returns the stored session, or nil if the slot is empty.
	Load(ctx context.Context) (*Session, error)

	// Clear empties the slot.
	Clear(ctx context.Context) error
}
