package models

import "errors"

var (
	// ErrUnknownField is returned when an editable field name is not recognised.
	ErrUnknownField = errors.New("unknown field")

	ErrInvalidNetwork = errors.New("invalid network")
)

// Entity is a record held by a client-side store. IDs are stable and
// assigned by the server (UUIDv7 strings).
//
// Clone must return a copy that shares no mutable state (slices, maps)
// with the receiver.
type Entity[T any] interface {
	EntityID() string
	Clone() T
}
