package common

import "github.com/google/uuid"

// WipeByteArray zeroes b in place. It is safe to call with nil.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ValidateID checks that id is a canonical UUID as issued by the backend.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
