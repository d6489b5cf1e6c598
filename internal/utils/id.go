package utils

import "github.com/google/uuid"

// GenerateID returns a new random identifier for database records.
func GenerateID() string {
	return uuid.NewString()
}
