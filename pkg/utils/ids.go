package utils

import (
	"github.com/google/uuid"
)

// GenerateUUIDv7 returns a time-ordered id, falling back to v4.
func GenerateUUIDv7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// ParseUUIDs parses a list of ids, stopping at the first invalid one.
func ParseUUIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
