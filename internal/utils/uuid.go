package utils

import "github.com/google/uuid"

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// ShortID returns a compact random identifier for correlating the log lines
// of one in-flight operation. Not unique enough for anything but tracing.
func ShortID() string {
	return uuid.NewString()[:8]
}
