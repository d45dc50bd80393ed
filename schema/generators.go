package schema

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces string keys for fields tagged with a generator.
type IDGenerator interface {
	Generate() (string, error)
	Type() string
}

// UUIDGenerator generates random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

func (UUIDGenerator) Type() string {
	return "uuid"
}

// ULIDGenerator generates monotonic ULIDs. It is safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULIDGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}

func (g *ULIDGenerator) Type() string {
	return "ulid"
}

// Generators maps tag generator names to implementations.
type Generators map[string]IDGenerator

// DefaultGenerators returns the uuid and ulid generators.
func DefaultGenerators() Generators {
	return Generators{
		"uuid": UUIDGenerator{},
		"ulid": NewULIDGenerator(),
	}
}
