// Package id generates ULID-based identifiers for compiled scenarios and
// API requests.
//
// ULIDs sort by creation time, so a directory of generated scenarios lists
// in the order they were compiled.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ScenarioID identifies one compiled scenario document
type ScenarioID string

// RequestID identifies an API request
type RequestID string

const (
	ScenarioPrefix = "scn"
	RequestPrefix  = "req"

	// ScenarioExt is the OpenSCENARIO file extension.
	ScenarioExt = ".xosc"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with monotonic, cryptographically
// seeded entropy.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0), time.Now)
}

// NewGeneratorWithEntropy creates a generator with custom entropy and
// clock. Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	return &Generator{entropy: entropy, now: now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewScenarioID generates a new scenario ID
func NewScenarioID() ScenarioID {
	return ScenarioID(Default().GenerateWithPrefix(ScenarioPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

func (id ScenarioID) String() string { return string(id) }
func (id RequestID) String() string  { return string(id) }

// FileName returns the document file name for the scenario.
func (id ScenarioID) FileName() string {
	return string(id) + ScenarioExt
}

// ParseScenarioID accepts "scn_<ulid>" with or without the file extension.
func ParseScenarioID(s string) (ScenarioID, error) {
	s = strings.TrimSuffix(s, ScenarioExt)
	prefix, raw, ok := strings.Cut(s, "_")
	if !ok || prefix != ScenarioPrefix {
		return "", fmt.Errorf("invalid scenario id %q", s)
	}
	if _, err := ulid.ParseStrict(raw); err != nil {
		return "", fmt.Errorf("invalid scenario id %q: %w", s, err)
	}
	return ScenarioID(s), nil
}

// Timestamp extracts the creation time from a prefixed or bare ULID.
func Timestamp(id string) (time.Time, error) {
	if _, raw, ok := strings.Cut(id, "_"); ok {
		id = raw
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
