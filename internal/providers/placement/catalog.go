package placement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// ErrUnknownRoad is returned when no candidate list exists for a road.
var ErrUnknownRoad = errors.New("no placement candidates for road")

// RoadCandidates is one road's precomputed list. Density is the traffic
// density the list was generated for; smaller requests take a prefix.
type RoadCandidates struct {
	Road       string      `yaml:"road"`
	Density    float64     `yaml:"density"`
	Candidates []Candidate `yaml:"candidates"`
}

type catalogFile struct {
	Roads []RoadCandidates `yaml:"roads"`
}

// Catalog is a file-backed Source. It is immutable after loading.
type Catalog struct {
	roads map[string]RoadCandidates
}

// NewCatalog indexes roads by file name. Candidate indices are assigned
// from list position.
func NewCatalog(roads []RoadCandidates) (*Catalog, error) {
	c := &Catalog{roads: make(map[string]RoadCandidates, len(roads))}
	for i, r := range roads {
		if r.Road == "" {
			return nil, fmt.Errorf("roads[%d]: missing road", i)
		}
		key := filepath.Base(r.Road)
		if _, dup := c.roads[key]; dup {
			return nil, fmt.Errorf("roads[%d]: duplicate road %q", i, key)
		}
		if r.Density <= 0 {
			r.Density = 1
		}
		cands := make([]Candidate, len(r.Candidates))
		for j, cand := range r.Candidates {
			cand.Index = j
			cands[j] = cand
		}
		r.Candidates = cands
		c.roads[key] = r
	}
	return c, nil
}

// LoadCatalog reads a catalog file. JSON is accepted since it is valid YAML.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read placement catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse placement catalog %s: %w", path, err)
	}
	return NewCatalog(file.Roads)
}

// Candidates returns the road's list thinned to density. The road is
// matched by file name so callers may pass a full path.
func (c *Catalog) Candidates(ctx context.Context, road string, _ Anchor, density float64) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, ok := c.roads[filepath.Base(road)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoad, filepath.Base(road))
	}
	if density <= 0 {
		return []Candidate{}, nil
	}

	n := len(r.Candidates)
	if density < r.Density {
		n = int(math.Ceil(float64(n) * density / r.Density))
	}
	return append([]Candidate(nil), r.Candidates[:n]...), nil
}

// Roads returns the number of roads in the catalog.
func (c *Catalog) Roads() int {
	return len(c.roads)
}
