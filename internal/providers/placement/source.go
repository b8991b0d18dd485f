package placement

import "context"

// Anchor is the reference position candidates are proposed around,
// normally the first primary actor.
type Anchor struct {
	Lane int     `json:"lane" yaml:"lane"`
	S    float64 `json:"s" yaml:"s"`
}

// Candidate is a proposed background vehicle placement.
type Candidate struct {
	Index int     `json:"index" yaml:"index"`
	Lane  int     `json:"lane" yaml:"lane"`
	S     float64 `json:"s" yaml:"s"`
	Skin  string  `json:"skin,omitempty" yaml:"skin"`
}

// Source proposes background traffic for a road network. Implementations
// may perform file or network I/O and may fail.
type Source interface {
	Candidates(ctx context.Context, road string, anchor Anchor, density float64) ([]Candidate, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, road string, anchor Anchor, density float64) ([]Candidate, error)

// Candidates calls f.
func (f SourceFunc) Candidates(ctx context.Context, road string, anchor Anchor, density float64) ([]Candidate, error) {
	return f(ctx, road, anchor, density)
}

// Static returns the same candidates for every request.
func Static(candidates ...Candidate) Source {
	return SourceFunc(func(context.Context, string, Anchor, float64) ([]Candidate, error) {
		return append([]Candidate(nil), candidates...), nil
	})
}
