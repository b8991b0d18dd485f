package compiler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ScenarioForge/internal/logging"
	"github.com/GriffinCanCode/ScenarioForge/internal/providers/placement"
)

// Config holds compiler settings.
type Config struct {
	// ResourcesDir is the simulator resources root holding xodr/ and models/.
	ResourcesDir string
	// StopTime ends the simulation, in seconds.
	StopTime float64
	// DensityFactor is passed to the placement source for high density.
	DensityFactor float64
	ScenarioName  string
	Author        string
}

// DefaultConfig returns the settings used by the generation pipeline.
func DefaultConfig() Config {
	return Config{
		ResourcesDir:  "resources",
		StopTime:      60,
		DensityFactor: 2.0,
		ScenarioName:  "NeuroScenario",
		Author:        "AI_Gen",
	}
}

// Result is a compiled scenario with everything learned while compiling it.
type Result struct {
	Scenario    *scenario.Scenario
	Map         knowledge.MapContext
	Rules       []knowledge.Rule
	Diagnostics []Diagnostic
	Traffic     TrafficStats
}

// Compiler lowers blueprints into scenarios. It is safe for concurrent use:
// the registry is immutable and the breaker is internally locked.
type Compiler struct {
	registry *knowledge.Registry
	cfg      Config
	logger   *logging.Logger
	source   placement.Source
	breaker  *resilience.Breaker
	metrics  *monitoring.Metrics
	rand     rand.Source
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSource sets the background traffic placement source. Without one,
// high density requests degrade to zero background vehicles.
func WithSource(src placement.Source) Option {
	return func(c *Compiler) { c.source = src }
}

// WithBreaker replaces the breaker guarding the placement source.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Compiler) { c.breaker = b }
}

// WithMetrics records compile metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Compiler) { c.metrics = m }
}

// WithRandSource sets the random source for background vehicle speeds.
func WithRandSource(src rand.Source) Option {
	return func(c *Compiler) { c.rand = src }
}

// New creates a compiler over reg. Zero config fields take DefaultConfig
// values.
func New(reg *knowledge.Registry, cfg Config, opts ...Option) *Compiler {
	def := DefaultConfig()
	if cfg.ResourcesDir == "" {
		cfg.ResourcesDir = def.ResourcesDir
	}
	if cfg.StopTime <= 0 {
		cfg.StopTime = def.StopTime
	}
	if cfg.DensityFactor <= 0 {
		cfg.DensityFactor = def.DensityFactor
	}
	if cfg.ScenarioName == "" {
		cfg.ScenarioName = def.ScenarioName
	}
	if cfg.Author == "" {
		cfg.Author = def.Author
	}
	if reg == nil {
		reg = knowledge.Default()
	}

	c := &Compiler{
		registry: reg,
		cfg:      cfg,
		logger:   logging.NewNop(),
		breaker: resilience.New("placement", resilience.Settings{
			Threshold: 3,
			Timeout:   30 * time.Second,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Compiler) Config() Config {
	return c.cfg
}

// Registry returns the knowledge registry the compiler resolves maps with.
func (c *Compiler) Registry() *knowledge.Registry {
	return c.registry
}

// Compile lowers bp into a scenario. Structural problems abort with a
// *StructuralError; everything else is recovered and reported in
// Result.Diagnostics.
func (c *Compiler) Compile(ctx context.Context, bp *blueprint.Blueprint) (*Result, error) {
	start := time.Now()
	res, err := c.compile(ctx, bp)
	c.record(res, err, time.Since(start))
	return res, err
}

// CompileToFile compiles bp and writes the document to path. Nothing is
// written unless compilation succeeds; write failures are *OutputError.
func (c *Compiler) CompileToFile(ctx context.Context, bp *blueprint.Blueprint, path string) (*Result, error) {
	start := time.Now()
	res, err := c.compile(ctx, bp)
	if err == nil {
		if werr := scenario.WriteFile(path, res.Scenario); werr != nil {
			err = &OutputError{Path: path, Err: werr}
		}
	}
	c.record(res, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	c.logger.Info("Scenario written", zap.String("path", path))
	return res, nil
}

func (c *Compiler) compile(ctx context.Context, bp *blueprint.Blueprint) (*Result, error) {
	if bp == nil {
		return nil, structural("blueprint", "blueprint is nil")
	}

	var diags []Diagnostic
	m, diag := c.resolveMap(bp)
	if diag != nil {
		diags = append(diags, *diag)
	}

	p, err := placeActors(bp.Actors, m)
	if err != nil {
		return nil, err
	}

	res := &Result{Map: m}
	if bp.TrafficDensity == blueprint.DensityHigh {
		road := roadNetwork(c.cfg.ResourcesDir, m).LogicFile
		res.Traffic = c.synthesize(ctx, road, p)
	}

	maneuvers := make([]actorManeuver, 0, len(bp.Actions))
	types := make([]string, 0, len(bp.Actions))
	for _, action := range bp.Actions {
		man, ok, err := compileAction(action, p)
		if err != nil {
			return nil, err
		}
		base := action.Common()
		if !ok {
			p.diags = append(p.diags, Diagnostic{
				Kind:    blueprint.DegradedInput,
				Subject: fmt.Sprintf("actions[%d]", base.Index),
				Message: fmt.Sprintf("unrecognized action type %q, no maneuver produced", base.Type),
			})
			continue
		}
		actor := base.Actor
		if actor == "" {
			actor = p.primary()
		}
		maneuvers = append(maneuvers, actorManeuver{actor: actor, maneuver: man})
		types = append(types, base.Type)
	}

	res.Rules = c.registry.ResolveRules(strings.TrimSpace(bp.Hint() + " " + strings.Join(types, " ")))
	res.Scenario = c.assemble(m, p, maneuvers)
	res.Scenario.Notes = notes(m, res.Rules)
	res.Diagnostics = append(diags, p.diags...)
	if res.Diagnostics == nil {
		res.Diagnostics = []Diagnostic{}
	}
	return res, nil
}

// resolveMap picks the map context. A registered map_key wins; otherwise
// the scenario hint (or the unknown key text) is resolved as free text. A
// blueprint with neither falls back to the city map.
func (c *Compiler) resolveMap(bp *blueprint.Blueprint) (knowledge.MapContext, *Diagnostic) {
	if m, ok := c.registry.Lookup(bp.MapKey); ok {
		return m, nil
	}

	var diag *Diagnostic
	text := bp.Hint()
	if bp.MapKey != "" {
		if text == "" {
			text = bp.MapKey
		}
		d := Diagnostic{Kind: blueprint.DegradedInput, Subject: "map_key"}
		diag = &d
	}

	var m knowledge.MapContext
	if text == "" {
		m, _ = c.registry.Lookup(knowledge.CityKey)
	} else {
		m = c.registry.ResolveMap(text)
	}
	if diag != nil {
		diag.Message = fmt.Sprintf("unknown map_key %q, resolved to %q", bp.MapKey, m.Key)
	}
	return m, diag
}

func notes(m knowledge.MapContext, rules []knowledge.Rule) []string {
	out := []string{fmt.Sprintf("Map: %s (%s), speed limit %g km/h", m.Key, m.RoadFile, m.SpeedLimit)}
	for _, r := range rules {
		out = append(out, fmt.Sprintf("Rule [%s]: %s", r.Maneuver, r.Text))
	}
	return out
}

func (c *Compiler) record(res *Result, err error, elapsed time.Duration) {
	switch {
	case err == nil:
		mans := 0
		for _, g := range res.Scenario.Groups {
			mans += len(g.Maneuvers)
		}
		for _, d := range res.Diagnostics {
			c.metrics.RecordDiagnostic(string(d.Kind))
			c.logger.Warn("Compile diagnostic",
				zap.String("kind", string(d.Kind)),
				zap.String("subject", d.Subject),
				zap.String("message", d.Message),
			)
		}
		c.metrics.RecordCompile(res.Map.Key, "ok", elapsed, mans)
		c.logger.Info("Blueprint compiled",
			zap.String("map", res.Map.Key),
			zap.Int("entities", len(res.Scenario.Entities)),
			zap.Int("maneuvers", mans),
			zap.Int("traffic", res.Traffic.Accepted),
			zap.Int("diagnostics", len(res.Diagnostics)),
			zap.Duration("elapsed", elapsed),
		)
	case errors.Is(err, ErrOutput):
		c.metrics.RecordCompile(res.Map.Key, "output", elapsed, 0)
		c.logger.Error("Scenario write failed", zap.Error(err))
	default:
		c.metrics.RecordCompile("", "structural", elapsed, 0)
		c.logger.Warn("Blueprint rejected", zap.Error(err))
	}
}
