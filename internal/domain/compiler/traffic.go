package compiler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ScenarioForge/internal/providers/placement"
)

const (
	// ConflictGap is the minimum longitudinal distance between a background
	// vehicle and any placed actor in the same lane.
	ConflictGap = 15.0

	trafficMinKmh = 70.0
	trafficMaxKmh = 90.0
	trafficPrefix = "Traffic_"
	trafficSkin   = "car_white"
)

// fallbackAnchor is used when no actor has been placed.
var fallbackAnchor = placement.Anchor{Lane: -2, S: 0}

// TrafficStats summarizes one synthesis pass.
type TrafficStats struct {
	Requested bool `json:"requested"`
	Proposed  int  `json:"proposed"`
	Accepted  int  `json:"accepted"`
	Rejected  int  `json:"rejected"`
	Failed    bool `json:"failed"`
}

// conflicts reports whether c is closer than ConflictGap to an occupied cell
// in its lane.
func conflicts(c placement.Candidate, occupied []OccupiedCell) bool {
	for _, cell := range occupied {
		if cell.Lane == c.Lane && math.Abs(c.S-cell.S) < ConflictGap {
			return true
		}
	}
	return false
}

func anchorOf(occupied []OccupiedCell) placement.Anchor {
	if len(occupied) == 0 {
		return fallbackAnchor
	}
	return placement.Anchor{Lane: occupied[0].Lane, S: occupied[0].S}
}

// synthesize asks the placement source for background vehicles around the
// first occupied cell and appends the non-conflicting ones to p. Source
// failures of any kind leave p unchanged and add a diagnostic. Accepted
// vehicles are not added to the occupied cells.
func (c *Compiler) synthesize(ctx context.Context, road string, p *placed) TrafficStats {
	stats := TrafficStats{Requested: true}
	if c.source == nil {
		p.diags = append(p.diags, Diagnostic{
			Kind:    blueprint.ExternalDependencyFailure,
			Subject: "traffic",
			Message: "no placement source configured, skipping background traffic",
		})
		stats.Failed = true
		return stats
	}

	anchor := anchorOf(p.cells)
	start := time.Now()
	candidates, err := resilience.Do(ctx, c.breaker, func(ctx context.Context) ([]placement.Candidate, error) {
		return c.source.Candidates(ctx, road, anchor, c.cfg.DensityFactor)
	})
	c.metrics.RecordPlacementCall(time.Since(start), err)
	c.metrics.SetBreakerOpen(c.breaker != nil && c.breaker.State() == resilience.StateOpen)

	if err != nil {
		msg := fmt.Sprintf("placement failed, continuing without background traffic: %v", err)
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
			msg = "placement source unavailable (circuit open), continuing without background traffic"
		}
		p.diags = append(p.diags, Diagnostic{
			Kind:    blueprint.ExternalDependencyFailure,
			Subject: "traffic",
			Message: msg,
		})
		c.logger.Warn("Traffic synthesis failed",
			zap.String("road", road),
			zap.Error(err),
		)
		stats.Failed = true
		return stats
	}

	stats.Proposed = len(candidates)
	speed := distuv.Uniform{Min: trafficMinKmh, Max: trafficMaxKmh, Src: c.rand}

	for _, cand := range candidates {
		if conflicts(cand, p.cells) {
			stats.Rejected++
			continue
		}

		name := trafficPrefix + strconv.Itoa(cand.Index)
		if _, taken := p.names[name]; taken {
			p.diags = append(p.diags, Diagnostic{
				Kind:    blueprint.DegradedInput,
				Subject: "traffic",
				Message: fmt.Sprintf("skipping background vehicle %q, name already in use", name),
			})
			stats.Rejected++
			continue
		}
		p.names[name] = -1

		skin := cand.Skin
		if skin == "" {
			skin = trafficSkin
		}
		p.entities = append(p.entities, newEntity(name, blueprint.KindCar, skin))
		p.inits = append(p.inits, scenario.InitAction{
			Entity:   name,
			Position: scenario.LanePosition{RoadID: RoadID, LaneID: cand.Lane, S: cand.S},
			Speed:    kmh(speed.Rand()),
		})
		stats.Accepted++
	}

	c.metrics.RecordTraffic(stats.Accepted, stats.Rejected)
	c.logger.Debug("Background traffic synthesized",
		zap.String("road", road),
		zap.Int("proposed", stats.Proposed),
		zap.Int("accepted", stats.Accepted),
		zap.Int("rejected", stats.Rejected),
	)
	return stats
}
