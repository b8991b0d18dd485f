package compiler

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
)

// Action defaults
const (
	defaultSignalID       = "1"
	defaultLaneChangeTime = 2.0
	defaultLaneChangeDist = 20.0
	defaultTargetLane     = -1
	defaultLaneChangeDur  = 3.0
	defaultCrossDist      = 30.0
	defaultSpeedTime      = 5.0
	defaultSpeedDuration  = 5.0

	crossLane     = -1
	crossAnchorS  = 50.0
	crossFromOff  = -4.0
	crossToOff    = 4.0
	crossWalkTime = 5.0
	crossTrajName = "WalkPath"
)

// Signal phase encodings (red;yellow;green).
const (
	signalRed    = "on;off;off"
	signalYellow = "off;on;off"
	signalGreen  = "off;off;on"
)

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// signalState maps a colour name to its phase encoding. Text that already
// contains phase separators is passed through.
func signalState(state string) string {
	s := strings.ToLower(strings.TrimSpace(state))
	switch {
	case strings.Contains(s, "green"):
		return signalGreen
	case strings.Contains(s, "yellow"):
		return signalYellow
	case strings.Contains(s, ";"):
		return s
	default:
		return signalRed
	}
}

// maneuverName is deterministic for identical input.
func maneuverName(b blueprint.Base) string {
	return fmt.Sprintf("%s_act_%d_%s", b.Actor, b.Index, b.Type)
}

func timeTrigger(name string, at float64) scenario.Trigger {
	return scenario.Trigger{
		Name:  name,
		Kind:  scenario.TriggerTime,
		Rule:  scenario.RuleGreaterThan,
		Edge:  scenario.EdgeRising,
		Value: at,
	}
}

func distanceTrigger(name, entity, triggering string, dist float64) scenario.Trigger {
	return scenario.Trigger{
		Name:       name,
		Kind:       scenario.TriggerRelativeDistance,
		Rule:       scenario.RuleLessThan,
		Edge:       scenario.EdgeRising,
		Value:      dist,
		Entity:     entity,
		Triggering: triggering,
	}
}

// compileAction lowers one action into a maneuver for its actor. ok is false
// for unrecognized actions. Actions naming an undeclared actor are fatal.
func compileAction(action blueprint.Action, p *placed) (m scenario.Maneuver, ok bool, err error) {
	if _, unknown := action.(blueprint.Unrecognized); unknown {
		return m, false, nil
	}

	base := action.Common()
	subject := fmt.Sprintf("actions[%d]", base.Index)
	if base.Actor == "" {
		if p.primary() == "" {
			return m, false, structural(subject, "%s action has no actor and no actors are declared", base.Type)
		}
		base.Actor = p.primary()
	}
	if !p.has(base.Actor) {
		return m, false, structural(subject, "%s action targets undeclared actor %q", base.Type, base.Actor)
	}

	var ev scenario.Event
	switch a := action.(type) {
	case blueprint.TrafficLight:
		id := a.SignalID
		if id == "" {
			id = defaultSignalID
		}
		ev = scenario.Event{
			Name:       "TLEvent",
			ActionName: "TLAction",
			Effector:   scenario.SignalState{SignalID: id, State: signalState(a.State)},
			Triggers:   []scenario.Trigger{timeTrigger("TLTrig", orFloat(a.TriggerTime, 0))},
		}

	case blueprint.LaneChange:
		trig := timeTrigger("LCTrig", orFloat(a.TriggerTime, defaultLaneChangeTime))
		if a.TriggerEntity != "" {
			p.checkReference(subject, a.TriggerEntity)
			trig = distanceTrigger("LCTrig", a.TriggerEntity, base.Actor, orFloat(a.TriggerDist, defaultLaneChangeDist))
		}
		ev = scenario.Event{
			Name:       "LCEvent",
			ActionName: "LCAction",
			Effector: scenario.LaneChange{
				TargetLane: orInt(a.TargetLane, defaultTargetLane),
				Dynamics:   scenario.Dynamics{Shape: scenario.ShapeSinusoidal, Duration: orFloat(a.Duration, defaultLaneChangeDur)},
			},
			Triggers: []scenario.Trigger{trig},
		}

	case blueprint.CrossStreet:
		target := a.TriggerEntity
		if target == "" {
			target = p.primary()
		} else {
			p.checkReference(subject, target)
		}
		// The walk path is anchored on the nearside lane regardless of where
		// the pedestrian was placed.
		at := func(offset float64) scenario.LanePosition {
			return scenario.LanePosition{RoadID: RoadID, LaneID: crossLane, S: crossAnchorS, Offset: offset}
		}
		ev = scenario.Event{
			Name:       "CrossEvent",
			ActionName: "WalkAction",
			Effector: scenario.FollowTrajectory{
				Name: crossTrajName,
				Vertices: []scenario.Vertex{
					{Time: 0, Position: at(crossFromOff)},
					{Time: crossWalkTime, Position: at(crossToOff)},
				},
			},
			Triggers: []scenario.Trigger{distanceTrigger("CrossTrig", target, base.Actor, orFloat(a.TriggerDist, defaultCrossDist))},
		}

	case blueprint.SpeedChange:
		// brake and stop default to standstill; the other speed types are
		// dropped during normalization when target_speed is missing.
		target := orFloat(a.TargetSpeed, 0)
		if base.Type == blueprint.TypeStop {
			target = 0
		}
		ev = scenario.Event{
			Name:       "SpeedEvent",
			ActionName: "SpeedAction",
			Effector: scenario.SpeedChange{
				Speed:    kmh(target),
				Dynamics: scenario.Dynamics{Shape: scenario.ShapeLinear, Duration: orFloat(a.Duration, defaultSpeedDuration)},
			},
			Triggers: []scenario.Trigger{timeTrigger("SpeedTrig", orFloat(a.TriggerTime, defaultSpeedTime))},
		}

	default:
		return m, false, nil
	}

	ev.Priority = scenario.PriorityOverride
	return scenario.Maneuver{Name: maneuverName(base), Events: []scenario.Event{ev}}, true, nil
}

// checkReference records a diagnostic when a trigger names an entity that
// does not exist. The trigger is kept as written.
func (p *placed) checkReference(subject, name string) {
	if _, ok := p.names[name]; ok {
		return
	}
	p.diags = append(p.diags, Diagnostic{
		Kind:    blueprint.DegradedInput,
		Subject: subject,
		Message: fmt.Sprintf("trigger_entity %q is not a declared entity", name),
	})
}
