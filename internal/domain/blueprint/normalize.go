package blueprint

import (
	"errors"
	"fmt"
	"strings"
)

// Normalize turns a decoded document into a typed Blueprint. It never fails:
// actions without a type or with malformed fields are dropped and reported,
// actor fields of the wrong shape are treated as absent and reported.
// Action indexes refer to positions in the original actions list.
func Normalize(raw *Raw) (*Blueprint, []Diagnostic) {
	if raw == nil {
		raw = &Raw{}
	}

	var diags []Diagnostic
	bp := &Blueprint{
		MapKey:         strings.TrimSpace(raw.MapKey),
		ScenarioType:   raw.ScenarioType,
		Description:    raw.Description,
		TrafficDensity: DensityLow,
		Actors:         make([]Actor, 0, len(raw.Actors)),
		Actions:        make([]Action, 0, len(raw.Actions)),
	}

	switch Density(strings.ToLower(strings.TrimSpace(raw.TrafficDensity))) {
	case "", DensityLow:
	case DensityHigh:
		bp.TrafficDensity = DensityHigh
	default:
		diags = append(diags, degraded("traffic_density",
			fmt.Sprintf("unknown density %q, using low", raw.TrafficDensity)))
	}

	for i, entry := range raw.Actors {
		rec, ok := asRecord(entry)
		if !ok {
			diags = append(diags, degraded(fmt.Sprintf("actors[%d]", i), "actor is not an object, skipping"))
			continue
		}
		actor, problems := normalizeActor(rec)
		for _, p := range problems {
			diags = append(diags, degraded(fmt.Sprintf("actors[%d]", i), p.Error()))
		}
		bp.Actors = append(bp.Actors, actor)
	}

	for i, entry := range raw.Actions {
		subject := fmt.Sprintf("actions[%d]", i)

		rec, ok := asRecord(entry)
		if !ok {
			diags = append(diags, degraded(subject, "action is not an object, skipping"))
			continue
		}

		typ, err := rec.text("type")
		if err != nil || strings.TrimSpace(typ) == "" {
			diags = append(diags, degraded(subject, "skipping malformed action (missing 'type')"))
			continue
		}

		action, err := normalizeAction(i, strings.TrimSpace(typ), rec)
		if err != nil {
			diags = append(diags, degraded(subject, fmt.Sprintf("skipping malformed %s action: %v", typ, err)))
			continue
		}
		bp.Actions = append(bp.Actions, action)
	}

	return bp, diags
}

func normalizeActor(rec record) (Actor, []error) {
	var (
		actor    Actor
		problems []error
		err      error
	)

	if actor.Name, err = rec.text("name"); err != nil {
		problems = append(problems, err)
	}
	actor.Name = strings.TrimSpace(actor.Name)

	if actor.Kind, err = rec.text("type"); err != nil {
		problems = append(problems, err)
	}
	actor.Kind = strings.ToLower(strings.TrimSpace(actor.Kind))

	if actor.Lane, err = rec.integer("lane"); err != nil {
		problems = append(problems, err)
	}
	if actor.S, err = rec.number("s"); err != nil {
		problems = append(problems, err)
	}
	if actor.Speed, err = rec.number("speed"); err != nil {
		problems = append(problems, err)
	}
	if actor.Offset, err = rec.number("offset"); err != nil {
		problems = append(problems, err)
	}

	return actor, problems
}

func normalizeAction(index int, typ string, rec record) (Action, error) {
	actor, err := rec.text("actor")
	if err != nil {
		return nil, err
	}
	base := Base{Index: index, Type: typ, Actor: strings.TrimSpace(actor)}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var action Action
	switch typ {
	case TypeTrafficLight:
		a := TrafficLight{Base: base}
		var err error
		a.SignalID, err = rec.label("id")
		collect(err)
		a.State, err = rec.text("state")
		collect(err)
		a.TriggerTime, err = rec.number("trigger_time")
		collect(err)
		action = a

	case TypeLaneChange:
		a := LaneChange{Base: base}
		var err error
		a.TargetLane, err = rec.integer("target_lane")
		collect(err)
		a.Duration, err = rec.number("duration")
		collect(err)
		a.TriggerTime, err = rec.number("trigger_time")
		collect(err)
		a.TriggerDist, err = rec.number("trigger_dist")
		collect(err)
		a.TriggerEntity, err = rec.text("trigger_entity")
		collect(err)
		action = a

	case TypeCrossStreet:
		a := CrossStreet{Base: base}
		var err error
		a.TriggerDist, err = rec.number("trigger_dist")
		collect(err)
		a.TriggerEntity, err = rec.text("trigger_entity")
		collect(err)
		action = a

	case TypeBrake, TypeSpeedChange, TypeAccelerate, TypeDecelerate, TypeStop:
		a := SpeedChange{Base: base}
		var err error
		a.TargetSpeed, err = rec.number("target_speed")
		collect(err)
		a.Duration, err = rec.number("duration")
		collect(err)
		a.TriggerTime, err = rec.number("trigger_time")
		collect(err)
		a.TriggerDist, err = rec.number("trigger_dist")
		collect(err)
		a.TriggerEntity, err = rec.text("trigger_entity")
		collect(err)
		if a.TargetSpeed == nil && typ != TypeBrake && typ != TypeStop && !rec.has("target_speed") {
			collect(fmt.Errorf("target_speed is required"))
		}
		action = a

	default:
		action = Unrecognized{Base: base}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return action, nil
}

func degraded(subject, msg string) Diagnostic {
	return Diagnostic{Kind: DegradedInput, Subject: subject, Message: msg}
}
