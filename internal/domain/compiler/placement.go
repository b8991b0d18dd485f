package compiler

import (
	"fmt"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
)

const (
	// DefaultSpeedKmh applies to actors that declare no speed.
	DefaultSpeedKmh = 30.0
	// PedestrianOffset keeps pedestrians beside the driving lanes by default.
	PedestrianOffset = -4.0
	// RoadID is the road every lane position refers to.
	RoadID = "0"

	kmhPerMs = 3.6
)

// OccupiedCell marks a lane position taken by a placed actor.
type OccupiedCell struct {
	Lane int
	S    float64
}

// kmh converts km/h to m/s.
func kmh(v float64) float64 {
	return v / kmhPerMs
}

var (
	carAxleFront = scenario.Axle{MaxSteering: 0.5, WheelDiameter: 0.8, TrackWidth: 1.68, PositionX: 2.9, PositionZ: 0.35}
	carAxleRear  = scenario.Axle{MaxSteering: 0, WheelDiameter: 0.8, TrackWidth: 1.68, PositionX: 0, PositionZ: 0.35}
	performance  = scenario.Performance{MaxSpeed: 69, MaxAcceleration: 10, MaxDeceleration: 10}
)

// newEntity builds the geometry profile for an actor kind. skin overrides
// the visual model (background traffic uses catalog skins).
func newEntity(name, kind, skin string) scenario.Entity {
	model := "car_white.osgb"
	if skin != "" {
		model = skin + ".osgb"
	}

	var e scenario.Entity
	switch kind {
	case blueprint.KindPedestrian:
		e = scenario.Entity{
			Kind:        scenario.KindPedestrian,
			Category:    "pedestrian",
			BoundingBox: scenario.BoundingBox{Width: 0.5, Length: 0.6, Height: 1.8},
			Mass:        80,
		}
		if skin == "" {
			model = "car_red.osgb"
		}
	case blueprint.KindTruck, blueprint.KindBus:
		e = vehicle(kind, scenario.BoundingBox{Width: 3.0, Length: 10.0, Height: 3.5, CenterX: 2.0})
		if skin == "" {
			model = "car_red.osgb"
		}
	default:
		e = vehicle(blueprint.KindCar, scenario.BoundingBox{Width: 2.0, Length: 5.0, Height: 1.8, CenterX: 2.0})
	}

	e.Name = name
	e.Properties = []scenario.Property{
		{Name: "osgb", Value: "../resources/models/" + model},
		{Name: "model_id", Value: "0"},
	}
	return e
}

func vehicle(category string, bb scenario.BoundingBox) scenario.Entity {
	front, rear := carAxleFront, carAxleRear
	return scenario.Entity{
		Kind:        scenario.KindVehicle,
		Category:    category,
		BoundingBox: bb,
		FrontAxle:   &front,
		RearAxle:    &rear,
		Performance: performance,
	}
}

// placed is the output of placing the primary actors.
type placed struct {
	entities []scenario.Entity
	inits    []scenario.InitAction
	cells    []OccupiedCell
	names    map[string]int // entity name -> actor index
	lanes    map[string]int // entity name -> initial lane
	diags    []Diagnostic
}

// placeActors converts every actor into an entity with its initial pose and
// records its occupied cell, in input order.
func placeActors(actors []blueprint.Actor, m knowledge.MapContext) (*placed, error) {
	p := &placed{
		entities: make([]scenario.Entity, 0, len(actors)),
		inits:    make([]scenario.InitAction, 0, len(actors)),
		cells:    make([]OccupiedCell, 0, len(actors)),
		names:    make(map[string]int, len(actors)),
		lanes:    make(map[string]int, len(actors)),
	}

	for i, actor := range actors {
		subject := fmt.Sprintf("actors[%d]", i)

		if actor.Name == "" {
			return nil, structural(subject, "actor has no name")
		}
		if prev, dup := p.names[actor.Name]; dup {
			return nil, structural(subject, "duplicate actor name %q (first declared at actors[%d])", actor.Name, prev)
		}
		p.names[actor.Name] = i

		kind := actor.Kind
		switch kind {
		case "":
			kind = blueprint.KindCar
		case blueprint.KindCar, blueprint.KindTruck, blueprint.KindBus, blueprint.KindPedestrian:
		default:
			p.diags = append(p.diags, Diagnostic{
				Kind:    blueprint.DegradedInput,
				Subject: subject,
				Message: fmt.Sprintf("unknown actor type %q, using car", actor.Kind),
			})
			kind = blueprint.KindCar
		}

		lane := m.DefaultLane()
		if actor.Lane != nil {
			lane = *actor.Lane
		}
		s := 0.0
		if actor.S != nil {
			s = *actor.S
		}
		speed := DefaultSpeedKmh
		if actor.Speed != nil {
			speed = *actor.Speed
		}
		offset := 0.0
		switch {
		case actor.Offset != nil:
			offset = *actor.Offset
		case kind == blueprint.KindPedestrian:
			offset = PedestrianOffset
		}

		p.entities = append(p.entities, newEntity(actor.Name, kind, ""))
		p.inits = append(p.inits, scenario.InitAction{
			Entity:   actor.Name,
			Position: scenario.LanePosition{RoadID: RoadID, LaneID: lane, S: s, Offset: offset},
			Speed:    kmh(speed),
		})
		p.cells = append(p.cells, OccupiedCell{Lane: lane, S: s})
		p.lanes[actor.Name] = lane
	}

	return p, nil
}

// primary returns the first declared actor, or "" when there is none.
func (p *placed) primary() string {
	if len(p.entities) == 0 {
		return ""
	}
	return p.entities[0].Name
}

func (p *placed) has(name string) bool {
	_, ok := p.lanes[name]
	return ok
}
