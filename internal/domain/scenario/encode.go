package scenario

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// now stamps the file header; tests pin it.
var now = time.Now

// Encode writes sc as an OpenSCENARIO 1.2 document.
func Encode(w io.Writer, sc *Scenario) error {
	doc, err := toDocument(sc)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func toDocument(sc *Scenario) (*xOpenScenario, error) {
	doc := &xOpenScenario{
		FileHeader: xFileHeader{
			RevMajor:    1,
			RevMinor:    2,
			Date:        now().UTC().Format("2006-01-02T15:04:05"),
			Description: sc.Name,
			Author:      sc.Author,
		},
		RoadNetwork: xRoadNetwork{
			LogicFile:      xFile{Filepath: sc.RoadNetwork.LogicFile},
			SceneGraphFile: xFile{Filepath: sc.RoadNetwork.SceneGraphFile},
		},
		Comment: commentText(sc.Notes),
	}

	for _, e := range sc.Entities {
		obj, err := entityElement(e)
		if err != nil {
			return nil, err
		}
		doc.Entities.Objects = append(doc.Entities.Objects, obj)
	}

	doc.Storyboard.Init = initElement(sc.Init)

	story := xStory{Name: sc.Name + "Story"}
	act := xAct{
		Name:         sc.Name + "Act",
		StartTrigger: triggerElement(actStart),
	}
	for _, g := range sc.Groups {
		group, err := groupElement(g)
		if err != nil {
			return nil, err
		}
		act.Groups = append(act.Groups, group)
	}
	story.Acts = []xAct{act}
	doc.Storyboard.Stories = []xStory{story}
	doc.Storyboard.StopTrigger = triggerElement(sc.StopTrigger)

	return doc, nil
}

// commentText joins notes into comment text. "--" may not appear inside an
// XML comment.
func commentText(notes []string) string {
	if len(notes) == 0 {
		return ""
	}
	text := " " + strings.Join(notes, "\n     ") + " "
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "- -")
	}
	return text
}

// actStart starts the single act as soon as the simulation runs.
var actStart = Trigger{
	Name:  "ActStart",
	Kind:  TriggerTime,
	Rule:  RuleGreaterThan,
	Edge:  EdgeRising,
	Value: 0,
}

func entityElement(e Entity) (xScenarioObject, error) {
	bb := xBoundingBox{
		Center: xCenter{X: e.BoundingBox.CenterX, Y: e.BoundingBox.CenterY, Z: e.BoundingBox.CenterZ},
		Dimensions: xDimensions{
			Width:  e.BoundingBox.Width,
			Length: e.BoundingBox.Length,
			Height: e.BoundingBox.Height,
		},
	}
	props := xProperties{}
	for _, p := range e.Properties {
		props.Items = append(props.Items, xProperty{Name: p.Name, Value: p.Value})
	}

	obj := xScenarioObject{Name: e.Name}
	switch e.Kind {
	case KindPedestrian:
		obj.Pedestrian = &xPedestrian{
			Name:        e.Name,
			Mass:        e.Mass,
			Category:    e.Category,
			BoundingBox: bb,
			Properties:  props,
		}
	case KindVehicle:
		if e.FrontAxle == nil || e.RearAxle == nil {
			return obj, fmt.Errorf("vehicle %q has no axles", e.Name)
		}
		obj.Vehicle = &xVehicle{
			Name:        e.Name,
			Category:    e.Category,
			BoundingBox: bb,
			Performance: xPerformance{
				MaxSpeed:        e.Performance.MaxSpeed,
				MaxAcceleration: e.Performance.MaxAcceleration,
				MaxDeceleration: e.Performance.MaxDeceleration,
			},
			Axles:      xAxles{Front: axleElement(*e.FrontAxle), Rear: axleElement(*e.RearAxle)},
			Properties: props,
		}
	default:
		return obj, fmt.Errorf("entity %q has unknown kind %q", e.Name, e.Kind)
	}
	return obj, nil
}

func axleElement(a Axle) xAxle {
	return xAxle{
		MaxSteering:   a.MaxSteering,
		WheelDiameter: a.WheelDiameter,
		TrackWidth:    a.TrackWidth,
		PositionX:     a.PositionX,
		PositionZ:     a.PositionZ,
	}
}

func initElement(actions []InitAction) xInit {
	var init xInit
	for _, a := range actions {
		init.Actions.Privates = append(init.Actions.Privates, xPrivate{
			EntityRef: a.Entity,
			Actions: []xPrivateAction{
				{Teleport: &xTeleport{Position: positionElement(a.Position)}},
				speedElement(SpeedChange{Speed: a.Speed, Dynamics: Dynamics{Shape: ShapeStep}}),
			},
		})
	}
	return init
}

func positionElement(p LanePosition) xPosition {
	return xPosition{Lane: xLanePosition{RoadID: p.RoadID, LaneID: p.LaneID, S: p.S, Offset: p.Offset}}
}

func dynamicsElement(d Dynamics) xTransitionDynamics {
	return xTransitionDynamics{Shape: d.Shape, Value: d.Duration, Dimension: "time"}
}

func speedElement(s SpeedChange) xPrivateAction {
	return xPrivateAction{Longitudinal: &xLongitudinal{Speed: xSpeedAction{
		Dynamics: dynamicsElement(s.Dynamics),
		Target:   xSpeedTarget{Absolute: xFloatValue{Value: s.Speed}},
	}}}
}

func groupElement(g ManeuverGroup) (xManeuverGroup, error) {
	group := xManeuverGroup{
		MaximumExecutionCount: 1,
		Name:                  g.Actor + "ManeuverGroup",
		Actors:                xActors{Refs: []xEntityRef{{EntityRef: g.Actor}}},
	}
	for _, m := range g.Maneuvers {
		man := xManeuver{Name: m.Name}
		for _, ev := range m.Events {
			action, err := actionElement(ev)
			if err != nil {
				return group, fmt.Errorf("maneuver %s: %w", m.Name, err)
			}
			man.Events = append(man.Events, xEvent{
				Name:                  ev.Name,
				Priority:              ev.Priority,
				MaximumExecutionCount: 1,
				Action:                action,
				StartTrigger:          triggerElement(ev.Triggers...),
			})
		}
		group.Maneuvers = append(group.Maneuvers, man)
	}
	return group, nil
}

func actionElement(ev Event) (xAction, error) {
	action := xAction{Name: ev.ActionName}

	switch eff := ev.Effector.(type) {
	case SpeedChange:
		private := speedElement(eff)
		action.Private = &private
	case LaneChange:
		action.Private = &xPrivateAction{Lateral: &xLateral{LaneChange: xLaneChangeAction{
			Dynamics: dynamicsElement(eff.Dynamics),
			Target:   xLaneTarget{Absolute: xIntValue{Value: eff.TargetLane}},
		}}}
	case SignalState:
		action.Global = &xGlobalAction{Infrastructure: xInfrastructureAction{
			TrafficSignal: xTrafficSignalAction{State: xTrafficSignalState{Name: eff.SignalID, State: eff.State}},
		}}
	case FollowTrajectory:
		traj := xTrajectory{Name: eff.Name, Closed: eff.Closed}
		for _, v := range eff.Vertices {
			traj.Shape.Polyline.Vertices = append(traj.Shape.Polyline.Vertices, xVertex{
				Time:     v.Time,
				Position: positionElement(v.Position),
			})
		}
		action.Private = &xPrivateAction{Routing: &xRouting{FollowTrajectory: xFollowTrajectory{
			Ref:           xTrajectoryRef{Trajectory: traj},
			TimeReference: xTimeReference{Timing: xTiming{DomainAbsoluteRelative: "relative", Scale: 1, Offset: 0}},
			FollowingMode: xFollowingMode{Mode: "position"},
		}}}
	default:
		return action, fmt.Errorf("event %s has no effector", ev.Name)
	}

	return action, nil
}

// triggerElement places each trigger in its own condition group, so the
// event starts when any of them fires.
func triggerElement(triggers ...Trigger) xTrigger {
	var out xTrigger
	for _, t := range triggers {
		out.Groups = append(out.Groups, xConditionGroup{Conditions: []xCondition{conditionElement(t)}})
	}
	return out
}

func conditionElement(t Trigger) xCondition {
	cond := xCondition{Name: t.Name, Delay: t.Delay, Edge: t.Edge}

	switch t.Kind {
	case TriggerRelativeDistance:
		cond.ByEntity = &xByEntityCondition{
			TriggeringEntities: xTriggeringEntities{
				Rule: "any",
				Refs: []xEntityRef{{EntityRef: t.Triggering}},
			},
			EntityCondition: xEntityCondition{RelativeDistance: xRelativeDistanceCondition{
				EntityRef:            t.Entity,
				Freespace:            false,
				RelativeDistanceType: "longitudinal",
				Rule:                 t.Rule,
				Value:                t.Value,
				CoordinateSystem:     "entity",
			}},
		}
	default:
		cond.ByValue = &xByValueCondition{SimulationTime: xSimulationTimeCondition{Value: t.Value, Rule: t.Rule}}
	}

	return cond
}
