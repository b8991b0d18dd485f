package scenario

// Scenario is a fully specified, simulator-ready scenario.
type Scenario struct {
	Name        string
	Author      string
	RoadNetwork RoadNetwork
	Entities    []Entity
	Init        []InitAction
	Groups      []ManeuverGroup
	StopTrigger Trigger
	// Notes are rendered as a comment at the top of the document.
	Notes []string
}

// RoadNetwork references the road geometry and its visual scene.
type RoadNetwork struct {
	LogicFile      string
	SceneGraphFile string
}

// EntityKind distinguishes vehicles from pedestrians.
type EntityKind string

const (
	KindVehicle    EntityKind = "vehicle"
	KindPedestrian EntityKind = "pedestrian"
)

// BoundingBox is an entity's extent relative to its reference point.
type BoundingBox struct {
	Width   float64
	Length  float64
	Height  float64
	CenterX float64
	CenterY float64
	CenterZ float64
}

// Axle describes one vehicle axle.
type Axle struct {
	MaxSteering   float64
	WheelDiameter float64
	TrackWidth    float64
	PositionX     float64
	PositionZ     float64
}

// Performance bounds a vehicle's dynamics.
type Performance struct {
	MaxSpeed        float64
	MaxAcceleration float64
	MaxDeceleration float64
}

// Property is a free-form name/value pair read by the simulator.
type Property struct {
	Name  string
	Value string
}

// Entity is the geometry-bearing representation of one actor.
type Entity struct {
	Name        string
	Kind        EntityKind
	Category    string // car, truck, bus, pedestrian
	BoundingBox BoundingBox
	FrontAxle   *Axle
	RearAxle    *Axle
	Performance Performance
	Mass        float64 // pedestrians only
	Properties  []Property
}

// LanePosition locates a point by road, lane and longitudinal distance.
type LanePosition struct {
	RoadID string
	LaneID int
	S      float64
	Offset float64
}

// InitAction places an entity and sets its starting speed (m/s).
type InitAction struct {
	Entity   string
	Position LanePosition
	Speed    float64
}

// Dynamics shapes
const (
	ShapeStep       = "step"
	ShapeLinear     = "linear"
	ShapeSinusoidal = "sinusoidal"
)

// Dynamics describes how a change is applied over time.
type Dynamics struct {
	Shape    string
	Duration float64
}

// Effector is the behavior an event applies. Implementations: SpeedChange,
// LaneChange, SignalState, FollowTrajectory.
type Effector interface {
	effector()
}

// SpeedChange sets an absolute target speed (m/s).
type SpeedChange struct {
	Speed    float64
	Dynamics Dynamics
}

// LaneChange moves to an absolute lane.
type LaneChange struct {
	TargetLane int
	Dynamics   Dynamics
}

// SignalState switches a traffic signal to an encoded phase state.
type SignalState struct {
	SignalID string
	State    string
}

// Vertex is one timed point of a polyline trajectory.
type Vertex struct {
	Time     float64
	Position LanePosition
}

// FollowTrajectory moves the entity along a polyline.
type FollowTrajectory struct {
	Name     string
	Closed   bool
	Vertices []Vertex
}

func (SpeedChange) effector()      {}
func (LaneChange) effector()       {}
func (SignalState) effector()      {}
func (FollowTrajectory) effector() {}

// Trigger kinds
const (
	TriggerTime             = "time"
	TriggerRelativeDistance = "relative-distance"
)

// Comparison operators
const (
	RuleLessThan    = "lessThan"
	RuleGreaterThan = "greaterThan"
)

// Condition edges
const (
	EdgeRising  = "rising"
	EdgeFalling = "falling"
	EdgeNone    = "none"
)

// Trigger is a single activation condition. Time triggers compare
// simulation time with Value; relative-distance triggers compare the
// longitudinal, entity-frame distance between Triggering and Entity.
type Trigger struct {
	Name       string
	Kind       string
	Rule       string
	Edge       string
	Delay      float64
	Value      float64
	Entity     string
	Triggering string
}

// Event applies one effector once any trigger fires.
type Event struct {
	Name       string
	Priority   string
	ActionName string
	Effector   Effector
	Triggers   []Trigger
}

// PriorityOverride makes a new event supersede the actor's running one.
const PriorityOverride = "override"

// Maneuver is an ordered list of events.
type Maneuver struct {
	Name   string
	Events []Event
}

// ManeuverGroup binds maneuvers to one actor.
type ManeuverGroup struct {
	Actor     string
	Maneuvers []Maneuver
}

// Entity returns the entity with the given name.
func (s *Scenario) Entity(name string) (Entity, bool) {
	for _, e := range s.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Maneuvers returns every maneuver in storyboard order.
func (s *Scenario) Maneuvers() []Maneuver {
	var out []Maneuver
	for _, g := range s.Groups {
		out = append(out, g.Maneuvers...)
	}
	return out
}
