package blueprint

// Raw is a decoded but unvalidated blueprint document.
type Raw struct {
	MapKey         string `json:"map_key" yaml:"map_key"`
	ScenarioType   string `json:"scenario_type,omitempty" yaml:"scenario_type"`
	Description    string `json:"description,omitempty" yaml:"description"`
	TrafficDensity string `json:"traffic_density,omitempty" yaml:"traffic_density"`
	Actors         []any  `json:"actors" yaml:"actors"`
	Actions        []any  `json:"actions" yaml:"actions"`
}

func (r *Raw) empty() bool {
	return r.MapKey == "" && r.ScenarioType == "" && r.Description == "" &&
		r.TrafficDensity == "" && len(r.Actors) == 0 && len(r.Actions) == 0
}

// Density selects how much background traffic is synthesized.
type Density string

const (
	DensityLow  Density = "low"
	DensityHigh Density = "high"
)

// Blueprint is the typed, normalized compiler input.
type Blueprint struct {
	MapKey         string
	ScenarioType   string
	Description    string
	TrafficDensity Density
	Actors         []Actor
	Actions        []Action
}

// Hint returns the free text used to infer a map when MapKey is unusable.
func (b *Blueprint) Hint() string {
	if b.ScenarioType != "" {
		return b.ScenarioType
	}
	return b.Description
}

// Actor kinds
const (
	KindCar        = "car"
	KindTruck      = "truck"
	KindBus        = "bus"
	KindPedestrian = "pedestrian"
)

// Actor is a declared scenario participant. Nil fields were absent from the
// input; Entity Placement applies the defaults.
type Actor struct {
	Name   string
	Kind   string
	Lane   *int
	S      *float64
	Speed  *float64 // km/h
	Offset *float64
}

// Action type tags
const (
	TypeTrafficLight = "traffic_light"
	TypeLaneChange   = "lane_change"
	TypeCrossStreet  = "cross_street"
	TypeBrake        = "brake"
	TypeSpeedChange  = "speed_change"
	TypeAccelerate   = "accelerate"
	TypeDecelerate   = "decelerate"
	TypeStop         = "stop"
)

// Action is one of TrafficLight, LaneChange, CrossStreet, SpeedChange or
// Unrecognized.
type Action interface {
	Common() Base
	isAction()
}

// Base carries the fields every action has. Actor is empty when the input
// did not name one.
type Base struct {
	Index int
	Type  string
	Actor string
}

// Common returns the shared action fields.
func (b Base) Common() Base { return b }

func (Base) isAction() {}

// TrafficLight switches a signal to a new state.
type TrafficLight struct {
	Base
	SignalID    string
	State       string
	TriggerTime *float64
}

// LaneChange moves the actor to an absolute lane.
type LaneChange struct {
	Base
	TargetLane    *int
	Duration      *float64
	TriggerTime   *float64
	TriggerDist   *float64
	TriggerEntity string
}

// CrossStreet walks a pedestrian across the road.
type CrossStreet struct {
	Base
	TriggerDist   *float64
	TriggerEntity string
}

// SpeedChange covers brake, speed_change, accelerate, decelerate and stop.
// TriggerDist and TriggerEntity are accepted but not used for triggering.
type SpeedChange struct {
	Base
	TargetSpeed   *float64 // km/h
	Duration      *float64
	TriggerTime   *float64
	TriggerDist   *float64
	TriggerEntity string
}

// Unrecognized is an action whose type the compiler does not know. It
// compiles to nothing.
type Unrecognized struct {
	Base
}

// DiagnosticKind classifies a recovered problem.
type DiagnosticKind string

const (
	DegradedInput             DiagnosticKind = "degraded_input"
	ExternalDependencyFailure DiagnosticKind = "external_dependency_failure"
)

// Diagnostic records a problem that was recovered locally.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Subject string         `json:"subject"`
	Message string         `json:"message"`
}
