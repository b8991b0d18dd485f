package scenario

import "encoding/xml"

// OpenSCENARIO 1.2 element tree. Only the subset the compiler emits is
// modelled.

type xEmpty struct{}

type xOpenScenario struct {
	XMLName               xml.Name     `xml:"OpenSCENARIO"`
	Comment               string       `xml:",comment"`
	FileHeader            xFileHeader  `xml:"FileHeader"`
	ParameterDeclarations xEmpty       `xml:"ParameterDeclarations"`
	CatalogLocations      xEmpty       `xml:"CatalogLocations"`
	RoadNetwork           xRoadNetwork `xml:"RoadNetwork"`
	Entities              xEntities    `xml:"Entities"`
	Storyboard            xStoryboard  `xml:"Storyboard"`
}

type xFileHeader struct {
	RevMajor    int    `xml:"revMajor,attr"`
	RevMinor    int    `xml:"revMinor,attr"`
	Date        string `xml:"date,attr"`
	Description string `xml:"description,attr"`
	Author      string `xml:"author,attr"`
}

type xFile struct {
	Filepath string `xml:"filepath,attr"`
}

type xRoadNetwork struct {
	LogicFile      xFile `xml:"LogicFile"`
	SceneGraphFile xFile `xml:"SceneGraphFile"`
}

type xEntities struct {
	Objects []xScenarioObject `xml:"ScenarioObject"`
}

type xScenarioObject struct {
	Name       string       `xml:"name,attr"`
	Vehicle    *xVehicle    `xml:"Vehicle,omitempty"`
	Pedestrian *xPedestrian `xml:"Pedestrian,omitempty"`
}

type xVehicle struct {
	Name                  string       `xml:"name,attr"`
	Category              string       `xml:"vehicleCategory,attr"`
	ParameterDeclarations xEmpty       `xml:"ParameterDeclarations"`
	BoundingBox           xBoundingBox `xml:"BoundingBox"`
	Performance           xPerformance `xml:"Performance"`
	Axles                 xAxles       `xml:"Axles"`
	Properties            xProperties  `xml:"Properties"`
}

type xPedestrian struct {
	Name                  string       `xml:"name,attr"`
	Mass                  float64      `xml:"mass,attr"`
	Category              string       `xml:"pedestrianCategory,attr"`
	ParameterDeclarations xEmpty       `xml:"ParameterDeclarations"`
	BoundingBox           xBoundingBox `xml:"BoundingBox"`
	Properties            xProperties  `xml:"Properties"`
}

type xBoundingBox struct {
	Center     xCenter     `xml:"Center"`
	Dimensions xDimensions `xml:"Dimensions"`
}

type xCenter struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	Z float64 `xml:"z,attr"`
}

type xDimensions struct {
	Width  float64 `xml:"width,attr"`
	Length float64 `xml:"length,attr"`
	Height float64 `xml:"height,attr"`
}

type xPerformance struct {
	MaxSpeed        float64 `xml:"maxSpeed,attr"`
	MaxAcceleration float64 `xml:"maxAcceleration,attr"`
	MaxDeceleration float64 `xml:"maxDeceleration,attr"`
}

type xAxles struct {
	Front xAxle `xml:"FrontAxle"`
	Rear  xAxle `xml:"RearAxle"`
}

type xAxle struct {
	MaxSteering   float64 `xml:"maxSteering,attr"`
	WheelDiameter float64 `xml:"wheelDiameter,attr"`
	TrackWidth    float64 `xml:"trackWidth,attr"`
	PositionX     float64 `xml:"positionX,attr"`
	PositionZ     float64 `xml:"positionZ,attr"`
}

type xProperties struct {
	Items []xProperty `xml:"Property"`
}

type xProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xStoryboard struct {
	Init        xInit    `xml:"Init"`
	Stories     []xStory `xml:"Story"`
	StopTrigger xTrigger `xml:"StopTrigger"`
}

type xInit struct {
	Actions xInitActions `xml:"Actions"`
}

type xInitActions struct {
	Privates []xPrivate `xml:"Private"`
}

type xPrivate struct {
	EntityRef string           `xml:"entityRef,attr"`
	Actions   []xPrivateAction `xml:"PrivateAction"`
}

type xPrivateAction struct {
	Teleport     *xTeleport     `xml:"TeleportAction,omitempty"`
	Longitudinal *xLongitudinal `xml:"LongitudinalAction,omitempty"`
	Lateral      *xLateral      `xml:"LateralAction,omitempty"`
	Routing      *xRouting      `xml:"RoutingAction,omitempty"`
}

type xTeleport struct {
	Position xPosition `xml:"Position"`
}

type xPosition struct {
	Lane xLanePosition `xml:"LanePosition"`
}

type xLanePosition struct {
	RoadID string  `xml:"roadId,attr"`
	LaneID int     `xml:"laneId,attr"`
	S      float64 `xml:"s,attr"`
	Offset float64 `xml:"offset,attr"`
}

type xTransitionDynamics struct {
	Shape     string  `xml:"dynamicsShape,attr"`
	Value     float64 `xml:"value,attr"`
	Dimension string  `xml:"dynamicsDimension,attr"`
}

type xLongitudinal struct {
	Speed xSpeedAction `xml:"SpeedAction"`
}

type xSpeedAction struct {
	Dynamics xTransitionDynamics `xml:"SpeedActionDynamics"`
	Target   xSpeedTarget        `xml:"SpeedActionTarget"`
}

type xSpeedTarget struct {
	Absolute xFloatValue `xml:"AbsoluteTargetSpeed"`
}

type xFloatValue struct {
	Value float64 `xml:"value,attr"`
}

type xLateral struct {
	LaneChange xLaneChangeAction `xml:"LaneChangeAction"`
}

type xLaneChangeAction struct {
	Dynamics xTransitionDynamics `xml:"LaneChangeActionDynamics"`
	Target   xLaneTarget         `xml:"LaneChangeTarget"`
}

type xLaneTarget struct {
	Absolute xIntValue `xml:"AbsoluteTargetLane"`
}

type xIntValue struct {
	Value int `xml:"value,attr"`
}

type xRouting struct {
	FollowTrajectory xFollowTrajectory `xml:"FollowTrajectoryAction"`
}

type xFollowTrajectory struct {
	Ref           xTrajectoryRef `xml:"TrajectoryRef"`
	TimeReference xTimeReference `xml:"TimeReference"`
	FollowingMode xFollowingMode `xml:"TrajectoryFollowingMode"`
}

type xTrajectoryRef struct {
	Trajectory xTrajectory `xml:"Trajectory"`
}

type xTrajectory struct {
	Name                  string `xml:"name,attr"`
	Closed                bool   `xml:"closed,attr"`
	ParameterDeclarations xEmpty `xml:"ParameterDeclarations"`
	Shape                 xShape `xml:"Shape"`
}

type xShape struct {
	Polyline xPolyline `xml:"Polyline"`
}

type xPolyline struct {
	Vertices []xVertex `xml:"Vertex"`
}

type xVertex struct {
	Time     float64   `xml:"time,attr"`
	Position xPosition `xml:"Position"`
}

type xTimeReference struct {
	Timing xTiming `xml:"Timing"`
}

type xTiming struct {
	DomainAbsoluteRelative string  `xml:"domainAbsoluteRelative,attr"`
	Scale                  float64 `xml:"scale,attr"`
	Offset                 float64 `xml:"offset,attr"`
}

type xFollowingMode struct {
	Mode string `xml:"followingMode,attr"`
}

type xStory struct {
	Name string `xml:"name,attr"`
	Acts []xAct `xml:"Act"`
}

type xAct struct {
	Name         string           `xml:"name,attr"`
	Groups       []xManeuverGroup `xml:"ManeuverGroup"`
	StartTrigger xTrigger         `xml:"StartTrigger"`
}

type xManeuverGroup struct {
	MaximumExecutionCount int         `xml:"maximumExecutionCount,attr"`
	Name                  string      `xml:"name,attr"`
	Actors                xActors     `xml:"Actors"`
	Maneuvers             []xManeuver `xml:"Maneuver"`
}

type xActors struct {
	SelectTriggeringEntities bool         `xml:"selectTriggeringEntities,attr"`
	Refs                     []xEntityRef `xml:"EntityRef"`
}

type xEntityRef struct {
	EntityRef string `xml:"entityRef,attr"`
}

type xManeuver struct {
	Name   string   `xml:"name,attr"`
	Events []xEvent `xml:"Event"`
}

type xEvent struct {
	Name                  string   `xml:"name,attr"`
	Priority              string   `xml:"priority,attr"`
	MaximumExecutionCount int      `xml:"maximumExecutionCount,attr"`
	Action                xAction  `xml:"Action"`
	StartTrigger          xTrigger `xml:"StartTrigger"`
}

type xAction struct {
	Name    string          `xml:"name,attr"`
	Global  *xGlobalAction  `xml:"GlobalAction,omitempty"`
	Private *xPrivateAction `xml:"PrivateAction,omitempty"`
}

type xGlobalAction struct {
	Infrastructure xInfrastructureAction `xml:"InfrastructureAction"`
}

type xInfrastructureAction struct {
	TrafficSignal xTrafficSignalAction `xml:"TrafficSignalAction"`
}

type xTrafficSignalAction struct {
	State xTrafficSignalState `xml:"TrafficSignalStateAction"`
}

type xTrafficSignalState struct {
	Name  string `xml:"name,attr"`
	State string `xml:"state,attr"`
}

type xTrigger struct {
	Groups []xConditionGroup `xml:"ConditionGroup"`
}

type xConditionGroup struct {
	Conditions []xCondition `xml:"Condition"`
}

type xCondition struct {
	Name     string              `xml:"name,attr"`
	Delay    float64             `xml:"delay,attr"`
	Edge     string              `xml:"conditionEdge,attr"`
	ByValue  *xByValueCondition  `xml:"ByValueCondition,omitempty"`
	ByEntity *xByEntityCondition `xml:"ByEntityCondition,omitempty"`
}

type xByValueCondition struct {
	SimulationTime xSimulationTimeCondition `xml:"SimulationTimeCondition"`
}

type xSimulationTimeCondition struct {
	Value float64 `xml:"value,attr"`
	Rule  string  `xml:"rule,attr"`
}

type xByEntityCondition struct {
	TriggeringEntities xTriggeringEntities `xml:"TriggeringEntities"`
	EntityCondition    xEntityCondition    `xml:"EntityCondition"`
}

type xTriggeringEntities struct {
	Rule string       `xml:"triggeringEntitiesRule,attr"`
	Refs []xEntityRef `xml:"EntityRef"`
}

type xEntityCondition struct {
	RelativeDistance xRelativeDistanceCondition `xml:"RelativeDistanceCondition"`
}

type xRelativeDistanceCondition struct {
	EntityRef            string  `xml:"entityRef,attr"`
	Freespace            bool    `xml:"freespace,attr"`
	RelativeDistanceType string  `xml:"relativeDistanceType,attr"`
	Rule                 string  `xml:"rule,attr"`
	Value                float64 `xml:"value,attr"`
	CoordinateSystem     string  `xml:"coordinateSystem,attr"`
}
