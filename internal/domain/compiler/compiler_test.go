package compiler

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/ScenarioForge/internal/providers/placement"
)

func ptr[T any](v T) *T { return &v }

const cutIn = `{
  "map_key": "highway",
  "traffic_density": "low",
  "actors": [
    {"name": "Ego", "type": "car", "lane": -2, "s": 0, "speed": 100},
    {"name": "Target", "type": "car", "lane": -3, "s": 0, "speed": 130}
  ],
  "actions": [
    {"type": "lane_change", "actor": "Target", "target_lane": -2, "trigger_time": 5.0, "duration": 2.0},
    {"type": "brake", "actor": "Ego", "target_speed": 60, "trigger_time": 5, "trigger_dist": 15, "trigger_entity": "Target"}
  ]
}`

func parse(t *testing.T, text string) *blueprint.Blueprint {
	t.Helper()
	raw, err := blueprint.ParseText(text)
	require.NoError(t, err)
	bp, diags := blueprint.Normalize(raw)
	require.Empty(t, diags)
	return bp
}

func newTestCompiler(opts ...Option) *Compiler {
	return New(knowledge.Default(), Config{ResourcesDir: "/opt/esmini/resources"}, opts...)
}

func TestCompileCutIn(t *testing.T) {
	res, err := newTestCompiler().Compile(context.Background(), parse(t, cutIn))
	require.NoError(t, err)
	sc := res.Scenario

	assert.Equal(t, knowledge.HighwayKey, res.Map.Key)
	assert.Equal(t, "/opt/esmini/resources/xodr/e6mini.xodr", sc.RoadNetwork.LogicFile)
	assert.Equal(t, "/opt/esmini/resources/models/top_view.osgb", sc.RoadNetwork.SceneGraphFile)
	assert.Equal(t, "NeuroScenario", sc.Name)
	assert.Equal(t, "AI_Gen", sc.Author)

	require.Len(t, sc.Entities, 2)
	require.Len(t, sc.Maneuvers(), 2)

	assert.InDelta(t, 100/3.6, sc.Init[0].Speed, 1e-9)
	assert.Equal(t, -3, sc.Init[1].Position.LaneID)

	require.Len(t, sc.Groups, 2)
	lc := sc.Groups[0]
	assert.Equal(t, "Target", lc.Actor)
	assert.Equal(t, "Target_act_0_lane_change", lc.Maneuvers[0].Name)
	lcEvent := lc.Maneuvers[0].Events[0]
	assert.Equal(t, scenario.PriorityOverride, lcEvent.Priority)
	assert.Equal(t, scenario.LaneChange{
		TargetLane: -2,
		Dynamics:   scenario.Dynamics{Shape: scenario.ShapeSinusoidal, Duration: 2},
	}, lcEvent.Effector)
	require.Len(t, lcEvent.Triggers, 1)
	assert.Equal(t, scenario.TriggerTime, lcEvent.Triggers[0].Kind)
	assert.Equal(t, 5.0, lcEvent.Triggers[0].Value)

	brake := sc.Groups[1]
	assert.Equal(t, "Ego", brake.Actor)
	assert.Equal(t, "Ego_act_1_brake", brake.Maneuvers[0].Name)
	brakeEvent := brake.Maneuvers[0].Events[0]
	assert.Equal(t, scenario.TriggerTime, brakeEvent.Triggers[0].Kind, "speed actions ignore trigger_dist")
	assert.Equal(t, 5.0, brakeEvent.Triggers[0].Value)
	speed := brakeEvent.Effector.(scenario.SpeedChange)
	assert.InDelta(t, 60/3.6, speed.Speed, 1e-9)
	assert.Equal(t, scenario.Dynamics{Shape: scenario.ShapeLinear, Duration: 5}, speed.Dynamics)

	assert.Equal(t, "StopSim", sc.StopTrigger.Name)
	assert.Equal(t, 60.0, sc.StopTrigger.Value)
	assert.Equal(t, scenario.EdgeRising, sc.StopTrigger.Edge)

	assert.Equal(t, []knowledge.Rule{{Maneuver: knowledge.BrakeCheck, Text: mustRule(t, knowledge.BrakeCheck)}}, res.Rules)
	assert.Empty(t, res.Diagnostics)
	assert.False(t, res.Traffic.Requested)
}

func mustRule(t *testing.T, class knowledge.ManeuverClass) string {
	t.Helper()
	text, ok := knowledge.Default().RuleText(class)
	require.True(t, ok)
	return text
}

func TestCompileOneManeuverPerAction(t *testing.T) {
	bp := &blueprint.Blueprint{
		MapKey: "city",
		Actors: []blueprint.Actor{
			{Name: "Ego", Kind: blueprint.KindCar},
			{Name: "Walker", Kind: blueprint.KindPedestrian, S: ptr(40.0)},
		},
		Actions: []blueprint.Action{
			blueprint.TrafficLight{Base: blueprint.Base{Index: 0, Type: blueprint.TypeTrafficLight}, State: "Green"},
			blueprint.CrossStreet{Base: blueprint.Base{Index: 1, Type: blueprint.TypeCrossStreet, Actor: "Walker"}},
			blueprint.SpeedChange{Base: blueprint.Base{Index: 2, Type: blueprint.TypeStop, Actor: "Ego"}, TargetSpeed: ptr(40.0)},
			blueprint.LaneChange{Base: blueprint.Base{Index: 3, Type: blueprint.TypeLaneChange, Actor: "Ego"}, TriggerEntity: "Walker"},
			blueprint.SpeedChange{Base: blueprint.Base{Index: 4, Type: blueprint.TypeAccelerate}, TargetSpeed: ptr(50.0), Duration: ptr(2.0)},
		},
	}

	res, err := newTestCompiler().Compile(context.Background(), bp)
	require.NoError(t, err)
	sc := res.Scenario

	assert.Len(t, sc.Maneuvers(), len(bp.Actions))
	require.Len(t, sc.Groups, 2)
	assert.Equal(t, "Ego", sc.Groups[0].Actor)
	assert.Len(t, sc.Groups[0].Maneuvers, 4, "actor defaults to the first declared actor")
	assert.Equal(t, "Walker", sc.Groups[1].Actor)

	names := []string{}
	for _, m := range sc.Groups[0].Maneuvers {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Ego_act_0_traffic_light", "Ego_act_2_stop", "Ego_act_3_lane_change", "Ego_act_4_accelerate"}, names)

	tl := sc.Groups[0].Maneuvers[0].Events[0]
	assert.Equal(t, scenario.SignalState{SignalID: "1", State: "off;off;on"}, tl.Effector)
	assert.Equal(t, 0.0, tl.Triggers[0].Value)

	stop := sc.Groups[0].Maneuvers[1].Events[0].Effector.(scenario.SpeedChange)
	assert.Zero(t, stop.Speed, "stop ignores target_speed")

	lc := sc.Groups[0].Maneuvers[2].Events[0]
	assert.Equal(t, scenario.Trigger{
		Name: "LCTrig", Kind: scenario.TriggerRelativeDistance, Rule: scenario.RuleLessThan,
		Edge: scenario.EdgeRising, Value: 20, Entity: "Walker", Triggering: "Ego",
	}, lc.Triggers[0])
	assert.Equal(t, -1, lc.Effector.(scenario.LaneChange).TargetLane)
	assert.Equal(t, 3.0, lc.Effector.(scenario.LaneChange).Dynamics.Duration)

	cross := sc.Groups[1].Maneuvers[0].Events[0]
	assert.Equal(t, "WalkAction", cross.ActionName)
	trig := cross.Triggers[0]
	assert.Equal(t, "Ego", trig.Entity, "condition entity defaults to the primary actor")
	assert.Equal(t, "Walker", trig.Triggering)
	assert.Equal(t, 30.0, trig.Value)
	traj := cross.Effector.(scenario.FollowTrajectory)
	require.Len(t, traj.Vertices, 2)
	assert.Equal(t, scenario.LanePosition{RoadID: "0", LaneID: -1, S: 50, Offset: -4}, traj.Vertices[0].Position)
	assert.Equal(t, 5.0, traj.Vertices[1].Time)
	assert.Equal(t, 4.0, traj.Vertices[1].Position.Offset)

	walker, ok := sc.Entity("Walker")
	require.True(t, ok)
	assert.Equal(t, scenario.KindPedestrian, walker.Kind)
	assert.Equal(t, -4.0, sc.Init[1].Position.Offset)
}

func TestCompileUnrecognizedActions(t *testing.T) {
	bp := &blueprint.Blueprint{
		MapKey: "highway",
		Actors: []blueprint.Actor{{Name: "Ego"}},
		Actions: []blueprint.Action{
			blueprint.Unrecognized{Base: blueprint.Base{Index: 0, Type: "teleport", Actor: "Ego"}},
			blueprint.Unrecognized{Base: blueprint.Base{Index: 1, Type: "fly", Actor: "Nobody"}},
			blueprint.SpeedChange{Base: blueprint.Base{Index: 2, Type: blueprint.TypeBrake, Actor: "Ego"}},
		},
	}

	res, err := newTestCompiler().Compile(context.Background(), bp)
	require.NoError(t, err)
	assert.Len(t, res.Scenario.Maneuvers(), 1)
	assert.Equal(t, "Ego_act_2_brake", res.Scenario.Maneuvers()[0].Name)
	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Equal(t, blueprint.DegradedInput, d.Kind)
	}
	assert.Equal(t, "actions[1]", res.Diagnostics[1].Subject)
}

func TestCompileStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		bp      *blueprint.Blueprint
		subject string
	}{
		{
			name:    "duplicate actor",
			bp:      &blueprint.Blueprint{Actors: []blueprint.Actor{{Name: "Ego"}, {Name: "Ego"}}},
			subject: "actors[1]",
		},
		{
			name:    "unnamed actor",
			bp:      &blueprint.Blueprint{Actors: []blueprint.Actor{{Kind: "car"}}},
			subject: "actors[0]",
		},
		{
			name: "undeclared actor",
			bp: &blueprint.Blueprint{
				Actors:  []blueprint.Actor{{Name: "Ego"}},
				Actions: []blueprint.Action{blueprint.SpeedChange{Base: blueprint.Base{Index: 0, Type: "brake", Actor: "Ghost"}}},
			},
			subject: "actions[0]",
		},
		{
			name: "action without actors",
			bp: &blueprint.Blueprint{
				Actions: []blueprint.Action{blueprint.TrafficLight{Base: blueprint.Base{Index: 0, Type: "traffic_light"}}},
			},
			subject: "actions[0]",
		},
		{
			name:    "nil blueprint",
			subject: "blueprint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestCompiler().Compile(context.Background(), tt.bp)
			assert.Nil(t, res)
			require.ErrorIs(t, err, ErrStructural)

			var se *StructuralError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.subject, se.Subject)
		})
	}
}

func TestResolveMap(t *testing.T) {
	tests := []struct {
		name  string
		bp    blueprint.Blueprint
		want  string
		diags int
	}{
		{"registered key", blueprint.Blueprint{MapKey: "city"}, knowledge.CityKey, 0},
		{"nothing given", blueprint.Blueprint{}, knowledge.CityKey, 0},
		{"hint only", blueprint.Blueprint{ScenarioType: "highway cut-in"}, knowledge.HighwayKey, 0},
		{"hint mentions lights", blueprint.Blueprint{Description: "stop at the light"}, knowledge.CityKey, 0},
		{"unknown key resolved as text", blueprint.Blueprint{MapKey: "downtown city grid"}, knowledge.CityKey, 1},
		{"unknown key falls back to highway", blueprint.Blueprint{MapKey: "autobahn"}, knowledge.HighwayKey, 1},
		{"unknown key prefers hint", blueprint.Blueprint{MapKey: "autobahn", ScenarioType: "pedestrian crossing"}, knowledge.CityKey, 1},
	}

	c := newTestCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, diag := c.resolveMap(&tt.bp)
			assert.Equal(t, tt.want, m.Key)
			if tt.diags == 0 {
				assert.Nil(t, diag)
			} else {
				require.NotNil(t, diag)
				assert.Equal(t, "map_key", diag.Subject)
			}
		})
	}
}

func TestCompileDeterministicAtLowDensity(t *testing.T) {
	c := newTestCompiler()
	first, err := c.Compile(context.Background(), parse(t, cutIn))
	require.NoError(t, err)
	second, err := c.Compile(context.Background(), parse(t, cutIn))
	require.NoError(t, err)

	assert.Equal(t, first.Scenario, second.Scenario)
}

func TestCompileRecordsMetrics(t *testing.T) {
	m := monitoring.NewMetrics(prometheus.NewRegistry())
	c := newTestCompiler(WithMetrics(m))

	_, err := c.Compile(context.Background(), parse(t, cutIn))
	require.NoError(t, err)
	_, err = c.Compile(context.Background(), &blueprint.Blueprint{Actors: []blueprint.Actor{{}}})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompilesTotal.WithLabelValues("highway", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CompilesTotal.WithLabelValues("", "structural")))
}

func TestCompileToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "cut_in.xosc")

	res, err := newTestCompiler().CompileToFile(context.Background(), parse(t, cutIn), path)
	require.NoError(t, err)
	require.NotNil(t, res)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `entityRef="Target"`)
	assert.Contains(t, string(data), "Rule [brake_check]")
}

func TestCompileToFileErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := newTestCompiler().CompileToFile(context.Background(), parse(t, cutIn), filepath.Join(blocker, "out.xosc"))
	require.ErrorIs(t, err, ErrOutput)
	var oe *OutputError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, filepath.Join(blocker, "out.xosc"), oe.Path)

	target := filepath.Join(dir, "dup.xosc")
	_, err = newTestCompiler().CompileToFile(context.Background(),
		&blueprint.Blueprint{Actors: []blueprint.Actor{{Name: "A"}, {Name: "A"}}}, target)
	require.ErrorIs(t, err, ErrStructural)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a rejected blueprint")
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(nil, Config{})
	assert.Equal(t, DefaultConfig(), c.Config())
	assert.NotNil(t, c.Registry())

	c = New(nil, Config{StopTime: 30, DensityFactor: 3}, WithRandSource(rand.NewPCG(1, 2)), WithBreaker(resilience.New("x", resilience.Settings{})), WithSource(placement.Static()))
	assert.Equal(t, 30.0, c.Config().StopTime)
	assert.Equal(t, 3.0, c.Config().DensityFactor)
}
