package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMap(t *testing.T) {
	reg := Default()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"registered city key", "city", CityKey},
		{"registered highway key", "highway", HighwayKey},
		{"explicit highway prefix", "highway: pedestrian runs across", HighwayKey},
		{"explicit city prefix", "City: fast overtake", CityKey},
		{"city keyword", "a busy city junction", CityKey},
		{"light keyword", "Run a red LIGHT", CityKey},
		{"pedestrian keyword", "pedestrian crossing in front of ego", CityKey},
		{"no hint falls back to highway", "aggressive cut in", HighwayKey},
		{"empty falls back to highway", "", HighwayKey},
		{"unknown prefix falls back to keywords", "rural: light rain", CityKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.ResolveMap(tt.input)
			assert.Equal(t, tt.want, got.Key)
		})
	}
}

func TestResolveMapIsPure(t *testing.T) {
	reg := Default()

	first := reg.ResolveMap("highway")
	first.Lanes[0] = 99

	second := reg.ResolveMap("highway")
	assert.Equal(t, []int{-2, -3}, second.Lanes)
	assert.Equal(t, -2, second.DefaultLane())
}

func TestResolveRules(t *testing.T) {
	reg := Default()

	tests := []struct {
		name  string
		input string
		want  []ManeuverClass
	}{
		{"none", "just drive", []ManeuverClass{Standard}},
		{"cut in", "a CUT in", []ManeuverClass{CutIn}},
		{"brake", "brake check", []ManeuverClass{BrakeCheck}},
		{"pass", "slow car gets passed", []ManeuverClass{Overtake}},
		{"overtake", "overtake on highway", []ManeuverClass{Overtake}},
		{"fixed order", "overtake then brake after the cut", []ManeuverClass{CutIn, BrakeCheck, Overtake}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := reg.ResolveRules(tt.input)
			got := make([]ManeuverClass, 0, len(rules))
			for _, r := range rules {
				got = append(got, r.Maneuver)
				assert.NotEmpty(t, r.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptContext(t *testing.T) {
	reg := Default()

	text := reg.PromptContext("highway cut in")
	assert.Contains(t, text, `"e6mini.xodr"`)
	assert.Contains(t, text, "Valid Lanes: [-2, -3]")
	assert.Contains(t, text, "Speed Limit: 110 km/h")
	assert.Contains(t, text, "AGGRESSOR must be FASTER")
	assert.NotContains(t, text, StandardRules.Text)

	plain := reg.PromptContext("city drive")
	assert.Contains(t, plain, StandardRules.Text)
	assert.Contains(t, plain, "fabriksgatan_traffic_lights.xodr")
}

func TestNewValidation(t *testing.T) {
	highway := MapContext{Key: HighwayKey, RoadFile: "e6mini.xodr", Lanes: []int{-2}}
	city := MapContext{Key: CityKey, RoadFile: "city.xodr", Lanes: []int{-1}}

	_, err := New([]MapContext{city}, nil)
	assert.Error(t, err, "highway is required")

	_, err = New([]MapContext{highway, city, city}, nil)
	assert.Error(t, err, "duplicate key")

	_, err = New([]MapContext{highway, city, {Key: "rural"}}, nil)
	assert.Error(t, err, "missing road file")

	reg, err := New([]MapContext{highway, city}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{CityKey, HighwayKey}, reg.Keys())
	assert.Equal(t, []MapContext{city, highway}, reg.Contexts())
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.yaml")
	doc := `
maps:
  - key: rural
    file: rural.xodr
    model_file: rural.osgb
    lanes: [-1, 1]
    speed_limit: 80
rules:
  overtake: "- only overtake on straight roads"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)

	rural, ok := reg.Lookup("rural")
	require.True(t, ok)
	assert.Equal(t, "rural.xodr", rural.RoadFile)
	assert.Equal(t, []int{-1, 1}, rural.Lanes)
	assert.Equal(t, 80.0, rural.SpeedLimit)

	text, ok := reg.RuleText(Overtake)
	require.True(t, ok)
	assert.Equal(t, "- only overtake on straight roads", text)

	// built-ins survive the overlay
	_, ok = reg.Lookup(CityKey)
	assert.True(t, ok)
	cut, _ := reg.RuleText(CutIn)
	assert.True(t, strings.HasPrefix(cut, "- AGGRESSOR"))
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.toml")
	doc := `
[[maps]]
key = "highway"
file = "autobahn.xodr"
model_file = "autobahn.osgb"
lanes = [-1, -2, -3]
speed_limit = 130.0
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)

	hw := reg.ResolveMap("anything at all")
	assert.Equal(t, "autobahn.xodr", hw.RoadFile)
	assert.Equal(t, -1, hw.DefaultLane())
}

func TestLoadRejectsUnknownRule(t *testing.T) {
	_, err := Overlay(&Document{Rules: map[string]string{"drift": "no"}})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewRejectsEscapingAssets(t *testing.T) {
	base := defaultContexts()

	road := append([]MapContext(nil), base...)
	road[0].RoadFile = "../../etc/passwd"
	_, err := New(road, nil)
	assert.Error(t, err)

	scene := append([]MapContext(nil), base...)
	scene[1].SceneFile = "/abs/scene.osgb"
	_, err = New(scene, nil)
	assert.Error(t, err)
}
