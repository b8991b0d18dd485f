package knowledge

import (
	"fmt"
	"sort"

	"github.com/GriffinCanCode/ScenarioForge/internal/shared/paths"
)

// Built-in map keys
const (
	CityKey    = "city"
	HighwayKey = "highway"
)

// MapContext describes one drivable world: road network, scene asset,
// usable lanes and the legal speed.
type MapContext struct {
	Key        string  `json:"key" yaml:"key" toml:"key"`
	RoadFile   string  `json:"file" yaml:"file" toml:"file"`
	SceneFile  string  `json:"model_file" yaml:"model_file" toml:"model_file"`
	Lanes      []int   `json:"lanes" yaml:"lanes" toml:"lanes"`
	SpeedLimit float64 `json:"speed_limit" yaml:"speed_limit" toml:"speed_limit"`
}

// DefaultLane returns the first listed lane, or -1 when none are listed.
func (m MapContext) DefaultLane() int {
	if len(m.Lanes) == 0 {
		return -1
	}
	return m.Lanes[0]
}

func (m MapContext) clone() MapContext {
	out := m
	out.Lanes = append([]int(nil), m.Lanes...)
	return out
}

// ManeuverClass identifies a family of maneuvers with shared constraints.
type ManeuverClass string

const (
	CutIn      ManeuverClass = "cut_in"
	BrakeCheck ManeuverClass = "brake_check"
	Overtake   ManeuverClass = "overtake"
	Standard   ManeuverClass = "standard"
)

// ruleOrder is the fixed order rules are reported in.
var ruleOrder = []ManeuverClass{CutIn, BrakeCheck, Overtake}

// Rule is a human/LLM-readable constraint attached to a maneuver class.
type Rule struct {
	Maneuver ManeuverClass `json:"maneuver"`
	Text     string        `json:"text"`
}

// StandardRules is returned when a request names no known maneuver.
var StandardRules = Rule{Maneuver: Standard, Text: "Standard Driving Rules apply."}

// Registry is the immutable set of map contexts and maneuver rules.
type Registry struct {
	maps     map[string]MapContext
	rules    map[ManeuverClass]string
	fallback string
}

// New builds a registry from the given contexts and rule texts. The highway
// context must be present because it is the resolution fallback.
func New(contexts []MapContext, rules map[ManeuverClass]string) (*Registry, error) {
	r := &Registry{
		maps:     make(map[string]MapContext, len(contexts)),
		rules:    make(map[ManeuverClass]string, len(rules)),
		fallback: HighwayKey,
	}

	for _, c := range contexts {
		if c.Key == "" {
			return nil, fmt.Errorf("map context with file %q has no key", c.RoadFile)
		}
		if _, exists := r.maps[c.Key]; exists {
			return nil, fmt.Errorf("duplicate map context %q", c.Key)
		}
		if c.RoadFile == "" {
			return nil, fmt.Errorf("map context %q has no road file", c.Key)
		}
		if err := paths.ValidateAssetName(c.RoadFile); err != nil {
			return nil, fmt.Errorf("map context %q: %w", c.Key, err)
		}
		if c.SceneFile != "" {
			if err := paths.ValidateAssetName(c.SceneFile); err != nil {
				return nil, fmt.Errorf("map context %q: %w", c.Key, err)
			}
		}
		r.maps[c.Key] = c.clone()
	}
	if _, ok := r.maps[HighwayKey]; !ok {
		return nil, fmt.Errorf("map context %q is required", HighwayKey)
	}
	if _, ok := r.maps[CityKey]; !ok {
		return nil, fmt.Errorf("map context %q is required", CityKey)
	}

	for class, text := range rules {
		r.rules[class] = text
	}

	return r, nil
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := New(defaultContexts(), defaultRules())
	if err != nil {
		panic(fmt.Sprintf("knowledge: invalid built-in registry: %v", err))
	}
	return r
}

func defaultContexts() []MapContext {
	return []MapContext{
		{
			Key:        CityKey,
			RoadFile:   "fabriksgatan_traffic_lights.xodr",
			SceneFile:  "fabriksgatan.osgb",
			Lanes:      []int{-1},
			SpeedLimit: 50,
		},
		{
			Key:        HighwayKey,
			RoadFile:   "e6mini.xodr",
			SceneFile:  "top_view.osgb",
			Lanes:      []int{-2, -3}, // -2 fast, -3 slow
			SpeedLimit: 110,
		},
	}
}

func defaultRules() map[ManeuverClass]string {
	return map[ManeuverClass]string{
		CutIn: "- AGGRESSOR must be FASTER than VICTIM (delta_v > 20 km/h).\n" +
			"- AGGRESSOR must start BEHIND VICTIM (s_diff = -15m) to perform an overtake-cut-in.\n" +
			"- Trigger: Use 'trigger_time' calculated by distance/speed, or 'trigger_dist' < 15m.",
		BrakeCheck: "- AGGRESSOR overtakes VICTIM first.\n" +
			"- AGGRESSOR cuts in front (distance < 10m).\n" +
			"- AGGRESSOR brakes hard (target_speed = 0 or much lower than Victim).",
		Overtake: "- PASSING_CAR must be in a faster lane (e.g., lane -2).\n" +
			"- SLOW_CAR must be in a slower lane (e.g., lane -3).\n" +
			"- PASSING_CAR speed > SLOW_CAR speed + 15 km/h.",
	}
}

// Lookup returns the context registered under key.
func (r *Registry) Lookup(key string) (MapContext, bool) {
	c, ok := r.maps[key]
	if !ok {
		return MapContext{}, false
	}
	return c.clone(), true
}

// Keys returns the registered map keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.maps))
	for k := range r.maps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Contexts returns every registered context, sorted by key.
func (r *Registry) Contexts() []MapContext {
	keys := r.Keys()
	out := make([]MapContext, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.maps[k].clone())
	}
	return out
}

// RuleText returns the constraint text for a maneuver class.
func (r *Registry) RuleText(class ManeuverClass) (string, bool) {
	text, ok := r.rules[class]
	return text, ok
}
