package knowledge

import (
	"fmt"
	"strings"
)

var cityHints = []string{"city", "light", "pedestrian"}

// ResolveMap maps a registered key, a "key:" prefixed request, or free text
// to a map context. It always resolves; highway is the fallback because its
// dynamics are the more conservative.
func (r *Registry) ResolveMap(keyOrText string) MapContext {
	if c, ok := r.Lookup(keyOrText); ok {
		return c
	}

	text := strings.ToLower(strings.TrimSpace(keyOrText))

	// Explicit "highway: ..." style request
	if head, _, found := strings.Cut(text, ":"); found {
		if c, ok := r.Lookup(strings.TrimSpace(head)); ok {
			return c
		}
	}

	for _, hint := range cityHints {
		if strings.Contains(text, hint) {
			c, _ := r.Lookup(CityKey)
			return c
		}
	}

	c, _ := r.Lookup(r.fallback)
	return c
}

// ResolveRules returns the rules whose maneuver keywords appear in text, in
// the fixed order cut_in, brake_check, overtake. A request naming no known
// maneuver gets StandardRules.
func (r *Registry) ResolveRules(text string) []Rule {
	req := strings.ToLower(text)

	var rules []Rule
	for _, class := range ruleOrder {
		if !mentions(req, class) {
			continue
		}
		if body, ok := r.rules[class]; ok {
			rules = append(rules, Rule{Maneuver: class, Text: body})
		}
	}

	if len(rules) == 0 {
		return []Rule{StandardRules}
	}
	return rules
}

func mentions(req string, class ManeuverClass) bool {
	switch class {
	case CutIn:
		return strings.Contains(req, "cut")
	case BrakeCheck:
		return strings.Contains(req, "brake")
	case Overtake:
		return strings.Contains(req, "pass") || strings.Contains(req, "overtake")
	default:
		return false
	}
}

// PromptContext renders the map and rule context handed to the upstream
// blueprint generator for a request.
func (r *Registry) PromptContext(text string) string {
	m := r.ResolveMap(text)
	rules := r.ResolveRules(text)

	texts := make([]string, 0, len(rules))
	for _, rule := range rules {
		texts = append(texts, rule.Text)
	}

	lanes := make([]string, 0, len(m.Lanes))
	for _, l := range m.Lanes {
		lanes = append(lanes, fmt.Sprintf("%d", l))
	}

	var sb strings.Builder
	sb.WriteString("### KNOWLEDGE GRAPH CONTEXT ###\n\n")
	fmt.Fprintf(&sb, "1. **ACTIVE MAP**: %q\n", m.RoadFile)
	fmt.Fprintf(&sb, "   - Valid Lanes: [%s]\n", strings.Join(lanes, ", "))
	fmt.Fprintf(&sb, "   - Speed Limit: %g km/h\n\n", m.SpeedLimit)
	sb.WriteString("2. **PHYSICS & LOGIC RULES (Strict Adherence Required)**:\n")
	sb.WriteString(strings.Join(texts, "\n"))
	sb.WriteString("\n\n3. **ASSETS**:\n")
	sb.WriteString("   - Ego Vehicle: \"car_white\" (Catalog ID: 0)\n")
	sb.WriteString("   - Target/Traffic: \"car_red\", \"truck_yellow\"\n")
	return sb.String()
}
