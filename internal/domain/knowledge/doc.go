// Package knowledge holds the static map contexts and maneuver rules that
// ground every compiled scenario.
//
// The registry answers two questions for a request:
//   - Which map? A registered key, a "key:" prefix, or keyword hints in free text
//   - Which rules? Maneuver keywords select safety/physics constraints
//
// Registries are built once at startup and never mutated, so a single
// instance is shared by every compile without locking.
//
// Example:
//
//	reg := knowledge.Default()
//	ctx := reg.ResolveMap("highway: aggressive cut in")
//	rules := reg.ResolveRules("aggressive cut in")
package knowledge
