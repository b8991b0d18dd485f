// Package blueprint decodes and normalizes scenario blueprints.
//
// A blueprint is the loosely structured, generator-authored description of a
// driving scenario: which map, how much background traffic, the actors and the
// actions they perform. This package is the typed boundary of the compiler:
// everything past Normalize works on Actor values and a closed set of Action
// variants, never on raw maps.
//
// Key Components:
//   - Decode: JSON (sonic) or YAML (goccy/go-yaml) to Raw
//   - ExtractJSON: first balanced JSON object in raw generator text
//   - Normalize: Raw to Blueprint, dropping malformed actions with diagnostics
//
// Example:
//
//	raw, err := blueprint.Decode(content)
//	bp, diags := blueprint.Normalize(raw)
package blueprint
