// Package compiler lowers a normalized blueprint into a scenario.
//
// Compilation runs in fixed stages over per-call state only:
//
//	resolve map + rules  ->  place actors  ->  synthesize traffic (high density)
//	                     ->  compile actions  ->  assemble storyboard
//
// Placement records an occupied cell per actor before traffic synthesis, and
// synthesized vehicles closer than ConflictGap to an occupied cell in the
// same lane are rejected. Failures of the external placement source degrade
// to zero background vehicles.
//
// Error model:
//   - StructuralError: fatal, e.g. duplicate actor names
//   - Diagnostic: recovered problems (dropped actions, placement failures)
//   - OutputError: the document could not be written
package compiler
