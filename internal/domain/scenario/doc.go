// Package scenario is the compiled scenario model and its OpenSCENARIO
// encoding.
//
// A Scenario holds entities, their initial placement, maneuvers grouped by
// actor and a global stop trigger. Encode renders it as OpenSCENARIO 1.2 XML
// for esmini-compatible runners; WriteFile persists it atomically.
package scenario
