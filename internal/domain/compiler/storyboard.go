package compiler

import (
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/scenario"
	"github.com/GriffinCanCode/ScenarioForge/internal/shared/paths"
)

// actorManeuver is a compiled maneuver tagged with the actor it drives.
type actorManeuver struct {
	actor    string
	maneuver scenario.Maneuver
}

// roadNetwork resolves the map's road and scene files under resources.
func roadNetwork(resources string, m knowledge.MapContext) scenario.RoadNetwork {
	res := paths.Resources{Root: resources}
	return scenario.RoadNetwork{
		LogicFile:      res.Road(m.RoadFile),
		SceneGraphFile: res.Scene(m.SceneFile),
	}
}

// assemble builds the scenario: one maneuver group per actor in order of
// first appearance, maneuvers in compile order, and the global stop trigger.
func (c *Compiler) assemble(m knowledge.MapContext, p *placed, maneuvers []actorManeuver) *scenario.Scenario {
	sc := &scenario.Scenario{
		Name:        c.cfg.ScenarioName,
		Author:      c.cfg.Author,
		RoadNetwork: roadNetwork(c.cfg.ResourcesDir, m),
		Entities:    p.entities,
		Init:        p.inits,
		StopTrigger: scenario.Trigger{
			Name:  "StopSim",
			Kind:  scenario.TriggerTime,
			Rule:  scenario.RuleGreaterThan,
			Edge:  scenario.EdgeRising,
			Value: c.cfg.StopTime,
		},
	}

	index := make(map[string]int)
	for _, am := range maneuvers {
		i, ok := index[am.actor]
		if !ok {
			i = len(sc.Groups)
			index[am.actor] = i
			sc.Groups = append(sc.Groups, scenario.ManeuverGroup{Actor: am.actor})
		}
		sc.Groups[i].Maneuvers = append(sc.Groups[i].Maneuvers, am.maneuver)
	}

	return sc
}
