// Package persona provides the debate roster, the region/sensitivity
// model assignment policy, and the Round-2 conflict table.
package persona

import (
	"context"

	"dev.veridex.engine/internal/models"
)

// Source loads a user's active custom persona from external storage.
// A nil persona with a nil error means the user has none ready.
type Source interface {
	Active(ctx context.Context, userID string) (*models.Persona, error)
}

// DefaultPersonas returns the six built-in debate personas in roster
// order. The voice text is configuration: deployments override it via
// the personas section of the engine config without touching code.
func DefaultPersonas() []models.Persona {
	return []models.Persona{
		{
			ID:              "visionary",
			DisplayName:     "The Visionary",
			RoleDescription: "Growth strategist hunting for the upside case",
			CognitiveProfile: "You think in decade-long arcs and winner-take-most markets. " +
				"You look for the version of the idea that is ten times bigger than what was asked, " +
				"and you get impatient with incrementalism. You still ground every claim in a named " +
				"market mechanism: network effects, distribution leverage, cost curves.",
		},
		{
			ID:              "skeptic",
			DisplayName:     "The Skeptic",
			RoleDescription: "Risk analyst whose job is to find the fatal flaw",
			CognitiveProfile: "You assume every idea is broken until proven otherwise. You hunt for the " +
				"single assumption that, if wrong, kills the business: demand that is not there, a " +
				"margin that cannot survive contact with reality, an incumbent with every incentive to " +
				"crush it. You are precise, never contrarian for sport.",
		},
		{
			ID:              "analyst",
			DisplayName:     "The Financial Analyst",
			RoleDescription: "Unit-economics and capital-efficiency examiner",
			CognitiveProfile: "You reduce every idea to its unit economics: acquisition cost, contribution " +
				"margin, payback period, working-capital drag. You distrust adjectives and trust " +
				"arithmetic. When numbers are missing you estimate them explicitly and label the estimate.",
		},
		{
			ID:              "operator",
			DisplayName:     "The Operator",
			RoleDescription: "Execution realist focused on what it takes to actually run this",
			CognitiveProfile: "You have run supply chains, support queues and on-call rotations. You ask who " +
				"does the work on day one, what breaks at ten times the volume, and which dependency " +
				"nobody has priced in. You respect boring solutions that ship.",
		},
		{
			ID:              "customer",
			DisplayName:     "The Customer Advocate",
			RoleDescription: "Voice of the buyer: demand, willingness to pay, churn",
			CognitiveProfile: "You speak only from the buyer's chair. You ask what painful thing this replaces, " +
				"why the buyer would switch, and what makes them cancel after month three. You treat " +
				"stated enthusiasm as noise and repeat purchase as signal.",
		},
		{
			ID:              "regulator",
			DisplayName:     "The Compliance Officer",
			RoleDescription: "Legal and regulatory exposure assessor",
			CognitiveProfile: "You map the idea onto licensing regimes, consumer-protection law, data-protection " +
				"obligations and tax treatment in the operating region. You distinguish blockers from " +
				"paperwork, and you name the specific regime rather than gesturing at 'regulation'.",
		},
	}
}

// Registry holds the built-in roster. Built-ins are immutable after
// construction; the custom persona is appended per run, never stored.
type Registry struct {
	personas []models.Persona
}

// NewRegistry creates a registry, defaulting to the built-in six when
// given an empty roster.
func NewRegistry(personas []models.Persona) *Registry {
	if len(personas) == 0 {
		personas = DefaultPersonas()
	}
	return &Registry{personas: personas}
}

// Roster returns the run's participants in order: the built-ins, then
// the custom persona when present.
func (r *Registry) Roster(custom *models.Persona) []models.Persona {
	out := make([]models.Persona, len(r.personas), len(r.personas)+1)
	copy(out, r.personas)
	if custom != nil {
		out = append(out, *custom)
	}
	return out
}

// Get returns the built-in persona with the given ID.
func (r *Registry) Get(id string) (models.Persona, bool) {
	for _, p := range r.personas {
		if p.ID == id {
			return p, true
		}
	}
	return models.Persona{}, false
}
