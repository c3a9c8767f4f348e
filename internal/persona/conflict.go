package persona

// Target is one edge of the Round-2 conflict table: either a fixed
// persona to attack, or the Weakest sentinel meaning "whichever Round-1
// argument scored lowest". Resolution of the sentinel is data-dependent
// and lives in the orchestrator; the table itself is static
// configuration.
type Target struct {
	PersonaID string `yaml:"persona_id,omitempty"`
	Weakest   bool   `yaml:"weakest,omitempty"`
}

// DefaultConflicts is the built-in conflict table. Every persona gets
// exactly one target; personas absent from the table (the custom
// persona) default to Weakest.
func DefaultConflicts() map[string]Target {
	return map[string]Target{
		"visionary": {Weakest: true},
		"skeptic":   {PersonaID: "visionary"},
		"analyst":   {PersonaID: "customer"},
		"operator":  {PersonaID: "analyst"},
		"customer":  {PersonaID: "skeptic"},
		"regulator": {PersonaID: "operator"},
	}
}

// TargetFor returns the conflict target for a persona, defaulting to
// the Weakest sentinel.
func TargetFor(table map[string]Target, personaID string) Target {
	if t, ok := table[personaID]; ok {
		return t
	}
	return Target{Weakest: true}
}
