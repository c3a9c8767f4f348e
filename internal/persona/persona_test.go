package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.veridex.engine/internal/models"
)

func TestDefaultPersonas_RosterShape(t *testing.T) {
	personas := DefaultPersonas()
	require.Len(t, personas, 6)

	seen := make(map[string]bool)
	for _, p := range personas {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.DisplayName)
		assert.NotEmpty(t, p.CognitiveProfile)
		assert.False(t, p.IsCustom)
		assert.False(t, seen[p.ID], "duplicate persona id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestRegistry_RosterAppendsCustom(t *testing.T) {
	r := NewRegistry(nil)

	assert.Len(t, r.Roster(nil), 6)

	custom := &models.Persona{ID: "custom", DisplayName: "Domain Expert", IsCustom: true}
	roster := r.Roster(custom)
	require.Len(t, roster, 7)
	assert.Equal(t, "custom", roster[6].ID)
	assert.True(t, roster[6].IsCustom)

	// The stored roster must not grow.
	assert.Len(t, r.Roster(nil), 6)
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil)
	p, ok := r.Get("visionary")
	assert.True(t, ok)
	assert.Equal(t, "The Visionary", p.DisplayName)

	_, ok = r.Get("nope")
	assert.False(t, ok)
}

func TestDefaultConflicts_EveryBuiltinHasTarget(t *testing.T) {
	table := DefaultConflicts()
	for _, p := range DefaultPersonas() {
		tgt := TargetFor(table, p.ID)
		assert.True(t, tgt.Weakest || tgt.PersonaID != "", "persona %s has no target", p.ID)
	}
}

func TestTargetFor_UnknownDefaultsToWeakest(t *testing.T) {
	tgt := TargetFor(DefaultConflicts(), "custom")
	assert.True(t, tgt.Weakest)
	assert.Empty(t, tgt.PersonaID)
}

func TestPolicy_Deterministic(t *testing.T) {
	p := NewDefaultPolicy()

	regions := []models.Region{models.RegionEU, models.RegionCN, models.RegionGCC, models.RegionDefault}
	sensitivities := []models.Sensitivity{models.SensitivityBusiness, models.SensitivityRegulated, models.SensitivityPII}

	for _, region := range regions {
		for _, sens := range sensitivities {
			a := p.Resolve(region, sens)
			b := p.Resolve(region, sens)
			assert.Equal(t, a.PersonaModels, b.PersonaModels, "%s/%s", region, sens)
			assert.Equal(t, a.Judge, b.Judge, "%s/%s", region, sens)
			assert.Len(t, a.PersonaModels, 6)
		}
	}
}

func TestPolicy_EURestrictedExcludesNonEUBackends(t *testing.T) {
	p := NewDefaultPolicy()

	for _, sens := range []models.Sensitivity{models.SensitivityRegulated, models.SensitivityPII} {
		a := p.Resolve(models.RegionEU, sens)
		for id, ref := range a.PersonaModels {
			assert.NotContains(t, ref.Provider, "-us", "persona %s assigned %s under EU/%s", id, ref.Provider, sens)
			assert.NotContains(t, ref.Provider, "-cn", "persona %s assigned %s under EU/%s", id, ref.Provider, sens)
		}
		assert.NotContains(t, a.Judge.Primary.Provider, "-us")
		assert.NotContains(t, a.Judge.Fallback.Provider, "-us")
		assert.True(t, a.ZDR)
		assert.True(t, a.Judge.ZDR)
	}
}

func TestPolicy_EUBusinessAllowsGlobalSet(t *testing.T) {
	p := NewDefaultPolicy()
	a := p.Resolve(models.RegionEU, models.SensitivityBusiness)
	assert.False(t, a.ZDR)
	assert.Equal(t, "anthropic-us", a.PersonaModels["visionary"].Provider)
}

func TestPolicy_CNPinsDomesticBackends(t *testing.T) {
	p := NewDefaultPolicy()
	a := p.Resolve(models.RegionCN, models.SensitivityBusiness)
	for id, ref := range a.PersonaModels {
		assert.Contains(t, []string{"qwen-cn", "deepseek-cn"}, ref.Provider, "persona %s", id)
	}
}

func TestPolicy_GCCAlwaysZDR(t *testing.T) {
	p := NewDefaultPolicy()
	a := p.Resolve(models.RegionGCC, models.SensitivityBusiness)
	assert.True(t, a.ZDR)
	assert.True(t, a.Judge.ZDR)
}

func TestPolicy_UnknownRegionFallsBack(t *testing.T) {
	p := NewDefaultPolicy()
	a := p.Resolve(models.Region("atlantis"), models.SensitivityBusiness)
	assert.Len(t, a.PersonaModels, 6)
}

func TestPolicy_JudgeHasPrimaryAndFallback(t *testing.T) {
	p := NewDefaultPolicy()
	for _, region := range []models.Region{models.RegionEU, models.RegionCN, models.RegionGCC, models.RegionDefault} {
		a := p.Resolve(region, models.SensitivityBusiness)
		assert.NotEmpty(t, a.Judge.Primary.Provider, "%s", region)
		assert.NotEmpty(t, a.Judge.Fallback.Provider, "%s", region)
		assert.NotEqual(t, a.Judge.Primary, a.Judge.Fallback, "%s", region)
	}
}
