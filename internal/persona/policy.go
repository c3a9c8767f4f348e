package persona

import (
	"dev.veridex.engine/internal/models"
)

// JudgeConfig carries the judge model pair for a run.
type JudgeConfig struct {
	Primary  models.ModelRef `yaml:"primary"`
	Fallback models.ModelRef `yaml:"fallback"`
	ZDR      bool            `yaml:"zdr"`
}

// Assignment is the resolved persona→model mapping plus judge
// configuration for one run.
type Assignment struct {
	PersonaModels map[string]models.ModelRef
	Judge         JudgeConfig
	ZDR           bool
}

// RegionPolicy is the rule set for one region. The restricted mapping,
// if present, replaces the standard one for regulated/PII sensitivity,
// which is where data-sovereignty constraints bite. The shape is
// YAML-loadable so deployments can override the built-in rules.
type RegionPolicy struct {
	Standard        map[string]models.ModelRef `yaml:"standard"`
	Restricted      map[string]models.ModelRef `yaml:"restricted,omitempty"`
	Judge           JudgeConfig                `yaml:"judge"`
	RestrictedJudge *JudgeConfig               `yaml:"restricted_judge,omitempty"`
}

// Policy maps (region, sensitivity) to a deterministic assignment. It
// is a pure function of its inputs: no hidden state, no randomness.
// Calling Resolve twice with the same inputs yields the same mapping.
type Policy struct {
	rules map[models.Region]RegionPolicy
}

// NewPolicy creates a policy from explicit region rule sets. Callers
// should include a rule set for models.RegionDefault; unknown regions
// resolve against it.
func NewPolicy(rules map[models.Region]RegionPolicy) *Policy {
	return &Policy{rules: rules}
}

func ref(provider, model string) models.ModelRef {
	return models.ModelRef{Provider: provider, Model: model}
}

// NewDefaultPolicy returns the built-in rule sets for EU, CN, GCC and
// the global default.
//
// Constraints encoded:
//   - EU regulated/PII: only EU-operated backends (no US-operated
//     providers touch the input).
//   - CN: domestic backends only, all sensitivities.
//   - GCC: zero data retention on every call regardless of sensitivity.
func NewDefaultPolicy() *Policy {
	global := map[string]models.ModelRef{
		"visionary": ref("anthropic-us", "claude-sonnet-4"),
		"skeptic":   ref("openai-us", "gpt-4o"),
		"analyst":   ref("openai-us", "gpt-4o-mini"),
		"operator":  ref("mistral-eu", "mistral-large-latest"),
		"customer":  ref("openai-us", "gpt-4o"),
		"regulator": ref("anthropic-us", "claude-sonnet-4"),
	}
	euOnly := map[string]models.ModelRef{
		"visionary": ref("mistral-eu", "mistral-large-latest"),
		"skeptic":   ref("nebius-eu", "llama-3.3-70b-instruct"),
		"analyst":   ref("mistral-eu", "mistral-large-latest"),
		"operator":  ref("nebius-eu", "llama-3.3-70b-instruct"),
		"customer":  ref("mistral-eu", "mistral-small-latest"),
		"regulator": ref("mistral-eu", "mistral-large-latest"),
	}
	cn := map[string]models.ModelRef{
		"visionary": ref("qwen-cn", "qwen-max"),
		"skeptic":   ref("deepseek-cn", "deepseek-chat"),
		"analyst":   ref("qwen-cn", "qwen-plus"),
		"operator":  ref("deepseek-cn", "deepseek-chat"),
		"customer":  ref("qwen-cn", "qwen-max"),
		"regulator": ref("qwen-cn", "qwen-max"),
	}
	gcc := map[string]models.ModelRef{
		"visionary": ref("anthropic-us", "claude-sonnet-4"),
		"skeptic":   ref("falcon-gcc", "falcon-180b-chat"),
		"analyst":   ref("openai-us", "gpt-4o"),
		"operator":  ref("falcon-gcc", "falcon-180b-chat"),
		"customer":  ref("openai-us", "gpt-4o"),
		"regulator": ref("falcon-gcc", "falcon-180b-chat"),
	}

	euRestrictedJudge := &JudgeConfig{
		Primary:  ref("mistral-eu", "mistral-large-latest"),
		Fallback: ref("nebius-eu", "llama-3.3-70b-instruct"),
		ZDR:      true,
	}

	return NewPolicy(map[models.Region]RegionPolicy{
		models.RegionDefault: {
			Standard: global,
			Judge: JudgeConfig{
				Primary:  ref("anthropic-us", "claude-sonnet-4"),
				Fallback: ref("openai-us", "gpt-4o"),
			},
		},
		models.RegionEU: {
			Standard:        global,
			Restricted:      euOnly,
			RestrictedJudge: euRestrictedJudge,
			Judge: JudgeConfig{
				Primary:  ref("mistral-eu", "mistral-large-latest"),
				Fallback: ref("anthropic-us", "claude-sonnet-4"),
			},
		},
		models.RegionCN: {
			Standard: cn,
			Judge: JudgeConfig{
				Primary:  ref("qwen-cn", "qwen-max"),
				Fallback: ref("deepseek-cn", "deepseek-reasoner"),
			},
		},
		models.RegionGCC: {
			Standard: gcc,
			Judge: JudgeConfig{
				Primary:  ref("anthropic-us", "claude-sonnet-4"),
				Fallback: ref("falcon-gcc", "falcon-180b-chat"),
				ZDR:      true,
			},
		},
	})
}

// Resolve returns the assignment for the given region and sensitivity.
// Unknown regions fall back to the global rule set.
func (p *Policy) Resolve(region models.Region, sensitivity models.Sensitivity) Assignment {
	rule, ok := p.rules[region]
	if !ok {
		rule = p.rules[models.RegionDefault]
	}

	restricted := sensitivity == models.SensitivityRegulated || sensitivity == models.SensitivityPII

	source := rule.Standard
	judge := rule.Judge
	if restricted && rule.Restricted != nil {
		source = rule.Restricted
		if rule.RestrictedJudge != nil {
			judge = *rule.RestrictedJudge
		}
	}

	// ZDR always on for restricted sensitivities; regions may force it
	// on for everything via their judge config (GCC does).
	zdr := restricted || region == models.RegionGCC
	if restricted {
		judge.ZDR = true
	}

	personaModels := make(map[string]models.ModelRef, len(source))
	for id, m := range source {
		personaModels[id] = m
	}

	return Assignment{PersonaModels: personaModels, Judge: judge, ZDR: zdr}
}
