// Package config loads the engine configuration: backends, persona
// voices, the conflict table, policy rule sets and runtime ceilings.
// The debate's substance is edited here, not in code.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"dev.veridex.engine/internal/debate"
	"dev.veridex.engine/internal/llm"
	"dev.veridex.engine/internal/models"
	"dev.veridex.engine/internal/persona"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RedisConfig configures the event sink and run store connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// PostgresConfig configures the verdict and persona store connection.
// An empty DSN disables Postgres-backed features.
type PostgresConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

// RAGConfig configures the external context provider. An empty base URL
// disables enrichment.
type RAGConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
}

// DebateConfig is the YAML-loadable shape of the orchestrator tuning.
type DebateConfig struct {
	MaxParallel       int64   `yaml:"max_parallel,omitempty"`
	RunTimeoutSeconds int     `yaml:"run_timeout_seconds,omitempty"`
	RoundTemperature  float64 `yaml:"round_temperature,omitempty"`
	JudgeTemperature  float64 `yaml:"judge_temperature,omitempty"`
	JudgeMaxTokens    int     `yaml:"judge_max_tokens,omitempty"`
	RAGTopK           int     `yaml:"rag_top_k,omitempty"`
}

// ToOrchestrator converts the loadable shape into runtime tuning.
func (d DebateConfig) ToOrchestrator() debate.Config {
	cfg := debate.DefaultConfig()
	if d.MaxParallel > 0 {
		cfg.MaxParallel = d.MaxParallel
	}
	if d.RunTimeoutSeconds > 0 {
		cfg.RunTimeout = time.Duration(d.RunTimeoutSeconds) * time.Second
	}
	if d.RoundTemperature > 0 {
		cfg.RoundTemperature = d.RoundTemperature
	}
	if d.JudgeTemperature > 0 {
		cfg.JudgeTemperature = d.JudgeTemperature
	}
	if d.JudgeMaxTokens > 0 {
		cfg.JudgeMaxTokens = d.JudgeMaxTokens
	}
	if d.RAGTopK > 0 {
		cfg.RAGTopK = d.RAGTopK
	}
	return cfg
}

// Config is the full engine configuration.
type Config struct {
	Server    ServerConfig                           `yaml:"server"`
	Redis     RedisConfig                            `yaml:"redis"`
	Postgres  PostgresConfig                         `yaml:"postgres"`
	RAG       RAGConfig                              `yaml:"rag"`
	Backends  []llm.Backend                          `yaml:"backends"`
	Personas  []models.Persona                       `yaml:"personas,omitempty"`
	Conflicts map[string]persona.Target              `yaml:"conflicts,omitempty"`
	Policy    map[models.Region]persona.RegionPolicy `yaml:"policy,omitempty"`
	Debate    DebateConfig                           `yaml:"debate"`
}

// Load reads, substitutes, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return LoadFromString(string(data))
}

// LoadFromString parses configuration from a YAML string.
func LoadFromString(content string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse YAML: %w", err)
	}

	cfg.substituteEnvVars()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// substituteEnvVars replaces ${VAR} placeholders in connection fields
// and credentials. Persona voice text is left untouched so prompts may
// legitimately contain dollar signs.
func (c *Config) substituteEnvVars() {
	c.Server.Addr = os.ExpandEnv(c.Server.Addr)
	c.Redis.Addr = os.ExpandEnv(c.Redis.Addr)
	c.Redis.Password = os.ExpandEnv(c.Redis.Password)
	c.Postgres.DSN = os.ExpandEnv(c.Postgres.DSN)
	c.RAG.BaseURL = os.ExpandEnv(c.RAG.BaseURL)
	for i := range c.Backends {
		c.Backends[i].BaseURL = os.ExpandEnv(c.Backends[i].BaseURL)
		c.Backends[i].APIKey = os.ExpandEnv(c.Backends[i].APIKey)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("at least one backend is required")
	}
	backendNames := make(map[string]bool, len(c.Backends))
	for i, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("backend %d: name is required", i)
		}
		if backendNames[b.Name] {
			return fmt.Errorf("backend %q: duplicate name", b.Name)
		}
		backendNames[b.Name] = true
		if b.Family != llm.FamilyOpenAI && b.Family != llm.FamilyAnthropic {
			return fmt.Errorf("backend %q: unknown family %q", b.Name, b.Family)
		}
		if b.BaseURL == "" {
			return fmt.Errorf("backend %q: base_url is required", b.Name)
		}
	}

	personaIDs := make(map[string]bool)
	for _, p := range c.personasOrDefault() {
		if p.ID == "" {
			return fmt.Errorf("persona %q: id is required", p.DisplayName)
		}
		if personaIDs[p.ID] {
			return fmt.Errorf("persona %q: duplicate id", p.ID)
		}
		personaIDs[p.ID] = true
	}

	for id, target := range c.Conflicts {
		if !personaIDs[id] {
			return fmt.Errorf("conflict table: unknown persona %q", id)
		}
		if target.Weakest && target.PersonaID != "" {
			return fmt.Errorf("conflict table: %q sets both a fixed target and weakest", id)
		}
		if !target.Weakest && !personaIDs[target.PersonaID] {
			return fmt.Errorf("conflict table: %q targets unknown persona %q", id, target.PersonaID)
		}
	}

	for region, rule := range c.Policy {
		if err := c.validateRule(string(region), rule.Standard, rule.Judge, backendNames, personaIDs); err != nil {
			return err
		}
		if rule.Restricted != nil {
			judge := rule.Judge
			if rule.RestrictedJudge != nil {
				judge = *rule.RestrictedJudge
			}
			if err := c.validateRule(string(region)+" (restricted)", rule.Restricted, judge, backendNames, personaIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Config) validateRule(region string, assignments map[string]models.ModelRef, judge persona.JudgeConfig, backends, personaIDs map[string]bool) error {
	for id, ref := range assignments {
		if !personaIDs[id] {
			return fmt.Errorf("policy %s: unknown persona %q", region, id)
		}
		if !backends[ref.Provider] {
			return fmt.Errorf("policy %s: persona %q references unknown backend %q", region, id, ref.Provider)
		}
	}
	for id := range personaIDs {
		if _, ok := assignments[id]; !ok {
			return fmt.Errorf("policy %s: persona %q has no model assignment", region, id)
		}
	}
	if judge.Primary.Provider == "" || judge.Fallback.Provider == "" {
		return fmt.Errorf("policy %s: judge needs a primary and a fallback model", region)
	}
	if !backends[judge.Primary.Provider] || !backends[judge.Fallback.Provider] {
		return fmt.Errorf("policy %s: judge references an unknown backend", region)
	}
	return nil
}

func (c *Config) personasOrDefault() []models.Persona {
	if len(c.Personas) > 0 {
		return c.Personas
	}
	return persona.DefaultPersonas()
}

// BuildRegistry returns the persona registry, honoring overrides.
func (c *Config) BuildRegistry() *persona.Registry {
	return persona.NewRegistry(c.Personas)
}

// BuildPolicy returns the assignment policy, honoring overrides.
func (c *Config) BuildPolicy() *persona.Policy {
	if len(c.Policy) == 0 {
		return persona.NewDefaultPolicy()
	}
	return persona.NewPolicy(c.Policy)
}

// BuildConflicts returns the conflict table, honoring overrides.
func (c *Config) BuildConflicts() map[string]persona.Target {
	if len(c.Conflicts) == 0 {
		return persona.DefaultConflicts()
	}
	return c.Conflicts
}
