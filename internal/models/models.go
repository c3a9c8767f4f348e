// Package models provides shared domain types for the Veridex
// adversarial consensus engine.
package models

import "encoding/json"

// Region identifies the regulatory region a validation runs under.
type Region string

const (
	RegionEU      Region = "EU"
	RegionCN      Region = "CN"
	RegionGCC     Region = "GCC"
	RegionDefault Region = "global"
)

// NormalizeRegion maps unknown region values to RegionDefault.
func NormalizeRegion(r string) Region {
	switch Region(r) {
	case RegionEU, RegionCN, RegionGCC:
		return Region(r)
	default:
		return RegionDefault
	}
}

// Sensitivity drives the data-sovereignty policy for a run.
type Sensitivity string

const (
	SensitivityBusiness  Sensitivity = "business"
	SensitivityRegulated Sensitivity = "regulated"
	SensitivityPII       Sensitivity = "pii"
)

// NormalizeSensitivity maps unknown sensitivity values to business.
func NormalizeSensitivity(s string) Sensitivity {
	switch Sensitivity(s) {
	case SensitivityRegulated, SensitivityPII:
		return Sensitivity(s)
	default:
		return SensitivityBusiness
	}
}

// RunStatus is the lifecycle state of a debate run. There is no failed
// state: request validation rejects bad input before a run exists, and
// every accepted run terminates complete, judge failure included.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
)

// ModelRef identifies a concrete model on a registered backend.
type ModelRef struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
}

// Message is a single chat message sent to a model backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the normalized output of one model call.
type Completion struct {
	Text string          `json:"text"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// Persona is a debate participant. Built-in personas are immutable
// configuration; a custom persona is loaded per run from external storage.
type Persona struct {
	ID               string `json:"id" yaml:"id"`
	DisplayName      string `json:"display_name" yaml:"display_name"`
	RoleDescription  string `json:"role_description" yaml:"role_description"`
	CognitiveProfile string `json:"cognitive_profile" yaml:"cognitive_profile"`
	IsCustom         bool   `json:"is_custom,omitempty" yaml:"is_custom,omitempty"`
	RAGContext       string `json:"rag_context,omitempty" yaml:"rag_context,omitempty"`
}

// RoundResult is the output of one persona in one round. A failed model
// call still produces a RoundResult carrying an error placeholder text.
type RoundResult struct {
	PersonaID   string `json:"persona_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
	Round       int    `json:"round"`
}

// ConsensusSnapshot is a point-in-time consensus reading emitted after
// each round and after the judge.
type ConsensusSnapshot struct {
	CoreSync float64 `json:"core_sync"`
	Global   float64 `json:"global"`
	Phase    string  `json:"phase"`
}

// Verdict is the judge's terminal artifact for a run.
type Verdict struct {
	Text              string `json:"text"`
	Score             int    `json:"score"`
	UsedFallbackJudge bool   `json:"used_fallback_judge"`
}

// DebateRun is one invocation of the protocol for one idea.
type DebateRun struct {
	RunID        string      `json:"run_id"`
	ValidationID string      `json:"validation_id"`
	Idea         string      `json:"idea"`
	Region       Region      `json:"region"`
	Sensitivity  Sensitivity `json:"sensitivity"`
	Language     string      `json:"language"`
	Status       RunStatus   `json:"status"`
}

// ValidationRequest is the input shape accepted by the engine.
type ValidationRequest struct {
	RunID        string `json:"runId"`
	ValidationID string `json:"validationId"`
	Idea         string `json:"idea"`
	Region       string `json:"region"`
	Sensitivity  string `json:"sensitivity"`
	UserID       string `json:"userId,omitempty"`
}

// ValidationResult is the output shape returned to callers.
type ValidationResult struct {
	RunID        string `json:"runId"`
	ValidationID string `json:"validationId"`
	Score        int    `json:"score"`
}
