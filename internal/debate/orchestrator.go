// Package debate runs the adversarial consensus protocol: three rounds
// of persona fan-out followed by a judge verdict. The orchestrator owns
// the run lifecycle and the partial-failure policy; model transport,
// prompt text and persona policy are injected.
package debate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"dev.veridex.engine/internal/events"
	"dev.veridex.engine/internal/lang"
	"dev.veridex.engine/internal/llm"
	"dev.veridex.engine/internal/metrics"
	"dev.veridex.engine/internal/models"
	"dev.veridex.engine/internal/persona"
	"dev.veridex.engine/internal/prompt"
	"dev.veridex.engine/internal/rag"
	"dev.veridex.engine/internal/redact"
	"dev.veridex.engine/internal/score"
)

// ErrEmptyIdea rejects a run before any state is created.
var ErrEmptyIdea = errors.New("debate: idea must not be empty")

// Config tunes one orchestrator instance.
type Config struct {
	// MaxParallel bounds concurrent model calls within a round.
	MaxParallel int64
	// RunTimeout is the wall-clock ceiling for a whole run. When it
	// expires, in-flight calls fail and the run still completes with
	// whatever signal it has.
	RunTimeout       time.Duration
	RoundTemperature float64
	JudgeTemperature float64
	JudgeMaxTokens   int
	RAGTopK          int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxParallel:      8,
		RunTimeout:       800 * time.Second,
		RoundTemperature: 0.7,
		JudgeTemperature: 0.1,
		JudgeMaxTokens:   4096,
		RAGTopK:          3,
	}
}

// ModelCaller is the gateway surface the orchestrator needs.
type ModelCaller interface {
	Call(ctx context.Context, ref models.ModelRef, messages []models.Message, opts llm.CallOptions) (*models.Completion, error)
}

// RunStore persists run lifecycle state.
type RunStore interface {
	UpdateRun(ctx context.Context, run *models.DebateRun) error
}

// VerdictStore persists the terminal verdict.
type VerdictStore interface {
	SaveVerdict(ctx context.Context, runID, validationID string, v *models.Verdict) error
}

// Deps are the orchestrator's collaborators. Gateway and Sink are
// required; everything else falls back to a sensible default or is
// skipped when nil.
type Deps struct {
	Gateway   ModelCaller
	Registry  *persona.Registry
	Policy    *persona.Policy
	Conflicts map[string]persona.Target
	Personas  persona.Source
	Redactor  redact.Redactor
	RAG       rag.ContextProvider
	Sink      events.Sink
	Runs      RunStore
	Verdicts  VerdictStore
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Orchestrator drives debate runs through the round state machine.
type Orchestrator struct {
	cfg  Config
	deps Deps
	sem  *semaphore.Weighted
}

// New creates an orchestrator. Nil optional deps get defaults.
func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultConfig().MaxParallel
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = DefaultConfig().RunTimeout
	}
	if cfg.JudgeMaxTokens <= 0 {
		cfg.JudgeMaxTokens = DefaultConfig().JudgeMaxTokens
	}
	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = DefaultConfig().RAGTopK
	}
	if deps.Registry == nil {
		deps.Registry = persona.NewRegistry(nil)
	}
	if deps.Policy == nil {
		deps.Policy = persona.NewDefaultPolicy()
	}
	if deps.Conflicts == nil {
		deps.Conflicts = persona.DefaultConflicts()
	}
	if deps.Redactor == nil {
		deps.Redactor = redact.NewRegexRedactor()
	}
	if deps.RAG == nil {
		deps.RAG = rag.Nop{}
	}
	if deps.Sink == nil {
		deps.Sink = events.NewMemorySink()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:  cfg,
		deps: deps,
		sem:  semaphore.NewWeighted(cfg.MaxParallel),
	}
}

// Run executes one validation end to end. Any request that passes
// validation yields a result, even under total judge failure.
func (o *Orchestrator) Run(ctx context.Context, req models.ValidationRequest) (*models.ValidationResult, error) {
	if req.Idea == "" {
		return nil, ErrEmptyIdea
	}
	if req.RunID == "" || req.ValidationID == "" {
		return nil, errors.New("debate: runId and validationId are required")
	}

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()
	// Terminal writes must land even when the ceiling has expired.
	finalCtx := context.WithoutCancel(ctx)

	idea, hadPII := o.deps.Redactor.Redact(req.Idea)

	tag := lang.Detect(idea)
	geoContext := lang.InferGeoContext(idea, tag)

	run := &models.DebateRun{
		RunID:        req.RunID,
		ValidationID: req.ValidationID,
		Idea:         idea,
		Region:       models.NormalizeRegion(req.Region),
		Sensitivity:  models.NormalizeSensitivity(req.Sensitivity),
		Language:     tag.String(),
		Status:       models.RunStatusRunning,
	}
	o.updateRun(runCtx, run)

	o.emit(runCtx, run.RunID, events.EventLang, "orchestrator", run.Language)
	if hadPII {
		o.emit(runCtx, run.RunID, events.EventSystem, "orchestrator", "personal data redacted from idea before prompting")
	}

	assignment := o.deps.Policy.Resolve(run.Region, run.Sensitivity)
	roster := o.roster(runCtx, run, req.UserID)
	snippets := o.searchContext(runCtx, run.RunID, idea)
	builder := prompt.NewBuilder(tag, geoContext)

	logger := o.deps.Logger.With(zap.String("run_id", run.RunID))
	logger.Info("debate run starting",
		zap.String("region", string(run.Region)),
		zap.String("sensitivity", string(run.Sensitivity)),
		zap.String("language", run.Language),
		zap.Int("participants", len(roster)))

	var globalSum float64

	// Round 1: independent thesis.
	o.emit(runCtx, run.RunID, events.EventSystem, "orchestrator", "round 1: independent analysis")
	round1 := o.runRound(runCtx, run.RunID, 1, roster, assignment, func(p models.Persona) []models.Message {
		return builder.Round1(p, idea, snippets)
	})
	globalSum += o.emitConsensus(runCtx, run.RunID, "round1", round1, globalSum, 1)

	// Round 2: targeted cross-examination. The weakest Round-1 argument
	// is resolved once, before the fan-out.
	weakest := weakestOf(round1)
	o.emit(runCtx, run.RunID, events.EventSystem, "orchestrator", "round 2: cross-examination")
	round2 := o.runRound(runCtx, run.RunID, 2, roster, assignment, func(p models.Persona) []models.Message {
		return builder.Round2(p, idea, o.targetName(p, roster, weakest), round1)
	})
	globalSum += o.emitConsensus(runCtx, run.RunID, "round2", round2, globalSum, 2)

	// Round 3: concession and synthesis.
	o.emit(runCtx, run.RunID, events.EventSystem, "orchestrator", "round 3: synthesis")
	round3 := o.runRound(runCtx, run.RunID, 3, roster, assignment, func(p models.Persona) []models.Message {
		return builder.Round3(p, idea, round2)
	})
	globalSum += o.emitConsensus(runCtx, run.RunID, "round3", round3, globalSum, 3)

	// Judge.
	o.emit(runCtx, run.RunID, events.EventSystem, "orchestrator", "judging")
	verdict := o.judge(runCtx, run.RunID, assignment.Judge, builder.Judge(idea, [][]models.RoundResult{round1, round2, round3}))
	o.emit(finalCtx, run.RunID, events.EventJudgeNote, "judge", verdict)

	judgeAvg := float64(verdict.Score)
	o.emit(finalCtx, run.RunID, events.EventConsensus, "orchestrator", models.ConsensusSnapshot{
		CoreSync: judgeAvg,
		Global:   (globalSum + judgeAvg) / 4,
		Phase:    "judge",
	})

	run.Status = models.RunStatusComplete
	o.updateRun(finalCtx, run)
	o.saveVerdict(finalCtx, run, verdict)
	o.deps.Metrics.ObserveRun(string(run.Status))

	result := &models.ValidationResult{
		RunID:        run.RunID,
		ValidationID: run.ValidationID,
		Score:        verdict.Score,
	}
	o.emit(finalCtx, run.RunID, events.EventComplete, "orchestrator", result)

	logger.Info("debate run complete",
		zap.Int("score", verdict.Score),
		zap.Bool("used_fallback_judge", verdict.UsedFallbackJudge))
	return result, nil
}

// roster returns the built-in personas plus the caller's custom persona
// when one is ready. Persona source failures degrade to the built-ins.
func (o *Orchestrator) roster(ctx context.Context, run *models.DebateRun, userID string) []models.Persona {
	var custom *models.Persona
	if userID != "" && o.deps.Personas != nil {
		p, err := o.deps.Personas.Active(ctx, userID)
		if err != nil {
			o.deps.Logger.Warn("custom persona lookup failed",
				zap.String("run_id", run.RunID), zap.Error(err))
			o.emit(ctx, run.RunID, events.EventError, "persona_source", err.Error())
		} else if p != nil {
			custom = p
			o.emit(ctx, run.RunID, events.EventSystem, "orchestrator",
				fmt.Sprintf("custom persona %q joined the panel", p.DisplayName))
		}
	}
	return o.deps.Registry.Roster(custom)
}

// searchContext queries the context provider best-effort. A failed or
// slow lookup costs the run nothing but the enrichment.
func (o *Orchestrator) searchContext(ctx context.Context, runID, idea string) []rag.Snippet {
	snippets, err := o.deps.RAG.Search(ctx, idea, o.cfg.RAGTopK)
	if err != nil {
		o.deps.Logger.Warn("context lookup failed", zap.String("run_id", runID), zap.Error(err))
		return nil
	}
	return snippets
}

// runRound fans the round out across the roster and waits for every
// participant. A failed call becomes a placeholder result and an error
// event; the participant is never dropped. Events are emitted after the
// barrier, in roster order, so the sink sees a deterministic sequence.
func (o *Orchestrator) runRound(ctx context.Context, runID string, round int, roster []models.Persona, assignment persona.Assignment, build func(models.Persona) []models.Message) []models.RoundResult {
	results := make([]models.RoundResult, len(roster))
	errs := make([]error, len(roster))

	var wg sync.WaitGroup
	for i, p := range roster {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			errs[i] = err
			results[i] = placeholderResult(p, round, err)
			continue
		}
		wg.Add(1)
		go func(i int, p models.Persona) {
			defer wg.Done()
			defer o.sem.Release(1)

			completion, err := o.deps.Gateway.Call(ctx, o.modelFor(p, assignment), build(p), llm.CallOptions{
				Temperature: o.cfg.RoundTemperature,
				ZDR:         assignment.ZDR,
				DefaultText: "[No content returned]",
			})
			if err != nil {
				errs[i] = err
				results[i] = placeholderResult(p, round, err)
				return
			}
			results[i] = models.RoundResult{
				PersonaID:   p.ID,
				DisplayName: p.DisplayName,
				Text:        completion.Text,
				Round:       round,
			}
		}(i, p)
	}
	wg.Wait()

	for i, r := range results {
		if errs[i] != nil {
			o.deps.Logger.Warn("persona call failed",
				zap.String("run_id", runID),
				zap.String("persona", r.PersonaID),
				zap.Int("round", round),
				zap.Error(errs[i]))
			o.emit(ctx, runID, events.EventError, r.PersonaID, errs[i].Error())
		}
		o.emit(ctx, runID, events.EventModelMsg, r.PersonaID, r)
	}
	return results
}

// modelFor resolves a persona's backend. The custom persona rides on the
// visionary's assignment rather than adding a policy dimension.
func (o *Orchestrator) modelFor(p models.Persona, assignment persona.Assignment) models.ModelRef {
	if ref, ok := assignment.PersonaModels[p.ID]; ok {
		return ref
	}
	return assignment.PersonaModels["visionary"]
}

// targetName resolves a persona's Round-2 opponent display name.
func (o *Orchestrator) targetName(p models.Persona, roster []models.Persona, weakest models.RoundResult) string {
	target := persona.TargetFor(o.deps.Conflicts, p.ID)
	if target.Weakest {
		return weakest.DisplayName
	}
	for _, other := range roster {
		if other.ID == target.PersonaID {
			return other.DisplayName
		}
	}
	return weakest.DisplayName
}

// weakestOf finds the Round-1 result with the lowest extracted score.
// Ties go to the earlier roster position.
func weakestOf(round1 []models.RoundResult) models.RoundResult {
	weakest := round1[0]
	lowest := score.ExtractTrailingScore(weakest.Text)
	for _, r := range round1[1:] {
		if s := score.ExtractTrailingScore(r.Text); s < lowest {
			weakest, lowest = r, s
		}
	}
	return weakest
}

// emitConsensus computes and emits the post-round snapshot, returning
// the round average so the caller can keep the running global sum. Only
// responses carrying a parseable score count toward the average, so an
// error placeholder or off-format response does not pull the round
// toward the neutral default.
func (o *Orchestrator) emitConsensus(ctx context.Context, runID, phase string, results []models.RoundResult, globalSum float64, roundsDone int) float64 {
	scores := make([]int, 0, len(results))
	for _, r := range results {
		if s, ok := score.ExtractScore(r.Text); ok {
			scores = append(scores, s)
		}
	}
	avg := float64(score.Aggregate(scores))

	o.emit(ctx, runID, events.EventConsensus, "orchestrator", models.ConsensusSnapshot{
		CoreSync: avg,
		Global:   (globalSum + avg) / float64(roundsDone),
		Phase:    phase,
	})
	return avg
}

// judge runs the verdict stage: primary judge at low temperature, one
// fallback attempt on call failure, default score on malformed output,
// score 0 with a failure note when both judges are down. The run
// completes in every case.
func (o *Orchestrator) judge(ctx context.Context, runID string, cfg persona.JudgeConfig, messages []models.Message) *models.Verdict {
	opts := llm.CallOptions{
		Temperature: o.cfg.JudgeTemperature,
		MaxTokens:   o.cfg.JudgeMaxTokens,
		ZDR:         cfg.ZDR,
	}

	completion, err := o.deps.Gateway.Call(ctx, cfg.Primary, messages, opts)
	usedFallback := false
	if err != nil {
		o.deps.Logger.Warn("primary judge failed",
			zap.String("run_id", runID),
			zap.String("backend", cfg.Primary.Provider),
			zap.Error(err))
		o.emit(ctx, runID, events.EventError, "judge", err.Error())
		o.deps.Metrics.ObserveJudgeFallback()

		usedFallback = true
		completion, err = o.deps.Gateway.Call(ctx, cfg.Fallback, messages, opts)
	}
	if err != nil {
		o.deps.Logger.Error("fallback judge failed",
			zap.String("run_id", runID),
			zap.String("backend", cfg.Fallback.Provider),
			zap.Error(err))
		o.emit(ctx, runID, events.EventError, "judge", err.Error())
		return &models.Verdict{
			Text:              "Verdict unavailable: both judge models failed. The debate transcript stands on its own.",
			Score:             0,
			UsedFallbackJudge: true,
		}
	}

	// Format failure is not call failure: a malformed verdict is still
	// informative, so it gets the default score and no fallback.
	s, ok := score.ExtractFinalScore(completion.Text)
	if !ok {
		o.deps.Logger.Warn("judge verdict missing parseable score", zap.String("run_id", runID))
		s = score.DefaultScore
	}
	return &models.Verdict{Text: completion.Text, Score: s, UsedFallbackJudge: usedFallback}
}

func placeholderResult(p models.Persona, round int, err error) models.RoundResult {
	return models.RoundResult{
		PersonaID:   p.ID,
		DisplayName: p.DisplayName,
		Text:        fmt.Sprintf("[Error: %s]", err.Error()),
		Round:       round,
	}
}

func (o *Orchestrator) emit(ctx context.Context, runID string, t events.EventType, source string, payload any) {
	if err := o.deps.Sink.Append(ctx, runID, t, source, payload); err != nil {
		o.deps.Logger.Warn("event append failed",
			zap.String("run_id", runID),
			zap.String("type", string(t)),
			zap.Error(err))
	}
}

func (o *Orchestrator) updateRun(ctx context.Context, run *models.DebateRun) {
	if o.deps.Runs == nil {
		return
	}
	if err := o.deps.Runs.UpdateRun(ctx, run); err != nil {
		o.deps.Logger.Warn("run state write failed",
			zap.String("run_id", run.RunID), zap.Error(err))
	}
}

func (o *Orchestrator) saveVerdict(ctx context.Context, run *models.DebateRun, v *models.Verdict) {
	if o.deps.Verdicts == nil {
		return
	}
	if err := o.deps.Verdicts.SaveVerdict(ctx, run.RunID, run.ValidationID, v); err != nil {
		o.deps.Logger.Error("verdict write failed",
			zap.String("run_id", run.RunID), zap.Error(err))
	}
}
