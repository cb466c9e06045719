package dashboard

import (
	"context"
	"time"

	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/decode"
	"viralflow-api/pkg/llm"
	"viralflow-api/pkg/viral"
)

// Run statuses reported to recorders and metrics.
const (
	StatusOK             = "ok"
	StatusDecodeFailed   = "decode_failed"
	StatusRemoteFailed   = "remote_failed"
	StatusTransportError = "transport_error"
	StatusSuperseded     = "superseded"
)

// Metrics receives run counters. *metrics.RunMetrics satisfies it.
type Metrics interface {
	RunStarted(ctx context.Context, purpose string)
	RunFinished(ctx context.Context, purpose, status string, d time.Duration)
	Decoded(ctx context.Context, purpose, reason string)
}

type noopMetrics struct{}

func (noopMetrics) RunStarted(context.Context, string)                         {}
func (noopMetrics) RunFinished(context.Context, string, string, time.Duration) {}
func (noopMetrics) Decoded(context.Context, string, string)                    {}

// AnalyzeTrends asks the trend agent for this week's report. On success the
// report replaces the previous one and the session moves to the results step.
func (s *Session) AnalyzeTrends(ctx context.Context) (Snapshot, error) {
	return s.run(ctx, agent.TrendAnalysis)
}

// GenerateVisuals asks the image agent for thumbnail concepts built on the
// displayed trend report.
func (s *Session) GenerateVisuals(ctx context.Context) (Snapshot, error) {
	return s.run(ctx, agent.ImageGeneration)
}

// GenerateScripts asks the script agent for scripts built on the displayed
// trend report.
func (s *Session) GenerateScripts(ctx context.Context) (Snapshot, error) {
	return s.run(ctx, agent.ScriptGeneration)
}

// pending is one invocation between begin and finish.
type pending struct {
	purpose    agent.Purpose
	agentID    string
	generation uint64
	prompt     string
	digest     string
	startedAt  time.Time
}

func (s *Session) run(ctx context.Context, p agent.Purpose) (Snapshot, error) {
	agentID, err := s.registry.Lookup(p)
	if err != nil {
		return s.Snapshot(), err
	}

	job, trend, err := s.begin(p, agentID)
	if err != nil {
		return s.Snapshot(), err
	}

	s.metrics.RunStarted(ctx, p.String())
	var res *agent.Result
	job.prompt, job.digest, err = s.renderPrompt(p, trend)
	if err == nil {
		res, err = s.invoker.Invoke(ctx, job.prompt, agentID)
	}
	return s.finish(ctx, job, res, err)
}

// begin checks preconditions and marks the purpose as loading.
func (s *Session) begin(p agent.Purpose, agentID string) (pending, *viral.TrendReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var trend *viral.TrendReport
	if p != agent.TrendAnalysis {
		trend = s.displayedTrendLocked()
		if trend == nil {
			return pending{}, nil, ErrNoTrendData
		}
	}

	s.gens[p]++
	s.state.loading.set(p, true)
	s.state.err = ""
	s.state.activeAgentID = agentID
	return pending{
		purpose:    p,
		agentID:    agentID,
		generation: s.gens[p],
		startedAt:  s.now(),
	}, trend, nil
}

func (s *Session) displayedTrendLocked() *viral.TrendReport {
	if s.state.sampleMode {
		return s.samples.Trend
	}
	return s.state.trend
}

func (s *Session) renderPrompt(p agent.Purpose, trend *viral.TrendReport) (string, string, error) {
	name := promptName(p)
	var data any
	switch p {
	case agent.ImageGeneration:
		data = trend.ThumbnailBrief()
	case agent.ScriptGeneration:
		data = trend.HookBrief()
	}
	text, err := s.prompts.Render(name, data)
	if err != nil {
		return "", "", err
	}
	var digest string
	if tpl, ok := s.prompts.Get(name); ok {
		digest = tpl.Digest()
	}
	return text, digest, nil
}

// verdict is what a finished invocation means for the displayed state.
type verdict struct {
	status  string
	message string
	outcome decode.Outcome
	err     error
}

func judge(p agent.Purpose, res *agent.Result, invokeErr error) verdict {
	if invokeErr != nil {
		msg := invokeErr.Error()
		if msg == "" {
			msg = MsgUnexpected
		}
		return verdict{status: StatusTransportError, message: msg, err: invokeErr}
	}
	if res == nil {
		return verdict{status: StatusTransportError, message: MsgUnexpected}
	}
	if !res.Success {
		return verdict{status: StatusRemoteFailed, message: agent.FailureMessage(res, failureMessage(p))}
	}

	out := agent.Decode(res)
	if out.OK() {
		return verdict{status: StatusOK, outcome: out}
	}
	v := verdict{status: StatusDecodeFailed, outcome: out, err: out.Err()}
	switch p {
	case agent.TrendAnalysis:
		v.message = MsgTrendUnparseable
	case agent.ImageGeneration:
		if len(res.Artifacts) == 0 {
			v.message = MsgVisualsUnparseable
		}
	case agent.ScriptGeneration:
		v.message = MsgScriptUnparseable
	}
	return v
}

func failureMessage(p agent.Purpose) string {
	switch p {
	case agent.TrendAnalysis:
		return MsgTrendFailed
	case agent.ImageGeneration:
		return MsgVisualsFailed
	default:
		return MsgScriptsFailed
	}
}

func (s *Session) finish(ctx context.Context, job pending, res *agent.Result, invokeErr error) (Snapshot, error) {
	duration := s.now().Sub(job.startedAt)
	v := judge(job.purpose, res, invokeErr)

	s.mu.Lock()
	superseded := s.gens[job.purpose] != job.generation
	if superseded {
		v.status = StatusSuperseded
	} else {
		s.applyLocked(job, res, v)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if res != nil && res.Success {
		s.metrics.Decoded(ctx, job.purpose.String(), string(v.outcome.Reason()))
	}
	s.metrics.RunFinished(ctx, job.purpose.String(), v.status, duration)
	s.record(ctx, job, res, v, duration)

	fields := llm.Fields{
		"purpose":     job.purpose.String(),
		"agent_id":    job.agentID,
		"status":      v.status,
		"generation":  job.generation,
		"duration_ms": duration.Milliseconds(),
	}
	switch {
	case superseded:
		s.logger.Debug(ctx, "dashboard run superseded", fields)
		return snap, ErrSuperseded
	case v.message != "":
		fields["message"] = v.message
		s.logger.Warn(ctx, "dashboard run failed", fields)
		return snap, &RunError{Purpose: job.purpose, Message: v.message, Err: v.err}
	default:
		s.logger.Info(ctx, "dashboard run finished", fields)
		return snap, nil
	}
}

// applyLocked folds a verdict into the state. Failures keep previous data.
func (s *Session) applyLocked(job pending, res *agent.Result, v verdict) {
	p := job.purpose
	st := &s.state
	st.loading.set(p, false)
	if st.activeAgentID == job.agentID {
		st.activeAgentID = ""
	}
	if v.message != "" {
		st.err = v.message
	}
	if v.status == StatusTransportError || v.status == StatusRemoteFailed {
		return
	}

	switch p {
	case agent.TrendAnalysis:
		if v.outcome.OK() {
			st.trend = viral.NewTrendReport(v.outcome.Record())
			st.step = StepResults
		}
	case agent.ImageGeneration:
		if board := nextBoard(st.visuals, v.outcome, res.Artifacts); board != nil {
			st.visuals = board
		}
		st.tab = TabVisuals
	case agent.ScriptGeneration:
		if v.outcome.OK() {
			st.scripts = viral.NewScriptBook(v.outcome.Record())
		}
		st.tab = TabScripts
	}
}

// nextBoard merges a visuals reply into the previous board. The decoded
// concepts and the artifact list update independently; nil means no change.
func nextBoard(prev *viral.VisualBoard, out decode.Outcome, artifacts []agent.ArtifactFile) *viral.VisualBoard {
	if !out.OK() && artifacts == nil {
		return nil
	}
	images := artifacts
	if images == nil && prev != nil {
		images = prev.Images
	}
	if out.OK() {
		return viral.NewVisualBoard(out.Record(), images)
	}
	if prev == nil {
		return viral.NewVisualBoard(nil, images)
	}
	board := *prev
	board.Images = images
	return &board
}
