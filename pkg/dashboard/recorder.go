package dashboard

import (
	"context"
	"errors"
	"time"

	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/decode"
	"viralflow-api/pkg/llm"
)

// RunRecord captures one agent invocation and how the session used it.
type RunRecord struct {
	ID           string               `json:"id"`
	Purpose      string               `json:"purpose"`
	AgentID      string               `json:"agent_id"`
	Generation   uint64               `json:"generation"`
	Prompt       string               `json:"prompt"`
	PromptDigest string               `json:"prompt_digest,omitempty"`
	Status       string               `json:"status"`
	DecodeReason string               `json:"decode_reason,omitempty"`
	Message      string               `json:"message,omitempty"`
	Record       decode.Record        `json:"record,omitempty"`
	Raw          decode.RawResponse   `json:"raw,omitempty"`
	Artifacts    []agent.ArtifactFile `json:"artifacts,omitempty"`
	StartedAt    time.Time            `json:"started_at"`
	Duration     time.Duration        `json:"duration"`
}

// RunRecorder persists run records. Recording failures are logged and
// never change the session state.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

type noopRecorder struct{}

func (noopRecorder) RecordRun(context.Context, RunRecord) error { return nil }

// RecorderFunc adapts a function to RunRecorder.
type RecorderFunc func(ctx context.Context, rec RunRecord) error

func (f RecorderFunc) RecordRun(ctx context.Context, rec RunRecord) error {
	return f(ctx, rec)
}

// MultiRecorder fans a record out to every recorder and joins their errors.
type MultiRecorder []RunRecorder

func (m MultiRecorder) RecordRun(ctx context.Context, rec RunRecord) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.RecordRun(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) record(ctx context.Context, job pending, res *agent.Result, v verdict, d time.Duration) {
	rec := RunRecord{
		ID:           s.newID(),
		Purpose:      job.purpose.String(),
		AgentID:      job.agentID,
		Generation:   job.generation,
		Prompt:       job.prompt,
		PromptDigest: job.digest,
		Status:       v.status,
		DecodeReason: string(v.outcome.Reason()),
		Message:      v.message,
		Record:       v.outcome.Record(),
		StartedAt:    job.startedAt,
		Duration:     d,
	}
	if res != nil {
		rec.Raw = agent.Payload(res)
		rec.Artifacts = res.Artifacts
	}
	if err := s.recorder.RecordRun(ctx, rec); err != nil {
		s.logger.Error(ctx, err, llm.Fields{
			"purpose": rec.Purpose,
			"run_id":  rec.ID,
		})
	}
}
