package agent

import (
	"context"
	"time"

	"viralflow-api/pkg/decode"
)

// ArtifactFile references a file produced alongside an agent reply.
type ArtifactFile struct {
	FileURL    string `json:"file_url" msgpack:"file_url"`
	Name       string `json:"name" msgpack:"name"`
	FormatType string `json:"format_type" msgpack:"format_type"`
}

// Result is the outcome of one invocation that reached the agent platform.
// Success=false is a remote refusal, not a transport failure. Artifacts is
// nil when the reply carried no artifact list.
type Result struct {
	AgentID   string
	Success   bool
	Response  decode.RawResponse
	Message   string
	Error     string
	Artifacts []ArtifactFile
	Duration  time.Duration
}

// Invoker sends a prompt to the agent named by agentID. Transport failures
// are returned as errors.
type Invoker interface {
	Invoke(ctx context.Context, prompt, agentID string) (*Result, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, prompt, agentID string) (*Result, error)

func (f InvokerFunc) Invoke(ctx context.Context, prompt, agentID string) (*Result, error) {
	return f(ctx, prompt, agentID)
}

// Candidates returns the raw values worth decoding, most specific first:
// the nested response.result, then the whole response.
func Candidates(res *Result) []decode.RawResponse {
	if res == nil {
		return nil
	}
	var nested decode.RawResponse
	switch v := res.Response.(type) {
	case map[string]any:
		nested = v["result"]
	case decode.Record:
		nested = v["result"]
	}
	return []decode.RawResponse{nested, res.Response}
}

// Payload is the preferred raw value: response.result when present,
// otherwise the whole response.
func Payload(res *Result) decode.RawResponse {
	for _, c := range Candidates(res) {
		if c != nil {
			return c
		}
	}
	return nil
}

// Decode decodes the payload, falling back to the outer response when the
// nested result does not decode.
func Decode(res *Result) decode.Outcome {
	return decode.DecodeFirst(Candidates(res)...)
}

// FailureMessage picks the remote explanation for an unsuccessful result,
// or fallback when the agent gave none.
func FailureMessage(res *Result, fallback string) string {
	if res != nil {
		if res.Error != "" {
			return res.Error
		}
		if res.Message != "" {
			return res.Message
		}
	}
	return fallback
}
