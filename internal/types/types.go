package types

import (
	"encoding/json"

	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/dashboard"
)

type DashboardStats struct {
	Insights  int `json:"insights"`
	Videos    int `json:"videos"`
	Templates int `json:"templates"`
	Concepts  int `json:"concepts"`
	Images    int `json:"images"`
	Scripts   int `json:"scripts"`
}

type DashboardResponse struct {
	dashboard.Snapshot
	Stats DashboardStats `json:"stats"`
}

type SampleModeRequest struct {
	Enabled bool `json:"enabled"`
}

type TabRequest struct {
	Tab string `json:"tab"`
}

type DecodeRequest struct {
	Raw json.RawMessage `json:"raw"`
}

type DecodeResponse struct {
	OK     bool           `json:"ok"`
	Reason string         `json:"reason,omitempty"`
	Record map[string]any `json:"record,omitempty"`
}

type RunsRequest struct {
	Purpose string `form:"purpose,optional"`
	Limit   int    `form:"limit,default=20"`
}

type RunsResponse struct {
	Source string                `json:"source"`
	Runs   []dashboard.RunRecord `json:"runs"`
}

type LatestRequest struct {
	Purpose string `path:"purpose"`
}

type LatestResponse struct {
	Purpose   string               `json:"purpose"`
	RunID     string               `json:"run_id"`
	AgentID   string               `json:"agent_id"`
	Record    map[string]any       `json:"record"`
	Artifacts []agent.ArtifactFile `json:"artifacts"`
	StoredAt  int64                `json:"stored_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
