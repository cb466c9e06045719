package logic

import (
	"context"
	"errors"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/dashboard"
	"viralflow-api/pkg/journal"
)

const maxRunsLimit = 200

// ErrNoCachedRun is returned when no successful run is cached for a purpose.
var ErrNoCachedRun = errors.New("no cached run for purpose")

type RunsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRunsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RunsLogic {
	return &RunsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ListRuns reads run history from Postgres when configured, else from the
// file journal.
func (l *RunsLogic) ListRuns(req *types.RunsRequest) (*types.RunsResponse, error) {
	purpose, err := normalisePurpose(req.Purpose)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 || limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	resp := &types.RunsResponse{Source: "none", Runs: []dashboard.RunRecord{}}
	var runs []dashboard.RunRecord
	switch {
	case l.svcCtx.RunStore.HasDatabase():
		resp.Source = "postgres"
		runs, err = l.svcCtx.RunStore.RecentRuns(l.ctx, purpose, limit)
	case l.svcCtx.Journal != nil:
		resp.Source = "journal"
		runs, err = journal.ReadDir(l.svcCtx.Journal.Dir(), purpose, limit)
	}
	if err != nil {
		return nil, err
	}
	if runs != nil {
		resp.Runs = runs
	}
	return resp, nil
}

// LatestRun returns the cached record of the last successful run.
func (l *RunsLogic) LatestRun(req *types.LatestRequest) (*types.LatestResponse, error) {
	purpose, err := normalisePurpose(req.Purpose)
	if err != nil {
		return nil, err
	}
	if purpose == "" {
		return nil, errors.New("purpose is required")
	}
	snap, ok, err := l.svcCtx.RunStore.Latest(l.ctx, purpose)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoCachedRun
	}
	return &types.LatestResponse{
		Purpose:   purpose,
		RunID:     snap.RunID,
		AgentID:   snap.AgentID,
		Record:    snap.Decoded(),
		Artifacts: snap.Artifacts,
		StoredAt:  snap.StoredAt,
	}, nil
}

func normalisePurpose(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	p, err := agent.ParsePurpose(s)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}
