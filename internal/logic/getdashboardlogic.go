package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
	"viralflow-api/pkg/dashboard"
)

type GetDashboardLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetDashboardLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetDashboardLogic {
	return &GetDashboardLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// GetDashboard renders the displayed state. A render fault rolls the session
// back to its last good state and the rolled back state is returned instead.
func (l *GetDashboardLogic) GetDashboard() (*types.DashboardResponse, error) {
	var resp *types.DashboardResponse
	err := l.svcCtx.Dashboard.Guard(func(snap dashboard.Snapshot) error {
		resp = toDashboardResponse(snap)
		return nil
	})
	if err != nil {
		l.Errorf("dashboard render failed: %v", err)
		return toDashboardResponse(l.svcCtx.Dashboard.Snapshot()), nil
	}
	return resp, nil
}

func toDashboardResponse(snap dashboard.Snapshot) *types.DashboardResponse {
	resp := &types.DashboardResponse{Snapshot: snap}
	if t := snap.Trend; t != nil {
		resp.Stats.Insights = len(t.TopInsights)
		resp.Stats.Videos = len(t.ViralVideos)
		resp.Stats.Templates = len(t.VideoTemplates)
	}
	if v := snap.Visuals; v != nil {
		resp.Stats.Concepts = len(v.ThumbnailConcepts)
		resp.Stats.Images = len(v.Images)
	}
	if s := snap.Scripts; s != nil {
		resp.Stats.Scripts = len(s.Scripts)
	}
	return resp
}
