package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
	"viralflow-api/pkg/dashboard"
)

// SessionLogic handles the small session toggles.
type SessionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewSessionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SessionLogic {
	return &SessionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *SessionLogic) SetSampleMode(req *types.SampleModeRequest) (*types.DashboardResponse, error) {
	return toDashboardResponse(l.svcCtx.Dashboard.SetSampleMode(req.Enabled)), nil
}

func (l *SessionLogic) SetTab(req *types.TabRequest) (*types.DashboardResponse, error) {
	tab, err := dashboard.ParseTab(req.Tab)
	if err != nil {
		return nil, err
	}
	snap, err := l.svcCtx.Dashboard.SetTab(tab)
	if err != nil {
		return nil, err
	}
	return toDashboardResponse(snap), nil
}

func (l *SessionLogic) DismissError() (*types.DashboardResponse, error) {
	return toDashboardResponse(l.svcCtx.Dashboard.DismissError()), nil
}

func (l *SessionLogic) Reset() (*types.DashboardResponse, error) {
	return toDashboardResponse(l.svcCtx.Dashboard.Reset()), nil
}
