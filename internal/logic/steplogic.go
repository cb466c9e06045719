package logic

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
	"viralflow-api/pkg/dashboard"
)

// StepLogic runs one of the three generation steps.
type StepLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStepLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StepLogic {
	return &StepLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *StepLogic) AnalyzeTrends() (*types.DashboardResponse, error) {
	return l.finish(l.svcCtx.Dashboard.AnalyzeTrends(l.ctx))
}

func (l *StepLogic) GenerateVisuals() (*types.DashboardResponse, error) {
	return l.finish(l.svcCtx.Dashboard.GenerateVisuals(l.ctx))
}

func (l *StepLogic) GenerateScripts() (*types.DashboardResponse, error) {
	return l.finish(l.svcCtx.Dashboard.GenerateScripts(l.ctx))
}

// finish reports step failures through the snapshot's error field. Only a
// missing precondition is returned as an error.
func (l *StepLogic) finish(snap dashboard.Snapshot, err error) (*types.DashboardResponse, error) {
	var runErr *dashboard.RunError
	switch {
	case err == nil:
	case errors.Is(err, dashboard.ErrNoTrendData):
		return nil, err
	case errors.As(err, &runErr), errors.Is(err, dashboard.ErrSuperseded):
		l.Infof("step finished without update: %v", err)
	default:
		return nil, err
	}
	return toDashboardResponse(snap), nil
}
