package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"viralflow-api/internal/logic"
	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
)

func AnalyzeTrendsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return stepHandler(svcCtx, (*logic.StepLogic).AnalyzeTrends)
}

func GenerateVisualsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return stepHandler(svcCtx, (*logic.StepLogic).GenerateVisuals)
}

func GenerateScriptsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return stepHandler(svcCtx, (*logic.StepLogic).GenerateScripts)
}

func stepHandler(svcCtx *svc.ServiceContext, step func(*logic.StepLogic) (*types.DashboardResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewStepLogic(r.Context(), svcCtx)
		resp, err := step(l)
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
