package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"viralflow-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/dashboard",
				Handler: GetDashboardHandler(serverCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/dashboard",
				Handler: ResetHandler(serverCtx),
			},
			{
				Method:  http.MethodPut,
				Path:    "/dashboard/sample-mode",
				Handler: SetSampleModeHandler(serverCtx),
			},
			{
				Method:  http.MethodPut,
				Path:    "/dashboard/tab",
				Handler: SetTabHandler(serverCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/dashboard/error",
				Handler: DismissErrorHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/trends/analyze",
				Handler: AnalyzeTrendsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/visuals/generate",
				Handler: GenerateVisualsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/scripts/generate",
				Handler: GenerateScriptsHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/decode",
				Handler: DecodeHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/runs",
				Handler: ListRunsHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/runs/latest/:purpose",
				Handler: LatestRunHandler(serverCtx),
			},
		},
		rest.WithPrefix("/api"),
	)
}
