package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"viralflow-api/internal/logic"
	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
)

func GetDashboardHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewGetDashboardLogic(r.Context(), svcCtx)
		resp, err := l.GetDashboard()
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func ResetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.Reset()
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func SetSampleModeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SampleModeRequest
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.SetSampleMode(&req)
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func SetTabHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TabRequest
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.SetTab(&req)
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}

func DismissErrorHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewSessionLogic(r.Context(), svcCtx)
		resp, err := l.DismissError()
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
