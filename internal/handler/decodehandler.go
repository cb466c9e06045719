package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"viralflow-api/internal/logic"
	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
)

func DecodeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// raw is arbitrary JSON, which httpx.Parse cannot map.
		var req types.DecodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, err)
			return
		}

		l := logic.NewDecodeLogic(r.Context(), svcCtx)
		resp, err := l.Decode(&req)
		if err != nil {
			writeError(w, r, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
