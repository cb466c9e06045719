package handler

import (
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"viralflow-api/internal/logic"
	"viralflow-api/internal/types"
	"viralflow-api/pkg/dashboard"
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, dashboard.ErrNoTrendData):
		status = http.StatusConflict
	case errors.Is(err, logic.ErrNoCachedRun):
		status = http.StatusNotFound
	}
	httpx.WriteJsonCtx(r.Context(), w, status, types.ErrorResponse{Error: err.Error()})
}
