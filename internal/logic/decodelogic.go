package logic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/internal/svc"
	"viralflow-api/internal/types"
	"viralflow-api/pkg/decode"
)

type DecodeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewDecodeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DecodeLogic {
	return &DecodeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Decode runs the tolerant decoder on raw. A JSON string is decoded as agent
// text; any other JSON value is passed through as is.
func (l *DecodeLogic) Decode(req *types.DecodeRequest) (*types.DecodeResponse, error) {
	var raw decode.RawResponse
	if len(req.Raw) > 0 {
		if err := json.Unmarshal(req.Raw, &raw); err != nil {
			return nil, errors.New("raw must be valid JSON")
		}
	}
	out := decode.Decode(raw)
	resp := &types.DecodeResponse{OK: out.OK(), Reason: string(out.Reason())}
	if out.OK() {
		resp.Record = out.Record()
	}
	return resp, nil
}
