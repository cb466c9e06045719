package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var _ AgentRunsModel = (*customAgentRunsModel)(nil)

type (
	// AgentRunsModel is an interface to be customized, add more methods here,
	// and implement the added methods in customAgentRunsModel.
	AgentRunsModel interface {
		agentRunsModel
		FindRecent(ctx context.Context, purpose string, limit int) ([]*AgentRuns, error)
	}

	customAgentRunsModel struct {
		*defaultAgentRunsModel
	}
)

// NewAgentRunsModel returns a model for the database table.
func NewAgentRunsModel(conn sqlx.SqlConn) AgentRunsModel {
	return &customAgentRunsModel{
		defaultAgentRunsModel: newAgentRunsModel(conn),
	}
}

// FindRecent lists runs newest first. An empty purpose matches all runs.
func (m *customAgentRunsModel) FindRecent(ctx context.Context, purpose string, limit int) ([]*AgentRuns, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("select %s from %s where ($1 = '' or purpose = $1) order by started_at desc limit $2", agentRunsRows, m.table)
	var resp []*AgentRuns
	if err := m.conn.QueryRowsCtx(ctx, &resp, query, strings.TrimSpace(purpose), limit); err != nil {
		return nil, err
	}
	return resp, nil
}
