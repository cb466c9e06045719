package svc

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "viralflow-api/internal/cache"
	"viralflow-api/internal/config"
	"viralflow-api/internal/model"
	"viralflow-api/internal/persistence"
	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/dashboard"
	"viralflow-api/pkg/journal"
	llmpkg "viralflow-api/pkg/llm"
	"viralflow-api/pkg/metrics"
	"viralflow-api/pkg/prompt"
	"viralflow-api/pkg/viral"
)

type ServiceContext struct {
	Config config.Config

	AgentConfig *agent.Config
	LLMConfig   *llmpkg.Config
	Registry    *agent.Registry
	Invoker     agent.Invoker
	Prompts     *prompt.Catalog
	Metrics     *metrics.RunMetrics
	Journal     *journal.Writer
	Dashboard   *dashboard.Session

	// Optional stores, present only when configured.
	DBConn         sqlx.SqlConn
	AgentRunsModel model.AgentRunsModel
	Redis          *redis.Redis
	RunStore       *persistence.RunStore
}

// Option overrides a collaborator, mainly for tests.
type Option func(*ServiceContext)

// WithInvoker replaces the invoker built from the agent config.
func WithInvoker(inv agent.Invoker) Option {
	return func(s *ServiceContext) {
		s.Invoker = inv
	}
}

func MustNewServiceContext(c config.Config, opts ...Option) *ServiceContext {
	svc, err := NewServiceContext(c, opts...)
	logx.Must(err)
	return svc
}

func NewServiceContext(c config.Config, opts ...Option) (*ServiceContext, error) {
	if c.Agent.Value == nil {
		return nil, fmt.Errorf("svc: agent config is required")
	}
	svc := &ServiceContext{
		Config:      c,
		AgentConfig: c.Agent.Value,
		LLMConfig:   c.LLM.Value,
	}
	for _, opt := range opts {
		opt(svc)
	}

	registry, err := svc.AgentConfig.Registry()
	if err != nil {
		return nil, err
	}
	svc.Registry = registry

	logger := llmpkg.NewLogger("")
	if svc.Invoker == nil {
		var chat llmpkg.LLMClient
		if svc.AgentConfig.Backend == agent.BackendLLM {
			client, err := llmpkg.NewClient(svc.LLMConfig, llmpkg.WithLogger(logger))
			if err != nil {
				return nil, fmt.Errorf("svc: build llm client: %w", err)
			}
			chat = client
		}
		var llmOpts []agent.LLMOption
		if svc.AgentConfig.Structured {
			llmOpts = append(llmOpts, agent.WithStructuredTargets(registry, viral.StructuredTargets()))
		}
		inv, err := agent.New(svc.AgentConfig, chat, logger, llmOpts...)
		if err != nil {
			return nil, fmt.Errorf("svc: build agent invoker: %w", err)
		}
		svc.Invoker = inv
	}

	if svc.Prompts, err = dashboard.LoadPrompts(c.PromptsDir); err != nil {
		return nil, fmt.Errorf("svc: load prompts: %w", err)
	}
	if svc.Metrics, err = metrics.NewRunMetrics(nil); err != nil {
		return nil, fmt.Errorf("svc: metrics: %w", err)
	}

	var recorders dashboard.MultiRecorder
	if c.JournalDir != "" {
		if svc.Journal, err = journal.NewWriter(c.JournalDir); err != nil {
			return nil, err
		}
		recorders = append(recorders, svc.Journal)
	}

	// Only wire stores when configured; the dashboard works without them.
	storeCfg := persistence.Config{TTL: cachekeys.NewTTLSet(c.TTL)}
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		if db, err := conn.RawDB(); err == nil {
			db.SetMaxOpenConns(c.Postgres.MaxOpen)
			db.SetMaxIdleConns(c.Postgres.MaxIdle)
		}
		svc.DBConn = conn
		svc.AgentRunsModel = model.NewAgentRunsModel(conn)
		storeCfg.RunsModel = svc.AgentRunsModel
	}
	if c.Redis.Host != "" {
		rds, err := redis.NewRedis(c.Redis)
		if err != nil {
			return nil, fmt.Errorf("svc: redis: %w", err)
		}
		svc.Redis = rds
		storeCfg.Redis = rds
	}
	if store := persistence.NewRunStore(storeCfg); store != nil {
		svc.RunStore = store
		recorders = append(recorders, store)
	}

	session, err := dashboard.NewSession(svc.Invoker, registry,
		dashboard.WithPrompts(svc.Prompts),
		dashboard.WithMetrics(svc.Metrics),
		dashboard.WithRecorder(recorders),
		dashboard.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if c.SampleMode {
		session.SetSampleMode(true)
	}
	svc.Dashboard = session
	return svc, nil
}
