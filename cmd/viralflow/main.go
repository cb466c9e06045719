package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/confkit"
	"viralflow-api/pkg/dashboard"
	"viralflow-api/pkg/journal"
	llmpkg "viralflow-api/pkg/llm"
	"viralflow-api/pkg/metrics"
	"viralflow-api/pkg/viral"
)

type step string

const (
	stepTrends  step = "trends"
	stepVisuals step = "visuals"
	stepScripts step = "scripts"
)

func parseSteps(raw string) ([]step, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	out := make([]step, 0, len(fields))
	seen := make(map[step]struct{}, len(fields))
	for _, field := range fields {
		s := step(strings.ToLower(strings.TrimSpace(field)))
		switch s {
		case stepTrends, stepVisuals, stepScripts:
		default:
			return nil, fmt.Errorf("unknown step %q", field)
		}
		if _, exists := seen[s]; exists {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("no steps selected")
	}
	return out, nil
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	os.Exit(1)
}

func runSteps(ctx context.Context, session *dashboard.Session, steps []step) error {
	var failed []error
	for _, s := range steps {
		var err error
		switch s {
		case stepTrends:
			_, err = session.AnalyzeTrends(ctx)
		case stepVisuals:
			_, err = session.GenerateVisuals(ctx)
		case stepScripts:
			_, err = session.GenerateScripts(ctx)
		}
		if err == nil {
			logx.Infof("step %s done", s)
			continue
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		logx.Errorf("step %s failed: %v", s, err)
		failed = append(failed, fmt.Errorf("%s: %w", s, err))
		// Later steps build on the trend report.
		if errors.Is(err, dashboard.ErrNoTrendData) {
			break
		}
	}
	return errors.Join(failed...)
}

func writeSnapshot(w io.Writer, snap dashboard.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func main() {
	var (
		agentPath  = flag.String("agent-config", "etc/agent.yaml", "path to agent platform configuration")
		llmPath    = flag.String("llm-config", "etc/llm.yaml", "path to llm gateway configuration (llm backend only)")
		promptsDir = flag.String("prompts", "", "directory with prompt template overrides")
		journalDir = flag.String("journal", "", "directory to record each run into")
		stepsRaw   = flag.String("steps", "trends,visuals,scripts", "comma-separated steps to run")
		sample     = flag.Bool("sample", false, "start from the built-in sample trend report")
		timeout    = flag.Duration("timeout", 10*time.Minute, "overall deadline")
	)
	flag.Parse()
	logx.MustSetup(logx.LogConf{Encoding: "plain"})
	logx.DisableStat()

	steps, err := parseSteps(*stepsRaw)
	if err != nil {
		fatalf("parse steps: %v", err)
	}

	confkit.LoadDotenvOnce()

	agentCfg, err := agent.LoadConfig(*agentPath)
	if err != nil {
		fatalf("load agent config: %v", err)
	}
	registry, err := agentCfg.Registry()
	if err != nil {
		fatalf("build agent registry: %v", err)
	}

	logger := llmpkg.NewLogger("")
	var chat llmpkg.LLMClient
	if agentCfg.Backend == agent.BackendLLM {
		llmCfg, err := llmpkg.LoadConfig(*llmPath)
		if err != nil {
			fatalf("load llm config: %v", err)
		}
		client, err := llmpkg.NewClient(llmCfg, llmpkg.WithLogger(logger))
		if err != nil {
			fatalf("initialise llm client: %v", err)
		}
		defer func() {
			_ = client.Close()
		}()
		chat = client
	}
	var llmOpts []agent.LLMOption
	if agentCfg.Structured {
		llmOpts = append(llmOpts, agent.WithStructuredTargets(registry, viral.StructuredTargets()))
	}
	invoker, err := agent.New(agentCfg, chat, logger, llmOpts...)
	if err != nil {
		fatalf("initialise agent invoker: %v", err)
	}

	prompts, err := dashboard.LoadPrompts(*promptsDir)
	if err != nil {
		fatalf("load prompts: %v", err)
	}
	runMetrics, err := metrics.NewRunMetrics(nil)
	if err != nil {
		fatalf("init metrics: %v", err)
	}
	opts := []dashboard.Option{
		dashboard.WithPrompts(prompts),
		dashboard.WithMetrics(runMetrics),
		dashboard.WithLogger(logger),
	}
	if *journalDir != "" {
		writer, err := journal.NewWriter(*journalDir)
		if err != nil {
			fatalf("open journal: %v", err)
		}
		opts = append(opts, dashboard.WithRecorder(writer))
	}

	session, err := dashboard.NewSession(invoker, registry, opts...)
	if err != nil {
		fatalf("create session: %v", err)
	}
	if *sample {
		session.SetSampleMode(true)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logx.Infof("received signal %s, cancelling run", sig)
		cancel()
	}()

	runErr := runSteps(ctx, session, steps)
	if err := writeSnapshot(os.Stdout, session.Snapshot()); err != nil {
		fatalf("write result: %v", err)
	}
	if runErr != nil {
		fatalf("run finished with errors: %v", runErr)
	}
}
