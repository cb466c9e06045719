package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"viralflow-api/internal/config"
	"viralflow-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Sample mode: %t", cfg.SampleMode),
		fmt.Sprintf("Prompts: %s", orBuiltin(cfg.PromptsDir)),
		fmt.Sprintf("Journal: %s", orNone(cfg.JournalDir)),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		sectionLine("Agent config", cfg.Agent),
		sectionLine("LLM config", cfg.LLM),
	}
	if a := cfg.Agent.Value; a != nil {
		lines = append(lines, fmt.Sprintf("Agent backend: %s (timeout %s, retries %d)", a.Backend, a.Timeout, a.MaxRetries))
	}
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orBuiltin(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return "built-in"
	}
	return dir
}

func orNone(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return "disabled"
	}
	return dir
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
