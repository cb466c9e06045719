package dashboard

import (
	"embed"
	"fmt"
	"strings"

	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/prompt"
)

//go:embed prompts/*.tmpl
var defaultPromptFS embed.FS

// Prompt template names, one per purpose.
const (
	PromptTrend   = "trend"
	PromptVisuals = "visuals"
	PromptScripts = "scripts"
)

func promptName(p agent.Purpose) string {
	switch p {
	case agent.TrendAnalysis:
		return PromptTrend
	case agent.ImageGeneration:
		return PromptVisuals
	default:
		return PromptScripts
	}
}

// DefaultPrompts returns the built-in template sources keyed by name.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, 3)
	for _, name := range []string{PromptTrend, PromptVisuals, PromptScripts} {
		data, err := defaultPromptFS.ReadFile("prompts/" + name + prompt.Ext)
		if err != nil {
			panic(fmt.Sprintf("dashboard: embedded prompt %s: %v", name, err))
		}
		out[name] = strings.TrimSpace(string(data))
	}
	return out
}

// LoadPrompts builds the prompt catalog, letting files in dir override the
// built-in templates.
func LoadPrompts(dir string) (*prompt.Catalog, error) {
	return prompt.LoadCatalog(dir, DefaultPrompts(), nil)
}
