package llm

import "strings"

const modelSeparator = "/"

// ResolveModelID maps a configured alias to the identifier sent upstream.
// Aliases already in provider/model form pass through unchanged.
func ResolveModelID(alias string, cfg ModelConfig) string {
	alias = strings.TrimSpace(alias)
	if strings.Contains(alias, modelSeparator) {
		return alias
	}

	name := strings.TrimSpace(cfg.ModelName)
	if name == "" {
		name = alias
	}
	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" || strings.Contains(name, modelSeparator) {
		return name
	}
	return provider + modelSeparator + name
}

// ParseModelID splits provider/model into its parts. Bare names have no provider.
func ParseModelID(model string) (provider, name string) {
	if i := strings.Index(model, modelSeparator); i >= 0 {
		return model[:i], model[i+1:]
	}
	return "", model
}
