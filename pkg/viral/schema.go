package viral

import "viralflow-api/pkg/agent"

// StructuredTargets maps each purpose to a fresh reply target for gateways
// that support schema-constrained output. Derived fields are excluded from
// the schema and recomputed by the New* derivations.
func StructuredTargets() map[agent.Purpose]func() any {
	return map[agent.Purpose]func() any{
		agent.TrendAnalysis:    func() any { return &TrendReport{} },
		agent.ImageGeneration:  func() any { return &VisualBoard{} },
		agent.ScriptGeneration: func() any { return &ScriptBook{} },
	}
}
