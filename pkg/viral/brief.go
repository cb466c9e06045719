package viral

import (
	"fmt"
	"strings"
)

// ThumbnailBrief is what the image agent is told about a trend report.
type ThumbnailBrief struct {
	KeyTakeaways string
	Patterns     string
}

// HookBrief is what the script agent is told about a trend report.
type HookBrief struct {
	Summary  string
	Patterns string
}

// ThumbnailBrief joins each thumbnail pattern as "pattern: description".
func (r *TrendReport) ThumbnailBrief() ThumbnailBrief {
	if r == nil {
		return ThumbnailBrief{}
	}
	parts := make([]string, 0, len(r.StyleAnalysis.ThumbnailPatterns))
	for _, p := range r.StyleAnalysis.ThumbnailPatterns {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Pattern, p.Description))
	}
	return ThumbnailBrief{
		KeyTakeaways: r.StyleAnalysis.KeyTakeaways,
		Patterns:     strings.Join(parts, ". "),
	}
}

// HookBrief joins each hook pattern as "name: description".
func (r *TrendReport) HookBrief() HookBrief {
	if r == nil {
		return HookBrief{}
	}
	parts := make([]string, 0, len(r.StyleAnalysis.HookPatterns))
	for _, h := range r.StyleAnalysis.HookPatterns {
		parts = append(parts, fmt.Sprintf("%s: %s", h.PatternName, h.Description))
	}
	return HookBrief{
		Summary:  r.ExecutiveSummary,
		Patterns: strings.Join(parts, ". "),
	}
}
