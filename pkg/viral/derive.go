package viral

import (
	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/decode"
)

// NewTrendReport reads a decoded trend reply. Missing fields become empty
// text and empty lists.
func NewTrendReport(rec decode.Record) *TrendReport {
	style := rec.Object("style_analysis")
	return &TrendReport{
		ExecutiveSummary: rec.String("executive_summary"),
		TopInsights: mapRecords(rec.Records("top_insights"), func(r decode.Record) Insight {
			return Insight{Insight: r.String("insight"), ActionItem: r.String("action_item")}
		}),
		ViralVideos: mapRecords(rec.Records("viral_videos"), func(r decode.Record) ViralVideo {
			return ViralVideo{
				Title:           r.String("title"),
				Channel:         r.String("channel"),
				Views:           r.String("views"),
				Category:        r.String("category"),
				Topic:           r.String("topic"),
				ViralityReason:  r.String("virality_reason"),
				EngagementNotes: r.String("engagement_notes"),
			}
		}),
		StyleAnalysis: StyleAnalysis{
			HookPatterns: mapRecords(style.Records("hook_patterns"), func(r decode.Record) HookPattern {
				return HookPattern{
					PatternName:   r.String("pattern_name"),
					Description:   r.String("description"),
					Effectiveness: r.String("effectiveness"),
					Example:       r.String("example"),
				}
			}),
			PacingAnalysis: mapRecords(style.Records("pacing_analysis"), func(r decode.Record) PacingItem {
				return PacingItem{Style: r.String("style"), Description: r.String("description"), BestFor: r.String("best_for")}
			}),
			TonePatterns: mapRecords(style.Records("tone_patterns"), func(r decode.Record) TonePattern {
				return TonePattern{Tone: r.String("tone"), Description: r.String("description"), UsageFrequency: r.String("usage_frequency")}
			}),
			ThumbnailPatterns: mapRecords(style.Records("thumbnail_patterns"), func(r decode.Record) ThumbnailPattern {
				return ThumbnailPattern{Pattern: r.String("pattern"), Description: r.String("description"), Impact: r.String("impact")}
			}),
			EngagementTactics: mapRecords(style.Records("engagement_tactics"), func(r decode.Record) EngagementTactic {
				return EngagementTactic{Tactic: r.String("tactic"), Description: r.String("description"), Effectiveness: r.String("effectiveness")}
			}),
			KeyTakeaways: style.String("key_takeaways"),
		},
		VideoTemplates: mapRecords(rec.Records("video_templates"), newVideoTemplate),
		WeekOverview:   rec.String("week_overview"),
	}
}

func newVideoTemplate(r decode.Record) VideoTemplate {
	return VideoTemplate{
		TemplateName:      r.String("template_name"),
		TargetDuration:    r.String("target_duration"),
		Difficulty:        r.String("difficulty"),
		Level:             ClassifyDifficulty(r.String("difficulty")),
		BestFor:           r.String("best_for"),
		ViralPatternsUsed: r.String("viral_patterns_used"),
		Segments: mapRecords(r.Records("segments"), func(s decode.Record) TemplateSegment {
			return TemplateSegment{
				SegmentName: s.String("segment_name"),
				Timing:      s.String("timing"),
				Description: s.String("description"),
				Tips:        s.String("tips"),
			}
		}),
		CTAPlacement:    r.String("cta_placement"),
		TransitionStyle: r.String("transition_style"),
	}
}

// NewVisualBoard reads a decoded image reply. A nil rec yields a board with
// only the rendered images.
func NewVisualBoard(rec decode.Record, images []agent.ArtifactFile) *VisualBoard {
	if images == nil {
		images = []agent.ArtifactFile{}
	}
	return &VisualBoard{
		ThumbnailConcepts: mapRecords(rec.Records("thumbnail_concepts"), func(r decode.Record) ThumbnailConcept {
			return ThumbnailConcept{
				ConceptName:       r.String("concept_name"),
				Description:       r.String("description"),
				ViralPatternsUsed: r.String("viral_patterns_used"),
				TargetNiche:       r.String("target_niche"),
				ImagePrompt:       r.String("image_prompt"),
			}
		}),
		DesignNotes: rec.String("design_notes"),
		Images:      images,
	}
}

// NewScriptBook reads a decoded script reply.
func NewScriptBook(rec decode.Record) *ScriptBook {
	return &ScriptBook{
		Scripts:         mapRecords(rec.Records("scripts"), newVideoScript),
		OverallStrategy: rec.String("overall_strategy"),
	}
}

func newVideoScript(r decode.Record) VideoScript {
	plan := r.Object("production_plan")
	return VideoScript{
		Title:              r.String("title"),
		ViralPotential:     r.String("viral_potential"),
		Potential:          ClassifyPotential(r.String("viral_potential")),
		ViralStylesBlended: r.String("viral_styles_blended"),
		TargetDuration:     r.String("target_duration"),
		Hook:               r.String("hook"),
		ScriptBody: mapRecords(r.Records("script_body"), func(s decode.Record) ScriptSegment {
			return ScriptSegment{
				Timestamp:     s.String("timestamp"),
				Section:       s.String("section"),
				Content:       s.String("content"),
				DeliveryNotes: s.String("delivery_notes"),
			}
		}),
		CTA:   r.String("cta"),
		Outro: r.String("outro"),
		ProductionPlan: ProductionPlan{
			ShotList:         plan.String("shot_list"),
			Equipment:        plan.String("equipment"),
			EditingStyle:     plan.String("editing_style"),
			MusicSuggestions: plan.String("music_suggestions"),
			ThumbnailConcept: plan.String("thumbnail_concept"),
		},
	}
}

func mapRecords[T any](recs []decode.Record, fn func(decode.Record) T) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, fn(r))
	}
	return out
}
