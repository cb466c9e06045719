package viral

import "viralflow-api/pkg/agent"

type (
	// TrendReport is the trend analysis agent's weekly report.
	TrendReport struct {
		ExecutiveSummary string          `json:"executive_summary"`
		TopInsights      []Insight       `json:"top_insights"`
		ViralVideos      []ViralVideo    `json:"viral_videos"`
		StyleAnalysis    StyleAnalysis   `json:"style_analysis"`
		VideoTemplates   []VideoTemplate `json:"video_templates"`
		WeekOverview     string          `json:"week_overview"`
	}

	Insight struct {
		Insight    string `json:"insight"`
		ActionItem string `json:"action_item"`
	}

	ViralVideo struct {
		Title           string `json:"title"`
		Channel         string `json:"channel"`
		Views           string `json:"views"`
		Category        string `json:"category"`
		Topic           string `json:"topic"`
		ViralityReason  string `json:"virality_reason"`
		EngagementNotes string `json:"engagement_notes"`
	}

	StyleAnalysis struct {
		HookPatterns      []HookPattern      `json:"hook_patterns"`
		PacingAnalysis    []PacingItem       `json:"pacing_analysis"`
		TonePatterns      []TonePattern      `json:"tone_patterns"`
		ThumbnailPatterns []ThumbnailPattern `json:"thumbnail_patterns"`
		EngagementTactics []EngagementTactic `json:"engagement_tactics"`
		KeyTakeaways      string             `json:"key_takeaways"`
	}

	HookPattern struct {
		PatternName   string `json:"pattern_name"`
		Description   string `json:"description"`
		Effectiveness string `json:"effectiveness"`
		Example       string `json:"example"`
	}

	PacingItem struct {
		Style       string `json:"style"`
		Description string `json:"description"`
		BestFor     string `json:"best_for"`
	}

	TonePattern struct {
		Tone           string `json:"tone"`
		Description    string `json:"description"`
		UsageFrequency string `json:"usage_frequency"`
	}

	ThumbnailPattern struct {
		Pattern     string `json:"pattern"`
		Description string `json:"description"`
		Impact      string `json:"impact"`
	}

	EngagementTactic struct {
		Tactic        string `json:"tactic"`
		Description   string `json:"description"`
		Effectiveness string `json:"effectiveness"`
	}

	VideoTemplate struct {
		TemplateName      string            `json:"template_name"`
		TargetDuration    string            `json:"target_duration"`
		Difficulty        string            `json:"difficulty"`
		Level             Difficulty        `json:"level" schema:"-"`
		BestFor           string            `json:"best_for"`
		ViralPatternsUsed string            `json:"viral_patterns_used"`
		Segments          []TemplateSegment `json:"segments"`
		CTAPlacement      string            `json:"cta_placement"`
		TransitionStyle   string            `json:"transition_style"`
	}

	TemplateSegment struct {
		SegmentName string `json:"segment_name"`
		Timing      string `json:"timing"`
		Description string `json:"description"`
		Tips        string `json:"tips"`
	}
)

type (
	// VisualBoard is the image agent's thumbnail concepts plus any files it
	// rendered.
	VisualBoard struct {
		ThumbnailConcepts []ThumbnailConcept   `json:"thumbnail_concepts"`
		DesignNotes       string               `json:"design_notes"`
		Images            []agent.ArtifactFile `json:"images" schema:"-"`
	}

	ThumbnailConcept struct {
		ConceptName       string `json:"concept_name"`
		Description       string `json:"description"`
		ViralPatternsUsed string `json:"viral_patterns_used"`
		TargetNiche       string `json:"target_niche"`
		ImagePrompt       string `json:"image_prompt"`
	}
)

type (
	// ScriptBook is the script agent's set of blended scripts.
	ScriptBook struct {
		Scripts         []VideoScript `json:"scripts"`
		OverallStrategy string        `json:"overall_strategy"`
	}

	VideoScript struct {
		Title              string          `json:"title"`
		ViralPotential     string          `json:"viral_potential"`
		Potential          Potential       `json:"potential" schema:"-"`
		ViralStylesBlended string          `json:"viral_styles_blended"`
		TargetDuration     string          `json:"target_duration"`
		Hook               string          `json:"hook"`
		ScriptBody         []ScriptSegment `json:"script_body"`
		CTA                string          `json:"cta"`
		Outro              string          `json:"outro"`
		ProductionPlan     ProductionPlan  `json:"production_plan"`
	}

	ScriptSegment struct {
		Timestamp     string `json:"timestamp"`
		Section       string `json:"section"`
		Content       string `json:"content"`
		DeliveryNotes string `json:"delivery_notes"`
	}

	ProductionPlan struct {
		ShotList         string `json:"shot_list"`
		Equipment        string `json:"equipment"`
		EditingStyle     string `json:"editing_style"`
		MusicSuggestions string `json:"music_suggestions"`
		ThumbnailConcept string `json:"thumbnail_concept"`
	}
)
