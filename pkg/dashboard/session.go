package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/llm"
	"viralflow-api/pkg/prompt"
	"viralflow-api/pkg/viral"
)

// Step is the wizard position.
type Step string

const (
	StepDashboard Step = "dashboard"
	StepResults   Step = "results"
)

// Tab is the selected results tab.
type Tab string

const (
	TabOverview Tab = "overview"
	TabVisuals  Tab = "visuals"
	TabScripts  Tab = "scripts"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabOverview, TabVisuals, TabScripts:
		return t, nil
	default:
		return "", fmt.Errorf("dashboard: unknown tab %q", s)
	}
}

// User-visible messages.
const (
	MsgTrendUnparseable   = "Could not parse trend analysis response. Please try again."
	MsgScriptUnparseable  = "Could not parse script response. Please try again."
	MsgVisualsUnparseable = "Could not parse visuals response. Please try again."
	MsgTrendFailed        = "Failed to analyze trends. Please try again."
	MsgVisualsFailed      = "Failed to generate visuals. Please try again."
	MsgScriptsFailed      = "Failed to generate scripts. Please try again."
	MsgUnexpected         = "An unexpected error occurred."
)

var (
	// ErrNoTrendData is returned by follow-up steps when no trend report is displayed.
	ErrNoTrendData = errors.New("dashboard: no trend report to build on")
	// ErrSuperseded is returned when a newer request of the same purpose
	// started before this one finished. Its result was discarded.
	ErrSuperseded = errors.New("dashboard: superseded by a newer request")
)

// RunError is a failed step whose message was shown to the user.
type RunError struct {
	Purpose agent.Purpose
	Message string
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("dashboard: %s: %s", e.Purpose, e.Message)
}

func (e *RunError) Unwrap() error { return e.Err }

// Loading flags one in-flight request per purpose.
type Loading struct {
	Trend   bool `json:"trend"`
	Visuals bool `json:"visuals"`
	Scripts bool `json:"scripts"`
}

func (l *Loading) set(p agent.Purpose, v bool) {
	switch p {
	case agent.TrendAnalysis:
		l.Trend = v
	case agent.ImageGeneration:
		l.Visuals = v
	case agent.ScriptGeneration:
		l.Scripts = v
	}
}

func (l Loading) get(p agent.Purpose) bool {
	switch p {
	case agent.TrendAnalysis:
		return l.Trend
	case agent.ImageGeneration:
		return l.Visuals
	case agent.ScriptGeneration:
		return l.Scripts
	}
	return false
}

// AgentStatus describes one configured agent.
type AgentStatus struct {
	Purpose string `json:"purpose"`
	AgentID string `json:"agent_id"`
	Active  bool   `json:"active"`
}

// Snapshot is the displayed state. Reports are shared, never modified.
type Snapshot struct {
	Step          Step               `json:"step"`
	SampleMode    bool               `json:"sample_mode"`
	Loading       Loading            `json:"loading"`
	Trend         *viral.TrendReport `json:"trend"`
	Visuals       *viral.VisualBoard `json:"visuals"`
	Scripts       *viral.ScriptBook  `json:"scripts"`
	Error         string             `json:"error,omitempty"`
	ActiveAgentID string             `json:"active_agent_id,omitempty"`
	Tab           Tab                `json:"tab"`
	Agents        []AgentStatus      `json:"agents"`
}

type state struct {
	step          Step
	sampleMode    bool
	loading       Loading
	trend         *viral.TrendReport
	visuals       *viral.VisualBoard
	scripts       *viral.ScriptBook
	err           string
	activeAgentID string
	tab           Tab
}

func initialState() state {
	return state{step: StepDashboard, tab: TabOverview}
}

// Session is one user's dashboard. Safe for concurrent use.
type Session struct {
	invoker  agent.Invoker
	registry *agent.Registry
	prompts  *prompt.Catalog
	recorder RunRecorder
	metrics  Metrics
	logger   llm.Logger
	samples  viral.Samples
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	state state
	good  *state
	gens  map[agent.Purpose]uint64
}

// Option customises Session construction.
type Option func(*Session)

// WithRecorder sets the run recorder.
func WithRecorder(r RunRecorder) Option {
	return func(s *Session) {
		if r == nil {
			s.recorder = noopRecorder{}
			return
		}
		s.recorder = r
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Session) {
		if m == nil {
			s.metrics = noopMetrics{}
			return
		}
		s.metrics = m
	}
}

// WithLogger sets the session logger.
func WithLogger(l llm.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithPrompts replaces the built-in prompt catalog.
func WithPrompts(c *prompt.Catalog) Option {
	return func(s *Session) {
		s.prompts = c
	}
}

// WithSamples replaces the embedded sample data.
func WithSamples(samples viral.Samples) Option {
	return func(s *Session) {
		s.samples = samples
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithIDs overrides run id generation.
func WithIDs(gen func() string) Option {
	return func(s *Session) {
		s.newID = gen
	}
}

// NewSession builds a session that reaches agents through invoker.
func NewSession(invoker agent.Invoker, registry *agent.Registry, opts ...Option) (*Session, error) {
	if invoker == nil {
		return nil, errors.New("dashboard: invoker cannot be nil")
	}
	if registry == nil {
		return nil, errors.New("dashboard: registry cannot be nil")
	}
	s := &Session{
		invoker:  invoker,
		registry: registry,
		recorder: noopRecorder{},
		metrics:  noopMetrics{},
		now:      time.Now,
		newID:    uuid.NewString,
		state:    initialState(),
		gens:     make(map[agent.Purpose]uint64, 3),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = llm.NewLogger("")
	}
	if s.prompts == nil {
		catalog, err := LoadPrompts("")
		if err != nil {
			return nil, err
		}
		s.prompts = catalog
	}
	if s.samples.Trend == nil {
		samples, err := viral.LoadSamples()
		if err != nil {
			return nil, err
		}
		s.samples = samples
	}
	return s, nil
}

// Snapshot returns the displayed state: sample data in sample mode,
// otherwise the last successful results.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	st := s.state
	snap := Snapshot{
		Step:          st.step,
		SampleMode:    st.sampleMode,
		Loading:       st.loading,
		Trend:         st.trend,
		Visuals:       st.visuals,
		Scripts:       st.scripts,
		Error:         st.err,
		ActiveAgentID: st.activeAgentID,
		Tab:           st.tab,
	}
	if st.sampleMode {
		snap.Trend = s.samples.Trend
		snap.Visuals = s.samples.Visuals
		snap.Scripts = s.samples.Scripts
	}
	for _, p := range agent.Purposes() {
		id, _ := s.registry.Lookup(p)
		snap.Agents = append(snap.Agents, AgentStatus{
			Purpose: p.String(),
			AgentID: id,
			Active:  st.loading.get(p),
		})
	}
	return snap
}

// SetSampleMode toggles sample data. Turning it on jumps to the results.
func (s *Session) SetSampleMode(enabled bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.sampleMode = enabled
	if enabled {
		s.state.step = StepResults
	}
	return s.snapshotLocked()
}

// DismissError clears the user-visible error.
func (s *Session) DismissError() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.err = ""
	return s.snapshotLocked()
}

// SetTab selects a results tab.
func (s *Session) SetTab(tab Tab) (Snapshot, error) {
	if _, err := ParseTab(string(tab)); err != nil {
		return s.Snapshot(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.tab = tab
	return s.snapshotLocked(), nil
}

// Reset returns the session to its initial state. In-flight results are
// discarded when they arrive.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.gens {
		s.gens[p]++
	}
	s.state = initialState()
	s.good = nil
	return s.snapshotLocked()
}
