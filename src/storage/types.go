package storage

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is an entry of the live log.
type Message struct {
	ID        string    `json:"id" db:"id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// ArchivedMessage is a message moved out of the live log when its session closed.
type ArchivedMessage struct {
	Message
	SessionID  *string   `json:"session_id" db:"session_id"`
	ArchivedAt time.Time `json:"archived_at" db:"archived_at"`
}

// SessionConfig is the configuration snapshot fixed when a session starts.
type SessionConfig struct {
	Provider        string `json:"provider" db:"provider"`
	Model           string `json:"model" db:"model"`
	ContextMessages int    `json:"context_messages" db:"context_messages"`
}

type Session struct {
	ID            string     `json:"id" db:"id"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	EndedAt       *time.Time `json:"ended_at" db:"ended_at"`
	Note          string     `json:"note" db:"note"`
	SessionConfig `json:"config_snapshot"`
}

// Active reports whether the session is still open.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// SessionSummary is a session annotated with its message count.
type SessionSummary struct {
	Session
	MessageCount int64 `json:"message_count" db:"message_count"`
	IsActive     bool  `json:"is_active" db:"-"`
}

// EndedSession describes the session closed by a transition.
type EndedSession struct {
	ID           string    `json:"id"`
	MessageCount int64     `json:"message_count"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
}

// SearchHit is a message from either the live log or the archive.
type SearchHit struct {
	ID         string     `json:"id" db:"id"`
	Role       string     `json:"role" db:"role"`
	Content    string     `json:"content" db:"content"`
	Timestamp  time.Time  `json:"timestamp" db:"timestamp"`
	SessionID  *string    `json:"session_id" db:"session_id"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	Source     string     `json:"source" db:"source"`
}

// SearchFilter narrows a message search. Empty fields match everything.
type SearchFilter struct {
	Role  string
	Query string
}

type MessageStats struct {
	TotalMessages     int64      `json:"total_messages"`
	UserMessages      int64      `json:"user_messages"`
	AssistantMessages int64      `json:"assistant_messages"`
	MessagesToday     int64      `json:"messages_today"`
	FirstMessageAt    *time.Time `json:"first_message_at"`
	LastMessageAt     *time.Time `json:"last_message_at"`
}

// Trace is one recorded inference call.
type Trace struct {
	ID               string       `json:"id" db:"id"`
	Timestamp        time.Time    `json:"timestamp" db:"timestamp"`
	Provider         string       `json:"provider" db:"provider"`
	Model            string       `json:"model" db:"model"`
	SystemPrompt     *string      `json:"system_prompt" db:"system_prompt"`
	ContextMessages  ChatMessages `json:"context_messages" db:"context_messages"`
	TriggerMessage   *ChatMessage `json:"trigger_message" db:"trigger_message"`
	RawMessagesIn    ChatMessages `json:"raw_messages_in" db:"raw_messages_in"`
	ResponseOut      string       `json:"response_out" db:"response_out"`
	LatencyMs        float64      `json:"latency_ms" db:"latency_ms"`
	PromptTokens     *int64       `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens *int64       `json:"completion_tokens" db:"completion_tokens"`
	RatingScore      *int         `json:"rating_score" db:"rating_score"`
	RatingNote       *string      `json:"rating_note" db:"rating_note"`
	SessionID        *string      `json:"session_id" db:"session_id"`
}

// TraceRating is the rating currently attached to a trace.
type TraceRating struct {
	TraceID string  `json:"trace_id"`
	Score   int     `json:"score"`
	Note    *string `json:"note"`
}

// Rollup is the hourly aggregate for one (provider, model) pair.
type Rollup struct {
	PeriodStart           time.Time `json:"period_start" db:"period_start"`
	Provider              string    `json:"provider" db:"provider"`
	Model                 string    `json:"model" db:"model"`
	CallCount             int64     `json:"call_count" db:"call_count"`
	AvgLatencyMs          float64   `json:"avg_latency_ms" db:"avg_latency_ms"`
	TotalPromptTokens     int64     `json:"total_prompt_tokens" db:"total_prompt_tokens"`
	TotalCompletionTokens int64     `json:"total_completion_tokens" db:"total_completion_tokens"`
}

type PerformanceStats struct {
	TotalCalls            int64                    `json:"total_calls" db:"total_calls"`
	AvgLatencyMs          float64                  `json:"avg_latency_ms" db:"avg_latency_ms"`
	AvgTokensPerSec       *float64                 `json:"avg_tokens_per_sec" db:"avg_tokens_per_sec"`
	TotalPromptTokens     int64                    `json:"total_prompt_tokens" db:"total_prompt_tokens"`
	TotalCompletionTokens int64                    `json:"total_completion_tokens" db:"total_completion_tokens"`
	AvgRating             *float64                 `json:"avg_rating" db:"avg_rating"`
	ByProvider            map[string]ProviderStats `json:"by_provider" db:"-"`
}

type ProviderStats struct {
	Calls        int64    `json:"calls" db:"calls"`
	AvgLatencyMs float64  `json:"avg_latency_ms" db:"avg_latency_ms"`
	AvgRating    *float64 `json:"avg_rating" db:"avg_rating"`
}

type BenchRun struct {
	ID              string     `json:"id" db:"id"`
	ScenarioID      string     `json:"scenario_id" db:"scenario_id"`
	Title           string     `json:"title" db:"title"`
	Provider        string     `json:"provider" db:"provider"`
	Model           string     `json:"model" db:"model"`
	ContextMessages int        `json:"context_messages" db:"context_messages"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	EndedAt         *time.Time `json:"ended_at" db:"ended_at"`
	Notes           string     `json:"notes" db:"notes"`
	Summary         JSONObject `json:"summary" db:"summary"`
}

type BenchTurn struct {
	RunID     string  `json:"run_id" db:"run_id"`
	Idx       int     `json:"idx" db:"idx"`
	Role      string  `json:"role" db:"role"`
	Content   string  `json:"content" db:"content"`
	Response  string  `json:"response" db:"response"`
	LatencyMs float64 `json:"latency_ms" db:"latency_ms"`
	TraceID   *string `json:"trace_id" db:"trace_id"`
}

type BenchProbe struct {
	RunID     string     `json:"run_id" db:"run_id"`
	Idx       int        `json:"idx" db:"idx"`
	ProbeID   string     `json:"probe_id" db:"probe_id"`
	ProbeType string     `json:"probe_type" db:"probe_type"`
	Question  string     `json:"question" db:"question"`
	Expected  JSONObject `json:"expected" db:"expected"`
	Response  string     `json:"response" db:"response"`
	Score     float64    `json:"score" db:"score"`
	Metrics   JSONObject `json:"metrics" db:"metrics"`
}

type BenchScore struct {
	RunID  string  `json:"run_id" db:"run_id"`
	Metric string  `json:"metric" db:"metric"`
	Value  float64 `json:"value" db:"value"`
}

// BenchRunDetail is a run with everything recorded against it.
type BenchRunDetail struct {
	BenchRun
	Turns  []BenchTurn        `json:"turns"`
	Probes []BenchProbe       `json:"probes"`
	Scores map[string]float64 `json:"scores"`
}

// BenchSummaryRow is one score joined with its run.
type BenchSummaryRow struct {
	RunID      string    `json:"run_id" db:"run_id"`
	ScenarioID string    `json:"scenario_id" db:"scenario_id"`
	Provider   string    `json:"provider" db:"provider"`
	Model      string    `json:"model" db:"model"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	Metric     string    `json:"metric" db:"metric"`
	Value      float64   `json:"value" db:"value"`
}
