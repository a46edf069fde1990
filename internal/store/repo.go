package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key or event does not exist.
var ErrNotFound = errors.New("store: not found")

// KV is a string key/value store. Values are opaque JSON documents owned by
// the caller.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageByPurpose aggregates LLM calls by purpose.
type LLMUsageByPurpose struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMUsageByModel aggregates LLM calls by model.
type LLMUsageByModel struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Session event actions.
const (
	ActionStart    = "start"
	ActionEnd      = "end"
	ActionAbandon  = "abandon"
	ActionMastered = "mastered"
)

// SessionEventData captures a lifecycle transition of a study session.
type SessionEventData struct {
	SessionID    string
	Action       string
	Mode         string
	Topic        string
	Score        int
	Total        int
	Percentage   int
	DurationSecs int
	TimedOut     bool
	Mastered     bool
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// TopicStats summarizes finished sessions for one topic.
type TopicStats struct {
	Topic       string
	Sessions    int
	BestPercent int
	Mastered    bool
}

// EventRepo provides append and query access to events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single LLM request event by ID, or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates LLM usage by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageByPurpose, error)

	// LLMUsageByModel aggregates LLM usage by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsageByModel, error)

	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// SessionStats summarizes ended sessions per topic.
	SessionStats(ctx context.Context) ([]TopicStats, error)
}
