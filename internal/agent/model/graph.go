package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
)

// Intent is the closed set of routes a question can take.
type Intent string

const (
	IntentUnset         Intent = ""
	IntentConversation  Intent = "conversation"
	IntentDatabaseQuery Intent = "database_query"
)

func (i Intent) String() string {
	return string(i)
}

var (
	ErrIntentAlreadySet = errors.New("intent already set")
	ErrAnswerAlreadySet = errors.New("answer already set")
	ErrInvalidIntent    = errors.New("invalid intent")
)

// QueryInput is the single entry operation of the agent.
type QueryInput struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Question       string `json:"question"`
	History        []Turn `json:"history,omitempty"`
}

// Attempt is one generate/execute round of the repair loop.
type Attempt struct {
	Query  string      `json:"query"`
	Result QueryResult `json:"result"`
}

// RunState is the record threaded through one invocation of the graph.
// Fields are only written forward; nothing is rolled back.
type RunState struct {
	RunID          string    `json:"run_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	StartedAt      time.Time `json:"started_at"`

	Question string `json:"question"`
	History  []Turn `json:"history,omitempty"`

	Intent  Intent      `json:"intent"`
	Query   string      `json:"query,omitempty"`
	Result  QueryResult `json:"result"`
	Retries int         `json:"retries"`
	Answer  string      `json:"answer"`

	Attempts     []Attempt `json:"attempts,omitempty"`
	TotalCostUSD float64   `json:"total_cost_usd"`
}

// NewRunState copies the caller's question and history into a fresh run.
func NewRunState(runID string, in QueryInput, now time.Time) *RunState {
	history := make([]Turn, len(in.History))
	copy(history, in.History)
	return &RunState{
		RunID:          runID,
		ConversationID: in.ConversationID,
		StartedAt:      now,
		Question:       in.Question,
		History:        history,
	}
}

// SetIntent records the classification. It may only happen once per run.
func (s *RunState) SetIntent(intent Intent) error {
	if s.Intent != IntentUnset {
		return ErrIntentAlreadySet
	}
	switch intent {
	case IntentConversation, IntentDatabaseQuery:
		s.Intent = intent
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidIntent, intent)
	}
}

// RecordCandidate stores a freshly generated query and counts the attempt.
func (s *RunState) RecordCandidate(query string) {
	s.Query = query
	s.Retries++
}

// RecordResult stores the outcome of executing the current query.
func (s *RunState) RecordResult(result QueryResult) {
	s.Result = result
	s.Attempts = append(s.Attempts, Attempt{Query: s.Query, Result: result})
}

// SetAnswer sets the terminal answer. It may only happen once per run.
func (s *RunState) SetAnswer(answer string) error {
	if s.Answer != "" {
		return ErrAnswerAlreadySet
	}
	s.Answer = answer
	return nil
}

// LastFailure returns the failure text of the previous execution, if any.
func (s *RunState) LastFailure() (string, bool) {
	if !s.Result.IsFailure() {
		return "", false
	}
	return s.Result.String(), true
}

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	Run *RunState // set by the input converter, the same pointer flows through SQL nodes

	// conversation loop scratch
	History              []*schema.Message
	ToolCallCount        int
	ToolCallLimitReached bool
	ToolCallIDSeq        int
}
