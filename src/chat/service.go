package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/elee1766/chatledger/src/aisdk"
	"github.com/elee1766/chatledger/src/ledger"
	"github.com/elee1766/chatledger/src/storage"
)

// ClientSource returns a chat client for a provider name
type ClientSource interface {
	Client(provider string) (aisdk.ChatClient, error)
}

// ClientSourceFunc adapts a function to ClientSource
type ClientSourceFunc func(provider string) (aisdk.ChatClient, error)

// Client implements ClientSource.
func (f ClientSourceFunc) Client(provider string) (aisdk.ChatClient, error) {
	return f(provider)
}

// Defaults apply when no session is active
type Defaults struct {
	Provider        string
	Model           string
	ContextMessages int
	SystemPrompt    string
}

// Reply is the assistant turn written for a chat message
type Reply struct {
	ID        string    `json:"id"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id,omitempty"`
}

// Service handles chat turns with all necessary dependencies
type Service struct {
	ledger   *ledger.Ledger
	clients  ClientSource
	defaults Defaults
	logger   *slog.Logger

	// keeps each user/assistant pair adjacent in the live log
	appendMu sync.Mutex
}

// ServiceConfig holds configuration for creating a new Service
type ServiceConfig struct {
	Ledger   *ledger.Ledger
	Clients  ClientSource
	Defaults Defaults
	Logger   *slog.Logger
}

// NewService creates a new chat service
func NewService(config ServiceConfig) *Service {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Defaults.ContextMessages < 0 {
		config.Defaults.ContextMessages = 0
	}
	return &Service{
		ledger:   config.Ledger,
		clients:  config.Clients,
		defaults: config.Defaults,
		logger:   config.Logger.With("component", "chat"),
	}
}

// Defaults returns the configuration used when no session is active
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// Send answers one user message using the active session's configuration.
// Provider failures leave the ledger untouched; a trace that fails to record
// is logged and the reply still succeeds.
//
// The session is resolved before the provider call. If a transition lands
// during the call, the trace keeps the session that configured it while the
// two turns are appended to the new session's live log; this is logged.
func (s *Service) Send(ctx context.Context, content string) (*Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	logger := s.logger.With("method", "Send")

	session, err := s.ledger.ActiveSession(ctx)
	if err != nil {
		return nil, err
	}
	provider, model, contextMessages := s.defaults.Provider, s.defaults.Model, s.defaults.ContextMessages
	var sessionID *string
	if session != nil {
		provider, model, contextMessages = session.Provider, session.Model, session.ContextMessages
		sessionID = &session.ID
	}

	client, err := s.clients.Client(provider)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrNoClient, provider, err)
	}

	history, err := s.ledger.ContextWindow(ctx, contextMessages)
	if err != nil {
		return nil, err
	}

	rawIn := make([]*aisdk.Message, 0, len(history)+2)
	if s.defaults.SystemPrompt != "" {
		rawIn = append(rawIn, &aisdk.Message{Role: aisdk.RoleSystem, Content: s.defaults.SystemPrompt})
	}
	contextOut := make(storage.ChatMessages, 0, len(history))
	for _, m := range history {
		rawIn = append(rawIn, &aisdk.Message{Role: m.Role, Content: m.Content})
		contextOut = append(contextOut, storage.ChatMessage{Role: m.Role, Content: m.Content})
	}
	trigger := storage.ChatMessage{Role: storage.RoleUser, Content: content}
	rawIn = append(rawIn, &aisdk.Message{Role: trigger.Role, Content: trigger.Content})

	logger.Debug("calling provider", "provider", provider, "model", model, "context", len(history))
	started := time.Now()
	resp, err := client.CreateChatCompletion(ctx, &aisdk.ChatCompletionRequest{Model: model, Messages: rawIn})
	latency := time.Since(started)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Model: model, Err: err}
	}
	answer := resp.Content()

	traceID := s.recordTrace(ctx, logger, ledger.TraceInput{
		Provider:         provider,
		Model:            model,
		RawMessagesIn:    toChatMessages(rawIn),
		ResponseOut:      answer,
		LatencyMs:        float64(latency.Microseconds()) / 1000,
		SystemPrompt:     optional(s.defaults.SystemPrompt),
		ContextMessages:  nonEmpty(contextOut),
		TriggerMessage:   &trigger,
		SessionID:        sessionID,
		PromptTokens:     usageField(resp.Usage, func(u *aisdk.Usage) int { return u.PromptTokens }),
		CompletionTokens: usageField(resp.Usage, func(u *aisdk.Usage) int { return u.CompletionTokens }),
	})

	s.appendMu.Lock()
	defer s.appendMu.Unlock()
	s.warnOnTransition(ctx, logger, sessionID, traceID)
	if _, err := s.ledger.AppendMessage(ctx, storage.RoleUser, content); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}
	reply, err := s.ledger.AppendMessage(ctx, storage.RoleAssistant, answer)
	if err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	return &Reply{
		ID:        reply.ID,
		Response:  answer,
		Timestamp: reply.Timestamp,
		TraceID:   traceID,
	}, nil
}

func (s *Service) warnOnTransition(ctx context.Context, logger *slog.Logger, resolved *string, traceID string) {
	current, ok, err := s.ledger.ActiveSessionID(ctx)
	if err != nil {
		logger.Warn("failed to re-read active session", "error", err)
		return
	}
	var was string
	if resolved != nil {
		was = *resolved
	}
	if !ok {
		current = ""
	}
	if current != was {
		logger.Warn("session changed during provider call",
			"trace_id", traceID, "trace_session_id", was, "session_id", current)
	}
}

func (s *Service) recordTrace(ctx context.Context, logger *slog.Logger, input ledger.TraceInput) string {
	traceID, err := s.ledger.RecordTrace(ctx, input)
	if err != nil {
		logger.Error("failed to record trace", "provider", input.Provider, "model", input.Model, "error", err)
		return ""
	}
	return traceID
}

func toChatMessages(messages []*aisdk.Message) storage.ChatMessages {
	out := make(storage.ChatMessages, 0, len(messages))
	for _, m := range messages {
		out = append(out, storage.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func nonEmpty(messages storage.ChatMessages) storage.ChatMessages {
	if len(messages) == 0 {
		return nil
	}
	return messages
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func usageField(usage *aisdk.Usage, field func(*aisdk.Usage) int) *int64 {
	if usage == nil {
		return nil
	}
	v := int64(field(usage))
	return &v
}
