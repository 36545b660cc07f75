package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tutuni-ai/backend/internal/chunkstore"
	"github.com/tutuni-ai/backend/internal/completion"
	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/metrics"
	"github.com/tutuni-ai/backend/internal/prompt"
	"github.com/tutuni-ai/backend/internal/quota"
	"github.com/tutuni-ai/backend/internal/usage"
)

// Storage is the slice of the persistence layer the manager uses.
// Implemented by *Store; tests substitute fakes.
type Storage interface {
	GetActiveUser(ctx context.Context, userID int64) (*User, error)
	GetOwnedProject(ctx context.Context, projectID, userID int64) (*Project, error)
	RecentHistory(ctx context.Context, projectID int64, limit int) ([]ChatMessage, error)
	SaveTurn(ctx context.Context, userMsg, aiMsg *ChatMessage) error
	History(ctx context.Context, projectID int64, limit, offset int) (*HistoryPage, error)
	ClearHistory(ctx context.Context, projectID int64) (int64, error)
	Stats(ctx context.Context, projectID int64) (*ProjectStats, error)
	CountProcessedDocuments(ctx context.Context, projectID int64) (int64, error)
}

// Retriever finds the chunks most relevant to a question within one
// project's indexed documents.
type Retriever interface {
	Retrieve(ctx context.Context, projectID int64, question string, k int, minScore float32) ([]chunkstore.ScoredChunk, error)
}

// Assembler turns the question, retrieved context and history into the
// final model prompt.
type Assembler interface {
	Assemble(question string, chunks []chunkstore.ScoredChunk, history []prompt.Message, maxContextChars int) *prompt.Result
}

// UsagePublisher emits usage events for billing and analytics. May be
// absent when no broker is configured.
type UsagePublisher interface {
	Publish(ctx context.Context, ev usage.Event) error
}

// Manager runs the chat turn pipeline and the conversation endpoints.
type Manager struct {
	cfg       Config
	store     Storage
	retriever Retriever
	assembler Assembler
	completer completion.Provider
	quota     quota.Service
	usage     UsagePublisher
	metrics   metrics.Collector
	log       *logger.Logger

	// Indirections for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager wires the turn pipeline. publisher may be nil.
func NewManager(
	cfg Config,
	store Storage,
	retriever Retriever,
	assembler Assembler,
	completer completion.Provider,
	quotaSvc quota.Service,
	publisher UsagePublisher,
	collector metrics.Collector,
	log *logger.Logger,
) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     store,
		retriever: retriever,
		assembler: assembler,
		completer: completer,
		quota:     quotaSvc,
		usage:     publisher,
		metrics:   collector,
		log:       log,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// TurnRequest is one incoming chat message.
type TurnRequest struct {
	ProjectID int64
	UserID    int64
	Content   string

	// Model overrides the configured completion model when set.
	Model string
}

// TurnResult is the outcome of a successful turn. HistorySaved is false
// when the answer was generated but could not be written to the
// conversation log.
type TurnResult struct {
	UserMessage  *ChatMessage `json:"user_message"`
	AIMessage    *ChatMessage `json:"ai_message"`
	HistorySaved bool         `json:"history_saved"`
}

// SendMessage runs one full turn: validate, check quota, retrieve
// context, assemble the prompt, generate the answer, persist both
// messages and account for usage. Once generation has started the turn
// runs to completion even if the caller disconnects, so quota and the
// conversation log stay consistent with what the model produced.
func (m *Manager) SendMessage(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	turnStart := m.now()

	content := strings.TrimSpace(req.Content)
	if err := m.validateContent(content); err != nil {
		return nil, m.fail(ReasonValidation, err)
	}

	user, err := m.store.GetActiveUser(ctx, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return nil, m.fail(ReasonNotFound, err)
		case errors.Is(err, ErrUserInactive):
			return nil, m.fail(ReasonValidation, err)
		default:
			return nil, m.fail(ReasonInternal, err)
		}
	}
	role := quota.Role(user.Role)

	if _, err := m.store.GetOwnedProject(ctx, req.ProjectID, req.UserID); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, m.fail(ReasonNotFound, err)
		}
		return nil, m.fail(ReasonInternal, err)
	}

	if err := m.quota.Check(ctx, req.UserID, role); err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			return nil, m.fail(ReasonQuotaExceeded, err)
		}
		return nil, m.fail(ReasonInternal, err)
	}

	// From here on the turn is detached from the request context: an
	// abandoned HTTP request must not leave a half-finished turn.
	ctx = context.WithoutCancel(ctx)

	history := m.loadHistory(ctx, req.ProjectID)

	retrievalStart := m.now()
	chunks, err := m.retrieveWithRetry(ctx, req.ProjectID, content)
	m.metrics.RecordStageDuration(retrievalStart, "retrieval")
	if err != nil {
		return nil, m.fail(ReasonRetrievalError, err)
	}
	m.metrics.ObserveRetrievedChunks(len(chunks))

	assemblyStart := m.now()
	assembled := m.assembler.Assemble(content, chunks, history, 0)
	m.metrics.RecordStageDuration(assemblyStart, "assembly")

	generationStart := m.now()
	result, err := m.completeWithRetry(ctx, assembled.Prompt, req.Model)
	m.metrics.RecordStageDuration(generationStart, "generation")
	if err != nil {
		return nil, m.fail(reasonForCompletion(err), err)
	}
	m.metrics.AddGenerationTokens(result.TokensUsed)

	processingMS := m.now().Sub(turnStart).Milliseconds()
	userMsg, aiMsg := m.buildTurnMessages(req, content, turnStart, chunks, assembled, result, processingMS)

	persistStart := m.now()
	historySaved := true
	if err := m.store.SaveTurn(ctx, userMsg, aiMsg); err != nil {
		// The answer exists and was paid for upstream; deliver it and
		// flag the log gap instead of discarding the work.
		historySaved = false
		m.log.Error("chat turn generated but not persisted", err, map[string]interface{}{
			"project_id": req.ProjectID,
			"user_id":    req.UserID,
		})
	}
	m.metrics.RecordStageDuration(persistStart, "persistence")

	if err := m.quota.Commit(ctx, req.UserID, role); err != nil {
		// The response is already produced. Refusing it now would charge
		// the upstream without serving the user, so log and move on.
		m.log.Warn("quota commit failed after completed turn", err, map[string]interface{}{
			"user_id": req.UserID,
		})
	}

	m.publishUsage(ctx, req, result, len(chunks), processingMS, aiMsg)
	m.metrics.IncrementTurns("completed")

	return &TurnResult{
		UserMessage:  userMsg,
		AIMessage:    aiMsg,
		HistorySaved: historySaved,
	}, nil
}

func (m *Manager) validateContent(content string) error {
	if content == "" {
		return errors.New("message content is empty")
	}
	if n := len([]rune(content)); n > m.cfg.MaxContentLength {
		return fmt.Errorf("message content is %d characters, limit is %d", n, m.cfg.MaxContentLength)
	}
	return nil
}

// loadHistory fetches the prompt history window. History is context
// enrichment, so a read failure degrades to an empty window rather than
// failing the turn.
func (m *Manager) loadHistory(ctx context.Context, projectID int64) []prompt.Message {
	if m.cfg.HistoryLimit <= 0 {
		return nil
	}
	messages, err := m.store.RecentHistory(ctx, projectID, m.cfg.HistoryLimit)
	if err != nil {
		m.log.Warn("chat history unavailable, answering without it", err, map[string]interface{}{
			"project_id": projectID,
		})
		return nil
	}

	out := make([]prompt.Message, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.IsAIMessage() {
			role = "assistant"
		}
		out = append(out, prompt.Message{Role: role, Content: msg.Content})
	}
	return out
}

func (m *Manager) retrieveWithRetry(ctx context.Context, projectID int64, question string) ([]chunkstore.ScoredChunk, error) {
	var lastErr error
	for attempt := 0; attempt <= m.cfg.RetrievalRetries; attempt++ {
		chunks, err := m.retriever.Retrieve(ctx, projectID, question, m.cfg.TopK, m.cfg.MinScore)
		if err == nil {
			return chunks, nil
		}
		lastErr = err
		m.log.Warn("retrieval attempt failed", err, map[string]interface{}{
			"project_id": projectID,
			"attempt":    attempt + 1,
		})
	}
	return nil, lastErr
}

// completeWithRetry retries rate limited completions with doubling
// backoff. Every other failure is final: the provider already bounded
// the call with its timeout, and retrying a timed out or malformed
// generation only multiplies cost.
func (m *Manager) completeWithRetry(ctx context.Context, promptText, modelID string) (*completion.Result, error) {
	backoff := m.cfg.RateLimitBackoff
	var lastErr error
	for attempt := 0; attempt <= m.cfg.RateLimitRetries; attempt++ {
		result, err := m.completer.Complete(ctx, promptText, modelID)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !errors.Is(err, completion.ErrRateLimited) || attempt == m.cfg.RateLimitRetries {
			return nil, err
		}
		if err := m.sleep(ctx, backoff); err != nil {
			return nil, lastErr
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (m *Manager) buildTurnMessages(
	req TurnRequest,
	content string,
	turnStart time.Time,
	chunks []chunkstore.ScoredChunk,
	assembled *prompt.Result,
	result *completion.Result,
	processingMS int64,
) (*ChatMessage, *ChatMessage) {
	// The user message carries the turn start time and the ai message the
	// completion time, so the question always precedes its answer in the log.
	userMsg := &ChatMessage{
		ProjectID:   req.ProjectID,
		UserID:      req.UserID,
		MessageType: MessageTypeUser,
		Content:     content,
		CreatedAt:   turnStart.UTC(),
	}

	previews := make(ChunkPreviews, 0, len(chunks))
	for _, sc := range chunks {
		previews = append(previews, ChunkPreview{
			DocumentID:      sc.Chunk.DocumentID,
			ChunkText:       previewText(sc.Chunk.Text),
			SimilarityScore: sc.Score,
		})
	}

	confidence := confidenceScore(chunks)
	tokens := result.TokensUsed
	model := result.Model

	aiMsg := &ChatMessage{
		ProjectID:        req.ProjectID,
		UserID:           req.UserID,
		MessageType:      MessageTypeAI,
		Content:          result.Text,
		ContextDocuments: Int64List(assembled.IncludedDocs),
		AIModel:          &model,
		TokensUsed:       &tokens,
		ProcessingTimeMS: &processingMS,
		ConfidenceScore:  &confidence,
		RetrievedChunks:  previews,
		CreatedAt:        m.now().UTC(),
	}
	return userMsg, aiMsg
}

func (m *Manager) publishUsage(ctx context.Context, req TurnRequest, result *completion.Result, retrieved int, processingMS int64, aiMsg *ChatMessage) {
	if m.usage == nil {
		return
	}
	ev := usage.Event{
		UserID:           req.UserID,
		ProjectID:        req.ProjectID,
		Model:            result.Model,
		TokensUsed:       result.TokensUsed,
		RetrievedChunks:  retrieved,
		ProcessingTimeMS: processingMS,
		OccurredAt:       aiMsg.CreatedAt,
	}
	if aiMsg.ConfidenceScore != nil {
		ev.ConfidenceScore = *aiMsg.ConfidenceScore
	}
	if err := m.usage.Publish(ctx, ev); err != nil {
		m.log.Warn("usage event not published", err, map[string]interface{}{
			"user_id": req.UserID,
		})
	}
}

// fail records the terminal status and wraps the cause.
func (m *Manager) fail(reason ReasonCode, err error) error {
	m.metrics.IncrementTurns(string(reason))
	return newTurnError(reason, err)
}

// History returns a page of the project conversation.
func (m *Manager) History(ctx context.Context, projectID, userID int64, limit, offset int) (*HistoryPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := m.store.GetOwnedProject(ctx, projectID, userID); err != nil {
		return nil, m.lookupError(err)
	}
	page, err := m.store.History(ctx, projectID, limit, offset)
	if err != nil {
		return nil, newTurnError(ReasonInternal, err)
	}
	return page, nil
}

// ClearHistory wipes the project conversation and returns the number of
// removed messages.
func (m *Manager) ClearHistory(ctx context.Context, projectID, userID int64) (int64, error) {
	if _, err := m.store.GetOwnedProject(ctx, projectID, userID); err != nil {
		return 0, m.lookupError(err)
	}
	deleted, err := m.store.ClearHistory(ctx, projectID)
	if err != nil {
		return 0, newTurnError(ReasonInternal, err)
	}
	m.log.Info("chat history cleared", nil, map[string]interface{}{
		"project_id": projectID,
		"deleted":    deleted,
	})
	return deleted, nil
}

// StatsReport is the project activity summary served by the API.
type StatsReport struct {
	ProjectStats
	ProcessedDocuments int64 `json:"processed_documents"`
}

// Stats summarizes a project's conversation and indexed content.
func (m *Manager) Stats(ctx context.Context, projectID, userID int64) (*StatsReport, error) {
	if _, err := m.store.GetOwnedProject(ctx, projectID, userID); err != nil {
		return nil, m.lookupError(err)
	}
	stats, err := m.store.Stats(ctx, projectID)
	if err != nil {
		return nil, newTurnError(ReasonInternal, err)
	}
	processed, err := m.store.CountProcessedDocuments(ctx, projectID)
	if err != nil {
		return nil, newTurnError(ReasonInternal, err)
	}
	return &StatsReport{ProjectStats: *stats, ProcessedDocuments: processed}, nil
}

// Usage reports the caller's consumed and allowed daily messages.
func (m *Manager) Usage(ctx context.Context, userID int64) (used, limit int64, err error) {
	user, err := m.store.GetActiveUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return 0, 0, newTurnError(ReasonNotFound, err)
		}
		return 0, 0, newTurnError(ReasonInternal, err)
	}
	used, limit, err = m.quota.Usage(ctx, userID, quota.Role(user.Role))
	if err != nil {
		return 0, 0, newTurnError(ReasonInternal, err)
	}
	return used, limit, nil
}

func (m *Manager) lookupError(err error) error {
	if errors.Is(err, ErrProjectNotFound) {
		return newTurnError(ReasonNotFound, err)
	}
	return newTurnError(ReasonInternal, err)
}

// confidenceScore estimates answer quality from retrieval strength:
// mostly the average similarity, boosted by how full the context was.
func confidenceScore(chunks []chunkstore.ScoredChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range chunks {
		sum += float64(sc.Score)
	}
	avg := sum / float64(len(chunks))

	coverage := float64(len(chunks)) / 5.0
	if coverage > 1 {
		coverage = 1
	}

	score := 0.7*avg + 0.3*coverage
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func reasonForCompletion(err error) ReasonCode {
	switch {
	case errors.Is(err, completion.ErrTimeout):
		return ReasonTimeout
	case errors.Is(err, completion.ErrRateLimited):
		return ReasonRateLimited
	case errors.Is(err, completion.ErrMalformedResponse):
		return ReasonMalformedResponse
	case errors.Is(err, completion.ErrUpstream):
		return ReasonUpstreamError
	default:
		return ReasonInternal
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
