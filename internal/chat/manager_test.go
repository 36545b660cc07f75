package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tutuni-ai/backend/internal/chunkstore"
	"github.com/tutuni-ai/backend/internal/completion"
	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/metrics"
	"github.com/tutuni-ai/backend/internal/prompt"
	"github.com/tutuni-ai/backend/internal/quota"
	"github.com/tutuni-ai/backend/internal/usage"
)

// fakeStorage is an in-memory Storage with injectable failures.
type fakeStorage struct {
	user    *User
	project *Project
	recent  []ChatMessage

	recentErr error
	saveErr   error

	savedUser *ChatMessage
	savedAI   *ChatMessage

	historyPage  *HistoryPage
	clearedCount int64
	stats        *ProjectStats
	processed    int64
	processedErr error
}

func (f *fakeStorage) GetActiveUser(_ context.Context, userID int64) (*User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, ErrUserNotFound
	}
	if !f.user.IsActive {
		return nil, ErrUserInactive
	}
	return f.user, nil
}

func (f *fakeStorage) GetOwnedProject(_ context.Context, projectID, userID int64) (*Project, error) {
	if f.project == nil || f.project.ID != projectID || f.project.OwnerID != userID {
		return nil, ErrProjectNotFound
	}
	return f.project, nil
}

func (f *fakeStorage) RecentHistory(_ context.Context, _ int64, limit int) ([]ChatMessage, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.recent) > limit {
		return f.recent[len(f.recent)-limit:], nil
	}
	return f.recent, nil
}

func (f *fakeStorage) SaveTurn(_ context.Context, userMsg, aiMsg *ChatMessage) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedUser = userMsg
	f.savedAI = aiMsg
	return nil
}

func (f *fakeStorage) History(_ context.Context, _ int64, _, _ int) (*HistoryPage, error) {
	return f.historyPage, nil
}

func (f *fakeStorage) ClearHistory(_ context.Context, _ int64) (int64, error) {
	return f.clearedCount, nil
}

func (f *fakeStorage) Stats(_ context.Context, _ int64) (*ProjectStats, error) {
	return f.stats, nil
}

func (f *fakeStorage) CountProcessedDocuments(_ context.Context, _ int64) (int64, error) {
	return f.processed, f.processedErr
}

type fakeRetriever struct {
	chunks []chunkstore.ScoredChunk
	errs   []error // consumed per call, nil entries succeed
	calls  int

	gotProjectID int64
	gotK         int
	gotMinScore  float32
}

func (f *fakeRetriever) Retrieve(_ context.Context, projectID int64, _ string, k int, minScore float32) ([]chunkstore.ScoredChunk, error) {
	f.calls++
	f.gotProjectID = projectID
	f.gotK = k
	f.gotMinScore = minScore
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.chunks, nil
}

type fakeQuota struct {
	checkErr  error
	commitErr error

	checks  int
	commits int
}

func (f *fakeQuota) Check(context.Context, int64, quota.Role) error {
	f.checks++
	return f.checkErr
}

func (f *fakeQuota) Commit(context.Context, int64, quota.Role) error {
	f.commits++
	return f.commitErr
}

func (f *fakeQuota) Usage(context.Context, int64, quota.Role) (int64, int64, error) {
	return 3, 50, nil
}

type fakePublisher struct {
	events []usage.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev usage.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type turnFixture struct {
	manager   *Manager
	store     *fakeStorage
	retriever *fakeRetriever
	quota     *fakeQuota
	publisher *fakePublisher
	completer *completion.MockProvider
	slept     []time.Duration
}

func newTurnFixture(t *testing.T) *turnFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &turnFixture{
		store: &fakeStorage{
			user:    &User{ID: 7, Role: "free", IsActive: true},
			project: &Project{ID: 42, OwnerID: 7},
		},
		retriever: &fakeRetriever{chunks: scoredChunks(0.8, 0.6)},
		quota:     &fakeQuota{},
		publisher: &fakePublisher{},
		completer: completion.NewMockProvider(ctrl),
	}

	f.manager = NewManager(
		DefaultConfig(),
		f.store,
		f.retriever,
		prompt.NewAssembler(&prompt.Config{MaxContextChars: 6000, HistoryPairs: 5}),
		f.completer,
		f.quota,
		f.publisher,
		metrics.Nop{},
		logger.NewNop(),
	)
	f.manager.sleep = func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	// Stepping clock: every read advances 25ms, so stage durations and
	// message timestamps are deterministic.
	clock := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f.manager.now = func() time.Time {
		clock = clock.Add(25 * time.Millisecond)
		return clock
	}
	return f
}

func scoredChunks(scores ...float32) []chunkstore.ScoredChunk {
	out := make([]chunkstore.ScoredChunk, 0, len(scores))
	for i, score := range scores {
		out = append(out, chunkstore.ScoredChunk{
			Chunk: chunkstore.DocumentChunk{
				DocumentID: int64(10 + i),
				ChunkIndex: i,
				ProjectID:  42,
				Text:       "contenuto del capitolo numero " + strings.Repeat("x", i+1),
				Processed:  true,
			},
			Score: score,
		})
	}
	return out
}

func okResult() *completion.Result {
	return &completion.Result{
		Text:       "La tesi centrale del documento è questa.",
		Model:      "gpt-4o-mini",
		TokensUsed: 120,
		LatencyMS:  350,
	}
}

func sendReq() TurnRequest {
	return TurnRequest{ProjectID: 42, UserID: 7, Content: "Qual è la tesi centrale?"}
}

func TestSendMessageHappyPath(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	res, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
	require.True(t, res.HistorySaved)

	// Both messages persisted together.
	require.NotNil(t, f.store.savedUser)
	require.NotNil(t, f.store.savedAI)
	assert.Equal(t, MessageTypeUser, f.store.savedUser.MessageType)
	assert.Equal(t, "Qual è la tesi centrale?", f.store.savedUser.Content)
	assert.Equal(t, MessageTypeAI, f.store.savedAI.MessageType)
	assert.Equal(t, "La tesi centrale del documento è questa.", f.store.savedAI.Content)

	// AI metadata.
	require.NotNil(t, f.store.savedAI.AIModel)
	assert.Equal(t, "gpt-4o-mini", *f.store.savedAI.AIModel)
	require.NotNil(t, f.store.savedAI.TokensUsed)
	assert.Equal(t, 120, *f.store.savedAI.TokensUsed)
	assert.Equal(t, Int64List{10, 11}, f.store.savedAI.ContextDocuments)
	require.Len(t, f.store.savedAI.RetrievedChunks, 2)
	assert.InDelta(t, 0.8, f.store.savedAI.RetrievedChunks[0].SimilarityScore, 1e-6)

	// The question precedes its answer in the log: the user message is
	// stamped at turn start, the ai message at completion.
	assert.True(t, f.store.savedUser.CreatedAt.Before(f.store.savedAI.CreatedAt))

	// Quota checked before work, committed once after.
	assert.Equal(t, 1, f.quota.checks)
	assert.Equal(t, 1, f.quota.commits)

	// Usage event keyed to this turn.
	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, int64(42), ev.ProjectID)
	assert.Equal(t, 120, ev.TokensUsed)
	assert.Equal(t, 2, ev.RetrievedChunks)
}

func TestSendMessageValidation(t *testing.T) {
	f := newTurnFixture(t)

	cases := map[string]string{
		"empty":      "",
		"whitespace": "   \n\t ",
		"too long":   strings.Repeat("a", 2001),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			req := sendReq()
			req.Content = content
			_, err := f.manager.SendMessage(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, ReasonValidation, ReasonOf(err))
		})
	}

	// Nothing downstream ran and no quota moved.
	assert.Zero(t, f.retriever.calls)
	assert.Zero(t, f.quota.checks)
	assert.Zero(t, f.quota.commits)
	assert.Nil(t, f.store.savedUser)
}

func TestSendMessageExactLimitAccepted(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	req := sendReq()
	req.Content = strings.Repeat("è", 2000) // rune count, not byte count
	_, err := f.manager.SendMessage(context.Background(), req)
	require.NoError(t, err)
}

func TestSendMessageUnknownProject(t *testing.T) {
	f := newTurnFixture(t)

	req := sendReq()
	req.ProjectID = 999
	_, err := f.manager.SendMessage(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
	assert.Zero(t, f.quota.commits)
}

func TestSendMessageForeignProjectLooksMissing(t *testing.T) {
	f := newTurnFixture(t)
	f.store.project.OwnerID = 8 // someone else's project

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
}

func TestSendMessageInactiveUser(t *testing.T) {
	f := newTurnFixture(t)
	f.store.user.IsActive = false

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonValidation, ReasonOf(err))
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestSendMessageQuotaExceeded(t *testing.T) {
	f := newTurnFixture(t)
	f.quota.checkErr = quota.ErrQuotaExceeded

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonQuotaExceeded, ReasonOf(err))

	// The refused turn never reached retrieval or generation.
	assert.Zero(t, f.retriever.calls)
	assert.Zero(t, f.quota.commits)
	assert.Nil(t, f.store.savedUser)
}

func TestSendMessageRetrievalRetriedOnce(t *testing.T) {
	f := newTurnFixture(t)
	f.retriever.errs = []error{errors.New("qdrant hiccup"), nil}
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
	assert.Equal(t, 2, f.retriever.calls)
}

func TestSendMessageRetrievalFailureAfterRetry(t *testing.T) {
	f := newTurnFixture(t)
	f.retriever.errs = []error{errors.New("down"), errors.New("still down")}

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonRetrievalError, ReasonOf(err))
	assert.Equal(t, 2, f.retriever.calls)

	// Failed turns consume no quota and leave no messages.
	assert.Zero(t, f.quota.commits)
	assert.Nil(t, f.store.savedUser)
	assert.Nil(t, f.store.savedAI)
}

func TestSendMessageCompletionTimeout(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").
		Return(nil, completion.ErrTimeout)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonTimeout, ReasonOf(err))

	// A timed out generation is not retried, billed or persisted.
	assert.Zero(t, f.quota.commits)
	assert.Nil(t, f.store.savedAI)
	assert.Empty(t, f.publisher.events)
}

func TestSendMessageRateLimitRetriedWithBackoff(t *testing.T) {
	f := newTurnFixture(t)
	gomock.InOrder(
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(nil, completion.ErrRateLimited),
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(nil, completion.ErrRateLimited),
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil),
	)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.slept)
}

func TestSendMessageRateLimitExhausted(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").
		Return(nil, completion.ErrRateLimited).
		Times(3)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonRateLimited, ReasonOf(err))
	assert.Zero(t, f.quota.commits)
}

func TestSendMessageUpstreamErrorNotRetried(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").
		Return(nil, completion.ErrUpstream).
		Times(1)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.Error(t, err)
	assert.Equal(t, ReasonUpstreamError, ReasonOf(err))
}

func TestSendMessagePersistenceFailureDegrades(t *testing.T) {
	f := newTurnFixture(t)
	f.store.saveErr = errors.New("connection reset")
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	res, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)

	// The answer is delivered, the gap is flagged, quota still moves.
	assert.False(t, res.HistorySaved)
	assert.Equal(t, "La tesi centrale del documento è questa.", res.AIMessage.Content)
	assert.Equal(t, 1, f.quota.commits)
}

func TestSendMessagePublisherFailureIsNotFatal(t *testing.T) {
	f := newTurnFixture(t)
	f.publisher.err = errors.New("broker unreachable")
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	res, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
	assert.True(t, res.HistorySaved)
}

func TestSendMessageWithoutPublisher(t *testing.T) {
	f := newTurnFixture(t)
	f.manager.usage = nil
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
}

func TestSendMessageSurvivesCanceledRequestContext(t *testing.T) {
	f := newTurnFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").
		DoAndReturn(func(callCtx context.Context, _, _ string) (*completion.Result, error) {
			cancel()
			// The detached turn context must outlive the request.
			require.NoError(t, callCtx.Err())
			return okResult(), nil
		})

	res, err := f.manager.SendMessage(ctx, sendReq())
	require.NoError(t, err)
	assert.True(t, res.HistorySaved)
}

func TestSendMessageHistoryFailureDegrades(t *testing.T) {
	f := newTurnFixture(t)
	f.store.recentErr = errors.New("replica lag")
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
}

func TestSendMessageHistoryReachesPrompt(t *testing.T) {
	f := newTurnFixture(t)
	f.store.recent = []ChatMessage{
		{MessageType: MessageTypeUser, Content: "prima domanda"},
		{MessageType: MessageTypeAI, Content: "prima risposta"},
	}

	var seenPrompt string
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").
		DoAndReturn(func(_ context.Context, p, _ string) (*completion.Result, error) {
			seenPrompt = p
			return okResult(), nil
		})

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
	assert.Contains(t, seenPrompt, "user: prima domanda")
	assert.Contains(t, seenPrompt, "assistant: prima risposta")
}

func TestSendMessageRetrieverParameters(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "").Return(okResult(), nil)

	_, err := f.manager.SendMessage(context.Background(), sendReq())
	require.NoError(t, err)
	assert.Equal(t, int64(42), f.retriever.gotProjectID)
	assert.Equal(t, 5, f.retriever.gotK)
	assert.Equal(t, float32(0), f.retriever.gotMinScore)
}

func TestSendMessageModelOverride(t *testing.T) {
	f := newTurnFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), "deepseek-r1").
		Return(&completion.Result{Text: "ok", Model: "deepseek-r1", TokensUsed: 5}, nil)

	req := sendReq()
	req.Model = "deepseek-r1"
	res, err := f.manager.SendMessage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-r1", *res.AIMessage.AIModel)
}

func TestConfidenceScore(t *testing.T) {
	assert.Zero(t, confidenceScore(nil))

	// One strong chunk: 0.7*0.9 + 0.3*(1/5).
	one := confidenceScore(scoredChunks(0.9))
	assert.InDelta(t, 0.69, one, 1e-6)

	// Five perfect chunks saturate at 1.
	full := confidenceScore(scoredChunks(1, 1, 1, 1, 1))
	assert.InDelta(t, 1.0, full, 1e-6)

	// More chunks never push coverage past 1.
	many := confidenceScore(scoredChunks(1, 1, 1, 1, 1, 1, 1))
	assert.LessOrEqual(t, many, 1.0)
}

func TestSuggestedQuestions(t *testing.T) {
	f := newTurnFixture(t)

	t.Run("empty project", func(t *testing.T) {
		f.store.processed = 0
		qs, err := f.manager.SuggestedQuestions(context.Background(), 42, 7)
		require.NoError(t, err)
		require.Len(t, qs, 5)
		assert.Equal(t, "Quali sono i concetti chiave in questo documento?", qs[0])
	})

	t.Run("project with documents", func(t *testing.T) {
		f.store.processed = 3
		qs, err := f.manager.SuggestedQuestions(context.Background(), 42, 7)
		require.NoError(t, err)
		require.Len(t, qs, 6)
		assert.Equal(t, "Analizza la tesi centrale dei documenti caricati", qs[0])
	})

	t.Run("count failure falls back", func(t *testing.T) {
		f.store.processedErr = errors.New("db down")
		defer func() { f.store.processedErr = nil }()
		qs, err := f.manager.SuggestedQuestions(context.Background(), 42, 7)
		require.NoError(t, err)
		require.Len(t, qs, 3)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := f.manager.SuggestedQuestions(context.Background(), 999, 7)
		require.Error(t, err)
		assert.Equal(t, ReasonNotFound, ReasonOf(err))
	})
}

func TestHistoryEndpointOwnership(t *testing.T) {
	f := newTurnFixture(t)
	f.store.historyPage = &HistoryPage{TotalCount: 2, Messages: []ChatMessage{{}, {}}}

	page, err := f.manager.History(context.Background(), 42, 7, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)

	_, err = f.manager.History(context.Background(), 42, 99, 50, 0)
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
}

func TestClearHistory(t *testing.T) {
	f := newTurnFixture(t)
	f.store.clearedCount = 12

	deleted, err := f.manager.ClearHistory(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), deleted)
}

func TestStatsIncludesDocuments(t *testing.T) {
	f := newTurnFixture(t)
	f.store.stats = &ProjectStats{TotalMessages: 10, UserMessages: 5, AIMessages: 5, TotalTokensUsed: 900}
	f.store.processed = 2

	report, err := f.manager.Stats(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(10), report.TotalMessages)
	assert.Equal(t, int64(900), report.TotalTokensUsed)
	assert.Equal(t, int64(2), report.ProcessedDocuments)
}

func TestUsageEndpoint(t *testing.T) {
	f := newTurnFixture(t)

	used, limit, err := f.manager.Usage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), used)
	assert.Equal(t, int64(50), limit)

	_, _, err = f.manager.Usage(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, ReasonNotFound, ReasonOf(err))
}
