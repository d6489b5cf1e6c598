package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/document-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type recordingAnalysisRepo struct {
	mu        sync.Mutex
	summaries map[string]string
	topics    map[string][]string
	updated   chan string
}

func newRecordingAnalysisRepo() *recordingAnalysisRepo {
	return &recordingAnalysisRepo{
		summaries: make(map[string]string),
		topics:    make(map[string][]string),
		updated:   make(chan string, 16),
	}
}

func (r *recordingAnalysisRepo) Create(context.Context, *models.Analysis) error { return nil }
func (r *recordingAnalysisRepo) GetByID(context.Context, string) (*models.Analysis, error) {
	return nil, nil
}
func (r *recordingAnalysisRepo) GetByDocumentID(context.Context, string) (*models.Analysis, error) {
	return nil, nil
}
func (r *recordingAnalysisRepo) ListHistory(context.Context) ([]*models.HistoryEntry, error) {
	return nil, nil
}

func (r *recordingAnalysisRepo) UpdateResult(_ context.Context, id, summary string, keyTopics []string) error {
	r.mu.Lock()
	r.summaries[id] = summary
	r.topics[id] = keyTopics
	r.mu.Unlock()
	r.updated <- id
	return nil
}

func (r *recordingAnalysisRepo) UpdateSummary(_ context.Context, id, summary string) error {
	r.mu.Lock()
	r.summaries[id] = summary
	r.mu.Unlock()
	r.updated <- id
	return nil
}

func (r *recordingAnalysisRepo) summary(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaries[id]
}

type stubAnalyzer struct {
	result *analyzer.Result
	err    error
	block  chan struct{}
}

func (a *stubAnalyzer) AnalyzeDocument(ctx context.Context, _ string) (*analyzer.Result, error) {
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func (a *stubAnalyzer) AnswerQuestion(context.Context, string, string) (string, error) {
	return "", nil
}

func waitForUpdate(t *testing.T, repo *recordingAnalysisRepo) string {
	t.Helper()
	select {
	case id := <-repo.updated:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for analysis update")
		return ""
	}
}

func TestRunnerSuccess(t *testing.T) {
	repo := newRecordingAnalysisRepo()
	stub := &stubAnalyzer{result: &analyzer.Result{Summary: "done", KeyTopics: []string{"t1"}}}

	runner := NewRunner(repo, stub, utils.NewLogger("error"), nil, 4, time.Minute)
	runner.Start(1)
	defer runner.Shutdown(context.Background())

	require.NoError(t, runner.Enqueue(Job{AnalysisID: "a1", DocumentID: "d1", DocumentText: "text", EnqueuedAt: time.Now()}))

	assert.Equal(t, "a1", waitForUpdate(t, repo))
	assert.Equal(t, "done", repo.summary("a1"))
	assert.Equal(t, []string{"t1"}, repo.topics["a1"])
}

func TestRunnerFailureWritesTerminalSummary(t *testing.T) {
	repo := newRecordingAnalysisRepo()
	stub := &stubAnalyzer{err: errors.New("model exploded")}

	runner := NewRunner(repo, stub, utils.NewLogger("error"), nil, 4, time.Minute)
	runner.Start(1)
	defer runner.Shutdown(context.Background())

	require.NoError(t, runner.Enqueue(Job{AnalysisID: "a2", DocumentID: "d2", DocumentText: "text", EnqueuedAt: time.Now()}))

	waitForUpdate(t, repo)
	summary := repo.summary("a2")
	assert.True(t, strings.HasPrefix(summary, models.AnalysisFailedPrefix), "summary %q should carry failure prefix", summary)
	assert.Contains(t, summary, "model exploded")
}

func TestRunnerTimeout(t *testing.T) {
	repo := newRecordingAnalysisRepo()
	stub := &stubAnalyzer{block: make(chan struct{})} // never unblocks

	runner := NewRunner(repo, stub, utils.NewLogger("error"), nil, 4, 50*time.Millisecond)
	runner.Start(1)
	defer runner.Shutdown(context.Background())

	require.NoError(t, runner.Enqueue(Job{AnalysisID: "a3", DocumentText: "text", EnqueuedAt: time.Now()}))

	waitForUpdate(t, repo)
	assert.Contains(t, repo.summary("a3"), models.AnalysisFailedPrefix)
}

func TestRunnerQueueFull(t *testing.T) {
	repo := newRecordingAnalysisRepo()
	stub := &stubAnalyzer{block: make(chan struct{})}

	runner := NewRunner(repo, stub, utils.NewLogger("error"), nil, 1, time.Minute)
	// No workers started: the single buffered slot fills immediately.

	require.NoError(t, runner.Enqueue(Job{AnalysisID: "q1"}))
	err := runner.Enqueue(Job{AnalysisID: "q2"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunnerShutdownDrains(t *testing.T) {
	repo := newRecordingAnalysisRepo()
	stub := &stubAnalyzer{result: &analyzer.Result{Summary: "ok", KeyTopics: []string{}}}

	runner := NewRunner(repo, stub, utils.NewLogger("error"), nil, 8, time.Minute)
	runner.Start(2)

	for i := 0; i < 5; i++ {
		require.NoError(t, runner.Enqueue(Job{AnalysisID: "drain", DocumentText: "text", EnqueuedAt: time.Now()}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(ctx))

	// All five jobs reached a terminal write before shutdown returned.
	assert.Len(t, repo.updated, 5)

	assert.ErrorIs(t, runner.Enqueue(Job{AnalysisID: "late"}), ErrShuttingDown)
}
