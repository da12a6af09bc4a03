package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidquote/transcript-engine/internal/db"
	"github.com/vidquote/transcript-engine/internal/diarize"
	"github.com/vidquote/transcript-engine/internal/domain"
	"github.com/vidquote/transcript-engine/internal/progress"
	"github.com/vidquote/transcript-engine/internal/transcribe"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakeStrategy struct {
	name      string
	available bool
	res       *transcribe.Result
	err       error
	calls     int
}

func (sp *fakeStrategy) Name() string    { return sp.name }
func (sp *fakeStrategy) Available() bool { return sp.available }

func (sp *fakeStrategy) Attempt(ctx context.Context, job *Job) (*transcribe.Result, error) {
	sp.calls++
	return sp.res, sp.err
}

func segments(texts ...string) []domain.Segment {
	var res []domain.Segment
	for i, txt := range texts {
		res = append(res, domain.Segment{Speaker: "Speaker 1",
			Start: float64(i * 2), End: float64(i*2 + 2), Text: txt})
	}
	return res
}

func newTestEngine(t *testing.T, strategies ...Strategy) (*Engine, *db.MemoryStore, *progress.MemTracker) {
	t.Helper()
	store := db.NewMemoryStore()
	tracker := progress.NewMemTracker()
	e, err := NewEngine(strategies, diarize.Noop{}, store, tracker)
	require.NoError(t, err)
	return e, store, tracker
}

func TestEngine_Fallthrough(t *testing.T) {
	s1 := &fakeStrategy{name: "one", available: true}
	s2 := &fakeStrategy{name: "two", available: true, err: errors.New("boom")}
	s3 := &fakeStrategy{name: "three", available: true,
		res: &transcribe.Result{Segments: segments("I think this is the answer")}}
	s4 := &fakeStrategy{name: "four", available: true,
		res: &transcribe.Result{Segments: segments("never used")}}
	e, _, _ := newTestEngine(t, s1, s2, s3, s4)

	tr, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	assert.Equal(t, "I think this is the answer.", tr.Segments[0].Text)
	assert.Equal(t, 1, s1.calls)
	assert.Equal(t, 1, s2.calls)
	assert.Equal(t, 1, s3.calls)
	assert.Equal(t, 0, s4.calls, "strategies after the successful one must not run")
}

func TestEngine_SkipsUnavailable(t *testing.T) {
	s1 := &fakeStrategy{name: "one", available: false,
		res: &transcribe.Result{Segments: segments("never used")}}
	s2 := &fakeStrategy{name: "two", available: true,
		res: &transcribe.Result{Segments: segments("the second method answers")}}
	e, _, _ := newTestEngine(t, s1, s2)

	_, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	assert.Equal(t, 0, s1.calls)
	assert.Equal(t, 1, s2.calls)
}

func TestEngine_EmptyAfterCleanupAdvances(t *testing.T) {
	s1 := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{Segments: segments("uh um", "you know")}}
	s2 := &fakeStrategy{name: "two", available: true,
		res: &transcribe.Result{Segments: segments("the second method answers")}}
	e, _, _ := newTestEngine(t, s1, s2)

	tr, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	assert.Equal(t, 1, s2.calls)
	assert.Equal(t, "the second method answers.", tr.Segments[0].Text)
}

func TestEngine_CanonicalShapeAndPersistence(t *testing.T) {
	s := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{
			Segments: segments("the first line", "the second line"),
			Words:    []domain.Word{{Text: "the", Start: 0, End: 0.3, Confidence: 0.8}},
		}}
	e, store, tracker := newTestEngine(t, s)

	tr, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	assert.Equal(t, "job1", tr.SourceID)
	require.Len(t, tr.Speakers, 1)
	assert.Equal(t, "Speaker 1", tr.Speakers[0].OriginalName)
	assert.Len(t, tr.Words, 1)

	stored, err := store.Load(context.Background(), "job1")
	require.NoError(t, err)
	assert.Equal(t, tr, stored)

	p, ok := tracker.GetProgress("job1")
	assert.True(t, ok)
	assert.Equal(t, 100, p)
}

type failStore struct{}

func (failStore) Save(ctx context.Context, tr *domain.Transcript) error {
	return errors.New("db down")
}

func (failStore) Load(ctx context.Context, sourceID string) (*domain.Transcript, error) {
	return nil, db.ErrNotFound
}

func TestEngine_SaveFailureClearsProgress(t *testing.T) {
	s := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{Segments: segments("the answer")}}
	tracker := progress.NewMemTracker()
	e, err := NewEngine([]Strategy{s}, diarize.Noop{}, failStore{}, tracker)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), "job1", testURL)
	require.Error(t, err)
	_, ok := tracker.GetProgress("job1")
	assert.False(t, ok, "progress entry must not outlive a failed save")
}

func TestEngine_WordsFollowDroppedSegments(t *testing.T) {
	s := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{
			Segments: []domain.Segment{
				{Speaker: "Speaker 1", Start: 0, End: 2, Text: "uh um"},
				{Speaker: "Speaker 1", Start: 2, End: 4, Text: "I think this works"},
			},
			Words: []domain.Word{
				{Text: "uh", Start: 0.2, End: 0.5},
				{Text: "think", Start: 2.5, End: 2.9},
			},
		}}
	e, _, _ := newTestEngine(t, s)

	tr, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	require.Len(t, tr.Segments, 1)
	require.Len(t, tr.Words, 1, "words of dropped segments must go with them")
	assert.Equal(t, "think", tr.Words[0].Text)
}

func TestEngine_ProgressExpiresAfterSuccess(t *testing.T) {
	s := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{Segments: segments("the answer")}}
	e, _, tracker := newTestEngine(t, s)
	e.retention = 10 * time.Millisecond

	_, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	p, ok := tracker.GetProgress("job1")
	require.True(t, ok)
	assert.Equal(t, 100, p)

	assert.Eventually(t, func() bool {
		_, ok := tracker.GetProgress("job1")
		return !ok
	}, time.Second, 10*time.Millisecond, "completed entry should expire")
}

func TestEngine_AllFail(t *testing.T) {
	s1 := &fakeStrategy{name: "one", available: true}
	s2 := &fakeStrategy{name: "two", available: true, err: errors.New("boom")}
	e, _, tracker := newTestEngine(t, s1, s2)

	_, err := e.Run(context.Background(), "job1", testURL)
	require.ErrorIs(t, err, ErrAllStrategiesFailed)
	_, ok := tracker.GetProgress("job1")
	assert.False(t, ok, "progress entry must be cleared on terminal failure")
}

func TestEngine_BadURL(t *testing.T) {
	s := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{Segments: segments("never used")}}
	e, _, _ := newTestEngine(t, s)

	_, err := e.Run(context.Background(), "job1", "not a video link")
	require.Error(t, err)
	assert.Equal(t, 0, s.calls)
}

func TestEngine_ContextCanceled(t *testing.T) {
	s := &fakeStrategy{name: "one", available: true,
		res: &transcribe.Result{Segments: segments("never used")}}
	e, _, tracker := newTestEngine(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx, "job1", testURL)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.calls)
	_, ok := tracker.GetProgress("job1")
	assert.False(t, ok, "progress entry must be cleared on cancellation")
}

func TestSynthetic_SurvivesCleanup(t *testing.T) {
	e, store, _ := newTestEngine(t, NewSyntheticStrategy())

	tr, err := e.Run(context.Background(), "job1", testURL)
	require.NoError(t, err)
	require.NotEmpty(t, tr.Segments)
	for _, s := range tr.Segments {
		assert.NotEmpty(t, s.Text)
	}
	_, err = store.Load(context.Background(), "job1")
	assert.NoError(t, err)
}
