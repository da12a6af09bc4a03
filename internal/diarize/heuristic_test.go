package diarize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidquote/transcript-engine/internal/domain"
)

func interviewSegments() []domain.Segment {
	return []domain.Segment{
		{Speaker: "Speaker 1", Start: 0, End: 2, Text: "What do you think about the product?"},
		{Speaker: "Speaker 1", Start: 4, End: 6, Text: "I think it is a great product."},
		{Speaker: "Speaker 1", Start: 8, End: 10, Text: "How did you build it?"},
		{Speaker: "Speaker 1", Start: 12, End: 14, Text: "I believe the team did well."},
	}
}

func TestDiarize_TwoSpeakers(t *testing.T) {
	d := NewHeuristic()
	got := d.Diarize(context.Background(), interviewSegments())
	require.Len(t, got, 4)

	labels := map[string]bool{}
	for _, s := range got {
		labels[s.Speaker] = true
	}
	assert.Len(t, labels, 2, "expected exactly 2 distinct labels, got %v", labels)
	assert.Equal(t, got[0].Speaker, got[2].Speaker)
	assert.Equal(t, got[1].Speaker, got[3].Speaker)
	assert.NotEqual(t, got[0].Speaker, got[1].Speaker)
}

func TestDiarize_Deterministic(t *testing.T) {
	d := NewHeuristic()
	a := d.Diarize(context.Background(), interviewSegments())
	b := d.Diarize(context.Background(), interviewSegments())
	assert.Equal(t, a, b)
}

func TestDiarize_KeepsOrderAndTimes(t *testing.T) {
	d := NewHeuristic()
	in := interviewSegments()
	got := d.Diarize(context.Background(), in)
	require.Len(t, got, len(in))
	for i := range in {
		assert.Equal(t, in[i].Start, got[i].Start)
		assert.Equal(t, in[i].End, got[i].End)
		assert.Equal(t, in[i].Text, got[i].Text)
	}
}

func TestDiarize_QuestionAnswerShortGap(t *testing.T) {
	d := NewHeuristic()
	segs := []domain.Segment{
		{Start: 0, End: 2, Text: "Why is the sky blue?"},
		{Start: 3, End: 5, Text: "It has to do with scattering."},
	}
	got := d.Diarize(context.Background(), segs)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].Speaker, got[1].Speaker, "question followed by statement after a pause is a turn")
}

func TestDiarize_NoTurnOnSmallGap(t *testing.T) {
	d := NewHeuristic()
	segs := []domain.Segment{
		{Start: 0, End: 2, Text: "Why is the sky blue?"},
		{Start: 2.1, End: 4, Text: "It has to do with scattering."},
	}
	got := d.Diarize(context.Background(), segs)
	assert.Equal(t, got[0].Speaker, got[1].Speaker)
}

func TestDiarize_HostPriority(t *testing.T) {
	d := NewHeuristic()
	segs := []domain.Segment{
		{Start: 0, End: 3, Text: "Welcome to the show, can you explain your work?"},
	}
	got := d.Diarize(context.Background(), segs)
	assert.Equal(t, LabelHost, got[0].Speaker)
}

func TestDiarize_GenericMonologue(t *testing.T) {
	d := NewHeuristic()
	segs := []domain.Segment{
		{Start: 0, End: 2, Text: "the team kept working on the release"},
		{Start: 2, End: 4, Text: "the rollout finished a week later"},
	}
	got := d.Diarize(context.Background(), segs)
	assert.Equal(t, LabelGeneric, got[0].Speaker)
	assert.Equal(t, LabelGeneric, got[1].Speaker)
}

func TestDiarize_Empty(t *testing.T) {
	d := NewHeuristic()
	assert.Empty(t, d.Diarize(context.Background(), nil))
}
