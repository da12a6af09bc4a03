package diarize

import (
	"context"
	"regexp"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vidquote/transcript-engine/internal/domain"
)

// Speaker labels assigned by the heuristic.
const (
	LabelHost        = "Host"
	LabelInterviewer = "Interviewer"
	LabelGuest       = "Guest"
	LabelPresenter   = "Presenter"
	LabelNarrator    = "Narrator"
	LabelGeneric     = "Speaker"
)

// Heuristic is a two-pass text-only diarizer for interview-style content.
// Pass one classifies each segment from lexical cues, pass two walks the
// timeline and switches the active speaker on pause plus cue evidence.
// Best effort: stable and deterministic, not ground truth.
type Heuristic struct {
}

// NewHeuristic creates a text-cue diarizer
func NewHeuristic() *Heuristic {
	res := &Heuristic{}
	goapp.Log.Info().Msg("Diarizer")
	return res
}

var (
	hostRe = regexp.MustCompile(`\b(welcome to|welcome back|today we have|my guest|joining me|joining us|thanks for watching|don't forget to subscribe)\b`)

	interviewerRe = regexp.MustCompile(`\b(tell me about|tell us about|can you explain|could you walk|what do you think|how did you|why did you|let's start with)\b`)

	intervieweeRe = regexp.MustCompile(`\b(thanks for having me|thank you for having me|great question|good question|in my experience|when i started|i think|i believe)\b`)

	presenterRe = regexp.MustCompile(`\b(in this video|in today's video|let me show you|as you can see|let's take a look|next up)\b`)

	narratorRe = regexp.MustCompile(`\b(meanwhile|later that|in this episode|our story|little did)\b`)

	questionStartRe = regexp.MustCompile(`^(what|why|how|when|where|who|which|do|does|did|can|could|would|should|is|are|was|were)\b`)

	statementStartRe = regexp.MustCompile(`^(i|we|my|our|it|this|that|these|those|yes|no|so i)\b`)
)

func isQuestion(lower string) bool {
	return strings.Contains(lower, "?") || questionStartRe.MatchString(lower)
}

func isStatement(lower string) bool {
	return strings.Contains(lower, ".") || statementStartRe.MatchString(lower)
}

// classify maps a segment text to a speaker type. First match wins in
// fixed priority order: host, interviewer-or-question, interviewee,
// presenter, narrator.
func classify(text string) string {
	lower := strings.ToLower(text)
	switch {
	case hostRe.MatchString(lower):
		return LabelHost
	case interviewerRe.MatchString(lower) || isQuestion(lower):
		return LabelInterviewer
	case intervieweeRe.MatchString(lower):
		return LabelGuest
	case presenterRe.MatchString(lower):
		return LabelPresenter
	case narratorRe.MatchString(lower):
		return LabelNarrator
	}
	return LabelGeneric
}

// Gap thresholds for a speaker turn, in seconds.
const (
	turnGap         = 1.5
	questionTurnGap = 0.8
)

// Diarize rewrites speaker labels, keeping segment count and order.
func (sp *Heuristic) Diarize(ctx context.Context, segments []domain.Segment) []domain.Segment {
	if len(segments) == 0 {
		return segments
	}
	types := make([]string, len(segments))
	for i, s := range segments {
		types[i] = classify(s.Text)
	}

	res := make([]domain.Segment, len(segments))
	copy(res, segments)

	counts := map[string]int{}
	var used []string // label order of first use, for deterministic ties
	useLabel := func(l string) {
		if counts[l] == 0 {
			used = append(used, l)
		}
		counts[l]++
	}

	cur := types[0]
	res[0].Speaker = cur
	useLabel(cur)

	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		prevLower := strings.ToLower(segments[i-1].Text)
		curLower := strings.ToLower(segments[i].Text)

		change := gap > turnGap && types[i] != cur
		if !change && gap > questionTurnGap && isQuestion(prevLower) && isStatement(curLower) {
			change = true
		}

		if change {
			if types[i] != LabelGeneric {
				cur = types[i]
			} else {
				cur = pickOther(cur, counts, used)
			}
		}
		res[i].Speaker = cur
		useLabel(cur)
	}
	return res
}

// pickOther returns the most used label differing from cur, or alternates
// between Host and Guest when no other label has been seen yet.
func pickOther(cur string, counts map[string]int, used []string) string {
	best, bestN := "", 0
	for _, l := range used {
		if l != cur && counts[l] > bestN {
			best, bestN = l, counts[l]
		}
	}
	if best != "" {
		return best
	}
	if cur == LabelHost {
		return LabelGuest
	}
	return LabelHost
}
