package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// Segment is a time-bounded span of transcript text attributed to one speaker.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Word is an optional finer-grained timeline entry.
type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Speaker maps a diarizer-assigned label to an editable display name.
// OriginalName is the join key for renames done outside this service.
type Speaker struct {
	OriginalName string `json:"originalName"`
	CustomName   string `json:"customName"`
}

// Transcript is the only shape that crosses the service boundary.
type Transcript struct {
	SourceID string    `json:"sourceId"`
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words,omitempty"`
	Speakers []Speaker `json:"speakers,omitempty"`
}

var videoIDRe = regexp.MustCompile(`(?:v=|youtu\.be/|/embed/|/shorts/|/live/)([A-Za-z0-9_-]{11})`)
var bareIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-char video id out of a YouTube URL.
// A bare id is accepted as is.
func ExtractVideoID(url string) (string, error) {
	if bareIDRe.MatchString(url) {
		return url, nil
	}
	m := videoIDRe.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", fmt.Errorf("no video id in '%s'", url)
	}
	return m[1], nil
}

// RosterFromSegments derives the speaker roster from the distinct labels
// in segment order of first appearance. CustomName starts equal to the label.
func RosterFromSegments(segments []Segment) []Speaker {
	seen := map[string]bool{}
	var res []Speaker
	for _, s := range segments {
		if s.Speaker == "" || seen[s.Speaker] {
			continue
		}
		seen[s.Speaker] = true
		res = append(res, Speaker{OriginalName: s.Speaker, CustomName: s.Speaker})
	}
	return res
}

// FilterWords keeps only the words that fall within some segment's time
// span. Cleanup may drop segments, the word timeline has to stay
// consistent with what is left.
func FilterWords(words []Word, segments []Segment) []Word {
	if len(words) == 0 {
		return nil
	}
	var res []Word
	for _, w := range words {
		for _, s := range segments {
			if w.Start >= s.Start && w.End <= s.End {
				res = append(res, w)
				break
			}
		}
	}
	return res
}

// SortSegments orders segments by start time, keeping input order for ties.
func SortSegments(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
}

// SortWords orders words by start time, keeping input order for ties.
func SortWords(words []Word) {
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })
}

// Validate checks the transcript invariants: non-empty segments,
// start <= end per segment, non-decreasing segment starts.
func (t *Transcript) Validate() error {
	if len(t.Segments) == 0 {
		return fmt.Errorf("no segments")
	}
	prev := -1.0
	for i, s := range t.Segments {
		if s.Start > s.End {
			return fmt.Errorf("segment %d: start %.3f > end %.3f", i, s.Start, s.End)
		}
		if s.Start < prev {
			return fmt.Errorf("segment %d: out of order", i)
		}
		prev = s.Start
	}
	return nil
}
