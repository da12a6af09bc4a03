package captions

import (
	"regexp"
	"strconv"

	"github.com/vidquote/transcript-engine/internal/domain"
)

// YouTube timed-text XML comes in two shapes: seconds-based
// <text start="1.0" dur="2.0">...</text> and a millisecond variant
// <text t="1000" d="2000">...</text>.
var (
	timedTextRe   = regexp.MustCompile(`(?s)<text[^>]*\bstart="([\d.]+)"[^>]*\bdur="([\d.]+)"[^>]*>(.*?)</text>`)
	timedTextMsRe = regexp.MustCompile(`(?s)<text[^>]*\bt="(\d+)"[^>]*\bd="(\d+)"[^>]*>(.*?)</text>`)
)

// ParseTimedText parses timed-text XML into segments. The millisecond
// variant is tried only when the seconds form yields no matches.
// Total: unparseable input yields an empty list.
func ParseTimedText(text string) []domain.Segment {
	matches := timedTextRe.FindAllStringSubmatch(text, -1)
	scale := 1.0
	if len(matches) == 0 {
		matches = timedTextMsRe.FindAllStringSubmatch(text, -1)
		scale = 0.001
	}
	var res []domain.Segment
	for _, m := range matches {
		start, err1 := strconv.ParseFloat(m[1], 64)
		dur, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		txt := cleanCueText(m[3])
		if txt == "" {
			continue
		}
		res = append(res, domain.Segment{
			Speaker: PlaceholderSpeaker,
			Start:   start * scale,
			End:     (start + dur) * scale,
			Text:    txt,
		})
	}
	return res
}
