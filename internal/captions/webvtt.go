package captions

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vidquote/transcript-engine/internal/domain"
)

// PlaceholderSpeaker is assigned to every parsed cue. Captions carry no
// diarization info, the diarizer rewrites labels afterwards.
const PlaceholderSpeaker = "Speaker 1"

var (
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	cueNumRe = regexp.MustCompile(`^\d+$`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

func cleanCueText(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)
	return strings.TrimSpace(s)
}

// ParseWebVTT parses WEBVTT caption text into segments. It is total:
// unparseable input yields an empty list, never an error.
func ParseWebVTT(text string) []domain.Segment {
	var res []domain.Segment
	var cur *domain.Segment
	var parts []string

	flush := func() {
		if cur == nil {
			return
		}
		txt := strings.Join(parts, " ")
		if txt != "" {
			cur.Text = txt
			res = append(res, *cur)
		}
		cur, parts = nil, nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if strings.Contains(trimmed, "-->") {
			flush()
			start, end, ok := parseCueTiming(trimmed)
			if !ok {
				continue
			}
			cur = &domain.Segment{Speaker: PlaceholderSpeaker, Start: start, End: end}
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		if cur == nil {
			continue
		}
		if strings.HasPrefix(trimmed, "WEBVTT") || cueNumRe.MatchString(trimmed) ||
			strings.Contains(trimmed, "align:") || strings.Contains(trimmed, "position:") {
			continue
		}
		if t := cleanCueText(trimmed); t != "" {
			parts = append(parts, t)
		}
	}
	flush()
	return res
}

func parseCueTiming(line string) (float64, float64, bool) {
	pieces := strings.SplitN(line, "-->", 2)
	if len(pieces) != 2 {
		return 0, 0, false
	}
	startFields := strings.Fields(pieces[0])
	endFields := strings.Fields(pieces[1])
	if len(startFields) == 0 || len(endFields) == 0 {
		return 0, 0, false
	}
	start, okS := ParseTimestamp(startFields[0])
	end, okE := ParseTimestamp(endFields[0])
	if !okS || !okE {
		return 0, 0, false
	}
	return start, end, true
}

// ParseTimestamp parses "[[HH:]MM:]SS[.mmm]" into seconds. Both '.' and ','
// are accepted as the decimal separator. Missing hour/minute fields
// default to zero.
func ParseTimestamp(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var secs float64
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		secs = secs*60 + v
	}
	return secs, true
}
