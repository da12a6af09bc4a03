package handlers

import (
	"context"
	"regexp"

	"github.com/airenas/go-app/pkg/goapp"
)

// FillerRemover drops spoken filler words and phrases. It runs after the
// number rewriter: some filler tokens ("well", "so") overlap number phrases.
type FillerRemover struct {
}

// NewFillerRemover creates a filler word remover
func NewFillerRemover() *FillerRemover {
	res := &FillerRemover{}
	goapp.Log.Info().Msg("FillerRemover")
	return res
}

// Multi-word phrases go first so the alternation prefers them over
// their single-word prefixes.
var fillerRe = regexp.MustCompile(`(?i)\b(you know|i mean|sort of|kind of|you see|and then|and stuff|and things|uh|um|ah|er|hmm|like|basically|actually|literally|well|so|whatever)\b,?`)

var tagQuestionRe = regexp.MustCompile(`(?i)\b(right|okay)\?`)

func (sp *FillerRemover) Process(ctx context.Context, text string) string {
	text = fillerRe.ReplaceAllString(text, "")
	text = tagQuestionRe.ReplaceAllString(text, "")
	return text
}
