package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
)

// Cleaner collapses whitespace, strips stray leading/trailing punctuation
// and makes sure non-empty text ends with a sentence terminator.
type Cleaner struct {
}

// NewCleaner creates a text cleaner
func NewCleaner() *Cleaner {
	res := Cleaner{}
	goapp.Log.Info().Msg("Cleaner")
	return &res
}

var (
	spaceRe        = regexp.MustCompile(`\s+`)
	leadingPunctRe = regexp.MustCompile("^[\\s,.;:!?\\-–'\"]+")
	// Sentence terminators survive at the end, stray punctuation does not.
	trailingPunctRe = regexp.MustCompile("[\\s,;:\\-–'\"]+$")
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
)

func (sp *Cleaner) Process(ctx context.Context, text string) string {
	text = spaceRe.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = leadingPunctRe.ReplaceAllString(text, "")
	text = trailingPunctRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}
