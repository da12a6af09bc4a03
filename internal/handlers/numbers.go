package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
)

// NumberRewriter translates spoken number and magnitude phrases into
// compact notation: "fifty percent" -> "50%", "over 100" -> ">100",
// "three billion" -> "3B". Substitution order matters, see rules below.
type NumberRewriter struct {
}

// NewNumberRewriter creates a spoken-number rewriter
func NewNumberRewriter() *NumberRewriter {
	res := &NumberRewriter{}
	goapp.Log.Info().Msg("NumberRewriter")
	return res
}

type subRule struct {
	re   *regexp.Regexp
	repl string
}

var wordDigits = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"eleven": "11", "twelve": "12", "thirteen": "13", "fourteen": "14",
	"fifteen": "15", "sixteen": "16", "seventeen": "17", "eighteen": "18",
	"nineteen": "19", "twenty": "20", "thirty": "30", "forty": "40",
	"fifty": "50", "sixty": "60", "seventy": "70", "eighty": "80",
	"ninety": "90",
}

// cardinalRe matches a number word plus an optional magnitude word. The
// magnitude capture guards against mangling phrases like "one hundred".
var cardinalRe = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety)\b( hundred)?`)

var ordinalRules = []subRule{
	{regexp.MustCompile(`(?i)\bfirst\b`), "1st"},
	{regexp.MustCompile(`(?i)\bsecond\b`), "2nd"},
	{regexp.MustCompile(`(?i)\bthird\b`), "3rd"},
	{regexp.MustCompile(`(?i)\bfourth\b`), "4th"},
	{regexp.MustCompile(`(?i)\bfifth\b`), "5th"},
	{regexp.MustCompile(`(?i)\bsixth\b`), "6th"},
	{regexp.MustCompile(`(?i)\bseventh\b`), "7th"},
	{regexp.MustCompile(`(?i)\beighth\b`), "8th"},
	{regexp.MustCompile(`(?i)\bninth\b`), "9th"},
	{regexp.MustCompile(`(?i)\btenth\b`), "10th"},
}

var numberRules = []subRule{
	{regexp.MustCompile(`\$ (\d)`), "$$$1"},
	{regexp.MustCompile(`(?i)\$(\d+(?:\.\d+)?[KMB]?) per (month|year|week|day|hour)`), "$$$1/$2"},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?) percent\b`), "$1%"},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?) billion\b`), "${1}B"},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?) million\b`), "${1}M"},
	{regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?) thousand\b`), "${1}K"},
	{regexp.MustCompile(`(?i)\b(\d+)[ -]fold\b`), "${1}x"},
	{regexp.MustCompile(`(?i)\bdoubled\b`), "2x"},
	{regexp.MustCompile(`(?i)\btripled\b`), "3x"},
	{regexp.MustCompile(`(?i)\bquadrupled\b`), "4x"},
	{regexp.MustCompile(`(?i)\bover (\d)`), ">$1"},
	{regexp.MustCompile(`(?i)\b(?:approximately|about|around|roughly) (\d)`), "∼$1"},
}

func (sp *NumberRewriter) Process(ctx context.Context, text string) string {
	for _, r := range ordinalRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	text = cardinalRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := cardinalRe.FindStringSubmatch(m)
		if parts[2] != "" {
			return m
		}
		return wordDigits[strings.ToLower(parts[1])]
	})
	for _, r := range numberRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}
