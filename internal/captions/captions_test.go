package captions

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want float64
		ok   bool
	}{
		{name: "full", s: "01:02:03.500", want: 3723.5, ok: true},
		{name: "minutes", s: "02:03.500", want: 123.5, ok: true},
		{name: "seconds only", s: "03.500", want: 3.5, ok: true},
		{name: "comma separator", s: "00:00:01,250", want: 1.25, ok: true},
		{name: "no millis", s: "00:01:00", want: 60, ok: true},
		{name: "garbage", s: "abc", ok: false},
		{name: "too many parts", s: "1:2:3:4", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.s)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.s, ok, tt.ok)
			}
			if ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestParseWebVTT(t *testing.T) {
	vtt := `WEBVTT
Kind: captions

1
00:00:01.000 --> 00:00:03.000 align:start position:0%
Hello <c>world</c>

2
00:00:03.000 --> 00:00:05,500
it&#39;s &lt;fine&gt; &amp; good
second line`

	segs := ParseWebVTT(vtt)
	require.Len(t, segs, 2)
	assert.InDelta(t, 1.0, segs[0].Start, 0.0001)
	assert.InDelta(t, 3.0, segs[0].End, 0.0001)
	assert.Equal(t, "Hello world", segs[0].Text)
	assert.Equal(t, PlaceholderSpeaker, segs[0].Speaker)
	assert.InDelta(t, 3.0, segs[1].Start, 0.0001)
	assert.InDelta(t, 5.5, segs[1].End, 0.0001)
	assert.Equal(t, "it's <fine> & good second line", segs[1].Text)
}

func TestParseWebVTT_RoundTrip(t *testing.T) {
	const n = 10
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for i := 0; i < n; i++ {
		start := float64(i) * 2
		end := start + 1.5
		fmt.Fprintf(&sb, "%d\n00:%02d:%02.3f --> 00:%02d:%02.3f\ncue text %d\n\n",
			i+1, int(start)/60, start-float64(int(start)/60*60), int(end)/60, end-float64(int(end)/60*60), i)
	}
	segs := ParseWebVTT(sb.String())
	require.Len(t, segs, n)
	for i, s := range segs {
		assert.InDelta(t, float64(i)*2, s.Start, 0.001)
		assert.InDelta(t, float64(i)*2+1.5, s.End, 0.001)
		assert.Equal(t, fmt.Sprintf("cue text %d", i), s.Text)
	}
}

func TestParseWebVTT_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "header only", text: "WEBVTT\n\n"},
		{name: "garbage", text: "not a vtt file at all"},
		{name: "timing without text", text: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n\n"},
		{name: "tags only cue", text: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n<c></c>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseWebVTT(tt.text))
		})
	}
}

func TestParseTimedText(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?><transcript>` +
		`<text start="1.2" dur="2.3">Hello &amp; hi</text>` +
		`<text start="3.5" dur="1">second <b>cue</b></text>` +
		`</transcript>`
	segs := ParseTimedText(xml)
	require.Len(t, segs, 2)
	assert.InDelta(t, 1.2, segs[0].Start, 0.0001)
	assert.InDelta(t, 3.5, segs[0].End, 0.0001)
	assert.Equal(t, "Hello & hi", segs[0].Text)
	assert.InDelta(t, 3.5, segs[1].Start, 0.0001)
	assert.InDelta(t, 4.5, segs[1].End, 0.0001)
	assert.Equal(t, "second cue", segs[1].Text)
	assert.Equal(t, PlaceholderSpeaker, segs[1].Speaker)
}

func TestParseTimedText_Milliseconds(t *testing.T) {
	xml := `<timedtext><body>` +
		`<text t="1200" d="2300">first</text>` +
		`<text t="3500" d="1000">second</text>` +
		`</body></timedtext>`
	segs := ParseTimedText(xml)
	require.Len(t, segs, 2)
	assert.InDelta(t, 1.2, segs[0].Start, 0.0001)
	assert.InDelta(t, 3.5, segs[0].End, 0.0001)
	assert.Equal(t, "first", segs[0].Text)
	assert.InDelta(t, 3.5, segs[1].Start, 0.0001)
	assert.InDelta(t, 4.5, segs[1].End, 0.0001)
}

func TestParseTimedText_Degenerate(t *testing.T) {
	assert.Empty(t, ParseTimedText(""))
	assert.Empty(t, ParseTimedText("<html>nope</html>"))
}
