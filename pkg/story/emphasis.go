package story

import "strings"

// EmphasisMarker wraps every vocabulary occurrence in generated stories.
const EmphasisMarker = "**"

// Segment is a run of story text, either plain or emphasized.
type Segment struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Segments splits text on paired emphasis markers. Spans alternate between
// plain and emphasized; a trailing marker with no partner is kept as
// literal text, and empty emphasized spans are dropped.
func Segments(text string) []Segment {
	var segments []Segment
	appendPlain := func(s string) {
		if s == "" {
			return
		}
		if n := len(segments); n > 0 && !segments[n-1].Emphasized {
			segments[n-1].Text += s
			return
		}
		segments = append(segments, Segment{Text: s})
	}

	rest := text
	for {
		open := strings.Index(rest, EmphasisMarker)
		if open < 0 {
			appendPlain(rest)
			break
		}
		afterOpen := rest[open+len(EmphasisMarker):]
		closeAt := strings.Index(afterOpen, EmphasisMarker)
		if closeAt < 0 {
			appendPlain(rest)
			break
		}
		appendPlain(rest[:open])
		if word := afterOpen[:closeAt]; word != "" {
			segments = append(segments, Segment{Text: word, Emphasized: true})
		}
		rest = afterOpen[closeAt+len(EmphasisMarker):]
	}
	return segments
}

// PlainText removes paired emphasis markers.
func PlainText(text string) string {
	var b strings.Builder
	for _, s := range Segments(text) {
		b.WriteString(s.Text)
	}
	return b.String()
}

// EmphasizedWords returns the distinct emphasized spans in order of first
// appearance.
func EmphasizedWords(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, s := range Segments(text) {
		if s.Emphasized && !seen[s.Text] {
			seen[s.Text] = true
			words = append(words, s.Text)
		}
	}
	return words
}
