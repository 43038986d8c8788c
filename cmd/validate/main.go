// Command validate checks saved model replies against the chapter format.
// It is used when tuning prompts: capture replies to files, then run
//
//	validate -words 용기,모험 reply1.json reply2.json
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jwebster45206/word-dungeon/pkg/prompts"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

func main() {
	words := flag.String("words", "", "Comma-separated vocabulary the chapter was written for")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-words a,b,c] <reply.json>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	validator := &ChapterValidator{Words: splitWords(*words)}
	failed := false
	for _, filename := range flag.Args() {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

func splitWords(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// ChapterValidator collects problems in a raw chapter reply. It looks at
// the reply before normalization, so it reports what the generator would
// silently repair.
type ChapterValidator struct {
	Words []string

	errors   []string
	warnings []string
}

func (v *ChapterValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if err := v.validate(data); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	for _, w := range v.warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

// validate checks one reply. The returned error lists every problem.
func (v *ChapterValidator) validate(data []byte) error {
	v.errors = nil
	v.warnings = nil

	if _, err := prompts.ParseContent(string(data)); err != nil {
		return fmt.Errorf("reply is unreadable and would be replaced by fallback content: %w", err)
	}

	raw := bytes.TrimSpace(data)
	if !json.Valid(raw) {
		v.addWarning("reply is wrapped in code fences or prose")
		raw = []byte(extractObject(string(raw)))
	}

	var c story.GeneratedContent
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&c); err != nil {
		return fmt.Errorf("failed strict JSON unmarshaling: %w", err)
	}

	v.validateContent(&c)

	if len(v.errors) > 0 {
		return errors.New("validation errors:\n" + strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ChapterValidator) validateContent(c *story.GeneratedContent) {
	if strings.TrimSpace(c.Title) == "" {
		v.addError("title is empty")
	}
	if strings.TrimSpace(c.Story) == "" {
		v.addError("story is empty")
	}
	if strings.Count(c.Story, story.EmphasisMarker)%2 != 0 {
		v.addWarning("story has an unmatched emphasis marker")
	}

	if len(c.Quizzes) != story.QuizCount {
		v.addError(fmt.Sprintf("expected %d quizzes, got %d", story.QuizCount, len(c.Quizzes)))
	}
	for i, q := range c.Quizzes {
		v.validateQuiz(i+1, q)
	}

	counts := emphasisCounts(c.Story)
	for _, w := range v.Words {
		switch n := counts[w]; {
		case n == 0:
			v.addError(fmt.Sprintf("word '%s' is never emphasized", w))
		case n < 2:
			v.addWarning(fmt.Sprintf("word '%s' is emphasized only once", w))
		}
	}
}

func (v *ChapterValidator) validateQuiz(n int, q story.QuizItem) {
	if strings.TrimSpace(q.Question) == "" {
		v.addError(fmt.Sprintf("quiz %d has no question", n))
	}
	if len(q.Options) != story.OptionCount {
		v.addError(fmt.Sprintf("quiz %d has %d options, expected %d", n, len(q.Options), story.OptionCount))
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		v.addError(fmt.Sprintf("quiz %d answer index %d is out of range", n, q.CorrectAnswerIndex))
	}

	seen := make(map[string]bool)
	for _, opt := range q.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			v.addError(fmt.Sprintf("quiz %d has a blank option", n))
			continue
		}
		if seen[opt] {
			v.addError(fmt.Sprintf("quiz %d repeats option '%s'", n, opt))
		}
		seen[opt] = true
	}
}

func (v *ChapterValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *ChapterValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

func emphasisCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, seg := range story.Segments(text) {
		if seg.Emphasized {
			counts[strings.TrimSpace(seg.Text)]++
		}
	}
	return counts
}

func extractObject(s string) string {
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
