package story

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Genre is one of the fixed story themes a player can pick.
type Genre string

const (
	GenreFantasy   Genre = "FANTASY"
	GenreSF        Genre = "SF"
	GenreHorror    Genre = "HORROR"
	GenreDetective Genre = "DETECTIVE"
)

// Genres lists every genre in display order.
var Genres = []Genre{GenreFantasy, GenreSF, GenreHorror, GenreDetective}

var genreLabels = map[Genre]string{
	GenreFantasy:   "판타지 (드래곤과 기사)",
	GenreSF:        "SF (우주와 로봇)",
	GenreHorror:    "학교괴담 (귀신과 좀비)",
	GenreDetective: "추리 (탐정과 사건)",
}

// Label returns the player-facing name of the genre, which is also what
// the model sees in the prompt.
func (g Genre) Label() string {
	if label, ok := genreLabels[g]; ok {
		return label
	}
	return string(g)
}

// Valid reports whether g is one of the known genres.
func (g Genre) Valid() bool {
	_, ok := genreLabels[g]
	return ok
}

// ParseGenre accepts either a genre code ("FANTASY") or its label.
func ParseGenre(s string) (Genre, error) {
	s = strings.TrimSpace(s)
	for _, g := range Genres {
		if strings.EqualFold(s, string(g)) || s == g.Label() {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown genre: %q", s)
}

// PresetWords are the vocabulary sets offered by the "recommend" button.
var PresetWords = [][]string{
	{"추상화", "알고리즘", "자료구조"},
	{"광합성", "생태계", "먹이사슬"},
	{"민주주의", "투표", "선거"},
	{"비유", "운율", "심상"},
}

// MaxWords is the number of word slots on the input screen.
const MaxWords = 3

// UserInput is what the player submits from the input screen.
type UserInput struct {
	Name  string   `json:"name"`
	Genre Genre    `json:"genre"`
	Words []string `json:"words"`
}

// ValidationError is returned when submitted input is not playable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalized returns a copy with trimmed fields, blank words removed, and
// every string in NFC form. An empty genre defaults to fantasy.
func (in UserInput) Normalized() UserInput {
	out := UserInput{
		Name:  norm.NFC.String(strings.TrimSpace(in.Name)),
		Genre: in.Genre,
		Words: make([]string, 0, len(in.Words)),
	}
	if out.Genre == "" {
		out.Genre = GenreFantasy
	}
	for _, w := range in.Words {
		w = norm.NFC.String(strings.TrimSpace(w))
		if w != "" {
			out.Words = append(out.Words, w)
		}
	}
	return out
}

// Validate checks the normalized form of the input.
func (in UserInput) Validate() error {
	n := in.Normalized()
	if n.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(n.Words) == 0 {
		return &ValidationError{Field: "words", Message: "at least one word is required"}
	}
	if !n.Genre.Valid() {
		return &ValidationError{Field: "genre", Message: fmt.Sprintf("unknown genre %q", n.Genre)}
	}
	return nil
}

// QuizItem is a single multiple-choice question about a chapter.
type QuizItem struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// IsCorrect reports whether selected is the right option. Indexes outside
// the option list never match.
func (q QuizItem) IsCorrect(selected int) bool {
	if selected < 0 || selected >= len(q.Options) {
		return false
	}
	return selected == q.CorrectAnswerIndex
}

// QuizCount is how many questions the model is asked to write per chapter.
const QuizCount = 3

// OptionCount is how many choices each question carries.
const OptionCount = 3

// GeneratedContent is one chapter: title, story text, and its quizzes.
type GeneratedContent struct {
	Title    string     `json:"title"`
	Story    string     `json:"story"`
	Quizzes  []QuizItem `json:"quizzes"`
	Fallback bool       `json:"fallback,omitempty"`
}

// Normalize cleans a model reply in place. Questions without text or with
// fewer than two options are dropped, options beyond OptionCount are cut,
// and the list is truncated to QuizCount. Short lists are left short.
func (c *GeneratedContent) Normalize() {
	c.Title = strings.TrimSpace(c.Title)
	c.Story = strings.TrimSpace(c.Story)

	quizzes := make([]QuizItem, 0, len(c.Quizzes))
	for _, q := range c.Quizzes {
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" || len(q.Options) < 2 {
			continue
		}
		if len(q.Options) > OptionCount {
			q.Options = q.Options[:OptionCount]
		}
		for i := range q.Options {
			q.Options[i] = strings.TrimSpace(q.Options[i])
		}
		quizzes = append(quizzes, q)
		if len(quizzes) == QuizCount {
			break
		}
	}
	c.Quizzes = quizzes
}

// Clone returns a deep copy.
func (c *GeneratedContent) Clone() *GeneratedContent {
	if c == nil {
		return nil
	}
	out := *c
	out.Quizzes = make([]QuizItem, len(c.Quizzes))
	for i, q := range c.Quizzes {
		q.Options = append([]string(nil), q.Options...)
		out.Quizzes[i] = q
	}
	return &out
}

// FallbackInitial is returned when the first chapter could not be read
// from the model's reply.
func FallbackInitial() *GeneratedContent {
	return &GeneratedContent{
		Title:    "오류가 발생한 던전",
		Story:    "던전의 입구가 무너져서 이야기를 불러올 수 없습니다. 다시 시도해주세요.",
		Quizzes:  []QuizItem{},
		Fallback: true,
	}
}

// FallbackContinuation is returned when a follow-up chapter could not be
// read from the model's reply.
func FallbackContinuation() *GeneratedContent {
	return &GeneratedContent{
		Title:    "연결이 끊긴 차원",
		Story:    "마법의 힘이 부족하여 다음 이야기를 불러오지 못했습니다.",
		Quizzes:  []QuizItem{},
		Fallback: true,
	}
}
