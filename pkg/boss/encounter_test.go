package boss

import (
	"math"
	"testing"

	"github.com/jwebster45206/word-dungeon/pkg/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuizzes(n int) []story.QuizItem {
	quizzes := make([]story.QuizItem, n)
	for i := range quizzes {
		quizzes[i] = story.QuizItem{
			Question:           "빈칸에 들어갈 말은?",
			Options:            []string{"용기", "모험", "지혜"},
			CorrectAnswerIndex: i % 3,
		}
	}
	return quizzes
}

// play answers every question, getting exactly the ones in correct right.
func play(t *testing.T, e *Encounter, correct map[int]bool) {
	t.Helper()
	for !e.Finished() {
		q := e.Current()
		require.NotNil(t, q)
		choice := q.CorrectAnswerIndex
		if !correct[e.Index()] {
			choice = (q.CorrectAnswerIndex + 1) % len(q.Options)
		}
		_, ok := e.Answer(choice)
		require.True(t, ok)
		e.Advance()
	}
}

func TestEncounter_ScoreAndHP(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		correct map[int]bool
	}{
		{name: "all correct of three", length: 3, correct: map[int]bool{0: true, 1: true, 2: true}},
		{name: "one of three", length: 3, correct: map[int]bool{1: true}},
		{name: "none of three", length: 3, correct: map[int]bool{}},
		{name: "last only of three", length: 3, correct: map[int]bool{2: true}},
		{name: "two of two", length: 2, correct: map[int]bool{0: true, 1: true}},
		{name: "three of seven", length: 7, correct: map[int]bool{0: true, 3: true, 6: true}},
		{name: "single question wrong", length: 1, correct: map[int]bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(makeQuizzes(tt.length))
			play(t, e, tt.correct)

			k := len(tt.correct)
			expectedHP := math.Max(0, MaxHP-float64(k)*(MaxHP/float64(tt.length)))
			assert.Equal(t, k, e.Score())
			assert.InDelta(t, expectedHP, e.HP(), 1e-9)
			assert.True(t, e.Finished())
			assert.Nil(t, e.Current())
		})
	}
}

func TestEncounter_PerfectRunEmptiesHP(t *testing.T) {
	e := New(makeQuizzes(3))
	play(t, e, map[int]bool{0: true, 1: true, 2: true})
	assert.Equal(t, 0.0, e.HP())
}

func TestEncounter_EmptyQuiz(t *testing.T) {
	e := New(nil)

	assert.True(t, e.Finished())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0.0, e.DamagePerHit())
	assert.Equal(t, MaxHP, e.HP())
	assert.Nil(t, e.Current())

	_, ok := e.Answer(0)
	assert.False(t, ok)
	assert.True(t, e.Advance())
}

func TestEncounter_IgnoresSecondAnswer(t *testing.T) {
	e := New(makeQuizzes(3))

	out, ok := e.Answer(e.Current().CorrectAnswerIndex)
	require.True(t, ok)
	assert.True(t, out.Correct)
	assert.True(t, e.AwaitingAdvance())

	_, ok = e.Answer(e.Current().CorrectAnswerIndex)
	assert.False(t, ok, "a second answer before Advance must be ignored")
	assert.Equal(t, 1, e.Score())

	assert.False(t, e.Advance())
	assert.Equal(t, 1, e.Index())
	assert.False(t, e.Advance(), "Advance without an answer must not skip questions")
	assert.Equal(t, 1, e.Index())
}

func TestEncounter_LastOutcome(t *testing.T) {
	e := New(makeQuizzes(2))

	out, _ := e.Answer(0)
	assert.False(t, out.Last)
	e.Advance()

	out, _ = e.Answer(e.Current().CorrectAnswerIndex)
	assert.True(t, out.Last)
	assert.True(t, out.Correct)
	assert.True(t, e.Advance())
	assert.Equal(t, 2, e.Score(), "final score must include the last question")
}

func TestEncounter_OutOfRangeAnswerIndex(t *testing.T) {
	quizzes := []story.QuizItem{{Question: "?", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 5}}
	e := New(quizzes)

	out, ok := e.Answer(5)
	require.True(t, ok)
	assert.False(t, out.Correct)
	assert.Equal(t, MaxHP, e.HP())
}

func TestResume(t *testing.T) {
	quizzes := makeQuizzes(3)

	e := Resume(quizzes, 1, 1)
	assert.Equal(t, 1, e.Index())
	assert.Equal(t, 1, e.Score())
	assert.False(t, e.Finished())
	assert.InDelta(t, MaxHP-MaxHP/3, e.HP(), 1e-9)

	clamped := Resume(quizzes, 1, 5)
	assert.Equal(t, 1, clamped.Score(), "score cannot exceed answered questions")

	done := Resume(quizzes, 3, 2)
	assert.True(t, done.Finished())
	assert.Equal(t, 2, done.Score())

	empty := Resume(nil, 2, 2)
	assert.True(t, empty.Finished())
	assert.Equal(t, 0, empty.Score())
}
