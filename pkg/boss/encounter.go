// Package boss turns a chapter's quizzes into a turn-based boss fight.
package boss

import (
	"time"

	"github.com/jwebster45206/word-dungeon/pkg/story"
)

const (
	// MaxHP is the boss's health at the start of every encounter.
	MaxHP = 100.0

	// AttackDelay is how long the hit animation plays before health drops.
	AttackDelay = 200 * time.Millisecond

	// FeedbackDelay is how long correct/wrong feedback stays on screen
	// before the next question.
	FeedbackDelay = 1500 * time.Millisecond
)

// Outcome describes a single answered question.
type Outcome struct {
	Correct  bool    `json:"correct"`
	Selected int     `json:"selected"`
	Answer   int     `json:"answer"`
	Damage   float64 `json:"damage"`
	Last     bool    `json:"last"`
}

// Encounter tracks one boss fight. The zero value is not usable; call New.
type Encounter struct {
	quizzes []story.QuizItem
	index   int
	score   int

	// awaiting is set between an answer and Advance. Answers are ignored
	// while it is set.
	awaiting bool
	finished bool
}

// New starts an encounter over quizzes. An empty list is finished at once
// with a score of zero.
func New(quizzes []story.QuizItem) *Encounter {
	return &Encounter{
		quizzes:  quizzes,
		finished: len(quizzes) == 0,
	}
}

// Resume rebuilds an encounter from stored progress. It is used when the
// fight state lives outside the process, such as in a stored session.
func Resume(quizzes []story.QuizItem, index, score int) *Encounter {
	e := New(quizzes)
	if e.finished {
		return e
	}
	if index < 0 {
		index = 0
	}
	if score < 0 {
		score = 0
	}
	if score > index {
		score = index
	}
	e.index = index
	e.score = score
	if index >= len(quizzes) {
		e.index = len(quizzes) - 1
		e.finished = true
	}
	return e
}

// DamagePerHit is MaxHP split evenly over the questions, or zero when
// there are none.
func (e *Encounter) DamagePerHit() float64 {
	if len(e.quizzes) == 0 {
		return 0
	}
	return MaxHP / float64(len(e.quizzes))
}

// Current returns the question being asked, or nil once finished.
func (e *Encounter) Current() *story.QuizItem {
	if e.finished || e.index >= len(e.quizzes) {
		return nil
	}
	return &e.quizzes[e.index]
}

// Index is the zero-based position of the current question.
func (e *Encounter) Index() int { return e.index }

// Total is the number of questions in the encounter.
func (e *Encounter) Total() int { return len(e.quizzes) }

// Score is the number of correct answers so far.
func (e *Encounter) Score() int { return e.score }

// HP is the boss's remaining health, derived from the score.
func (e *Encounter) HP() float64 {
	return clamp(MaxHP - float64(e.score)*e.DamagePerHit())
}

// Finished reports whether every question has been answered.
func (e *Encounter) Finished() bool { return e.finished }

// AwaitingAdvance reports whether feedback for an answer is showing.
func (e *Encounter) AwaitingAdvance() bool { return e.awaiting }

// Answer records a selection for the current question. It returns false
// if the encounter is finished or the current question was already
// answered. Damage is applied immediately; callers that animate the hit
// can delay showing it by AttackDelay.
func (e *Encounter) Answer(selected int) (Outcome, bool) {
	q := e.Current()
	if q == nil || e.awaiting {
		return Outcome{}, false
	}

	out := Outcome{
		Selected: selected,
		Answer:   q.CorrectAnswerIndex,
		Last:     e.index == len(e.quizzes)-1,
	}
	if q.IsCorrect(selected) {
		out.Correct = true
		out.Damage = e.DamagePerHit()
		e.score++
	}
	e.awaiting = true
	return out, true
}

// Advance moves past an answered question. After the last question the
// encounter is finished and Advance returns true.
func (e *Encounter) Advance() bool {
	if e.finished {
		return true
	}
	if !e.awaiting {
		return false
	}
	e.awaiting = false
	if e.index >= len(e.quizzes)-1 {
		e.finished = true
		return true
	}
	e.index++
	return false
}

func clamp(hp float64) float64 {
	if hp < 0 {
		return 0
	}
	if hp > MaxHP {
		return MaxHP
	}
	return hp
}
