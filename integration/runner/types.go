package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// Step actions map to session endpoints.
const (
	ActionStart    = "start"
	ActionContinue = "continue"
	ActionBoss     = "boss"
	ActionAnswer   = "answer"
	ActionRestart  = "restart"
	ActionReport   = "report"
)

// TestSuite is one play session driven step by step.
type TestSuite struct {
	Name  string          `json:"name"`
	Input story.UserInput `json:"input"`
	Steps []TestStep      `json:"steps"`
}

// TestStep is a single session event and its expected outcome.
// A start step with no input uses the suite's input.
type TestStep struct {
	Name         string           `json:"name,omitempty"`
	Action       string           `json:"action"`
	Input        *story.UserInput `json:"input,omitempty"`
	Text         string           `json:"text,omitempty"`   // continue action
	Option       *int             `json:"option,omitempty"` // answer selection
	Expectations Expectations     `json:"expect"`
}

// Expectations defines what to check after a step executes.
type Expectations struct {
	Status    *int    `json:"status,omitempty"` // Defaults to 200
	Phase     *string `json:"phase,omitempty"`
	Chapter   *int    `json:"chapter,omitempty"`
	QuizScore *int    `json:"quiz_score,omitempty"`
	BossHP    *int    `json:"boss_hp,omitempty"` // Rounded
	Grade     *string `json:"grade,omitempty"`
	Correct   *bool   `json:"correct,omitempty"` // answer outcome

	// Story analysis
	StoryContains    []string `json:"story_contains,omitempty"`
	StoryNotContains []string `json:"story_not_contains,omitempty"`
	MinQuizzes       *int     `json:"min_quizzes,omitempty"`
	EmphasizesWords  bool     `json:"emphasizes_words,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Name     string
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // ID of the session used for this test
}
