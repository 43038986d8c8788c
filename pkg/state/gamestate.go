package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// Phase is the screen a session is on.
type Phase string

const (
	PhaseInput   Phase = "INPUT"
	PhaseLoading Phase = "LOADING"
	PhaseStory   Phase = "STORY"
	PhaseQuiz    Phase = "QUIZ"
	PhaseResult  Phase = "RESULT"
)

// Kind is the type of generation a session is waiting on.
type Kind string

const (
	KindInitial      Kind = "initial"
	KindContinuation Kind = "continuation"
)

// DefaultAction is sent with a continuation when the player leaves the
// action blank.
const DefaultAction = "주인공은 주변을 경계하며 조심스럽게 앞으로 나아갑니다."

// Notices shown after a failed generation.
const (
	NoticeInitialFailed      = "던전 생성 중 오류가 발생했습니다. 다시 시도해주세요."
	NoticeContinuationFailed = "다음 이야기를 불러오는데 실패했습니다."
)

// GameState is one play session, from input to result.
type GameState struct {
	ID        uuid.UUID `json:"id"`
	Version   int       `json:"version"` // Incremented on every transition
	Phase     Phase     `json:"phase"`
	UpdatedAt time.Time `json:"updated_at"`

	Input   *story.UserInput        `json:"input,omitempty"`
	Content *story.GeneratedContent `json:"content,omitempty"`
	Chapter int                     `json:"chapter"`

	// Boss encounter progress. QuizIndex counts answered questions.
	QuizIndex int     `json:"quiz_index"`
	QuizScore int     `json:"quiz_score"`
	BossHP    float64 `json:"boss_hp"`

	// Set only while Phase is LOADING.
	Pending      *Ticket `json:"pending,omitempty"`
	PendingPhase Phase   `json:"pending_phase,omitempty"`

	// Notice is a player-facing message about the last failed generation.
	Notice string `json:"notice,omitempty"`
}

// NewGameState returns a session on the input screen.
func NewGameState() *GameState {
	gs := &GameState{ID: uuid.New()}
	gs.reset()
	return gs
}

func (gs *GameState) reset() {
	gs.Phase = PhaseInput
	gs.Input = nil
	gs.Content = nil
	gs.Chapter = 1
	gs.QuizIndex = 0
	gs.QuizScore = 0
	gs.BossHP = boss.MaxHP
	gs.Pending = nil
	gs.PendingPhase = ""
	gs.Notice = ""
	gs.UpdatedAt = time.Now().UTC()
}

// Loading reports whether a generation is in flight.
func (gs *GameState) Loading() bool {
	return gs.Phase == PhaseLoading && gs.Pending != nil
}

// Encounter rebuilds the boss fight from the stored progress. It returns
// nil outside the quiz and result phases.
func (gs *GameState) Encounter() *boss.Encounter {
	if gs.Content == nil || (gs.Phase != PhaseQuiz && gs.Phase != PhaseResult) {
		return nil
	}
	return boss.Resume(gs.Content.Quizzes, gs.QuizIndex, gs.QuizScore)
}

// Result grades the finished encounter.
func (gs *GameState) Result() boss.Result {
	total := 0
	if gs.Content != nil {
		total = len(gs.Content.Quizzes)
	}
	return boss.Evaluate(gs.QuizScore, total)
}

// Words returns the submitted vocabulary, or nil before submission.
func (gs *GameState) Words() []string {
	if gs.Input == nil {
		return nil
	}
	return gs.Input.Words
}
