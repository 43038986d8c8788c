package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI(t *testing.T) (ConsoleUI, *services.MockLLMAPI) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	llm := services.NewMockLLMAPI()
	m := NewConsoleUI(services.NewContentGenerator(llm, logger), llm, "mock", logger)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(ConsoleUI), llm
}

func press(t *testing.T, m ConsoleUI, msg tea.KeyMsg) ConsoleUI {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(ConsoleUI)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// resolvePending runs the pending generation synchronously.
func resolvePending(t *testing.T, m ConsoleUI) ConsoleUI {
	t.Helper()
	require.NotNil(t, m.gs.Pending)
	msg := generate(m.generator, m.gs.Pending)()
	updated, _ := m.Update(msg)
	return updated.(ConsoleUI)
}

func startAdventure(t *testing.T) ConsoleUI {
	t.Helper()
	m, _ := newTestUI(t)
	m.nameInput.SetValue("철수")
	m.wordInputs[0].SetValue("용기")
	m.wordInputs[1].SetValue("모험")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, state.PhaseLoading, m.gs.Phase)
	m = resolvePending(t, m)
	require.Equal(t, state.PhaseStory, m.gs.Phase)
	return m
}

func TestConsoleUI_SubmitValidation(t *testing.T) {
	m, _ := newTestUI(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, state.PhaseInput, m.gs.Phase)
	assert.Equal(t, "이름을 입력해주세요.", m.inputErr)

	m.nameInput.SetValue("철수")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, state.PhaseInput, m.gs.Phase)
	assert.Equal(t, "학습할 단어를 하나 이상 입력해주세요.", m.inputErr)
	assert.Equal(t, focusWord, m.focus)
}

func TestConsoleUI_PresetWords(t *testing.T) {
	m, _ := newTestUI(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	var got []string
	for _, w := range m.wordInputs {
		got = append(got, w.Value())
	}
	assert.Contains(t, story.PresetWords, got)
}

func TestConsoleUI_GenreSelection(t *testing.T) {
	m, _ := newTestUI(t)
	for i := 0; i < focusGenre; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	require.Equal(t, focusGenre, m.focus)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, story.GenreSF, story.Genres[m.genreIndex])
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, story.GenreDetective, story.Genres[m.genreIndex])
}

func TestConsoleUI_StoryRendersEmphasis(t *testing.T) {
	m := startAdventure(t)

	view := m.View()
	assert.Contains(t, view, "제1장")
	assert.NotContains(t, m.storyViewport.View(), "**")
	assert.Contains(t, m.storyViewport.View(), "용기")
}

func TestConsoleUI_ContinueIgnoresEmptyAction(t *testing.T) {
	m := startAdventure(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, state.PhaseStory, m.gs.Phase, "empty action must be ignored")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	require.Equal(t, state.PhaseLoading, m.gs.Phase)
	assert.Equal(t, state.DefaultAction, m.gs.Pending.Action)
	m = resolvePending(t, m)
	assert.Equal(t, 2, m.gs.Chapter)
}

func TestConsoleUI_ContinuationFailureKeepsChapter(t *testing.T) {
	m := startAdventure(t)
	title := m.gs.Content.Title

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	updated, _ := m.Update(generatedMsg{ticket: m.gs.Pending, err: errors.New("timeout")})
	m = updated.(ConsoleUI)

	assert.Equal(t, state.PhaseStory, m.gs.Phase)
	assert.Equal(t, 1, m.gs.Chapter)
	assert.Equal(t, title, m.gs.Content.Title)
	assert.Equal(t, state.NoticeContinuationFailed, m.gs.Notice)
}

func TestConsoleUI_StaleResultIgnored(t *testing.T) {
	m := startAdventure(t)
	old := &state.Ticket{Seq: 1, Kind: state.KindInitial}
	version := m.gs.Version

	updated, _ := m.Update(generatedMsg{ticket: old, content: story.FallbackInitial()})
	m = updated.(ConsoleUI)

	assert.Equal(t, version, m.gs.Version)
	assert.False(t, m.gs.Content.Fallback)
}

func TestConsoleUI_BossBattle(t *testing.T) {
	m := startAdventure(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	require.Equal(t, state.PhaseQuiz, m.gs.Phase)

	correct := m.gs.Content.Quizzes[0].CorrectAnswerIndex
	m = press(t, m, runes(string(rune('1'+correct))))
	require.NotNil(t, m.feedback)
	assert.True(t, m.feedback.Correct)
	assert.Equal(t, boss.MaxHP, m.displayHP, "HP drops after the attack animation")
	version := m.gs.Version

	// Keys are ignored while feedback shows
	m = press(t, m, runes("1"))
	assert.Equal(t, version, m.gs.Version)

	updated, _ := m.Update(attackMsg{version: version})
	m = updated.(ConsoleUI)
	assert.Less(t, m.displayHP, boss.MaxHP)

	updated, _ = m.Update(advanceMsg{version: version})
	m = updated.(ConsoleUI)
	assert.Nil(t, m.feedback)
	assert.Equal(t, 1, m.gs.QuizIndex)

	for i := 1; i < len(m.gs.Content.Quizzes); i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		updated, _ = m.Update(advanceMsg{version: m.gs.Version})
		m = updated.(ConsoleUI)
	}
	require.Equal(t, state.PhaseResult, m.gs.Phase)
	assert.Contains(t, m.View(), "모험 결과")

	m = press(t, m, runes("r"))
	assert.Equal(t, state.PhaseInput, m.gs.Phase)
	assert.Empty(t, m.nameInput.Value())
}

func TestConsoleUI_BossBattleWithoutQuestions(t *testing.T) {
	m, llm := newTestUI(t)
	llm.SetChatResponse("the dungeon is quiet today")
	m.nameInput.SetValue("철수")
	m.wordInputs[0].SetValue("용기")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = resolvePending(t, m)
	require.Equal(t, state.PhaseStory, m.gs.Phase)
	require.True(t, m.gs.Content.Fallback)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})

	assert.Equal(t, state.PhaseResult, m.gs.Phase)
	assert.Nil(t, m.feedback)
	assert.Contains(t, m.View(), "모험 결과")
	assert.Contains(t, m.View(), "0 / 0")
}

func TestBragText(t *testing.T) {
	m := startAdventure(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})
	for range m.gs.Content.Quizzes {
		_, err := m.gs.Answer(m.gs.Encounter().Current().CorrectAnswerIndex)
		require.NoError(t, err)
	}

	text := bragText(m.gs)
	assert.True(t, strings.HasPrefix(text, "[Word Dungeon] 철수"))
	assert.Contains(t, text, "등급: S ★★★ (3/3)")
	assert.Contains(t, text, "용기, 모험")
}

func TestConsoleUI_QuitModal(t *testing.T) {
	m, _ := newTestUI(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, m.showQuitModal)

	m = press(t, m, runes("n"))
	assert.False(t, m.showQuitModal)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	_, cmd := m.Update(runes("y"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
