package main

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// Input screen focus order: name, the word slots, then the genre selector.
const (
	focusName  = 0
	focusWord  = 1
	focusGenre = focusWord + story.MaxWords
	focusCount = focusGenre + 1
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	generator services.Generator
	llm       services.LLMService
	modelName string
	logger    *slog.Logger

	gs     *state.GameState
	ready  bool
	width  int
	height int

	// Input screen
	nameInput  textinput.Model
	wordInputs []textinput.Model
	genreIndex int
	focus      int
	inputErr   string

	// Story screen
	storyViewport viewport.Model
	actionInput   textinput.Model

	// Quiz screen. feedback is set while an answer's result is showing;
	// keys are ignored until it clears.
	selected      int
	feedback      *boss.Outcome
	feedbackQuiz  *story.QuizItem
	feedbackIndex int
	displayHP     float64

	status   string
	modelErr error

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

var (
	panelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(3)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	emphasisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true).
			Underline(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	gradeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 3)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

func NewConsoleUI(generator services.Generator, llm services.LLMService, modelName string, logger *slog.Logger) ConsoleUI {
	name := newTextInput("이름을 입력하세요", 20)
	name.Focus()

	words := make([]textinput.Model, story.MaxWords)
	for i := range words {
		words[i] = newTextInput("학습할 단어", 20)
	}

	action := newTextInput("주인공의 다음 행동을 입력하세요 (예: 동굴 안으로 들어간다)", 200)

	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		generator:     generator,
		llm:           llm,
		modelName:     modelName,
		logger:        logger,
		gs:            state.NewGameState(),
		nameInput:     name,
		wordInputs:    words,
		storyViewport: vp,
		actionInput:   action,
		displayHP:     boss.MaxHP,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, initModel(m.llm, m.modelName))
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		return m, nil

	case modelReadyMsg:
		m.modelErr = msg.err
		if msg.err != nil {
			m.logger.Error("Failed to initialize LLM model", "error", msg.err, "model", m.modelName)
		}
		return m, nil

	case generatedMsg:
		return m.handleGenerated(msg)

	case progressTickMsg:
		if m.gs.Phase == state.PhaseLoading {
			m.progressTick++
			return m, progressTick() // Continue the animation
		}
		return m, nil

	case attackMsg:
		if m.feedback != nil && msg.version == m.gs.Version {
			m.displayHP = m.gs.BossHP
		}
		return m, nil

	case advanceMsg:
		if m.feedback != nil && msg.version == m.gs.Version {
			m.feedback = nil
			m.feedbackQuiz = nil
			m.selected = 0
			m.displayHP = m.gs.BossHP
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("Clipboard copy failed", "error", msg.err)
			m.status = "클립보드에 복사하지 못했어요."
		} else {
			m.status = "결과를 클립보드에 복사했어요!"
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.showQuitModal = true
			return m, nil
		}
		if m.feedback != nil {
			return m, nil
		}
		switch m.gs.Phase {
		case state.PhaseInput:
			return m.updateInput(msg)
		case state.PhaseStory:
			return m.updateStory(msg)
		case state.PhaseQuiz:
			return m.updateQuiz(msg)
		case state.PhaseResult:
			return m.updateResult(msg)
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

// updateComponents forwards non-key messages (cursor blink, mouse) to the
// widgets of the current screen.
func (m ConsoleUI) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch m.gs.Phase {
	case state.PhaseInput:
		m.nameInput, cmd = m.nameInput.Update(msg)
		cmds = append(cmds, cmd)
		for i := range m.wordInputs {
			m.wordInputs[i], cmd = m.wordInputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
	case state.PhaseStory:
		m.storyViewport, cmd = m.storyViewport.Update(msg)
		cmds = append(cmds, cmd)
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *ConsoleUI) resize() {
	inner := m.width - 6
	if inner < 20 {
		inner = 20
	}
	m.storyViewport.Width = inner
	m.storyViewport.Height = max(m.height-12, 5)
	m.actionInput.Width = inner - 4
	m.refreshStory()
}

func (m *ConsoleUI) applyFocus() {
	m.nameInput.Blur()
	for i := range m.wordInputs {
		m.wordInputs[i].Blur()
	}
	switch {
	case m.focus == focusName:
		m.nameInput.Focus()
	case m.focus >= focusWord && m.focus < focusGenre:
		m.wordInputs[m.focus-focusWord].Focus()
	}
}

func (m ConsoleUI) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.focus = (m.focus + 1) % focusCount
		m.applyFocus()
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.focus = (m.focus + focusCount - 1) % focusCount
		m.applyFocus()
		return m, nil
	case tea.KeyCtrlR:
		preset := story.PresetWords[rand.IntN(len(story.PresetWords))]
		for i := range m.wordInputs {
			m.wordInputs[i].SetValue("")
			if i < len(preset) {
				m.wordInputs[i].SetValue(preset[i])
			}
		}
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	}

	if m.focus == focusGenre {
		switch msg.Type {
		case tea.KeyLeft:
			m.genreIndex = (m.genreIndex + len(story.Genres) - 1) % len(story.Genres)
		case tea.KeyRight, tea.KeySpace:
			m.genreIndex = (m.genreIndex + 1) % len(story.Genres)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		i := m.focus - focusWord
		m.wordInputs[i], cmd = m.wordInputs[i].Update(msg)
	}
	return m, cmd
}

func (m ConsoleUI) submit() (tea.Model, tea.Cmd) {
	in := story.UserInput{
		Name:  m.nameInput.Value(),
		Genre: story.Genres[m.genreIndex],
		Words: make([]string, 0, len(m.wordInputs)),
	}
	for _, w := range m.wordInputs {
		in.Words = append(in.Words, w.Value())
	}

	t, err := m.gs.Submit(in)
	if err != nil {
		var verr *story.ValidationError
		if errors.As(err, &verr) {
			m.inputErr = validationMessage(verr)
			if verr.Field == "words" {
				m.focus = focusWord
			} else {
				m.focus = focusName
			}
			m.applyFocus()
		} else {
			m.inputErr = err.Error()
		}
		return m, nil
	}

	m.inputErr = ""
	m.status = ""
	m.progressTick = 0
	m.logger.Info("Adventure started", "session_id", m.gs.ID.String(), "genre", string(in.Genre))
	return m, tea.Batch(generate(m.generator, t), progressTick())
}

func validationMessage(verr *story.ValidationError) string {
	switch verr.Field {
	case "name":
		return "이름을 입력해주세요."
	case "words":
		return "학습할 단어를 하나 이상 입력해주세요."
	default:
		return verr.Message
	}
}

func (m ConsoleUI) handleGenerated(msg generatedMsg) (tea.Model, tea.Cmd) {
	if err := m.gs.Resolve(msg.ticket, msg.content, msg.err); err != nil {
		m.logger.Debug("Discarding generation result", "error", err)
		return m, nil
	}
	if msg.err != nil {
		m.logger.Error("Generation failed", "kind", string(msg.ticket.Kind), "error", msg.err)
	}

	switch m.gs.Phase {
	case state.PhaseStory:
		m.actionInput.Reset()
		m.actionInput.Focus()
		m.refreshStory()
		if msg.err == nil {
			m.storyViewport.GotoTop()
		}
		return m, textinput.Blink
	case state.PhaseInput:
		m.focus = focusName
		m.applyFocus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m ConsoleUI) updateStory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		action := strings.TrimSpace(m.actionInput.Value())
		if action == "" {
			return m, nil
		}
		return m.nextChapter(action)
	case tea.KeyCtrlN:
		return m.nextChapter("")
	case tea.KeyCtrlB:
		if err := m.gs.BossBattle(); err != nil {
			return m, nil
		}
		m.actionInput.Blur()
		m.selected = 0
		m.displayHP = m.gs.BossHP
		m.logger.Info("Boss battle started", "session_id", m.gs.ID.String(), "chapter", m.gs.Chapter,
			"phase", m.gs.Phase)
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.storyViewport, cmd = m.storyViewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.actionInput, cmd = m.actionInput.Update(msg)
	return m, cmd
}

func (m ConsoleUI) nextChapter(action string) (tea.Model, tea.Cmd) {
	t, err := m.gs.NextChapter(action)
	if err != nil {
		return m, nil
	}
	m.actionInput.Blur()
	m.progressTick = 0
	return m, tea.Batch(generate(m.generator, t), progressTick())
}

func (m ConsoleUI) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.gs.Encounter().Current()
	if q == nil {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(q.Options)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		return m.answer(m.selected)
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && msg.Runes[0] >= '1' && int(msg.Runes[0]-'1') < len(q.Options) {
			return m.answer(int(msg.Runes[0] - '1'))
		}
	}
	return m, nil
}

func (m ConsoleUI) answer(option int) (tea.Model, tea.Cmd) {
	e := m.gs.Encounter()
	quiz := *e.Current()
	index := e.Index()

	out, err := m.gs.Answer(option)
	if err != nil {
		return m, nil
	}
	m.selected = option
	m.feedback = &out
	m.feedbackQuiz = &quiz
	m.feedbackIndex = index
	m.logger.Debug("Quiz answered", "session_id", m.gs.ID.String(), "question", index, "correct", out.Correct)
	return m, tea.Batch(attackAfter(m.gs.Version), advanceAfter(m.gs.Version))
}

func (m ConsoleUI) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "R":
		if err := m.gs.Restart(); err != nil {
			return m, nil
		}
		m.resetInputs()
		return m, textinput.Blink
	case "c", "C":
		return m, copyToClipboard(bragText(m.gs))
	}
	return m, nil
}

func (m *ConsoleUI) resetInputs() {
	m.nameInput.Reset()
	for i := range m.wordInputs {
		m.wordInputs[i].Reset()
	}
	m.genreIndex = 0
	m.focus = focusName
	m.applyFocus()
	m.actionInput.Reset()
	m.inputErr = ""
	m.status = ""
	m.selected = 0
	m.displayHP = boss.MaxHP
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, textinput.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	var body string
	switch {
	case m.feedback != nil:
		body = m.viewQuiz()
	case m.gs.Phase == state.PhaseLoading:
		body = m.viewLoading()
	case m.gs.Phase == state.PhaseStory:
		body = m.viewStory()
	case m.gs.Phase == state.PhaseQuiz:
		body = m.viewQuiz()
	case m.gs.Phase == state.PhaseResult:
		body = m.viewResult()
	default:
		body = m.viewInput()
	}
	return panelStyle.Width(m.width).Render(body)
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("모험을 그만둘까요?"))
	content.WriteString("\n\n")
	content.WriteString("진행 중인 이야기는 저장되지 않아요.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Y: 종료, N: 계속하기, Ctrl+C: 강제 종료"))

	// Create the modal
	modal := modalStyle.Width(50).Render(content.String())

	// Center the modal
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
