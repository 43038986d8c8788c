package main

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
	"github.com/muesli/reflow/wordwrap"
)

func (m ConsoleUI) innerWidth() int {
	return max(m.width-6, 20)
}

func (m ConsoleUI) separator() string {
	return separatorStyle.Render(strings.Repeat("─", min(m.innerWidth(), 80)))
}

func (m ConsoleUI) viewInput() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("WORD DUNGEON") + "\n")
	b.WriteString("단어를 골라 나만의 던전 모험을 시작하세요!\n\n")
	b.WriteString(m.separator() + "\n\n")

	b.WriteString(labelStyle.Render("용사 이름") + "\n")
	b.WriteString(m.nameInput.View() + "\n\n")

	b.WriteString(labelStyle.Render("학습할 단어") + promptStyle.Render("  (Ctrl+R: 추천 단어)") + "\n")
	for _, w := range m.wordInputs {
		b.WriteString(w.View() + "\n")
	}
	b.WriteString("\n")

	genre := story.Genres[m.genreIndex].Label()
	if m.focus == focusGenre {
		genre = selectedStyle.Render("◀ " + genre + " ▶")
	} else {
		genre = "  " + genre
	}
	b.WriteString(labelStyle.Render("장르") + "\n")
	b.WriteString(genre + "\n\n")

	if m.gs.Notice != "" {
		b.WriteString(errorStyle.Render(m.gs.Notice) + "\n")
	}
	if m.inputErr != "" {
		b.WriteString(errorStyle.Render(m.inputErr) + "\n")
	}
	if m.modelErr != nil {
		b.WriteString(loadingStyle.Render("모델 준비 실패: "+m.modelErr.Error()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("Tab/↑↓: 이동 • ←/→: 장르 선택 • Enter: 모험 시작 • Esc: 종료"))
	return b.String()
}

func (m ConsoleUI) viewLoading() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("WORD DUNGEON") + "\n\n")

	message := "던전을 생성하는 중..."
	if m.gs.Pending != nil && m.gs.Pending.Kind == state.KindContinuation {
		message = "다음 이야기를 쓰는 중..."
	}
	b.WriteString(loadingStyle.Render(message) + "\n\n")
	b.WriteString(m.renderProgressBar() + "\n\n")

	if words := m.gs.Words(); len(words) > 0 {
		b.WriteString(labelStyle.Render("오늘의 단어") + "\n")
		for _, w := range words {
			b.WriteString("• " + emphasisStyle.Render(w) + "\n")
		}
	}
	return b.String()
}

// renderStory styles emphasized words and wraps the chapter to width.
func renderStory(text string, width int) string {
	var b strings.Builder
	for _, seg := range story.Segments(text) {
		if seg.Emphasized {
			b.WriteString(emphasisStyle.Render(seg.Text))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return wordwrap.String(b.String(), width)
}

func (m *ConsoleUI) refreshStory() {
	if m.gs.Content == nil {
		m.storyViewport.SetContent("")
		return
	}
	m.storyViewport.SetContent(renderStory(m.gs.Content.Story, m.storyViewport.Width))
}

func (m ConsoleUI) viewStory() string {
	var b strings.Builder
	header := fmt.Sprintf("제%d장", m.gs.Chapter)
	if m.gs.Content != nil && m.gs.Content.Title != "" {
		header += " · " + m.gs.Content.Title
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString(promptStyle.Render(fmt.Sprintf("   읽은 양 %d%%", int(m.storyViewport.ScrollPercent()*100))) + "\n")
	b.WriteString(m.separator() + "\n")
	b.WriteString(m.storyViewport.View() + "\n")
	b.WriteString(m.separator() + "\n")

	if m.gs.Notice != "" {
		b.WriteString(errorStyle.Render(m.gs.Notice) + "\n")
	}
	b.WriteString(m.actionInput.View() + "\n")
	b.WriteString(promptStyle.Render("Enter: 행동하기 • Ctrl+N: 계속 읽기 • Ctrl+B: 보스 전투 • ↑/↓: 스크롤"))
	return b.String()
}

// renderHPBar draws the boss health as a bar of hearts.
func renderHPBar(hp float64, width int) string {
	width = min(width, 40)
	filled := int(hp / boss.MaxHP * float64(width))
	if hp > 0 && filled == 0 {
		filled = 1
	}
	bar := errorStyle.Render(strings.Repeat("█", filled)) + separatorStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("BOSS HP %s %3.0f", bar, hp)
}

func (m ConsoleUI) viewQuiz() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("보스 전투!") + "\n\n")
	b.WriteString(renderHPBar(m.displayHP, m.innerWidth()-16) + "\n\n")

	q := m.feedbackQuiz
	index := m.feedbackIndex
	total := 0
	if m.gs.Content != nil {
		total = len(m.gs.Content.Quizzes)
	}
	if q == nil {
		e := m.gs.Encounter()
		if e != nil {
			q = e.Current()
			index = e.Index()
		}
	}
	if q == nil {
		return b.String()
	}

	b.WriteString(labelStyle.Render(fmt.Sprintf("문제 %d/%d", index+1, total)) + "\n")
	b.WriteString(wordwrap.String(q.Question, m.innerWidth()) + "\n\n")

	for i, opt := range q.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		switch {
		case m.feedback != nil && i == q.CorrectAnswerIndex:
			line = correctStyle.Render("✔ " + line)
		case m.feedback != nil && i == m.feedback.Selected:
			line = errorStyle.Render("✘ " + line)
		case m.feedback == nil && i == m.selected:
			line = selectedStyle.Render("▶ " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.feedback != nil && m.feedback.Correct:
		b.WriteString(correctStyle.Render(fmt.Sprintf("정답! 보스에게 %.0f의 피해를 주었어요!", m.feedback.Damage)))
	case m.feedback != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("아쉬워요! 정답은 %d번이에요.", q.CorrectAnswerIndex+1)))
	default:
		b.WriteString(promptStyle.Render("1-3 또는 ↑/↓ + Enter: 정답 선택"))
	}
	return b.String()
}

func (m ConsoleUI) viewResult() string {
	r := m.gs.Result()
	var b strings.Builder
	b.WriteString(titleStyle.Render("모험 결과") + "\n\n")
	b.WriteString(gradeStyle.Render(string(r.Grade)) + "\n")
	b.WriteString(loadingStyle.Render(strings.Repeat("★", r.Stars)+strings.Repeat("☆", boss.MaxStars-r.Stars)) + "\n\n")
	b.WriteString(r.Message + "\n")
	b.WriteString(fmt.Sprintf("%d / %d 문제 정답 (%.0f%%)\n\n", r.Score, r.Total, r.Percentage))

	if words := m.gs.Words(); len(words) > 0 {
		b.WriteString(labelStyle.Render("배운 단어") + "\n")
		for _, w := range words {
			b.WriteString("• " + emphasisStyle.Render(w) + "\n")
		}
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(correctStyle.Render(m.status) + "\n\n")
	}
	b.WriteString(promptStyle.Render("r: 다시 하기 • c: 자랑하기(복사) • Esc: 종료"))
	return b.String()
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.innerWidth()

	// Clamp bar width to a sensible range
	if usable > 80 {
		usable = 80 // avoid overly wide bars
	} else if usable < 10 {
		usable = 10 // minimum visible bar
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}
