package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

type modelReadyMsg struct {
	err error
}

// generatedMsg carries a finished generation back to the model.
type generatedMsg struct {
	ticket  *state.Ticket
	content *story.GeneratedContent
	err     error
}

// attackMsg lands the hit after the attack animation.
type attackMsg struct {
	version int
}

// advanceMsg ends the feedback display for an answer.
type advanceMsg struct {
	version int
}

type copiedMsg struct {
	err error
}

type progressTickMsg struct{}

func initModel(llm services.LLMService, modelName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		return modelReadyMsg{err: llm.InitModel(ctx, modelName)}
	}
}

func generate(g services.Generator, t *state.Ticket) tea.Cmd {
	return func() tea.Msg {
		content, err := g.Generate(context.Background(), t)
		return generatedMsg{ticket: t, content: content, err: err}
	}
}

func attackAfter(version int) tea.Cmd {
	return tea.Tick(boss.AttackDelay, func(time.Time) tea.Msg {
		return attackMsg{version: version}
	})
}

func advanceAfter(version int) tea.Cmd {
	return tea.Tick(boss.FeedbackDelay, func(time.Time) tea.Msg {
		return advanceMsg{version: version}
	})
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

// bragText is the summary the result screen copies for sharing.
func bragText(gs *state.GameState) string {
	r := gs.Result()
	name := ""
	if gs.Input != nil {
		name = gs.Input.Name
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[Word Dungeon] %s 용사가 던전을 탐험했어요!\n", name))
	sb.WriteString(fmt.Sprintf("등급: %s %s (%d/%d)\n", r.Grade, strings.Repeat("★", r.Stars), r.Score, r.Total))
	sb.WriteString(fmt.Sprintf("배운 단어: %s\n", strings.Join(gs.Words(), ", ")))
	sb.WriteString(r.Message)
	return sb.String()
}
