package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/word-dungeon/internal/config"
	"github.com/jwebster45206/word-dungeon/internal/logger"
	"github.com/jwebster45206/word-dungeon/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.SetupFile(cfg, getEnv("CONSOLE_LOG_FILE", "word-dungeon.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = closeLog() // Ignore error in defer
	}()

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM service: %v\n", err)
		os.Exit(1)
	}
	generator := services.NewContentGenerator(llmService, log).
		WithRetries(cfg.LLMMaxRetries, cfg.LLMRetryBackoff).
		WithTimeout(cfg.LLMTimeout)

	log.Info("Starting Word Dungeon console", "llm_provider", cfg.LLMProvider, "model_name", cfg.ModelName)

	p := tea.NewProgram(NewConsoleUI(generator, llmService, cfg.ModelName, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
