package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running word-dungeon API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration // Per step
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 3 * time.Minute},
		Timeout:           2 * time.Minute,
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	if len(suite.Steps) == 0 {
		return TestSuite{}, fmt.Errorf("test file %s has no steps", filename)
	}
	return suite, nil
}

// session is the subset of the session response the runner checks.
type session struct {
	state.GameState
	Result *boss.Result `json:"result,omitempty"`
}

type answerResponse struct {
	Outcome boss.Outcome `json:"outcome"`
	Session session      `json:"session"`
}

// RunSuite creates a session and executes every step against it
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Name:    suite.Name,
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	var created session
	status, err := r.do(ctx, http.MethodPost, "/v1/sessions", nil, &created)
	if err != nil {
		return result, fmt.Errorf("failed to create session: %w", err)
	}
	if status != http.StatusCreated {
		return result, fmt.Errorf("create session returned %d", status)
	}
	result.Session = created.ID
	defer func() {
		_, _ = r.do(context.Background(), http.MethodDelete, "/v1/sessions/"+created.ID.String(), nil, nil)
	}()

	for i, step := range suite.Steps {
		if step.Name == "" {
			step.Name = fmt.Sprintf("step %d: %s", i+1, step.Action)
		}
		stepResult := r.runStep(ctx, created.ID, suite, step)
		result.Results = append(result.Results, stepResult)
		r.logf("   %s %s (%v)", mark(stepResult.Success), stepResult.StepName, stepResult.Duration)

		if !stepResult.Success {
			result.Error = fmt.Errorf("%s: %w", stepResult.StepName, stepResult.Error)
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, id uuid.UUID, suite TestSuite, step TestStep) TestResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	err := r.executeStep(ctx, id, suite, step)
	return TestResult{
		StepName: step.Name,
		Success:  err == nil,
		Error:    err,
		Duration: time.Since(start),
	}
}

func (r *Runner) executeStep(ctx context.Context, id uuid.UUID, suite TestSuite, step TestStep) error {
	path := fmt.Sprintf("/v1/sessions/%s/%s", id.String(), step.Action)
	exp := step.Expectations
	wantStatus := http.StatusOK
	if exp.Status != nil {
		wantStatus = *exp.Status
	}

	var body interface{}
	switch step.Action {
	case ActionStart:
		in := suite.Input
		if step.Input != nil {
			in = *step.Input
		}
		body = in
	case ActionContinue:
		body = map[string]string{"action": step.Text}
	case ActionAnswer:
		body = map[string]interface{}{"option": step.Option}
	case ActionBoss, ActionRestart:
	case ActionReport:
		return r.checkReport(ctx, path, wantStatus)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	var raw json.RawMessage
	status, err := r.do(ctx, http.MethodPost, path, body, &raw)
	if err != nil {
		return err
	}
	if status != wantStatus {
		return fmt.Errorf("expected status %d, got %d: %s", wantStatus, status, string(raw))
	}
	if status != http.StatusOK {
		return nil
	}

	var gs session
	if step.Action == ActionAnswer {
		var ar answerResponse
		if err := json.Unmarshal(raw, &ar); err != nil {
			return fmt.Errorf("failed to parse answer response: %w", err)
		}
		if exp.Correct != nil && ar.Outcome.Correct != *exp.Correct {
			return fmt.Errorf("expected correct=%v, got %v", *exp.Correct, ar.Outcome.Correct)
		}
		gs = ar.Session
	} else if err := json.Unmarshal(raw, &gs); err != nil {
		return fmt.Errorf("failed to parse session response: %w", err)
	}
	return checkExpectations(exp, &gs)
}

func (r *Runner) checkReport(ctx context.Context, path string, wantStatus int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("expected status %d, got %d", wantStatus, resp.StatusCode)
	}
	if wantStatus == http.StatusOK {
		head := make([]byte, 5)
		if _, err := io.ReadFull(resp.Body, head); err != nil || string(head) != "%PDF-" {
			return fmt.Errorf("report is not a PDF")
		}
	}
	return nil
}

func checkExpectations(exp Expectations, gs *session) error {
	var problems []string
	if exp.Phase != nil && string(gs.Phase) != *exp.Phase {
		problems = append(problems, fmt.Sprintf("phase: expected %s, got %s", *exp.Phase, gs.Phase))
	}
	if exp.Chapter != nil && gs.Chapter != *exp.Chapter {
		problems = append(problems, fmt.Sprintf("chapter: expected %d, got %d", *exp.Chapter, gs.Chapter))
	}
	if exp.QuizScore != nil && gs.QuizScore != *exp.QuizScore {
		problems = append(problems, fmt.Sprintf("quiz_score: expected %d, got %d", *exp.QuizScore, gs.QuizScore))
	}
	if exp.BossHP != nil && int(math.Round(gs.BossHP)) != *exp.BossHP {
		problems = append(problems, fmt.Sprintf("boss_hp: expected %d, got %.1f", *exp.BossHP, gs.BossHP))
	}
	if exp.Grade != nil {
		if gs.Result == nil {
			problems = append(problems, "grade: no result in response")
		} else if string(gs.Result.Grade) != *exp.Grade {
			problems = append(problems, fmt.Sprintf("grade: expected %s, got %s", *exp.Grade, gs.Result.Grade))
		}
	}

	text := ""
	if gs.Content != nil {
		text = gs.Content.Story
	}
	for _, s := range exp.StoryContains {
		if !strings.Contains(text, s) {
			problems = append(problems, fmt.Sprintf("story does not contain %q", s))
		}
	}
	for _, s := range exp.StoryNotContains {
		if strings.Contains(text, s) {
			problems = append(problems, fmt.Sprintf("story contains %q", s))
		}
	}
	if exp.MinQuizzes != nil && (gs.Content == nil || len(gs.Content.Quizzes) < *exp.MinQuizzes) {
		problems = append(problems, fmt.Sprintf("expected at least %d quizzes", *exp.MinQuizzes))
	}
	if exp.EmphasizesWords && len(story.EmphasizedWords(text)) == 0 {
		problems = append(problems, "story has no emphasized words")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (r *Runner) do(ctx context.Context, method, path string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger(format, args...)
	}
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
