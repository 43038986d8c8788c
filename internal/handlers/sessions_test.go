package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/internal/game"
	"github.com/jwebster45206/word-dungeon/internal/report"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/storage"
)

const chapterJSON = `{"title":"용기의 숲","story":"철수는 **용기**를 내어 **모험**을 떠났다.","quizzes":[
{"question":"철수가 낸 것은 ( ? )","options":["용기","모험","잠"],"correctAnswerIndex":0},
{"question":"철수가 떠난 것은 ( ? )","options":["용기","모험","잠"],"correctAnswerIndex":1},
{"question":"철수가 하지 않은 것은 ( ? )","options":["용기","모험","잠"],"correctAnswerIndex":2}]}`

type testServer struct {
	handler *SessionHandler
	storage *storage.MockStorage
	llm     *services.MockLLMAPI
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
	mockStorage := storage.NewMockStorage()
	mockLLM := services.NewMockLLMAPI()
	mockLLM.SetChatResponse(chapterJSON)
	processor := game.NewSessionProcessor(mockStorage, services.NewContentGenerator(mockLLM, logger), logger)
	return &testServer{
		handler: NewSessionHandler(processor, report.NewRenderer(""), logger),
		storage: mockStorage,
		llm:     mockLLM,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) create(t *testing.T) uuid.UUID {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/v1/sessions", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.ID
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

const chulsooBody = `{"name":"철수","genre":"FANTASY","words":["용기","모험",""]}`

func TestSessionHandler_Create(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/v1/sessions", "")

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}
	resp := decodeSession(t, rr)
	if resp.ID == uuid.Nil || resp.Phase != state.PhaseInput || resp.BossHP != boss.MaxHP {
		t.Errorf("Unexpected new session %+v", resp.GameState)
	}
	if rr.Header().Get("Location") != "/v1/sessions/"+resp.ID.String() {
		t.Errorf("Unexpected Location header %s", rr.Header().Get("Location"))
	}
}

func TestSessionHandler_PerfectRun(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)
	base := "/v1/sessions/" + id.String()

	rr := s.do(t, http.MethodPost, base+"/start", chulsooBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeSession(t, rr)
	if resp.Phase != state.PhaseStory || resp.Chapter != 1 || len(resp.Content.Quizzes) != 3 {
		t.Fatalf("Unexpected session after start %+v", resp.GameState)
	}
	if len(resp.Words()) != 2 {
		t.Errorf("Expected blank word dropped, got %v", resp.Words())
	}
	emphasized := 0
	for _, seg := range resp.Segments {
		if seg.Emphasized {
			emphasized++
		}
	}
	if emphasized != 2 {
		t.Errorf("Expected 2 emphasized segments, got %d", emphasized)
	}

	if rr := s.do(t, http.MethodPost, base+"/boss", ""); rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for boss, got %d", rr.Code)
	}

	var last AnswerResponse
	for i, option := range []int{0, 1, 2} {
		rr := s.do(t, http.MethodPost, base+"/answer", fmt.Sprintf(`{"option":%d}`, option))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for answer %d, got %d: %s", i, rr.Code, rr.Body.String())
		}
		if err := json.NewDecoder(rr.Body).Decode(&last); err != nil {
			t.Fatalf("Failed to decode answer: %v", err)
		}
		if !last.Outcome.Correct {
			t.Errorf("Expected answer %d to be correct", i)
		}
	}

	if last.Session.Phase != state.PhaseResult || last.Session.Result == nil {
		t.Fatalf("Expected result phase, got %+v", last.Session.GameState)
	}
	if last.Session.Result.Grade != boss.GradeS || last.Session.QuizScore != 3 || last.Session.BossHP != 0 {
		t.Errorf("Expected grade S with 3/3 and HP 0, got %+v", last.Session.Result)
	}

	rr = s.do(t, http.MethodGet, base+"/report", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("Expected PDF report, got %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "%PDF-") {
		t.Error("Expected PDF body")
	}

	rr = s.do(t, http.MethodPost, base+"/restart", "")
	resp = decodeSession(t, rr)
	if rr.Code != http.StatusOK || resp.Phase != state.PhaseInput || resp.ID != id || resp.Input != nil {
		t.Errorf("Expected restart to input screen, got %d %+v", rr.Code, resp.GameState)
	}
}

func TestSessionHandler_BossWithoutQuestions(t *testing.T) {
	s := newTestServer(t)
	s.llm.SetChatResponse("not a chapter")
	id := s.create(t)
	base := "/v1/sessions/" + id.String()

	rr := s.do(t, http.MethodPost, base+"/start", chulsooBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeSession(t, rr); !resp.Content.Fallback || len(resp.Content.Quizzes) != 0 {
		t.Fatalf("Expected fallback chapter without quizzes, got %+v", resp.Content)
	}

	rr = s.do(t, http.MethodPost, base+"/boss", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for boss, got %d", rr.Code)
	}
	resp := decodeSession(t, rr)
	if resp.Phase != state.PhaseResult {
		t.Fatalf("Expected RESULT straight after boss, got %s", resp.Phase)
	}
	if resp.Result == nil || resp.Result.Grade != boss.GradeC || resp.Result.Total != 0 {
		t.Errorf("Unexpected result %+v", resp.Result)
	}

	if rr := s.do(t, http.MethodPost, base+"/answer", `{"option":0}`); rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for answer after result, got %d", rr.Code)
	}
}

func TestSessionHandler_OneOfThree(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)
	base := "/v1/sessions/" + id.String()

	s.do(t, http.MethodPost, base+"/start", chulsooBody)
	s.do(t, http.MethodPost, base+"/boss", "")
	var last AnswerResponse
	for i := 0; i < 3; i++ {
		rr := s.do(t, http.MethodPost, base+"/answer", `{"option":0}`)
		if err := json.NewDecoder(rr.Body).Decode(&last); err != nil {
			t.Fatalf("Failed to decode answer: %v", err)
		}
	}

	if last.Session.QuizScore != 1 || last.Session.Result.Grade != boss.GradeC {
		t.Errorf("Expected score 1 and grade C, got %+v", last.Session.Result)
	}
}

func TestSessionHandler_Continue(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)
	base := "/v1/sessions/" + id.String()
	s.do(t, http.MethodPost, base+"/start", chulsooBody)

	rr := s.do(t, http.MethodPost, base+"/continue", `{"action":"동굴 안으로 들어간다"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if resp := decodeSession(t, rr); resp.Chapter != 2 {
		t.Errorf("Expected chapter 2, got %d", resp.Chapter)
	}

	rr = s.do(t, http.MethodPost, base+"/continue", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected empty body to use default action, got %d", rr.Code)
	}
	_, calls := s.llm.GetCalls()
	if !strings.Contains(calls[len(calls)-1].Messages[1].Content, state.DefaultAction) {
		t.Error("Expected default action in prompt")
	}

	rr = s.do(t, http.MethodPost, base+"/continue", `{"action":"`+strings.Repeat("가", 201)+`"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for long action, got %d", rr.Code)
	}
}

func TestSessionHandler_GenerationFailure(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)
	base := "/v1/sessions/" + id.String()
	s.llm.SetChatError(errors.New("upstream unavailable"))

	rr := s.do(t, http.MethodPost, base+"/start", chulsooBody)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Session == nil || resp.Session.Phase != state.PhaseInput || resp.Session.Notice != state.NoticeInitialFailed {
		t.Errorf("Expected rolled-back session in error, got %+v", resp.Session)
	}

	rr = s.do(t, http.MethodGet, base, "")
	if got := decodeSession(t, rr); got.Phase != state.PhaseInput {
		t.Errorf("Expected stored session on input screen, got %s", got.Phase)
	}
}

func TestSessionHandler_Errors(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)
	base := "/v1/sessions/" + id.String()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"invalid id", http.MethodGet, "/v1/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/v1/sessions/" + uuid.New().String(), "", http.StatusNotFound},
		{"unknown action", http.MethodPost, base + "/dance", "", http.StatusNotFound},
		{"too deep", http.MethodGet, base + "/report/extra", "", http.StatusNotFound},
		{"list not allowed", http.MethodGet, "/v1/sessions", "", http.StatusMethodNotAllowed},
		{"wrong method", http.MethodGet, base + "/start", "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, base + "/start", "{", http.StatusBadRequest},
		{"blank name", http.MethodPost, base + "/start", `{"name":" ","words":["용기"]}`, http.StatusBadRequest},
		{"unknown genre", http.MethodPost, base + "/start", `{"name":"철수","genre":"WESTERN","words":["용기"]}`, http.StatusBadRequest},
		{"boss before story", http.MethodPost, base + "/boss", "", http.StatusConflict},
		{"answer before quiz", http.MethodPost, base + "/answer", `{"option":0}`, http.StatusConflict},
		{"answer without option", http.MethodPost, base + "/answer", `{}`, http.StatusBadRequest},
		{"continue before story", http.MethodPost, base + "/continue", "", http.StatusConflict},
		{"restart before result", http.MethodPost, base + "/restart", "", http.StatusConflict},
		{"report before result", http.MethodGet, base + "/report", "", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, tt.method, tt.path, tt.body)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Response body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("Expected error body, got %s", rr.Body.String())
			}
		})
	}

	// None of the rejected events changed the session
	rr := s.do(t, http.MethodGet, base, "")
	if got := decodeSession(t, rr); got.Version != 0 || got.Phase != state.PhaseInput {
		t.Errorf("Expected untouched session, got version %d phase %s", got.Version, got.Phase)
	}
}

func TestSessionHandler_ValidationField(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)

	rr := s.do(t, http.MethodPost, "/v1/sessions/"+id.String()+"/start", `{"name":"철수","words":[" ",""]}`)

	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Field != "words" {
		t.Errorf("Expected field words, got %q", resp.Field)
	}
}

func TestSessionHandler_Delete(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t)
	path := "/v1/sessions/" + id.String()

	if rr := s.do(t, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}
	if s.storage.Count() != 0 {
		t.Error("Expected session removed from storage")
	}
	if rr := s.do(t, http.MethodDelete, path, ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrSessionBusy, http.StatusConflict},
		{state.ErrStaleTicket, http.StatusConflict},
		{report.ErrNotFinished, http.StatusConflict},
		{services.ErrGenerationFailed, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
