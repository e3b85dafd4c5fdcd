package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aria/assistant"
	"aria/config"
	"aria/intent"
	"aria/speech"
	"aria/task"
)

func newTestServer(t *testing.T) (*Server, *task.Executor) {
	t.Helper()
	executor := task.NewExecutor()
	convo := assistant.NewConversation(nil, 10)
	a := assistant.New(config.Default(), executor, nil, convo, nil)
	return New(":0", a, nil), executor
}

func TestHandleCommand(t *testing.T) {
	s, executor := newTestServer(t)
	executor.Register(task.ActionOpenApplication, func(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
		return &task.ActionResult{Success: true, Message: "ok"}, nil
	})

	body := bytes.NewBufferString(`{"text": "ouvre chrome"}`)
	req := httptest.NewRequest("POST", "/api/v1/command", body)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp assistant.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Intent != intent.Open {
		t.Errorf("expected intent %s, got %s", intent.Open, resp.Intent)
	}
	if resp.Task == nil || !resp.Task.Success {
		t.Errorf("expected a successful task in the response")
	}
}

func TestHandleCommandRejectsEmptyText(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/command", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleCommandRejectsBadJSON(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/command", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

// cannedTranscriber stands in for the speech-to-text chain.
type cannedTranscriber struct {
	text string
}

func (c *cannedTranscriber) Name() string { return "canned" }

func (c *cannedTranscriber) Transcribe(ctx context.Context, audioPath string) (*speech.Transcription, error) {
	return &speech.Transcription{Text: c.text, Confidence: 0.9, Backend: c.Name()}, nil
}

func TestHandleVoice(t *testing.T) {
	executor := task.NewExecutor()
	convo := assistant.NewConversation(nil, 10)
	a := assistant.New(config.Default(), executor, nil, convo, nil)
	a.SetTranscriber(&cannedTranscriber{text: "aria, bonjour"})
	s := New(":0", a, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("RIFF fake audio"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp assistant.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Intent != intent.Greeting {
		t.Errorf("expected intent %s, got %s", intent.Greeting, resp.Intent)
	}
}

func TestHandleVoiceRequiresAudio(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/voice", strings.NewReader("not a form"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleVoiceWithoutTranscriber(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("RIFF fake audio"))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if _, ok := status["listening"]; !ok {
		t.Error("status should report the listening state")
	}
}

func TestHandleIntents(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/intents", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Intents []string `json:"intents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	found := false
	for _, name := range body.Intents {
		if name == intent.Open {
			found = true
		}
	}
	if !found {
		t.Errorf("intent list missing %s: %v", intent.Open, body.Intents)
	}
}

func TestHandleHistoryWithoutStore(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}
