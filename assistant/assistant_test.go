package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"aria/config"
	"aria/eventbus"
	"aria/intent"
	"aria/speech"
	"aria/task"
)

// recorderBus captures published events for assertions.
type recorderBus struct {
	mu     sync.Mutex
	events []eventbus.AssistantEvent
}

func (r *recorderBus) Publish(ctx context.Context, evt eventbus.AssistantEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorderBus) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func newTestAssistant(t *testing.T, bus Bus) (*Assistant, *task.Executor) {
	t.Helper()
	executor := task.NewExecutor()
	convo := NewConversation(nil, 20)
	a := New(config.Default(), executor, nil, convo, bus)
	return a, executor
}

func TestProcessCommandRunsTask(t *testing.T) {
	bus := &recorderBus{}
	a, executor := newTestAssistant(t, bus)

	opened := ""
	executor.Register(task.ActionOpenApplication, func(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
		opened, _ = params["app_name"].(string)
		return &task.ActionResult{Success: true, Message: "ok"}, nil
	})

	resp := a.ProcessCommand(context.Background(), "ouvre chrome", "test")

	if resp.Intent != intent.Open {
		t.Fatalf("expected %s, got %s", intent.Open, resp.Intent)
	}
	if opened != "chrome" {
		t.Errorf("handler saw app_name=%q", opened)
	}
	if resp.Task == nil || !resp.Task.Success {
		t.Fatalf("expected successful task, got %+v", resp.Task)
	}
	if !strings.Contains(resp.Text, "Chrome") {
		t.Errorf("reply should name the application, got %q", resp.Text)
	}

	want := []string{
		eventbus.TypeCommandReceived,
		eventbus.TypeIntentResolved,
		eventbus.TypeTaskStarted,
		eventbus.TypeTaskFinished,
		eventbus.TypeResponseSpoken,
	}
	got := bus.types()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestProcessCommandFailedTask(t *testing.T) {
	a, executor := newTestAssistant(t, &recorderBus{})
	executor.Register(task.ActionOpenApplication, func(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
		return &task.ActionResult{Success: false, Message: "introuvable"}, nil
	})

	resp := a.ProcessCommand(context.Background(), "ouvre chrome", "test")
	if resp.Task == nil || resp.Task.Success {
		t.Fatal("expected failed task")
	}
	if !strings.Contains(resp.Text, "pas reussi") {
		t.Errorf("reply should report the failure, got %q", resp.Text)
	}
}

func TestControlIntentsSkipPlanner(t *testing.T) {
	bus := &recorderBus{}
	a, _ := newTestAssistant(t, bus)

	resp := a.ProcessCommand(context.Background(), "bonjour", "test")
	if resp.Intent != intent.Greeting {
		t.Fatalf("expected greeting, got %s", resp.Intent)
	}
	if resp.Task != nil {
		t.Error("greeting must not run a task")
	}
	for _, typ := range bus.types() {
		if typ == eventbus.TypeTaskStarted {
			t.Error("no task event expected for a control intent")
		}
	}
}

func TestStopAndStartListening(t *testing.T) {
	a, _ := newTestAssistant(t, &recorderBus{})

	if !a.Listening() {
		t.Fatal("assistant should start in listening state")
	}
	a.ProcessCommand(context.Background(), "arrête d'écouter", "test")
	if a.Listening() {
		t.Fatal("expected listening disabled")
	}
	a.ProcessCommand(context.Background(), "aria écoute", "test")
	if !a.Listening() {
		t.Fatal("expected listening re-enabled")
	}
}

func TestUnplannableIntentAnswersWithoutExecutor(t *testing.T) {
	a, _ := newTestAssistant(t, &recorderBus{})

	// No handler registered anywhere: an unplannable intent must still
	// produce a reply and no task result.
	resp := a.ProcessCommand(context.Background(), "zzz qqq www", "test")
	if resp.Task != nil {
		t.Errorf("expected no task, got %+v", resp.Task)
	}
	if resp.Text == "" {
		t.Error("expected a fallback reply")
	}
}

func TestConversationFeedsContext(t *testing.T) {
	a, executor := newTestAssistant(t, &recorderBus{})
	sent := map[string]interface{}{}
	executor.Register(task.ActionEmail, func(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
		sent = params
		return &task.ActionResult{Success: true, Message: "ok"}, nil
	})

	// The reply to the recipient question is resolved from conversation
	// context into a send_email intent.
	a.convo.Add(context.Background(), "envoie un email", "A qui dois-je envoyer cet email ?")
	resp := a.ProcessCommand(context.Background(), "jean@example.com", "test")

	if resp.Intent != intent.SendEmail {
		t.Fatalf("expected %s, got %s", intent.SendEmail, resp.Intent)
	}
	if sent["recipient"] != "jean@example.com" {
		t.Errorf("recipient not carried into the plan: %v", sent)
	}
}

// fixedTranscriber returns a canned transcription, or an error when text
// is empty.
type fixedTranscriber struct {
	text string
}

func (f *fixedTranscriber) Name() string { return "fixed" }

func (f *fixedTranscriber) Transcribe(ctx context.Context, audioPath string) (*speech.Transcription, error) {
	if f.text == "" {
		return nil, fmt.Errorf("no speech detected")
	}
	return &speech.Transcription{Text: f.text, Confidence: 0.9, Backend: f.Name()}, nil
}

func TestProcessAudioRunsVoicePipeline(t *testing.T) {
	a, _ := newTestAssistant(t, &recorderBus{})
	a.SetTranscriber(&fixedTranscriber{text: "aria, bonjour"})

	resp, err := a.ProcessAudio(context.Background(), "utterance.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil || resp.Intent != intent.Greeting {
		t.Fatalf("expected greeting response, got %+v", resp)
	}
}

func TestProcessAudioWithoutTranscriber(t *testing.T) {
	a, _ := newTestAssistant(t, &recorderBus{})
	if _, err := a.ProcessAudio(context.Background(), "utterance.wav"); err == nil {
		t.Fatal("expected error without a transcription backend")
	}
}

func TestProcessAudioTranscriptionFailure(t *testing.T) {
	a, _ := newTestAssistant(t, &recorderBus{})
	a.SetTranscriber(&fixedTranscriber{})
	if _, err := a.ProcessAudio(context.Background(), "utterance.wav"); err == nil {
		t.Fatal("expected transcription error to propagate")
	}
}

func TestProcessAudioIgnoredWhilePaused(t *testing.T) {
	a, _ := newTestAssistant(t, &recorderBus{})
	a.SetTranscriber(&fixedTranscriber{text: "ouvre chrome"})

	a.ProcessCommand(context.Background(), "arrête d'écouter", "test")
	resp, err := a.ProcessAudio(context.Background(), "utterance.wav")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != nil {
		t.Fatalf("audio without wake word must be ignored while paused, got %+v", resp)
	}
}

func TestParseEventTimeTokens(t *testing.T) {
	cases := []struct {
		date string
		days int
	}{
		{"today", 0},
		{"demain", 1},
		{"tomorrow", 1},
		{"apres-demain", 2},
		{"day_after_tomorrow", 2},
	}
	for _, tc := range cases {
		got := parseEventTime(tc.date, "14h30")
		want := time.Now().AddDate(0, 0, tc.days)
		if got.YearDay() != want.YearDay() || got.Year() != want.Year() {
			t.Errorf("%s: scheduled on %s, expected %s",
				tc.date, got.Format("2006-01-02"), want.Format("2006-01-02"))
		}
		if got.Hour() != 14 || got.Minute() != 30 {
			t.Errorf("%s: time of day %02d:%02d, expected 14:30", tc.date, got.Hour(), got.Minute())
		}
	}
}

func TestStatusSnapshot(t *testing.T) {
	a, executor := newTestAssistant(t, &recorderBus{})
	executor.Register(task.ActionOpenApplication, func(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
		return &task.ActionResult{Success: true}, nil
	})

	a.ProcessCommand(context.Background(), "bonjour", "test")
	status := a.Status()

	if status["commands_processed"].(int) != 1 {
		t.Errorf("expected 1 processed command, got %v", status["commands_processed"])
	}
	if status["listening"].(bool) != true {
		t.Errorf("expected listening=true, got %v", status["listening"])
	}
}
