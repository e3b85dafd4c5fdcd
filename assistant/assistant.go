// Package assistant is the ARIA decision layer: it resolves text commands
// into intents, plans and executes tasks, and produces spoken replies.
package assistant

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"aria/config"
	"aria/eventbus"
	"aria/intent"
	"aria/speech"
	"aria/task"
)

// Bus is the event publishing surface the assistant needs. Satisfied by
// eventbus.NATSBus; tests use a recorder.
type Bus interface {
	Publish(ctx context.Context, evt eventbus.AssistantEvent) error
}

// Response is what one processed command yields.
type Response struct {
	Text       string       `json:"text"`
	Intent     string       `json:"intent"`
	Confidence float64      `json:"confidence"`
	Entities   map[string]string `json:"entities,omitempty"`
	Task       *task.Result `json:"task,omitempty"`
}

// Assistant ties the analyzer, planner, executor and controllers
// together.
type Assistant struct {
	cfg      *config.Config
	analyzer *intent.Analyzer
	executor *task.Executor
	history  *task.History
	convo    *Conversation
	bus      Bus
	speaker  speech.Speaker
	listener speech.Transcriber

	mu        sync.Mutex
	listening bool
	started   time.Time
	processed int
}

// New assembles an assistant. bus and speaker may be nil.
func New(cfg *config.Config, executor *task.Executor, history *task.History, convo *Conversation, bus Bus) *Assistant {
	return &Assistant{
		cfg:       cfg,
		analyzer:  intent.NewAnalyzer(),
		executor:  executor,
		history:   history,
		convo:     convo,
		bus:       bus,
		listening: true,
		started:   time.Now(),
	}
}

// SetSpeaker attaches a text-to-speech backend for spoken replies.
func (a *Assistant) SetSpeaker(s speech.Speaker) { a.speaker = s }

// SetTranscriber attaches a speech-to-text backend for audio commands.
func (a *Assistant) SetTranscriber(t speech.Transcriber) { a.listener = t }

// Listening reports whether voice commands are currently accepted.
func (a *Assistant) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// ProcessCommand runs the full pipeline for one text command.
func (a *Assistant) ProcessCommand(ctx context.Context, text, channel string) *Response {
	a.mu.Lock()
	a.processed++
	a.mu.Unlock()

	a.publish(ctx, eventbus.TypeCommandReceived, channel, text, "", nil)

	history := a.convo.Recent(ctx, 10)
	res := a.analyzer.Analyze(text, history)
	log.Printf("🧠 [ASSISTANT] Intent %s (%.2f) for %q", res.Intent, res.Confidence, text)

	a.publish(ctx, eventbus.TypeIntentResolved, channel, text, res.Intent, map[string]interface{}{
		"confidence": res.Confidence,
		"entities":   res.Entities,
	})

	response := &Response{
		Intent:     res.Intent,
		Confidence: res.Confidence,
		Entities:   res.Entities,
	}

	if a.handleControlIntent(res, response) {
		a.finish(ctx, channel, text, response)
		return response
	}

	steps := task.PlanSteps(res)
	if len(steps) == 0 {
		response.Text = respond(res, nil)
		a.finish(ctx, channel, text, response)
		return response
	}

	a.publish(ctx, eventbus.TypeTaskStarted, channel, text, res.Intent, map[string]interface{}{
		"steps": len(steps),
	})

	result := a.executor.Execute(ctx, steps)
	response.Task = result
	response.Text = respond(res, result)

	if a.history != nil {
		if err := a.history.Append(ctx, text, result); err != nil {
			log.Printf("⚠️ [ASSISTANT] Failed to store task history: %v", err)
		}
	}
	a.publish(ctx, eventbus.TypeTaskFinished, channel, text, res.Intent, map[string]interface{}{
		"task_id": result.ID,
		"success": result.Success,
	})

	a.finish(ctx, channel, text, response)
	return response
}

// ProcessAudio transcribes a recorded utterance and feeds it through the
// voice pipeline. A nil response means the audio carried no wake word
// while the assistant was paused.
func (a *Assistant) ProcessAudio(ctx context.Context, audioPath string) (*Response, error) {
	if a.listener == nil {
		return nil, fmt.Errorf("no transcription backend configured")
	}
	tr, err := a.listener.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	log.Printf("🎤 [ASSISTANT] Heard %q (%.2f via %s)", tr.Text, tr.Confidence, tr.Backend)
	return a.ProcessVoice(ctx, tr), nil
}

// ProcessVoice handles one transcription: wake word gating, listening
// state, then the normal command pipeline plus spoken output.
func (a *Assistant) ProcessVoice(ctx context.Context, tr *speech.Transcription) *Response {
	command, woke := speech.DetectWakeWord(tr.Text, a.cfg.WakeWords)
	if !woke && !a.Listening() {
		return nil
	}
	if woke && command == "" {
		resp := &Response{Intent: intent.StartListening, Text: "Oui ?"}
		a.speak(ctx, resp.Text)
		return resp
	}
	if command == "" {
		command = tr.Text
	}

	resp := a.ProcessCommand(ctx, command, "voice")
	a.speak(ctx, resp.Text)
	return resp
}

// handleControlIntent answers assistant-level intents that never reach
// the planner. Returns true when the intent was consumed.
func (a *Assistant) handleControlIntent(res *intent.Result, response *Response) bool {
	switch res.Intent {
	case intent.StartListening:
		a.mu.Lock()
		a.listening = true
		a.mu.Unlock()
	case intent.StopListening:
		a.mu.Lock()
		a.listening = false
		a.mu.Unlock()
	case intent.Status, intent.Help, intent.Greeting, intent.Farewell:
	default:
		return false
	}
	response.Text = respond(res, nil)
	return true
}

func (a *Assistant) finish(ctx context.Context, channel, text string, response *Response) {
	a.convo.Add(ctx, text, response.Text)
	a.publish(ctx, eventbus.TypeResponseSpoken, channel, response.Text, response.Intent, nil)
}

func (a *Assistant) speak(ctx context.Context, text string) {
	if a.speaker == nil || text == "" {
		return
	}
	if err := a.speaker.Speak(ctx, text); err != nil {
		log.Printf("🔊 [ASSISTANT] Speech output failed: %v", err)
	}
}

func (a *Assistant) publish(ctx context.Context, eventType, channel, text, intentName string, meta map[string]interface{}) {
	if a.bus == nil {
		return
	}
	now := time.Now()
	evt := eventbus.AssistantEvent{
		EventID:   eventbus.NewEventID("evt_", now),
		Source:    "assistant",
		Type:      eventType,
		Timestamp: now,
		Context:   eventbus.EventContext{Channel: channel},
		Payload: eventbus.EventPayload{
			Text:     text,
			Intent:   intentName,
			Metadata: meta,
		},
	}
	if err := a.bus.Publish(ctx, evt); err != nil {
		log.Printf("⚠️ [ASSISTANT] Event publish failed: %v", err)
	}
}

// Status summarizes the assistant state for the HTTP API.
func (a *Assistant) Status() map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return map[string]interface{}{
		"app":                a.cfg.AppName,
		"version":            a.cfg.Version,
		"listening":          a.listening,
		"uptime_seconds":     int(time.Since(a.started).Seconds()),
		"commands_processed": a.processed,
		"actions":            a.executor.Actions(),
	}
}

// Suggestions proxies intent auto-completion for the CLI and API.
func (a *Assistant) Suggestions(partial string) []string {
	return a.analyzer.Suggestions(partial)
}
