// Package speech provides speech-to-text and text-to-speech for the assistant.
//
// Both directions are backend chains: the preferred backend is tried first
// and the next one takes over on error, so the assistant keeps working
// offline with degraded quality.
package speech

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Transcription is the result of converting audio to text.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Backend    string  `json:"backend"`
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Transcription, error)
	Name() string
}

// TranscriberChain tries each backend in order and returns the first success.
type TranscriberChain struct {
	backends []Transcriber
}

func NewTranscriberChain(backends ...Transcriber) *TranscriberChain {
	return &TranscriberChain{backends: backends}
}

func (c *TranscriberChain) Name() string { return "chain" }

func (c *TranscriberChain) Transcribe(ctx context.Context, audioPath string) (*Transcription, error) {
	if len(c.backends) == 0 {
		return nil, fmt.Errorf("no transcription backend configured")
	}
	var lastErr error
	for _, backend := range c.backends {
		result, err := backend.Transcribe(ctx, audioPath)
		if err != nil {
			log.Printf("🎤 [SPEECH] Backend %s failed: %v", backend.Name(), err)
			lastErr = err
			continue
		}
		return result, nil
	}
	return nil, fmt.Errorf("all transcription backends failed: %v", lastErr)
}

// WhisperTranscriber uses the OpenAI Whisper API.
type WhisperTranscriber struct {
	client   openai.Client
	language string
}

func NewWhisperTranscriber(apiKey, language string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		language: language,
	}
}

func (w *WhisperTranscriber) Name() string { return "whisper" }

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (*Transcription, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	params := openai.AudioTranscriptionNewParams{
		Model: openai.AudioModelWhisper1,
		File:  f,
	}
	if w.language != "" {
		params.Language = openai.String(w.language)
	}
	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	return &Transcription{
		Text:       text,
		Confidence: estimateConfidence(text),
		Backend:    w.Name(),
	}, nil
}

// CommandTranscriber shells out to a local speech-to-text command that
// takes the audio path as its last argument and prints text on stdout.
// Used as the offline fallback behind Whisper.
type CommandTranscriber struct {
	command string
	args    []string
}

func NewCommandTranscriber(command string, args ...string) *CommandTranscriber {
	return &CommandTranscriber{command: command, args: args}
}

func (c *CommandTranscriber) Name() string { return c.command }

func (c *CommandTranscriber) Transcribe(ctx context.Context, audioPath string) (*Transcription, error) {
	args := append(append([]string{}, c.args...), audioPath)
	out, err := exec.CommandContext(ctx, c.command, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("local transcription command failed: %w", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return nil, fmt.Errorf("local transcription produced no text")
	}
	return &Transcription{
		Text:       text,
		Confidence: estimateConfidence(text) * 0.8,
		Backend:    c.Name(),
	}, nil
}

// estimateConfidence is a rough heuristic: very short or glyph-heavy
// transcriptions are likely recognition noise.
func estimateConfidence(text string) float64 {
	if text == "" {
		return 0
	}
	words := strings.Fields(text)
	conf := 0.5 + 0.1*float64(len(words))
	if conf > 0.95 {
		conf = 0.95
	}
	alpha := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' || r == '\'' {
			alpha++
		}
	}
	ratio := float64(alpha) / float64(len(text))
	if ratio < 0.6 {
		conf *= ratio
	}
	return conf
}

// DetectWakeWord reports whether the text begins with one of the wake
// words, and returns the remaining command text.
func DetectWakeWord(text string, wakeWords []string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, wake := range wakeWords {
		wake = strings.ToLower(wake)
		if lower == wake {
			return "", true
		}
		if strings.HasPrefix(lower, wake+" ") || strings.HasPrefix(lower, wake+",") {
			rest := strings.TrimLeft(lower[len(wake):], " ,")
			return rest, true
		}
	}
	return "", false
}
