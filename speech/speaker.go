package speech

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Speaker converts text to audible speech.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Name() string
}

// SpeakerChain serializes speech output and falls back to the next
// backend when one fails. Utterances never overlap.
type SpeakerChain struct {
	mu       sync.Mutex
	backends []Speaker
}

func NewSpeakerChain(backends ...Speaker) *SpeakerChain {
	return &SpeakerChain{backends: backends}
}

func (c *SpeakerChain) Name() string { return "chain" }

func (c *SpeakerChain) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.backends) == 0 {
		return fmt.Errorf("no speech backend configured")
	}
	var lastErr error
	for _, backend := range c.backends {
		if err := backend.Speak(ctx, text); err != nil {
			log.Printf("🔊 [SPEECH] Backend %s failed: %v", backend.Name(), err)
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("all speech backends failed: %v", lastErr)
}

// OpenAISpeaker synthesizes speech through the OpenAI TTS API and plays
// the result with a local audio player.
type OpenAISpeaker struct {
	client openai.Client
	voice  openai.AudioSpeechNewParamsVoice
	player string
}

// ttsVoices maps configured voice names to API constants.
var ttsVoices = map[string]openai.AudioSpeechNewParamsVoice{
	"alloy":   openai.AudioSpeechNewParamsVoiceAlloy,
	"ash":     openai.AudioSpeechNewParamsVoiceAsh,
	"ballad":  openai.AudioSpeechNewParamsVoiceBallad,
	"coral":   openai.AudioSpeechNewParamsVoiceCoral,
	"echo":    openai.AudioSpeechNewParamsVoiceEcho,
	"sage":    openai.AudioSpeechNewParamsVoiceSage,
	"shimmer": openai.AudioSpeechNewParamsVoiceShimmer,
	"verse":   openai.AudioSpeechNewParamsVoiceVerse,
	"marin":   openai.AudioSpeechNewParamsVoiceMarin,
	"cedar":   openai.AudioSpeechNewParamsVoiceCedar,
}

// NewOpenAISpeaker builds the cloud TTS backend. Unknown voice names fall
// back to alloy.
func NewOpenAISpeaker(apiKey, voice string) *OpenAISpeaker {
	v, ok := ttsVoices[strings.ToLower(voice)]
	if !ok {
		v = openai.AudioSpeechNewParamsVoiceAlloy
	}
	return &OpenAISpeaker{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		voice:  v,
		player: "ffplay",
	}
}

func (s *OpenAISpeaker) Name() string { return "openai-tts" }

func (s *OpenAISpeaker) Speak(ctx context.Context, text string) error {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModelTTS1,
		Input: text,
		Voice: s.voice,
	})
	if err != nil {
		return fmt.Errorf("tts synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp("", "aria-tts-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, s.player, "-nodisp", "-autoexit", "-loglevel", "quiet", tmp.Name())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("audio playback failed: %w", err)
	}
	return nil
}

// EspeakSpeaker uses the espeak-ng binary. Low quality but works offline
// with no API key.
type EspeakSpeaker struct {
	voice string
	speed string
}

func NewEspeakSpeaker(voice string) *EspeakSpeaker {
	if voice == "" {
		voice = "fr"
	}
	return &EspeakSpeaker{voice: voice, speed: "160"}
}

func (s *EspeakSpeaker) Name() string { return "espeak-ng" }

func (s *EspeakSpeaker) Speak(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, "espeak-ng", "-v", s.voice, "-s", s.speed, text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("espeak-ng failed: %w", err)
	}
	return nil
}
