// Package intent maps free-text utterances to assistant intents using an
// ordered regex pattern table with slot extraction.
package intent

import (
	"log"
	"strings"
	"sync"
	"time"
)

// Intent names. The planner switches on these.
const (
	Open            = "open_application"
	Close           = "close_application"
	SystemCommand   = "system_command"
	ManageWindows   = "manage_windows"
	SendEmail       = "send_email"
	CheckEmails     = "check_emails"
	ScheduleEvent   = "schedule_event"
	CheckCalendar   = "check_calendar"
	PostSocial      = "post_social"
	WebSearch       = "web_search"
	GetWeather      = "get_weather"
	GetNews         = "get_news"
	PlayMusic       = "play_music"
	ControlVolume   = "control_volume"
	StartListening  = "start_listening"
	StopListening   = "stop_listening"
	Status          = "aria_status"
	Help            = "help"
	Greeting        = "greeting"
	Farewell        = "farewell"
	GeneralQuestion = "general_question"
	Unknown         = "unknown"
)

// Result is the outcome of analyzing one utterance. It is produced fresh
// per call and not mutated afterwards.
type Result struct {
	Intent       string            `json:"intent"`
	Entities     map[string]string `json:"entities"`
	Confidence   float64           `json:"confidence"`
	OriginalText string            `json:"original_text"`
	ContextUsed  bool              `json:"context_used"`
}

// Exchange is one user/assistant turn, used for context resolution.
type Exchange struct {
	User      string    `json:"user,omitempty"`
	Assistant string    `json:"assistant,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Analyzer matches utterances against the static pattern table.
type Analyzer struct {
	mu            sync.Mutex
	recentResults map[string]cachedResult
	contextMemory []memoryEntry
}

type cachedResult struct {
	result    *Result
	timestamp time.Time
}

type memoryEntry struct {
	text      string
	intent    string
	timestamp time.Time
}

const (
	maxCachedResults = 100
	maxContextMemory = 50
)

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		recentResults: make(map[string]cachedResult),
	}
}

// Analyze returns the single best intent for text. It never fails: input
// matching no pattern yields a general_question result with low confidence.
func (a *Analyzer) Analyze(text string, history []Exchange) *Result {
	clean := Preprocess(text)
	log.Printf("🧠 [INTENT] Analyzing: %q", clean)

	// Pattern matching is deterministic, so repeat utterances come from
	// the cache. Short texts with history are exempt: those may resolve
	// differently through conversation context.
	contextEligible := len(history) > 0 && len(strings.Fields(clean)) <= 3
	if !contextEligible {
		if r := a.lookup(text); r != nil {
			log.Printf("✅ [INTENT] %s (%.2f) from cache", r.Intent, r.Confidence)
			return r
		}
	}

	var candidates []*Result

	if r := a.matchPatterns(clean, text); r != nil {
		candidates = append(candidates, r)
	}
	if r := a.resolveFromContext(clean, text, history); r != nil {
		candidates = append(candidates, r)
	}

	best := selectBest(candidates)
	if best == nil {
		best = &Result{
			Intent:       GeneralQuestion,
			Entities:     map[string]string{"query": clean},
			Confidence:   0.3,
			OriginalText: text,
		}
	}

	// Intent-specific and generic entity passes run regardless of how the
	// intent itself was resolved.
	extractEntities(clean, text, best.Intent, best.Entities)
	extractGenericEntities(clean, text, best.Entities)

	a.remember(text, best)
	log.Printf("✅ [INTENT] %s (%.2f) entities=%v", best.Intent, best.Confidence, best.Entities)
	return best
}

// Preprocess lowercases the text and strips the accents the pattern table
// was written without.
func Preprocess(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return accentReplacer.Replace(text)
}

var accentReplacer = strings.NewReplacer(
	"à", "a", "â", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

// matchPatterns walks the full table and keeps the highest-confidence
// match. Strictly-greater comparison means ties go to the first-declared
// intent.
func (a *Analyzer) matchPatterns(clean, original string) *Result {
	if clean == "" {
		return nil
	}

	var best *Result
	bestConfidence := 0.0

	for _, entry := range intentPatterns {
		for _, pattern := range entry.patterns {
			groups := pattern.FindStringSubmatch(clean)
			if groups == nil {
				continue
			}

			confidence := float64(len(groups[0])) / float64(len(clean)) * 1.2
			if confidence > 1.0 {
				confidence = 1.0
			}
			if confidence <= bestConfidence {
				continue
			}
			bestConfidence = confidence

			entities := make(map[string]string)
			if len(groups) > 1 && groups[1] != "" {
				switch entry.intent {
				case Open, Close:
					entities["app_name"] = strings.TrimSpace(groups[1])
				case SendEmail:
					entities["recipient"] = strings.TrimSpace(groups[1])
				case ScheduleEvent:
					entities["title"] = strings.TrimSpace(groups[1])
				case ManageWindows:
					entities["window_title"] = strings.TrimSpace(groups[1])
				}
			}

			best = &Result{
				Intent:       entry.intent,
				Entities:     entities,
				Confidence:   confidence,
				OriginalText: original,
			}
		}
	}

	return best
}

// resolveFromContext handles short replies that answer an open question
// from the assistant, e.g. a bare name after "a qui dois-je l'envoyer ?".
func (a *Analyzer) resolveFromContext(clean, original string, history []Exchange) *Result {
	if len(history) == 0 || len(strings.Fields(clean)) > 3 {
		return nil
	}

	start := 0
	if len(history) > 5 {
		start = len(history) - 5
	}
	recent := history[start:]

	for i := len(recent) - 1; i >= 0; i-- {
		msg := Preprocess(recent[i].Assistant)
		if !strings.Contains(msg, "?") {
			continue
		}
		switch {
		case strings.Contains(msg, "destinataire") || strings.Contains(msg, "a qui"):
			return &Result{
				Intent:       SendEmail,
				Entities:     map[string]string{"recipient": clean},
				Confidence:   0.8,
				OriginalText: original,
				ContextUsed:  true,
			}
		case strings.Contains(msg, "sujet"):
			return &Result{
				Intent:       SendEmail,
				Entities:     map[string]string{"subject": clean},
				Confidence:   0.8,
				OriginalText: original,
				ContextUsed:  true,
			}
		}
	}
	return nil
}

// selectBest applies the context bonus, clamps, and picks the winner.
// Slice order preserves declaration order on equal confidence.
func selectBest(candidates []*Result) *Result {
	var best *Result
	for _, c := range candidates {
		if c.ContextUsed {
			c.Confidence += 0.1
			if c.Confidence > 1.0 {
				c.Confidence = 1.0
			}
		}
		if best == nil || c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

// lookup returns a copy of a cached result. Context-derived entries are
// never served: their resolution depended on a particular conversation.
func (a *Analyzer) lookup(text string) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	cached, ok := a.recentResults[text]
	if !ok || cached.result.ContextUsed {
		return nil
	}
	out := *cached.result
	out.Entities = cloneEntities(cached.result.Entities)
	return &out
}

func cloneEntities(entities map[string]string) map[string]string {
	out := make(map[string]string, len(entities))
	for k, v := range entities {
		out[k] = v
	}
	return out
}

func (a *Analyzer) remember(text string, result *Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// The cache keeps its own copy so later mutation of the returned
	// entities cannot leak into cached answers.
	stored := *result
	stored.Entities = cloneEntities(result.Entities)
	a.recentResults[text] = cachedResult{result: &stored, timestamp: time.Now()}
	if len(a.recentResults) > maxCachedResults {
		var oldestKey string
		var oldest time.Time
		for k, v := range a.recentResults {
			if oldestKey == "" || v.timestamp.Before(oldest) {
				oldestKey = k
				oldest = v.timestamp
			}
		}
		delete(a.recentResults, oldestKey)
	}

	a.contextMemory = append(a.contextMemory, memoryEntry{
		text:      text,
		intent:    result.Intent,
		timestamp: time.Now(),
	})
	if len(a.contextMemory) > maxContextMemory {
		a.contextMemory = a.contextMemory[len(a.contextMemory)-maxContextMemory:]
	}
}

// Suggestions returns command completions for a partial input.
func (a *Analyzer) Suggestions(partial string) []string {
	common := []string{
		"ouvre chrome",
		"verifie mes emails",
		"quelle est la meteo",
		"programme un rendez-vous",
		"arrete d'ecouter",
		"aide-moi",
	}
	partial = Preprocess(partial)
	var out []string
	for _, c := range common {
		if partial != "" && strings.Contains(c, partial) {
			out = append(out, c)
		}
		if len(out) == 5 {
			break
		}
	}
	return out
}
