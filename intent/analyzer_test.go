package intent

import (
	"reflect"
	"testing"
	"time"
)

func TestAnalyzeOpenApplication(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze("ouvre firefox", nil)

	if res.Intent != Open {
		t.Fatalf("expected %s, got %s", Open, res.Intent)
	}
	if res.Entities["app_name"] != "firefox" {
		t.Errorf("expected app_name=firefox, got %q", res.Entities["app_name"])
	}
	if res.Confidence < 0.8 || res.Confidence > 1.0 {
		t.Errorf("confidence out of range: %f", res.Confidence)
	}
}

func TestAnalyzeIntents(t *testing.T) {
	tests := []struct {
		text   string
		intent string
		key    string
		value  string
	}{
		{"ouvre chrome", Open, "app_name", "chrome"},
		{"ferme spotify", Close, "app_name", "spotify"},
		{"éteins l'ordinateur", SystemCommand, "command_type", "shutdown"},
		{"verrouille l'écran", SystemCommand, "command_type", "lock"},
		{"cherche la météo sur google", WebSearch, "query", "la meteo"},
		{"vérifie mes emails", CheckEmails, "", ""},
		{"vérifie mon calendrier", CheckCalendar, "", ""},
		{"arrête d'écouter", StopListening, "", ""},
		{"réduis toutes les fenêtres", ManageWindows, "operation", "minimize_all"},
		{"mets firefox en plein écran", ManageWindows, "operation", "maximize"},
		{"bonjour", Greeting, "", ""},
		{"au revoir", Farewell, "", ""},
		{"aide-moi", Help, "", ""},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		res := a.Analyze(tt.text, nil)
		if res.Intent != tt.intent {
			t.Errorf("%q: expected intent %s, got %s", tt.text, tt.intent, res.Intent)
			continue
		}
		if tt.key != "" && res.Entities[tt.key] != tt.value {
			t.Errorf("%q: expected %s=%q, got %q", tt.text, tt.key, tt.value, res.Entities[tt.key])
		}
	}
}

func TestAnalyzeFallback(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze("zzz qqq www", nil)

	if res.Intent != GeneralQuestion {
		t.Fatalf("expected fallback to %s, got %s", GeneralQuestion, res.Intent)
	}
	if res.Confidence > 0.3 {
		t.Errorf("fallback confidence should be at most 0.3, got %f", res.Confidence)
	}
}

func TestAnalyzeConfidenceClamped(t *testing.T) {
	inputs := []string{
		"ouvre firefox",
		"bonjour",
		"salut",
		"hi",
		"cherche quelque chose de tres long sur google",
		"vérifie mes emails",
	}
	a := NewAnalyzer()
	for _, text := range inputs {
		res := a.Analyze(text, nil)
		if res.Confidence > 1.0 {
			t.Errorf("%q: confidence %f exceeds 1.0", text, res.Confidence)
		}
		if res.Confidence <= 0 {
			t.Errorf("%q: confidence %f not positive", text, res.Confidence)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer()
	text := "cherche la météo sur google et choisis la deuxième vidéo"

	first := a.Analyze(text, nil)
	if first.Entities["result_number"] != "2" {
		t.Fatalf("expected result_number=2, got %q", first.Entities["result_number"])
	}
	for i := 0; i < 5; i++ {
		res := a.Analyze(text, nil)
		if res.Intent != first.Intent || res.Confidence != first.Confidence {
			t.Fatalf("run %d: intent/confidence drifted: %s %f vs %s %f",
				i, res.Intent, res.Confidence, first.Intent, first.Confidence)
		}
		if !reflect.DeepEqual(res.Entities, first.Entities) {
			t.Fatalf("run %d: entities drifted: %v vs %v", i, res.Entities, first.Entities)
		}
	}
}

func TestAnalyzeServesRepeatsFromCache(t *testing.T) {
	a := NewAnalyzer()

	first := a.Analyze("ouvre chrome", nil)
	first.Entities["app_name"] = "tampered"

	second := a.Analyze("ouvre chrome", nil)
	if second.Intent != Open {
		t.Fatalf("expected %s, got %s", Open, second.Intent)
	}
	if second.Entities["app_name"] != "chrome" {
		t.Errorf("cached entities must be independent copies, got %v", second.Entities)
	}
}

func TestAnalyzeCacheDoesNotShadowContext(t *testing.T) {
	a := NewAnalyzer()

	// First seen without history: a one-word utterance falls through to
	// the general_question fallback.
	if res := a.Analyze("jean", nil); res.Intent != GeneralQuestion {
		t.Fatalf("expected %s, got %s", GeneralQuestion, res.Intent)
	}

	// The same utterance with a pending recipient question must resolve
	// through context, not the cached fallback.
	history := []Exchange{
		{Assistant: "A qui dois-je envoyer cet email ?", Timestamp: time.Now()},
	}
	res := a.Analyze("jean", history)
	if res.Intent != SendEmail {
		t.Fatalf("expected %s from context, got %s", SendEmail, res.Intent)
	}
}

func TestAnalyzeContextRecipient(t *testing.T) {
	history := []Exchange{
		{User: "envoie un email", Assistant: "A qui dois-je envoyer cet email ?", Timestamp: time.Now()},
	}
	a := NewAnalyzer()
	res := a.Analyze("Jean", history)

	if res.Intent != SendEmail {
		t.Fatalf("expected %s from context, got %s", SendEmail, res.Intent)
	}
	if !res.ContextUsed {
		t.Error("expected ContextUsed=true")
	}
	if res.Entities["recipient"] != "jean" {
		t.Errorf("expected recipient=jean, got %q", res.Entities["recipient"])
	}
	if res.Confidence < 0.85 {
		t.Errorf("expected context bonus applied, got %f", res.Confidence)
	}
}

func TestAnalyzeContextIgnoresLongReplies(t *testing.T) {
	history := []Exchange{
		{Assistant: "A qui dois-je envoyer cet email ?", Timestamp: time.Now()},
	}
	a := NewAnalyzer()
	res := a.Analyze("ouvre firefox et va sur google pour moi maintenant", history)
	if res.ContextUsed {
		t.Error("long input should not be treated as a context reply")
	}
}

func TestPreprocess(t *testing.T) {
	got := Preprocess("  Météo À Paris  ")
	if got != "meteo a paris" {
		t.Errorf("expected %q, got %q", "meteo a paris", got)
	}
}

func TestExtractEmailAddress(t *testing.T) {
	a := NewAnalyzer()
	res := a.Analyze("envoie un email à jean.dupont@example.com", nil)
	if res.Intent != SendEmail {
		t.Fatalf("expected %s, got %s", SendEmail, res.Intent)
	}
	if res.Entities["recipient"] != "jean.dupont@example.com" {
		t.Errorf("expected the address as recipient, got %q", res.Entities["recipient"])
	}
}

func TestSuggestions(t *testing.T) {
	a := NewAnalyzer()
	got := a.Suggestions("ouvre")
	if len(got) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if got[0] != "ouvre chrome" {
		t.Errorf("expected 'ouvre chrome' first, got %q", got[0])
	}
	if s := a.Suggestions(""); len(s) != 0 {
		t.Errorf("empty partial should yield no suggestions, got %v", s)
	}
}
