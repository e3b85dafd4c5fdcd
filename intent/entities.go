package intent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	emailAddressRe = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	clockTimeRe    = regexp.MustCompile(`(\d{1,2}h\d{2}|\d{1,2}:\d{2})`)
	numericDateRe  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	numberRe       = regexp.MustCompile(`\d+`)
	urlRe          = regexp.MustCompile(`https?://[\w.-]+(?:/[\w./-]*)*`)
	properNameRe   = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)*\b`)

	appNameRes = []*regexp.Regexp{
		regexp.MustCompile(`ouvr(?:ir|e|ez) (.+?)(?:\s|$)`),
		regexp.MustCompile(`lanc(?:er|e|ez) (.+?)(?:\s|$)`),
		regexp.MustCompile(`ferm(?:er|e|ez) (.+?)(?:\s|$)`),
	}

	recipientNameRe = regexp.MustCompile(`(?:à|a|pour)\s([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)`)
	recipientRe     = regexp.MustCompile(`envoi(?:e|er) (?:un )?(?:e-?mail|message) a (.+?)(?:\s|$)`)
	subjectRe = regexp.MustCompile(`sujet[:\s]+(.+)`)

	eventTitleRes = []*regexp.Regexp{
		regexp.MustCompile(`programme (?:un )?(?:rendez-vous|rdv|evenement|meeting) (.+?)(?:\s(?:le|a|pour|demain|aujourd'hui)\b|$)`),
		regexp.MustCompile(`ajoute (.+?) a (?:mon )?calendrier`),
		regexp.MustCompile(`planifie (.+?)(?:\s(?:le|a|pour|demain|aujourd'hui)\b|$)`),
	}

	socialContentRes = []*regexp.Regexp{
		regexp.MustCompile(`publie (.+?) sur`),
		regexp.MustCompile(`poste (.+?) sur`),
		regexp.MustCompile(`partage (.+?) sur`),
		regexp.MustCompile(`tweete (.+)`),
	}
)

// extractEntities fills in slots specific to the resolved intent. Values
// already present (from capture groups or context) are overwritten only
// when a more specific extractor finds something.
func extractEntities(clean, original, intentName string, entities map[string]string) {
	switch intentName {
	case Open, Close:
		if app := extractAppName(clean); app != "" {
			entities["app_name"] = app
		}
	case SystemCommand:
		if cmd := extractSystemCommand(clean); cmd != "" {
			entities["command_type"] = cmd
		}
	case ManageWindows:
		extractWindowEntities(clean, entities)
	case SendEmail:
		extractEmailEntities(clean, original, entities)
	case ScheduleEvent:
		extractEventEntities(clean, entities)
	case PostSocial:
		extractSocialEntities(clean, entities)
	case WebSearch:
		if _, ok := entities["query"]; !ok {
			entities["query"] = extractSearchQuery(clean)
		}
	}
}

func extractAppName(clean string) string {
	for _, app := range knownApps {
		if strings.Contains(clean, app) {
			return app
		}
	}
	for _, re := range appNameRes {
		if m := re.FindStringSubmatch(clean); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractSystemCommand(clean string) string {
	switch {
	case containsAny(clean, "eteins", "arrete", "shutdown"):
		return "shutdown"
	case containsAny(clean, "redemarre", "restart"):
		return "restart"
	case containsAny(clean, "verrouille", "lock"):
		return "lock"
	case containsAny(clean, "veille", "sleep"):
		return "sleep"
	}
	return ""
}

func extractWindowEntities(clean string, entities map[string]string) {
	switch {
	case strings.Contains(clean, "toutes les fenetres") || strings.Contains(clean, "minimise tout"):
		entities["operation"] = "minimize_all"
		delete(entities, "window_title")
	case strings.Contains(clean, "plein ecran") || strings.HasPrefix(clean, "agrandis"):
		entities["operation"] = "maximize"
	case strings.HasPrefix(clean, "centre"):
		entities["operation"] = "center"
	}
}

func extractEmailEntities(clean, original string, entities map[string]string) {
	if m := emailAddressRe.FindString(original); m != "" {
		entities["recipient"] = m
	}
	if _, ok := entities["recipient"]; !ok {
		if m := recipientNameRe.FindStringSubmatch(original); m != nil {
			entities["recipient"] = strings.TrimSpace(m[1])
		} else if m := recipientRe.FindStringSubmatch(clean); m != nil {
			entities["recipient"] = strings.TrimSpace(m[1])
		}
	}
	if m := subjectRe.FindStringSubmatch(clean); m != nil {
		entities["subject"] = strings.TrimSpace(m[1])
	}
}

func extractEventEntities(clean string, entities map[string]string) {
	for _, re := range eventTitleRes {
		if m := re.FindStringSubmatch(clean); m != nil {
			entities["title"] = strings.TrimSpace(m[1])
			break
		}
	}
	extractTimeEntities(clean, entities)
}

func extractSocialEntities(clean string, entities map[string]string) {
	for _, platform := range knownPlatforms {
		if strings.Contains(clean, platform) {
			entities["platform"] = platform
			break
		}
	}
	for _, re := range socialContentRes {
		if m := re.FindStringSubmatch(clean); m != nil {
			entities["content"] = strings.TrimSpace(m[1])
			break
		}
	}
}

func extractTimeEntities(clean string, entities map[string]string) {
	if m := clockTimeRe.FindStringSubmatch(clean); m != nil {
		entities["time"] = m[1]
	}
	switch {
	case strings.Contains(clean, "apres-demain"):
		entities["date"] = "day_after_tomorrow"
	case strings.Contains(clean, "aujourd'hui"):
		entities["date"] = "today"
	case strings.Contains(clean, "demain"):
		entities["date"] = "tomorrow"
	}
	if m := numericDateRe.FindStringSubmatch(clean); m != nil {
		entities["date"] = m[1] + "/" + m[2]
	}
}

// extractSearchQuery trims the command verb and trailing engine mention
// off a search utterance.
func extractSearchQuery(clean string) string {
	q := clean
	for _, prefix := range []string{"recherche ", "cherche ", "trouve moi ", "trouve ", "google ", "search for ", "search "} {
		if strings.HasPrefix(q, prefix) {
			q = q[len(prefix):]
			break
		}
	}
	for _, suffix := range []string{" sur google", " sur internet", " sur le web"} {
		if idx := strings.Index(q, suffix); idx > 0 {
			q = q[:idx]
			break
		}
	}
	// Drop chained instructions ("... et choisis la deuxieme video").
	if idx := strings.Index(q, " et "); idx > 0 {
		q = q[:idx]
	}
	return strings.TrimSpace(q)
}

// extractGenericEntities layers numbers, URLs, capitalized tokens, known
// app/platform names and spoken ordinals on top of whatever the intent
// pass produced.
func extractGenericEntities(clean, original string, entities map[string]string) {
	if nums := numberRe.FindAllString(clean, -1); nums != nil {
		entities["numbers"] = strings.Join(nums, ",")
	}
	if urls := urlRe.FindAllString(original, -1); urls != nil {
		entities["urls"] = strings.Join(urls, " ")
	}
	if names := properNameRe.FindAllString(original, -1); names != nil {
		entities["names"] = strings.Join(names, ", ")
	}
	if _, ok := entities["app_name"]; !ok {
		for _, app := range knownApps {
			if strings.Contains(clean, app) {
				entities["app_name"] = app
				break
			}
		}
	}
	if _, ok := entities["platform"]; !ok {
		for _, platform := range knownPlatforms {
			if strings.Contains(clean, platform) {
				entities["platform"] = platform
				break
			}
		}
	}
	for _, ord := range ordinalWords {
		if strings.Contains(clean, ord.word) {
			entities["result_number"] = strconv.Itoa(ord.n)
			break
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
