package task

import (
	"fmt"
	"strconv"
	"strings"

	"aria/intent"
)

// PlanSteps maps a resolved intent to an ordered list of steps. An empty
// plan means the task cannot be planned; callers report that as failure
// without invoking the executor.
func PlanSteps(res *intent.Result) []*Step {
	if res == nil {
		return nil
	}

	entities := res.Entities
	switch res.Intent {
	case intent.Open:
		app := entities["app_name"]
		return []*Step{{
			Action:      ActionOpenApplication,
			Parameters:  map[string]interface{}{"app_name": app},
			Description: fmt.Sprintf("Ouvrir l'application %s", app),
		}}

	case intent.Close:
		app := entities["app_name"]
		return []*Step{{
			Action:      ActionCloseApplication,
			Parameters:  map[string]interface{}{"app_name": app},
			Description: fmt.Sprintf("Fermer l'application %s", app),
		}}

	case intent.SystemCommand:
		cmd := entities["command_type"]
		if cmd == "" {
			return nil
		}
		return []*Step{{
			Action:      ActionSystemControl,
			Parameters:  map[string]interface{}{"command": cmd},
			Description: fmt.Sprintf("Executer la commande systeme : %s", cmd),
		}}

	case intent.ManageWindows:
		op := entities["operation"]
		if op == "" {
			return nil
		}
		params := map[string]interface{}{"operation": op}
		desc := "Reduire toutes les fenetres"
		if title := entities["window_title"]; title != "" {
			params["title"] = title
			desc = fmt.Sprintf("Appliquer '%s' a la fenetre %s", op, title)
		}
		return []*Step{{
			Action:      ActionWindowManagement,
			Parameters:  params,
			Description: desc,
		}}

	case intent.WebSearch:
		query := entities["query"]
		n := resultNumber(entities)
		return []*Step{{
			Action:      ActionWebSearch,
			Parameters:  map[string]interface{}{"query": query, "result_number": n},
			Description: fmt.Sprintf("Rechercher '%s' et aller au resultat #%d", query, n),
		}}

	case intent.PlayMusic:
		query := entities["query"]
		if query == "" {
			query = entities["app_name"]
		}
		if query == "" {
			query = strings.TrimSpace(res.OriginalText)
		}
		n := resultNumber(entities)
		return []*Step{{
			Action:      ActionYoutubeSearch,
			Parameters:  map[string]interface{}{"query": query, "result_number": n},
			Description: fmt.Sprintf("Rechercher '%s' sur YouTube et lire la video #%d", query, n),
		}}

	case intent.SendEmail:
		return []*Step{{
			Action: ActionEmail,
			Parameters: map[string]interface{}{
				"action":    "send",
				"recipient": entities["recipient"],
				"subject":   entities["subject"],
				"content":   entities["content"],
			},
			Description: fmt.Sprintf("Envoyer un email a %s", entities["recipient"]),
		}}

	case intent.CheckEmails:
		return []*Step{{
			Action:      ActionEmail,
			Parameters:  map[string]interface{}{"action": "read", "sender": entities["sender"]},
			Description: "Lire les emails recents",
		}}

	case intent.ScheduleEvent:
		title := entities["title"]
		if title == "" {
			return nil
		}
		return []*Step{{
			Action: ActionCalendar,
			Parameters: map[string]interface{}{
				"action": "create",
				"title":  title,
				"date":   entities["date"],
				"time":   entities["time"],
			},
			Description: fmt.Sprintf("Programmer l'evenement '%s'", title),
		}}

	case intent.CheckCalendar:
		return []*Step{{
			Action:      ActionCalendar,
			Parameters:  map[string]interface{}{"action": "today"},
			Description: "Consulter le calendrier du jour",
		}}
	}

	// Legacy multi-step demo, a last resort for utterances no recognized
	// intent claimed: "firefox ... google ..." yields the canned
	// open-navigate-search plan.
	lower := strings.ToLower(res.OriginalText)
	if strings.Contains(lower, "firefox") && strings.Contains(lower, "google") {
		return []*Step{
			{Action: ActionOpenApplication, Parameters: map[string]interface{}{"app_name": "firefox"}, Description: "Ouvrir Firefox"},
			{Action: ActionWebNavigation, Parameters: map[string]interface{}{"url": "google.com"}, Description: "Aller sur Google"},
			{Action: ActionWebSearch, Parameters: map[string]interface{}{"query": "cat video", "result_number": 2}, Description: "Chercher 'cat video' et choisir le 2eme resultat"},
		}
	}

	return nil
}

func resultNumber(entities map[string]string) int {
	if v, ok := entities["result_number"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
