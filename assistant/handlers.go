package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aria/apis/calendar"
	"aria/apis/gmail"
	"aria/automation/system"
	"aria/automation/web"
	"aria/automation/windows"
	"aria/task"
)

// Controllers groups the side-effecting subsystems the assistant can
// drive. Any field may be nil; the matching actions then report a
// "not configured" failure instead of panicking.
type Controllers struct {
	System   *system.Controller
	Windows  *windows.Manager
	Browser  *web.Browser
	Gmail    *gmail.Manager
	Calendar *calendar.Manager
}

// RegisterHandlers wires every controller into the executor's action
// registry.
func RegisterHandlers(exec *task.Executor, c Controllers) {
	exec.Register(task.ActionOpenApplication, c.openApplication)
	exec.Register(task.ActionCloseApplication, c.closeApplication)
	exec.Register(task.ActionSystemControl, c.systemControl)
	exec.Register(task.ActionWindowManagement, c.windowManagement)
	exec.Register(task.ActionWebNavigation, c.webNavigate)
	exec.Register(task.ActionWebSearch, c.webSearch)
	exec.Register(task.ActionYoutubeSearch, c.youtubeSearch)
	exec.Register(task.ActionScreenshot, c.screenshot)
	exec.Register(task.ActionEmail, c.email)
	exec.Register(task.ActionCalendar, c.calendar)
}

func paramString(params map[string]interface{}, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func notConfigured(what string) (*task.ActionResult, error) {
	return &task.ActionResult{Success: false, Message: fmt.Sprintf("%s n'est pas configure", what)}, nil
}

func (c Controllers) openApplication(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.System == nil {
		return notConfigured("Le controle systeme")
	}
	app := paramString(params, "app_name")
	if app == "" {
		return &task.ActionResult{Success: false, Message: "Aucune application precisee"}, nil
	}
	if err := c.System.OpenApplication(ctx, app); err != nil {
		return nil, err
	}
	return &task.ActionResult{Success: true, Message: fmt.Sprintf("%s ouvert", app)}, nil
}

func (c Controllers) closeApplication(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.System == nil {
		return notConfigured("Le controle systeme")
	}
	app := paramString(params, "app_name")
	if app == "" {
		return &task.ActionResult{Success: false, Message: "Aucune application precisee"}, nil
	}
	if err := c.System.CloseApplication(ctx, app, false); err != nil {
		return nil, err
	}
	return &task.ActionResult{Success: true, Message: fmt.Sprintf("%s ferme", app)}, nil
}

func (c Controllers) systemControl(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.System == nil {
		return notConfigured("Le controle systeme")
	}
	var err error
	command := paramString(params, "command")
	switch command {
	case "shutdown":
		err = c.System.Shutdown(ctx, time.Minute)
	case "restart":
		err = c.System.Restart(ctx, time.Minute)
	case "lock":
		err = c.System.Lock(ctx)
	case "sleep":
		err = c.System.Sleep(ctx)
	default:
		return &task.ActionResult{Success: false, Message: fmt.Sprintf("Commande systeme inconnue : %s", command)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &task.ActionResult{Success: true, Message: fmt.Sprintf("Commande %s lancee", command)}, nil
}

func (c Controllers) windowManagement(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Windows == nil {
		return notConfigured("Le gestionnaire de fenetres")
	}
	op := paramString(params, "operation")
	title := paramString(params, "title")

	if op == "minimize_all" {
		if err := c.Windows.MinimizeAll(); err != nil {
			return nil, err
		}
		return &task.ActionResult{Success: true, Message: "Toutes les fenetres sont reduites"}, nil
	}

	matches, err := c.Windows.FindByTitle(title, false)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &task.ActionResult{Success: false, Message: fmt.Sprintf("Aucune fenetre ne correspond a '%s'", title)}, nil
	}
	w := matches[0]

	switch op {
	case "activate", "focus":
		err = c.Windows.Activate(w)
	case "minimize":
		err = c.Windows.Minimize(w)
	case "maximize":
		err = c.Windows.Maximize(w)
	case "close":
		err = c.Windows.Close(w)
	case "center":
		err = c.Windows.Center(w)
	default:
		return &task.ActionResult{Success: false, Message: fmt.Sprintf("Operation fenetre inconnue : %s", op)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &task.ActionResult{Success: true, Message: fmt.Sprintf("Fenetre '%s' : %s", w.Title, op)}, nil
}

// ensureBrowser lazily starts the Playwright session on first web action.
func (c Controllers) ensureBrowser() (*web.Browser, error) {
	if !c.Browser.Started() {
		if err := c.Browser.Start(); err != nil {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	}
	return c.Browser, nil
}

func (c Controllers) webNavigate(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Browser == nil {
		return notConfigured("La navigation web")
	}
	b, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}
	url := paramString(params, "url")
	if url == "" {
		return &task.ActionResult{Success: false, Message: "Aucune URL precisee"}, nil
	}
	if err := b.Navigate(url); err != nil {
		return nil, err
	}
	return &task.ActionResult{Success: true, Message: fmt.Sprintf("Page %s ouverte", url)}, nil
}

func (c Controllers) webSearch(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Browser == nil {
		return notConfigured("La recherche web")
	}
	b, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}
	query := paramString(params, "query")
	if query == "" {
		return &task.ActionResult{Success: false, Message: "Aucune requete de recherche"}, nil
	}
	n := paramInt(params, "result_number", 1)
	url, err := b.SearchGoogle(query, n)
	if err != nil {
		return nil, err
	}
	return &task.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Resultat #%d ouvert pour '%s'", n, query),
		Data:    map[string]interface{}{"url": url, "query": query, "result_number": n},
	}, nil
}

func (c Controllers) youtubeSearch(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Browser == nil {
		return notConfigured("La recherche YouTube")
	}
	b, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}
	query := paramString(params, "query")
	if query == "" {
		return &task.ActionResult{Success: false, Message: "Aucune requete de recherche"}, nil
	}
	n := paramInt(params, "result_number", 1)
	url, err := b.SearchYouTube(query, n)
	if err != nil {
		return nil, err
	}
	return &task.ActionResult{
		Success: true,
		Message: fmt.Sprintf("Video #%d lancee pour '%s'", n, query),
		Data:    map[string]interface{}{"url": url, "query": query},
	}, nil
}

func (c Controllers) screenshot(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Browser == nil {
		return notConfigured("La capture d'ecran")
	}
	b, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}
	img, err := b.Screenshot()
	if err != nil {
		return nil, err
	}
	return &task.ActionResult{
		Success: true,
		Message: "Capture d'ecran prise",
		Data:    map[string]interface{}{"bytes": len(img), "png": img},
	}, nil
}

func (c Controllers) email(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Gmail == nil {
		return notConfigured("Gmail")
	}
	switch paramString(params, "action") {
	case "send":
		recipient := paramString(params, "recipient")
		subject := paramString(params, "subject")
		if subject == "" {
			subject = "Message de ARIA"
		}
		content := paramString(params, "content")
		if !strings.Contains(recipient, "@") {
			return &task.ActionResult{Success: false, Message: fmt.Sprintf("Adresse email invalide : %s", recipient)}, nil
		}
		if err := c.Gmail.Send(ctx, recipient, subject, content); err != nil {
			return nil, err
		}
		return &task.ActionResult{Success: true, Message: fmt.Sprintf("Email envoye a %s", recipient)}, nil

	case "read":
		emails, err := c.Gmail.Recent(ctx, paramString(params, "sender"), 5)
		if err != nil {
			return nil, err
		}
		return &task.ActionResult{
			Success: true,
			Message: fmt.Sprintf("%d email(s) recuperes", len(emails)),
			Data:    map[string]interface{}{"count": len(emails), "emails": emails},
		}, nil

	case "unread":
		emails, err := c.Gmail.Unread(ctx, 10)
		if err != nil {
			return nil, err
		}
		return &task.ActionResult{
			Success: true,
			Message: fmt.Sprintf("%d email(s) non lus", len(emails)),
			Data:    map[string]interface{}{"count": len(emails), "emails": emails},
		}, nil
	}
	return &task.ActionResult{Success: false, Message: "Action email inconnue"}, nil
}

func (c Controllers) calendar(ctx context.Context, params map[string]interface{}) (*task.ActionResult, error) {
	if c.Calendar == nil {
		return notConfigured("Le calendrier")
	}
	switch paramString(params, "action") {
	case "create":
		title := paramString(params, "title")
		start := parseEventTime(paramString(params, "date"), paramString(params, "time"))
		event, err := c.Calendar.CreateEvent(ctx, title, start, time.Hour, "")
		if err != nil {
			return nil, err
		}
		return &task.ActionResult{
			Success: true,
			Message: fmt.Sprintf("Evenement '%s' cree", title),
			Data:    map[string]interface{}{"event": event},
		}, nil

	case "today":
		events, err := c.Calendar.TodayEvents(ctx)
		if err != nil {
			return nil, err
		}
		return &task.ActionResult{
			Success: true,
			Message: fmt.Sprintf("%d evenement(s) aujourd'hui", len(events)),
			Data:    map[string]interface{}{"count": len(events), "events": events},
		}, nil

	case "upcoming":
		events, err := c.Calendar.UpcomingEvents(ctx, 7)
		if err != nil {
			return nil, err
		}
		return &task.ActionResult{
			Success: true,
			Message: fmt.Sprintf("%d evenement(s) a venir", len(events)),
			Data:    map[string]interface{}{"count": len(events), "events": events},
		}, nil
	}
	return &task.ActionResult{Success: false, Message: "Action calendrier inconnue"}, nil
}

// parseEventTime interprets the loose date and time entities. Unrecognized
// values fall back to the next full hour.
func parseEventTime(date, timeOfDay string) time.Time {
	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// The intent extractor emits today/tomorrow/day_after_tomorrow; the
	// spoken forms are accepted too for callers that pass raw text.
	switch strings.ToLower(date) {
	case "demain", "tomorrow":
		day = day.AddDate(0, 0, 1)
	case "apres-demain", "day_after_tomorrow":
		day = day.AddDate(0, 0, 2)
	}

	hour, minute := 0, 0
	parsed := false
	for _, layout := range []string{"15h04", "15h", "15:04"} {
		if t, err := time.Parse(layout, strings.ToLower(timeOfDay)); err == nil {
			hour, minute = t.Hour(), t.Minute()
			parsed = true
			break
		}
	}
	if !parsed {
		next := now.Add(time.Hour)
		hour = next.Hour()
		if day.Day() == now.Day() && next.Day() != now.Day() {
			day = day.AddDate(0, 0, 1)
		}
	}
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}
