package assistant

import (
	"fmt"
	"strings"

	"aria/intent"
	"aria/task"
)

// respond builds the spoken French reply for an intent and its task
// outcome. taskResult may be nil for intents that run no task.
func respond(res *intent.Result, taskResult *task.Result) string {
	entities := res.Entities

	switch res.Intent {
	case intent.Greeting:
		return "Bonjour ! Comment puis-je vous aider ?"

	case intent.Farewell:
		return "Au revoir ! A bientot."

	case intent.Help:
		return "Je peux ouvrir et fermer des applications, faire des recherches web, " +
			"gerer vos emails et votre calendrier, et controler votre systeme. " +
			"Dites par exemple : ouvre firefox, ou : cherche la meteo sur google."

	case intent.Status:
		return "Je suis operationnelle et a votre ecoute."

	case intent.StartListening:
		return "Je vous ecoute."

	case intent.StopListening:
		return "D'accord, je me mets en pause."

	case intent.Open:
		app := entities["app_name"]
		if taskOK(taskResult) {
			return fmt.Sprintf("J'ouvre %s.", displayName(app))
		}
		return fmt.Sprintf("Je n'ai pas reussi a ouvrir %s.", displayName(app))

	case intent.Close:
		app := entities["app_name"]
		if taskOK(taskResult) {
			return fmt.Sprintf("Je ferme %s.", displayName(app))
		}
		return fmt.Sprintf("Je n'ai pas reussi a fermer %s.", displayName(app))

	case intent.SystemCommand:
		if entities["command_type"] == "" {
			return "Quelle commande systeme voulez-vous executer ?"
		}
		if taskOK(taskResult) {
			return "Commande systeme executee."
		}
		return "La commande systeme a echoue."

	case intent.ManageWindows:
		if taskOK(taskResult) {
			return "C'est fait."
		}
		return "Je n'ai pas pu manipuler les fenetres."

	case intent.WebSearch:
		if taskOK(taskResult) {
			return fmt.Sprintf("Voici les resultats pour %s.", entities["query"])
		}
		return "La recherche web a echoue."

	case intent.PlayMusic:
		if taskOK(taskResult) {
			return "Je lance la musique sur YouTube."
		}
		return "Je n'ai pas trouve cette musique."

	case intent.SendEmail:
		recipient := entities["recipient"]
		if recipient == "" {
			return "A qui dois-je envoyer cet email ?"
		}
		if taskOK(taskResult) {
			return fmt.Sprintf("Email envoye a %s.", recipient)
		}
		return fmt.Sprintf("Je n'ai pas pu envoyer l'email a %s.", recipient)

	case intent.CheckEmails:
		if taskOK(taskResult) {
			return summarizeData(taskResult, "Vous n'avez pas de nouveaux emails.",
				"Vous avez %d email(s) recent(s).")
		}
		return "Je n'arrive pas a consulter vos emails."

	case intent.ScheduleEvent:
		title := entities["title"]
		if title == "" {
			return "Quel est le titre de l'evenement a programmer ?"
		}
		if taskOK(taskResult) {
			return fmt.Sprintf("Evenement '%s' ajoute a votre calendrier.", title)
		}
		return fmt.Sprintf("Je n'ai pas pu programmer l'evenement '%s'.", title)

	case intent.CheckCalendar:
		if taskOK(taskResult) {
			return summarizeData(taskResult, "Rien de prevu aujourd'hui.",
				"Vous avez %d evenement(s) aujourd'hui.")
		}
		return "Je n'arrive pas a consulter votre calendrier."

	case intent.GetWeather:
		return "Je ne gere pas encore la meteo directement. " +
			"Dites : cherche la meteo sur google."

	case intent.GetNews:
		return "Je ne gere pas encore les actualites directement. " +
			"Dites : cherche les actualites sur google."

	case intent.PostSocial:
		return "La publication sur les reseaux sociaux n'est pas encore disponible."

	case intent.ControlVolume:
		return "Le controle du volume n'est pas encore disponible."

	case intent.GeneralQuestion, intent.Unknown:
		return "Je n'ai pas compris votre demande. Dites 'aide' pour connaitre mes capacites."
	}

	if taskResult != nil {
		return taskResult.Message
	}
	return "Je n'ai pas compris votre demande."
}

func taskOK(r *task.Result) bool {
	return r != nil && r.Success
}

// summarizeData turns a list result into a count sentence.
func summarizeData(r *task.Result, emptyMsg, countMsg string) string {
	if r == nil || r.Data == nil {
		return emptyMsg
	}
	if ar, ok := r.Data.(*task.ActionResult); ok && ar != nil {
		if m, ok := ar.Data.(map[string]interface{}); ok {
			if n, ok := m["count"].(int); ok {
				if n == 0 {
					return emptyMsg
				}
				return fmt.Sprintf(countMsg, n)
			}
		}
		if ar.Message != "" {
			return ar.Message
		}
	}
	return r.Message
}

func displayName(app string) string {
	if app == "" {
		return "l'application"
	}
	return strings.ToUpper(app[:1]) + app[1:]
}
