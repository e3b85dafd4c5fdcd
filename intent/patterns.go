package intent

import "regexp"

// intentPatterns is the static pattern table. Order matters: when two
// intents match with equal confidence, the first-declared intent wins.
// Patterns are written against preprocessed text (lowercased, accents
// stripped), so "météo" appears here as "meteo".
type patternEntry struct {
	intent   string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

var intentPatterns = []patternEntry{
	// Assistant control comes first so "arrete d'ecouter" is not eaten by
	// the close_application patterns on an equal-confidence tie.
	{StartListening, compileAll(
		`aria ecoute(?:-moi)?`,
		`commence a ecouter`,
		`active(?:r)? (?:l')?ecoute`,
		`hey aria`,
		`salut aria`,
	)},
	{StopListening, compileAll(
		`arrete d'ecouter`,
		`desactive (?:l')?ecoute`,
		`stop (?:listening)?`,
		`silence`,
		`chut`,
	)},
	{Status, compileAll(
		`statut`,
		`etat du systeme`,
		`comment ca va`,
		`status`,
		`how are you`,
	)},

	// System control. Power commands outrank close_application for
	// "arrete l'ordinateur".
	{SystemCommand, compileAll(
		`eteins? (?:l')?ordinateur`,
		`arrete (?:l')?ordinateur`,
		`shut ?down`,
		`redemarre (?:l')?ordinateur`,
		`restart`,
		`verrouille (?:l')?ecran`,
		`lock`,
		`met(?:s)? en veille`,
	)},
	// Window management sits above open_application and play_music so
	// "mets firefox en plein ecran" is not planned as a media command.
	{ManageWindows, compileAll(
		`reduis toutes les fenetres`,
		`minimise tout(?:es les fenetres)?`,
		`mets (.+) en plein ecran`,
		`agrandis (?:la fenetre )?(.+)`,
		`centre (?:la fenetre )?(.+)`,
	)},
	{Open, compileAll(
		`ouvr(?:ir|e|ez) (.+)`,
		`lanc(?:er|e|ez) (.+)`,
		`demarre(?:r)? (.+)`,
		`affiche(?:r)? (.+)`,
		`va sur (.+)`,
		`ouvre (.+) s'il te plait`,
		`peux-tu ouvrir (.+)`,
	)},
	{Close, compileAll(
		`ferm(?:er|e|ez) (.+)`,
		`quitt(?:er|e|ez) (.+)`,
		`arret(?:er|e|ez) (.+)`,
		`stoppe(?:r)? (.+)`,
		`termine(?:r)? (.+)`,
	)},
	// Email
	{SendEmail, compileAll(
		`envoi(?:e|er) un e-?mail a (.+)`,
		`ecris un mail a (.+)`,
		`compose un message pour (.+)`,
		`contact(?:er?) (.+) par e-?mail`,
		`envoi(?:e|er) un message a (.+)`,
	)},
	{CheckEmails, compileAll(
		`verifie (?:mes )?e-?mails?`,
		`regarde (?:mes )?messages?`,
		`as-tu recu (?:des )?e-?mails?`,
		`nouveaux? e-?mails?`,
		`check (?:my )?emails?`,
	)},

	// Calendar
	{ScheduleEvent, compileAll(
		`programme (?:un )?(?:rendez-vous|rdv|evenement|meeting) (.+)`,
		`ajoute (.+) a (?:mon )?calendrier`,
		`planifie (.+)`,
		`cree (?:un )?evenement (.+)`,
		`rappelle-moi de (.+)`,
	)},
	{CheckCalendar, compileAll(
		`qu'est-ce que j'ai (?:aujourd'hui|demain|cette semaine)`,
		`mes rendez-vous`,
		`mon planning`,
		`verifie (?:mon )?calendrier`,
		`what's on my calendar`,
	)},

	// Social
	{PostSocial, compileAll(
		`publie (.+) sur (.+)`,
		`poste (.+) sur (.+)`,
		`partage (.+) sur (.+)`,
		`tweete (.+)`,
		`mets a jour (?:mon )?statut`,
	)},

	// Search and information
	{WebSearch, compileAll(
		`recherche (.+)`,
		`cherche (.+) sur (?:google|internet|le web)`,
		`trouve (?:moi )?(.+)`,
		`google (.+)`,
		`search (?:for )?(.+)`,
	)},
	{GetWeather, compileAll(
		`meteo`,
		`temps qu'il fait`,
		`previsions meteo`,
		`weather`,
		`il fait quel temps`,
	)},
	{GetNews, compileAll(
		`actualites?`,
		`nouvelles?`,
		`infos?`,
		`news`,
		`que se passe-t-il`,
	)},

	// Media
	{PlayMusic, compileAll(
		`joue (?:de la )?musique`,
		`lance (.+) sur spotify`,
		`mets (.+)`,
		`play (.+)`,
		`ecoute(?:r)? (.+)`,
	)},
	{ControlVolume, compileAll(
		`monte le son`,
		`baisse le son`,
		`volume a (\d+)`,
		`mute`,
		`coupe le son`,
	)},

	// Help and conversation
	{Help, compileAll(
		`aide(?:-moi)?`,
		`help`,
		`que peux-tu faire`,
		`commandes disponibles`,
		`comment ca marche`,
	)},
	{Greeting, compileAll(
		`bonjour`,
		`salut`,
		`hello`,
		`bonsoir`,
		`bonne nuit`,
		`hi`,
	)},
	{Farewell, compileAll(
		`au revoir`,
		`bye`,
		`a bientot`,
		`goodbye`,
		`see you`,
	)},

	// General question fallback patterns
	{GeneralQuestion, compileAll(
		`(.+)\?`,
		`dis-moi (.+)`,
		`explique (.+)`,
		`comment (.+)`,
		`pourquoi (.+)`,
		`qu'est-ce que (.+)`,
	)},
}

// Names lists every recognizable intent in declaration order.
func Names() []string {
	names := make([]string, 0, len(intentPatterns)+1)
	for _, entry := range intentPatterns {
		names = append(names, entry.intent)
	}
	return append(names, Unknown)
}

// knownApps and knownPlatforms feed the generic entity pass.
var knownApps = []string{
	"chrome", "firefox", "edge", "safari",
	"word", "excel", "powerpoint", "outlook",
	"notepad", "calculator", "paint",
	"spotify", "vlc", "steam", "discord",
	"skype", "zoom", "teams", "slack",
	"photoshop", "illustrator", "premiere",
	"visual studio", "vscode", "pycharm",
	"file explorer", "explorateur",
}

var knownPlatforms = []string{
	"twitter", "facebook", "instagram", "linkedin",
	"tiktok", "youtube", "snapchat", "discord",
	"whatsapp", "telegram", "messenger",
}

// ordinalWords maps spoken ordinals to result positions, so "choisis la
// deuxieme video" carries result_number=2 into planning. Ordered so that
// repeated analysis of the same text stays deterministic.
var ordinalWords = []struct {
	word string
	n    int
}{
	{"premiere", 1}, {"premier", 1}, {"first", 1},
	{"deuxieme", 2}, {"seconde", 2}, {"second", 2},
	{"troisieme", 3}, {"third", 3},
	{"quatrieme", 4}, {"fourth", 4},
	{"cinquieme", 5}, {"fifth", 5},
}
