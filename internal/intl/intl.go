package intl

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the locales with a message table. The first entry is the fallback.
var Supported = []language.Tag{language.English, language.German, language.French}

var matcher = language.NewMatcher(Supported)

var cat = buildCatalog()

// Defaults are the literal fallback strings, keyed by message id.
// Arguments use explicit indexes so translations can reorder them.
var Defaults = map[string]string{
	"title":                      "Title",
	"title_placeholder":          "Add title",
	"title_error_empty":          "Title can't be empty.",
	"title_error_too_long":       "Title can't be longer than %[1]d characters.",
	"topics":                     "Topics",
	"topics_placeholder":         "Add story topics here",
	"topics_extra":               "Separate topics with commas. Only lowercase letters, numbers and hyphen character is permitted.",
	"topics_error_empty":         "Please enter topics",
	"topics_error_count":         "You can add at most %[1]d topics.",
	"topics_error_invalid_topic": "Topic %[1]s is invalid.",
	"story":                      "Story",
	"story_placeholder":          "Write your story...",
	"story_error_empty":          "Story content can't be empty.",
	"reading_time":               "%[1]d words / %[2]d min read",
	"reward":                     "Reward",
	"reward_option_100":          "100%% Steem Power",
	"reward_option_50":           "50%% SBD and 50%% SP",
	"reward_option_0":            "Declined",
	"like_post":                  "Like this post",
	"preview":                    "Preview",
	"publish":                    "Publish",
	"update":                     "Update",
	"submitting":                 "Submitting",
	"saving":                     "Saving...",
	"saved":                      "Saved %[1]s",
	"draft_unsaved":              "Not saved yet",
	"insert_image":               "Insert image",
	"image_invalid":              "Invalid image: %[1]s",
	"image_inserted":             "Inserted image %[1]s",
	"copied_html":                "Copied rendered HTML",
	"published":                  "Published as %[1]s",
	"fix_errors":                 "Fix the highlighted fields before publishing.",
	"publish_failed":             "Publish failed: %[1]s",
	"save_failed":                "Save failed: %[1]s",
	"copy_failed":                "Copy failed: %[1]s",
	"editor_failed":              "Editor failed: %[1]s",
	"editor_unchanged":           "No changes from %[1]s",
	"editor_updated":             "Updated from %[1]s",
}

var translations = map[language.Tag]map[string]string{
	language.German: {
		"title":                      "Titel",
		"title_placeholder":          "Titel hinzufügen",
		"title_error_empty":          "Der Titel darf nicht leer sein.",
		"title_error_too_long":       "Der Titel darf höchstens %[1]d Zeichen lang sein.",
		"topics":                     "Themen",
		"topics_placeholder":         "Themen hier hinzufügen",
		"topics_extra":               "Themen mit Kommas trennen. Erlaubt sind nur Kleinbuchstaben, Ziffern und Bindestriche.",
		"topics_error_empty":         "Bitte Themen angeben",
		"topics_error_count":         "Es sind höchstens %[1]d Themen erlaubt.",
		"topics_error_invalid_topic": "Das Thema %[1]s ist ungültig.",
		"story":                      "Beitrag",
		"story_error_empty":          "Der Beitrag darf nicht leer sein.",
		"reading_time":               "%[1]d Wörter / %[2]d Min. Lesezeit",
		"reward":                     "Belohnung",
		"reward_option_0":            "Abgelehnt",
		"like_post":                  "Diesen Beitrag liken",
		"preview":                    "Vorschau",
		"publish":                    "Veröffentlichen",
		"update":                     "Aktualisieren",
		"saving":                     "Speichern...",
		"saved":                      "Gespeichert %[1]s",
	},
	language.French: {
		"title":                      "Titre",
		"title_placeholder":          "Ajouter un titre",
		"title_error_empty":          "Le titre ne peut pas être vide.",
		"title_error_too_long":       "Le titre ne peut pas dépasser %[1]d caractères.",
		"topics":                     "Sujets",
		"topics_error_empty":         "Veuillez saisir des sujets",
		"topics_error_invalid_topic": "Le sujet %[1]s est invalide.",
		"story_error_empty":          "Le contenu ne peut pas être vide.",
		"reading_time":               "%[1]d mots / %[2]d min de lecture",
		"reward":                     "Récompense",
		"reward_option_0":            "Refusée",
		"like_post":                  "Aimer ce billet",
		"preview":                    "Aperçu",
		"publish":                    "Publier",
		"update":                     "Mettre à jour",
	},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for _, tag := range Supported {
		table := translations[tag]
		for id, def := range Defaults {
			msg := def
			if tr, ok := table[id]; ok {
				msg = tr
			}
			_ = b.SetString(tag, id, msg)
		}
	}
	return b
}

// Resolve maps a requested locale (BCP 47 or POSIX style such as "de_DE.UTF-8")
// to the closest supported one.
func Resolve(requested string) language.Tag {
	requested = strings.TrimSpace(requested)
	if i := strings.IndexAny(requested, ".@"); i >= 0 {
		requested = requested[:i]
	}
	requested = strings.ReplaceAll(requested, "_", "-")
	if requested == "" || strings.EqualFold(requested, "C") || strings.EqualFold(requested, "POSIX") {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(language.Make(requested))
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// FromEnv resolves the locale from DRAFTPAD_LOCALE, then LC_ALL, LC_MESSAGES and LANG.
func FromEnv() language.Tag {
	for _, k := range []string{"DRAFTPAD_LOCALE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return Resolve(v)
		}
	}
	return Supported[0]
}

// Formatter resolves message ids for a single locale.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

func New(tag language.Tag) *Formatter {
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

func (f *Formatter) Locale() language.Tag {
	if f == nil {
		return Supported[0]
	}
	return f.tag
}

// Message formats the message with the given id. Ids without a table entry are
// returned verbatim.
func (f *Formatter) Message(id string, args ...any) string {
	if _, ok := Defaults[id]; !ok {
		return id
	}
	if f == nil {
		return New(Supported[0]).Message(id, args...)
	}
	return f.printer.Sprintf(id, args...)
}
