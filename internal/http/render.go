package http

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/postboard/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

// Flash categories.
const (
	flashSuccess = "success"
	flashDanger  = "danger"
)

var flashCategories = []string{flashSuccess, flashDanger}

// Flash is a one-shot status message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func loadTemplates() (*template.Template, error) {
	return template.New("").
		Funcs(template.FuncMap{"pathEscape": url.PathEscape}).
		ParseFS(templateFS, "templates/*.html")
}

func flashKey(category string) string {
	return "_flash_" + category
}

// addFlash queues a message for the next rendered page. The caller saves.
func addFlash(c *gin.Context, category, message string) {
	sessions.Default(c).AddFlash(message, flashKey(category))
}

// redirect queues a flash, saves the session and redirects.
func redirect(c *gin.Context, location, category, message string) {
	if message != "" {
		addFlash(c, category, message)
	}
	saveSession(c)
	c.Redirect(http.StatusFound, location)
}

// render drains queued flashes, appends any immediate ones, and renders
// the named page.
func render(c *gin.Context, status int, name string, data gin.H, now ...Flash) {
	if data == nil {
		data = gin.H{}
	}

	s := sessions.Default(c)
	var flashes []Flash
	drained := false
	for _, category := range flashCategories {
		for _, msg := range s.Flashes(flashKey(category)) {
			drained = true
			if text, ok := msg.(string); ok {
				flashes = append(flashes, Flash{Category: category, Message: text})
			}
		}
	}
	if drained {
		saveSession(c)
	}

	_, loggedIn := auth.CurrentUserID(c)
	data["Flashes"] = append(flashes, now...)
	data["LoggedIn"] = loggedIn
	c.HTML(status, name, data)
}

// saveSession persists pending session changes, logging failures.
func saveSession(c *gin.Context) {
	if err := sessions.Default(c).Save(); err != nil {
		log.Printf("Error saving session: %v", err)
	}
}
