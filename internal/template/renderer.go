package template

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/ghaggin/cems/internal/model"
)

const (
	templateDir string = "tmpl"
)

//go:embed tmpl/*.html static
var files embed.FS

type Data struct {
	PageTitle string
	User      *model.User
	IsAdmin   bool
	CanCreate bool
	Flashes   []model.Toast

	Events []model.Event
	Search model.SearchParams

	Tab    model.EventStatus
	Tabs   []model.EventStatus
	Counts map[model.EventStatus]int

	Roles []model.Role
	Form  map[string]string
}

func Render(w http.ResponseWriter, r *http.Request, tmpl string, td any) error {
	return RenderStatus(w, r, http.StatusOK, tmpl, td)
}

// RenderStatus executes tmpl fully before anything is written, so a failed
// render leaves w untouched.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, tmpl string, td any) error {
	t, err := template.ParseFS(files,
		templateDir+"/"+tmpl,
		templateDir+"/"+"base.html",
	)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.Execute(buf, td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and other assets.
func Static() http.Handler {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
