package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ghaggin/cems/internal/api"
	"github.com/ghaggin/cems/internal/middleware"
	"github.com/ghaggin/cems/internal/model"
	"github.com/ghaggin/cems/internal/session"
	"github.com/ghaggin/cems/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgAuthInProgress = "A sign-in request is already in progress."

var registerRoles = []model.Role{model.RoleStudent, model.RoleProfessor, model.RoleAdmin}

// page builds the data every template needs and drains the toast queue.
func (s *Server) page(r *http.Request, title string) *template.Data {
	td := chrome(r, title)
	td.Flashes = s.sm.Flashes(r.Context())
	return td
}

// chrome reads the role flags from the live session without touching the
// session store.
func chrome(r *http.Request, title string) *template.Data {
	sess := current(r)
	return &template.Data{
		PageTitle: title,
		User:      sess.User(),
		IsAdmin:   sess.IsAdmin(),
		CanCreate: sess.IsAdmin() || sess.IsProfessor(),
	}
}

// retryPage is the form page shown after a failed login or registration.
// A request turned away because another one is pending leaves the browser
// session unmodified, so its toast goes straight onto the page.
func (s *Server) retryPage(r *http.Request, title string, err error) *template.Data {
	if !errors.Is(err, session.ErrAuthInProgress) {
		return s.page(r, title)
	}
	td := chrome(r, title)
	td.Flashes = []model.Toast{{Kind: model.ToastError, Message: msgAuthInProgress}}
	return td
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, tmpl string, td *template.Data) {
	if err := template.RenderStatus(w, r, status, tmpl, td); err != nil {
		s.log.Error("rendering template failed", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	td := s.page(r, "home")
	if td.User != nil {
		q := r.URL.Query()
		td.Search = model.SearchParams{
			Keyword:   strings.TrimSpace(q.Get("keyword")),
			Location:  strings.TrimSpace(q.Get("location")),
			Status:    strings.TrimSpace(q.Get("status")),
			StartDate: strings.TrimSpace(q.Get("startDate")),
			EndDate:   strings.TrimSpace(q.Get("endDate")),
		}
		td.Tabs = model.Statuses
		td.Events = s.catalog.List(r.Context(), td.Search)
		// the fetch may have queued a toast
		td.Flashes = append(td.Flashes, s.sm.Flashes(r.Context())...)
	}
	s.render(w, r, http.StatusOK, "home.html", td)
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", s.page(r, "login"))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))

	_, err := current(r).Login(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		td := s.retryPage(r, "login", err)
		td.Form = map[string]string{"username": username}
		s.render(w, r, loginStatus(err), "login.html", td)
		return
	}

	if err := s.sm.RenewToken(r.Context()); err != nil {
		s.log.Warn("failed renewing session token after login", zap.Error(err))
	}
	middleware.Redirect(w, r)
}

// loginStatus tells a credential rejection apart from a service that could
// not answer or handed back an unusable token.
func loginStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrAuthInProgress):
		return http.StatusConflict
	case api.IsStatus(err, http.StatusUnauthorized), api.IsStatus(err, http.StatusBadRequest):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request) {
	td := s.page(r, "register")
	td.Roles = registerRoles
	td.Form = map[string]string{"role": string(model.RoleStudent)}
	s.render(w, r, http.StatusOK, "register.html", td)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	role := r.PostForm.Get("role")

	err := current(r).Register(r.Context(), username, r.PostForm.Get("password"), role)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, session.ErrAuthInProgress) {
			status = http.StatusConflict
		}
		td := s.retryPage(r, "register", err)
		td.Roles = registerRoles
		td.Form = map[string]string{"username": username, "role": role}
		s.render(w, r, status, "register.html", td)
		return
	}
	middleware.Redirect(w, r)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	current(r).Logout(r.Context())
	if err := s.sm.RenewToken(r.Context()); err != nil {
		s.log.Warn("failed renewing session token after logout", zap.Error(err))
	}
	middleware.Redirect(w, r)
}

func (s *Server) rsvp(w http.ResponseWriter, r *http.Request) {
	attending := r.FormValue("attending") == "true"
	// failures are reported through a toast on the next page
	_ = s.catalog.ToggleRSVP(r.Context(), chi.URLParam(r, "id"), attending)
	http.Redirect(w, r, string(model.ViewHome), http.StatusSeeOther)
}

func (s *Server) createEventPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "create_event.html", s.page(r, "create event"))
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	d := model.EventDraft{
		Title:       strings.TrimSpace(r.PostForm.Get("title")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		Date:        strings.TrimSpace(r.PostForm.Get("date")),
		Location:    strings.TrimSpace(r.PostForm.Get("location")),
	}

	if _, err := s.catalog.Create(r.Context(), d); err != nil {
		td := s.page(r, "create event")
		td.Form = map[string]string{
			"title":       d.Title,
			"description": d.Description,
			"date":        d.Date,
			"location":    d.Location,
		}
		s.render(w, r, http.StatusBadGateway, "create_event.html", td)
		return
	}
	http.Redirect(w, r, string(model.ViewHome), http.StatusSeeOther)
}

func (s *Server) adminPanel(w http.ResponseWriter, r *http.Request) {
	tab, ok := model.ParseStatus(r.URL.Query().Get("tab"))
	if !ok {
		tab = model.StatusPending
	}

	td := s.page(r, "admin")
	td.Tab = tab
	td.Tabs = model.Statuses
	td.Events = s.catalog.ByStatus(r.Context(), tab)
	td.Counts = s.catalog.Counts(r.Context())
	td.Flashes = append(td.Flashes, s.sm.Flashes(r.Context())...)

	s.render(w, r, http.StatusOK, "admin.html", td)
}

func (s *Server) setEventStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := model.ParseStatus(r.FormValue("status"))
	if !ok {
		http.Error(w, "unknown event status", http.StatusBadRequest)
		return
	}

	_ = s.catalog.SetStatus(r.Context(), chi.URLParam(r, "id"), status)

	tab, ok := model.ParseStatus(r.FormValue("tab"))
	if !ok {
		tab = model.StatusPending
	}
	http.Redirect(w, r, "/admin?tab="+string(tab), http.StatusSeeOther)
}
