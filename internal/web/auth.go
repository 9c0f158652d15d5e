package web

import (
	"net/http"

	"github.com/ghaggin/cems/internal/model"
	"github.com/ghaggin/cems/internal/session"
)

const msgNotAdmin = "You do not have permission to access the admin panel"

// openSession derives the browser's identity from its persisted token once
// per request and hands it to the handlers through the context.
func (s *Server) openSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Open(r.Context())
		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

func current(r *http.Request) *session.Session {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		panic("web: handler mounted without openSession")
	}
	return sess
}

// Presence of a user in the session indicates auth
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !current(r).Authenticated() {
			http.Redirect(w, r, string(model.ViewLogin), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCreator admits admins and professors.
func requireCreator(next http.Handler) http.Handler {
	return requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := current(r)
		if !sess.IsAdmin() && !sess.IsProfessor() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !current(r).IsAdmin() {
			s.sm.Notify(r.Context(), model.Toast{Kind: model.ToastError, Message: msgNotAdmin})
			http.Redirect(w, r, string(model.ViewHome), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
