package middleware

import (
	"context"
	"net/http"

	"github.com/ghaggin/cems/internal/model"
)

type navKey struct{}

type navTarget struct {
	view model.View
	set  bool
}

// Navigation gives each request a slot for the view an operation wants the
// browser sent to next.
func Navigation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), navKey{}, &navTarget{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Navigator records navigation requests in the request's slot.
type Navigator struct{}

func (Navigator) Navigate(ctx context.Context, v model.View) {
	if t, ok := ctx.Value(navKey{}).(*navTarget); ok {
		t.view = v
		t.set = true
	}
}

// Redirect sends the browser to the recorded view, if any, and reports
// whether it did.
func Redirect(w http.ResponseWriter, r *http.Request) bool {
	t, ok := r.Context().Value(navKey{}).(*navTarget)
	if !ok || !t.set {
		return false
	}
	http.Redirect(w, r, string(t.view), http.StatusSeeOther)
	return true
}
