package middleware

import (
	"context"
	"net/http"

	"github.com/jgomezbdk/fixmate/internal/auth"
	"github.com/jgomezbdk/fixmate/internal/web"
)

type userIDKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the authenticated user id from the context, or 0 when the
// request never passed RequireAuth.
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey{}).(int64)
	return id
}

// RequireAuth validates the session cookie and injects the user id into the
// request context. Requests without a valid session are flashed and
// redirected to the login page.
func RequireAuth(sessions *auth.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookie)
			if err != nil {
				web.SetFlash(w, "warning", "Please log in to access this page.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			userID, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil || userID == 0 {
				web.SetFlash(w, "warning", "Your session has expired. Please log in again.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
