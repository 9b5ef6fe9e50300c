package web

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookie = "flash"

// Flash is a one-shot message shown on the next rendered page.
// Category is one of the alert styles: success, info, warning, danger.
type Flash struct {
	Category string
	Message  string
}

// SetFlash queues a flash message in a cookie. It rides a cookie rather
// than the server-side session because a flash must survive logout.
func SetFlash(w http.ResponseWriter, category, message string) {
	val := base64.RawURLEncoding.EncodeToString([]byte(category + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns any queued flash messages and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil
	}
	return []Flash{{Category: category, Message: message}}
}
