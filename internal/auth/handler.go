package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jgomezbdk/fixmate/internal/models"
	"github.com/jgomezbdk/fixmate/internal/store"
	"github.com/jgomezbdk/fixmate/internal/web"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions *SessionStore
	render   *web.Renderer
}

func NewHandler(users UserStore, sessions *SessionStore, render *web.Renderer) *Handler {
	return &Handler{users: users, sessions: sessions, render: render}
}

// formData pre-fills the username field when a form is re-displayed.
type formData struct {
	Username string
}

// Home redirects to the dashboard when logged in, else to the login page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// RegisterForm shows the registration page.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render.Render(w, http.StatusOK, "register.html", web.PageData{
		Title:   "Register",
		Flashes: web.PopFlashes(w, r),
		Data:    formData{},
	})
}

// Register creates a new user and logs them straight in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	creds := parseCredentials(r)
	if err := creds.Validate(); err != nil {
		h.renderForm(w, r, "register.html", "Register", creds.Username, "danger", err.Error())
		return
	}

	hash, err := HashPassword(creds.Password)
	if err != nil {
		log.Printf("hash password: %v", err)
		h.renderForm(w, r, "register.html", "Register", creds.Username, "danger", "An error occurred during registration.")
		return
	}

	user, err := h.users.CreateUser(r.Context(), creds.Username, hash)
	if errors.Is(err, store.ErrDuplicateUsername) {
		h.renderForm(w, r, "register.html", "Register", creds.Username, "danger", "Username already taken. Please choose another.")
		return
	}
	if err != nil {
		log.Printf("register: %v", err)
		h.renderForm(w, r, "register.html", "Register", creds.Username, "danger", "An error occurred during registration.")
		return
	}

	if err := h.startSession(w, r, user.ID); err != nil {
		log.Printf("register session: %v", err)
		web.SetFlash(w, "warning", "Registration succeeded but automatic login failed. Please log in manually.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	web.SetFlash(w, "success", "Registration successful! Welcome, "+user.Username+".")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// LoginForm shows the login page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.loggedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.render.Render(w, http.StatusOK, "login.html", web.PageData{
		Title:   "Log In",
		Flashes: web.PopFlashes(w, r),
		Data:    formData{},
	})
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds := parseCredentials(r)
	if err := creds.Validate(); err != nil {
		h.renderForm(w, r, "login.html", "Log In", creds.Username, "danger", err.Error())
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), creds.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("login: %v", err)
		h.renderForm(w, r, "login.html", "Log In", creds.Username, "danger", "An error occurred during login.")
		return
	}
	if user == nil || !VerifyPassword(creds.Password, user.PasswordHash) {
		h.renderForm(w, r, "login.html", "Log In", creds.Username, "danger", "Invalid username or password.")
		return
	}

	if err := h.startSession(w, r, user.ID); err != nil {
		log.Printf("login session: %v", err)
		h.renderForm(w, r, "login.html", "Log In", creds.Username, "danger", "An error occurred during login.")
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout destroys the current session. Safe to call without one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Printf("logout: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	web.SetFlash(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func parseCredentials(r *http.Request) models.Credentials {
	return models.Credentials{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page, title, username, category, msg string) {
	flashes := append(web.PopFlashes(w, r), web.Flash{Category: category, Message: msg})
	h.render.Render(w, http.StatusOK, page, web.PageData{
		Title:   title,
		Flashes: flashes,
		Data:    formData{Username: username},
	})
}

func (h *Handler) loggedIn(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return false
	}
	id, err := h.sessions.Get(r.Context(), cookie.Value)
	return err == nil && id != 0
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	sid, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL / time.Second),
	})
	return nil
}
