package handlers

import (
	"net/http"
	"time"

	"github.com/Togather-Foundation/booking/internal/api/middleware"
	"github.com/Togather-Foundation/booking/internal/api/problem"
	"github.com/Togather-Foundation/booking/internal/domain/booking"
)

// AuthHandler serves sign-up, login and the session endpoints. Login sets
// the HttpOnly session cookie and also returns the token for Bearer clients.
type AuthHandler struct {
	Users        UserService
	CookieSecure bool
	Env          string
}

func NewAuthHandler(users UserService, cookieSecure bool, env string) *AuthHandler {
	return &AuthHandler{Users: users, CookieSecure: cookieSecure, Env: env}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input booking.SignUpInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	profile, err := h.Users.SignUp(r.Context(), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input booking.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	session, err := h.Users.Login(r.Context(), input)
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, session)
}

// Logout clears the session cookie. Tokens are stateless, so a Bearer
// client simply discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.Users.Me(r.Context(), currentUser(r))
	if err != nil {
		problem.FromError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

type csrfResponse struct {
	Token  string `json:"csrf_token"`
	Header string `json:"header"`
}

// CSRF hands a cookie session its token for the X-CSRF-Token header.
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	token := middleware.CSRFToken(r)
	w.Header().Set(middleware.CSRFHeader, token)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, csrfResponse{Token: token, Header: middleware.CSRFHeader})
}
