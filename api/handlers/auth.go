package handlers

import (
	"net/http"
	"time"

	"mdip/core/auth"
)

// SessionCookie is the cookie the browser carries between requests. The CSRF
// token is returned in the login body and echoed back in X-CSRF-Token.
const SessionCookie = "mdip_session"

type loginResponse struct {
	User      *auth.UserDTO `json:"user"`
	CSRFToken string        `json:"csrf_token"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !h.decode(w, r, &creds) {
		return
	}
	user, err := h.Auth.Verify(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.Audits.Log(r.Context(), creds.Username, "auth.login_failed", "")
		h.writeError(w, err)
		return
	}
	sess, err := h.Sessions.Issue(r.Context(), user, r.RemoteAddr, r.UserAgent())
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.ExpiresAt,
	})
	h.Audits.Log(r.Context(), user.Username, "auth.login", "role="+user.Role)
	writeJSON(w, http.StatusOK, loginResponse{User: user, CSRFToken: sess.CSRFToken})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess != nil {
		if err := h.Sessions.Revoke(r.Context(), sess.ID); err != nil {
			h.writeError(w, err)
			return
		}
		h.Audits.Log(r.Context(), sess.Username, "auth.logout", "")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	user, err := h.Auth.Lookup(r.Context(), sess.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":       user,
		"expires_at": sess.ExpiresAt,
	})
}
