package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atlasbuild/buildsite/internal/auth"
	"github.com/atlasbuild/buildsite/internal/domain"
	"github.com/atlasbuild/buildsite/internal/metrics"
)

const adminCookie = "admin_token"

var errBadCredentials = errors.New("invalid credentials")

// authenticate verifies a username and password against the stored
// bcrypt hash and, on success, issues a session token and stamps last
// login. Unknown users and wrong passwords both come back as
// errBadCredentials.
func (s *Server) authenticate(r *http.Request, username, password string) (*domain.AdminUser, string, time.Time, error) {
	user, err := s.store.AdminUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.RecordAuthAttempt(false)
			return nil, "", time.Time{}, errBadCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !auth.CheckPasswordHash(password, user.HashedPassword) {
		metrics.RecordAuthAttempt(false)
		return nil, "", time.Time{}, errBadCredentials
	}
	token, expires, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.store.TouchAdminLogin(r.Context(), user.ID); err != nil {
		log.Warn().Err(err).Str("username", user.Username).Msg("last login not recorded")
	}
	metrics.RecordAuthAttempt(true)
	return user, token, expires, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) apiAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "username and password are required"})
		return
	}

	user, token, expires, err := s.authenticate(r, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
			return
		}
		s.writeError(w, err)
		return
	}

	s.setSessionCookie(w, r, token, expires)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": "bearer",
		"expires_at": expires.UTC().Format(time.RFC3339),
		"username":   user.Username,
	})
}

// handleAdminLogin is the no-JS back-office entry point. GET renders
// the form, POST takes a plain form submit and redirects back with the
// session cookie set.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := map[string]any{
			"Title":   "Admin",
			"Company": s.store.CompanyDetails(),
			"Error":   r.URL.Query().Get("err") == "1",
		}
		if claims := s.adminClaims(r); claims != nil {
			data["Username"] = claims.Username
		}
		s.render(w, "admin_login.html", data)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		if username == "" || password == "" {
			http.Redirect(w, r, "/admin/login?err=1", http.StatusSeeOther)
			return
		}
		_, token, expires, err := s.authenticate(r, username, password)
		if err != nil {
			if errors.Is(err, errBadCredentials) {
				http.Redirect(w, r, "/admin/login?err=1", http.StatusSeeOther)
				return
			}
			log.Error().Err(err).Msg("admin login")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.setSessionCookie(w, r, token, expires)
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	s.clearSessionCookie(w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Server) apiAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	s.clearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) apiAdminSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	claims := s.adminClaims(r)
	if claims == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"username":      claims.Username,
		"expires_at":    claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// adminClaims checks the Bearer header first, then the session cookie.
func (s *Server) adminClaims(r *http.Request) *auth.Claims {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(h), "bearer ") {
		if claims, err := s.tokens.Verify(strings.TrimSpace(h[7:])); err == nil {
			return claims
		}
	}
	if c, err := r.Cookie(adminCookie); err == nil && c.Value != "" {
		if claims, err := s.tokens.Verify(c.Value); err == nil {
			return claims
		}
	}
	return nil
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminClaims(r) != nil {
		return true
	}
	writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	return false
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
