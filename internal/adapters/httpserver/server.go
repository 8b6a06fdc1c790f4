// Package httpserver exposes the public site and the admin JSON API.
package httpserver

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/atlasbuild/buildsite/internal/adapters/mailer"
	"github.com/atlasbuild/buildsite/internal/auth"
	"github.com/atlasbuild/buildsite/internal/config"
	"github.com/atlasbuild/buildsite/internal/domain"
	"github.com/atlasbuild/buildsite/internal/metrics"
	"github.com/atlasbuild/buildsite/internal/store"
)

type Server struct {
	mux    *http.ServeMux
	tmpl   *template.Template
	store  *store.Store
	tokens *auth.TokenManager
	mailer *mailer.Mailer
	cfg    *config.Config
}

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func New(cfg *config.Config, st *store.Store, tokens *auth.TokenManager, ml *mailer.Mailer, tmpl *template.Template) http.Handler {
	s := &Server{
		mux:    http.NewServeMux(),
		tmpl:   tmpl,
		store:  st,
		tokens: tokens,
		mailer: ml,
		cfg:    cfg,
	}
	s.routes()
	return Chain(s.mux,
		PublicRateLimit(map[string]int{
			"/api/contact":     15,
			"/api/admin/login": 10,
			"/admin/login":     10,
		}),
		RateLimit(120),
		SecurityHeaders,
		Gzip,
		metrics.Middleware,
		CORS(&cfg.CORS),
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.Handle("/public/", http.StripPrefix("/public/", http.FileServer(http.Dir("public"))))

	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/projects", s.handleProjects)
	s.mux.HandleFunc("/services", s.handleServices)
	s.mux.HandleFunc("/about", s.handleAbout)
	s.mux.HandleFunc("/contact", s.handleContact)
	s.mux.HandleFunc("/faq", s.handleFAQ)

	s.mux.HandleFunc("/admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("/admin/logout", s.handleAdminLogout)

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	s.mux.HandleFunc("/api/projects", s.apiProjects)
	s.mux.HandleFunc("/api/contact", s.apiContact)

	s.mux.HandleFunc("/api/admin/login", s.apiAdminLogin)
	s.mux.HandleFunc("/api/admin/logout", s.apiAdminLogout)
	s.mux.HandleFunc("/api/admin/session", s.apiAdminSession)

	s.mux.HandleFunc("/api/admin/projects", s.apiAdminProjects)
	s.mux.HandleFunc("/api/admin/projects/", s.apiAdminProjectByID)
	s.mux.HandleFunc("/api/admin/services", s.apiAdminServices)
	s.mux.HandleFunc("/api/admin/services/", s.apiAdminServiceByID)
	s.mux.HandleFunc("/api/admin/team", s.apiAdminTeam)
	s.mux.HandleFunc("/api/admin/team/", s.apiAdminTeamMemberByID)
	s.mux.HandleFunc("/api/admin/testimonials", s.apiAdminTestimonials)
	s.mux.HandleFunc("/api/admin/testimonials/", s.apiAdminTestimonialByID)
	s.mux.HandleFunc("/api/admin/faqs", s.apiAdminFAQs)
	s.mux.HandleFunc("/api/admin/faqs/", s.apiAdminFAQByID)
	s.mux.HandleFunc("/api/admin/quotes", s.apiAdminQuotes)
	s.mux.HandleFunc("/api/admin/quotes/export", s.apiAdminQuotesExport)
	s.mux.HandleFunc("/api/admin/quotes/", s.apiAdminQuoteByID)
	s.mux.HandleFunc("/api/admin/company", s.apiAdminCompany)
	s.mux.HandleFunc("/api/admin/stats", s.apiAdminStats)
}

// --- public pages ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	projects := s.store.Projects()
	if len(projects) > 6 {
		projects = projects[:6]
	}
	s.render(w, "home.html", map[string]any{
		"Title":        "Home",
		"Company":      s.store.CompanyDetails(),
		"Projects":     projects,
		"Services":     s.store.Services(),
		"Testimonials": s.store.Testimonials(),
		"CanonicalURL": s.canonicalBase(r) + "/",
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	category, ok := domain.ParseProjectCategory(r.URL.Query().Get("category"))
	if !ok {
		category = ""
	}
	s.render(w, "projects.html", map[string]any{
		"Title":        "Projects",
		"Company":      s.store.CompanyDetails(),
		"Projects":     s.store.ProjectsByCategory(category),
		"Category":     string(category),
		"Categories":   domain.ProjectCategories,
		"CanonicalURL": s.canonicalBase(r) + "/projects",
	})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.render(w, "services.html", map[string]any{
		"Title":        "Services",
		"Company":      s.store.CompanyDetails(),
		"Services":     s.store.Services(),
		"CanonicalURL": s.canonicalBase(r) + "/services",
	})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, "about.html", map[string]any{
		"Title":        "About Us",
		"Company":      s.store.CompanyDetails(),
		"Team":         s.store.Team(),
		"Testimonials": s.store.Testimonials(),
		"CanonicalURL": s.canonicalBase(r) + "/about",
	})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	s.render(w, "contact.html", map[string]any{
		"Title":        "Contact",
		"Company":      s.store.CompanyDetails(),
		"Sent":         r.URL.Query().Get("sent") == "1",
		"CanonicalURL": s.canonicalBase(r) + "/contact",
	})
}

func (s *Server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	s.render(w, "faq.html", map[string]any{
		"Title":        "FAQ",
		"Company":      s.store.CompanyDetails(),
		"FAQs":         s.store.FAQs(),
		"CanonicalURL": s.canonicalBase(r) + "/faq",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"app":     s.cfg.App.Name,
		"version": s.cfg.App.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// --- public API ---

func (s *Server) apiProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	category, ok := domain.ParseProjectCategory(r.URL.Query().Get("category"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown category"})
		return
	}
	list := s.store.ProjectsByCategory(category)
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (c contactRequest) validate() string {
	// length bounds count runes, not bytes
	name := utf8.RuneCountInString(strings.TrimSpace(c.Name))
	if name < 2 || name > 100 {
		return "name must be between 2 and 100 characters"
	}
	if !emailRe.MatchString(strings.TrimSpace(c.Email)) {
		return "invalid email address"
	}
	msg := utf8.RuneCountInString(strings.TrimSpace(c.Message))
	if msg == 0 || msg > 5000 {
		return "message must be between 1 and 5000 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Phone)) > 30 {
		return "phone number too long"
	}
	return ""
}

func (s *Server) apiContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	var req contactRequest
	asJSON := strings.Contains(r.Header.Get("Content-Type"), "application/json")
	if asJSON {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
	} else {
		// plain form post from the no-JS contact page
		if err := r.ParseForm(); err != nil {
			http.Error(w, "form", http.StatusBadRequest)
			return
		}
		req = contactRequest{
			Name:    r.FormValue("name"),
			Email:   r.FormValue("email"),
			Phone:   r.FormValue("phone"),
			Message: r.FormValue("message"),
		}
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": msg})
		return
	}
	q := domain.Quote{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.store.AddQuote(r.Context(), &q); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.RecordQuoteSubmission()
	go func(q domain.Quote) {
		if err := s.mailer.NotifyQuote(q); err != nil {
			log.Error().Err(err).Uint("quote_id", q.ID).Msg("quote notification failed")
		}
	}(q)
	if !asJSON {
		http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// --- shared helpers ---

func (s *Server) render(w http.ResponseWriter, name string, data map[string]any) {
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", http.StatusInternalServerError)
	}
}

func (s *Server) canonicalBase(r *http.Request) string {
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	return scheme + "://" + host
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store errors onto HTTP status codes. Unknown errors
// are logged and come back as a plain 500 without internals.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("store error")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func pathID(path, prefix string) (uint, bool) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
