package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/atlasbuild/buildsite/internal/domain"
)

// --- projects ---

func (s *Server) apiAdminProjects(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := s.store.Projects()
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		var p domain.Project
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if p.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "title is required"})
			return
		}
		if p.Category != "" && !p.Category.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown category"})
			return
		}
		p.ID = 0
		if err := s.store.AddProject(r.Context(), &p); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiAdminProjectByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r.URL.Path, "/api/admin/projects/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var p domain.Project
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if p.Category != "" && !p.Category.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown category"})
			return
		}
		p.ID = id
		if err := s.store.UpdateProject(r.Context(), &p); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := s.store.DeleteProject(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

// --- services ---

func (s *Server) apiAdminServices(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := s.store.Services()
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		var svc domain.Service
		if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if svc.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "title is required"})
			return
		}
		svc.ID = 0
		if err := s.store.AddService(r.Context(), &svc); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiAdminServiceByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r.URL.Path, "/api/admin/services/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var svc domain.Service
		if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		svc.ID = id
		if err := s.store.UpdateService(r.Context(), &svc); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	case http.MethodDelete:
		if err := s.store.DeleteService(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

// --- team ---

func (s *Server) apiAdminTeam(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := s.store.Team()
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		var m domain.TeamMember
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if m.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "name is required"})
			return
		}
		m.ID = 0
		if err := s.store.AddTeamMember(r.Context(), &m); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiAdminTeamMemberByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r.URL.Path, "/api/admin/team/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var m domain.TeamMember
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		m.ID = id
		if err := s.store.UpdateTeamMember(r.Context(), &m); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if err := s.store.DeleteTeamMember(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

// --- testimonials ---

func (s *Server) apiAdminTestimonials(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := s.store.Testimonials()
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		var t domain.Testimonial
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if t.ClientName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "client_name is required"})
			return
		}
		if t.Rating < 1 || t.Rating > 5 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "rating must be between 1 and 5"})
			return
		}
		t.ID = 0
		if err := s.store.AddTestimonial(r.Context(), &t); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiAdminTestimonialByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r.URL.Path, "/api/admin/testimonials/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var t domain.Testimonial
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if t.Rating < 1 || t.Rating > 5 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "rating must be between 1 and 5"})
			return
		}
		t.ID = id
		if err := s.store.UpdateTestimonial(r.Context(), &t); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		if err := s.store.DeleteTestimonial(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

// --- faqs ---

func (s *Server) apiAdminFAQs(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		list := s.store.FAQs()
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		var f domain.FAQ
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if f.Question == "" || f.Answer == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "question and answer are required"})
			return
		}
		f.ID = 0
		if err := s.store.AddFAQ(r.Context(), &f); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiAdminFAQByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r.URL.Path, "/api/admin/faqs/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var f domain.FAQ
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		f.ID = id
		if err := s.store.UpdateFAQ(r.Context(), &f); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	case http.MethodDelete:
		if err := s.store.DeleteFAQ(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

// --- quotes ---

func (s *Server) apiAdminQuotes(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	list := s.store.Quotes()
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.QuoteStatus(raw)
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown status"})
			return
		}
		filtered := []domain.Quote{}
		for _, q := range list {
			if q.Status == status {
				filtered = append(filtered, q)
			}
		}
		list = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) apiAdminQuoteByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	id, ok := pathID(r.URL.Path, "/api/admin/quotes/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var q domain.Quote
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		q.ID = id
		if err := s.store.UpdateQuote(r.Context(), &q); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	case http.MethodDelete:
		if err := s.store.DeleteQuote(r.Context(), id); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiAdminQuotesExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Quotes"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Name", "Email", "Phone", "Message", "Status", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for row, q := range s.store.Quotes() {
		values := []any{
			q.ID, q.Name, q.Email, q.Phone, q.Message,
			string(q.Status), q.CreatedAt.UTC().Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	name := fmt.Sprintf("quotes-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("quote export failed")
	}
}

// --- company details ---

func (s *Server) apiAdminCompany(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.CompanyDetails())
	case http.MethodPut:
		var d domain.CompanyDetails
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if err := s.store.UpsertCompanyDetails(r.Context(), &d); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

// --- stats ---

func (s *Server) apiAdminStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	quotes := s.store.Quotes()
	statusCounts := map[string]int{}
	for _, q := range quotes {
		statusCounts[string(q.Status)]++
	}
	recent := quotes
	if len(recent) > 5 {
		recent = recent[:5]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects":         len(s.store.Projects()),
		"services":         len(s.store.Services()),
		"team_members":     len(s.store.Team()),
		"testimonials":     len(s.store.Testimonials()),
		"faqs":             len(s.store.FAQs()),
		"quotes":           len(quotes),
		"quotes_by_status": statusCounts,
		"quotes_per_day":   quotesPerDay(quotes, time.Now()),
		"recent_quotes":    recent,
	})
}

type dayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// quotesPerDay buckets quotes by calendar day over the trailing 30
// days ending at now, oldest day first. Days without quotes are
// omitted.
func quotesPerDay(quotes []domain.Quote, now time.Time) []dayCount {
	from := now.AddDate(0, 0, -29)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	counts := map[string]int{}
	for _, q := range quotes {
		if q.CreatedAt.Before(start) {
			continue
		}
		counts[q.CreatedAt.Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	series := make([]dayCount, 0, len(days))
	for _, d := range days {
		series = append(series, dayCount{Day: d, Count: counts[d]})
	}
	return series
}
