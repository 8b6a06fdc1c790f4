// Package store is the single data-access layer between the HTTP
// handlers and the database. It keeps an in-memory mirror of every
// collection, loaded once at startup; mutations issue one database
// round trip and patch the mirror only on success, so the mirror is
// never ahead of the store. All failures are returned to the caller.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atlasbuild/buildsite/internal/domain"
)

type Store struct {
	db *gorm.DB

	mu           sync.RWMutex
	projects     []domain.Project
	services     []domain.Service
	company      domain.CompanyDetails
	team         []domain.TeamMember
	testimonials []domain.Testimonial
	faqs         []domain.FAQ
	quotes       []domain.Quote
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, company: domain.DefaultCompanyDetails()}
}

// Load fetches every collection in its natural order and fills the
// mirrors. Called once at startup; there is no lazy or per-page fetch.
func (s *Store) Load(ctx context.Context) error {
	var (
		projects     []domain.Project
		services     []domain.Service
		team         []domain.TeamMember
		testimonials []domain.Testimonial
		faqs         []domain.FAQ
		quotes       []domain.Quote
	)
	db := s.db.WithContext(ctx)

	if err := db.Order("id asc").Find(&projects).Error; err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	if err := db.Order("id asc").Find(&services).Error; err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	if err := db.Order("order_index asc").Find(&team).Error; err != nil {
		return fmt.Errorf("load team: %w", err)
	}
	if err := db.Order("id asc").Find(&testimonials).Error; err != nil {
		return fmt.Errorf("load testimonials: %w", err)
	}
	if err := db.Order("order_index asc").Find(&faqs).Error; err != nil {
		return fmt.Errorf("load faqs: %w", err)
	}
	if err := db.Order("created_at desc").Find(&quotes).Error; err != nil {
		return fmt.Errorf("load quotes: %w", err)
	}

	company := domain.DefaultCompanyDetails()
	var row domain.CompanyDetails
	err := db.First(&row, domain.CompanyDetailsID).Error
	switch {
	case err == nil:
		company = row
	case errors.Is(err, gorm.ErrRecordNotFound):
		// keep defaults until the admin saves the singleton
	default:
		return fmt.Errorf("load company details: %w", err)
	}

	s.mu.Lock()
	s.projects = projects
	s.services = services
	s.team = team
	s.testimonials = testimonials
	s.faqs = faqs
	s.quotes = quotes
	s.company = company
	s.mu.Unlock()
	return nil
}

// --- Projects ---

func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Project(nil), s.projects...)
}

// ProjectsByCategory filters the mirror by category, preserving the
// original relative order. An empty category returns everything.
func (s *Store) ProjectsByCategory(category domain.ProjectCategory) []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if category == "" {
		return append([]domain.Project(nil), s.projects...)
	}
	out := []domain.Project{}
	for _, p := range s.projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) AddProject(ctx context.Context, p *domain.Project) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("add project: %w", err)
	}
	s.mu.Lock()
	s.projects = append(s.projects, *p)
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	if err := s.update(ctx, &domain.Project{}, p.ID, p); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = *p
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	if err := s.delete(ctx, &domain.Project{}, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.mu.Lock()
	s.projects = removeByID(s.projects, id, func(p domain.Project) uint { return p.ID })
	s.mu.Unlock()
	return nil
}

// --- Services ---

func (s *Store) Services() []domain.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Service(nil), s.services...)
}

func (s *Store) AddService(ctx context.Context, svc *domain.Service) error {
	if err := s.db.WithContext(ctx).Create(svc).Error; err != nil {
		return fmt.Errorf("add service: %w", err)
	}
	s.mu.Lock()
	s.services = append(s.services, *svc)
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateService(ctx context.Context, svc *domain.Service) error {
	if err := s.update(ctx, &domain.Service{}, svc.ID, svc); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	s.mu.Lock()
	for i := range s.services {
		if s.services[i].ID == svc.ID {
			s.services[i] = *svc
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteService(ctx context.Context, id uint) error {
	if err := s.delete(ctx, &domain.Service{}, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	s.mu.Lock()
	s.services = removeByID(s.services, id, func(v domain.Service) uint { return v.ID })
	s.mu.Unlock()
	return nil
}

// --- Company details (singleton) ---

func (s *Store) CompanyDetails() domain.CompanyDetails {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company
}

// UpsertCompanyDetails writes the singleton row, keyed on the fixed id.
// Calling it twice with the same payload is a no-op the second time.
func (s *Store) UpsertCompanyDetails(ctx context.Context, d *domain.CompanyDetails) error {
	d.ID = domain.CompanyDetailsID
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(d).Error
	if err != nil {
		return fmt.Errorf("upsert company details: %w", err)
	}
	s.mu.Lock()
	s.company = *d
	s.mu.Unlock()
	return nil
}

// --- Team ---

func (s *Store) Team() []domain.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TeamMember(nil), s.team...)
}

func (s *Store) AddTeamMember(ctx context.Context, m *domain.TeamMember) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	s.mu.Lock()
	s.team = append(s.team, *m)
	s.sortTeamLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateTeamMember(ctx context.Context, m *domain.TeamMember) error {
	if err := s.update(ctx, &domain.TeamMember{}, m.ID, m); err != nil {
		return fmt.Errorf("update team member: %w", err)
	}
	s.mu.Lock()
	for i := range s.team {
		if s.team[i].ID == m.ID {
			s.team[i] = *m
			break
		}
	}
	s.sortTeamLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteTeamMember(ctx context.Context, id uint) error {
	if err := s.delete(ctx, &domain.TeamMember{}, id); err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	s.mu.Lock()
	s.team = removeByID(s.team, id, func(m domain.TeamMember) uint { return m.ID })
	s.mu.Unlock()
	return nil
}

// --- Testimonials ---

func (s *Store) Testimonials() []domain.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Testimonial(nil), s.testimonials...)
}

func (s *Store) AddTestimonial(ctx context.Context, t *domain.Testimonial) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("add testimonial: %w", err)
	}
	s.mu.Lock()
	s.testimonials = append(s.testimonials, *t)
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateTestimonial(ctx context.Context, t *domain.Testimonial) error {
	if err := s.update(ctx, &domain.Testimonial{}, t.ID, t); err != nil {
		return fmt.Errorf("update testimonial: %w", err)
	}
	s.mu.Lock()
	for i := range s.testimonials {
		if s.testimonials[i].ID == t.ID {
			s.testimonials[i] = *t
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteTestimonial(ctx context.Context, id uint) error {
	if err := s.delete(ctx, &domain.Testimonial{}, id); err != nil {
		return fmt.Errorf("delete testimonial: %w", err)
	}
	s.mu.Lock()
	s.testimonials = removeByID(s.testimonials, id, func(t domain.Testimonial) uint { return t.ID })
	s.mu.Unlock()
	return nil
}

// --- FAQs ---

func (s *Store) FAQs() []domain.FAQ {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FAQ(nil), s.faqs...)
}

func (s *Store) AddFAQ(ctx context.Context, f *domain.FAQ) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("add faq: %w", err)
	}
	s.mu.Lock()
	s.faqs = append(s.faqs, *f)
	s.sortFAQsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateFAQ(ctx context.Context, f *domain.FAQ) error {
	if err := s.update(ctx, &domain.FAQ{}, f.ID, f); err != nil {
		return fmt.Errorf("update faq: %w", err)
	}
	s.mu.Lock()
	for i := range s.faqs {
		if s.faqs[i].ID == f.ID {
			s.faqs[i] = *f
			break
		}
	}
	s.sortFAQsLocked()
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteFAQ(ctx context.Context, id uint) error {
	if err := s.delete(ctx, &domain.FAQ{}, id); err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}
	s.mu.Lock()
	s.faqs = removeByID(s.faqs, id, func(f domain.FAQ) uint { return f.ID })
	s.mu.Unlock()
	return nil
}

func (s *Store) sortTeamLocked() {
	sort.SliceStable(s.team, func(i, j int) bool {
		return s.team[i].OrderIndex < s.team[j].OrderIndex
	})
}

// mirror stays sorted by the explicit sort key after every FAQ mutation
func (s *Store) sortFAQsLocked() {
	sort.SliceStable(s.faqs, func(i, j int) bool {
		return s.faqs[i].OrderIndex < s.faqs[j].OrderIndex
	})
}

// --- Quotes ---

func (s *Store) Quotes() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Quote(nil), s.quotes...)
}

// AddQuote inserts a visitor inquiry. Status defaults to pending and
// created_at is set server-side; the mirror is newest-first.
func (s *Store) AddQuote(ctx context.Context, q *domain.Quote) error {
	if q.Status != "" && !q.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("add quote: %w", err)
	}
	s.mu.Lock()
	s.quotes = append([]domain.Quote{*q}, s.quotes...)
	s.mu.Unlock()
	return nil
}

func (s *Store) UpdateQuote(ctx context.Context, q *domain.Quote) error {
	if !q.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if err := s.update(ctx, &domain.Quote{}, q.ID, q); err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	s.mu.Lock()
	for i := range s.quotes {
		if s.quotes[i].ID == q.ID {
			s.quotes[i] = *q
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteQuote(ctx context.Context, id uint) error {
	if err := s.delete(ctx, &domain.Quote{}, id); err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	s.mu.Lock()
	s.quotes = removeByID(s.quotes, id, func(q domain.Quote) uint { return q.ID })
	s.mu.Unlock()
	return nil
}

// --- shared round-trip helpers ---

// update writes all fields except the key and creation timestamp,
// keyed by id. A vanished row is reported, not silently dropped.
func (s *Store) update(ctx context.Context, model interface{}, id uint, values interface{}) error {
	if id == 0 {
		return domain.ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).
		Select("*").Omit("id", "created_at").Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) delete(ctx context.Context, model interface{}, id uint) error {
	if id == 0 {
		return domain.ErrNotFound
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func removeByID[T any](list []T, id uint, idOf func(T) uint) []T {
	out := list[:0]
	for _, item := range list {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}
