package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbuild/buildsite/internal/domain"
	"github.com/atlasbuild/buildsite/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(testutil.OpenTestDB(t))
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestLoadEmptyDatabase(t *testing.T) {
	s := newTestStore(t)

	assert.Empty(t, s.Projects())
	assert.Empty(t, s.Services())
	assert.Empty(t, s.Team())
	assert.Empty(t, s.Testimonials())
	assert.Empty(t, s.FAQs())
	assert.Empty(t, s.Quotes())
	assert.Equal(t, domain.DefaultCompanyDetails(), s.CompanyDetails())
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &domain.Project{
		Title:       "Marina Tower Complex",
		Category:    domain.CategoryResidential,
		Location:    "Dubai Marina",
		Year:        "2024",
		Area:        "12,000 sqm",
		Description: "Twin residential towers with shared podium.",
	}
	require.NoError(t, s.AddProject(ctx, p))
	require.NotZero(t, p.ID)

	got := s.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, "Marina Tower Complex", got[0].Title)

	p.Location = "Dubai Marina, Phase 2"
	require.NoError(t, s.UpdateProject(ctx, p))
	assert.Equal(t, "Dubai Marina, Phase 2", s.Projects()[0].Location)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	assert.Empty(t, s.Projects())
}

func TestProjectsByCategoryPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []domain.Project{
		{Title: "Marina Tower Complex", Category: domain.CategoryResidential},
		{Title: "Logistics Hub", Category: domain.CategoryIndustrial},
		{Title: "Palm Villas", Category: domain.CategoryResidential},
		{Title: "Downtown Mall", Category: domain.CategoryCommercial},
	}
	for i := range seed {
		require.NoError(t, s.AddProject(ctx, &seed[i]))
	}

	residential := s.ProjectsByCategory(domain.CategoryResidential)
	require.Len(t, residential, 2)
	assert.Equal(t, "Marina Tower Complex", residential[0].Title)
	assert.Equal(t, "Palm Villas", residential[1].Title)

	all := s.ProjectsByCategory("")
	assert.Len(t, all, 4)
}

func TestUpdateKeepsPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &domain.Project{Title: "First", Category: domain.CategoryCommercial}
	b := &domain.Project{Title: "Second", Category: domain.CategoryCommercial}
	require.NoError(t, s.AddProject(ctx, a))
	require.NoError(t, s.AddProject(ctx, b))

	a.Title = "First, renamed"
	require.NoError(t, s.UpdateProject(ctx, a))

	got := s.Projects()
	require.Len(t, got, 2)
	assert.Equal(t, "First, renamed", got[0].Title)
	assert.Equal(t, "Second", got[1].Title)
}

func TestUpdateMissingProject(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateProject(context.Background(), &domain.Project{ID: 999, Title: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.DeleteProject(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceFeaturesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	svc := &domain.Service{
		Title:       "Structural Engineering",
		Description: "Design and review of load-bearing structures.",
		Features:    []string{"Seismic analysis", "Steel detailing"},
	}
	require.NoError(t, s.AddService(ctx, svc))

	require.NoError(t, s.Load(ctx))
	got := s.Services()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Seismic analysis", "Steel detailing"}, got[0].Features)
}

func TestCompanyDetailsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := s.CompanyDetails()
	d.BrandName = "ATLAS BUILD"
	d.Phone = "(555) 010-2030"
	require.NoError(t, s.UpsertCompanyDetails(ctx, &d))
	assert.Equal(t, domain.CompanyDetailsID, d.ID)

	// second save with the same payload stays a single row
	require.NoError(t, s.UpsertCompanyDetails(ctx, &d))

	require.NoError(t, s.Load(ctx))
	got := s.CompanyDetails()
	assert.Equal(t, "ATLAS BUILD", got.BrandName)
	assert.Equal(t, "(555) 010-2030", got.Phone)
	assert.Equal(t, domain.CompanyDetailsID, got.ID)
}

func TestFAQsSortedByOrderIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f1 := &domain.FAQ{Question: "Third", Answer: "a", OrderIndex: 3}
	f2 := &domain.FAQ{Question: "First", Answer: "b", OrderIndex: 1}
	f3 := &domain.FAQ{Question: "Second", Answer: "c", OrderIndex: 2}
	require.NoError(t, s.AddFAQ(ctx, f1))
	require.NoError(t, s.AddFAQ(ctx, f2))
	require.NoError(t, s.AddFAQ(ctx, f3))

	questions := func() []string {
		var out []string
		for _, f := range s.FAQs() {
			out = append(out, f.Question)
		}
		return out
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, questions())

	// moving an entry re-sorts the mirror
	f1.OrderIndex = 0
	require.NoError(t, s.UpdateFAQ(ctx, f1))
	assert.Equal(t, []string{"Third", "First", "Second"}, questions())
}

func TestTeamSortedByOrderIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m1 := &domain.TeamMember{Name: "Second", Role: "Engineer", OrderIndex: 2}
	m2 := &domain.TeamMember{Name: "First", Role: "Director", OrderIndex: 1}
	require.NoError(t, s.AddTeamMember(ctx, m1))
	require.NoError(t, s.AddTeamMember(ctx, m2))

	team := s.Team()
	require.Len(t, team, 2)
	assert.Equal(t, "First", team[0].Name)
	assert.Equal(t, "Second", team[1].Name)
}

func TestQuoteDefaultsToPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := &domain.Quote{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Phone:   "555-0100",
		Message: "Need a quote for a warehouse extension.",
	}
	require.NoError(t, s.AddQuote(ctx, q))

	got := s.Quotes()
	require.Len(t, got, 1)
	assert.Equal(t, domain.QuoteStatusPending, got[0].Status)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestQuotesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &domain.Quote{Name: "One", Email: "one@example.com", Message: "m"}
	second := &domain.Quote{Name: "Two", Email: "two@example.com", Message: "m"}
	require.NoError(t, s.AddQuote(ctx, first))
	require.NoError(t, s.AddQuote(ctx, second))

	got := s.Quotes()
	require.Len(t, got, 2)
	assert.Equal(t, "Two", got[0].Name)
	assert.Equal(t, "One", got[1].Name)
}

func TestQuoteStatusTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := &domain.Quote{Name: "Jane Doe", Email: "jane@example.com", Message: "m"}
	require.NoError(t, s.AddQuote(ctx, q))

	q.Status = domain.QuoteStatusReviewed
	require.NoError(t, s.UpdateQuote(ctx, q))
	assert.Equal(t, domain.QuoteStatusReviewed, s.Quotes()[0].Status)

	q.Status = domain.QuoteStatusContacted
	require.NoError(t, s.UpdateQuote(ctx, q))
	assert.Equal(t, domain.QuoteStatusContacted, s.Quotes()[0].Status)
}

func TestQuoteRejectsUnknownStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	q := &domain.Quote{Name: "Jane Doe", Email: "jane@example.com", Message: "m"}
	require.NoError(t, s.AddQuote(ctx, q))

	q.Status = domain.QuoteStatus("archived")
	err := s.UpdateQuote(ctx, q)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, domain.QuoteStatusPending, s.Quotes()[0].Status)

	bad := &domain.Quote{Name: "X", Email: "x@example.com", Message: "m", Status: "wat"}
	assert.ErrorIs(t, s.AddQuote(ctx, bad), domain.ErrInvalidStatus)
}

func TestReloadReflectsDatabase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddTeamMember(ctx, &domain.TeamMember{Name: "Sam Ortiz", Role: "Site Manager"}))
	require.NoError(t, s.AddTestimonial(ctx, &domain.Testimonial{ClientName: "Acme Corp", Content: "On time and on budget.", Rating: 5}))

	require.NoError(t, s.Load(ctx))
	require.Len(t, s.Team(), 1)
	require.Len(t, s.Testimonials(), 1)
	assert.Equal(t, "Sam Ortiz", s.Team()[0].Name)
	assert.Equal(t, 5, s.Testimonials()[0].Rating)
}
