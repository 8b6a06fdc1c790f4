package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atlasbuild/buildsite/internal/adapters/httpserver"
	"github.com/atlasbuild/buildsite/internal/adapters/mailer"
	"github.com/atlasbuild/buildsite/internal/auth"
	"github.com/atlasbuild/buildsite/internal/config"
	"github.com/atlasbuild/buildsite/internal/domain"
	"github.com/atlasbuild/buildsite/internal/store"
	"github.com/atlasbuild/buildsite/internal/testutil"
	"github.com/atlasbuild/buildsite/internal/views"
)

type testEnv struct {
	handler http.Handler
	store   *store.Store
	db      *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenTestDB(t)
	st := store.New(db)
	require.NoError(t, st.Load(context.Background()))

	cfg := &config.Config{
		App: config.AppConfig{Name: "Buildsite", Version: "test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         86400,
		},
	}
	tmpl, err := template.New("layout").ParseFS(views.FS, "*.html")
	require.NoError(t, err)

	tokens := auth.NewTokenManager(strings.Repeat("k", 32), time.Hour)
	ml := mailer.New(&cfg.Email)
	return &testEnv{
		handler: httpserver.New(cfg, st, tokens, ml, tmpl),
		store:   st,
		db:      db,
	}
}

func (e *testEnv) seedAdmin(t *testing.T, username, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&domain.AdminUser{
		Username:       username,
		HashedPassword: hash,
		IsActive:       true,
	}).Error)
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	rec := e.do(t, http.MethodPost, "/api/admin/login", bytes.NewReader(body), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path string, body *bytes.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestPublicPagesRender(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/projects", "/services", "/about", "/contact", "/faq"} {
		rec := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}
}

func TestHomeUnknownPathIs404(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestContactSubmission(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]string{
		"name":    "Jane Doe",
		"email":   "Jane@Example.com",
		"phone":   "555-0100",
		"message": "Need a quote for a warehouse extension.",
	})
	rec := env.do(t, http.MethodPost, "/api/contact", bytes.NewReader(body), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var q domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, "jane@example.com", q.Email)
	assert.Equal(t, domain.QuoteStatusPending, q.Status)

	quotes := env.store.Quotes()
	require.Len(t, quotes, 1)
	assert.Equal(t, "Jane Doe", quotes[0].Name)
}

func TestContactFormPost(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("name", "Jane Doe")
	form.Set("email", "jane@example.com")
	form.Set("message", "Need a quote")
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact?sent=1", rec.Header().Get("Location"))
	require.Len(t, env.store.Quotes(), 1)
}

func TestContactValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"name": "J", "email": "jane@example.com", "message": "hi"},
		{"name": "Jane Doe", "email": "not-an-email", "message": "hi"},
		{"name": "Jane Doe", "email": "jane@example.com", "message": ""},
	}
	for i, c := range cases {
		body, _ := json.Marshal(c)
		rec := env.do(t, http.MethodPost, "/api/contact", bytes.NewReader(body), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}
	assert.Empty(t, env.store.Quotes())
}

func TestContactMultibyteName(t *testing.T) {
	env := newTestEnv(t)

	// 60 characters but well over 100 bytes
	body, _ := json.Marshal(map[string]string{
		"name":    strings.Repeat("ü", 60),
		"email":   "jane@example.com",
		"message": "Need a quote",
	})
	rec := env.do(t, http.MethodPost, "/api/contact", bytes.NewReader(body), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.store.Quotes(), 1)
}

func TestLoginAndSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")

	// wrong password
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "nope"})
	rec := env.do(t, http.MethodPost, "/api/admin/login", bytes.NewReader(body), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown user
	body, _ = json.Marshal(map[string]string{"username": "ghost", "password": "whatever"})
	rec = env.do(t, http.MethodPost, "/api/admin/login", bytes.NewReader(body), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.login(t, "admin", "super-secret-pass")

	rec = env.do(t, http.MethodGet, "/api/admin/session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var session map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, true, session["authenticated"])
	assert.Equal(t, "admin", session["username"])

	rec = env.do(t, http.MethodGet, "/api/admin/session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	session = map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, false, session["authenticated"])
}

func TestAdminLoginPage(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")

	rec := env.do(t, http.MethodGet, "/admin/login", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/login"`)

	postForm := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{}
		form.Set("username", username)
		form.Set("password", password)
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	rec = postForm("admin", "nope")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login?err=1", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())

	rec = postForm("admin", "super-secret-pass")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "admin_token", cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)

	// the cookie session works for the page and the JSON API alike
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req.AddCookie(cookies[0])
	pageRec := httptest.NewRecorder()
	env.handler.ServeHTTP(pageRec, req)
	require.Equal(t, http.StatusOK, pageRec.Code)
	assert.Contains(t, pageRec.Body.String(), "Signed in as admin")

	req = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(cookies[0])
	apiRec := httptest.NewRecorder()
	env.handler.ServeHTTP(apiRec, req)
	assert.Equal(t, http.StatusOK, apiRec.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(cookies[0])
	outRec := httptest.NewRecorder()
	env.handler.ServeHTTP(outRec, req)
	require.Equal(t, http.StatusSeeOther, outRec.Code)
	assert.Equal(t, "/admin/login", outRec.Header().Get("Location"))
	cleared := outRec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Empty(t, cleared[0].Value)
	assert.Negative(t, cleared[0].MaxAge)
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	paths := []string{
		"/api/admin/projects",
		"/api/admin/services",
		"/api/admin/team",
		"/api/admin/testimonials",
		"/api/admin/faqs",
		"/api/admin/quotes",
		"/api/admin/company",
		"/api/admin/stats",
	}
	for _, path := range paths {
		rec := env.do(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestProjectCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")
	token := env.login(t, "admin", "super-secret-pass")

	body, _ := json.Marshal(map[string]any{
		"title":    "Marina Tower Complex",
		"category": "Residential",
		"location": "Dubai Marina",
		"year":     "2024",
	})
	rec := env.do(t, http.MethodPost, "/api/admin/projects", bytes.NewReader(body), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	// public API sees it
	rec = env.do(t, http.MethodGet, "/api/projects?category=residential", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Items []domain.Project `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.Total)
	assert.Equal(t, "Marina Tower Complex", listing.Items[0].Title)

	created.Location = "Dubai Marina, Phase 2"
	body, _ = json.Marshal(created)
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/projects/%d", created.ID), bytes.NewReader(body), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Dubai Marina, Phase 2", env.store.Projects()[0].Location)

	rec = env.do(t, http.MethodPut, "/api/admin/projects/9999", bytes.NewReader(body), token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/projects/%d", created.ID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.store.Projects())
}

func TestQuoteStatusUpdateAndFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")
	token := env.login(t, "admin", "super-secret-pass")

	q := domain.Quote{Name: "Jane Doe", Email: "jane@example.com", Message: "m"}
	require.NoError(t, env.store.AddQuote(context.Background(), &q))

	q.Status = domain.QuoteStatusReviewed
	body, _ := json.Marshal(q)
	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/quotes/%d", q.ID), bytes.NewReader(body), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	q.Status = "archived"
	body, _ = json.Marshal(q)
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/quotes/%d", q.ID), bytes.NewReader(body), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/quotes?status=reviewed", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Total)

	rec = env.do(t, http.MethodGet, "/api/admin/quotes?status=bogus", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyDetailsRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")
	token := env.login(t, "admin", "super-secret-pass")

	rec := env.do(t, http.MethodGet, "/api/admin/company", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var details domain.CompanyDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))

	details.BrandName = "ATLAS BUILD"
	body, _ := json.Marshal(details)
	rec = env.do(t, http.MethodPut, "/api/admin/company", bytes.NewReader(body), token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "ATLAS BUILD", env.store.CompanyDetails().BrandName)
	assert.Equal(t, domain.CompanyDetailsID, env.store.CompanyDetails().ID)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")
	token := env.login(t, "admin", "super-secret-pass")

	ctx := context.Background()
	require.NoError(t, env.store.AddProject(ctx, &domain.Project{Title: "P1", Category: domain.CategoryCommercial}))
	require.NoError(t, env.store.AddQuote(ctx, &domain.Quote{Name: "A", Email: "a@example.com", Message: "m"}))
	require.NoError(t, env.store.AddQuote(ctx, &domain.Quote{Name: "B", Email: "b@example.com", Message: "m"}))

	rec := env.do(t, http.MethodGet, "/api/admin/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Projects       int            `json:"projects"`
		Quotes         int            `json:"quotes"`
		QuotesByStatus map[string]int `json:"quotes_by_status"`
		QuotesPerDay   []struct {
			Day   string `json:"day"`
			Count int    `json:"count"`
		} `json:"quotes_per_day"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 2, stats.Quotes)
	assert.Equal(t, 2, stats.QuotesByStatus["pending"])
	require.Len(t, stats.QuotesPerDay, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), stats.QuotesPerDay[0].Day)
	assert.Equal(t, 2, stats.QuotesPerDay[0].Count)
}

func TestQuotesExport(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "admin", "super-secret-pass")
	token := env.login(t, "admin", "super-secret-pass")

	require.NoError(t, env.store.AddQuote(context.Background(), &domain.Quote{Name: "A", Email: "a@example.com", Message: "m"}))

	rec := env.do(t, http.MethodGet, "/api/admin/quotes/export", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
