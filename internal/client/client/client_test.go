package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/taiglo/internal/client/backendtest"
	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	headers []http.Header
	queries []url.Values
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headers = append(r.headers, req.Header.Clone())
	r.queries = append(r.queries, req.URL.Query())
}

func (r *recorder) last() (http.Header, url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.headers)
	return r.headers[n-1], r.queries[n-1]
}

func TestDo_AttachesBearerOnlyWhenTokenSet(t *testing.T) {
	rec := &recorder{}
	srv := backendtest.NewServer(t, func(r chi.Router) {
		r.Get("/categories", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			backendtest.WriteJSON(w, http.StatusOK, map[string]any{"categories": []any{}})
		})
	})

	token := ""
	c := New(srv.URL+"/api", WithTokenSource(TokenFunc(func() string { return token })))

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	h, _ := rec.last()
	assert.Empty(t, h.Get("Authorization"))

	token = "T"
	_, err = c.ListCategories(context.Background())
	require.NoError(t, err)
	h, _ = rec.last()
	assert.Equal(t, "Bearer T", h.Get("Authorization"))
}

func TestDo_WithoutTokenSource(t *testing.T) {
	rec := &recorder{}
	srv := backendtest.NewServer(t, func(r chi.Router) {
		r.Get("/categories", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			backendtest.WriteJSON(w, http.StatusOK, map[string]any{"categories": []models.Category{{ID: "c1", Name: "Food"}}})
		})
	})

	c := New(srv.URL + "/api/")
	assert.Equal(t, srv.URL+"/api", c.BaseURL())

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Food", cats[0].Name)

	h, _ := rec.last()
	assert.Empty(t, h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Accept"))
}

func TestRejections(t *testing.T) {
	srv := backendtest.NewServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
			backendtest.WriteError(w, http.StatusUnauthorized, "bad credentials")
		})
		r.Post("/auth/register", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "<html>upstream down</html>")
		})
		r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
			backendtest.WriteError(w, http.StatusForbidden, "")
		})
	})
	c := New(srv.URL + "/api")
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.com", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "bad credentials", apiErr.Message)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "bad credentials", RejectionMessage(err, "login failed"))

	_, err = c.Register(ctx, models.Registration{Email: "a@b.com"})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "registration failed", RejectionMessage(err, "registration failed"))
	assert.Equal(t, "backend returned status 502", err.Error())

	_, err = c.Me(ctx, "T")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNetworkFailure(t *testing.T) {
	srv := backendtest.NewServer(t, func(r chi.Router) {})
	base := srv.URL + "/api"
	srv.Close()

	c := New(base)
	_, err := c.Login(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "cannot connect to backend")

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, err.Error(), RejectionMessage(err, "login failed"))
}

func TestCanceledContext(t *testing.T) {
	srv := backendtest.NewServer(t, func(r chi.Router) {
		r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
			backendtest.WriteJSON(w, http.StatusOK, models.UserEnvelope{})
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL+"/api").Me(ctx, "T")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthContract(t *testing.T) {
	user := models.Identity{ID: "1", Email: "a@b.com", FirstName: "A", LastName: "B", CreatedAt: "2025-01-01T00:00:00"}
	rec := &recorder{}
	var gotLogin models.Credentials
	var gotProfile string

	srv := backendtest.NewServer(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			b, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(b, &gotLogin)
			backendtest.WriteJSON(w, http.StatusOK, models.AuthResponse{AccessToken: "T", User: user})
		})
		r.Get("/auth/me", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			backendtest.WriteJSON(w, http.StatusOK, models.UserEnvelope{User: user})
		})
		r.Put("/users/profile", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			b, _ := io.ReadAll(req.Body)
			gotProfile = string(b)
			updated := user
			updated.FirstName = "X"
			backendtest.WriteJSON(w, http.StatusOK, models.UserEnvelope{User: updated})
		})
	})

	c := New(srv.URL+"/api", WithTokenSource(TokenFunc(func() string { return "ignored" })))
	ctx := context.Background()

	resp, err := c.Login(ctx, "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "T", resp.AccessToken)
	assert.Equal(t, models.Credentials{Email: "a@b.com", Password: "pw"}, gotLogin)
	h, _ := rec.last()
	assert.Empty(t, h.Get("Authorization"), "login is sent without a credential")

	got, err := c.Me(ctx, "T")
	require.NoError(t, err)
	if diff := cmp.Diff(user, got); diff != "" {
		t.Fatalf("Me() mismatch (-want +got):\n%s", diff)
	}
	h, _ = rec.last()
	assert.Equal(t, "Bearer T", h.Get("Authorization"))

	name := "X"
	updated, err := c.UpdateProfile(ctx, "", models.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.FirstName)
	assert.JSONEq(t, `{"first_name":"X"}`, gotProfile)
	h, _ = rec.last()
	assert.Equal(t, "Bearer ", h.Get("Authorization"))
}

func TestQueryParameters(t *testing.T) {
	rec := &recorder{}
	srv := backendtest.NewServer(t, func(r chi.Router) {
		handler := func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			backendtest.WriteJSON(w, http.StatusOK, models.ExperienceList{})
		}
		r.Get("/experiences", handler)
		r.Get("/experiences/nearby", handler)
		r.Get("/reviews", handler)
		r.Get("/search", handler)
	})
	c := New(srv.URL + "/api")
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want url.Values
	}{
		{
			name: "list with filters",
			call: func() error {
				_, err := c.ListExperiences(ctx, ExperienceFilter{Page: 2, PerPage: 20, Search: "café", MinRating: 4.5, HiddenGems: true})
				return err
			},
			want: url.Values{"page": {"2"}, "per_page": {"20"}, "search": {"café"}, "min_rating": {"4.5"}, "is_hidden_gem": {"true"}},
		},
		{
			name: "list without filters",
			call: func() error {
				_, err := c.ListExperiences(ctx, ExperienceFilter{})
				return err
			},
			want: url.Values{},
		},
		{
			name: "nearby",
			call: func() error {
				_, err := c.NearbyExperiences(ctx, NearbyQuery{Location: models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}, RadiusKM: 2.5, Limit: 10})
				return err
			},
			want: url.Values{"latitude": {"-23.5505"}, "longitude": {"-46.6333"}, "radius_km": {"2.5"}, "limit": {"10"}},
		},
		{
			name: "reviews by user",
			call: func() error {
				_, err := c.ListReviews(ctx, ReviewFilter{UserID: "u1", SortBy: "created_at"})
				return err
			},
			want: url.Values{"user_id": {"u1"}, "sort_by": {"created_at"}},
		},
		{
			name: "search",
			call: func() error {
				_, err := c.Search(ctx, "samba bar")
				return err
			},
			want: url.Values{"q": {"samba bar"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			_, got := rec.last()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReviewsAndExperiences(t *testing.T) {
	var helpfulBody, reviewBody string
	srv := backendtest.NewServer(t, func(r chi.Router) {
		r.Get("/experiences/{id}/full", func(w http.ResponseWriter, req *http.Request) {
			backendtest.WriteJSON(w, http.StatusOK, map[string]any{
				"id":           chi.URLParam(req, "id"),
				"name":         "Beco do Batman",
				"reviews":      []map[string]any{{"id": "r1", "rating": 5, "content": "great"}},
				"review_stats": map[string]any{"total_reviews": 1, "average_rating": 5, "rating_distribution": map[string]int{"5": 1}},
			})
		})
		r.Post("/reviews", func(w http.ResponseWriter, req *http.Request) {
			b, _ := io.ReadAll(req.Body)
			reviewBody = string(b)
			backendtest.WriteJSON(w, http.StatusCreated, map[string]any{"review": map[string]any{"id": "r2", "rating": 4}})
		})
		r.Post("/reviews/{id}/helpful", func(w http.ResponseWriter, req *http.Request) {
			b, _ := io.ReadAll(req.Body)
			helpfulBody = chi.URLParam(req, "id") + " " + string(b)
			backendtest.WriteJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		})
		r.Post("/experiences", func(w http.ResponseWriter, req *http.Request) {
			backendtest.WriteJSON(w, http.StatusCreated, map[string]any{"experience": map[string]any{"id": "e9", "name": "New"}})
		})
	})
	c := New(srv.URL + "/api")
	ctx := context.Background()

	full, err := c.ExperienceFull(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", full.ID)
	assert.Equal(t, "Beco do Batman", full.Name)
	require.Len(t, full.Reviews, 1)
	assert.Equal(t, 1, full.ReviewStats.RatingDistribution["5"])

	rv, err := c.CreateReview(ctx, models.NewReview{ExperienceID: "e1", UserID: "u1", Rating: 4, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, "r2", rv.ID)
	assert.JSONEq(t, `{"experience_id":"e1","user_id":"u1","rating":4,"content":"nice","visit_date":null}`, reviewBody)

	require.NoError(t, c.MarkReviewHelpful(ctx, "r1", true))
	assert.Equal(t, `r1 {"is_helpful":true}`, strings.TrimSpace(helpfulBody))

	exp, err := c.CreateExperience(ctx, models.ExperienceInput{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, "e9", exp.ID)
}

func TestAdminEndpoints(t *testing.T) {
	b := backendtest.New(t)
	admin := b.AddUser(models.Identity{Email: "admin@taiglo.com", FirstName: "Ad", Roles: []string{"admin"}}, "secret")
	plain := b.AddUser(models.Identity{Email: "user@taiglo.com", FirstName: "Us"}, "secret")
	exp := b.AddExperience(models.Experience{Name: "Old"})

	token := b.IssueToken(plain.Email)
	c := New(b.URL(), WithTokenSource(TokenFunc(func() string { return token })))
	ctx := context.Background()

	err := c.AdminDeleteExperience(ctx, exp.ID)
	assert.ErrorIs(t, err, ErrUnauthorized, "403 for a non-admin")

	token = b.IssueToken(admin.Email)
	require.NoError(t, c.AdminDeleteExperience(ctx, exp.ID))
	assert.Empty(t, b.Experiences())

	res, err := c.BulkUpload(ctx, "places.csv", strings.NewReader("name,description\nA,B\n"), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CreatedCount)
	assert.Equal(t, []string{"places.csv:" + admin.ID}, b.Uploads())

	raw, err := c.UploadTemplate(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["name","description","address"]}`, string(raw))
}

func TestHealth(t *testing.T) {
	b := backendtest.New(t)
	status, err := New(b.URL()).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
	assert.Equal(t, 1, b.Hits("GET /health"))
}
