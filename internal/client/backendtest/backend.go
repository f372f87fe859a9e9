// Package backendtest provides an in-process stand-in for the Taiglo REST
// backend, for use in tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NewServer starts an httptest server whose /api routes are registered by
// routes. The server is closed when the test ends.
func NewServer(t testing.TB, routes func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the backend's {"error": msg} rejection body.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	tok, ok := strings.CutPrefix(h, "Bearer ")
	return tok, ok
}

// withEmptyCollections fills nil collections the way the user service
// serializes a fresh account: [] and {} rather than null.
func withEmptyCollections(id models.Identity) models.Identity {
	if id.Preferences == nil {
		id.Preferences = map[string]any{}
	}
	if id.Roles == nil {
		id.Roles = []string{}
	}
	if id.Permissions == nil {
		id.Permissions = []string{}
	}
	return id
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type account struct {
	password string
	identity models.Identity
}

// Backend is a small stateful fake of the gateway: accounts, tokens,
// categories, experiences and reviews, all in memory.
type Backend struct {
	Server *httptest.Server

	mu          sync.Mutex
	accounts    map[string]*account
	tokens      map[string]string
	hits        map[string]int
	queries     map[string]url.Values
	categories  []models.Category
	experiences []models.Experience
	reviews     []models.Review
	uploads     []string
}

func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		accounts: map[string]*account{},
		tokens:   map[string]string{},
		hits:     map[string]int{},
		queries:  map[string]url.Values{},
	}

	r := chi.NewRouter()
	r.Use(b.count)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register", b.register)
		r.Get("/auth/me", b.me)
		r.Put("/users/profile", b.updateProfile)
		r.Get("/categories", b.listCategories)
		r.Get("/experiences", b.listExperiences)
		r.Post("/experiences", b.createExperience)
		r.Get("/experiences/nearby", b.listExperiences)
		r.Get("/experiences/{id}/full", b.experienceFull)
		r.Get("/reviews", b.listReviews)
		r.Post("/reviews", b.createReview)
		r.Post("/reviews/{id}/helpful", b.markHelpful)
		r.Get("/search", b.search)
		r.Put("/admin/experiences/{id}", b.updateExperience)
		r.Delete("/admin/experiences/{id}", b.deleteExperience)
		r.Post("/admin/experiences/bulk-upload", b.bulkUpload)
		r.Get("/admin/experiences/template", b.template)
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL, including the /api prefix.
func (b *Backend) URL() string { return b.Server.URL + "/api" }

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.queries[r.Method+" "+r.URL.Path] = r.URL.Query()
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Hits reports how many requests reached "METHOD /path".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// TotalHits reports the number of requests of any kind.
func (b *Backend) TotalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, v := range b.hits {
		n += v
	}
	return n
}

// AddUser registers an account and returns its identity with an ID filled in.
func (b *Backend) AddUser(id models.Identity, password string) models.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id.ID == "" {
		id.ID = uuid.NewString()
	}
	if id.CreatedAt == "" {
		id.CreatedAt = "2025-01-01T00:00:00"
	}
	id = withEmptyCollections(id)
	b.accounts[id.Email] = &account{password: password, identity: id}
	return id
}

// IssueToken returns a valid token for the account with email.
func (b *Backend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(email)
}

func (b *Backend) issueLocked(email string) string {
	tok := "tok-" + uuid.NewString()
	b.tokens[tok] = email
	return tok
}

// RevokeAll invalidates every issued token.
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]string{}
}

func (b *Backend) AddCategory(c models.Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = append(b.categories, c)
}

func (b *Backend) AddExperience(e models.Experience) models.Experience {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	b.experiences = append(b.experiences, e)
	return e
}

func (b *Backend) AddReview(rv models.Review) models.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	b.reviews = append(b.reviews, rv)
	return rv
}

func (b *Backend) Reviews() []models.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Review(nil), b.reviews...)
}

func (b *Backend) Experiences() []models.Experience {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Experience(nil), b.experiences...)
}

// Uploads lists the "filename:created_by" pairs received by bulk upload.
func (b *Backend) Uploads() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

func (b *Backend) authenticate(r *http.Request) (*account, bool) {
	tok, ok := BearerToken(r)
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.tokens[tok]
	if !ok {
		return nil, false
	}
	acc, ok := b.accounts[email]
	return acc, ok
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	b.mu.Lock()
	acc, ok := b.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	if !ok || acc.password != in.Password {
		b.mu.Unlock()
		WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	tok := b.issueLocked(acc.identity.Email)
	id := acc.identity
	b.mu.Unlock()

	WriteJSON(w, http.StatusOK, models.AuthResponse{AccessToken: tok, User: id})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	for field, v := range map[string]string{"email": in.Email, "password": in.Password, "first_name": in.FirstName, "last_name": in.LastName} {
		if v == "" {
			WriteError(w, http.StatusBadRequest, "field "+field+" is required")
			return
		}
	}

	b.mu.Lock()
	if _, exists := b.accounts[in.Email]; exists {
		b.mu.Unlock()
		WriteError(w, http.StatusConflict, "email already registered")
		return
	}
	id := withEmptyCollections(models.Identity{
		ID:        uuid.NewString(),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     nullIfEmpty(in.Phone),
		Bio:       nullIfEmpty(in.Bio),
		CreatedAt: "2025-01-01T00:00:00",
		UpdatedAt: "2025-01-01T00:00:00",
		Roles:     []string{"user"},
	})
	b.accounts[in.Email] = &account{password: in.Password, identity: id}
	tok := b.issueLocked(in.Email)
	b.mu.Unlock()

	WriteJSON(w, http.StatusCreated, models.AuthResponse{AccessToken: tok, User: id})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	b.mu.Lock()
	id := acc.identity
	b.mu.Unlock()
	WriteJSON(w, http.StatusOK, models.UserEnvelope{User: id})
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var upd models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	id := &acc.identity
	if upd.FirstName != nil {
		id.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		id.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		id.Phone = models.Ptr(*upd.Phone)
	}
	if upd.Bio != nil {
		id.Bio = models.Ptr(*upd.Bio)
	}
	if upd.DateOfBirth != nil {
		id.DateOfBirth = nullIfEmpty(*upd.DateOfBirth)
	}
	id.UpdatedAt = "2025-06-01T00:00:00"
	out := *id
	b.mu.Unlock()

	WriteJSON(w, http.StatusOK, models.UserEnvelope{User: out})
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	WriteJSON(w, http.StatusOK, map[string]any{"categories": b.categories})
}

// Query returns the query string of the most recent request to
// "METHOD /path".
func (b *Backend) Query(route string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[route]
}

func (b *Backend) listExperiences(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	category := r.URL.Query().Get("category_id")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Experience, 0, len(b.experiences))
	for _, e := range b.experiences {
		if category != "" && e.CategoryID != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Name+" "+e.Description), search) {
			continue
		}
		out = append(out, e)
	}
	WriteJSON(w, http.StatusOK, models.ExperienceList{Experiences: out, TotalFound: len(out)})
}

func (b *Backend) findExperienceLocked(id string) (int, bool) {
	for i, e := range b.experiences {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (b *Backend) experienceFull(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findExperienceLocked(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "experience not found")
		return
	}
	details := models.ExperienceDetails{Experience: b.experiences[i], Reviews: []models.Review{}}
	total := 0
	for _, rv := range b.reviews {
		if rv.ExperienceID == id {
			details.Reviews = append(details.Reviews, rv)
			total += rv.Rating
		}
	}
	details.ReviewStats.TotalReviews = len(details.Reviews)
	if n := len(details.Reviews); n > 0 {
		details.ReviewStats.AverageRating = float64(total) / float64(n)
	}
	WriteJSON(w, http.StatusOK, details)
}

func (b *Backend) listReviews(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user_id")
	exp := r.URL.Query().Get("experience_id")

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Review, 0)
	for _, rv := range b.reviews {
		if (user == "" || rv.UserID == user) && (exp == "" || rv.ExperienceID == exp) {
			out = append(out, rv)
		}
	}
	WriteJSON(w, http.StatusOK, models.ReviewList{Reviews: out})
}

func (b *Backend) createReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authenticate(r); !ok {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var in models.NewReview
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Content == "" {
		WriteError(w, http.StatusBadRequest, "field content is required")
		return
	}
	if in.Rating < 1 || in.Rating > 5 {
		WriteError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	rv := models.Review{
		ID:           uuid.NewString(),
		ExperienceID: in.ExperienceID,
		UserID:       in.UserID,
		Rating:       in.Rating,
		Title:        in.Title,
		Content:      in.Content,
	}
	if in.VisitDate != nil {
		rv.VisitDate = *in.VisitDate
	}

	b.mu.Lock()
	b.reviews = append(b.reviews, rv)
	b.mu.Unlock()

	WriteJSON(w, http.StatusCreated, map[string]any{"review": rv})
}

func (b *Backend) markHelpful(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authenticate(r); !ok {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.reviews {
		if b.reviews[i].ID == id {
			b.reviews[i].HelpfulVotes++
			WriteJSON(w, http.StatusOK, map[string]string{"message": "vote recorded"})
			return
		}
	}
	WriteError(w, http.StatusNotFound, "review not found")
}

func (b *Backend) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	needle := strings.ToLower(q)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Experience, 0)
	for _, e := range b.experiences {
		if strings.Contains(strings.ToLower(e.Name+" "+e.Description+" "+e.Address), needle) {
			out = append(out, e)
		}
	}
	WriteJSON(w, http.StatusOK, models.SearchResult{Query: q, Experiences: out, TotalFound: len(out)})
}

func (b *Backend) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	acc, ok := b.authenticate(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return false
	}
	if !acc.identity.IsAdmin() {
		WriteError(w, http.StatusForbidden, "admins only")
		return false
	}
	return true
}

func (b *Backend) categoryExistsLocked(id string) bool {
	for _, c := range b.categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (b *Backend) createExperience(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.authenticate(r); !ok {
		WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	var in models.ExperienceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}
	for field, missing := range map[string]bool{
		"name": in.Name == "", "description": in.Description == "", "address": in.Address == "",
		"latitude": in.Latitude == nil, "longitude": in.Longitude == nil,
	} {
		if missing {
			WriteError(w, http.StatusBadRequest, "field "+field+" is required")
			return
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if in.CategoryID != "" && !b.categoryExistsLocked(in.CategoryID) {
		WriteError(w, http.StatusNotFound, "category not found")
		return
	}
	e := models.Experience{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		Address:         in.Address,
		Coordinates:     models.Coordinates{Latitude: *in.Latitude, Longitude: *in.Longitude},
		Phone:           in.Phone,
		WebsiteURL:      in.WebsiteURL,
		InstagramHandle: in.InstagramHandle,
		PriceRange:      in.PriceRange,
		IsHiddenGem:     in.IsHiddenGem != nil && *in.IsHiddenGem,
		CreatedBy:       in.CreatedBy,
	}
	b.experiences = append(b.experiences, e)
	WriteJSON(w, http.StatusCreated, map[string]any{"experience": e})
}

func (b *Backend) updateExperience(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	var in models.ExperienceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findExperienceLocked(chi.URLParam(r, "id"))
	if !ok {
		WriteError(w, http.StatusNotFound, "experience not found")
		return
	}
	if in.CategoryID != "" && !b.categoryExistsLocked(in.CategoryID) {
		WriteError(w, http.StatusNotFound, "category not found")
		return
	}
	e := &b.experiences[i]
	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&e.Name, in.Name)
	setIf(&e.Description, in.Description)
	setIf(&e.CategoryID, in.CategoryID)
	setIf(&e.Address, in.Address)
	setIf(&e.Phone, in.Phone)
	setIf(&e.WebsiteURL, in.WebsiteURL)
	setIf(&e.InstagramHandle, in.InstagramHandle)
	if in.Latitude != nil {
		e.Coordinates.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		e.Coordinates.Longitude = *in.Longitude
	}
	if in.PriceRange != 0 {
		e.PriceRange = in.PriceRange
	}
	if in.IsHiddenGem != nil {
		e.IsHiddenGem = *in.IsHiddenGem
	}
	WriteJSON(w, http.StatusOK, map[string]any{"experience": *e})
}

func (b *Backend) deleteExperience(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.findExperienceLocked(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "experience not found")
		return
	}
	b.experiences = append(b.experiences[:i], b.experiences[i+1:]...)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (b *Backend) bulkUpload(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid form")
		return
	}
	_, hdr, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "no file sent")
		return
	}
	b.mu.Lock()
	b.uploads = append(b.uploads, hdr.Filename+":"+r.FormValue("created_by"))
	b.mu.Unlock()
	WriteJSON(w, http.StatusCreated, models.BulkUploadResult{CreatedCount: 2})
}

func (b *Backend) template(w http.ResponseWriter, r *http.Request) {
	if !b.requireAdmin(w, r) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"columns": []string{"name", "description", "address"}})
}
