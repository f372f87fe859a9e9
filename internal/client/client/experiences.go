package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
)

// ExperienceFilter maps to the query parameters of GET /experiences.
// Zero values are not sent.
type ExperienceFilter struct {
	Page       int
	PerPage    int
	SortBy     string
	SortOrder  string
	CategoryID string
	Search     string
	MinRating  float64
	PriceRange int
	HiddenGems bool
}

func (f ExperienceFilter) values() url.Values {
	q := url.Values{}
	setInt(q, "page", f.Page)
	setInt(q, "per_page", f.PerPage)
	setString(q, "sort_by", f.SortBy)
	setString(q, "sort_order", f.SortOrder)
	setString(q, "category_id", f.CategoryID)
	setString(q, "search", f.Search)
	if f.MinRating > 0 {
		q.Set("min_rating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	setInt(q, "price_range", f.PriceRange)
	if f.HiddenGems {
		q.Set("is_hidden_gem", "true")
	}
	return q
}

// NearbyQuery maps to GET /experiences/nearby. RadiusKM and Limit are
// left to the backend defaults when zero.
type NearbyQuery struct {
	Location   models.Coordinates
	RadiusKM   float64
	Limit      int
	CategoryID string
}

func (n NearbyQuery) values() url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(n.Location.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(n.Location.Longitude, 'f', -1, 64))
	if n.RadiusKM > 0 {
		q.Set("radius_km", strconv.FormatFloat(n.RadiusKM, 'f', -1, 64))
	}
	setInt(q, "limit", n.Limit)
	setString(q, "category_id", n.CategoryID)
	return q
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int) {
	if v != 0 {
		q.Set(key, strconv.Itoa(v))
	}
}

func (c *Client) ListExperiences(ctx context.Context, f ExperienceFilter) (*models.ExperienceList, error) {
	var out models.ExperienceList
	if err := c.Do(ctx, http.MethodGet, "/experiences", f.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) NearbyExperiences(ctx context.Context, n NearbyQuery) (*models.ExperienceList, error) {
	var out models.ExperienceList
	if err := c.Do(ctx, http.MethodGet, "/experiences/nearby", n.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExperienceFull returns the experience together with its reviews and
// review statistics.
func (c *Client) ExperienceFull(ctx context.Context, id string) (*models.ExperienceDetails, error) {
	var out models.ExperienceDetails
	if err := c.Do(ctx, http.MethodGet, "/experiences/"+url.PathEscape(id)+"/full", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.Do(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Search(ctx context.Context, term string) (*models.SearchResult, error) {
	var out models.SearchResult
	if err := c.Do(ctx, http.MethodGet, "/search", url.Values{"q": {term}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateExperience(ctx context.Context, in models.ExperienceInput) (*models.Experience, error) {
	var out struct {
		Experience models.Experience `json:"experience"`
	}
	if err := c.Do(ctx, http.MethodPost, "/experiences", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Experience, nil
}
