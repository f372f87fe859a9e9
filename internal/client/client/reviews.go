package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
)

type ReviewFilter struct {
	ExperienceID    string
	UserID          string
	SortBy          string
	SortOrder       string
	IncludeUserInfo bool
}

func (f ReviewFilter) values() url.Values {
	q := url.Values{}
	setString(q, "experience_id", f.ExperienceID)
	setString(q, "user_id", f.UserID)
	setString(q, "sort_by", f.SortBy)
	setString(q, "sort_order", f.SortOrder)
	if f.IncludeUserInfo {
		q.Set("include_user_info", "true")
	}
	return q
}

func (c *Client) ListReviews(ctx context.Context, f ReviewFilter) (*models.ReviewList, error) {
	var out models.ReviewList
	if err := c.Do(ctx, http.MethodGet, "/reviews", f.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReview(ctx context.Context, r models.NewReview) (*models.Review, error) {
	var out struct {
		Review models.Review `json:"review"`
	}
	if err := c.Do(ctx, http.MethodPost, "/reviews", nil, r, &out); err != nil {
		return nil, err
	}
	return &out.Review, nil
}

func (c *Client) MarkReviewHelpful(ctx context.Context, reviewID string, helpful bool) error {
	body := map[string]bool{"is_helpful": helpful}
	return c.Do(ctx, http.MethodPost, "/reviews/"+url.PathEscape(reviewID)+"/helpful", nil, body, nil)
}
