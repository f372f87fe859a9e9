package models

type Review struct {
	ID                string         `json:"id"`
	ExperienceID      string         `json:"experience_id"`
	UserID            string         `json:"user_id"`
	Rating            int            `json:"rating"`
	Title             string         `json:"title,omitempty"`
	Content           string         `json:"content"`
	Photos            []string       `json:"photos,omitempty"`
	VisitDate         string         `json:"visit_date,omitempty"`
	IsVerified        bool           `json:"is_verified"`
	AuthenticityScore float64        `json:"authenticity_score"`
	HelpfulVotes      int            `json:"helpful_votes"`
	CreatedAt         string         `json:"created_at,omitempty"`
	UpdatedAt         string         `json:"updated_at,omitempty"`
	User              map[string]any `json:"user,omitempty"`
}

// NewReview is the body of POST /reviews.
type NewReview struct {
	ExperienceID string  `json:"experience_id"`
	UserID       string  `json:"user_id"`
	Rating       int     `json:"rating"`
	Title        string  `json:"title,omitempty"`
	Content      string  `json:"content"`
	VisitDate    *string `json:"visit_date"`
}

// ReviewStats keys rating_distribution by the rating as sent ("1".."5").
type ReviewStats struct {
	TotalReviews             int            `json:"total_reviews"`
	AverageRating            float64        `json:"average_rating"`
	RatingDistribution       map[string]int `json:"rating_distribution,omitempty"`
	AverageAuthenticityScore float64        `json:"average_authenticity_score"`
}

type ReviewList struct {
	Reviews    []Review    `json:"reviews"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
