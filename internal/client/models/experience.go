package models

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Category struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	IconURL         string `json:"icon_url,omitempty"`
	ColorHex        string `json:"color_hex,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	ExperienceCount int    `json:"experience_count"`
}

type Experience struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	CategoryID        string         `json:"category_id,omitempty"`
	Category          *Category      `json:"category,omitempty"`
	Address           string         `json:"address"`
	Coordinates       Coordinates    `json:"coordinates"`
	Phone             string         `json:"phone,omitempty"`
	WebsiteURL        string         `json:"website_url,omitempty"`
	InstagramHandle   string         `json:"instagram_handle,omitempty"`
	OpeningHours      map[string]any `json:"opening_hours,omitempty"`
	PriceRange        int            `json:"price_range,omitempty"`
	AverageRating     float64        `json:"average_rating"`
	TotalReviews      int            `json:"total_reviews"`
	IsHiddenGem       bool           `json:"is_hidden_gem"`
	IsVerified        bool           `json:"is_verified"`
	AuthenticityScore float64        `json:"authenticity_score"`
	Photos            []string       `json:"photos,omitempty"`
	CreatedBy         string         `json:"created_by,omitempty"`
	CreatedAt         string         `json:"created_at,omitempty"`
	UpdatedAt         string         `json:"updated_at,omitempty"`
	DistanceKM        *float64       `json:"distance_km,omitempty"`
}

// ExperienceInput is the body for creating or updating an experience.
type ExperienceInput struct {
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	CategoryID      string   `json:"category_id,omitempty"`
	Address         string   `json:"address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	WebsiteURL      string   `json:"website_url,omitempty"`
	InstagramHandle string   `json:"instagram_handle,omitempty"`
	PriceRange      int      `json:"price_range,omitempty"`
	IsHiddenGem     *bool    `json:"is_hidden_gem,omitempty"`
	IsVerified      *bool    `json:"is_verified,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
	CreatedBy       string   `json:"created_by,omitempty"`
}

// IsEmpty reports whether no field is set.
func (in ExperienceInput) IsEmpty() bool {
	return in == ExperienceInput{}
}

type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

type ExperienceList struct {
	Experiences []Experience `json:"experiences"`
	Pagination  *Pagination  `json:"pagination,omitempty"`
	TotalFound  int          `json:"total_found,omitempty"`
}

// ExperienceDetails is the /experiences/{id}/full payload.
type ExperienceDetails struct {
	Experience
	Reviews     []Review    `json:"reviews"`
	ReviewStats ReviewStats `json:"review_stats"`
}

type BulkUploadResult struct {
	Message      string   `json:"message,omitempty"`
	CreatedCount int      `json:"created_count"`
	Errors       []string `json:"errors,omitempty"`
}

type SearchResult struct {
	Query       string       `json:"query"`
	Experiences []Experience `json:"experiences"`
	TotalFound  int          `json:"total_found"`
}
