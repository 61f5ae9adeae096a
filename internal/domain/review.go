package domain

import (
	"time"
)

// Review is a single user-submitted service review. Contact fields, rating,
// and body text are immutable after creation; only Status changes, and only
// through the moderation workflow.
type Review struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Rating      int       `json:"rating"`
	Review      string    `json:"review"`
	Status      Status    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Stats is the aggregate snapshot recomputed from the full review set on
// every call. AverageRating and RatingDistribution cover approved reviews
// only, so pending and rejected submissions never skew the public numbers.
type Stats struct {
	TotalReviews       int            `json:"total_reviews"`
	PendingReviews     int            `json:"pending_reviews"`
	ApprovedReviews    int            `json:"approved_reviews"`
	RejectedReviews    int            `json:"rejected_reviews"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// NewStats returns an empty snapshot with all five distribution keys present.
func NewStats() *Stats {
	return &Stats{
		RatingDistribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}
}

// RatingMin and RatingMax bound the star scale.
const (
	RatingMin = 1
	RatingMax = 5
)

// ReviewTextMin and ReviewTextMax bound the review body length in characters.
const (
	ReviewTextMin = 10
	ReviewTextMax = 500
)
