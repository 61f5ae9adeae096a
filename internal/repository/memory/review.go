package memory

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/MAH-7/JPKWT-Rating-Reviews/pkg/errors"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository"
)

// ReviewRepository is an in-memory review store used by tests and as the
// development backend. Ids come from a monotonically increasing counter and
// are never reused, even after deletes.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[int64]domain.Review
	nextID  int64
}

// NewReviewRepository creates an empty in-memory review store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[int64]domain.Review),
		nextID:  1,
	}
}

// Create inserts a new review, assigning the next id.
func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	review.ID = r.nextID
	r.nextID++
	r.reviews[review.ID] = *review

	return nil
}

// GetByID retrieves a review by its identifier.
func (r *ReviewRepository) GetByID(_ context.Context, id int64) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}

	return &review, nil
}

// List returns all reviews regardless of status.
func (r *ReviewRepository) List(_ context.Context) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(domain.Review) bool { return true }), nil
}

// ListByStatus returns all reviews with the given status.
func (r *ReviewRepository) ListByStatus(_ context.Context, status domain.Status) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rv domain.Review) bool { return rv.Status == status }), nil
}

// UpdateStatus changes the status of an existing review.
func (r *ReviewRepository) UpdateStatus(_ context.Context, id int64, status domain.Status) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}

	review.Status = status
	r.reviews[id] = review

	return &review, nil
}

// Delete removes a review, reporting whether one existed.
func (r *ReviewRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return false, nil
	}
	delete(r.reviews, id)

	return true, nil
}

// Search returns reviews whose name, email, or body contains the query,
// compared case-insensitively.
func (r *ReviewRepository) Search(_ context.Context, query string) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)

	return r.collect(func(rv domain.Review) bool {
		return strings.Contains(strings.ToLower(rv.Name), needle) ||
			strings.Contains(strings.ToLower(rv.Email), needle) ||
			strings.Contains(strings.ToLower(rv.Review), needle)
	}), nil
}

// Filter returns reviews matching the given criteria.
func (r *ReviewRepository) Filter(_ context.Context, f repository.Filter) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(rv domain.Review) bool {
		if f.Status != nil && rv.Status != *f.Status {
			return false
		}
		if f.Rating != nil && rv.Rating != *f.Rating {
			return false
		}
		return true
	}), nil
}

// Stats computes an aggregate snapshot over the full review set. The average
// and distribution cover approved reviews only.
func (r *ReviewRepository) Stats(_ context.Context) (*domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.NewStats()
	ratingSum := 0

	for _, rv := range r.reviews {
		stats.TotalReviews++
		switch rv.Status {
		case domain.StatusPending:
			stats.PendingReviews++
		case domain.StatusApproved:
			stats.ApprovedReviews++
			ratingSum += rv.Rating
			stats.RatingDistribution[strconv.Itoa(rv.Rating)]++
		case domain.StatusRejected:
			stats.RejectedReviews++
		}
	}

	if stats.ApprovedReviews > 0 {
		avg := float64(ratingSum) / float64(stats.ApprovedReviews)
		stats.AverageRating = math.Round(avg*10) / 10
	}

	return stats, nil
}

// collect gathers matching reviews newest first, id descending on equal
// submission times. Callers must hold at least the read lock.
func (r *ReviewRepository) collect(match func(domain.Review) bool) []domain.Review {
	result := []domain.Review{}
	for _, rv := range r.reviews {
		if match(rv) {
			result = append(result, rv)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].SubmittedAt.After(result[j].SubmittedAt)
	})

	return result
}
