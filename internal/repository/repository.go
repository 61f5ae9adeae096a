package repository

import (
	"context"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
)

// Filter defines optional criteria for listing reviews. Nil fields are
// ignored; set fields are combined with AND.
type Filter struct {
	Status *domain.Status
	Rating *int
}

// ReviewRepository defines the interface for review persistence operations.
// Implementations return reviews ordered by submission time descending, with
// the numeric id descending as the tie-break, so listings are stable across
// backends.
type ReviewRepository interface {
	// Create inserts a new review into the store, assigning its id.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// List returns all reviews regardless of status.
	List(ctx context.Context) ([]domain.Review, error)

	// ListByStatus returns all reviews with the given status.
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Review, error)

	// UpdateStatus changes the status of an existing review and returns the
	// updated record.
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Review, error)

	// Delete permanently removes a review. It reports whether a record was
	// actually removed; a missing id is not an error.
	Delete(ctx context.Context, id int64) (bool, error)

	// Search returns reviews whose name, email, or body contains the query,
	// compared case-insensitively.
	Search(ctx context.Context, query string) ([]domain.Review, error)

	// Filter returns reviews matching the given criteria.
	Filter(ctx context.Context, f Filter) ([]domain.Review, error)

	// Stats computes an aggregate snapshot over the full review set.
	Stats(ctx context.Context) (*domain.Stats, error)
}
