package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/MAH-7/JPKWT-Rating-Reviews/pkg/errors"
	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/validator"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/cache"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository"
)

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	Name   string `json:"name" validate:"required,max=100"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required,min=10"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review" validate:"required,min=10,max=500"`
}

// EventPublisher publishes review domain events. A nil publisher disables
// event emission.
type EventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, review *domain.Review) error
	PublishReviewModerated(ctx context.Context, review *domain.Review) error
	PublishReviewDeleted(ctx context.Context, id int64) error
}

// ListingCache caches the public approved-review listing. A nil cache
// disables caching.
type ListingCache interface {
	GetApproved(ctx context.Context) ([]domain.Review, error)
	SetApproved(ctx context.Context, reviews []domain.Review) error
	Invalidate(ctx context.Context) error
}

// ReviewService implements the business logic for review submission,
// querying, aggregation, and moderation.
type ReviewService struct {
	repo   repository.ReviewRepository
	events EventPublisher
	cache  ListingCache
	logger *slog.Logger
}

// NewReviewService creates a new review service. events and listingCache
// may be nil.
func NewReviewService(repo repository.ReviewRepository, events EventPublisher, listingCache ListingCache, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		events: events,
		cache:  listingCache,
		logger: logger,
	}
}

// Submit validates and stores a new review. New reviews always start out
// pending so nothing reaches the public listing before moderation.
func (s *ReviewService) Submit(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	review := &domain.Review{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		Rating:      input.Rating,
		Review:      input.Review,
		Status:      domain.StatusPending,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishReviewSubmitted(ctx, review); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
				slog.Int64("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.Int64("review_id", review.ID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// Get retrieves a single review by id.
func (s *ReviewService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return review, nil
}

// ListAll returns every review regardless of status, newest first. This is
// the moderation view.
func (s *ReviewService) ListAll(ctx context.Context) ([]domain.Review, error) {
	reviews, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

// ListApproved returns the public listing of approved reviews, newest first,
// served from the cache when possible.
func (s *ReviewService) ListApproved(ctx context.Context) ([]domain.Review, error) {
	if s.cache != nil {
		cached, err := s.cache.GetApproved(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "approved-review cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	reviews, err := s.repo.ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved reviews: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetApproved(ctx, reviews); err != nil {
			s.logger.WarnContext(ctx, "approved-review cache write failed",
				slog.String("error", err.Error()),
			)
		}
	}

	return reviews, nil
}

// SetStatus moderates a review. The target must be approved or rejected;
// pending is never a legal target. Setting a review to its current status
// succeeds without touching the store.
func (s *ReviewService) SetStatus(ctx context.Context, id int64, target string) (*domain.Review, error) {
	status, err := domain.ParseModerationTarget(target)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review for moderation: %w", err)
	}

	if review.Status == status {
		return review, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update review status: %w", err)
	}

	s.invalidateListing(ctx)

	if s.events != nil {
		if err := s.events.PublishReviewModerated(ctx, updated); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.moderated event",
				slog.Int64("review_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review moderated",
		slog.Int64("review_id", id),
		slog.String("status", string(status)),
	)

	return updated, nil
}

// Delete permanently removes a review, reporting whether one existed.
// Deleting a missing review is not an error.
func (s *ReviewService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.invalidateListing(ctx)

	if s.events != nil {
		if err := s.events.PublishReviewDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
				slog.Int64("review_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review deleted", slog.Int64("review_id", id))

	return true, nil
}

// Search finds reviews whose name, email, or body contains the query,
// compared case-insensitively. An empty query is rejected.
func (s *ReviewService) Search(ctx context.Context, query string) ([]domain.Review, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.InvalidInput("search query must not be empty")
	}

	reviews, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search reviews: %w", err)
	}

	return reviews, nil
}

// Filter returns reviews matching the given status and rating. Status "all"
// or "" means no status filter; a nil rating means no rating filter.
func (s *ReviewService) Filter(ctx context.Context, status string, rating *int) ([]domain.Review, error) {
	var f repository.Filter

	if status != "" && status != domain.StatusAll {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		f.Status = &parsed
	}

	if rating != nil {
		if *rating < domain.RatingMin || *rating > domain.RatingMax {
			return nil, apperrors.InvalidInput("rating must be between 1 and 5")
		}
		f.Rating = rating
	}

	reviews, err := s.repo.Filter(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("filter reviews: %w", err)
	}

	return reviews, nil
}

// Stats recomputes the aggregate snapshot from the store. The result is
// never cached so moderation decisions show up immediately.
func (s *ReviewService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute review stats: %w", err)
	}

	return stats, nil
}

func (s *ReviewService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "approved-review cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
