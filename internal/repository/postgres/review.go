package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/database"
	apperrors "github.com/MAH-7/JPKWT-Rating-Reviews/pkg/errors"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository"
)

const reviewColumns = `id, name, email, phone, rating, review, status, submitted_at`

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review. The id comes from the bigserial sequence and
// is written back onto the review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (name, email, phone, rating, review, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "reviews.create", query)

	err := r.pool.QueryRow(ctx, query,
		review.Name,
		review.Email,
		review.Phone,
		review.Rating,
		review.Review,
		review.Status,
		review.SubmittedAt,
	).Scan(&review.ID)
	end(err)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("insert review: %w", err))
	}

	return nil
}

// GetByID retrieves a review by its identifier.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.get_by_id", query)

	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.Name,
		&rv.Email,
		&rv.Phone,
		&rv.Rating,
		&rv.Review,
		&rv.Status,
		&rv.SubmittedAt,
	)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, apperrors.Storage(fmt.Errorf("get review: %w", err))
	}

	return &rv, nil
}

// List returns all reviews regardless of status, newest first.
func (r *ReviewRepository) List(ctx context.Context) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		ORDER BY submitted_at DESC, id DESC`

	return r.queryReviews(ctx, "reviews.list", query)
}

// ListByStatus returns all reviews with the given status, newest first.
func (r *ReviewRepository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE status = $1
		ORDER BY submitted_at DESC, id DESC`

	return r.queryReviews(ctx, "reviews.list_by_status", query, status)
}

// UpdateStatus changes the status of an existing review.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Review, error) {
	query := `
		UPDATE reviews
		SET status = $2
		WHERE id = $1
		RETURNING ` + reviewColumns

	ctx, end := database.TraceQuery(ctx, "reviews.update_status", query)

	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, id, status).Scan(
		&rv.ID,
		&rv.Name,
		&rv.Email,
		&rv.Phone,
		&rv.Rating,
		&rv.Review,
		&rv.Status,
		&rv.SubmittedAt,
	)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, apperrors.Storage(fmt.Errorf("update review status: %w", err))
	}

	return &rv, nil
}

// Delete permanently removes a review, reporting whether a row was deleted.
func (r *ReviewRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "reviews.delete", query)

	tag, err := r.pool.Exec(ctx, query, id)
	end(err)
	if err != nil {
		return false, apperrors.Storage(fmt.Errorf("delete review: %w", err))
	}

	return tag.RowsAffected() > 0, nil
}

// Search returns reviews whose name, email, or body contains the query,
// compared case-insensitively.
func (r *ReviewRepository) Search(ctx context.Context, search string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		   OR review ILIKE '%' || $1 || '%'
		ORDER BY submitted_at DESC, id DESC`

	return r.queryReviews(ctx, "reviews.search", query, search)
}

// Filter returns reviews matching the given criteria.
func (r *ReviewRepository) Filter(ctx context.Context, f repository.Filter) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::int IS NULL OR rating = $2)
		ORDER BY submitted_at DESC, id DESC`

	return r.queryReviews(ctx, "reviews.filter", query, f.Status, f.Rating)
}

// Stats computes the aggregate snapshot in a single query. The average and
// distribution cover approved reviews only.
func (r *ReviewRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COALESCE(AVG(rating) FILTER (WHERE status = 'approved'), 0),
			COUNT(*) FILTER (WHERE status = 'approved' AND rating = 1),
			COUNT(*) FILTER (WHERE status = 'approved' AND rating = 2),
			COUNT(*) FILTER (WHERE status = 'approved' AND rating = 3),
			COUNT(*) FILTER (WHERE status = 'approved' AND rating = 4),
			COUNT(*) FILTER (WHERE status = 'approved' AND rating = 5)
		FROM reviews`

	ctx, end := database.TraceQuery(ctx, "reviews.stats", query)

	stats := domain.NewStats()
	var dist [5]int

	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalReviews,
		&stats.PendingReviews,
		&stats.ApprovedReviews,
		&stats.RejectedReviews,
		&stats.AverageRating,
		&dist[0], &dist[1], &dist[2], &dist[3], &dist[4],
	)
	end(err)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("compute review stats: %w", err))
	}

	// Round to one decimal place, half away from zero.
	stats.AverageRating = math.Round(stats.AverageRating*10) / 10
	for i, count := range dist {
		stats.RatingDistribution[fmt.Sprintf("%d", i+1)] = count
	}

	return stats, nil
}

func (r *ReviewRepository) queryReviews(ctx context.Context, operation, query string, args ...any) ([]domain.Review, error) {
	ctx, end := database.TraceQuery(ctx, operation, query)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, apperrors.Storage(fmt.Errorf("query reviews: %w", err))
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.Name,
			&rv.Email,
			&rv.Phone,
			&rv.Rating,
			&rv.Review,
			&rv.Status,
			&rv.SubmittedAt,
		); err != nil {
			end(err)
			return nil, apperrors.Storage(fmt.Errorf("scan review row: %w", err))
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		end(err)
		return nil, apperrors.Storage(fmt.Errorf("iterate review rows: %w", err))
	}
	end(nil)

	return reviews, nil
}
