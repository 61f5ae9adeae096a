package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/database"
	apperrors "github.com/MAH-7/JPKWT-Rating-Reviews/pkg/errors"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func setupRepo(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewReviewRepository(mock)
	return repo, mock
}

func sampleReview() *domain.Review {
	return &domain.Review{
		ID:          7,
		Name:        "Aisyah Rahman",
		Email:       "aisyah@example.com",
		Phone:       "0123456789",
		Rating:      5,
		Review:      "Fast processing and very helpful staff.",
		Status:      domain.StatusPending,
		SubmittedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
}

func reviewCols() []string {
	return []string{"id", "name", "email", "phone", "rating", "review", "status", "submitted_at"}
}

func reviewRow(rv *domain.Review) *pgxmock.Rows {
	return pgxmock.NewRows(reviewCols()).
		AddRow(rv.ID, rv.Name, rv.Email, rv.Phone, rv.Rating, rv.Review, rv.Status, rv.SubmittedAt)
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestReviewRepository_Create_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()
	rv.ID = 0

	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(rv.Name, rv.Email, rv.Phone, rv.Rating, rv.Review, rv.Status, rv.SubmittedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := repo.Create(context.Background(), rv)
	require.NoError(t, err)
	assert.Equal(t, int64(42), rv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_StorageError(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(rv.Name, rv.Email, rv.Phone, rv.Rating, rv.Review, rv.Status, rv.SubmittedAt).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), rv)
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByID
// ---------------------------------------------------------------------------

func TestReviewRepository_GetByID_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id").
		WithArgs(rv.ID).
		WillReturnRows(reviewRow(rv))

	got, err := repo.GetByID(context.Background(), rv.ID)
	require.NoError(t, err)
	assert.Equal(t, rv, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id").
		WithArgs(int64(999)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// List / ListByStatus
// ---------------------------------------------------------------------------

func TestReviewRepository_List_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectQuery("SELECT (.+) FROM reviews ORDER BY submitted_at DESC, id DESC").
		WillReturnRows(reviewRow(rv))

	reviews, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, rv.Name, reviews[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_Empty(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM reviews ORDER BY submitted_at DESC, id DESC").
		WillReturnRows(pgxmock.NewRows(reviewCols()))

	reviews, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListByStatus_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()
	rv.Status = domain.StatusApproved

	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE status").
		WithArgs(domain.StatusApproved).
		WillReturnRows(reviewRow(rv))

	reviews, err := repo.ListByStatus(context.Background(), domain.StatusApproved)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, domain.StatusApproved, reviews[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// UpdateStatus
// ---------------------------------------------------------------------------

func TestReviewRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()
	rv.Status = domain.StatusApproved

	mock.ExpectQuery("UPDATE reviews SET status").
		WithArgs(rv.ID, domain.StatusApproved).
		WillReturnRows(reviewRow(rv))

	updated, err := repo.UpdateStatus(context.Background(), rv.ID, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE reviews SET status").
		WithArgs(int64(999), domain.StatusRejected).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateStatus(context.Background(), 999, domain.StatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestReviewRepository_Delete_Existing(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM reviews WHERE id").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_Missing(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM reviews WHERE id").
		WithArgs(int64(999)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := repo.Delete(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Search / Filter
// ---------------------------------------------------------------------------

func TestReviewRepository_Search_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()

	mock.ExpectQuery("SELECT (.+) FROM reviews WHERE name ILIKE").
		WithArgs("aisyah").
		WillReturnRows(reviewRow(rv))

	reviews, err := repo.Search(context.Background(), "aisyah")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Filter_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	rv := sampleReview()
	rv.Status = domain.StatusApproved

	status := domain.StatusApproved
	rating := 5

	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WithArgs(&status, &rating).
		WillReturnRows(reviewRow(rv))

	reviews, err := repo.Filter(context.Background(), repository.Filter{Status: &status, Rating: &rating})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func TestReviewRepository_Stats_Success(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cols := []string{
		"count", "pending", "approved", "rejected", "avg",
		"r1", "r2", "r3", "r4", "r5",
	}
	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(5, 1, 3, 1, 4.666666, 0, 0, 0, 1, 2))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalReviews)
	assert.Equal(t, 1, stats.PendingReviews)
	assert.Equal(t, 3, stats.ApprovedReviews)
	assert.Equal(t, 1, stats.RejectedReviews)
	assert.Equal(t, 4.7, stats.AverageRating)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 1, "5": 2}, stats.RatingDistribution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Stats_Empty(t *testing.T) {
	repo, mock := setupRepo(t)
	defer mock.Close()

	cols := []string{
		"count", "pending", "approved", "rejected", "avg",
		"r1", "r2", "r3", "r4", "r5",
	}
	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(0, 0, 0, 0, 0.0, 0, 0, 0, 0, 0))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.TotalReviews)
	assert.Zero(t, stats.AverageRating)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}, stats.RatingDistribution)
	assert.NoError(t, mock.ExpectationsWereMet())
}
