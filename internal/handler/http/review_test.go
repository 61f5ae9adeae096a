package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAH-7/JPKWT-Rating-Reviews/pkg/httputil"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/repository/memory"
	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/service"
)

// =============================================================================
// Test helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv wires a handler onto the in-memory store so tests exercise the
// full request path.
type testEnv struct {
	repo   *memory.ReviewRepository
	router *chi.Mux
}

func newTestEnv() *testEnv {
	repo := memory.NewReviewRepository()
	svc := service.NewReviewService(repo, nil, nil, testLogger())
	handler := NewReviewHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Post("/", handler.SubmitReview)
		r.Get("/", handler.ListReviews)
		r.Get("/approved", handler.ListApproved)
		r.Get("/stats", handler.GetStats)
		r.Get("/search", handler.SearchReviews)
		r.Get("/filter", handler.FilterReviews)
		r.Get("/{id}", handler.GetReview)
		r.Patch("/{id}/status", handler.UpdateStatus)
		r.Delete("/{id}", handler.DeleteReview)
	})

	return &testEnv{repo: repo, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// seed inserts a review directly into the store with the given status.
func (e *testEnv) seed(t *testing.T, name string, rating int, status domain.Status) *domain.Review {
	t.Helper()

	rv := &domain.Review{
		Name:   name,
		Email:  name + "@example.com",
		Phone:  "0123456789",
		Rating: rating,
		Review: "A review body long enough to pass validation.",
		Status: status,
	}
	require.NoError(t, e.repo.Create(context.Background(), rv))
	return rv
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func validSubmission() map[string]any {
	return map[string]any{
		"name":   "Aisyah Rahman",
		"email":  "aisyah@example.com",
		"phone":  "0123456789",
		"rating": 5,
		"review": "Fast processing and very helpful staff.",
	}
}

// =============================================================================
// POST /api/v1/reviews
// =============================================================================

func TestSubmitReview_Success(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/api/v1/reviews", validSubmission())

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "Aisyah Rahman", data["name"])
}

func TestSubmitReview_ValidationErrorReturnsFieldMap(t *testing.T) {
	env := newTestEnv()

	body := validSubmission()
	body["email"] = "not-an-email"
	body["rating"] = 9

	rec := env.do(t, http.MethodPost, "/api/v1/reviews", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "email")
	assert.Contains(t, resp.Error.Fields, "rating")

	// A rejected submission must not reach the store.
	reviews, err := env.repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestSubmitReview_MalformedBody(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

// =============================================================================
// GET /api/v1/reviews and /approved
// =============================================================================

func TestListReviews_PaginatedEnvelope(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 11; i++ {
		env.seed(t, fmt.Sprintf("reviewer%02d", i), 5, domain.StatusApproved)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/reviews?page=2&per_page=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data       []domain.Review `json:"data"`
		TotalCount int             `json:"total_count"`
		Page       int             `json:"page"`
		TotalPages int             `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))

	assert.Len(t, result.Data, 1)
	assert.Equal(t, 11, result.TotalCount)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 2, result.TotalPages)
}

func TestListReviews_PagePastEndIsEmptyNotError(t *testing.T) {
	env := newTestEnv()
	for i := 0; i < 11; i++ {
		env.seed(t, fmt.Sprintf("reviewer%02d", i), 5, domain.StatusApproved)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/reviews?page=3&per_page=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data []domain.Review `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Empty(t, result.Data)
}

func TestListApproved_OnlyApprovedVisible(t *testing.T) {
	env := newTestEnv()
	env.seed(t, "approvedone", 5, domain.StatusApproved)
	env.seed(t, "pendingone", 4, domain.StatusPending)
	env.seed(t, "rejectedone", 1, domain.StatusRejected)

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data []domain.Review `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.Len(t, result.Data, 1)
	assert.Equal(t, "approvedone", result.Data[0].Name)
}

// =============================================================================
// GET /api/v1/reviews/stats
// =============================================================================

func TestGetStats(t *testing.T) {
	env := newTestEnv()
	env.seed(t, "a", 5, domain.StatusApproved)
	env.seed(t, "b", 4, domain.StatusApproved)
	env.seed(t, "c", 5, domain.StatusApproved)
	env.seed(t, "d", 1, domain.StatusPending)

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Stats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 4, resp.Data.TotalReviews)
	assert.Equal(t, 3, resp.Data.ApprovedReviews)
	assert.Equal(t, 4.7, resp.Data.AverageRating)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 0, "4": 1, "5": 2}, resp.Data.RatingDistribution)
}

// =============================================================================
// GET /api/v1/reviews/search and /filter
// =============================================================================

func TestSearchReviews(t *testing.T) {
	env := newTestEnv()
	env.seed(t, "Aisyah", 5, domain.StatusApproved)
	env.seed(t, "Farid", 3, domain.StatusPending)

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/search?q=AISYAH", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Review `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Aisyah", resp.Data[0].Name)
}

func TestSearchReviews_EmptyQueryRejected(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}

func TestFilterReviews(t *testing.T) {
	env := newTestEnv()
	env.seed(t, "a", 5, domain.StatusApproved)
	env.seed(t, "b", 5, domain.StatusPending)
	env.seed(t, "c", 3, domain.StatusApproved)

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/filter?status=approved&rating=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Review `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a", resp.Data[0].Name)
}

func TestFilterReviews_BadInputs(t *testing.T) {
	env := newTestEnv()

	for _, path := range []string{
		"/api/v1/reviews/filter?status=archived",
		"/api/v1/reviews/filter?rating=9",
		"/api/v1/reviews/filter?rating=abc",
	} {
		rec := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

// =============================================================================
// GET /api/v1/reviews/{id}
// =============================================================================

func TestGetReview(t *testing.T) {
	env := newTestEnv()
	rv := env.seed(t, "Aisyah", 5, domain.StatusPending)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/reviews/%d", rv.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "Aisyah", data["name"])
}

func TestGetReview_NotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReview_InvalidID(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/v1/reviews/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

// =============================================================================
// PATCH /api/v1/reviews/{id}/status
// =============================================================================

func TestUpdateStatus_Approve(t *testing.T) {
	env := newTestEnv()
	rv := env.seed(t, "Aisyah", 5, domain.StatusPending)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/reviews/%d/status", rv.ID),
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "approved", data["status"])
}

func TestUpdateStatus_PendingTargetRejected(t *testing.T) {
	env := newTestEnv()
	rv := env.seed(t, "Aisyah", 5, domain.StatusApproved)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/reviews/%d/status", rv.ID),
		map[string]string{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The record is untouched.
	got, err := env.repo.GetByID(context.Background(), rv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPatch, "/api/v1/reviews/999/status",
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatus_Idempotent(t *testing.T) {
	env := newTestEnv()
	rv := env.seed(t, "Aisyah", 5, domain.StatusApproved)

	rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/reviews/%d/status", rv.ID),
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// DELETE /api/v1/reviews/{id}
// =============================================================================

func TestDeleteReview(t *testing.T) {
	env := newTestEnv()
	rv := env.seed(t, "Aisyah", 5, domain.StatusApproved)

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", rv.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["deleted"])

	// Deleting again reports false without an error status.
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", rv.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	data = resp.Data.(map[string]any)
	assert.Equal(t, false, data["deleted"])
}
