package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	pkgkafka "github.com/MAH-7/JPKWT-Rating-Reviews/pkg/kafka"

	"github.com/MAH-7/JPKWT-Rating-Reviews/internal/domain"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewSubmitted = "reviews.review.submitted"
	TopicReviewModerated = "reviews.review.moderated"
	TopicReviewDeleted   = "reviews.review.deleted"
)

// Aggregate type constant.
const AggregateTypeReview = "review"

// Source identifier for events originating from this service.
const SourceReviewsService = "reviews-service"

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Rating      int       `json:"rating"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewModeratedData is the payload for a review.moderated event.
type ReviewModeratedData struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Rating int    `json:"rating"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID int64 `json:"id"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the reviews service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	data := ReviewSubmittedData{
		ID:          review.ID,
		Name:        review.Name,
		Email:       review.Email,
		Rating:      review.Rating,
		Status:      string(review.Status),
		SubmittedAt: review.SubmittedAt,
	}

	event, err := pkgkafka.NewEvent(TopicReviewSubmitted, aggregateID(review.ID), AggregateTypeReview, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create review.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewSubmitted, event); err != nil {
		return fmt.Errorf("publish review.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.submitted event",
		slog.Int64("review_id", review.ID),
		slog.Int("rating", review.Rating),
	)

	return nil
}

// PublishReviewModerated publishes a review.moderated event.
func (p *Producer) PublishReviewModerated(ctx context.Context, review *domain.Review) error {
	data := ReviewModeratedData{
		ID:     review.ID,
		Status: string(review.Status),
		Rating: review.Rating,
	}

	event, err := pkgkafka.NewEvent(TopicReviewModerated, aggregateID(review.ID), AggregateTypeReview, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create review.moderated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewModerated, event); err != nil {
		return fmt.Errorf("publish review.moderated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.moderated event",
		slog.Int64("review_id", review.ID),
		slog.String("status", string(review.Status)),
	)

	return nil
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, id int64) error {
	data := ReviewDeletedData{ID: id}

	event, err := pkgkafka.NewEvent(TopicReviewDeleted, aggregateID(id), AggregateTypeReview, SourceReviewsService, data)
	if err != nil {
		return fmt.Errorf("create review.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewDeleted, event); err != nil {
		return fmt.Errorf("publish review.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.deleted event",
		slog.Int64("review_id", id),
	)

	return nil
}

func aggregateID(id int64) string {
	return strconv.FormatInt(id, 10)
}
