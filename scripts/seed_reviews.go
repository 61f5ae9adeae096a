// Package main implements a standalone seed script that populates the
// reviews database with realistic service reviews across all moderation
// states, so listings, search, filtering, and the stats endpoint have
// something to show in a development environment.
//
// Run: go run scripts/seed_reviews.go
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const totalReviews = 500

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var firstNames = []string{
	"Aisyah", "Farid", "Nurul", "Hafiz", "Siti", "Amir", "Zara", "Iqbal",
	"Melati", "Danish", "Liyana", "Riduan", "Sofia", "Haziq", "Alia",
}

var lastNames = []string{
	"Rahman", "Tan", "Lim", "Abdullah", "Wong", "Ismail", "Lee", "Hassan",
	"Yusof", "Ng", "Kaur", "Chong", "Omar", "Singh", "Aziz",
}

var positiveBodies = []string{
	"Fast processing and very helpful staff. The whole application went smoothly from start to finish.",
	"Excellent service, my documents were ready earlier than promised. Highly recommended.",
	"Clear instructions at every step and the officers were patient with my questions.",
	"Very efficient counter service. I was done in under thirty minutes.",
}

var neutralBodies = []string{
	"The service was acceptable but the waiting area was crowded during peak hours.",
	"Processing took about the advertised time. Nothing special but nothing went wrong either.",
	"Average experience overall. The online form could be clearer about required documents.",
}

var negativeBodies = []string{
	"Waited more than two hours past my appointment slot before anyone attended to me.",
	"My application was returned twice for missing documents that were never listed anywhere.",
	"Phone lines were never answered and the counter staff could not explain the delay.",
}

func bodyForRating(rng *rand.Rand, rating int) string {
	switch {
	case rating >= 4:
		return positiveBodies[rng.Intn(len(positiveBodies))]
	case rating == 3:
		return neutralBodies[rng.Intn(len(neutralBodies))]
	default:
		return negativeBodies[rng.Intn(len(negativeBodies))]
	}
}

func main() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "reviews"),
		getEnv("POSTGRES_PASSWORD", "reviews_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("REVIEWS_DB_NAME", "reviews_db"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	statuses := []string{"pending", "approved", "approved", "approved", "rejected"}
	now := time.Now().UTC()

	inserted := 0
	for i := 0; i < totalReviews; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]

		// Skew toward high ratings the way real review data does.
		rating := 1 + rng.Intn(5)
		if rng.Float64() < 0.5 {
			rating = 4 + rng.Intn(2)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO reviews (name, email, phone, rating, review, status, submitted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			first+" "+last,
			fmt.Sprintf("%s.%s%d@example.com", first, last, i),
			fmt.Sprintf("01%08d", rng.Intn(100000000)),
			rating,
			bodyForRating(rng, rating),
			statuses[rng.Intn(len(statuses))],
			now.Add(-time.Duration(rng.Intn(90*24))*time.Hour),
		)
		if err != nil {
			log.Fatalf("insert review %d: %v", i, err)
		}
		inserted++
	}

	log.Printf("seeded %d reviews", inserted)
}
