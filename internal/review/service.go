package review

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/metrics"

	"github.com/jackc/pgx/v5"
)

var (
	ErrAlreadyReviewed = errors.New("you have already reviewed this listing")
	ErrReviewNotFound  = errors.New("review not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentRequired = errors.New("comment is required")
)

type Input struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Image   string `json:"image"`
}

// Summary is the listing's review state after a change.
type Summary struct {
	Rating     float64          `json:"rating"`
	NumReviews int              `json:"numReviews"`
	Reviews    []listing.Review `json:"reviews"`
}

var nowFn = time.Now

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Submit(ctx context.Context, kind listing.Kind, listingID, userID string, in Input) (Summary, error) {
	if !kind.Valid() {
		return Summary{}, listing.ErrUnknownKind
	}
	if in.Rating < 1 || in.Rating > 5 {
		return Summary{}, ErrInvalidRating
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return Summary{}, ErrCommentRequired
	}

	var name string
	if err := s.db.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, userID).Scan(&name); err != nil {
		return Summary{}, fmt.Errorf("load reviewer: %w", err)
	}

	summary, err := s.mutate(ctx, kind, listingID, func(reviews []listing.Review) ([]listing.Review, error) {
		if listing.HasReviewed(reviews, userID) {
			return nil, ErrAlreadyReviewed
		}
		return append(reviews, listing.Review{
			UserID:    userID,
			Name:      name,
			Rating:    in.Rating,
			Comment:   comment,
			Image:     in.Image,
			CreatedAt: nowFn().UTC(),
		}), nil
	})
	if err != nil {
		return Summary{}, err
	}
	metrics.IncReviewSubmitted(string(kind))
	return summary, nil
}

// Remove deletes the review written by userID.
func (s *Service) Remove(ctx context.Context, kind listing.Kind, listingID, userID string) (Summary, error) {
	if !kind.Valid() {
		return Summary{}, listing.ErrUnknownKind
	}
	return s.mutate(ctx, kind, listingID, func(reviews []listing.Review) ([]listing.Review, error) {
		left, found := listing.RemoveReview(reviews, userID)
		if !found {
			return nil, ErrReviewNotFound
		}
		return left, nil
	})
}

// List returns the embedded reviews newest first.
func (s *Service) List(ctx context.Context, kind listing.Kind, listingID string) ([]listing.Review, error) {
	if !kind.Valid() {
		return nil, listing.ErrUnknownKind
	}
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT reviews FROM `+kind.Table()+` WHERE id = $1`, listingID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, listing.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	reviews, err := listing.DecodeReviews(raw)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(reviews, func(a, b listing.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reviews, nil
}

// mutate locks the listing row, applies fn to its reviews and writes the
// result back with a recomputed aggregate, all in one transaction.
func (s *Service) mutate(ctx context.Context, kind listing.Kind, listingID string, fn func([]listing.Review) ([]listing.Review, error)) (Summary, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Summary{}, err
	}

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT reviews FROM `+kind.Table()+` WHERE id = $1 FOR UPDATE`, listingID).Scan(&raw)
	if err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return Summary{}, listing.ErrNotFound
		}
		return Summary{}, err
	}

	reviews, err := listing.DecodeReviews(raw)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Summary{}, err
	}
	if reviews, err = fn(reviews); err != nil {
		_ = tx.Rollback(ctx)
		return Summary{}, err
	}

	encoded, err := listing.EncodeReviews(reviews)
	if err != nil {
		_ = tx.Rollback(ctx)
		return Summary{}, err
	}
	rating, count := listing.Aggregate(reviews)

	if _, err := tx.Exec(ctx, `
		UPDATE `+kind.Table()+`
		SET reviews = $2, rating = $3, num_reviews = $4, updated_at = now()
		WHERE id = $1
	`, listingID, encoded, rating, count); err != nil {
		_ = tx.Rollback(ctx)
		return Summary{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Summary{}, err
	}
	return Summary{Rating: rating, NumReviews: count, Reviews: reviews}, nil
}
