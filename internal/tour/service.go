package tour

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/listing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const tourColumns = `id, owner_id, name, destination, description, duration_days, price_per_person, max_group_size, includes, images, reviews, rating, num_reviews, created_at, updated_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (Tour, error) {
	if in.Name == "" || in.Destination == "" || in.PricePerPerson == nil {
		return Tour{}, fmt.Errorf("%w: name, destination and pricePerPerson required", listing.ErrInvalid)
	}
	if *in.PricePerPerson < 0 || in.DurationDays < 0 || in.MaxGroupSize < 0 {
		return Tour{}, fmt.Errorf("%w: price, duration and group size must not be negative", listing.ErrInvalid)
	}
	if in.DurationDays == 0 {
		in.DurationDays = 1
	}

	t := Tour{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Name:           in.Name,
		Destination:    in.Destination,
		Description:    in.Description,
		DurationDays:   in.DurationDays,
		PricePerPerson: *in.PricePerPerson,
		MaxGroupSize:   in.MaxGroupSize,
		Includes:       nonNil(in.Includes),
		Images:         nonNil(in.Images),
		Reviews:        []listing.Review{},
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO tours (id, owner_id, name, destination, description, duration_days, price_per_person, max_group_size, includes, images)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`, t.ID, t.OwnerID, t.Name, t.Destination, t.Description, t.DurationDays, t.PricePerPerson, t.MaxGroupSize, t.Includes, t.Images)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return Tour{}, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (Tour, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tourColumns+` FROM tours WHERE id=$1`, id)
	t, err := scanTour(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tour{}, listing.ErrNotFound
	}
	return t, err
}

func (s *Service) List(ctx context.Context, f listing.Filter) ([]Tour, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tourColumns+`
		FROM tours
		WHERE ($1::text = '' OR name ILIKE '%' || $1::text || '%' OR destination ILIKE '%' || $1::text || '%')
		  AND ($2::float8 <= 0 OR price_per_person >= $2::float8)
		  AND ($3::float8 <= 0 OR price_per_person <= $3::float8)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, f.Search, f.MinPrice, f.MaxPrice, f.Page.Limit, f.Page.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Tour, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tourColumns+`
		FROM tours WHERE owner_id=$1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) Update(ctx context.Context, id, userID string, role auth.Role, patch Input) (Tour, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Tour{}, err
	}
	if !listing.CanModify(t.OwnerID, userID, role) {
		return Tour{}, listing.ErrForbidden
	}

	if patch.Name != "" {
		t.Name = patch.Name
	}
	if patch.Destination != "" {
		t.Destination = patch.Destination
	}
	if patch.Description != "" {
		t.Description = patch.Description
	}
	if patch.DurationDays > 0 {
		t.DurationDays = patch.DurationDays
	}
	if patch.PricePerPerson != nil {
		if *patch.PricePerPerson < 0 {
			return Tour{}, fmt.Errorf("%w: pricePerPerson must not be negative", listing.ErrInvalid)
		}
		t.PricePerPerson = *patch.PricePerPerson
	}
	if patch.MaxGroupSize > 0 {
		t.MaxGroupSize = patch.MaxGroupSize
	}
	if patch.Includes != nil {
		t.Includes = patch.Includes
	}
	if patch.Images != nil {
		t.Images = patch.Images
	}

	row := s.db.QueryRow(ctx, `
		UPDATE tours
		SET name=$2, destination=$3, description=$4, duration_days=$5, price_per_person=$6, max_group_size=$7, includes=$8, images=$9, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, t.ID, t.Name, t.Destination, t.Description, t.DurationDays, t.PricePerPerson, t.MaxGroupSize, t.Includes, t.Images)
	if err := row.Scan(&t.UpdatedAt); err != nil {
		return Tour{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string, role auth.Role) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !listing.CanModify(t.OwnerID, userID, role) {
		return listing.ErrForbidden
	}
	_, err = s.db.Exec(ctx, `DELETE FROM tours WHERE id=$1`, id)
	return err
}

func scanTour(row pgx.Row) (Tour, error) {
	var t Tour
	var reviews []byte
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Destination, &t.Description, &t.DurationDays, &t.PricePerPerson,
		&t.MaxGroupSize, &t.Includes, &t.Images, &reviews, &t.Rating, &t.NumReviews, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Tour{}, err
	}
	decoded, err := listing.DecodeReviews(reviews)
	if err != nil {
		return Tour{}, err
	}
	t.Reviews = decoded
	return t, nil
}

func collect(rows pgx.Rows) ([]Tour, error) {
	defer rows.Close()

	tours := []Tour{}
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	return tours, rows.Err()
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
