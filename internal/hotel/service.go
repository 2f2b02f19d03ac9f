package hotel

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

const hotelColumns = `id, owner_id, name, location, address, description, price_per_night, amenities, images, room_types, reviews, rating, num_reviews, created_at, updated_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (Hotel, error) {
	if in.Name == "" || in.Location == "" || in.PricePerNight == nil {
		return Hotel{}, fmt.Errorf("%w: name, location and pricePerNight required", listing.ErrInvalid)
	}
	if *in.PricePerNight < 0 {
		return Hotel{}, fmt.Errorf("%w: pricePerNight must not be negative", listing.ErrInvalid)
	}

	h := Hotel{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          in.Name,
		Location:      in.Location,
		Address:       in.Address,
		Description:   in.Description,
		PricePerNight: *in.PricePerNight,
		Amenities:     nonNil(in.Amenities),
		Images:        nonNil(in.Images),
		RoomTypes:     nonNil(in.RoomTypes),
		Reviews:       []listing.Review{},
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO hotels (id, owner_id, name, location, address, description, price_per_night, amenities, images, room_types)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at
	`, h.ID, h.OwnerID, h.Name, h.Location, h.Address, h.Description, h.PricePerNight, h.Amenities, h.Images, h.RoomTypes)
	if err := row.Scan(&h.CreatedAt, &h.UpdatedAt); err != nil {
		return Hotel{}, err
	}
	return h, nil
}

func (s *Service) Get(ctx context.Context, id string) (Hotel, error) {
	row := s.db.QueryRow(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id=$1`, id)
	h, err := scanHotel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Hotel{}, listing.ErrNotFound
	}
	return h, err
}

// List matches search against name and location. Zero price bounds are ignored.
func (s *Service) List(ctx context.Context, f listing.Filter) ([]Hotel, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+hotelColumns+`
		FROM hotels
		WHERE ($1::text = '' OR name ILIKE '%' || $1::text || '%' OR location ILIKE '%' || $1::text || '%')
		  AND ($2::float8 <= 0 OR price_per_night >= $2::float8)
		  AND ($3::float8 <= 0 OR price_per_night <= $3::float8)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, f.Search, f.MinPrice, f.MaxPrice, f.Page.Limit, f.Page.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Hotel, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+hotelColumns+`
		FROM hotels WHERE owner_id=$1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) Update(ctx context.Context, id, userID string, role auth.Role, patch Input) (Hotel, error) {
	h, err := s.Get(ctx, id)
	if err != nil {
		return Hotel{}, err
	}
	if !listing.CanModify(h.OwnerID, userID, role) {
		return Hotel{}, listing.ErrForbidden
	}

	if patch.Name != "" {
		h.Name = patch.Name
	}
	if patch.Location != "" {
		h.Location = patch.Location
	}
	if patch.Address != "" {
		h.Address = patch.Address
	}
	if patch.Description != "" {
		h.Description = patch.Description
	}
	if patch.PricePerNight != nil {
		if *patch.PricePerNight < 0 {
			return Hotel{}, fmt.Errorf("%w: pricePerNight must not be negative", listing.ErrInvalid)
		}
		h.PricePerNight = *patch.PricePerNight
	}
	if patch.Amenities != nil {
		h.Amenities = patch.Amenities
	}
	if patch.Images != nil {
		h.Images = patch.Images
	}
	if patch.RoomTypes != nil {
		h.RoomTypes = patch.RoomTypes
	}

	row := s.db.QueryRow(ctx, `
		UPDATE hotels
		SET name=$2, location=$3, address=$4, description=$5, price_per_night=$6, amenities=$7, images=$8, room_types=$9, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, h.ID, h.Name, h.Location, h.Address, h.Description, h.PricePerNight, h.Amenities, h.Images, h.RoomTypes)
	if err := row.Scan(&h.UpdatedAt); err != nil {
		return Hotel{}, err
	}
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string, role auth.Role) error {
	h, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !listing.CanModify(h.OwnerID, userID, role) {
		return listing.ErrForbidden
	}
	_, err = s.db.Exec(ctx, `DELETE FROM hotels WHERE id=$1`, id)
	return err
}

func scanHotel(row pgx.Row) (Hotel, error) {
	var h Hotel
	var reviews []byte
	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Location, &h.Address, &h.Description, &h.PricePerNight,
		&h.Amenities, &h.Images, &h.RoomTypes, &reviews, &h.Rating, &h.NumReviews, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return Hotel{}, err
	}
	decoded, err := listing.DecodeReviews(reviews)
	if err != nil {
		return Hotel{}, err
	}
	h.Reviews = decoded
	return h, nil
}

func collect(rows pgx.Rows) ([]Hotel, error) {
	defer rows.Close()

	hotels := []Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}
	return hotels, rows.Err()
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
