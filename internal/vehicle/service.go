package vehicle

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

const vehicleColumns = `id, owner_id, name, vehicle_type, model, capacity, price_per_day, driver_included, location, description, images, reviews, rating, num_reviews, created_at, updated_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (Vehicle, error) {
	if in.Name == "" || in.VehicleType == "" || in.PricePerDay == nil {
		return Vehicle{}, fmt.Errorf("%w: name, vehicleType and pricePerDay required", listing.ErrInvalid)
	}
	if *in.PricePerDay < 0 || in.Capacity < 0 {
		return Vehicle{}, fmt.Errorf("%w: price and capacity must not be negative", listing.ErrInvalid)
	}
	if in.Capacity == 0 {
		in.Capacity = 1
	}

	v := Vehicle{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        in.Name,
		VehicleType: in.VehicleType,
		Model:       in.Model,
		Capacity:    in.Capacity,
		PricePerDay: *in.PricePerDay,
		Location:    in.Location,
		Description: in.Description,
		Images:      nonNil(in.Images),
		Reviews:     []listing.Review{},
	}
	if in.DriverIncluded != nil {
		v.DriverIncluded = *in.DriverIncluded
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO vehicles (id, owner_id, name, vehicle_type, model, capacity, price_per_day, driver_included, location, description, images)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at
	`, v.ID, v.OwnerID, v.Name, v.VehicleType, v.Model, v.Capacity, v.PricePerDay, v.DriverIncluded, v.Location, v.Description, v.Images)
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (Vehicle, error) {
	row := s.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, listing.ErrNotFound
	}
	return v, err
}

// List matches search against name, type and location.
func (s *Service) List(ctx context.Context, f listing.Filter) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles
		WHERE ($1::text = '' OR name ILIKE '%' || $1::text || '%' OR vehicle_type ILIKE '%' || $1::text || '%' OR location ILIKE '%' || $1::text || '%')
		  AND ($2::float8 <= 0 OR price_per_day >= $2::float8)
		  AND ($3::float8 <= 0 OR price_per_day <= $3::float8)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, f.Search, f.MinPrice, f.MaxPrice, f.Page.Limit, f.Page.Offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+vehicleColumns+`
		FROM vehicles WHERE owner_id=$1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) Update(ctx context.Context, id, userID string, role auth.Role, patch Input) (Vehicle, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return Vehicle{}, err
	}
	if !listing.CanModify(v.OwnerID, userID, role) {
		return Vehicle{}, listing.ErrForbidden
	}

	if patch.Name != "" {
		v.Name = patch.Name
	}
	if patch.VehicleType != "" {
		v.VehicleType = patch.VehicleType
	}
	if patch.Model != "" {
		v.Model = patch.Model
	}
	if patch.Capacity > 0 {
		v.Capacity = patch.Capacity
	}
	if patch.PricePerDay != nil {
		if *patch.PricePerDay < 0 {
			return Vehicle{}, fmt.Errorf("%w: pricePerDay must not be negative", listing.ErrInvalid)
		}
		v.PricePerDay = *patch.PricePerDay
	}
	if patch.DriverIncluded != nil {
		v.DriverIncluded = *patch.DriverIncluded
	}
	if patch.Location != "" {
		v.Location = patch.Location
	}
	if patch.Description != "" {
		v.Description = patch.Description
	}
	if patch.Images != nil {
		v.Images = patch.Images
	}

	row := s.db.QueryRow(ctx, `
		UPDATE vehicles
		SET name=$2, vehicle_type=$3, model=$4, capacity=$5, price_per_day=$6, driver_included=$7, location=$8, description=$9, images=$10, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, v.ID, v.Name, v.VehicleType, v.Model, v.Capacity, v.PricePerDay, v.DriverIncluded, v.Location, v.Description, v.Images)
	if err := row.Scan(&v.UpdatedAt); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string, role auth.Role) error {
	v, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !listing.CanModify(v.OwnerID, userID, role) {
		return listing.ErrForbidden
	}
	_, err = s.db.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	return err
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	var reviews []byte
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Name, &v.VehicleType, &v.Model, &v.Capacity, &v.PricePerDay, &v.DriverIncluded,
		&v.Location, &v.Description, &v.Images, &reviews, &v.Rating, &v.NumReviews, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return Vehicle{}, err
	}
	decoded, err := listing.DecodeReviews(reviews)
	if err != nil {
		return Vehicle{}, err
	}
	v.Reviews = decoded
	return v, nil
}

func collect(rows pgx.Rows) ([]Vehicle, error) {
	defer rows.Close()

	vehicles := []Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
