package user

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"
	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrNotVendor      = errors.New("user is not a vendor")
	ErrPasswordLength = errors.New("password must be at least 6 characters")
)

// ProfilePatch is what a user may change about their own account.
type ProfilePatch struct {
	Name          string              `json:"name"`
	Password      string              `json:"password"`
	VendorDetails *auth.VendorDetails `json:"vendorDetails"`
}

var hashPasswordFn = bcrypt.GenerateFromPassword

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, id string) (auth.User, error) {
	u, err := auth.ScanUser(s.db.QueryRow(ctx, `SELECT `+auth.UserColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, ErrNotFound
	}
	return u, err
}

// List returns users newest first, optionally restricted to one role.
func (s *Service) List(ctx context.Context, role auth.Role) ([]auth.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+auth.UserColumns+`
		FROM users
		WHERE ($1::text = '' OR role = $1::text)
		ORDER BY created_at DESC
	`, string(role))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) PendingVendors(ctx context.Context) ([]auth.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+auth.UserColumns+`
		FROM users
		WHERE role = 'vendor' AND is_approved = FALSE
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (auth.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return auth.User{}, err
	}

	if name := strings.TrimSpace(patch.Name); name != "" {
		u.Name = name
	}
	if patch.Password != "" {
		if len(patch.Password) < 6 {
			return auth.User{}, ErrPasswordLength
		}
		hash, err := hashPasswordFn([]byte(patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return auth.User{}, err
		}
		u.PasswordHash = string(hash)
	}
	if patch.VendorDetails != nil && u.Role == auth.RoleVendor {
		u.VendorDetails = patch.VendorDetails
	}

	details := []byte(`{}`)
	if u.VendorDetails != nil {
		if details, err = json.Marshal(u.VendorDetails); err != nil {
			return auth.User{}, err
		}
	}

	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET name = $2, password_hash = $3, vendor_details = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, u.ID, u.Name, u.PasswordHash, details)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return auth.User{}, err
	}
	return u, nil
}

// Approve marks a vendor approved. Approving twice is a no-op; there is no
// way back to unapproved.
func (s *Service) Approve(ctx context.Context, id string) (auth.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return auth.User{}, err
	}
	if u.Role != auth.RoleVendor {
		return auth.User{}, ErrNotVendor
	}
	if u.IsApproved {
		return u, nil
	}

	row := s.db.QueryRow(ctx, `
		UPDATE users SET is_approved = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, id)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		return auth.User{}, err
	}
	u.IsApproved = true
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsApproved satisfies auth.ApprovalChecker.
func (s *Service) IsApproved(ctx context.Context, id string) (bool, error) {
	var approved bool
	err := s.db.QueryRow(ctx, `SELECT is_approved FROM users WHERE id = $1`, id).Scan(&approved)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return approved, err
}

func collect(rows pgx.Rows) ([]auth.User, error) {
	defer rows.Close()

	users := []auth.User{}
	for rows.Next() {
		u, err := auth.ScanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
