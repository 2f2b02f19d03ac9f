package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var userColumns = []string{"id", "name", "email", "password_hash", "role", "is_approved", "vendor_details", "created_at", "updated_at"}

func userRow(id, role string, approved bool) *pgxmock.Rows {
	return pgxmock.NewRows(userColumns).
		AddRow(id, "Nimal", id+"@example.com", "hash", role, approved, []byte(`{"businessName":"Nimal Tours"}`), time.Now(), time.Now())
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestApproveVendor(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("vendor-1").WillReturnRows(userRow("vendor-1", "vendor", false))
	mock.ExpectQuery(`UPDATE users SET is_approved = TRUE`).WithArgs("vendor-1").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	u, err := NewService(mock).Approve(context.Background(), "vendor-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !u.IsApproved || u.VendorDetails == nil || u.VendorDetails.BusinessName != "Nimal Tours" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveIsIdempotentAndVendorOnly(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("vendor-2").WillReturnRows(userRow("vendor-2", "vendor", true))
	u, err := svc.Approve(context.Background(), "vendor-2")
	if err != nil || !u.IsApproved {
		t.Fatalf("expected already approved vendor, got %+v %v", u, err)
	}

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("user-1").WillReturnRows(userRow("user-1", "user", true))
	if _, err := svc.Approve(context.Background(), "user-1"); !errors.Is(err, ErrNotVendor) {
		t.Fatalf("expected not vendor, got %v", err)
	}

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)
	if _, err := svc.Approve(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIsApproved(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT is_approved FROM users`).WithArgs("vendor-1").
		WillReturnRows(pgxmock.NewRows([]string{"is_approved"}).AddRow(true))
	mock.ExpectQuery(`SELECT is_approved FROM users`).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	if ok, err := svc.IsApproved(context.Background(), "vendor-1"); err != nil || !ok {
		t.Fatalf("expected approved, got %v %v", ok, err)
	}
	if ok, err := svc.IsApproved(context.Background(), "ghost"); err != nil || ok {
		t.Fatalf("expected unknown user unapproved, got %v %v", ok, err)
	}
}

func TestUpdateProfile(t *testing.T) {
	mock := newMock(t)
	orig := hashPasswordFn
	hashPasswordFn = func([]byte, int) ([]byte, error) { return []byte("new-hash"), nil }
	defer func() { hashPasswordFn = orig }()

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("vendor-1").WillReturnRows(userRow("vendor-1", "vendor", true))
	mock.ExpectQuery(`UPDATE users\s+SET name`).
		WithArgs("vendor-1", "Nimal Perera", "new-hash", []byte(`{"businessName":"Perera Travels","businessType":"","phone":"","address":"","description":""}`)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	u, err := NewService(mock).UpdateProfile(context.Background(), "vendor-1", ProfilePatch{
		Name:          "Nimal Perera",
		Password:      "secret123",
		VendorDetails: &auth.VendorDetails{BusinessName: "Perera Travels"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Nimal Perera" || u.VendorDetails.BusinessName != "Perera Travels" {
		t.Fatalf("unexpected user: %+v", u)
	}

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("vendor-1").WillReturnRows(userRow("vendor-1", "vendor", true))
	if _, err := NewService(mock).UpdateProfile(context.Background(), "vendor-1", ProfilePatch{Password: "abc"}); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected short password error, got %v", err)
	}
}

func TestUserHandlers(t *testing.T) {
	mock := newMock(t)
	role := auth.RoleUser
	identity := func(c *fiber.Ctx) error {
		auth.SetIdentity(c, "admin-1", role)
		return c.Next()
	}

	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService(mock), identity)

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/users/vendors/pending", nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden for non-admin, got %d", resp.StatusCode)
	}

	role = auth.RoleAdmin
	mock.ExpectQuery(`role = 'vendor' AND is_approved = FALSE`).WillReturnRows(userRow("vendor-1", "vendor", false))
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/users/vendors/pending", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pending status: %d", resp.StatusCode)
	}
	var pending []auth.User
	_ = json.NewDecoder(resp.Body).Decode(&pending)
	if len(pending) != 1 || pending[0].IsApproved {
		t.Fatalf("unexpected pending list: %+v", pending)
	}

	mock.ExpectQuery(`FROM users\s+WHERE \(\$1::text = ''`).WithArgs("vendor").WillReturnRows(userRow("vendor-1", "vendor", false))
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/users/?role=vendor", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %d", resp.StatusCode)
	}

	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("user-9").WillReturnRows(userRow("user-9", "user", true))
	resp, _ = app.Test(httptest.NewRequest(http.MethodPut, "/api/users/user-9/approve", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 approving non-vendor, got %d", resp.StatusCode)
	}

	mock.ExpectExec(`DELETE FROM users`).WithArgs("user-9").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/api/users/user-9", nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %d", resp.StatusCode)
	}

	mock.ExpectExec(`DELETE FROM users`).WithArgs("user-9").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/api/users/user-9", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", resp.StatusCode)
	}

	role = auth.RoleUser
	mock.ExpectQuery(`FROM users WHERE id`).WithArgs("admin-1").WillReturnRows(userRow("admin-1", "user", true))
	req := httptest.NewRequest(http.MethodPut, "/api/users/me", bytes.NewReader([]byte(`{"password":"abc"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
