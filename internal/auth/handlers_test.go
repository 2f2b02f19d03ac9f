package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func hasCookie(resp *http.Response, name string) bool {
	for _, c := range resp.Cookies() {
		if c.Name == name && c.Value != "" {
			return true
		}
	}
	return false
}

func TestAuthHandlersRegisterLoginVerify(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	updatedAt := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "User", "user@example.com", pgxmock.AnyArg(), "user", true, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(createdAt, updatedAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService("test-secret", mock).WithCookie("jwt", false)
	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), svc)

	resp := postJSON(t, app, "/api/users/register", RegisterRequest{Name: "User", Email: "user@example.com", Password: "pass"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: %d", resp.StatusCode)
	}
	if !hasCookie(resp, "jwt") {
		t.Fatalf("expected auth cookie on register")
	}

	passwordBytes, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, name, email, password_hash`).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("user-1", "User", "user@example.com", string(passwordBytes), "user", true, []byte(`{}`), createdAt, updatedAt))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp = postJSON(t, app, "/api/users/login", LoginRequest{Email: "user@example.com", Password: "pass"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: %d", resp.StatusCode)
	}
	var body struct {
		User   User          `json:"user"`
		Tokens TokenResponse `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if body.User.ID != "user-1" || body.Tokens.AccessToken == "" {
		t.Fatalf("unexpected login body")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer "+body.Tokens.AccessToken)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/jwt/verify", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: body.Tokens.AccessToken})
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("verify via cookie status: %v", err)
	}
}

func TestAuthRegisterErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService("test-secret", mock))

	if resp := postJSON(t, app, "/api/users/register", RegisterRequest{Email: "a@example.com"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
	if resp := postJSON(t, app, "/api/users/register", RegisterRequest{Name: "A", Email: "a@example.com", Password: "p", Role: RoleAdmin}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", resp.StatusCode)
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "A", "a@example.com", pgxmock.AnyArg(), "user", true, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	if resp := postJSON(t, app, "/api/users/register", RegisterRequest{Name: "A", Email: "a@example.com", Password: "p"}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", resp.StatusCode)
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "A", "a@example.com", pgxmock.AnyArg(), "user", true, pgxmock.AnyArg()).
		WillReturnError(pgErr)
	if resp := postJSON(t, app, "/api/users/register", RegisterRequest{Name: "A", Email: "a@example.com", Password: "p"}); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected server error, got %d", resp.StatusCode)
	}
}

func TestAuthLoginErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService("test-secret", mock))

	if resp := postJSON(t, app, "/api/users/login", LoginRequest{Email: "a@example.com"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, name, email, password_hash`).
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("user-1", "A", "a@example.com", string(hash), "user", true, []byte(`{}`), time.Now(), time.Now()))
	if resp := postJSON(t, app, "/api/users/login", LoginRequest{Email: "a@example.com", Password: "wrong"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}

	mock.ExpectQuery(`SELECT id, name, email, password_hash`).
		WithArgs("a@example.com").
		WillReturnError(pgErr)
	if resp := postJSON(t, app, "/api/users/login", LoginRequest{Email: "a@example.com", Password: "wrong"}); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected server error, got %d", resp.StatusCode)
	}
}

func TestAuthRefreshInvalidToken(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService("test-secret", nil))

	if resp := postJSON(t, app, "/api/users/refresh", RefreshRequest{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
	if resp := postJSON(t, app, "/api/users/refresh", RefreshRequest{RefreshToken: "garbage"}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", resp.StatusCode)
	}
}

func TestAuthRefreshSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService("test-secret", mock)
	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), svc)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	tokens, err := svc.GenerateTokens(context.Background(), "user-1", RoleUser)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	mock.ExpectQuery(`SELECT rt.user_id, u.role, rt.expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "role", "expires_at"}).AddRow("user-1", "user", time.Now().Add(time.Hour)))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), "user-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	resp := postJSON(t, app, "/api/users/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: %d", resp.StatusCode)
	}
}

func TestAuthLogoutClearsCookie(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService("test-secret", mock))

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("refresh-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	resp := postJSON(t, app, "/api/users/logout", RefreshRequest{RefreshToken: "refresh-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status: %d", resp.StatusCode)
	}
	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == "jwt" && c.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected cleared cookie")
	}

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("refresh-2").
		WillReturnError(pgErr)
	if resp := postJSON(t, app, "/api/users/logout", RefreshRequest{RefreshToken: "refresh-2"}); resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected server error, got %d", resp.StatusCode)
	}
}

func TestAuthVerifyMissingAndInvalid(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService("test-secret", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/users/jwt/verify", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for bad token")
	}
}

func TestAuthForgotAndResetHandlers(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	notifier := &captureNotifier{}
	app := fiber.New()
	RegisterRoutes(app.Group("/api/users"), NewService("test-secret", mock).WithRecovery(nil, notifier, time.Minute))

	if resp := postJSON(t, app, "/api/users/forgot-password", ForgotPasswordRequest{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}

	mock.ExpectQuery(`SELECT id FROM users WHERE email`).
		WithArgs("a@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("user-1"))
	if resp := postJSON(t, app, "/api/users/forgot-password", ForgotPasswordRequest{Email: "a@example.com"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("forgot status: %d", resp.StatusCode)
	}

	if resp := postJSON(t, app, "/api/users/reset-password", ResetPasswordRequest{Email: "a@example.com"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
	if resp := postJSON(t, app, "/api/users/reset-password", ResetPasswordRequest{Email: "a@example.com", OTP: "000000x", NewPassword: "n"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for wrong code, got %d", resp.StatusCode)
	}

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("a@example.com", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at`).
		WithArgs("a@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if resp := postJSON(t, app, "/api/users/reset-password", ResetPasswordRequest{Email: "a@example.com", OTP: notifier.code, NewPassword: "n"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status: %d", resp.StatusCode)
	}
}
