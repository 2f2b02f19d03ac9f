package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Dilhara2002/lak-travelers-sub000/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
	defaultOTPTTL   = 10 * time.Minute

	// maxOTPAttempts wrong guesses discard the pending code.
	maxOTPAttempts = 5

	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// UserColumns is the column list ScanUser expects, in order.
const UserColumns = `id, name, email, password_hash, role, is_approved, vendor_details, created_at, updated_at`

type Service struct {
	secret       []byte
	db           db.Querier
	otps         OTPStore
	notifier     Notifier
	otpTTL       time.Duration
	cookieName   string
	cookieSecure bool
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret:     []byte(secret),
		db:         db,
		otps:       NewMemoryOTPStore(),
		notifier:   NewLogNotifier(nil),
		otpTTL:     defaultOTPTTL,
		cookieName: "jwt",
	}
}

// WithRecovery replaces the password reset code store and delivery.
func (s *Service) WithRecovery(store OTPStore, notifier Notifier, ttl time.Duration) *Service {
	if store != nil {
		s.otps = store
	}
	if notifier != nil {
		s.notifier = notifier
	}
	if ttl > 0 {
		s.otpTTL = ttl
	}
	return s
}

func (s *Service) WithCookie(name string, secure bool) *Service {
	if name != "" {
		s.cookieName = name
	}
	s.cookieSecure = secure
	return s
}

func (s *Service) CookieName() string {
	return s.cookieName
}

var (
	signTokenFn       = (*Service).signToken
	hashPasswordFn    = bcrypt.GenerateFromPassword
	parseWithClaimsFn = jwt.ParseWithClaims
)

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, TokenResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return User{}, TokenResponse{}, ErrMissingFields
	}

	switch req.Role {
	case "":
		req.Role = RoleUser
	case RoleUser, RoleVendor:
	default:
		return User{}, TokenResponse{}, ErrRoleNotAllowed
	}

	hash, err := hashPasswordFn([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		// vendors wait for an admin; everyone else is approved on signup
		IsApproved: req.Role != RoleVendor,
	}
	if req.Role == RoleVendor {
		user.VendorDetails = req.VendorDetails
	}

	details, err := encodeVendorDetails(user.VendorDetails)
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, is_approved, vendor_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.IsApproved, details)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, TokenResponse{}, ErrEmailTaken
		}
		return User{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `SELECT `+UserColumns+` FROM users WHERE email = $1`, normalizeEmail(req.Email))

	user, err := ScanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, TokenResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, TokenResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, userID string, role Role) (TokenResponse, error) {
	access, err := signTokenFn(s, userID, role, tokenAccess, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := signTokenFn(s, userID, role, tokenRefresh, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, userID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

// ValidateRefreshToken checks the signature and the stored record. The role
// returned is the current one from the users table, not the one in the token.
func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, Role, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", "", err
	}
	if claims.Type != tokenRefresh {
		return "", "", ErrRefreshInvalid
	}

	userID, role, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return "", "", ErrRefreshInvalid
	}
	return userID, role, nil
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued.
func (s *Service) Refresh(ctx context.Context, token string) (TokenResponse, error) {
	userID, role, err := s.ValidateRefreshToken(ctx, token)
	if err != nil {
		return TokenResponse{}, err
	}
	if err := s.RevokeRefreshToken(ctx, token); err != nil {
		return TokenResponse{}, err
	}
	return s.GenerateTokens(ctx, userID, role)
}

func (s *Service) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	return err
}

// ValidateAccessToken rejects refresh tokens even when their signature is good.
func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenAccess {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ForgotPassword issues a reset code when the email belongs to an account.
// Unknown emails succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingFields
	}

	var id string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}

	code, err := generateOTPFn()
	if err != nil {
		return err
	}
	if err := s.otps.Set(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	return s.notifier.SendOTP(ctx, email, code)
}

// ResetPassword consumes a reset code and revokes every outstanding refresh
// token of the account.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" || req.OTP == "" || req.NewPassword == "" {
		return ErrResetFields
	}

	code, ok, err := s.otps.Get(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(req.OTP)) != 1 {
		failures, err := s.otps.Fail(ctx, email, s.otpTTL)
		if err != nil {
			return err
		}
		if failures >= maxOTPAttempts {
			if err := s.otps.Delete(ctx, email); err != nil {
				return err
			}
		}
		return ErrInvalidOTP
	}

	// consume before any write so a code cannot back two resets
	taken, ok, err := s.otps.Take(ctx, email)
	if err != nil {
		return err
	}
	if !ok || subtle.ConstantTimeCompare([]byte(taken), []byte(req.OTP)) != 1 {
		return ErrInvalidOTP
	}

	hash, err := hashPasswordFn([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE email = $1
	`, email, string(hash))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidOTP
	}

	_, err = s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE user_id = (SELECT id FROM users WHERE email = $1) AND revoked_at IS NULL
	`, email)
	return err
}

// EnsureAdmin creates the bootstrap admin account if the email is not taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	hash, err := hashPasswordFn([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, is_approved)
		VALUES ($1, 'Administrator', $2, $3, 'admin', TRUE)
		ON CONFLICT (email) DO NOTHING
	`, uuid.NewString(), email, string(hash))
	return err
}

func (s *Service) signToken(userID string, role Role, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := parseWithClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, Role, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT rt.user_id, u.role, rt.expires_at
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.token = $1 AND rt.revoked_at IS NULL
	`, token)
	var userID, role string
	var expiresAt time.Time
	if err := row.Scan(&userID, &role, &expiresAt); err != nil {
		return "", "", time.Time{}, err
	}
	return userID, Role(role), expiresAt, nil
}

// ScanUser reads one row selected with UserColumns.
func ScanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	var details []byte
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsApproved, &details, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	if u.Role == RoleVendor && len(details) > 0 {
		var vd VendorDetails
		if err := json.Unmarshal(details, &vd); err != nil {
			return User{}, err
		}
		u.VendorDetails = &vd
	}
	return u, nil
}

func encodeVendorDetails(vd *VendorDetails) ([]byte, error) {
	if vd == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(vd)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
