// Package auth implements registration, login, and refresh-token
// rotation for the unified User entity. Grounded on the teacher's
// internal/features/auth service (bcrypt hashing, JWT HS256 signing
// with a custom Claims embedding jwt.RegisteredClaims), generalized
// from the teacher's three-role split to the single peer-to-peer User.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lalan-be/internal/apperr"
	"lalan-be/internal/clock"
	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// Claims adalah payload JWT kustom, menambahkan Subject (user ID) dari
// jwt.RegisteredClaims — tidak ada Role terpisah karena tidak ada lagi
// pembagian peran statis di model peer-to-peer ini. IsAdmin hanya
// dipakai middleware untuk melindungi administrasi kategori (§9); ia
// tidak memberi hak istimewa apa pun pada booking kernel.
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin bool `json:"is_admin"`
}

// TokenPair adalah hasil login/register/refresh yang dikirim ke klien.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         *domain.User
}

const accessTokenTTL = 1 * time.Hour
const refreshTokenTTL = 30 * 24 * time.Hour

type Service struct {
	users     store.UserStore
	jwtSecret []byte
	clk       clock.Clock
}

func NewService(users store.UserStore, jwtSecret []byte, clk clock.Clock) *Service {
	return &Service{users: users, jwtSecret: jwtSecret, clk: clk}
}

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register menghash password dengan bcrypt, membuat User, lalu
// menerbitkan token pair seperti login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.FirstName == "" {
		return nil, apperr.Validation(apperr.CodeInvalidField, "email, password and first name are required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation(apperr.CodeInvalidField, "password must be at least 8 characters").WithField("password", "too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, apperr.Internal(err)
	}

	return s.issueTokenPair(ctx, u)
}

// Login memverifikasi kredensial dan menerbitkan token pair baru.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrBadCredentials
		}
		return nil, apperr.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrBadCredentials
	}
	return s.issueTokenPair(ctx, u)
}

// Refresh menukar refresh token lama dengan token pair baru,
// merevoke yang lama (rotation), menolak token yang sudah revoked,
// kadaluarsa, atau tidak ditemukan.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.users.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrBadCredentials
		}
		return nil, apperr.Internal(err)
	}
	if rt.Revoked || s.clk.Now().After(rt.ExpiresAt) {
		return nil, apperr.ErrBadCredentials
	}
	if err := s.users.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, apperr.Internal(err)
	}

	u, err := s.users.GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return s.issueTokenPair(ctx, u)
}

func (s *Service) issueTokenPair(ctx context.Context, u *domain.User) (*TokenPair, error) {
	now := s.clk.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
		IsAdmin: u.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	access, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refresh := uuid.NewString()
	if err := s.users.CreateRefreshToken(ctx, &domain.RefreshToken{
		Token:     refresh,
		UserID:    u.ID,
		ExpiresAt: now.Add(refreshTokenTTL),
	}); err != nil {
		return nil, apperr.Internal(err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(accessTokenTTL.Seconds()),
		User:         u,
	}, nil
}

// UpdateProfile menerapkan sparse update ke profil user, ditolak bila
// field di luar domain.UserProfileFields.
func (s *Service) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*domain.User, error) {
	for k := range fields {
		if !domain.UserProfileFields[k] {
			return nil, apperr.Validation(apperr.CodeInvalidField, "unrecognized field: "+k).WithField(k, "unrecognized")
		}
	}
	u, err := s.users.UpdateUserProfile(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// ParseAndValidate parses a bearer access token and returns the
// subject (user ID) and the embedded IsAdmin flag if it's valid and
// unexpired. Consumed by internal/middleware so the HTTP layer never
// touches jwt.ParseWithClaims directly.
func (s *Service) ParseAndValidate(tokenStr string) (userID string, isAdmin bool, err error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", false, apperr.Authentication(apperr.CodeBadCredentials, "invalid or expired token")
	}
	return claims.Subject, claims.IsAdmin, nil
}
