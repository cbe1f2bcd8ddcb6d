package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultPurposeTTL = time.Hour
)

// Service issues, verifies, rotates and revokes token pairs. The
// current refresh token is persisted on the user row, so a refresh
// token is only accepted while it is the latest one issued — rotation
// and logout invalidate prior tokens immediately at the cost of one
// lookup per refresh.
type Service struct {
	users      repository.UserRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	purposeTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

func WithTTLs(access, refresh, purpose time.Duration) Option {
	return func(s *Service) {
		s.accessTTL = access
		s.refreshTTL = refresh
		s.purposeTTL = purpose
	}
}

// WithClock overrides the time source, so tests can expire tokens
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users repository.UserRepository, secret []byte, opts ...Option) *Service {
	s := &Service{
		users:      users,
		secret:     secret,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		purposeTTL: defaultPurposeTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePair signs a fresh access/refresh pair and overwrites the
// stored refresh token. This is the rotation point: whatever refresh
// token the user held before is dead the moment this write commits.
func (s *Service) IssuePair(ctx context.Context, userID, email string, role domain.Role) (domain.TokenPair, error) {
	access, err := s.sign(userID, email, role, s.accessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(userID, email, role, s.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, userID, &refresh); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyRefresh validates signature and expiry, then requires the
// presented token to equal the stored one exactly. A rotated-out or
// revoked token fails here even though its signature is still good.
// VerifyRefresh does not rotate; callers issue a new pair themselves.
func (s *Service) VerifyRefresh(ctx context.Context, raw string) (domain.TokenClaims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return domain.TokenClaims{}, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.TokenClaims{}, domain.ErrTokenInvalid
		}
		return domain.TokenClaims{}, fmt.Errorf("find user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != raw {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	return claims, nil
}

// Revoke clears the stored refresh token; every subsequent
// VerifyRefresh for this user fails until a new pair is issued.
func (s *Service) Revoke(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// VerifyAccess validates an access token. Used by the HTTP middleware.
func (s *Service) VerifyAccess(raw string) (domain.TokenClaims, error) {
	return s.parse(raw)
}

// IssuePurposeToken signs a short-lived token carrying only the
// subject id. It backs email-verification and password-reset links.
// ttl <= 0 means the default (1h).
func (s *Service) IssuePurposeToken(userID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.purposeTTL
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign purpose token: %w", err)
	}
	return signed, nil
}

// VerifyPurposeToken returns the subject id. Callers are responsible
// for any state change (marking verified_at, updating the password).
func (s *Service) VerifyPurposeToken(raw string) (string, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) sign(userID, email string, role domain.Role, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parse maps every verification failure onto two sentinel errors so
// callers branch with errors.Is instead of inspecting jwt internals.
// The HTTP boundary collapses both to one generic message.
func (s *Service) parse(raw string) (domain.TokenClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.TokenClaims{}, domain.ErrTokenExpired
		}
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return domain.TokenClaims{UserID: sub, Email: email, Role: domain.Role(role)}, nil
}
