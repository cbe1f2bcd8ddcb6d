package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/metrics"
	"github.com/bgskoro21/ecommerce-be/internal/oauth"
	"github.com/bgskoro21/ecommerce-be/internal/repository"
	"github.com/bgskoro21/ecommerce-be/internal/token"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	users      repository.UserRepository
	logs       repository.EmailLogRepository
	tokens     *token.Service
	google     oauth.Exchanger
	logger     *slog.Logger
	bcryptCost int
}

func NewAuthUsecase(
	users repository.UserRepository,
	logs repository.EmailLogRepository,
	tokens *token.Service,
	google oauth.Exchanger,
	logger *slog.Logger,
	bcryptCost int,
) *AuthUsecase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthUsecase{
		users:      users,
		logs:       logs,
		tokens:     tokens,
		google:     google,
		logger:     logger.With("component", "auth_usecase"),
		bcryptCost: bcryptCost,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Role     domain.Role
}

// Register creates the user, a store for STORE_OWNERs and the
// verification email-log entry — all in one transaction, so a failed
// store insert leaves no user behind. The email itself goes out later,
// when the mailer drains the queue.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         role,
		PasswordHash: &hashStr,
	}

	var store *domain.Store
	if role == domain.RoleStoreOwner {
		store = &domain.Store{Name: input.Name}
	}

	created, err := u.users.Register(ctx, user, store, &domain.EmailLog{Type: domain.EmailVerification})
	if err != nil {
		return nil, err
	}

	u.logger.InfoContext(ctx, "user registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// Login returns a fresh token pair. Unknown email, wrong password and
// password-less OAuth accounts all fail with the same generic error —
// no user-existence oracle.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.TokenPair{}, domain.ErrInvalidCredentials
		}
		return domain.TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := u.tokens.IssuePair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return domain.TokenPair{}, err
	}
	metrics.TokenPairsIssuedTotal.Inc()
	return pair, nil
}

// GoogleLogin exchanges the authorization code, finds or creates the
// user (already verified — Google owns the address) and issues a pair.
// An existing customer asking for a seller account gets promoted and a
// store created in the same transaction.
func (u *AuthUsecase) GoogleLogin(ctx context.Context, code string, role domain.Role) (domain.TokenPair, error) {
	info, err := u.google.Exchange(ctx, code)
	if err != nil {
		u.logger.WarnContext(ctx, "google code exchange failed", "error", err)
		return domain.TokenPair{}, domain.ErrUnauthorized
	}

	if role == "" {
		role = domain.RoleCustomer
	}

	user, err := u.users.FindByEmail(ctx, info.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		now := time.Now()
		newUser := &domain.User{
			Name:       info.Name,
			Email:      info.Email,
			Role:       role,
			VerifiedAt: &now,
		}
		var store *domain.Store
		if role == domain.RoleStoreOwner {
			store = &domain.Store{Name: info.Name}
		}
		// No email log: the address is already verified by Google.
		if user, err = u.users.Register(ctx, newUser, store, nil); err != nil {
			return domain.TokenPair{}, fmt.Errorf("create oauth user: %w", err)
		}
	case err != nil:
		return domain.TokenPair{}, fmt.Errorf("find user: %w", err)
	default:
		if user.Role != domain.RoleStoreOwner && role == domain.RoleStoreOwner {
			if err := u.users.PromoteToOwner(ctx, user.ID, &domain.Store{Name: user.Name}); err != nil {
				return domain.TokenPair{}, fmt.Errorf("promote to owner: %w", err)
			}
			user.Role = domain.RoleStoreOwner
		}
	}

	pair, err := u.tokens.IssuePair(ctx, user.ID, user.Email, user.Role)
	if err != nil {
		return domain.TokenPair{}, err
	}
	metrics.TokenPairsIssuedTotal.Inc()
	return pair, nil
}

// Refresh rotates the pair: verifying does not invalidate the old
// refresh token by itself, issuing the new pair does.
func (u *AuthUsecase) Refresh(ctx context.Context, rawRefresh string) (domain.TokenPair, error) {
	claims, err := u.tokens.VerifyRefresh(ctx, rawRefresh)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenExpired) {
			metrics.RefreshRejectedTotal.Inc()
		}
		return domain.TokenPair{}, err
	}

	pair, err := u.tokens.IssuePair(ctx, claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return domain.TokenPair{}, err
	}
	metrics.TokenPairsIssuedTotal.Inc()
	return pair, nil
}

// Me returns the authenticated user's profile.
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return u.users.FindByID(ctx, userID)
}

func (u *AuthUsecase) Logout(ctx context.Context, rawRefresh string) error {
	claims, err := u.tokens.VerifyRefresh(ctx, rawRefresh)
	if err != nil {
		return err
	}
	return u.tokens.Revoke(ctx, claims.UserID)
}

// VerifyEmail consumes a verification purpose token and stamps
// verified_at.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error) {
	userID, err := u.tokens.VerifyPurposeToken(rawToken)
	if err != nil {
		return nil, err
	}
	if err := u.users.MarkVerified(ctx, userID); err != nil {
		return nil, err
	}
	return u.users.FindByID(ctx, userID)
}

// Forgot appends a ForgotPassword entry for a known email. Unknown
// emails return ErrUserNotFound, which the handler surfaces as 404.
func (u *AuthUsecase) Forgot(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if _, err := u.logs.Create(ctx, &domain.EmailLog{
		UserID: user.ID,
		Email:  user.Email,
		Type:   domain.ForgotPassword,
	}); err != nil {
		return fmt.Errorf("enqueue forgot-password email: %w", err)
	}
	return nil
}

// Reset consumes a reset purpose token and replaces the password hash.
func (u *AuthUsecase) Reset(ctx context.Context, rawToken, newPassword string) (*domain.User, error) {
	userID, err := u.tokens.VerifyPurposeToken(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}
	return user, nil
}
