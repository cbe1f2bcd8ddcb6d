package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/oauth"
	"github.com/bgskoro21/ecommerce-be/internal/token"
	"github.com/bgskoro21/ecommerce-be/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	register        func(ctx context.Context, user *domain.User, store *domain.Store, log *domain.EmailLog) (*domain.User, error)
	findByEmail     func(ctx context.Context, email string) (*domain.User, error)
	findByID        func(ctx context.Context, id string) (*domain.User, error)
	setRefreshToken func(ctx context.Context, userID string, token *string) error
	markVerified    func(ctx context.Context, userID string) error
	updatePassword  func(ctx context.Context, userID, passwordHash string) error
	promoteToOwner  func(ctx context.Context, userID string, store *domain.Store) error
}

func (r *fakeUserRepo) Register(ctx context.Context, user *domain.User, store *domain.Store, log *domain.EmailLog) (*domain.User, error) {
	return r.register(ctx, user, store, log)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) SetRefreshToken(ctx context.Context, userID string, token *string) error {
	if r.setRefreshToken == nil {
		return nil
	}
	return r.setRefreshToken(ctx, userID, token)
}

func (r *fakeUserRepo) MarkVerified(ctx context.Context, userID string) error {
	return r.markVerified(ctx, userID)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.updatePassword(ctx, userID, passwordHash)
}

func (r *fakeUserRepo) PromoteToOwner(ctx context.Context, userID string, store *domain.Store) error {
	return r.promoteToOwner(ctx, userID, store)
}

type fakeLogRepo struct {
	create func(ctx context.Context, log *domain.EmailLog) (*domain.EmailLog, error)
}

func (r *fakeLogRepo) Create(ctx context.Context, log *domain.EmailLog) (*domain.EmailLog, error) {
	return r.create(ctx, log)
}

func (r *fakeLogRepo) ListPending(context.Context, domain.EmailType) ([]*domain.EmailLog, error) {
	return nil, nil
}
func (r *fakeLogRepo) MarkSent(context.Context, string) error   { return nil }
func (r *fakeLogRepo) MarkFailed(context.Context, string) error { return nil }

type fakeExchanger struct {
	exchange func(ctx context.Context, code string) (*oauth.UserInfo, error)
}

func (e *fakeExchanger) Exchange(ctx context.Context, code string) (*oauth.UserInfo, error) {
	return e.exchange(ctx, code)
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

// testBcryptCost keeps hashing fast; production uses the default cost.
const testBcryptCost = bcrypt.MinCost

func newAuth(users *fakeUserRepo, logs *fakeLogRepo, google oauth.Exchanger) *usecase.AuthUsecase {
	tokens := token.NewService(users, []byte(testJWTKey))
	return usecase.NewAuthUsecase(users, logs, tokens, google, slog.Default(), testBcryptCost)
}

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), testBcryptCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s := string(h)
	return &s
}

// ---- Register ----

func TestRegister_OwnerGetsStoreAndVerificationLog(t *testing.T) {
	var gotStore *domain.Store
	var gotLog *domain.EmailLog
	users := &fakeUserRepo{
		register: func(_ context.Context, user *domain.User, store *domain.Store, log *domain.EmailLog) (*domain.User, error) {
			gotStore, gotLog = store, log
			user.ID = "user-1"
			return user, nil
		},
	}

	created, err := newAuth(users, &fakeLogRepo{}, nil).Register(context.Background(), usecase.RegisterInput{
		Name:     "Shop Owner",
		Email:    "owner@example.com",
		Password: "password123",
		Role:     domain.RoleStoreOwner,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if gotStore == nil || gotStore.Name != "Shop Owner" {
		t.Errorf("store = %+v, want one named after the owner", gotStore)
	}
	if gotLog == nil || gotLog.Type != domain.EmailVerification {
		t.Errorf("email log = %+v, want EmailVerification", gotLog)
	}
	if created.PasswordHash == nil {
		t.Fatal("password hash not set")
	}
	if bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte("password123")) != nil {
		t.Error("stored hash does not match password")
	}
}

func TestRegister_CustomerGetsNoStore(t *testing.T) {
	var gotStore *domain.Store
	users := &fakeUserRepo{
		register: func(_ context.Context, user *domain.User, store *domain.Store, _ *domain.EmailLog) (*domain.User, error) {
			gotStore = store
			return user, nil
		},
	}

	created, err := newAuth(users, &fakeLogRepo{}, nil).Register(context.Background(), usecase.RegisterInput{
		Name:     "Buyer",
		Email:    "buyer@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if gotStore != nil {
		t.Errorf("store = %+v, want nil for customers", gotStore)
	}
	if created.Role != domain.RoleCustomer {
		t.Errorf("role = %q, want default CUSTOMER", created.Role)
	}
}

func TestRegister_DuplicateEmail_Propagates(t *testing.T) {
	users := &fakeUserRepo{
		register: func(context.Context, *domain.User, *domain.Store, *domain.EmailLog) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, err := newAuth(users, &fakeLogRepo{}, nil).Register(context.Background(), usecase.RegisterInput{
		Name:     "Dup",
		Email:    "dup@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

// ---- Login ----

// Unknown email and wrong password must be indistinguishable to the
// caller.
func TestLogin_FailuresAreUniform(t *testing.T) {
	stored := &domain.User{
		ID:           "user-1",
		Email:        "known@example.com",
		Role:         domain.RoleCustomer,
		PasswordHash: hashOf(t, "right-password"),
	}
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email != stored.Email {
				return nil, domain.ErrUserNotFound
			}
			return stored, nil
		},
	}
	auth := newAuth(users, &fakeLogRepo{}, nil)

	_, unknownErr := auth.Login(context.Background(), "nobody@example.com", "whatever")
	_, wrongErr := auth.Login(context.Background(), stored.Email, "wrong-password")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("errors differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLogin_OAuthOnlyAccount_Rejected(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			// Created through Google: no password hash at all.
			return &domain.User{ID: "user-1", Email: "g@example.com"}, nil
		},
	}

	_, err := newAuth(users, &fakeLogRepo{}, nil).Login(context.Background(), "g@example.com", "anything")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_Success_PersistsRefreshToken(t *testing.T) {
	var storedRefresh *string
	users := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			return &domain.User{
				ID:           "user-1",
				Email:        "known@example.com",
				Role:         domain.RoleCustomer,
				PasswordHash: hashOf(t, "right-password"),
			}, nil
		},
		setRefreshToken: func(_ context.Context, _ string, tok *string) error {
			storedRefresh = tok
			return nil
		},
	}

	pair, err := newAuth(users, &fakeLogRepo{}, nil).Login(context.Background(), "known@example.com", "right-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token in pair")
	}
	if storedRefresh == nil || *storedRefresh != pair.RefreshToken {
		t.Error("issued refresh token was not persisted")
	}
}

// ---- GoogleLogin ----

func TestGoogleLogin_ExchangeFailure_ReturnsUnauthorized(t *testing.T) {
	google := &fakeExchanger{
		exchange: func(context.Context, string) (*oauth.UserInfo, error) {
			return nil, errors.New("invalid code")
		},
	}

	_, err := newAuth(&fakeUserRepo{}, &fakeLogRepo{}, google).GoogleLogin(context.Background(), "bad-code", "")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}

func TestGoogleLogin_NewUser_CreatedVerifiedWithoutEmailLog(t *testing.T) {
	var gotUser *domain.User
	var gotLog *domain.EmailLog
	users := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		register: func(_ context.Context, user *domain.User, _ *domain.Store, log *domain.EmailLog) (*domain.User, error) {
			gotUser, gotLog = user, log
			user.ID = "user-1"
			return user, nil
		},
	}
	google := &fakeExchanger{
		exchange: func(context.Context, string) (*oauth.UserInfo, error) {
			return &oauth.UserInfo{Email: "g@example.com", Name: "G User"}, nil
		},
	}

	pair, err := newAuth(users, &fakeLogRepo{}, google).GoogleLogin(context.Background(), "code", "")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("no access token issued")
	}
	if gotUser.VerifiedAt == nil {
		t.Error("oauth user should be created already verified")
	}
	if gotLog != nil {
		t.Errorf("email log = %+v, want none for oauth users", gotLog)
	}
}

func TestGoogleLogin_ExistingCustomer_PromotedToOwner(t *testing.T) {
	var promoted bool
	users := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Name: "G User", Email: "g@example.com", Role: domain.RoleCustomer}, nil
		},
		promoteToOwner: func(_ context.Context, userID string, store *domain.Store) error {
			promoted = true
			if store == nil {
				t.Error("promotion without a store")
			}
			return nil
		},
	}
	google := &fakeExchanger{
		exchange: func(context.Context, string) (*oauth.UserInfo, error) {
			return &oauth.UserInfo{Email: "g@example.com", Name: "G User"}, nil
		},
	}

	_, err := newAuth(users, &fakeLogRepo{}, google).GoogleLogin(context.Background(), "code", domain.RoleStoreOwner)
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if !promoted {
		t.Error("existing customer was not promoted")
	}
}

// ---- VerifyEmail ----

func TestVerifyEmail_MarksVerified(t *testing.T) {
	var markedID string
	users := &fakeUserRepo{
		markVerified: func(_ context.Context, userID string) error {
			markedID = userID
			return nil
		},
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "known@example.com"}, nil
		},
	}
	auth := newAuth(users, &fakeLogRepo{}, nil)

	tokens := token.NewService(users, []byte(testJWTKey))
	raw, err := tokens.IssuePurposeToken("user-1", 0)
	if err != nil {
		t.Fatalf("issue purpose token: %v", err)
	}

	user, err := auth.VerifyEmail(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify email: %v", err)
	}
	if markedID != "user-1" || user.ID != "user-1" {
		t.Errorf("marked %q, returned %q, want user-1", markedID, user.ID)
	}
}

func TestVerifyEmail_BadToken(t *testing.T) {
	_, err := newAuth(&fakeUserRepo{}, &fakeLogRepo{}, nil).VerifyEmail(context.Background(), "garbage")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

// ---- Forgot ----

func TestForgot_UnknownEmail_ReturnsNotFound(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	err := newAuth(users, &fakeLogRepo{}, nil).Forgot(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestForgot_KnownEmail_EnqueuesResetLog(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(context.Context, string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: "known@example.com"}, nil
		},
	}
	var gotLog *domain.EmailLog
	logs := &fakeLogRepo{
		create: func(_ context.Context, log *domain.EmailLog) (*domain.EmailLog, error) {
			gotLog = log
			return log, nil
		},
	}

	if err := newAuth(users, logs, nil).Forgot(context.Background(), "known@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if gotLog == nil || gotLog.Type != domain.ForgotPassword || gotLog.UserID != "user-1" {
		t.Errorf("log = %+v, want ForgotPassword for user-1", gotLog)
	}
}

// ---- Reset ----

func TestReset_ReplacesPasswordHash(t *testing.T) {
	var newHash string
	users := &fakeUserRepo{
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "known@example.com"}, nil
		},
		updatePassword: func(_ context.Context, _ string, passwordHash string) error {
			newHash = passwordHash
			return nil
		},
	}
	auth := newAuth(users, &fakeLogRepo{}, nil)

	tokens := token.NewService(users, []byte(testJWTKey))
	raw, err := tokens.IssuePurposeToken("user-1", 0)
	if err != nil {
		t.Fatalf("issue purpose token: %v", err)
	}

	if _, err := auth.Reset(context.Background(), raw, "new-password-123"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password-123")) != nil {
		t.Error("stored hash does not match the new password")
	}
}

func TestReset_ExpiredToken(t *testing.T) {
	users := &fakeUserRepo{}
	auth := newAuth(users, &fakeLogRepo{}, nil)

	past := token.NewService(users, []byte(testJWTKey),
		token.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	raw, err := past.IssuePurposeToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue purpose token: %v", err)
	}

	_, err = auth.Reset(context.Background(), raw, "new-password-123")
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("want ErrTokenExpired, got %v", err)
	}
}
