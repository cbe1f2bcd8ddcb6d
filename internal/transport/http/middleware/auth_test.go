package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims domain.TokenClaims
	err    error
}

func (v *fakeVerifier) VerifyAccess(string) (domain.TokenClaims, error) {
	return v.claims, v.err
}

// newEngine protects GET /protected with Auth, and GET /owner with
// Auth + RequireRole(STORE_OWNER). Handlers echo the userID from
// context so tests can assert it was set.
func newEngine(v *fakeVerifier) *gin.Engine {
	r := gin.New()
	echo := func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.GetString("userID"))
	}
	r.GET("/protected", middleware.Auth(v), echo)
	r.GET("/owner", middleware.Auth(v), middleware.RequireRole(domain.RoleStoreOwner), echo)
	return r
}

func get(engine *gin.Engine, path string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if decorate != nil {
		decorate(req)
	}
	engine.ServeHTTP(w, req)
	return w
}

var ownerClaims = domain.TokenClaims{UserID: "user-1", Email: "o@example.com", Role: domain.RoleStoreOwner}
var customerClaims = domain.TokenClaims{UserID: "user-2", Email: "c@example.com", Role: domain.RoleCustomer}

func TestAuth_MissingToken_Returns401(t *testing.T) {
	w := get(newEngine(&fakeVerifier{claims: ownerClaims}), "/protected", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_NonBearerScheme_Returns401(t *testing.T) {
	w := get(newEngine(&fakeVerifier{claims: ownerClaims}), "/protected", func(req *http.Request) {
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_InvalidToken_Returns401(t *testing.T) {
	w := get(newEngine(&fakeVerifier{err: domain.ErrTokenInvalid}), "/protected", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer bad")
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_BearerToken_SetsUserID(t *testing.T) {
	w := get(newEngine(&fakeVerifier{claims: ownerClaims}), "/protected", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer good")
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != ownerClaims.UserID {
		t.Errorf("userID = %q, want %q", w.Body.String(), ownerClaims.UserID)
	}
}

func TestAuth_CookieToken_SetsUserID(t *testing.T) {
	w := get(newEngine(&fakeVerifier{claims: ownerClaims}), "/protected", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "good"})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != ownerClaims.UserID {
		t.Errorf("userID = %q, want %q", w.Body.String(), ownerClaims.UserID)
	}
}

func TestRequireRole_Customer_Returns403(t *testing.T) {
	w := get(newEngine(&fakeVerifier{claims: customerClaims}), "/owner", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer good")
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestRequireRole_Owner_Passes(t *testing.T) {
	w := get(newEngine(&fakeVerifier{claims: ownerClaims}), "/owner", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer good")
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
