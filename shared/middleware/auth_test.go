package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityos/community-platform/shared/config"
	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

var testSecret = []byte("gate-test-secret")

type fakeUsers struct {
	users map[uint]*models.User
}

func (f fakeUsers) UserByID(id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

type fakeDenylist struct {
	denied map[string]bool
	err    error
}

func (f fakeDenylist) IsDenylisted(jti string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.denied[jti], nil
}

func gateConfig() *config.App {
	return &config.App{JWTSecret: testSecret, TokenTTL: time.Hour}
}

// newGateRouter mounts RequireAuth in front of a probe that echoes the
// resolved identity.
func newGateRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", am.RequireAuth(), func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, identity)
	})
	return router
}

func performProbe(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// assertUniformRejection checks both the status and the envelope shape that
// every authentication failure must share.
func assertUniformRejection(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body struct {
		Status  string              `json:"status"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, authFailureMessage, body.Message)
	assert.Equal(t, []string{authFailureMessage}, body.Errors["authentication"])
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	communityID := uint(3)
	users := fakeUsers{users: map[uint]*models.User{
		42: {ID: 42, Email: "owner@acme.com", CommunityID: &communityID},
	}}
	am := NewAuthMiddlewareWith(gateConfig(), users, fakeDenylist{}, nil)

	signed, _, err := utils.MintToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	w := performProbe(newGateRouter(am), "Bearer "+signed)
	require.Equal(t, http.StatusOK, w.Code)

	var identity models.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &identity))
	assert.Equal(t, uint(42), identity.UserID)
	assert.Equal(t, "owner@acme.com", identity.Email)
	assert.Equal(t, uint(3), *identity.CommunityID)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)
	assertUniformRejection(t, performProbe(newGateRouter(am), ""))
}

func TestRequireAuthWrongScheme(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)
	assertUniformRejection(t, performProbe(newGateRouter(am), "Basic dXNlcjpwYXNz"))
}

func TestRequireAuthMalformedToken(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)
	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer not.a.token"))
}

func TestRequireAuthWrongSignature(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)

	signed, _, err := utils.MintToken([]byte("other-secret"), 42, time.Hour)
	require.NoError(t, err)

	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer "+signed))
}

func TestRequireAuthUnknownUser(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)

	signed, _, err := utils.MintToken(testSecret, 99, time.Hour)
	require.NoError(t, err)

	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer "+signed))
}

func TestRequireAuthRevokedUser(t *testing.T) {
	users := fakeUsers{users: map[uint]*models.User{
		42: {ID: 42, Email: "owner@acme.com", Revoked: true},
	}}
	am := NewAuthMiddlewareWith(gateConfig(), users, fakeDenylist{}, nil)

	signed, _, err := utils.MintToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer "+signed))
}

func TestRequireAuthDenylistedToken(t *testing.T) {
	users := fakeUsers{users: map[uint]*models.User{
		42: {ID: 42, Email: "owner@acme.com"},
	}}

	signed, jti, err := utils.MintToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	am := NewAuthMiddlewareWith(gateConfig(), users, fakeDenylist{denied: map[string]bool{jti: true}}, nil)
	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer "+signed))
}

func TestRequireAuthDenylistError(t *testing.T) {
	users := fakeUsers{users: map[uint]*models.User{
		42: {ID: 42, Email: "owner@acme.com"},
	}}
	am := NewAuthMiddlewareWith(gateConfig(), users, fakeDenylist{err: errors.New("redis down")}, nil)

	signed, _, err := utils.MintToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer "+signed))
}

func TestRequireAuthExpiredToken(t *testing.T) {
	users := fakeUsers{users: map[uint]*models.User{
		42: {ID: 42, Email: "owner@acme.com"},
	}}
	// The clock is pinned past the token's expiry.
	future := func() time.Time { return time.Now().Add(2 * time.Hour) }
	am := NewAuthMiddlewareWith(gateConfig(), users, fakeDenylist{}, future)

	signed, _, err := utils.MintToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	assertUniformRejection(t, performProbe(newGateRouter(am), "Bearer "+signed))
}

func newAccessRouter(am *AuthMiddleware, identity *models.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/communities/:id", func(c *gin.Context) {
		if identity != nil {
			c.Set(identityKey, identity)
		}
	}, am.RequireCommunityAccess(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireCommunityAccessOwnCommunity(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)
	communityID := uint(5)

	router := newAccessRouter(am, &models.Identity{UserID: 1, CommunityID: &communityID})
	req := httptest.NewRequest(http.MethodGet, "/communities/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCommunityAccessForeignCommunity(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)
	communityID := uint(5)

	router := newAccessRouter(am, &models.Identity{UserID: 1, CommunityID: &communityID})
	req := httptest.NewRequest(http.MethodGet, "/communities/6", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCommunityAccessNoCommunity(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)

	router := newAccessRouter(am, &models.Identity{UserID: 1})
	req := httptest.NewRequest(http.MethodGet, "/communities/5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCommunityAccessAdminBypass(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)

	router := newAccessRouter(am, &models.Identity{UserID: 1, Admin: true})
	req := httptest.NewRequest(http.MethodGet, "/communities/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	am := NewAuthMiddlewareWith(gateConfig(), fakeUsers{}, fakeDenylist{}, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		c.Set(identityKey, &models.Identity{UserID: 1, Admin: false})
	}, am.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	_, ok = bearerToken("")
	assert.False(t, ok)

	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)

	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
}
