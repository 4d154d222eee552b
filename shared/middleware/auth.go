package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/config"
	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

const identityKey = "identity"

// The uniform message rendered on every authentication failure. The actual
// cause (malformed, revoked, expired, unknown user) is logged server-side
// only; the response body never distinguishes them.
const authFailureMessage = "You need to sign in or sign up before continuing."

// UserFinder resolves a token subject to a user record.
type UserFinder interface {
	UserByID(id uint) (*models.User, error)
}

// DenyChecker reports whether a token jti has been explicitly revoked.
type DenyChecker interface {
	IsDenylisted(jti string) (bool, error)
}

type gormUserFinder struct {
	db *gorm.DB
}

func (f gormUserFinder) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := f.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type gormDenyChecker struct {
	db *gorm.DB
}

func (d gormDenyChecker) IsDenylisted(jti string) (bool, error) {
	if denied, found := utils.CachedTokenDenylisted(jti); found {
		return denied, nil
	}
	var count int64
	if err := d.db.Model(&models.DenylistedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AuthMiddleware is the bearer-token gate in front of protected endpoints.
// Each check is a stateless read; nothing is refreshed or mutated here.
type AuthMiddleware struct {
	cfg      *config.App
	users    UserFinder
	denylist DenyChecker
	now      func() time.Time
}

// NewAuthMiddleware creates the database-backed auth middleware.
func NewAuthMiddleware(db *gorm.DB, cfg *config.App) *AuthMiddleware {
	return &AuthMiddleware{
		cfg:      cfg,
		users:    gormUserFinder{db: db},
		denylist: gormDenyChecker{db: db},
		now:      time.Now,
	}
}

// NewAuthMiddlewareWith wires explicit collaborators, used by tests.
func NewAuthMiddlewareWith(cfg *config.App, users UserFinder, denylist DenyChecker, now func() time.Time) *AuthMiddleware {
	if now == nil {
		now = time.Now
	}
	return &AuthMiddleware{cfg: cfg, users: users, denylist: denylist, now: now}
}

// RequireAuth validates the Authorization header and exposes the resolved
// identity to downstream handlers. Order of checks: scheme, signature,
// subject, user revocation, token denylist, expiry.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			am.reject(c, "no bearer token", nil)
			return
		}

		claims, err := utils.ParseToken(am.cfg.JWTSecret, tokenString)
		if err != nil {
			am.reject(c, "malformed token", err)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			am.reject(c, "malformed subject", err)
			return
		}

		user, err := am.users.UserByID(userID)
		if err != nil {
			am.reject(c, "user missing", err)
			return
		}

		if user.Revoked {
			am.reject(c, "user revoked", nil)
			return
		}

		denied, err := am.denylist.IsDenylisted(claims.ID)
		if err != nil {
			am.reject(c, "denylist check failed", err)
			return
		}
		if denied {
			am.reject(c, "token revoked", nil)
			return
		}

		if claims.Expired(am.now()) {
			am.reject(c, "token expired", nil)
			return
		}

		c.Set(identityKey, models.IdentityFor(user))
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

// RequireAdmin allows only platform administrators past.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			am.reject(c, "no identity in context", nil)
			return
		}
		if !identity.Admin {
			utils.ForbiddenResponse(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCommunityAccess rejects requests whose path community id does not
// match the caller's community. Administrators may access any community. The
// ownership check runs on every read and write, not just creation.
func (am *AuthMiddleware) RequireCommunityAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			am.reject(c, "no identity in context", nil)
			return
		}
		if identity.Admin {
			c.Next()
			return
		}

		requested, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid community id")
			c.Abort()
			return
		}
		if identity.CommunityID == nil || *identity.CommunityID != uint(requested) {
			utils.ForbiddenResponse(c, "Access denied to this community")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity extracts the authenticated identity from the context.
func GetIdentity(c *gin.Context) (*models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok
}

// reject renders the uniform 401 envelope and logs the real cause.
func (am *AuthMiddleware) reject(c *gin.Context, cause string, err error) {
	fields := logrus.Fields{"cause": cause, "path": c.Request.URL.Path}
	if err != nil {
		fields["error"] = err.Error()
	}
	logrus.WithFields(fields).Info("authentication rejected")

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": authFailureMessage,
		"errors": gin.H{
			"authentication": []string{authFailureMessage},
		},
	})
}

// bearerToken extracts the token from a "Bearer <token>" header. Any other
// scheme, or a missing header, is treated as no token at all.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
