package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/config"
	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

// SignUpRequest represents the registration request
type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Locale      string `json:"locale"`
	CommunityID *uint  `json:"community_id"`
}

// SignInRequest represents the login request
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authStatusResponse renders the auth envelope: {"status":{code,message},"data":{...}}
func authStatusResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, gin.H{
		"status": gin.H{"code": code, "message": message},
		"data":   data,
	})
}

// serializeUser shapes the user payload returned by the auth endpoints.
func serializeUser(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"locale":       user.Locale,
		"community_id": user.CommunityID,
		"admin":        user.Admin,
		"created_at":   user.CreatedAt,
	}
}

// handleSignUp handles user registration
func handleSignUp(db *gorm.DB, cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		// Uniqueness violations surface as field-level validation errors.
		var existing models.User
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			utils.ValidationFailedResponse(c, map[string][]string{
				"email": {"has already been taken"},
			})
			return
		}

		if req.CommunityID != nil {
			var community models.Community
			if err := db.First(&community, *req.CommunityID).Error; err != nil {
				utils.ValidationFailedResponse(c, map[string][]string{
					"community_id": {"must reference an existing community"},
				})
				return
			}
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to process credentials")
			return
		}

		locale := req.Locale
		if locale == "" {
			locale = "en"
		}

		user := models.User{
			Email:             email,
			EncryptedPassword: string(hashed),
			FirstName:         req.FirstName,
			LastName:          req.LastName,
			Locale:            locale,
			CommunityID:       req.CommunityID,
		}

		if err := db.Create(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to complete registration")
			return
		}

		token, _, err := utils.MintToken(cfg.JWTSecret, user.ID, cfg.TokenTTL)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue token")
			return
		}

		c.Header("Authorization", "Bearer "+token)
		authStatusResponse(c, http.StatusOK, "Signed up successfully.", gin.H{
			"user":  serializeUser(&user),
			"token": token,
		})
	}
}

// handleSignIn handles user login
func handleSignIn(db *gorm.DB, cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			// Same envelope for unknown email and bad password.
			signInFailed(c)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(req.Password)); err != nil {
			signInFailed(c)
			return
		}

		if user.Revoked {
			signInFailed(c)
			return
		}

		token, _, err := utils.MintToken(cfg.JWTSecret, user.ID, cfg.TokenTTL)
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to issue token")
			return
		}

		go func(id uint) {
			now := time.Now()
			if err := db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", now).Error; err != nil {
				logrus.WithError(err).Warn("Failed to record last login")
			}
		}(user.ID)

		c.Header("Authorization", "Bearer "+token)
		authStatusResponse(c, http.StatusOK, "Signed in successfully.", gin.H{
			"user":  serializeUser(&user),
			"token": token,
		})
	}
}

func signInFailed(c *gin.Context) {
	message := "Invalid email or password."
	c.JSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": message,
		"errors":  gin.H{"authentication": []string{message}},
	})
}

// handleSignOut records the presented token's jti on the denylist so the
// token cannot be replayed for the remainder of its lifetime.
func handleSignOut(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		jti := c.GetString("token_jti")
		if jti == "" {
			utils.BadRequestResponse(c, "No token to revoke")
			return
		}

		exp := time.Now().Add(24 * time.Hour)
		if v, exists := c.Get("token_exp"); exists {
			if t, ok := v.(time.Time); ok {
				exp = t
			}
		}

		entry := models.DenylistedToken{JTI: jti, Exp: exp}
		if err := db.Create(&entry).Error; err != nil {
			// Duplicate jti means the token was already revoked; treat as done.
			logrus.WithError(err).Debug("Denylist insert skipped")
		}
		if err := utils.CacheDenylistToken(jti, exp); err != nil {
			logrus.WithError(err).Warn("Failed to cache revoked token")
		}

		authStatusResponse(c, http.StatusOK, "Signed out successfully.", nil)
	}
}

// handleGetUsers handles getting all users (admin only)
func handleGetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Preload("Community").Find(&users).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch users")
			return
		}

		response := make([]gin.H, len(users))
		for i := range users {
			response[i] = serializeUser(&users[i])
			if users[i].Community != nil {
				response[i]["community_ident"] = users[i].Community.Ident
			}
		}

		utils.OKResponse(c, "Users retrieved successfully", response)
	}
}

// handleGetUser handles getting a specific user
func handleGetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.Preload("Community").First(&user, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "User not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch user")
			}
			return
		}

		utils.OKResponse(c, "User retrieved successfully", serializeUser(&user))
	}
}

// UpdateUserRequest represents the admin user update request
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Locale      *string `json:"locale"`
	CommunityID *uint   `json:"community_id"`
	Admin       *bool   `json:"admin"`
	Revoked     *bool   `json:"revoked"`
}

// handleUpdateUser handles updating a user (admin only). Setting revoked
// invalidates every outstanding token for the user at the gate.
func handleUpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "User not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch user")
			}
			return
		}

		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Locale != nil {
			user.Locale = *req.Locale
		}
		if req.CommunityID != nil {
			var community models.Community
			if err := db.First(&community, *req.CommunityID).Error; err != nil {
				utils.ValidationFailedResponse(c, map[string][]string{
					"community_id": {"must reference an existing community"},
				})
				return
			}
			user.CommunityID = req.CommunityID
		}
		if req.Admin != nil {
			user.Admin = *req.Admin
		}
		if req.Revoked != nil {
			user.Revoked = *req.Revoked
		}

		if err := db.Save(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update user")
			return
		}

		utils.OKResponse(c, "User updated successfully", serializeUser(&user))
	}
}

// handleDeleteUser handles deleting a user (admin only)
func handleDeleteUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "User not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch user")
			}
			return
		}

		if err := db.Delete(&user).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete user")
			return
		}

		utils.OKResponse(c, "User deleted successfully", nil)
	}
}
