package main

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/tenancy"
	"github.com/communityos/community-platform/shared/utils"
)

// CreateCommunityRequest represents the create community request
type CreateCommunityRequest struct {
	Domain   string `json:"domain" binding:"required"`
	Ident    string `json:"ident"`
	Locale   string `json:"locale"`
	Currency string `json:"currency"`
	Country  string `json:"country"`
	PersonID string `json:"person_id" binding:"required"`
}

// UpdateCommunityRequest represents the update community request
type UpdateCommunityRequest struct {
	Domain    *string `json:"domain"`
	UseDomain *bool   `json:"use_domain"`
	IsEnabled *bool   `json:"is_enabled"`
	Locale    *string `json:"locale"`
	Currency  *string `json:"currency"`
	Country   *string `json:"country"`
}

// handleResolveByDomain is the public tenant directory endpoint: it maps a
// domain (or its www alternate) to an enabled community.
func handleResolveByDomain(db *gorm.DB) gin.HandlerFunc {
	finder := tenancy.GormFinder{DB: db}
	return func(c *gin.Context) {
		domain := c.Query("domain")
		if domain == "" {
			utils.BadRequestResponse(c, "domain query parameter is required")
			return
		}

		if cached, ok := utils.CachedCommunityByDomain(domain); ok {
			utils.OKResponse(c, "Community retrieved successfully", cached)
			return
		}

		community, err := tenancy.ResolveCommunity(finder, domain)
		if err != nil {
			if errors.Is(err, tenancy.ErrCommunityNotFound) {
				utils.NotFoundResponse(c, "Community not found for domain "+domain)
			} else {
				utils.InternalServerErrorResponse(c, "Failed to resolve community")
			}
			return
		}

		utils.CacheCommunity(community)
		utils.OKResponse(c, "Community retrieved successfully", community)
	}
}

// handleCreateCommunity handles community creation (admin only)
func handleCreateCommunity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCommunityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		fieldErrors := map[string][]string{}
		var existing models.Community
		if err := db.Where("domain = ?", req.Domain).First(&existing).Error; err == nil {
			fieldErrors["domain"] = append(fieldErrors["domain"], "has already been taken")
		}
		if err := db.Where("person_id = ?", req.PersonID).First(&existing).Error; err == nil {
			fieldErrors["person_id"] = append(fieldErrors["person_id"], "has already been taken")
		}
		if req.Ident != "" {
			if err := db.Where("ident = ?", req.Ident).First(&existing).Error; err == nil {
				fieldErrors["ident"] = append(fieldErrors["ident"], "has already been taken")
			}
		}
		if len(fieldErrors) > 0 {
			utils.ValidationFailedResponse(c, fieldErrors)
			return
		}

		community := models.Community{
			Domain:    req.Domain,
			Ident:     req.Ident,
			Locale:    req.Locale,
			Currency:  req.Currency,
			Country:   req.Country,
			PersonID:  req.PersonID,
			IsEnabled: true,
		}

		// A community is born with its singleton sub-resources so the admin
		// UI always has documents to edit.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&community).Error; err != nil {
				return err
			}
			seeds := []interface{}{
				&models.MarketplaceConfiguration{CommunityID: community.ID, Name: community.Ident},
				&models.LandingPage{CommunityID: community.ID},
				&models.Topbar{CommunityID: community.ID},
				&models.Footer{CommunityID: community.ID},
			}
			for _, seed := range seeds {
				if err := tx.Create(seed).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create community")
			return
		}

		utils.CreatedResponse(c, "Community created successfully", community)
	}
}

// handleGetCommunities handles getting all communities (admin only)
func handleGetCommunities(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var communities []models.Community
		if err := db.Find(&communities).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch communities")
			return
		}

		utils.OKResponse(c, "Communities retrieved successfully", communities)
	}
}

// handleGetCommunity handles getting a specific community
func handleGetCommunity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var community models.Community
		err := db.
			Preload("MarketplaceConfiguration").
			Preload("LandingPage").
			Preload("Topbar").
			Preload("Footer").
			First(&community, c.Param("id")).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Community not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch community")
			}
			return
		}

		utils.OKResponse(c, "Community retrieved successfully", community)
	}
}

// handleUpdateCommunity handles updating a community
func handleUpdateCommunity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var community models.Community
		if err := db.First(&community, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Community not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch community")
			}
			return
		}

		var req UpdateCommunityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		previousDomain := community.Domain

		if req.Domain != nil {
			var existing models.Community
			if err := db.Where("domain = ? AND id != ?", *req.Domain, community.ID).First(&existing).Error; err == nil {
				utils.ValidationFailedResponse(c, map[string][]string{
					"domain": {"has already been taken"},
				})
				return
			}
			community.Domain = *req.Domain
		}
		if req.UseDomain != nil {
			community.UseDomain = *req.UseDomain
		}
		if req.IsEnabled != nil {
			community.IsEnabled = *req.IsEnabled
		}
		if req.Locale != nil {
			community.Locale = *req.Locale
		}
		if req.Currency != nil {
			community.Currency = *req.Currency
		}
		if req.Country != nil {
			community.Country = *req.Country
		}

		if err := db.Save(&community).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update community")
			return
		}

		// Visibility or domain changes must take effect immediately.
		utils.InvalidateCommunityCache(previousDomain)
		utils.InvalidateCommunityCache(community.Domain)

		utils.OKResponse(c, "Community updated successfully", community)
	}
}

// handleDeleteCommunity removes a community together with everything it owns.
// The whole cascade runs inside one transaction; users are not owned and only
// lose their community reference.
func handleDeleteCommunity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var community models.Community
		if err := db.First(&community, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Community not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch community")
			}
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			owned := []interface{}{
				&models.MarketplaceConfiguration{},
				&models.LandingPage{},
				&models.Topbar{},
				&models.Footer{},
				&models.ContentPage{},
				&models.Contact{},
				&models.Translation{},
			}
			for _, model := range owned {
				if err := tx.Where("community_id = ?", community.ID).Delete(model).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&models.User{}).Where("community_id = ?", community.ID).
				Update("community_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&community).Error
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete community")
			return
		}

		utils.InvalidateCommunityCache(community.Domain)
		utils.OKResponse(c, "Community deleted successfully", nil)
	}
}

// handleGetCommunityUsers handles listing users attached to a community
func handleGetCommunityUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Where("community_id = ?", c.Param("id")).Find(&users).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch community users")
			return
		}

		utils.OKResponse(c, "Community users retrieved successfully", users)
	}
}

// communityIDParam parses the :id path segment.
func communityIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid community id")
		return 0, false
	}
	return uint(id), true
}
