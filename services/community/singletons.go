package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

// Singleton configuration documents: one record per community, created with
// the community and replaced wholesale on update. Section-bearing documents
// are normalized on every write so stored data is always in canonical shape;
// concurrent edits are last-write-wins.

func handleGetMarketplaceConfiguration(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var cfg models.MarketplaceConfiguration
		if err := db.Where("community_id = ?", id).First(&cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Marketplace configuration not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch marketplace configuration")
			}
			return
		}
		utils.OKResponse(c, "Marketplace configuration retrieved successfully", cfg)
	}
}

// UpdateMarketplaceConfigurationRequest is the replacement payload.
type UpdateMarketplaceConfigurationRequest struct {
	Name    *string        `json:"name"`
	LogoURL *string        `json:"logo_url"`
	Data    datatypes.JSON `json:"data"`
}

func handleUpdateMarketplaceConfiguration(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var cfg models.MarketplaceConfiguration
		if err := db.Where("community_id = ?", id).First(&cfg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Marketplace configuration not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch marketplace configuration")
			}
			return
		}

		var req UpdateMarketplaceConfigurationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Name != nil {
			cfg.Name = *req.Name
		}
		if req.LogoURL != nil {
			cfg.LogoURL = *req.LogoURL
		}
		if req.Data != nil {
			cfg.Data = req.Data
		}

		if err := db.Save(&cfg).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update marketplace configuration")
			return
		}

		invalidateCommunityDomain(db, id)
		utils.OKResponse(c, "Marketplace configuration updated successfully", cfg)
	}
}

// sectionDocumentUpdate is the shared flow for the landing page, topbar and
// footer documents: load the singleton, replace its data with the normalized
// form of the submitted document, save.
type sectionDocumentRequest struct {
	Data     datatypes.JSON `json:"data" binding:"required"`
	MetaData datatypes.JSON `json:"meta_data"`
}

func handleGetLandingPage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var page models.LandingPage
		if err := db.Where("community_id = ?", id).First(&page).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Landing page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch landing page")
			}
			return
		}
		utils.OKResponse(c, "Landing page retrieved successfully", page)
	}
}

func handleUpdateLandingPage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var page models.LandingPage
		if err := db.Where("community_id = ?", id).First(&page).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Landing page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch landing page")
			}
			return
		}

		var req sectionDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		page.Data = models.NormalizeDocument(req.Data)
		if req.MetaData != nil {
			page.MetaData = req.MetaData
		}

		if err := db.Save(&page).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update landing page")
			return
		}

		invalidateCommunityDomain(db, id)
		utils.OKResponse(c, "Landing page updated successfully", page)
	}
}

func handleGetTopbar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var topbar models.Topbar
		if err := db.Where("community_id = ?", id).First(&topbar).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Topbar not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch topbar")
			}
			return
		}
		utils.OKResponse(c, "Topbar retrieved successfully", topbar)
	}
}

func handleUpdateTopbar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var topbar models.Topbar
		if err := db.Where("community_id = ?", id).First(&topbar).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Topbar not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch topbar")
			}
			return
		}

		var req sectionDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		topbar.Data = models.NormalizeDocument(req.Data)
		if err := db.Save(&topbar).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update topbar")
			return
		}

		invalidateCommunityDomain(db, id)
		utils.OKResponse(c, "Topbar updated successfully", topbar)
	}
}

func handleGetFooter(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var footer models.Footer
		if err := db.Where("community_id = ?", id).First(&footer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Footer not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch footer")
			}
			return
		}
		utils.OKResponse(c, "Footer retrieved successfully", footer)
	}
}

func handleUpdateFooter(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var footer models.Footer
		if err := db.Where("community_id = ?", id).First(&footer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Footer not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch footer")
			}
			return
		}

		var req sectionDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		footer.Data = models.NormalizeDocument(req.Data)
		if err := db.Save(&footer).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update footer")
			return
		}

		invalidateCommunityDomain(db, id)
		utils.OKResponse(c, "Footer updated successfully", footer)
	}
}

// invalidateCommunityDomain drops the cached by-domain lookup after a
// configuration change so the public site sees fresh documents.
func invalidateCommunityDomain(db *gorm.DB, communityID uint) {
	var community models.Community
	if err := db.First(&community, communityID).Error; err != nil {
		return
	}
	utils.InvalidateCommunityCache(community.Domain)
}
