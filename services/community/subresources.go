package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

// Contacts and translations are plain owned collections. Lookups always
// filter by both the record id and the community id from the path, so a
// record belonging to another tenant reads as not found.

// CreateContactRequest represents a contact submission
type CreateContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func handleGetContacts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var contacts []models.Contact
		if err := db.Where("community_id = ?", id).Order("created_at DESC").Find(&contacts).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch contacts")
			return
		}
		utils.OKResponse(c, "Contacts retrieved successfully", contacts)
	}
}

func handleCreateContact(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}

		var req CreateContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ValidationFailedResponse(c, map[string][]string{
				"email": {"is required and must be a valid address"},
			})
			return
		}

		contact := models.Contact{
			CommunityID: id,
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Message:     req.Message,
		}
		if err := db.Create(&contact).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create contact")
			return
		}
		utils.CreatedResponse(c, "Contact created successfully", contact)
	}
}

func handleDeleteContact(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var contact models.Contact
		err := db.Where("id = ? AND community_id = ?", c.Param("contact_id"), id).First(&contact).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Contact not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch contact")
			}
			return
		}
		if err := db.Delete(&contact).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete contact")
			return
		}
		utils.OKResponse(c, "Contact deleted successfully", nil)
	}
}

// TranslationRequest carries a locale's translation map.
type TranslationRequest struct {
	Locale string         `json:"locale" binding:"required"`
	Data   datatypes.JSON `json:"data" binding:"required"`
}

func handleGetTranslations(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var translations []models.Translation
		if err := db.Where("community_id = ?", id).Find(&translations).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch translations")
			return
		}
		utils.OKResponse(c, "Translations retrieved successfully", translations)
	}
}

func handleCreateTranslation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}

		var req TranslationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var existing models.Translation
		if err := db.Where("community_id = ? AND locale = ?", id, req.Locale).First(&existing).Error; err == nil {
			utils.ValidationFailedResponse(c, map[string][]string{
				"locale": {"has already been taken"},
			})
			return
		}

		translation := models.Translation{
			CommunityID: id,
			Locale:      req.Locale,
			Data:        req.Data,
		}
		if err := db.Create(&translation).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create translation")
			return
		}
		utils.CreatedResponse(c, "Translation created successfully", translation)
	}
}

func handleUpdateTranslation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var translation models.Translation
		err := db.Where("id = ? AND community_id = ?", c.Param("translation_id"), id).First(&translation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Translation not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch translation")
			}
			return
		}

		var req struct {
			Data datatypes.JSON `json:"data" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		translation.Data = req.Data
		if err := db.Save(&translation).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update translation")
			return
		}
		utils.OKResponse(c, "Translation updated successfully", translation)
	}
}

func handleDeleteTranslation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var translation models.Translation
		err := db.Where("id = ? AND community_id = ?", c.Param("translation_id"), id).First(&translation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Translation not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch translation")
			}
			return
		}
		if err := db.Delete(&translation).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete translation")
			return
		}
		utils.OKResponse(c, "Translation deleted successfully", nil)
	}
}
