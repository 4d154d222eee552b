package main

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/utils"
)

// CreatePageRequest represents the create content page request
type CreatePageRequest struct {
	Title    string         `json:"title" binding:"required"`
	EndPoint string         `json:"end_point" binding:"required"`
	Data     datatypes.JSON `json:"data"`
	MetaData datatypes.JSON `json:"meta_data"`
	IsActive *bool          `json:"is_active"`
}

// UpdatePageRequest represents the update content page request. Data is a
// whole-document replacement: reordering sections means resubmitting the full
// array in the new order.
type UpdatePageRequest struct {
	Title    *string        `json:"title"`
	EndPoint *string        `json:"end_point"`
	Data     datatypes.JSON `json:"data"`
	MetaData datatypes.JSON `json:"meta_data"`
	IsActive *bool          `json:"is_active"`
}

func communityIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid community id")
		return 0, false
	}
	return uint(id), true
}

// handleGetActivePages is the public listing of a community's active pages.
func handleGetActivePages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var pages []models.ContentPage
		if err := db.Where("community_id = ? AND is_active = ?", id, true).Find(&pages).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch content pages")
			return
		}
		utils.OKResponse(c, "Content pages retrieved successfully", pages)
	}
}

// handleGetActivePageByEndpoint resolves one active page by its route path.
func handleGetActivePageByEndpoint(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		endPoint := c.Query("end_point")
		if endPoint == "" {
			utils.BadRequestResponse(c, "end_point query parameter is required")
			return
		}

		var page models.ContentPage
		err := db.Where("community_id = ? AND end_point = ? AND is_active = ?", id, endPoint, true).
			First(&page).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Content page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch content page")
			}
			return
		}
		utils.OKResponse(c, "Content page retrieved successfully", page)
	}
}

// handleGetPages lists every page of the community, active or not.
func handleGetPages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var pages []models.ContentPage
		if err := db.Where("community_id = ?", id).Order("id").Find(&pages).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch content pages")
			return
		}
		utils.OKResponse(c, "Content pages retrieved successfully", pages)
	}
}

func handleGetPage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var page models.ContentPage
		err := db.Where("id = ? AND community_id = ?", c.Param("page_id"), id).First(&page).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Content page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch content page")
			}
			return
		}
		utils.OKResponse(c, "Content page retrieved successfully", page)
	}
}

func handleCreatePage(db *gorm.DB, producer *KafkaProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}

		var req CreatePageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		var existing models.ContentPage
		if err := db.Where("community_id = ? AND end_point = ?", id, req.EndPoint).First(&existing).Error; err == nil {
			utils.ValidationFailedResponse(c, map[string][]string{
				"end_point": {"has already been taken"},
			})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}
		metaData := req.MetaData
		if metaData == nil {
			metaData = datatypes.JSON([]byte(`{}`))
		}

		page := models.ContentPage{
			CommunityID: id,
			Title:       req.Title,
			EndPoint:    req.EndPoint,
			Data:        models.NormalizeDocument(req.Data),
			MetaData:    metaData,
			IsActive:    isActive,
		}
		if err := db.Create(&page).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to create content page")
			return
		}

		publishPageEvent(db, producer, &page, "page.created")
		utils.CreatedResponse(c, "Content page created successfully", page)
	}
}

func handleUpdatePage(db *gorm.DB, producer *KafkaProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var page models.ContentPage
		err := db.Where("id = ? AND community_id = ?", c.Param("page_id"), id).First(&page).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Content page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch content page")
			}
			return
		}

		var req UpdatePageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Title != nil {
			page.Title = *req.Title
		}
		if req.EndPoint != nil {
			var existing models.ContentPage
			if err := db.Where("community_id = ? AND end_point = ? AND id != ?", id, *req.EndPoint, page.ID).
				First(&existing).Error; err == nil {
				utils.ValidationFailedResponse(c, map[string][]string{
					"end_point": {"has already been taken"},
				})
				return
			}
			page.EndPoint = *req.EndPoint
		}
		if req.Data != nil {
			page.Data = models.NormalizeDocument(req.Data)
		}
		if req.MetaData != nil {
			page.MetaData = req.MetaData
		}
		if req.IsActive != nil {
			page.IsActive = *req.IsActive
		}

		if err := db.Save(&page).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to update content page")
			return
		}

		publishPageEvent(db, producer, &page, "page.updated")
		utils.OKResponse(c, "Content page updated successfully", page)
	}
}

func handleDeletePage(db *gorm.DB, producer *KafkaProducer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := communityIDParam(c)
		if !ok {
			return
		}
		var page models.ContentPage
		err := db.Where("id = ? AND community_id = ?", c.Param("page_id"), id).First(&page).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Content page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch content page")
			}
			return
		}

		if err := db.Delete(&page).Error; err != nil {
			utils.InternalServerErrorResponse(c, "Failed to delete content page")
			return
		}

		publishPageEvent(db, producer, &page, "page.deleted")
		utils.OKResponse(c, "Content page deleted successfully", nil)
	}
}

// publishPageEvent queues a page-change event for the sync pipeline. Failures
// are non-fatal: the write already happened, the event only speeds up
// frontend revalidation.
func publishPageEvent(db *gorm.DB, producer *KafkaProducer, page *models.ContentPage, eventType string) {
	var community models.Community
	if err := db.First(&community, page.CommunityID).Error; err != nil {
		return
	}

	event := PageEvent{
		ID:             uuid.NewString(),
		CommunityID:    page.CommunityID,
		CommunityIdent: community.Ident,
		Domain:         community.Domain,
		PageID:         page.ID,
		EndPoint:       page.EndPoint,
		EventType:      eventType,
		Timestamp:      time.Now(),
	}
	_ = producer.SendPageEvent(event)
}
