package main

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/models"
	"github.com/communityos/community-platform/shared/tenancy"
	"github.com/communityos/community-platform/shared/utils"
)

// loadBranding fetches the community's marketplace configuration; rendering
// still works with zero-value branding when none exists yet.
func loadBranding(db *gorm.DB, community *models.Community) Branding {
	branding := Branding{Name: community.Ident, Locale: community.Locale}

	var cfg models.MarketplaceConfiguration
	if err := db.Where("community_id = ?", community.ID).First(&cfg).Error; err == nil {
		if cfg.Name != "" {
			branding.Name = cfg.Name
		}
		branding.LogoURL = cfg.LogoURL
	}
	return branding
}

// chromeHTML renders the community's topbar and footer documents.
func chromeHTML(db *gorm.DB, community *models.Community, branding Branding) (template.HTML, template.HTML) {
	var topbarHTML, footerHTML template.HTML

	var topbar models.Topbar
	if err := db.Where("community_id = ?", community.ID).First(&topbar).Error; err == nil {
		topbarHTML = template.HTML(RenderSections(models.DocumentSections(topbar.Data), branding))
	}
	var footer models.Footer
	if err := db.Where("community_id = ?", community.ID).First(&footer).Error; err == nil {
		footerHTML = template.HTML(RenderSections(models.DocumentSections(footer.Data), branding))
	}
	return topbarHTML, footerHTML
}

func metaFromDocument(data []byte, fallbackTitle string) (string, string) {
	var meta models.PageMeta
	if len(data) > 0 {
		_ = json.Unmarshal(data, &meta)
	}
	if meta.Title == "" {
		meta.Title = fallbackTitle
	}
	return meta.Title, meta.Description
}

// handleRenderLandingPage renders a community's landing page for a domain.
func handleRenderLandingPage(db *gorm.DB) gin.HandlerFunc {
	finder := tenancy.GormFinder{DB: db}
	return func(c *gin.Context) {
		domain := c.Query("domain")
		if domain == "" {
			utils.BadRequestResponse(c, "domain query parameter is required")
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

		var landing models.LandingPage
		if err := db.Where("community_id = ?", community.ID).First(&landing).Error; err != nil {
			utils.NotFoundResponse(c, "Landing page not found")
			return
		}

		branding := loadBranding(db, community)
		topbarHTML, footerHTML := chromeHTML(db, community, branding)
		title, description := metaFromDocument(landing.MetaData, branding.Name)

		body := RenderSections(models.DocumentSections(landing.Data), branding)
		html, err := RenderPage(PageView{
			Lang:        community.Locale,
			Title:       title,
			Description: description,
			Topbar:      topbarHTML,
			Body:        template.HTML(body),
			Footer:      footerHTML,
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to render page")
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}

// handleRenderContentPage renders one active content page by domain and
// end_point.
func handleRenderContentPage(db *gorm.DB) gin.HandlerFunc {
	finder := tenancy.GormFinder{DB: db}
	return func(c *gin.Context) {
		domain := c.Query("domain")
		endPoint := c.Query("end_point")
		if domain == "" || endPoint == "" {
			utils.BadRequestResponse(c, "domain and end_point query parameters are required")
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

		var page models.ContentPage
		err = db.Where("community_id = ? AND end_point = ? AND is_active = ?", community.ID, endPoint, true).
			First(&page).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Content page not found")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to fetch content page")
			}
			return
		}

		branding := loadBranding(db, community)
		topbarHTML, footerHTML := chromeHTML(db, community, branding)
		title, description := metaFromDocument(page.MetaData, page.Title)

		body := RenderSections(models.DocumentSections(page.Data), branding)
		html, err := RenderPage(PageView{
			Lang:        community.Locale,
			Title:       title,
			Description: description,
			Topbar:      topbarHTML,
			Body:        template.HTML(body),
			Footer:      footerHTML,
		})
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to render page")
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}
