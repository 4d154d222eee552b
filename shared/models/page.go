package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentPage is an arbitrary per-community page: a section document reachable
// under its end_point. Only active pages are publicly resolvable.
type ContentPage struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CommunityID uint           `json:"community_id" gorm:"not null;index;uniqueIndex:idx_pages_community_endpoint"`
	Title       string         `json:"title" gorm:"not null"`
	EndPoint    string         `json:"end_point" gorm:"not null;uniqueIndex:idx_pages_community_endpoint"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb;default:'{\"sections\":[]}'"`
	MetaData    datatypes.JSON `json:"meta_data" gorm:"type:jsonb;default:'{}'"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Community *Community `json:"community,omitempty" gorm:"foreignKey:CommunityID"`
}

func (ContentPage) TableName() string {
	return "content_pages"
}

// PageMeta is the decoded shape of a page's meta_data column.
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// Contact is an inbound contact-form submission stored per community.
type Contact struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CommunityID uint      `json:"community_id" gorm:"not null;index"`
	Name        string    `json:"name"`
	Email       string    `json:"email" gorm:"not null"`
	Phone       string    `json:"phone"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// Translation holds one locale's translation map for a community.
type Translation struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CommunityID uint           `json:"community_id" gorm:"not null;index;uniqueIndex:idx_translations_community_locale"`
	Locale      string         `json:"locale" gorm:"not null;uniqueIndex:idx_translations_community_locale"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Translation) TableName() string {
	return "translations"
}
