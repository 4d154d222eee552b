package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Community is a tenant: an isolated customer account identified by a unique
// domain and ident. Disabled communities stay in the database but never
// resolve publicly.
type Community struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UUID      string `json:"uuid" gorm:"type:uuid;uniqueIndex"`
	Ident     string `json:"ident" gorm:"uniqueIndex;not null"`
	Domain    string `json:"domain" gorm:"uniqueIndex;not null"`
	UseDomain bool   `json:"use_domain" gorm:"default:false"`
	IsEnabled bool   `json:"is_enabled" gorm:"default:true"`
	Locale    string `json:"locale" gorm:"default:'en'"`
	Currency  string `json:"currency" gorm:"default:'USD'"`
	Country   string `json:"country"`
	PersonID  string `json:"person_id" gorm:"uniqueIndex"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Owned sub-resources, removed together with the community.
	MarketplaceConfiguration *MarketplaceConfiguration `json:"marketplace_configuration,omitempty" gorm:"foreignKey:CommunityID"`
	LandingPage              *LandingPage              `json:"landing_page,omitempty" gorm:"foreignKey:CommunityID"`
	Topbar                   *Topbar                   `json:"topbar,omitempty" gorm:"foreignKey:CommunityID"`
	Footer                   *Footer                   `json:"footer,omitempty" gorm:"foreignKey:CommunityID"`
	ContentPages             []ContentPage             `json:"content_pages,omitempty" gorm:"foreignKey:CommunityID"`
	Contacts                 []Contact                 `json:"contacts,omitempty" gorm:"foreignKey:CommunityID"`
	Translations             []Translation             `json:"translations,omitempty" gorm:"foreignKey:CommunityID"`
	Users                    []User                    `json:"users,omitempty" gorm:"foreignKey:CommunityID"`
}

func (Community) TableName() string {
	return "communities"
}

// BeforeCreate fills generated identity fields: a fresh uuid and an ident
// derived from the domain when none was given.
func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	if c.Ident == "" {
		c.Ident = DeriveIdent(c.Domain)
	}
	return nil
}

// DeriveIdent turns a domain into an identifier-safe slug: lowercased, every
// non-alphanumeric byte replaced with '_'.
func DeriveIdent(domain string) string {
	out := make([]byte, len(domain))
	for i := 0; i < len(domain); i++ {
		ch := domain[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			out[i] = ch
		case ch >= 'A' && ch <= 'Z':
			out[i] = ch + ('a' - 'A')
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// MarketplaceConfiguration is the per-community branding configuration passed
// to every section renderer.
type MarketplaceConfiguration struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CommunityID uint           `json:"community_id" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name"`
	LogoURL     string         `json:"logo_url"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (MarketplaceConfiguration) TableName() string {
	return "marketplace_configurations"
}

// LandingPage is the one-per-community section document for the landing page.
type LandingPage struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CommunityID uint           `json:"community_id" gorm:"uniqueIndex;not null"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb;default:'{\"sections\":[]}'"`
	MetaData    datatypes.JSON `json:"meta_data" gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (LandingPage) TableName() string {
	return "landing_pages"
}

// Topbar is the one-per-community navigation configuration.
type Topbar struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CommunityID uint           `json:"community_id" gorm:"uniqueIndex;not null"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb;default:'{\"sections\":[]}'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Topbar) TableName() string {
	return "topbars"
}

// Footer is the one-per-community footer configuration.
type Footer struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CommunityID uint           `json:"community_id" gorm:"uniqueIndex;not null"`
	Data        datatypes.JSON `json:"data" gorm:"type:jsonb;default:'{\"sections\":[]}'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Footer) TableName() string {
	return "footers"
}
