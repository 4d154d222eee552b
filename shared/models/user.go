package models

import (
	"time"
)

// User is a platform account. Community membership is a weak reference: the
// foreign key is nullable and users survive community deletion.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	Email             string    `json:"email" gorm:"uniqueIndex;not null"`
	EncryptedPassword string    `json:"-" gorm:"not null"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Locale            string    `json:"locale" gorm:"default:'en'"`
	CommunityID       *uint     `json:"community_id" gorm:"index"`
	Admin             bool      `json:"admin" gorm:"default:false"`
	Revoked           bool      `json:"-" gorm:"default:false"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`

	Community *Community `json:"community,omitempty" gorm:"foreignKey:CommunityID"`
}

func (User) TableName() string {
	return "users"
}

// CanManageCommunity reports whether the user may mutate resources owned by
// the given community.
func (u *User) CanManageCommunity(communityID uint) bool {
	if u.Admin {
		return true
	}
	return u.CommunityID != nil && *u.CommunityID == communityID
}

// DenylistedToken records an explicitly invalidated token jti. Rows past
// their expiry are harmless and can be purged lazily.
type DenylistedToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JTI       string    `json:"jti" gorm:"uniqueIndex;not null"`
	Exp       time.Time `json:"exp" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (DenylistedToken) TableName() string {
	return "jwt_denylist"
}

// Identity is the authenticated principal exposed to handlers after the auth
// gate has accepted a request.
type Identity struct {
	UserID      uint   `json:"user_id"`
	Email       string `json:"email"`
	CommunityID *uint  `json:"community_id,omitempty"`
	Admin       bool   `json:"admin"`
}

// IdentityFor builds the downstream identity for a resolved user.
func IdentityFor(u *User) *Identity {
	return &Identity{
		UserID:      u.ID,
		Email:       u.Email,
		CommunityID: u.CommunityID,
		Admin:       u.Admin,
	}
}
