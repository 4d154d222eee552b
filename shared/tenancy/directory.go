// Package tenancy resolves inbound domains to communities.
package tenancy

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/communityos/community-platform/shared/models"
)

// ErrCommunityNotFound is returned when no enabled community matches a domain
// or its www alternate.
var ErrCommunityNotFound = errors.New("community not found")

// CommunityFinder looks up an enabled community by exact domain. Lookups are
// case-sensitive; disabled communities must never be returned.
type CommunityFinder interface {
	EnabledByDomain(domain string) (*models.Community, error)
}

// GormFinder is the database-backed CommunityFinder.
type GormFinder struct {
	DB *gorm.DB
}

func (f GormFinder) EnabledByDomain(domain string) (*models.Community, error) {
	var community models.Community
	err := f.DB.Where("domain = ? AND is_enabled = ?", domain, true).First(&community).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// AlternateDomain computes the www variant tried on a miss: the prefix is
// stripped when present, prepended otherwise.
func AlternateDomain(domain string) string {
	if strings.HasPrefix(domain, "www.") {
		return strings.TrimPrefix(domain, "www.")
	}
	return "www." + domain
}

// ResolveCommunity maps a domain to its enabled community, retrying once with
// the www alternate. Returns ErrCommunityNotFound when neither form matches.
func ResolveCommunity(finder CommunityFinder, domain string) (*models.Community, error) {
	community, err := finder.EnabledByDomain(domain)
	if err == nil {
		return community, nil
	}
	if !errors.Is(err, ErrCommunityNotFound) {
		return nil, err
	}
	return finder.EnabledByDomain(AlternateDomain(domain))
}
