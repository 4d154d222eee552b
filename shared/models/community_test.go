package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveIdent(t *testing.T) {
	cases := []struct {
		domain string
		want   string
	}{
		{"acme.example.com", "acme_example_com"},
		{"ACME.Example.COM", "acme_example_com"},
		{"my-community.io", "my_community_io"},
		{"plain", "plain"},
		{"v2.shop", "v2_shop"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DeriveIdent(tc.domain), "domain %q", tc.domain)
	}
}

func TestCanManageCommunity(t *testing.T) {
	communityID := uint(7)

	member := &User{CommunityID: &communityID}
	assert.True(t, member.CanManageCommunity(7))
	assert.False(t, member.CanManageCommunity(8))

	orphan := &User{}
	assert.False(t, orphan.CanManageCommunity(7))

	admin := &User{Admin: true}
	assert.True(t, admin.CanManageCommunity(7))
	assert.True(t, admin.CanManageCommunity(8))
}

func TestIdentityFor(t *testing.T) {
	communityID := uint(3)
	user := &User{
		ID:          42,
		Email:       "owner@acme.example.com",
		CommunityID: &communityID,
		Admin:       false,
	}

	identity := IdentityFor(user)
	assert.Equal(t, uint(42), identity.UserID)
	assert.Equal(t, "owner@acme.example.com", identity.Email)
	assert.Equal(t, uint(3), *identity.CommunityID)
	assert.False(t, identity.Admin)
}
