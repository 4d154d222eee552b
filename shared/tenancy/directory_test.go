package tenancy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityos/community-platform/shared/models"
)

// fakeFinder serves a fixed domain table and records lookups.
type fakeFinder struct {
	communities map[string]*models.Community
	err         error
	lookups     []string
}

func (f *fakeFinder) EnabledByDomain(domain string) (*models.Community, error) {
	f.lookups = append(f.lookups, domain)
	if f.err != nil {
		return nil, f.err
	}
	if c, ok := f.communities[domain]; ok {
		return c, nil
	}
	return nil, ErrCommunityNotFound
}

func TestAlternateDomain(t *testing.T) {
	assert.Equal(t, "acme.com", AlternateDomain("www.acme.com"))
	assert.Equal(t, "www.acme.com", AlternateDomain("acme.com"))
	assert.Equal(t, "www.www", AlternateDomain("www"))
}

func TestResolveCommunityExactMatch(t *testing.T) {
	finder := &fakeFinder{communities: map[string]*models.Community{
		"acme.com": {ID: 1, Domain: "acme.com"},
	}}

	community, err := ResolveCommunity(finder, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, uint(1), community.ID)
	assert.Equal(t, []string{"acme.com"}, finder.lookups, "no alternate lookup on a hit")
}

func TestResolveCommunityFallsBackToStrippedWWW(t *testing.T) {
	finder := &fakeFinder{communities: map[string]*models.Community{
		"acme.com": {ID: 1, Domain: "acme.com"},
	}}

	community, err := ResolveCommunity(finder, "www.acme.com")
	require.NoError(t, err)
	assert.Equal(t, uint(1), community.ID)
	assert.Equal(t, []string{"www.acme.com", "acme.com"}, finder.lookups)
}

func TestResolveCommunityFallsBackToPrefixedWWW(t *testing.T) {
	finder := &fakeFinder{communities: map[string]*models.Community{
		"www.acme.com": {ID: 2, Domain: "www.acme.com"},
	}}

	community, err := ResolveCommunity(finder, "acme.com")
	require.NoError(t, err)
	assert.Equal(t, uint(2), community.ID)
	assert.Equal(t, []string{"acme.com", "www.acme.com"}, finder.lookups)
}

func TestResolveCommunityNotFound(t *testing.T) {
	finder := &fakeFinder{communities: map[string]*models.Community{}}

	_, err := ResolveCommunity(finder, "ghost.example")
	assert.ErrorIs(t, err, ErrCommunityNotFound)
	assert.Equal(t, []string{"ghost.example", "www.ghost.example"}, finder.lookups)
}

func TestResolveCommunityPropagatesInfrastructureErrors(t *testing.T) {
	boom := errors.New("connection refused")
	finder := &fakeFinder{err: boom}

	_, err := ResolveCommunity(finder, "acme.com")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, finder.lookups, 1, "infrastructure errors must not trigger the alternate lookup")
}
