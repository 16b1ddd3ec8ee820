package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"collecthub-backend/internal/models"
)

func activeUser(id uint) *models.User {
	return &models.User{Id: id, Status: true}
}

func adminUser(id uint) *models.User {
	return &models.User{Id: id, Status: true, IsAdmin: true}
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want Tier
	}{
		{"nil user", nil, TierGuest},
		{"blocked user", &models.User{Id: 1, Status: false}, TierGuest},
		{"blocked admin", &models.User{Id: 1, Status: false, IsAdmin: true}, TierGuest},
		{"active user", activeUser(1), TierNormal},
		{"active admin", adminUser(1), TierAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierOf(tt.user))
		})
	}
}

func TestCanWriteResource(t *testing.T) {
	assert.True(t, CanWriteResource(activeUser(7), 7), "owner may write")
	assert.True(t, CanWriteResource(adminUser(2), 7), "admin may write anything")
	assert.False(t, CanWriteResource(activeUser(3), 7), "non-owner denied")
	assert.False(t, CanWriteResource(nil, 7), "guest denied")
	assert.False(t, CanWriteResource(&models.User{Id: 7, Status: false}, 7), "blocked owner denied")
}

func TestDenialTiers(t *testing.T) {
	// The user-facing contract: a denied non-owner reports "normal", an
	// unauthenticated actor reports "guest".
	nonOwner := activeUser(3)
	assert.False(t, CanWriteResource(nonOwner, 7))
	assert.Equal(t, TierNormal, TierOf(nonOwner))

	assert.False(t, CanWriteResource(nil, 7))
	assert.Equal(t, TierGuest, TierOf(nil))
}

func TestCanCreateCollection(t *testing.T) {
	assert.True(t, CanCreateCollection(activeUser(5), 5, false), "self-authored")
	assert.False(t, CanCreateCollection(activeUser(5), 6, true), "normal user cannot declare another author")
	assert.True(t, CanCreateCollection(adminUser(1), 6, true), "admin for an existing user")
	assert.False(t, CanCreateCollection(adminUser(1), 6, false), "admin for a missing user")
	assert.False(t, CanCreateCollection(nil, 6, true))
}

func TestCanDeleteComment(t *testing.T) {
	assert.True(t, CanDeleteComment(activeUser(4), 4, 9), "comment author")
	assert.True(t, CanDeleteComment(activeUser(9), 4, 9), "item owner")
	assert.True(t, CanDeleteComment(adminUser(1), 4, 9), "admin")
	assert.False(t, CanDeleteComment(activeUser(5), 4, 9), "unrelated user")
	assert.False(t, CanDeleteComment(nil, 4, 9))
}

func TestIsActiveAdmin(t *testing.T) {
	assert.True(t, IsActiveAdmin(adminUser(1)))
	assert.False(t, IsActiveAdmin(activeUser(1)))
	assert.False(t, IsActiveAdmin(&models.User{Id: 1, IsAdmin: true, Status: false}))
	assert.False(t, IsActiveAdmin(nil))
}
