// Package policy holds the authorization decisions shared by every handler.
// Decisions are pure functions over the acting user; denials always come with
// the actor's resolved tier so responses can report it.
package policy

import "collecthub-backend/internal/models"

type Tier string

const (
	TierGuest  Tier = "guest"
	TierNormal Tier = "normal"
	TierAdmin  Tier = "admin"
)

// TierOf resolves the actor's tier. A missing or blocked user is a guest.
func TierOf(u *models.User) Tier {
	if u == nil || !u.Status {
		return TierGuest
	}
	if u.IsAdmin {
		return TierAdmin
	}
	return TierNormal
}

// IsActive reports whether the actor is an authenticated, non-blocked user.
func IsActive(u *models.User) bool {
	return u != nil && u.Status
}

// IsActiveAdmin gates the admin-only endpoints (user management, topics).
func IsActiveAdmin(u *models.User) bool {
	return IsActive(u) && u.IsAdmin
}

// CanWriteResource decides update/delete on an owned resource: the owner or
// an admin may write, anyone else is denied.
func CanWriteResource(actor *models.User, ownerID uint) bool {
	if !IsActive(actor) {
		return false
	}
	return actor.IsAdmin || actor.Id == ownerID
}

// CanCreateCollection permits creating a collection for the declared author:
// the actor itself, or an admin on behalf of an existing user.
func CanCreateCollection(actor *models.User, declaredAuthor uint, authorExists bool) bool {
	if !IsActive(actor) {
		return false
	}
	if actor.Id == declaredAuthor {
		return true
	}
	return actor.IsAdmin && authorExists
}

// CanDeleteComment is the three-way comment permission: comment author,
// owner of the commented item's collection, or admin.
func CanDeleteComment(actor *models.User, commentUserID, itemOwnerID uint) bool {
	if !IsActive(actor) {
		return false
	}
	return actor.IsAdmin || actor.Id == commentUserID || actor.Id == itemOwnerID
}
