// Package resolve walks the authorial chains (Item→Collection→User,
// Comment→Item→Collection→User) and drops records whose chain is broken.
// Orphaned references are the system's accepted consistency model: they make
// a record invisible, they never fail a request.
package resolve

import (
	"errors"

	"gorm.io/gorm"

	"collecthub-backend/internal/models"
)

// Lookups are the single-record fetches the resolver is built on. Each
// returns (nil, nil) when the reference does not resolve.
type Lookups struct {
	CollectionByID func(id uint) (*models.Collection, error)
	UserByID       func(id uint) (*models.User, error)
	ItemByID       func(id uint) (*models.Item, error)
	TagsByIDs      func(ids []uint) ([]models.Tag, error)
}

type Resolver struct {
	l Lookups
}

func New(l Lookups) *Resolver {
	return &Resolver{l: l}
}

// NewGorm wires the resolver to the database, normalizing "record not found"
// to an absent reference.
func NewGorm(db *gorm.DB) *Resolver {
	return New(Lookups{
		CollectionByID: func(id uint) (*models.Collection, error) {
			var c models.Collection
			if err := db.First(&c, id).Error; err != nil {
				return nil, ignoreNotFound(err)
			}
			return &c, nil
		},
		UserByID: func(id uint) (*models.User, error) {
			var u models.User
			if err := db.First(&u, id).Error; err != nil {
				return nil, ignoreNotFound(err)
			}
			return &u, nil
		},
		ItemByID: func(id uint) (*models.Item, error) {
			var it models.Item
			if err := db.First(&it, id).Error; err != nil {
				return nil, ignoreNotFound(err)
			}
			return &it, nil
		},
		TagsByIDs: func(ids []uint) ([]models.Tag, error) {
			if len(ids) == 0 {
				return nil, nil
			}
			var tags []models.Tag
			if err := db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
				return nil, err
			}
			return tags, nil
		},
	})
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// ResolvedItem is an item with its authorial chain attached.
type ResolvedItem struct {
	models.Item
	Collection models.Collection `json:"collection"`
	Author     models.User       `json:"author"`
}

// ResolvedComment is a comment with the full chain up to the collection
// owner attached.
type ResolvedComment struct {
	models.Comment
	Item       models.Item       `json:"itemRecord"`
	Collection models.Collection `json:"collection"`
	Author     models.User       `json:"author"`
}

// Item resolves one item's chain. A false return means the chain is broken
// and the caller must treat the item as not found.
func (r *Resolver) Item(it models.Item) (*ResolvedItem, bool) {
	coll, err := r.l.CollectionByID(it.CollectionId)
	if err != nil || coll == nil {
		return nil, false
	}
	author, err := r.l.UserByID(coll.AuthorId)
	if err != nil || author == nil {
		return nil, false
	}
	return &ResolvedItem{Item: it, Collection: *coll, Author: *author}, true
}

// Items resolves a listing, omitting items whose chain is broken.
func (r *Resolver) Items(items []models.Item) []ResolvedItem {
	out := make([]ResolvedItem, 0, len(items))
	for _, it := range items {
		if resolved, ok := r.Item(it); ok {
			out = append(out, *resolved)
		}
	}
	return out
}

// Comment resolves one comment's chain through item, collection and owner.
func (r *Resolver) Comment(c models.Comment) (*ResolvedComment, bool) {
	it, err := r.l.ItemByID(c.ItemId)
	if err != nil || it == nil {
		return nil, false
	}
	coll, err := r.l.CollectionByID(it.CollectionId)
	if err != nil || coll == nil {
		return nil, false
	}
	owner, err := r.l.UserByID(coll.AuthorId)
	if err != nil || owner == nil {
		return nil, false
	}
	return &ResolvedComment{Comment: c, Item: *it, Collection: *coll, Author: *owner}, true
}

// Comments resolves a listing of comments, omitting broken chains.
func (r *Resolver) Comments(comments []models.Comment) []ResolvedComment {
	out := make([]ResolvedComment, 0, len(comments))
	for _, c := range comments {
		if resolved, ok := r.Comment(c); ok {
			out = append(out, *resolved)
		}
	}
	return out
}

// User resolves a single user reference.
func (r *Resolver) User(id uint) (*models.User, bool) {
	u, err := r.l.UserByID(id)
	if err != nil || u == nil {
		return nil, false
	}
	return u, true
}

// Tags is the additive tag resolution: unresolvable references are omitted
// from the returned list.
func (r *Resolver) Tags(ids []uint) []models.Tag {
	tags, err := r.l.TagsByIDs(ids)
	if err != nil || tags == nil {
		return []models.Tag{}
	}
	return tags
}
