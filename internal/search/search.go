// Package search runs the ranked full-text search over collections, items
// and comments and joins every hit back to its authorial chain. The three
// result sets are concatenated (collections, then comments, then items);
// relevance is never merged across kinds.
package search

import (
	"gorm.io/gorm"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/resolve"
)

type ScoredCollection struct {
	models.Collection `gorm:"embedded"`
	Score             float64 `gorm:"column:score"`
}

type ScoredItem struct {
	models.Item `gorm:"embedded"`
	Score       float64 `gorm:"column:score"`
}

type ScoredComment struct {
	models.Comment `gorm:"embedded"`
	Score          float64 `gorm:"column:score"`
}

// Sources are the three independent relevance searches plus the one extra
// lookup a collection hit needs (a collection with no items is not shown).
type Sources struct {
	Collections func(phrase string) ([]ScoredCollection, error)
	Items       func(phrase string) ([]ScoredItem, error)
	Comments    func(phrase string) ([]ScoredComment, error)
	HasItems    func(collectionID uint) (bool, error)
}

// Hit is one search result tagged with its origin kind and relevance score.
// Exactly one of Collection/Comment/Item is set, matching ResultFrom.
type Hit struct {
	ResultFrom string                   `json:"resultFrom"`
	TextScore  float64                  `json:"textScore"`
	Author     models.User              `json:"author"`
	Collection *models.Collection       `json:"collection,omitempty"`
	Comment    *resolve.ResolvedComment `json:"comment,omitempty"`
	Item       *resolve.ResolvedItem    `json:"item,omitempty"`
}

type Aggregator struct {
	src Sources
	res *resolve.Resolver
}

func New(src Sources, res *resolve.Resolver) *Aggregator {
	return &Aggregator{src: src, res: res}
}

// Search returns the concatenated hits. Hits whose chain is broken are
// dropped, never surfaced as errors.
func (a *Aggregator) Search(phrase string) ([]Hit, error) {
	hits := []Hit{}

	collections, err := a.src.Collections(phrase)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if ok, err := a.src.HasItems(c.Id); err != nil || !ok {
			continue
		}
		author, ok := a.res.User(c.AuthorId)
		if !ok {
			continue
		}
		coll := c.Collection
		hits = append(hits, Hit{
			ResultFrom: "collection",
			TextScore:  c.Score,
			Author:     *author,
			Collection: &coll,
		})
	}

	comments, err := a.src.Comments(phrase)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		resolved, ok := a.res.Comment(c.Comment)
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			ResultFrom: "comment",
			TextScore:  c.Score,
			Author:     resolved.Author,
			Comment:    resolved,
		})
	}

	items, err := a.src.Items(phrase)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		resolved, ok := a.res.Item(it.Item)
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			ResultFrom: "item",
			TextScore:  it.Score,
			Author:     resolved.Author,
			Item:       resolved,
		})
	}

	return hits, nil
}

const (
	collectionVector = `to_tsvector('simple', coalesce(name,'') || ' ' || coalesce(description,''))`
	itemVector       = `to_tsvector('simple', coalesce(name,'') || ' ' || coalesce(attrs::text,''))`
	commentVector    = `to_tsvector('simple', coalesce(text,''))`
)

// NewGorm wires the aggregator to the Postgres text indexes created by the
// repository migration.
func NewGorm(db *gorm.DB, res *resolve.Resolver) *Aggregator {
	return New(Sources{
		Collections: func(phrase string) ([]ScoredCollection, error) {
			var rows []ScoredCollection
			err := db.Raw(
				`SELECT *, ts_rank(`+collectionVector+`, plainto_tsquery('simple', ?)) AS score
				 FROM collections
				 WHERE `+collectionVector+` @@ plainto_tsquery('simple', ?)
				 ORDER BY score DESC`,
				phrase, phrase,
			).Scan(&rows).Error
			return rows, err
		},
		Items: func(phrase string) ([]ScoredItem, error) {
			var rows []ScoredItem
			err := db.Raw(
				`SELECT *, ts_rank(`+itemVector+`, plainto_tsquery('simple', ?)) AS score
				 FROM items
				 WHERE `+itemVector+` @@ plainto_tsquery('simple', ?)
				 ORDER BY score DESC`,
				phrase, phrase,
			).Scan(&rows).Error
			return rows, err
		},
		Comments: func(phrase string) ([]ScoredComment, error) {
			var rows []ScoredComment
			err := db.Raw(
				`SELECT *, ts_rank(`+commentVector+`, plainto_tsquery('simple', ?)) AS score
				 FROM comments
				 WHERE `+commentVector+` @@ plainto_tsquery('simple', ?)
				 ORDER BY score DESC`,
				phrase, phrase,
			).Scan(&rows).Error
			return rows, err
		},
		HasItems: func(collectionID uint) (bool, error) {
			var count int64
			err := db.Model(&models.Item{}).Where("collection_id = ?", collectionID).Limit(1).Count(&count).Error
			return count > 0, err
		},
	}, res)
}
