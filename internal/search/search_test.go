package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/resolve"
)

func testResolver() *resolve.Resolver {
	collections := map[uint]models.Collection{
		1: {Id: 1, Name: "vinyl", AuthorId: 10},
	}
	users := map[uint]models.User{
		10: {Id: 10, Nickname: "ana", Status: true},
	}
	items := map[uint]models.Item{
		100: {Id: 100, Name: "lp", CollectionId: 1},
	}
	return resolve.New(resolve.Lookups{
		CollectionByID: func(id uint) (*models.Collection, error) {
			if c, ok := collections[id]; ok {
				return &c, nil
			}
			return nil, nil
		},
		UserByID: func(id uint) (*models.User, error) {
			if u, ok := users[id]; ok {
				return &u, nil
			}
			return nil, nil
		},
		ItemByID: func(id uint) (*models.Item, error) {
			if it, ok := items[id]; ok {
				return &it, nil
			}
			return nil, nil
		},
		TagsByIDs: func(ids []uint) ([]models.Tag, error) { return nil, nil },
	})
}

func TestSearchOrderingAcrossKinds(t *testing.T) {
	// One hit of every kind: the output must come back collection, comment,
	// item regardless of the scores.
	agg := New(Sources{
		Collections: func(string) ([]ScoredCollection, error) {
			return []ScoredCollection{{Collection: models.Collection{Id: 1, Name: "vinyl", AuthorId: 10}, Score: 0.1}}, nil
		},
		Items: func(string) ([]ScoredItem, error) {
			return []ScoredItem{{Item: models.Item{Id: 100, Name: "lp", CollectionId: 1}, Score: 0.9}}, nil
		},
		Comments: func(string) ([]ScoredComment, error) {
			return []ScoredComment{{Comment: models.Comment{Id: 7, ItemId: 100, UserId: 10, Text: "vinyl rules"}, Score: 0.5}}, nil
		},
		HasItems: func(uint) (bool, error) { return true, nil },
	}, testResolver())

	hits, err := agg.Search("vinyl")
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "collection", hits[0].ResultFrom)
	assert.Equal(t, "comment", hits[1].ResultFrom)
	assert.Equal(t, "item", hits[2].ResultFrom)
	assert.Equal(t, 0.5, hits[1].TextScore)
	assert.Equal(t, "ana", hits[2].Author.Nickname)
}

func TestSearchDropsBrokenChains(t *testing.T) {
	agg := New(Sources{
		Collections: func(string) ([]ScoredCollection, error) {
			return []ScoredCollection{
				{Collection: models.Collection{Id: 2, Name: "ghost", AuthorId: 99}, Score: 1},
			}, nil
		},
		Items: func(string) ([]ScoredItem, error) {
			return []ScoredItem{
				{Item: models.Item{Id: 200, Name: "orphan", CollectionId: 77}, Score: 1},
			}, nil
		},
		Comments: func(string) ([]ScoredComment, error) {
			return []ScoredComment{
				{Comment: models.Comment{Id: 8, ItemId: 999, Text: "lost"}, Score: 1},
			}, nil
		},
		HasItems: func(uint) (bool, error) { return true, nil },
	}, testResolver())

	hits, err := agg.Search("anything")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchSkipsEmptyCollections(t *testing.T) {
	agg := New(Sources{
		Collections: func(string) ([]ScoredCollection, error) {
			return []ScoredCollection{{Collection: models.Collection{Id: 1, Name: "vinyl", AuthorId: 10}, Score: 1}}, nil
		},
		Items:    func(string) ([]ScoredItem, error) { return nil, nil },
		Comments: func(string) ([]ScoredComment, error) { return nil, nil },
		HasItems: func(uint) (bool, error) { return false, nil },
	}, testResolver())

	hits, err := agg.Search("vinyl")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
