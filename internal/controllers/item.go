package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"collecthub-backend/internal/filter"
	"collecthub-backend/internal/models"
	"collecthub-backend/internal/policy"
	"collecthub-backend/internal/repository"
)

func loadItem(c *fiber.Ctx, param string) (*models.Item, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(MessageResponse{Msg: "item does not exist"})
		return nil, false
	}
	var item models.Item
	if result := repository.DB.First(&item, uint(id)); result.Error != nil {
		c.JSON(MessageResponse{Msg: "item does not exist"})
		return nil, false
	}
	return &item, true
}

// upsertTags creates any missing tag rows and returns the full tag set.
// Creation is idempotent on the unique name index, so two concurrent
// submissions of the same new tag converge on one row.
func upsertTags(names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	uniques := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		uniques = append(uniques, name)
	}
	if len(uniques) == 0 {
		return nil, nil
	}

	for _, name := range uniques {
		tag := models.Tag{Name: name}
		if err := repository.DB.
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&tag).Error; err != nil {
			return nil, err
		}
	}

	var tags []models.Tag
	if err := repository.DB.Where("name IN ?", uniques).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func bodyTagNames(body map[string]interface{}) []string {
	raw, _ := body["itemTags"].([]interface{})
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// itemCrudDenied answers when the actor may not write items of the
// collection; the denial reports the actor's tier.
func itemCrudDenied(c *fiber.Ctx, user *models.User, coll *models.Collection) bool {
	if policy.CanWriteResource(user, coll.AuthorId) {
		return false
	}
	c.JSON(PermissionResponse{
		Type:       "item-creation-failed",
		Msg:        "only admins and collection owner can create items for this collection",
		Permission: policy.TierOf(user),
	})
	return true
}

// checkItemSubmission enforces the required name and the stale-schema rule:
// every currently declared field must be present in the submission.
func checkItemSubmission(c *fiber.Ctx, coll *models.Collection, body map[string]interface{}) bool {
	name, _ := body["itemName"].(string)
	if name == "" {
		c.JSON(MessageResponse{Type: "field-required", Msg: "item name field required"})
		return false
	}
	if missing := coll.ItemFields.MissingAttrs(body); len(missing) > 0 {
		c.JSON(MessageResponse{
			Type: "additional-fields-404",
			Msg:  "collection has been edited and new additional item fields have been added",
		})
		return false
	}
	return true
}

func CreateItem(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}
	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}
	if itemCrudDenied(c, user, coll) {
		return nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return err
	}
	if !checkItemSubmission(c, coll, body) {
		return nil
	}

	tags, err := upsertTags(bodyTagNames(body))
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not create tags"})
	}

	item := models.Item{
		Name:         body["itemName"].(string),
		CollectionId: coll.Id,
		Attrs:        datatypes.JSONMap(coll.ItemFields.PickAttrs(body)),
		Tags:         tags,
	}
	if err := repository.DB.Create(&item).Error; err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not create item"})
	}

	return c.JSON(fiber.Map{
		"type":   "item-creation-success",
		"msg":    "item created successfully",
		"itemId": item.Id,
	})
}

func UpdateItem(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}
	item, ok := loadItem(c, "itemId")
	if !ok {
		return nil
	}

	var coll models.Collection
	if result := repository.DB.First(&coll, item.CollectionId); result.Error != nil {
		return c.JSON(MessageResponse{Msg: "collection does not exist"})
	}
	if itemCrudDenied(c, user, &coll) {
		return nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return err
	}
	if !checkItemSubmission(c, &coll, body) {
		return nil
	}

	tags, err := upsertTags(bodyTagNames(body))
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not create tags"})
	}

	item.Name = body["itemName"].(string)
	item.Attrs = datatypes.JSONMap(coll.ItemFields.PickAttrs(body))
	if err := repository.DB.Save(item).Error; err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not update item"})
	}
	if err := repository.DB.Model(item).Association("Tags").Replace(tags); err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not update tags"})
	}

	return c.JSON(MessageResponse{Type: "success"})
}

// itemPurge is the two-step removal behind DeleteItems: resolve which of the
// submitted ids actually live in the authorized collection, then drop the tag
// links and rows for exactly that set. Ids outside the collection never reach
// the purge.
type itemPurge struct {
	ownedIDs func(ids []uint, collectionID uint) ([]uint, error)
	purge    func(ids []uint) error
}

func purgeItems(p itemPurge, ids []uint, collectionID uint) error {
	owned, err := p.ownedIDs(ids, collectionID)
	if err != nil || len(owned) == 0 {
		return err
	}
	return p.purge(owned)
}

var gormItemPurge = itemPurge{
	ownedIDs: func(ids []uint, collectionID uint) ([]uint, error) {
		var owned []uint
		err := repository.DB.Model(&models.Item{}).
			Where("id IN ? AND collection_id = ?", ids, collectionID).
			Pluck("id", &owned).Error
		return owned, err
	},
	purge: func(ids []uint) error {
		if err := repository.DB.Exec("DELETE FROM item_tags WHERE item_id IN ?", ids).Error; err != nil {
			return err
		}
		return repository.DB.Where("id IN ?", ids).Delete(&models.Item{}).Error
	},
}

// DeleteItems authorizes against the collection of the first id and removes
// only the ids inside that collection; foreign ids are silently ignored.
func DeleteItems(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	var data IdsRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}
	if len(data.Ids) == 0 {
		return c.JSON(MessageResponse{Msg: "item does not exist"})
	}

	var first models.Item
	if result := repository.DB.First(&first, data.Ids[0]); result.Error != nil {
		return c.JSON(MessageResponse{Msg: "item does not exist"})
	}
	var coll models.Collection
	if result := repository.DB.First(&coll, first.CollectionId); result.Error != nil {
		return c.JSON(MessageResponse{Msg: "collection does not exist"})
	}
	if itemCrudDenied(c, user, &coll) {
		return nil
	}

	if err := purgeItems(gormItemPurge, data.Ids, coll.Id); err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not delete items"})
	}

	return c.JSON(MessageResponse{Type: "success"})
}

func filteredItemsOfCollection(c *fiber.Ctx, coll *models.Collection) ([]models.Item, error) {
	var reqs []filter.Request
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &reqs); err != nil {
			return nil, err
		}
	}

	var items []models.Item
	if err := repository.DB.Where("collection_id = ?", coll.Id).Find(&items).Error; err != nil {
		return nil, err
	}

	pred := filter.Compile(coll.ItemFields, reqs)
	return filter.Matching(items, pred), nil
}

// GetItemsOfCollection runs the compiled filters and slices a fixed 20-item
// page out of the matches.
func GetItemsOfCollection(c *fiber.Ctx) error {
	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}

	matching, err := filteredItemsOfCollection(c, coll)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.Params("page"))
	return c.JSON(fiber.Map{
		"type":  "items-of-collection",
		"items": filter.Paginate(matching, page),
		"pages": filter.Pages(len(matching)),
	})
}

// GetFilteredItems is the unpaged variant used for export.
func GetFilteredItems(c *fiber.Ctx) error {
	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}

	matching, err := filteredItemsOfCollection(c, coll)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": matching})
}

func GetItem(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("itemId"), 10, 32)
	if err != nil || id == 0 {
		return c.JSON(MessageResponse{Type: "failed"})
	}

	var item models.Item
	if result := repository.DB.Preload("Tags").First(&item, uint(id)); result.Error != nil {
		return c.JSON(MessageResponse{Type: "failed"})
	}

	resolved, ok := Res.Item(item)
	if !ok {
		return c.JSON(MessageResponse{Type: "failed"})
	}

	return c.JSON(fiber.Map{"type": "item", "item": resolved})
}

func GetItemForEditing(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("itemId"), 10, 32)
	if err != nil || id == 0 {
		return c.JSON(fiber.Map{"item": nil})
	}

	var item models.Item
	if result := repository.DB.Preload("Tags").First(&item, uint(id)); result.Error != nil {
		return c.JSON(fiber.Map{"item": nil})
	}

	resolved, ok := Res.Item(item)
	if !ok {
		return c.JSON(fiber.Map{"item": nil})
	}

	var topicName string
	if resolved.Collection.TopicId != nil {
		var topic models.Topic
		if repository.DB.First(&topic, *resolved.Collection.TopicId).Error == nil {
			topicName = topic.Name
		}
	}

	tagNames := make([]string, 0, len(item.Tags))
	for _, t := range item.Tags {
		tagNames = append(tagNames, t.Name)
	}

	return c.JSON(fiber.Map{"item": fiber.Map{
		"id":           item.Id,
		"name":         item.Name,
		"collectionId": item.CollectionId,
		"attrs":        item.Attrs,
		"tags":         tagNames,
		"created_at":   item.CreatedAt,
		"collection": fiber.Map{
			"id":          resolved.Collection.Id,
			"name":        resolved.Collection.Name,
			"description": resolved.Collection.Description,
			"itemFields":  resolved.Collection.ItemFields,
			"img":         resolved.Collection.Img,
			"topic":       topicName,
			"author":      resolved.Collection.AuthorId,
		},
		"author": fiber.Map{"id": resolved.Author.Id, "nickname": resolved.Author.Nickname},
	}})
}

// GetLast10 walks recent items until ten of them resolve; orphaned items are
// skipped, not counted.
func GetLast10(c *fiber.Ctx) error {
	const want = 10
	const batch = 50

	resolved := make([]fiber.Map, 0, want)
	for offset := 0; len(resolved) < want; offset += batch {
		var items []models.Item
		repository.DB.Order("created_at DESC").Offset(offset).Limit(batch).Find(&items)
		if len(items) == 0 {
			break
		}
		for _, it := range items {
			if r, ok := Res.Item(it); ok {
				resolved = append(resolved, fiber.Map{
					"id":         r.Id,
					"name":       r.Name,
					"collection": fiber.Map{"id": r.Collection.Id, "name": r.Collection.Name},
					"author":     fiber.Map{"id": r.Author.Id, "nickname": r.Author.Nickname},
				})
				if len(resolved) == want {
					break
				}
			}
		}
	}

	return c.JSON(fiber.Map{"items": resolved})
}

func GetItemsByTag(c *fiber.Ctx) error {
	tagId, err := strconv.ParseUint(c.Params("tagId"), 10, 32)
	if err != nil || tagId == 0 {
		return c.JSON(MessageResponse{Type: "tag-error", Msg: "tag does not exist"})
	}
	var tag models.Tag
	if result := repository.DB.First(&tag, uint(tagId)); result.Error != nil {
		return c.JSON(MessageResponse{Type: "tag-error", Msg: "tag does not exist"})
	}

	var items []models.Item
	repository.DB.
		Joins("JOIN item_tags ON item_tags.item_id = items.id").
		Where("item_tags.tag_id = ?", tag.Id).
		Find(&items)

	listing := make([]fiber.Map, 0, len(items))
	for _, r := range Res.Items(items) {
		listing = append(listing, fiber.Map{
			"id":         r.Id,
			"name":       r.Name,
			"collection": fiber.Map{"id": r.Collection.Id, "name": r.Collection.Name},
			"author":     fiber.Map{"id": r.Author.Id, "nickname": r.Author.Nickname},
		})
	}

	return c.JSON(fiber.Map{"items": listing, "tag": tag})
}

func SearchFor(c *fiber.Ctx) error {
	phrase := c.Params("searchFor")
	hits, err := Agg.Search(phrase)
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "search failed"})
	}
	return c.JSON(fiber.Map{"searchResult": hits})
}
