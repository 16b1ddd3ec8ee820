package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/policy"
	"collecthub-backend/internal/repository"
	"collecthub-backend/internal/storage"
)

// loadCollection attaches the collection from the path parameter. A malformed
// or unknown id both answer "collection does not exist".
func loadCollection(c *fiber.Ctx, param string) (*models.Collection, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(MessageResponse{Msg: "collection does not exist"})
		return nil, false
	}
	var coll models.Collection
	if result := repository.DB.First(&coll, uint(id)); result.Error != nil {
		c.JSON(MessageResponse{Msg: "collection does not exist"})
		return nil, false
	}
	return &coll, true
}

func parseItemFields(c *fiber.Ctx) (models.FieldDefs, bool) {
	var fields models.FieldDefs
	raw := c.FormValue("itemFields")
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			c.JSON(MessageResponse{Type: "failed", Msg: "invalid item fields"})
			return nil, false
		}
	}
	if !fields.UniqueNames() {
		c.JSON(MessageResponse{Type: "failed", Msg: "additional item fields are not unique"})
		return nil, false
	}
	return fields, true
}

// saveImg uploads the optional "img" form file and returns its public URL.
func saveImg(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("img")
	if err != nil {
		return "", nil
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mimeType := http.DetectContentType(buffer[:n])

	filename := "images/" + uuid.New().String() + filepath.Ext(file.Filename)
	return storage.UploadFile(c.Context(), filename, src, file.Size, mimeType)
}

func parseTopicId(c *fiber.Ctx) *uint {
	raw := c.FormValue("topic")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil
	}
	topicId := uint(id)
	return &topicId
}

func CreateCollection(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	authorId, err := strconv.ParseUint(c.FormValue("author"), 10, 32)
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "invalid author id"})
	}

	authorExists := false
	if user.IsAdmin {
		var author models.User
		authorExists = repository.DB.First(&author, uint(authorId)).Error == nil
	}
	if !policy.CanCreateCollection(user, uint(authorId), authorExists) {
		return c.JSON(PermissionResponse{
			Type:       "failed",
			Msg:        "you have not permission to create collection or author did not exists",
			Permission: policy.TierOf(user),
		})
	}

	fields, ok := parseItemFields(c)
	if !ok {
		return nil
	}

	name := c.FormValue("name")
	description := c.FormValue("description")
	if name == "" || description == "" {
		return c.JSON(MessageResponse{Type: "failed", Msg: "collection name and description required"})
	}
	if !models.SafeDescription(description) {
		return c.JSON(MessageResponse{Type: "failed", Msg: "XSS attempt detected!"})
	}

	imgUrl, err := saveImg(c)
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "image upload failed"})
	}

	collection := models.Collection{
		Name:        name,
		Description: description,
		TopicId:     parseTopicId(c),
		Img:         imgUrl,
		ItemFields:  fields,
		AuthorId:    uint(authorId),
	}
	if err := repository.DB.Create(&collection).Error; err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not create collection"})
	}

	return c.JSON(MessageResponse{Type: "success", Msg: "collection created successfully"})
}

func UpdateCollection(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}

	if !policy.CanWriteResource(user, coll.AuthorId) {
		return c.JSON(MessageResponse{
			Type: "collection-update-failed",
			Msg:  "you have no permission to update this collection",
		})
	}

	fields, ok := parseItemFields(c)
	if !ok {
		return nil
	}

	description := c.FormValue("description")
	if !models.SafeDescription(description) {
		return c.JSON(MessageResponse{Type: "failed", Msg: "XSS attempt detected!"})
	}

	coll.Name = c.FormValue("name")
	coll.Description = description
	coll.TopicId = parseTopicId(c)
	coll.ItemFields = fields

	if _, err := c.FormFile("img"); err == nil {
		imgUrl, err := saveImg(c)
		if err != nil {
			return c.JSON(MessageResponse{Type: "failed", Msg: "image upload failed"})
		}
		coll.Img = imgUrl
	} else if c.FormValue("img") == "undefined" {
		coll.Img = ""
	}

	if err := repository.DB.Save(coll).Error; err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not update collection"})
	}

	return c.JSON(MessageResponse{Type: "success"})
}

// DeleteCollection removes only the collection row. Its items become
// orphans and disappear from the read paths through the join resolver.
func DeleteCollection(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}

	if !policy.CanWriteResource(user, coll.AuthorId) {
		return c.JSON(PermissionResponse{
			Type:       "failed",
			Msg:        "you are not allowed to delete this collection",
			Permission: policy.TierOf(user),
		})
	}

	result := repository.DB.Delete(&models.Collection{}, coll.Id)
	return c.JSON(fiber.Map{"type": "success", "deletedCount": result.RowsAffected})
}

func GetCollection(c *fiber.Ctx) error {
	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}

	author, found := Res.User(coll.AuthorId)
	if !found {
		return c.JSON(MessageResponse{Type: "collection-author-does-not-exist"})
	}

	var topicName string
	if coll.TopicId != nil {
		var topic models.Topic
		if repository.DB.First(&topic, *coll.TopicId).Error == nil {
			topicName = topic.Name
		}
	}

	return c.JSON(fiber.Map{
		"type": "collection",
		"collection": fiber.Map{
			"id":          coll.Id,
			"name":        coll.Name,
			"description": coll.Description,
			"topic":       topicName,
			"img":         coll.Img,
			"itemFields":  coll.ItemFields,
			"author":      fiber.Map{"id": author.Id, "nickname": author.Nickname},
			"created_at":  coll.CreatedAt,
		},
	})
}

func GetCollectionForEditing(c *fiber.Ctx) error {
	coll, ok := loadCollection(c, "collectionId")
	if !ok {
		return nil
	}
	return c.JSON(fiber.Map{"collection": coll})
}

type collectionSummary struct {
	Id       uint   `json:"id"`
	Name     string `json:"name"`
	Items    int64  `json:"items"`
	Topic    string `json:"topic"`
	AuthorId uint   `json:"-"`
	Nickname string `json:"nickname,omitempty"`
}

func GetUserCollections(c *fiber.Ctx) error {
	userId, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "user does not exist"})
	}

	var user models.User
	if result := repository.DB.Select("id", "nickname", "email").First(&user, uint(userId)); result.Error != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "user does not exist"})
	}

	var collections []collectionSummary
	repository.DB.Model(&models.Collection{}).
		Select("collections.id, collections.name, count(items.id) AS items, coalesce(topics.name, '') AS topic").
		Joins("LEFT JOIN items ON items.collection_id = collections.id").
		Joins("LEFT JOIN topics ON topics.id = collections.topic_id").
		Where("collections.author_id = ?", user.Id).
		Group("collections.id, topics.name").
		Scan(&collections)

	return c.JSON(fiber.Map{"type": "user-collections", "collections": collections, "user": user})
}

// Get5Largest lists the five collections with the most items. Collections
// whose author is gone are dropped by the inner join.
func Get5Largest(c *fiber.Ctx) error {
	var collections []collectionSummary
	repository.DB.Model(&models.Collection{}).
		Select("collections.id, collections.name, collections.author_id, users.nickname, count(items.id) AS items, coalesce(topics.name, '') AS topic").
		Joins("JOIN users ON users.id = collections.author_id").
		Joins("LEFT JOIN items ON items.collection_id = collections.id").
		Joins("LEFT JOIN topics ON topics.id = collections.topic_id").
		Group("collections.id, users.nickname, topics.name").
		Order("items DESC").
		Limit(5).
		Scan(&collections)

	return c.JSON(fiber.Map{"collections": collections})
}
