package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/repository"
)

type tagWithCount struct {
	Id    uint   `json:"id"`
	Name  string `json:"name"`
	Items int64  `json:"items"`
}

// GetPopularTags lists up to 50 tags ordered by how many items carry them;
// unused tags are not shown.
func GetPopularTags(c *fiber.Ctx) error {
	var tags []tagWithCount
	repository.DB.Model(&models.Tag{}).
		Select("tags.id, tags.name, count(item_tags.item_id) AS items").
		Joins("JOIN item_tags ON item_tags.tag_id = tags.id").
		Group("tags.id").
		Having("count(item_tags.item_id) > 0").
		Order("items DESC").
		Limit(50).
		Scan(&tags)

	return c.JSON(fiber.Map{"tags": tags})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix escapes LIKE wildcards so the submitted prefix matches literally.
func likePrefix(s string) string {
	return likeEscaper.Replace(s) + "%"
}

func GetTagsByStart(c *fiber.Ctx) error {
	start := c.Params("tagStart")
	var tags []models.Tag
	repository.DB.Where("name LIKE ?", likePrefix(start)).Find(&tags)
	return c.JSON(fiber.Map{"tags": tags})
}
