package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/repository"
)

// CreateTopics creates each topic independently: a duplicate or over-long
// name fails only its own row, the rest of the batch still lands.
func CreateTopics(c *fiber.Ctx) error {
	if !requireActive(c, currentUser(c), true) {
		return nil
	}

	var data TopicsRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}

	for _, name := range data.Topics {
		if name == "" || len(name) > models.MaxTopicNameLen {
			continue
		}
		repository.DB.Create(&models.Topic{Name: name})
	}

	return c.JSON(MessageResponse{Type: "topics-creation-success", Msg: "topics created successfully"})
}

func GetAllTopics(c *fiber.Ctx) error {
	var topics []models.Topic
	repository.DB.Find(&topics)
	return c.JSON(fiber.Map{"type": "all-topics", "topics": topics})
}
