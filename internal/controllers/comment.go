package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/policy"
	"collecthub-backend/internal/repository"
)

// commentsOfItem lists an item's comments with their authors attached.
// Comments whose author is gone are omitted, matching the resolver policy.
func commentsOfItem(itemID uint) ([]fiber.Map, error) {
	var comments []models.Comment
	if err := repository.DB.Where("item_id = ?", itemID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	userIds := make([]uint, 0, len(comments))
	for _, cm := range comments {
		userIds = append(userIds, cm.UserId)
	}
	users := make(map[uint]models.User, len(userIds))
	if len(userIds) > 0 {
		var rows []models.User
		if err := repository.DB.Select("id", "nickname", "email").Where("id IN ?", userIds).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, u := range rows {
			users[u.Id] = u
		}
	}

	out := make([]fiber.Map, 0, len(comments))
	for _, cm := range comments {
		u, ok := users[cm.UserId]
		if !ok {
			continue
		}
		out = append(out, fiber.Map{
			"id":         cm.Id,
			"text":       cm.Text,
			"created_at": cm.CreatedAt,
			"user":       fiber.Map{"id": u.Id, "nickname": u.Nickname, "email": u.Email},
		})
	}
	return out, nil
}

func CreateComment(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}
	item, ok := loadItem(c, "itemId")
	if !ok {
		return nil
	}

	var data CreateCommentRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}
	if data.Text == "" {
		return c.JSON(MessageResponse{Type: "failed", Msg: "text of comment required"})
	}

	comment := models.Comment{UserId: user.Id, ItemId: item.Id, Text: data.Text}
	if err := repository.DB.Create(&comment).Error; err != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "could not create comment"})
	}

	Notifier.NotifyComments(item.Id)
	return c.JSON(MessageResponse{Type: "comment-creation-success"})
}

// DeleteComment allows the comment author, the owner of the commented item's
// collection, or an admin. A broken chain reads as "no comment".
func DeleteComment(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	id, err := strconv.ParseUint(c.Params("commentId"), 10, 32)
	if err != nil || id == 0 {
		return c.JSON(MessageResponse{Type: "failed", Msg: "no comment"})
	}
	var comment models.Comment
	if result := repository.DB.First(&comment, uint(id)); result.Error != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "no comment"})
	}

	resolved, ok := Res.Comment(comment)
	if !ok {
		return c.JSON(MessageResponse{Type: "failed", Msg: "no comment"})
	}

	if !policy.CanDeleteComment(user, comment.UserId, resolved.Author.Id) {
		return c.JSON(PermissionResponse{
			Type:       "failed",
			Msg:        "you have no permission to delete this comment",
			Permission: policy.TierOf(user),
		})
	}

	repository.DB.Delete(&models.Comment{}, comment.Id)
	Notifier.NotifyComments(comment.ItemId)
	return c.JSON(MessageResponse{Type: "success"})
}
