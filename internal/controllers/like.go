package controllers

import (
	"github.com/gofiber/fiber/v2"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/repository"
)

func likesCount(itemID uint) (int64, error) {
	var count int64
	err := repository.DB.Model(&models.Like{}).Where("item_id = ?", itemID).Count(&count).Error
	return count, err
}

func likedBy(itemID, userID uint) bool {
	var like models.Like
	return repository.DB.Where("item_id = ? AND user_id = ?", itemID, userID).First(&like).Error == nil
}

// likeOps are the storage operations behind the like toggle, injected so the
// idempotence rule is testable without a database.
type likeOps struct {
	liked  func(itemID, userID uint) bool
	create func(itemID, userID uint) error
}

// applyLike is idempotent per (item, user): a repeated like answers
// already-liked and writes nothing.
func applyLike(ops likeOps, itemID, userID uint) MessageResponse {
	if ops.liked(itemID, userID) {
		return MessageResponse{Type: "already-liked"}
	}
	if err := ops.create(itemID, userID); err != nil {
		return MessageResponse{Type: "failed"}
	}
	return MessageResponse{Type: "liked"}
}

var gormLikeOps = likeOps{
	liked: likedBy,
	create: func(itemID, userID uint) error {
		return repository.DB.Create(&models.Like{ItemId: itemID, UserId: userID}).Error
	},
}

func GetItemLikeInfo(c *fiber.Ctx) error {
	item, ok := loadItem(c, "itemId")
	if !ok {
		return nil
	}

	likes, err := likesCount(item.Id)
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed"})
	}

	liked := false
	if user := currentUser(c); user != nil {
		liked = likedBy(item.Id, user.Id)
	}

	return c.JSON(fiber.Map{"likes": likes, "liked": liked})
}

func CreateLike(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}
	item, ok := loadItem(c, "itemId")
	if !ok {
		return nil
	}

	resp := applyLike(gormLikeOps, item.Id, user.Id)
	if resp.Type == "liked" {
		Notifier.NotifyLikes(item.Id)
	}
	return c.JSON(resp)
}

func DeleteLike(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}
	item, ok := loadItem(c, "itemId")
	if !ok {
		return nil
	}

	repository.DB.Where("item_id = ? AND user_id = ?", item.Id, user.Id).Delete(&models.Like{})

	Notifier.NotifyLikes(item.Id)
	return c.JSON(MessageResponse{Type: "unliked"})
}
