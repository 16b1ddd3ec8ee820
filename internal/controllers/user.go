package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/repository"
)

func allUsersPayload() fiber.Map {
	var users []models.User
	repository.DB.
		Select("id", "nickname", "email", "registration_date", "last_login_date", "status", "is_admin").
		Order("id DESC").
		Find(&users)
	return fiber.Map{"type": "all-users", "allUsers": users}
}

func GetAllUsers(c *fiber.Ctx) error {
	if !requireActive(c, currentUser(c), true) {
		return nil
	}
	return c.JSON(allUsersPayload())
}

func updateUsersAndList(c *fiber.Ctx, column string, value interface{}) error {
	if !requireActive(c, currentUser(c), true) {
		return nil
	}

	var data IdsRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}
	if len(data.Ids) > 0 {
		repository.DB.Model(&models.User{}).Where("id IN ?", data.Ids).Update(column, value)
	}
	return c.JSON(allUsersPayload())
}

func BlockUsers(c *fiber.Ctx) error {
	return updateUsersAndList(c, "status", false)
}

func UnblockUsers(c *fiber.Ctx) error {
	return updateUsersAndList(c, "status", true)
}

func GiveAdmin(c *fiber.Ctx) error {
	return updateUsersAndList(c, "is_admin", true)
}

func TakeAdmin(c *fiber.Ctx) error {
	return updateUsersAndList(c, "is_admin", false)
}

// DeleteUsers removes the users without cascading: their collections, items
// and comments become invisible through the resolve-or-omit reads.
func DeleteUsers(c *fiber.Ctx) error {
	if !requireActive(c, currentUser(c), true) {
		return nil
	}

	var data IdsRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}
	if len(data.Ids) > 0 {
		repository.DB.Where("id IN ?", data.Ids).Delete(&models.User{})
	}
	return c.JSON(allUsersPayload())
}

func ChangeTheme(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	theme := c.Params("theme")
	if !models.ValidTheme(theme) {
		return c.JSON(MessageResponse{Type: "theme-error", Msg: "only dark and light themes allowed"})
	}
	repository.DB.Model(user).Update("theme", theme)
	return c.JSON(MessageResponse{Type: "theme-changed"})
}

func ChangeLang(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}

	lang := c.Params("lang")
	if !models.ValidLang(lang) {
		return c.JSON(MessageResponse{Type: "lang-error", Msg: `only "ru" and "en" languages allowed`})
	}
	repository.DB.Model(user).Update("lang", lang)
	return c.JSON(MessageResponse{Type: "lang-changed"})
}

func GetEmail(c *fiber.Ctx) error {
	user := currentUser(c)
	if !requireActive(c, user, false) {
		return nil
	}
	return c.JSON(fiber.Map{"email": user.Email})
}
