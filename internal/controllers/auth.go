package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"collecthub-backend/internal/mail"
	"collecthub-backend/internal/models"
	"collecthub-backend/internal/policy"
	"collecthub-backend/internal/realtime"
	"collecthub-backend/internal/repository"
	"collecthub-backend/internal/resolve"
	"collecthub-backend/internal/search"
)

var (
	SecretKey      []byte
	FrontendOrigin string
	EmailSender    mail.EmailSender
	Notifier       *realtime.Notifier
	Res            *resolve.Resolver
	Agg            *search.Aggregator
	Logger         *zap.SugaredLogger
)

// Init wires the controller package after the database connection is up.
func Init(secret, frontendOrigin string, sender mail.EmailSender, hub *realtime.Hub, logger *zap.SugaredLogger) {
	SecretKey = []byte(secret)
	FrontendOrigin = frontendOrigin
	EmailSender = sender
	Logger = logger
	Res = resolve.NewGorm(repository.DB)
	Agg = search.NewGorm(repository.DB, Res)
	Notifier = &realtime.Notifier{
		Hub: hub,
		Comments: func(itemID uint) (interface{}, error) {
			return commentsOfItem(itemID)
		},
		Likes: likesCount,
		Log:   logger,
	}
}

func signToken(userID uint) (string, error) {
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  strconv.Itoa(int(userID)),
		"exp": time.Now().Add(72 * time.Hour).Unix(),
	})
	return claims.SignedString(SecretKey)
}

// currentUser resolves the acting user from the jwt header; nil means guest.
// A resolved user gets its last-login timestamp touched.
func currentUser(c *fiber.Ctx) *models.User {
	tokenStr := c.Get("jwt")
	if tokenStr == "" {
		tokenStr = c.Cookies("jwt")
	}
	if tokenStr == "" {
		return nil
	}

	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return SecretKey, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	strId, ok := token.Claims.(jwt.MapClaims)["id"].(string)
	if !ok {
		return nil
	}
	id, err := strconv.ParseUint(strId, 10, 32)
	if err != nil {
		return nil
	}

	var user models.User
	if result := repository.DB.First(&user, uint(id)); result.Error != nil {
		return nil
	}
	repository.DB.Model(&user).Update("last_login_date", time.Now())
	return &user
}

// requireActive implements the shared auth gate: on failure it writes the
// permission-denied payload with the actor's tier and returns false.
func requireActive(c *fiber.Ctx, user *models.User, admin bool) bool {
	allowed := policy.IsActive(user)
	if admin {
		allowed = policy.IsActiveAdmin(user)
	}
	if allowed {
		return true
	}
	kind := "authenticated"
	if admin {
		kind = "admin"
	}
	c.JSON(PermissionResponse{
		Type:       "permission-denied",
		Msg:        "only active " + kind + " users has access to this endpoint",
		Permission: policy.TierOf(user),
	})
	return false
}

func SignUp(c *fiber.Ctx) error {
	var data SignUpRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}

	if data.Password == "" {
		return c.JSON(MessageResponse{Type: "failed"})
	}
	if !models.ValidEmail(data.Email) {
		return c.JSON(MessageResponse{Type: "signup-error", Msg: "invalid email format"})
	}

	var existing models.User
	if result := repository.DB.Where("email = ?", data.Email).First(&existing); result.Error == nil {
		return c.JSON(MessageResponse{Type: "signup-error", Msg: "user with this email already exists"})
	}

	password, _ := bcrypt.GenerateFromPassword([]byte(data.Password), 14)

	user := models.User{
		Nickname: data.Nickname,
		Email:    data.Email,
		Password: password,
		Status:   true,
		Lang:     data.Lang,
		Theme:    data.Theme,
	}
	if user.Lang == "" {
		user.Lang = "en"
	}
	if user.Theme == "" {
		user.Theme = "light"
	}

	if err := repository.DB.Create(&user).Error; err != nil {
		return c.JSON(MessageResponse{Type: "signup-error", Msg: "could not create user"})
	}

	token, err := signToken(user.Id)
	if err != nil {
		return c.JSON(MessageResponse{Type: "signup-error", Msg: "could not issue token"})
	}

	return c.JSON(fiber.Map{
		"type":   "signup-success",
		"msg":    "user successfully created",
		"token":  token,
		"userId": user.Id,
	})
}

func SignIn(c *fiber.Ctx) error {
	var data SignInRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}

	var user models.User
	if result := repository.DB.Where("email = ?", data.Email).First(&user); result.Error != nil {
		return c.JSON(MessageResponse{Type: "signin-failed", Msg: "invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(data.Password)); err != nil {
		return c.JSON(MessageResponse{Type: "signin-failed", Msg: "invalid email or password"})
	}

	if !user.Status {
		return c.JSON(MessageResponse{Type: "signin-failed", Msg: "user is blocked"})
	}

	repository.DB.Model(&user).Update("last_login_date", time.Now())

	token, err := signToken(user.Id)
	if err != nil {
		return c.JSON(MessageResponse{Type: "signin-failed", Msg: "could not issue token"})
	}

	return c.JSON(fiber.Map{
		"type":       "signin-success",
		"msg":        "successfully signed in",
		"token":      token,
		"userId":     user.Id,
		"permission": policy.TierOf(&user),
		"lang":       user.Lang,
		"theme":      user.Theme,
	})
}

func Verify(c *fiber.Ctx) error {
	user := currentUser(c)
	if !policy.IsActive(user) {
		return c.JSON(fiber.Map{"type": "verification", "permission": policy.TierGuest})
	}
	return c.JSON(fiber.Map{
		"type":       "verification",
		"permission": policy.TierOf(user),
		"lang":       user.Lang,
		"theme":      user.Theme,
	})
}

// resetTokens is the storage seam behind password reset issuance and
// verification. Replace drops every previous row for the user, so only the
// latest issued token can ever verify.
type resetTokens struct {
	latest  func(userID uint) (*models.ResetToken, error)
	replace func(userID uint, hash []byte) error
	purge   func(userID uint)
}

var gormResetTokens = resetTokens{
	latest: func(userID uint) (*models.ResetToken, error) {
		var token models.ResetToken
		result := repository.DB.Where("user_id = ?", userID).Order("created_at DESC").First(&token)
		if result.Error != nil {
			return nil, nil
		}
		return &token, nil
	},
	replace: func(userID uint, hash []byte) error {
		repository.DB.Where("user_id = ?", userID).Delete(&models.ResetToken{})
		return repository.DB.Create(&models.ResetToken{UserId: userID, Token: hash}).Error
	},
	purge: func(userID uint) {
		repository.DB.Where("user_id = ?", userID).Delete(&models.ResetToken{})
	},
}

// issueResetToken stores a bcrypt hash of a fresh one-time value, replacing
// any token issued earlier, and returns the plain value for the mail link.
func issueResetToken(store resetTokens, userID uint) (string, error) {
	value := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(value), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := store.replace(userID, hash); err != nil {
		return "", err
	}
	return value, nil
}

// verifyResetToken accepts only the latest issued, unexpired token.
func verifyResetToken(store resetTokens, userID uint, value string) bool {
	token, err := store.latest(userID)
	if err != nil || token == nil {
		return false
	}
	if time.Since(token.CreatedAt) > models.ResetTokenTTL {
		return false
	}
	return bcrypt.CompareHashAndPassword(token.Token, []byte(value)) == nil
}

// RequestPasswordReset mails a one-time link. Only the latest issued token
// for a user verifies; requesting twice invalidates the first.
func RequestPasswordReset(c *fiber.Ctx) error {
	emailAddr := c.Params("email")

	var user models.User
	if result := repository.DB.Where("email = ?", emailAddr).First(&user); result.Error != nil {
		return c.JSON(MessageResponse{Type: "failed", Msg: "user does not exist"})
	}

	value, err := issueResetToken(gormResetTokens, user.Id)
	if err != nil {
		return c.JSON(MessageResponse{Type: "failed"})
	}

	link := FrontendOrigin + "/reset-password/" + strconv.Itoa(int(user.Id)) + "/" + value
	go func() {
		err := EmailSender.SendEmail(
			"resetting password",
			"link to reset the password: \n"+link,
			[]string{user.Email},
		)
		if err != nil && Logger != nil {
			Logger.Errorw("send reset mail", "error", err)
		}
	}()

	return c.JSON(MessageResponse{Type: "reset-link-sent"})
}

// ResetPassword collapses every failure mode (no token, mismatch, expired)
// into the single link-expired outcome.
func ResetPassword(c *fiber.Ctx) error {
	var data ResetPasswordRequest
	if err := json.Unmarshal(c.Body(), &data); err != nil {
		return err
	}

	if !verifyResetToken(gormResetTokens, data.UserId, data.Token) {
		return c.JSON(MessageResponse{Type: "reset-link-expired", Msg: "link expired"})
	}
	if data.Password == "" {
		return c.JSON(MessageResponse{Type: "failed"})
	}

	password, _ := bcrypt.GenerateFromPassword([]byte(data.Password), 14)
	if err := repository.DB.Model(&models.User{}).Where("id = ?", data.UserId).
		Update("password", password).Error; err != nil {
		return c.JSON(MessageResponse{Type: "failed"})
	}
	gormResetTokens.purge(data.UserId)

	return c.JSON(MessageResponse{Type: "reset-success"})
}
