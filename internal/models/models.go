package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	Id               uint      `json:"id"`
	Nickname         string    `json:"nickname"`
	Email            string    `gorm:"uniqueIndex" json:"email"`
	Password         []byte    `json:"-"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registrationDate"`
	LastLoginDate    time.Time `json:"lastLoginDate"`
	Status           bool      `gorm:"default:true" json:"status"`
	IsAdmin          bool      `json:"isAdmin"`
	Lang             string    `gorm:"default:en" json:"lang"`
	Theme            string    `gorm:"default:light" json:"theme"`
}

type Collection struct {
	Id          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TopicId     *uint     `json:"topic"`
	Img         string    `json:"img"`
	ItemFields  FieldDefs `gorm:"type:jsonb" json:"itemFields"`
	AuthorId    uint      `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

// Item carries its collection-declared attributes in Attrs, keyed
// "__<fieldName>". Old items may legitimately miss keys added to the
// collection after their creation.
type Item struct {
	Id           uint              `json:"id"`
	Name         string            `json:"name"`
	Tags         []Tag             `gorm:"many2many:item_tags;" json:"tags"`
	CollectionId uint              `json:"collectionId"`
	Attrs        datatypes.JSONMap `gorm:"type:jsonb" json:"attrs"`
	CreatedAt    time.Time         `json:"created_at"`
}

type Tag struct {
	Id   uint   `json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Comment struct {
	Id        uint      `json:"id"`
	UserId    uint      `json:"user"`
	ItemId    uint      `json:"item"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Like uniqueness of (item, user) is enforced by the handlers, not the schema.
type Like struct {
	Id     uint `json:"id"`
	ItemId uint `json:"item"`
	UserId uint `json:"user"`
}

type Topic struct {
	Id   uint   `json:"id"`
	Name string `gorm:"uniqueIndex" json:"name"`
}

// ResetToken stores a bcrypt hash of the one-time value mailed to the user.
// Rows older than ResetTokenTTL never verify and are swept by the cleanup task.
type ResetToken struct {
	Id        uint      `json:"id"`
	UserId    uint      `json:"userId"`
	Token     []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

const ResetTokenTTL = time.Hour

const MaxTopicNameLen = 50

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// SafeDescription rejects script-injection markers in collection descriptions.
func SafeDescription(s string) bool {
	return !strings.Contains(strings.ToLower(s), "<script>")
}

func ValidTheme(s string) bool { return s == "dark" || s == "light" }

func ValidLang(s string) bool { return s == "ru" || s == "en" }
