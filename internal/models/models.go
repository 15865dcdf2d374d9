package models

import (
	"time"
)

// DefaultProfileImage is the placeholder every new user starts with.
const DefaultProfileImage = "default.jpg"

// Event types written by the handlers.
const (
	EventLogin         = "login"
	EventLogout        = "logout"
	EventRegister      = "register"
	EventCreatePost    = "create_post"
	EventCreateComment = "create_comment"
)

// User is a registered account.
type User struct {
	ID           uint      `gorm:"primarykey"`
	Username     string    `gorm:"size:80;not null;uniqueIndex"`
	Email        string    `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:120;not null"`
	ProfileImage string    `gorm:"size:120;not null;default:default.jpg"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

// Post is a text post with an optional attachment.
type Post struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:RESTRICT"` // Belongs-to, loaded explicitly
	Title     string    `gorm:"size:120;not null"`
	Content   string    `gorm:"type:text;not null"`
	FileURL   *string   `gorm:"size:255"` // Generated upload name, never a path
	CreatedAt time.Time `gorm:"not null;index"`
}

// Comment is a reply to a Post.
type Comment struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:RESTRICT"`
	PostID    uint      `gorm:"not null;index"`
	Post      Post      `gorm:"constraint:OnDelete:RESTRICT"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// Event is an audit trail entry for a user action.
type Event struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"constraint:OnDelete:RESTRICT"`
	EventType string    `gorm:"size:50;not null"`
	EventData *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Post{}, &Comment{}, &Event{}}
}
