package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/postboard/internal/models"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Store runs every query the application needs against a GORM handle.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// === Users ===

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ProfileImage == "" {
		user.ProfileImage = models.DefaultProfileImage
	}
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// === Posts ===

func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
}

// ListPosts returns every post with its author, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc, id desc").
		Find(&posts).Error
	return posts, translate(err)
}

func (s *Store) PostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// PostsByUser returns the posts owned by userID, newest first.
func (s *Store) PostsByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&posts).Error
	return posts, translate(err)
}

// === Comments ===

// CreateComment inserts a comment after checking that its post exists.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return tx.Omit(clause.Associations).Create(comment).Error
	})
	return translate(err)
}

// CommentsByPost returns the comments on postID with their authors, oldest first.
func (s *Store) CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	return comments, translate(err)
}

// === Events ===

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error)
}

// EventsByUser returns up to limit events for userID, newest first.
func (s *Store) EventsByUser(ctx context.Context, userID uint, limit int) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&events).Error
	return events, translate(err)
}

// translate maps driver and GORM errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	// Not every driver version translates constraint errors.
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return ErrDuplicate
	}
	return err
}
