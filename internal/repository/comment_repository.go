package repository

import (
	"context"
	"errors"

	"feedbackhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// List returns comments oldest first, optionally for one feedback item.
func (r *CommentRepository) List(ctx context.Context, feedbackID *uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	q := r.db.WithContext(ctx).Preload("User")
	if feedbackID != nil {
		q = q.Where("feedback_id = ?", *feedbackID)
	}
	err := q.Order("created_at ASC, id ASC").Find(&comments).Error
	return comments, err
}

func (r *CommentRepository) Update(ctx context.Context, comment *model.Comment) error {
	result := r.db.WithContext(ctx).Model(comment).Select("text").Updates(comment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}
