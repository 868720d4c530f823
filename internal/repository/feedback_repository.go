package repository

import (
	"context"
	"errors"

	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	upvoteCountSQL  = "(SELECT COUNT(*) FROM feedback_upvotes fu WHERE fu.feedback_id = feedback.id)"
	commentCountSQL = "(SELECT COUNT(*) FROM comments c WHERE c.feedback_id = feedback.id)"
	feedbackColumns = "feedback.*, " + upvoteCountSQL + " AS upvote_count, " + commentCountSQL + " AS comment_count"
)

// FeedbackFilter holds the optional listing filters. They apply on top of
// the caller's visibility scope.
type FeedbackFilter struct {
	BoardID  *uuid.UUID
	Status   model.Status
	Tags     string
	Search   string
	Ordering Ordering
}

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// withFeedbackRelations loads the creator and the board with its owner,
// members and feedback count.
func withFeedbackRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator").
		Preload("Board", func(db *gorm.DB) *gorm.DB {
			return db.Select(boardColumns)
		}).
		Preload("Board.Owner").
		Preload("Board.Members")
}

// Create adds a new feedback item
func (r *FeedbackRepository) Create(ctx context.Context, fb *model.Feedback) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(fb).Error
}

// List returns feedback visible to caller, filtered and ordered.
func (r *FeedbackRepository) List(ctx context.Context, caller policy.Caller, filter FeedbackFilter) ([]model.Feedback, error) {
	var items []model.Feedback
	err := r.listQuery(ctx, caller, filter).
		Scopes(withFeedbackRelations).
		Find(&items).Error
	return items, err
}

func (r *FeedbackRepository) listQuery(ctx context.Context, caller policy.Caller, filter FeedbackFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Select(feedbackColumns).
		Scopes(visibleFeedback(caller))

	if filter.BoardID != nil {
		q = q.Where("feedback.board_id = ?", *filter.BoardID)
	}
	if filter.Status != "" {
		q = q.Where("feedback.status = ?", filter.Status)
	}
	if filter.Tags != "" {
		q = q.Where("feedback.tags ILIKE ?", containsPattern(filter.Tags))
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		q = q.Where("(feedback.title ILIKE ? OR feedback.description ILIKE ?)", pattern, pattern)
	}
	return q.Order(filter.Ordering.orderClause())
}

// GetByID loads one item with counts, creator, board and comments.
func (r *FeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Feedback, error) {
	var fb model.Feedback
	err := r.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Select(feedbackColumns).
		Scopes(withFeedbackRelations).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User").
		Where("feedback.id = ?", id).
		First(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// Find loads the bare item with its board, enough for policy checks.
func (r *FeedbackRepository) Find(ctx context.Context, id uuid.UUID) (*model.Feedback, error) {
	var fb model.Feedback
	err := r.db.WithContext(ctx).Preload("Board").Where("id = ?", id).First(&fb).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFeedbackNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

// Update writes the mutable fields. Board and creator never change.
func (r *FeedbackRepository) Update(ctx context.Context, fb *model.Feedback) error {
	result := r.db.WithContext(ctx).
		Model(fb).
		Select("title", "description", "status", "tags").
		Updates(fb)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}

// Delete removes the item with its comments and upvotes.
func (r *FeedbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("feedback_id = ?", id).Delete(&model.FeedbackUpvote{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Feedback{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFeedbackNotFound
		}
		return nil
	})
}

// ToggleUpvote flips the user's upvote on the item and returns the new state
// and the resulting upvote count. The feedback row is locked for the
// duration so concurrent toggles on the same item serialize.
func (r *FeedbackRepository) ToggleUpvote(ctx context.Context, feedbackID, userID uuid.UUID) (bool, int64, error) {
	var (
		upvoted bool
		count   int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fb model.Feedback
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", feedbackID).
			First(&fb).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeedbackNotFound
		}
		if err != nil {
			return err
		}

		removed := tx.Where("feedback_id = ? AND user_id = ?", feedbackID, userID).Delete(&model.FeedbackUpvote{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			vote := model.FeedbackUpvote{FeedbackID: feedbackID, UserID: userID}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&vote).Error; err != nil {
				return err
			}
			upvoted = true
		}

		return tx.Model(&model.FeedbackUpvote{}).Where("feedback_id = ?", feedbackID).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return upvoted, count, nil
}

// UpvotedBy reports which of ids the user has upvoted.
func (r *FeedbackRepository) UpvotedBy(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var upvoted []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.FeedbackUpvote{}).
		Where("user_id = ? AND feedback_id IN ?", userID, ids).
		Pluck("feedback_id", &upvoted).Error
	if err != nil {
		return nil, err
	}
	for _, id := range upvoted {
		out[id] = true
	}
	return out, nil
}

// StatRows scans status, tags and creation time of every visible item.
func (r *FeedbackRepository) StatRows(ctx context.Context, caller policy.Caller) ([]model.FeedbackStat, error) {
	var rows []model.FeedbackStat
	err := r.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Scopes(visibleFeedback(caller)).
		Select("feedback.status, feedback.tags, feedback.created_at").
		Scan(&rows).Error
	return rows, err
}

// TopVoted returns the most upvoted visible items, ties broken by newest
// first and then by id.
func (r *FeedbackRepository) TopVoted(ctx context.Context, caller policy.Caller, limit int) ([]model.Feedback, error) {
	var items []model.Feedback
	err := r.db.WithContext(ctx).
		Model(&model.Feedback{}).
		Select(feedbackColumns).
		Scopes(visibleFeedback(caller)).
		Order(OrderByUpvotesDesc.orderClause()).
		Limit(limit).
		Scopes(withFeedbackRelations).
		Find(&items).Error
	return items, err
}
