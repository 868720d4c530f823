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

const boardColumns = "boards.*, (SELECT COUNT(*) FROM feedback f WHERE f.board_id = boards.id) AS feedback_count"

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create inserts the board and its initial members in one transaction.
func (r *BoardRepository) Create(ctx context.Context, board *model.Board, memberIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(board).Error; err != nil {
			return err
		}
		return insertMembers(tx, board.ID, memberIDs)
	})
}

// List returns the boards visible to caller, newest first.
func (r *BoardRepository) List(ctx context.Context, caller policy.Caller) ([]model.Board, error) {
	var boards []model.Board
	err := r.listQuery(ctx, caller).
		Preload("Owner").
		Preload("Members").
		Find(&boards).Error
	return boards, err
}

func (r *BoardRepository) listQuery(ctx context.Context, caller policy.Caller) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Board{}).
		Select(boardColumns).
		Scopes(visibleBoards(caller)).
		Order("boards.created_at DESC, boards.id ASC")
}

// GetByID loads a board regardless of visibility; callers apply the policy.
func (r *BoardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Model(&model.Board{}).
		Select(boardColumns).
		Preload("Owner").
		Preload("Members").
		Where("boards.id = ?", id).
		First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// IsMember checks the membership relation directly so the answer is live.
func (r *BoardRepository) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.BoardMember{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error
	return count > 0, err
}

// Update saves name, slug, description and visibility. When memberIDs is non-nil
// the member set is replaced by it.
func (r *BoardRepository) Update(ctx context.Context, board *model.Board, memberIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(board).Select("name", "slug", "description", "public").Updates(board)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBoardNotFound
		}
		if memberIDs == nil {
			return nil
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&model.BoardMember{}).Error; err != nil {
			return err
		}
		return insertMembers(tx, board.ID, memberIDs)
	})
}

// Delete removes the board together with its feedback, their comments and
// upvotes, and its membership rows.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		feedbackIDs := tx.Model(&model.Feedback{}).Select("id").Where("board_id = ?", id)

		if err := tx.Where("feedback_id IN (?)", feedbackIDs).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("feedback_id IN (?)", feedbackIDs).Delete(&model.FeedbackUpvote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&model.BoardMember{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Board{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBoardNotFound
		}
		return nil
	})
}

func insertMembers(tx *gorm.DB, boardID uuid.UUID, memberIDs []uuid.UUID) error {
	if len(memberIDs) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(memberIDs))
	rows := make([]model.BoardMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, model.BoardMember{BoardID: boardID, UserID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
