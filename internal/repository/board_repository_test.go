package repository_test

import (
	"context"
	"testing"

	"feedbackhub/internal/model"
	"feedbackhub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBoardRepository_GetByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT boards\.\*, .*feedback_count FROM "boards" WHERE boards\.id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	board, err := repo.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.Nil(t, board)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_IsMember(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "board_members" WHERE board_id = .* AND user_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "board_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	member, err := repo.IsMember(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.True(t, member)

	member, err = repo.IsMember(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.False(t, member)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Create_WithMembers(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	board := &model.Board{ID: uuid.New(), Name: "Private", Slug: "private", OwnerID: uuid.New()}
	member := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "boards"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(board.ID.String()))
	mock.ExpectExec(`INSERT INTO "board_members" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// duplicates collapse into one membership row
	err := repo.Create(context.Background(), board, []uuid.UUID{member, member})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete_Cascades(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "comments" WHERE feedback_id IN \(SELECT "id" FROM "feedback" WHERE board_id = `).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "feedback_upvotes" WHERE feedback_id IN \(SELECT "id" FROM "feedback"`).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(`DELETE FROM "feedback" WHERE board_id = `).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "board_members" WHERE board_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "boards" WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardRepository_Delete_Missing(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewBoardRepository(gormDB)

	mock.ExpectBegin()
	for i := 0; i < 4; i++ {
		mock.ExpectExec(`DELETE FROM`).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`DELETE FROM "boards"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, repository.ErrBoardNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
