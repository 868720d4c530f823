package repository

import (
	"strings"

	"feedbackhub/internal/policy"

	"gorm.io/gorm"
)

// boardVisibleSQL matches boards the caller may read. The EXISTS form keeps
// one row per board even when membership rows would otherwise fan out.
const boardVisibleSQL = `(boards.public = ? OR boards.owner_id = ? OR EXISTS (
	SELECT 1 FROM board_members bm WHERE bm.board_id = boards.id AND bm.user_id = ?))`

// visibleBoards restricts a boards query to what the caller may read.
func visibleBoards(caller policy.Caller) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller.Can(policy.ReadAllBoards) {
			return db
		}
		return db.Where(boardVisibleSQL, true, caller.ID, caller.ID)
	}
}

// visibleFeedback restricts a feedback query by re-checking each item's own
// board, independent of any board listing done elsewhere.
func visibleFeedback(caller policy.Caller) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller.Can(policy.ReadAllBoards) {
			return db
		}
		return db.
			Joins("JOIN boards ON boards.id = feedback.board_id").
			Where(boardVisibleSQL, true, caller.ID, caller.ID)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
