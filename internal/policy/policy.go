// Package policy decides who may read and mutate boards, feedback and
// comments. Every predicate is pure: it only looks at the caller and the
// record state passed in, so results always reflect the live role and
// membership loaded for the current request.
package policy

import (
	"errors"

	"feedbackhub/internal/model"

	"github.com/google/uuid"
)

// ErrForbidden is returned when a predicate denies an action.
var ErrForbidden = errors.New("forbidden")

// Capability is a role-level permission that does not depend on the record.
type Capability uint8

const (
	// ReadAllBoards bypasses board visibility.
	ReadAllBoards Capability = 1 << iota
	// ModerateContent allows editing and deleting any feedback or comment.
	ModerateContent
	// ManageBoards allows updating and deleting boards.
	ManageBoards
	// ManageRoles allows changing another user's role.
	ManageRoles
)

var capabilities = map[model.Role]Capability{
	model.RoleAdmin:       ReadAllBoards | ModerateContent | ManageBoards | ManageRoles,
	model.RoleModerator:   ReadAllBoards | ModerateContent,
	model.RoleContributor: 0,
}

// Caller is the resolved identity an operation runs on behalf of.
type Caller struct {
	ID   uuid.UUID
	Role model.Role
}

// CallerFrom builds a Caller from a loaded user.
func CallerFrom(u *model.User) Caller {
	return Caller{ID: u.ID, Role: u.Role}
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.ID != uuid.Nil
}

// Can reports whether the caller's role grants capability.
func (c Caller) Can(capability Capability) bool {
	return capabilities[c.Role]&capability != 0
}

// CanReadBoard reports whether c may see board. Public boards are open to
// everyone. Private ones need ownership, membership or ReadAllBoards.
func CanReadBoard(c Caller, board *model.Board, isMember bool) bool {
	if board.Public || c.Can(ReadAllBoards) {
		return true
	}
	if !c.Authenticated() {
		return false
	}
	return isMember || board.OwnerID == c.ID
}

// CanCreateBoard allows any authenticated caller.
func CanCreateBoard(c Caller) bool {
	return c.Authenticated()
}

// CanUpdateBoard requires ManageBoards, even for the owner.
func CanUpdateBoard(c Caller) bool {
	return c.Can(ManageBoards)
}

// CanDeleteBoard requires ManageBoards.
func CanDeleteBoard(c Caller) bool {
	return c.Can(ManageBoards)
}

// CanWriteFeedback covers update and delete. Board ownership is irrelevant.
func CanWriteFeedback(c Caller, fb *model.Feedback) bool {
	if c.Can(ModerateContent) {
		return true
	}
	return c.Authenticated() && fb.CreatedBy == c.ID
}

// CanWriteComment covers update and delete by the author or a moderator.
func CanWriteComment(c Caller, comment *model.Comment) bool {
	if c.Can(ModerateContent) {
		return true
	}
	return c.Authenticated() && comment.UserID == c.ID
}

// CanManageRoles reports whether c may change other users' roles.
func CanManageRoles(c Caller) bool {
	return c.Can(ManageRoles)
}

// Require turns a predicate result into ErrForbidden.
func Require(allowed bool) error {
	if !allowed {
		return ErrForbidden
	}
	return nil
}
