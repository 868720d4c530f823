package repository

import "errors"

// Common repository errors
var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when the username or email is already taken
	ErrUserExists = errors.New("user already exists")

	// ErrBoardNotFound is returned when a board is not found
	ErrBoardNotFound = errors.New("board not found")

	// ErrFeedbackNotFound is returned when a feedback item is not found
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrCommentNotFound is returned when a comment is not found
	ErrCommentNotFound = errors.New("comment not found")

	// ErrInvalidOrdering is returned for an ordering token outside the allow-list
	ErrInvalidOrdering = errors.New("invalid ordering")
)
