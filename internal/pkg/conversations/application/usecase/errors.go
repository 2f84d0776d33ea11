package usecase

import "errors"

var (
	// ErrPersistence indicates an infrastructure/repository failure inside
	// a use case.
	ErrPersistence = errors.New("conversations: persistence error")

	// ErrInvalidPhone means the supplied phone yielded no digits after
	// normalization.
	ErrInvalidPhone = errors.New("conversations: invalid phone")

	// ErrConversationNotFound is returned by read/send paths when no
	// conversation exists for the phone.
	ErrConversationNotFound = errors.New("conversations: conversation not found")
)
