package models

import "errors"

var (
	ErrEmptyContent      = errors.New("content must not be empty")
	ErrEmptyTitle        = errors.New("title must not be empty")
	ErrImmutableField    = errors.New("field cannot be updated")
	ErrUnknownCategory   = errors.New("unknown note category")
	ErrUnknownMemoryType = errors.New("unknown memory item type")
	ErrInvalidBook       = errors.New("invalid book")
	ErrUnknownKind       = errors.New("unknown entity kind")
)
