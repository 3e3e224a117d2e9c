package services

import "errors"

var (
	ErrEmptyMessage        = errors.New("message cannot be empty")
	ErrInvalidBotID        = errors.New("bot id must be a positive number")
	ErrInvalidSessionID    = errors.New("session id must be a positive number")
	ErrNilMessage          = errors.New("message cannot be nil")
	ErrNilSession          = errors.New("session cannot be nil")
	ErrMissingBotReference = errors.New("session must reference a bot")
	ErrBotNotFound         = errors.New("bot not found")
	ErrSessionNotFound     = errors.New("session not found")
)
