package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyInput      = errors.New("user input is empty")
	ErrEmptyCompletion = errors.New("provider returned no completion")
	ErrUnknownSpeaker  = errors.New("unknown speaker")
)
