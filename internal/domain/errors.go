package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSubmitFailed       = errors.New("submit failed")
	ErrPollFailed         = errors.New("poll failed")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrNoImageResult      = errors.New("completed without image result")
	ErrPollBudgetExceeded = errors.New("poll budget exceeded")
)
