package profiles

import "errors"

var (
	ErrNotFound      = errors.New("profile not found")
	ErrPersistence   = errors.New("profile persistence failed")
	ErrNotConfigured = errors.New("recommendation provider not configured")
	ErrGeneration    = errors.New("recommendation generation failed")

	errPersonalityTooLong = errors.New("personality_type exceeds 4 characters")
)
