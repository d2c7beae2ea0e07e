package entity

import "errors"

var (
	// Input errors, reported to the user
	ErrNotImage       = errors.New("please select an image file")
	ErrImageTooLarge  = errors.New("image is too large")
	ErrInvalidColor   = errors.New("color must be in #rrggbb form")
	ErrNoResult       = errors.New("no watermarked image yet")
	ErrEmptyImageData = errors.New("image file is empty")

	// Preconditions, dropped silently
	ErrNotReady   = errors.New("image and watermark text are required")
	ErrProcessing = errors.New("a watermark request is already in flight")

	// Upstream errors
	ErrWatermarkFailed = errors.New("failed to add watermark")
	ErrUpstreamStatus  = errors.New("watermark server returned an error status")
	ErrBadResponse     = errors.New("malformed response from watermark server")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidURL   = errors.New("invalid data url")
)
