package relay

import "errors"

var (
	// ErrRemote marks failures of a messaging platform call.
	ErrRemote = errors.New("remote call failed")
	// ErrPersist marks failures to read or write relay state.
	ErrPersist = errors.New("persistence failed")
	// ErrInvalidRange is returned for replay jobs with out of range bounds.
	ErrInvalidRange = errors.New("invalid message range")
	// ErrNothingToRelay is returned for messages without deliverable content.
	ErrNothingToRelay = errors.New("message has no text, caption, video or document")
)
