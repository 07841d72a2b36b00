package service

import "errors"

var (
	ErrAgentNotFound        = errors.New("agent not found")
	ErrGenerationInProgress = errors.New("a reply is already being generated for this session")
)

// StreamFailureReason is the reason carried by the error event when generation fails.
const StreamFailureReason = "Stream Text Failure"
