package recommend

import (
	"context"
	"errors"
	"net"
	"strings"

	"classify-backend/internal/llm"
)

// Degrade reasons reported on Result.Reason.
const (
	ReasonTimeout        = "timeout"
	ReasonTransport      = "transport"
	ReasonProvider       = "provider"
	ReasonNotConfigured  = "not_configured"
	ReasonCircuitOpen    = "circuit_open"
	ReasonCanceled       = "canceled"
	ReasonMalformedReply = "malformed_reply"
	ReasonEmptyReply     = "empty_reply"
)

// completionReason classifies an error returned by the completer.
func completionReason(err error) string {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return ReasonNotConfigured
	case errors.Is(err, llm.ErrCircuitOpen):
		return ReasonCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, llm.ErrProvider) {
		return ReasonProvider
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") {
		return ReasonTimeout
	}
	return ReasonTransport
}

// decodeReason classifies an error returned by decodeReply.
func decodeReason(err error) string {
	if errors.Is(err, errEmptyReply) {
		return ReasonEmptyReply
	}
	return ReasonMalformedReply
}
